package looper

import "fmt"

// Orientation is the geometric progression of a run of pairs.
type Orientation uint8

const (
	// Antiparallel pairs progress as (i, j) -> (i+1, j-1).
	Antiparallel Orientation = iota
	// Parallel pairs progress as (i, j) -> (i+1, j+1).
	Parallel
)

func (o Orientation) String() string {
	if o == Parallel {
		return "p"
	}
	return "a"
}

// step returns the j increment expected between consecutive pairs.
func (o Orientation) step() int {
	if o == Parallel {
		return 1
	}
	return -1
}

// Source tells which collection a pair was tokenized into.
type Source uint8

const (
	// Secondary pairs are nested.
	Secondary Source = iota
	// Pseudoknot pairs cross the secondary structure.
	Pseudoknot
)

func (s Source) String() string {
	if s == Pseudoknot {
		return "pk"
	}
	return "ss"
}

// IJ is a closed interval of positions, used as the key of every stem,
// pseudoknot and tree node.
type IJ struct {
	I, J int
}

func (ij IJ) String() string {
	return fmt.Sprintf("(%d,%d)", ij.I, ij.J)
}

// Contains reports whether other lies inside ij, boundaries included.
func (ij IJ) Contains(other IJ) bool {
	return ij.I <= other.I && other.J <= ij.J
}

// Crosses reports whether the two intervals partially overlap.
func (ij IJ) Crosses(other IJ) bool {
	return (ij.I < other.I && other.I < ij.J && ij.J < other.J) ||
		(other.I < ij.I && ij.I < other.J && other.J < ij.J)
}

// union returns the smallest interval holding both.
func (ij IJ) union(other IJ) IJ {
	return IJ{I: min(ij.I, other.I), J: max(ij.J, other.J)}
}

// A single paired position. Pairs are values and never change once
// produced by the front end.
type Pair struct {
	I, J        int
	Orientation Orientation
	Source      Source
}

// IJ returns the positions of the pair.
func (p Pair) IJ() IJ {
	return IJ{I: p.I, J: p.J}
}

func (p Pair) String() string {
	return fmt.Sprintf("(%3d,%3d)[%s]", p.I, p.J, p.Orientation)
}

// follows reports whether p is the contiguous successor of prev in the
// same run.
func (p Pair) follows(prev Pair) bool {
	return p.Orientation == prev.Orientation &&
		p.I-prev.I == 1 &&
		p.J-prev.J == p.Orientation.step()
}

// Input is the pair store handed over by the front end: the two pair
// collections, the root (outermost) pair of each maximal run in them and
// the sequence length.
type Input struct {
	N               int
	Secondary       []Pair
	SecondaryRoots  []Pair
	Pseudoknot      []Pair
	PseudoknotRoots []Pair
}

// Stem is a helix: an ordered run of pairs from the outermost (tail) to the
// innermost (head).
type Stem struct {
	Pairs       []Pair
	Orientation Orientation
	// Consumed is set once the stem is absorbed as a pseudoknot root.
	Consumed bool
}

// Tail returns the outermost pair.
func (s *Stem) Tail() Pair { return s.Pairs[0] }

// Head returns the innermost pair.
func (s *Stem) Head() Pair { return s.Pairs[len(s.Pairs)-1] }

// Len is the number of pairs in the stem.
func (s *Stem) Len() int { return len(s.Pairs) }

// Key is the tail interval (it, jt); stems are indexed and nested by it.
func (s *Stem) Key() IJ { return s.Tail().IJ() }

// Equal compares the pairs of two stems.
func (s *Stem) Equal(other *Stem) bool {
	if len(s.Pairs) != len(other.Pairs) || s.Orientation != other.Orientation {
		return false
	}
	for k, p := range s.Pairs {
		if p.IJ() != other.Pairs[k].IJ() {
			return false
		}
	}
	return true
}

func (s *Stem) String() string {
	h := s.Head()
	return fmt.Sprintf("Stem%s..%s[%s] len=%d", s.Key(), h.IJ(), s.Orientation, s.Len())
}

// PKType is the classification of a pseudoknot.
type PKType uint8

const (
	// Core pseudoknots bridge into one neighbouring secondary domain.
	Core PKType = iota
	// Extended pseudoknots unite two sibling secondary domains.
	Extended
)

func (t PKType) String() string {
	if t == Extended {
		return "R"
	}
	return "K"
}

// PseudoKnot is a set of crossing linkage stems anchored to one (core) or
// two (extended) root domains.
type PseudoKnot struct {
	Type PKType
	// outer boundary: union of roots and linkages
	IJ       IJ
	Roots    []Domain
	Linkages []*Stem
	// Branches are the secondary domains bridged by the pseudoknot, in
	// start order.
	Branches []IJ
	Consumed bool
}

// Key is the outer boundary of the pseudoknot.
func (pk *PseudoKnot) Key() IJ { return pk.IJ }

// Equal compares type, boundary, roots and linkages.
func (pk *PseudoKnot) Equal(other *PseudoKnot) bool {
	if pk.Type != other.Type || pk.IJ != other.IJ ||
		len(pk.Roots) != len(other.Roots) || len(pk.Linkages) != len(other.Linkages) {
		return false
	}
	for k, r := range pk.Roots {
		if !r.Equal(other.Roots[k]) {
			return false
		}
	}
	for k, l := range pk.Linkages {
		if !l.Equal(other.Linkages[k]) {
			return false
		}
	}
	return true
}

func (pk *PseudoKnot) String() string {
	roots := ""
	for k, r := range pk.Roots {
		if k > 0 {
			roots += ","
		}
		roots += r.Span().String()
	}
	links := ""
	for k, l := range pk.Linkages {
		if k > 0 {
			links += ","
		}
		links += l.Key().String()
	}
	return fmt.Sprintf("PseudoKnot%s[%s] roots=%s linkages=%s", pk.IJ, pk.Type, roots, links)
}

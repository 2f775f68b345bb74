package looper

import "golang.org/x/exp/slices"

// stemBuilder grows stems from tail pairs over one pair collection.
type stemBuilder struct {
	// pairs ordered by i
	pairs []Pair
	index map[IJ]int
	opts  Options
}

func newStemBuilder(pairs []Pair, opts Options) *stemBuilder {
	b := &stemBuilder{
		pairs: sortPairs(pairs),
		index: make(map[IJ]int, len(pairs)),
		opts:  opts,
	}
	for k, p := range b.pairs {
		b.index[p.IJ()] = k
	}
	return b
}

// has reports whether the collection holds a pair at tail with the same
// orientation.
func (b *stemBuilder) has(tail Pair) bool {
	k, ok := b.index[tail.IJ()]
	return ok && b.pairs[k].Orientation == tail.Orientation
}

// Build the stem whose outermost pair is tail.
//
// Each tail yields exactly one stem. Contiguous pairs are collected into
// segments; a segment that resumes within the allowed gap is spliced on as
// long as the connectivity oracle agrees.
// Args:
//
//	tail: the root pair of the run
//
// Returns:
//
//	*Stem: the stem, tail first
//	error: ErrMalformedInput if tail is not in the collection
func (b *stemBuilder) build(tail Pair) (*Stem, error) {
	if !b.has(tail) {
		return nil, intervalErr("build stem", ErrMalformedInput, tail.IJ())
	}
	segs := b.scan(b.index[tail.IJ()])
	return b.splice(segs), nil
}

// scan walks forward from the tail at pairs[k] and returns the connected
// segment candidates, the first one starting at the tail.
func (b *stemBuilder) scan(k int) [][]Pair {
	t := b.pairs[k]
	maxGap := b.opts.maxGap(t.Orientation)

	segs := [][]Pair{}
	cur := []Pair{t}
	stemLen := 1
	prev := t
	for kr := k + 1; kr < len(b.pairs); kr++ {
		nxt := b.pairs[kr]
		if nxt.Orientation != t.Orientation {
			continue
		}
		if nxt.I > t.J {
			// past the end of the tail, nothing more can belong here
			break
		}
		if nxt.follows(prev) {
			cur = append(cur, nxt)
			stemLen++
			prev = nxt
			continue
		}

		// contiguity is lost, close the segment
		segs = append(segs, cur)
		cur = nil
		gap := min(stemLen/2+1, maxGap)
		di := nxt.I - prev.I
		dj := (nxt.J - prev.J) * t.Orientation.step()
		if 0 < di && di <= gap && 0 < dj && dj <= gap && monotone(t, nxt) {
			cur = []Pair{nxt}
			stemLen++
			prev = nxt
			continue
		}
		break
	}
	if len(cur) > 0 {
		segs = append(segs, cur)
	}
	return segs
}

// monotone reports whether p still progresses away from the tail t.
func monotone(t, p Pair) bool {
	if t.Orientation == Parallel {
		return t.I <= p.I && t.J <= p.J
	}
	return t.I < p.I && p.J < t.J
}

// splice joins segments onto the first one until the oracle refuses.
func (b *stemBuilder) splice(segs [][]Pair) *Stem {
	stem := &Stem{
		Pairs:       slices.Clone(segs[0]),
		Orientation: segs[0][0].Orientation,
	}
	prev := segs[0]
	for _, next := range segs[1:] {
		if !b.opts.Connector.Connected(segmentOf(prev), segmentOf(next)) {
			tracef(b.opts.Log, "stem %s: segment %s not connected", stem.Key(), next[0].IJ())
			break
		}
		stem.Pairs = append(stem.Pairs, next...)
		prev = next
	}
	return stem
}

func segmentOf(run []Pair) Segment {
	return Segment{
		Len:         len(run),
		Orientation: run[0].Orientation,
		Tail:        run[0].IJ(),
		Head:        run[len(run)-1].IJ(),
	}
}

// encloses reports whether the tail of s lies within the helix of r, i.e.
// s is a fragment of r.
func (r *Stem) encloses(s *Stem) bool {
	if r.Orientation != s.Orientation {
		return false
	}
	t, h, st := r.Tail(), r.Head(), s.Tail()
	if !(t.I <= st.I && st.I <= h.I) {
		return false
	}
	if r.Orientation == Parallel {
		return t.J <= st.J && st.J <= h.J
	}
	return h.J <= st.J && st.J <= t.J
}

// pruneStems drops every stem that is a fragment of an earlier retained
// stem and returns the survivors ordered by start.
func pruneStems(stems []*Stem) []*Stem {
	sorted := slices.Clone(stems)
	slices.SortStableFunc(sorted, func(a, b *Stem) int { return byStart(a.Key(), b.Key()) })
	kept := []*Stem{}
	for _, s := range sorted {
		fragment := false
		for _, r := range kept {
			if r.encloses(s) {
				fragment = true
				break
			}
		}
		if !fragment {
			kept = append(kept, s)
		}
	}
	return kept
}

// normalizeTails moves a secondary root that crosses its start-ordered
// predecessor over to the pseudoknot roots.
func normalizeTails(ssRoots []Pair) (ss, crossing []Pair) {
	ss = sortPairs(ssRoots)
	kr := 0
	for kr < len(ss)-1 {
		a, b := ss[kr], ss[kr+1]
		if a.I < b.I && b.I < a.J && a.J < b.J {
			crossing = append(crossing, b)
			ss = slices.Delete(ss, kr+1, kr+2)
			continue
		}
		kr++
	}
	return ss, crossing
}

// buildStems grows and prunes the stems of every tail. Each tail is looked
// up in the builders in order; the first one holding it builds the stem.
func buildStems(op string, tails []Pair, builders ...*stemBuilder) ([]*Stem, error) {
	stems := make([]*Stem, 0, len(tails))
	for _, tail := range tails {
		var b *stemBuilder
		for _, cand := range builders {
			if cand.has(tail) {
				b = cand
				break
			}
		}
		if b == nil {
			return nil, intervalErr(op, ErrMalformedInput, tail.IJ())
		}
		stem, err := b.build(tail)
		if err != nil {
			return nil, err
		}
		stems = append(stems, stem)
	}
	return pruneStems(stems), nil
}

// extent is the interval covered by all pairs of the stem. It is the key
// for antiparallel stems; parallel stems reach past it to their head.
func (s *Stem) extent() IJ {
	ij := s.Key()
	for _, p := range s.Pairs {
		ij = ij.union(p.IJ())
	}
	return ij
}

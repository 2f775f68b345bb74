package looper

import (
	"fmt"
	"io"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

func max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func abs[T constraints.Signed | constraints.Float](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// byStart orders intervals by start position, outermost first on ties.
func byStart(a, b IJ) int {
	if a.I != b.I {
		return a.I - b.I
	}
	return b.J - a.J
}

// sortPairs returns a copy of pairs ordered by i.
func sortPairs(pairs []Pair) []Pair {
	out := slices.Clone(pairs)
	slices.SortStableFunc(out, func(a, b Pair) int { return byStart(a.IJ(), b.IJ()) })
	return out
}

// FindRoots returns the outermost pair of every maximal run in pairs.
//
// A pair opens a new run unless the pair preceding it (in i order, same
// orientation) is its contiguous neighbour: (i-1, j+1) for antiparallel
// and (i-1, j-1) for parallel runs.
// Args:
//
//	pairs: one pair collection, any order
//
// Returns:
//
//	[]Pair: the roots, ordered by i
func FindRoots(pairs []Pair) []Pair {
	sorted := sortPairs(pairs)
	roots := []Pair{}
	last := map[Orientation]*Pair{}
	for k := range sorted {
		p := sorted[k]
		prev, ok := last[p.Orientation]
		if !ok || !p.follows(*prev) {
			roots = append(roots, p)
		}
		last[p.Orientation] = &sorted[k]
	}
	return roots
}

// tracef writes one trace line to dst; a nil writer keeps the build silent.
func tracef(dst io.Writer, format string, a ...any) {
	if dst == nil {
		return
	}
	_, _ = fmt.Fprintf(dst, "TRACE: "+format+"\n", a...)
}

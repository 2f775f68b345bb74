package looper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helix returns n antiparallel pairs starting at (i, j).
func helix(i, j, n int, src Source) []Pair {
	out := make([]Pair, n)
	for k := range out {
		out[k] = Pair{I: i + k, J: j - k, Orientation: Antiparallel, Source: src}
	}
	return out
}

func keys(stems []*Stem) []IJ {
	out := make([]IJ, len(stems))
	for k, s := range stems {
		out[k] = s.Key()
	}
	return out
}

func TestStem(t *testing.T) {
	opts := DefaultOptions()

	t.Run("Contiguous", func(t *testing.T) {
		pairs := append(helix(0, 20, 4, Secondary), helix(22, 30, 3, Secondary)...)
		b := newStemBuilder(pairs, opts)

		s, err := b.build(pairs[0])
		require.NoError(t, err)
		assert.Equal(t, 4, s.Len())
		assert.Equal(t, IJ{0, 20}, s.Key())
		assert.Equal(t, IJ{3, 17}, s.Head().IJ())
		assert.Equal(t, Antiparallel, s.Orientation)
	})
	t.Run("BulgeSpliced", func(t *testing.T) {
		pairs := append(helix(0, 20, 3, Secondary), helix(4, 17, 2, Secondary)...)
		b := newStemBuilder(pairs, opts)

		s, err := b.build(pairs[0])
		require.NoError(t, err)
		assert.Equal(t, 5, s.Len())
		assert.Equal(t, IJ{5, 16}, s.Head().IJ())
	})
	t.Run("GapTooWide", func(t *testing.T) {
		pairs := append(helix(0, 20, 3, Secondary), helix(6, 17, 2, Secondary)...)
		b := newStemBuilder(pairs, opts)

		s, err := b.build(pairs[0])
		require.NoError(t, err)
		assert.Equal(t, 3, s.Len())
	})
	t.Run("GapBoundByLength", func(t *testing.T) {
		// a single pair admits a gap of one only
		pairs := append(helix(0, 20, 1, Secondary), helix(2, 18, 3, Secondary)...)
		b := newStemBuilder(pairs, opts)

		s, err := b.build(pairs[0])
		require.NoError(t, err)
		assert.Equal(t, 1, s.Len())
	})
	t.Run("ConnectorRefuses", func(t *testing.T) {
		o := opts
		calls := 0
		o.Connector = ConnectorFunc(func(prev, next Segment) bool {
			calls++
			assert.Equal(t, Segment{Len: 3, Tail: IJ{0, 20}, Head: IJ{2, 18}}, prev)
			assert.Equal(t, Segment{Len: 2, Tail: IJ{4, 17}, Head: IJ{5, 16}}, next)
			return false
		})
		pairs := append(helix(0, 20, 3, Secondary), helix(4, 17, 2, Secondary)...)
		b := newStemBuilder(pairs, o)

		s, err := b.build(pairs[0])
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, 3, s.Len())
	})
	t.Run("Monotone", func(t *testing.T) {
		pairs := helix(0, 20, 3, Secondary)
		for k := 1; k < len(pairs); k++ {
			assert.Less(t, pairs[k-1].I, pairs[k].I)
			assert.Greater(t, pairs[k-1].J, pairs[k].J)
		}
		s, err := newStemBuilder(pairs, opts).build(pairs[0])
		require.NoError(t, err)
		for k := 1; k < s.Len(); k++ {
			assert.True(t, monotone(s.Tail(), s.Pairs[k]))
		}
	})
	t.Run("Parallel", func(t *testing.T) {
		pairs := []Pair{
			{I: 0, J: 10, Orientation: Parallel},
			{I: 1, J: 11, Orientation: Parallel},
			{I: 2, J: 12, Orientation: Parallel},
			{I: 3, J: 9, Orientation: Antiparallel},
		}
		s, err := newStemBuilder(pairs, opts).build(pairs[0])
		require.NoError(t, err)
		assert.Equal(t, 3, s.Len())
		assert.Equal(t, Parallel, s.Orientation)
		assert.Equal(t, IJ{0, 10}, s.Key())
		assert.Equal(t, IJ{0, 12}, s.extent())
	})
	t.Run("MissingTail", func(t *testing.T) {
		b := newStemBuilder(helix(0, 20, 3, Secondary), opts)

		_, err := b.build(Pair{I: 5, J: 9})
		assert.ErrorIs(t, err, ErrMalformedInput)
		// orientation is part of the lookup
		_, err = b.build(Pair{I: 0, J: 20, Orientation: Parallel})
		assert.ErrorIs(t, err, ErrMalformedInput)
	})
	t.Run("PruneFragments", func(t *testing.T) {
		pairs := append(helix(0, 20, 3, Secondary), helix(4, 17, 2, Secondary)...)
		pairs = append(pairs, helix(8, 14, 2, Secondary)...)
		b := newStemBuilder(pairs, opts)

		stems, err := buildStems("stems", FindRoots(pairs), b)
		require.NoError(t, err)
		assert.Equal(t, []IJ{{0, 20}, {8, 14}}, keys(stems))
	})
	t.Run("BuildersInOrder", func(t *testing.T) {
		ss := newStemBuilder(helix(0, 20, 3, Secondary), opts)
		pk := newStemBuilder(helix(5, 30, 3, Pseudoknot), opts)

		stems, err := buildStems("linkages", []Pair{{I: 0, J: 20}, {I: 5, J: 30}}, pk, ss)
		require.NoError(t, err)
		assert.Equal(t, []IJ{{0, 20}, {5, 30}}, keys(stems))

		_, err = buildStems("linkages", []Pair{{I: 1, J: 30}}, pk, ss)
		assert.ErrorIs(t, err, ErrMalformedInput)
	})
	t.Run("NormalizeTails", func(t *testing.T) {
		roots := []Pair{{I: 5, J: 15}, {I: 1, J: 10}, {I: 20, J: 30}}
		ss, crossing := normalizeTails(roots)
		assert.Equal(t, []Pair{{I: 1, J: 10}, {I: 20, J: 30}}, ss)
		assert.Equal(t, []Pair{{I: 5, J: 15}}, crossing)
	})
	t.Run("FindRoots", func(t *testing.T) {
		pairs := append(helix(0, 20, 3, Secondary), helix(4, 17, 2, Secondary)...)
		pairs = append(pairs,
			Pair{I: 22, J: 30, Orientation: Parallel},
			Pair{I: 23, J: 31, Orientation: Parallel},
		)
		roots := FindRoots(pairs)
		require.Len(t, roots, 3)
		assert.Equal(t, []IJ{{0, 20}, {4, 17}, {22, 30}}, []IJ{roots[0].IJ(), roots[1].IJ(), roots[2].IJ()})
		assert.Equal(t, Parallel, roots[2].Orientation)
	})
}

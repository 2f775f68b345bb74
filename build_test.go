package looper_test

import (
	"bytes"
	"testing"

	"github.com/4dnucleome/looper"
	"github.com/4dnucleome/looper/vienna"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// two core pseudoknots, the second nested in the first
	coreStructure = ".(((...[[[....)))..(((....[[[..)))..]]].]]]."
	// kissing hairpins
	extendedStructure = ".(((...[[[.)))..(((..]]]...)))."
	hType             = "((([[[)))]]]"
	threeDomains      = ".(((..[[[..)))..(((...)))..(((..]]]..)))."
	// the middle hairpin is bridged to both neighbours
	chained    = ".(((..[[[..)))..(((..]]]..{{{..)))..(((..}}}..)))."
	multiloop  = "((..((...))..((...))..))"
	plainHairp = "..((((....))))..."
)

func build(t *testing.T, structure string) *looper.Result {
	t.Helper()
	in, err := vienna.Parse(structure)
	require.NoError(t, err)
	res, err := looper.Build(in, looper.DefaultOptions())
	require.NoError(t, err)
	return res
}

func spans(nodes []*looper.Node) []looper.IJ {
	out := make([]looper.IJ, len(nodes))
	for k, n := range nodes {
		out[k] = n.Span()
	}
	return out
}

func rootSpans(pk *looper.PseudoKnot) []looper.IJ {
	out := make([]looper.IJ, len(pk.Roots))
	for k, r := range pk.Roots {
		out[k] = r.Span()
	}
	return out
}

// run returns n pairs from (i, j) stepping the way o does.
func run(i, j, n int, o looper.Orientation, src looper.Source) []looper.Pair {
	step := -1
	if o == looper.Parallel {
		step = 1
	}
	out := make([]looper.Pair, n)
	for k := range out {
		out[k] = looper.Pair{I: i + k, J: j + k*step, Orientation: o, Source: src}
	}
	return out
}

// withParallelLinkage is two hairpins, or one when core is set, with a
// parallel linkage reaching from the first hairpin loop.
func withParallelLinkage(core bool) looper.Input {
	ss := run(1, 15, 3, looper.Antiparallel, looper.Secondary)
	pk := run(7, 22, 3, looper.Parallel, looper.Pseudoknot)
	n := 35
	if core {
		pk = run(7, 25, 2, looper.Parallel, looper.Pseudoknot)
		n = 28
	} else {
		ss = append(ss, run(18, 33, 3, looper.Antiparallel, looper.Secondary)...)
	}
	return looper.Input{
		N:               n,
		Secondary:       ss,
		SecondaryRoots:  looper.FindRoots(ss),
		Pseudoknot:      pk,
		PseudoknotRoots: looper.FindRoots(pk),
	}
}

func TestBuild(t *testing.T) {
	t.Run("CorePseudoKnots", func(t *testing.T) {
		res := build(t, coreStructure)

		require.Len(t, res.PseudoKnots, 2)
		k1, k2 := res.PseudoKnots[0], res.PseudoKnots[1]
		assert.Equal(t, looper.Core, k1.Type)
		assert.Equal(t, looper.IJ{I: 1, J: 42}, k1.Key())
		assert.Equal(t, []looper.IJ{{I: 1, J: 16}}, rootSpans(k1))
		require.Len(t, k1.Linkages, 1)
		assert.Equal(t, looper.IJ{I: 7, J: 42}, k1.Linkages[0].Key())

		assert.Equal(t, looper.Core, k2.Type)
		assert.Equal(t, looper.IJ{I: 19, J: 38}, k2.Key())
		assert.Equal(t, []looper.IJ{{I: 19, J: 33}}, rootSpans(k2))
		require.Len(t, k2.Linkages, 1)
		assert.Equal(t, looper.IJ{I: 26, J: 38}, k2.Linkages[0].Key())

		for _, s := range res.Stems {
			assert.True(t, s.Consumed, s.String())
		}
		g := res.General
		assert.Equal(t, looper.IJ{I: 0, J: 43}, g.Span())
		require.Len(t, g.Children, 1)
		assert.Same(t, k1, g.Children[0].Domain.PseudoKnot)
		require.Len(t, g.Children[0].Children, 1)
		assert.Same(t, k2, g.Children[0].Children[0].Domain.PseudoKnot)

		assert.Equal(t, []looper.IJ{{I: 1, J: 16}, {I: 19, J: 33}}, spans(res.Secondary.Children))
	})
	t.Run("ExtendedPseudoKnot", func(t *testing.T) {
		res := build(t, extendedStructure)

		require.Len(t, res.PseudoKnots, 1)
		r := res.PseudoKnots[0]
		assert.Equal(t, looper.Extended, r.Type)
		assert.Equal(t, looper.IJ{I: 1, J: 29}, r.Key())
		assert.Equal(t, []looper.IJ{{I: 1, J: 13}, {I: 16, J: 29}}, rootSpans(r))
		assert.Equal(t, []looper.IJ{{I: 1, J: 13}, {I: 16, J: 29}}, r.Branches)
		require.Len(t, r.Linkages, 1)
		assert.Equal(t, looper.IJ{I: 7, J: 23}, r.Linkages[0].Key())

		assert.Equal(t, []looper.IJ{{I: 1, J: 29}}, spans(res.General.Children))
		assert.Empty(t, res.General.Children[0].Children)
		assert.Equal(t, []looper.IJ{{I: 1, J: 13}, {I: 16, J: 29}}, res.Branches(0, 30))
	})
	t.Run("HType", func(t *testing.T) {
		res := build(t, hType)

		require.Len(t, res.PseudoKnots, 1)
		assert.Equal(t, looper.Core, res.PseudoKnots[0].Type)
		assert.Equal(t, looper.IJ{I: 0, J: 11}, res.PseudoKnots[0].Key())
		assert.Equal(t, []looper.IJ{{I: 0, J: 11}}, spans(res.General.Children))
	})
	t.Run("ThreeDomains", func(t *testing.T) {
		res := build(t, threeDomains)

		require.Len(t, res.PseudoKnots, 1)
		r := res.PseudoKnots[0]
		assert.Equal(t, looper.Extended, r.Type)
		assert.Equal(t, []looper.IJ{{I: 1, J: 13}, {I: 27, J: 39}}, rootSpans(r))
		assert.Len(t, r.Branches, 3)

		// the middle hairpin is bridged but not a root
		require.Len(t, res.General.Children, 1)
		assert.Equal(t, []looper.IJ{{I: 16, J: 24}}, spans(res.General.Children[0].Children))
	})
	t.Run("PseudoKnotRoot", func(t *testing.T) {
		res := build(t, chained)

		require.Len(t, res.General.Children, 1)
		outer := res.General.Children[0].Domain.PseudoKnot
		require.NotNil(t, outer)
		assert.Equal(t, looper.IJ{I: 1, J: 48}, outer.Key())
		require.Len(t, outer.Roots, 2)
		assert.Equal(t, looper.KindPseudoKnot, outer.Roots[0].Kind)
		assert.Equal(t, looper.IJ{I: 1, J: 33}, outer.Roots[0].Span())
		assert.True(t, outer.Roots[0].PseudoKnot.Consumed)
		assert.Equal(t, looper.KindStem, outer.Roots[1].Kind)
	})
	t.Run("MissingLinkageTail", func(t *testing.T) {
		in, err := vienna.Parse(extendedStructure)
		require.NoError(t, err)
		in.PseudoknotRoots = append(in.PseudoknotRoots, looper.Pair{I: 4, J: 26})

		_, err = looper.Build(in, looper.DefaultOptions())
		assert.ErrorIs(t, err, looper.ErrMalformedInput)
	})
	t.Run("MissingSecondaryTail", func(t *testing.T) {
		in, err := vienna.Parse(plainHairp)
		require.NoError(t, err)
		in.SecondaryRoots = append(in.SecondaryRoots, looper.Pair{I: 0, J: 16})

		_, err = looper.Build(in, looper.DefaultOptions())
		assert.ErrorIs(t, err, looper.ErrMalformedInput)
	})
	t.Run("InvalidInput", func(t *testing.T) {
		_, err := looper.Build(looper.Input{}, looper.DefaultOptions())
		assert.ErrorIs(t, err, looper.ErrMalformedInput)

		in := looper.Input{N: 10, Secondary: []looper.Pair{{I: 2, J: 12}}, SecondaryRoots: []looper.Pair{{I: 2, J: 12}}}
		_, err = looper.Build(in, looper.DefaultOptions())
		assert.ErrorIs(t, err, looper.ErrMalformedInput)
	})
	t.Run("CrossingSecondaryRoot", func(t *testing.T) {
		pairs := []looper.Pair{{I: 1, J: 10}, {I: 2, J: 9}, {I: 5, J: 15}, {I: 6, J: 14}}
		in := looper.Input{N: 17, Secondary: pairs, SecondaryRoots: looper.FindRoots(pairs)}
		var log bytes.Buffer
		opts := looper.DefaultOptions()
		opts.Log = &log

		res, err := looper.Build(in, opts)
		require.NoError(t, err)
		require.Len(t, res.Stems, 1)
		require.Len(t, res.Linkages, 1)
		assert.Equal(t, looper.IJ{I: 5, J: 15}, res.Linkages[0].Key())
		require.Len(t, res.PseudoKnots, 1)
		assert.Equal(t, looper.IJ{I: 1, J: 15}, res.PseudoKnots[0].Key())
		assert.Contains(t, log.String(), "TRACE: secondary root (5,15) crosses")
	})
	t.Run("Multiloop", func(t *testing.T) {
		res := build(t, multiloop)

		require.Len(t, res.General.Children, 1)
		outer := res.General.Children[0]
		assert.Equal(t, 2, outer.BranchCount())
		assert.Equal(t, []looper.IJ{{I: 4, J: 10}, {I: 13, J: 19}}, res.Branches(0, 23))
		assert.Empty(t, res.PseudoKnots)
		assert.True(t, res.General.Equal(res.Secondary))
	})
	t.Run("ParallelLinkage", func(t *testing.T) {
		for _, tc := range []struct {
			core     bool
			typ      looper.PKType
			boundary looper.IJ
			roots    []looper.IJ
		}{
			{false, looper.Extended, looper.IJ{I: 1, J: 33}, []looper.IJ{{I: 1, J: 15}, {I: 18, J: 33}}},
			// the boundary reaches the parallel head, past the key (7,25)
			{true, looper.Core, looper.IJ{I: 1, J: 26}, []looper.IJ{{I: 1, J: 15}}},
		} {
			res, err := looper.Build(withParallelLinkage(tc.core), looper.DefaultOptions())
			require.NoError(t, err)

			require.Len(t, res.Linkages, 1)
			assert.Equal(t, looper.Parallel, res.Linkages[0].Orientation)
			require.Len(t, res.PseudoKnots, 1)
			pk := res.PseudoKnots[0]
			assert.Equal(t, tc.typ, pk.Type)
			assert.Equal(t, tc.boundary, pk.Key())
			assert.Equal(t, tc.roots, rootSpans(pk))
			assert.Equal(t, []looper.IJ{tc.boundary}, spans(res.General.Children))

			derived := looper.Derive(res.General)
			assert.Equal(t, looper.FindRoots(res.Linkages[0].Pairs), derived.PseudoknotRoots)
			for _, p := range derived.Pseudoknot {
				assert.Equal(t, looper.Parallel, p.Orientation)
			}
			again, err := looper.Build(derived, looper.DefaultOptions())
			require.NoError(t, err)
			assert.True(t, res.General.Equal(again.General), "%s\n%s", res.General, again.General)
		}
	})
	t.Run("ThermoConnector", func(t *testing.T) {
		// a one-pair segment past a bulge does not pay for the loop
		in, err := vienna.Parse("(((.(...))))")
		require.NoError(t, err)

		res, err := looper.Build(in, looper.DefaultOptions())
		require.NoError(t, err)
		require.Len(t, res.Stems, 1)
		assert.Equal(t, 4, res.Stems[0].Len())

		opts := looper.DefaultOptions()
		opts.Connector = looper.NewThermoConnector(37)
		res, err = looper.Build(in, opts)
		require.NoError(t, err)
		require.Len(t, res.Stems, 2)
		assert.Equal(t, 3, res.Stems[0].Len())
		assert.Equal(t, []looper.IJ{{I: 4, J: 8}}, spans(res.General.Children[0].Children))
	})
}

func TestBuildProperties(t *testing.T) {
	structures := []string{coreStructure, extendedStructure, hType, threeDomains, chained, multiloop, plainHairp}

	t.Run("Containment", func(t *testing.T) {
		for _, s := range structures {
			res := build(t, s)
			err := res.General.Walk(func(n *looper.Node, depth int) error {
				for k, c := range n.Children {
					assert.True(t, n.Span().Contains(c.Span()), "%s: %s in %s", s, c.Span(), n.Span())
					if k > 0 {
						assert.Less(t, n.Children[k-1].Span().J, c.Span().I, s)
					}
				}
				return nil
			})
			assert.NoError(t, err)
		}
	})
	t.Run("Completeness", func(t *testing.T) {
		for _, s := range structures {
			res := build(t, s)
			seen := map[*looper.Stem]int{}
			for _, pk := range res.PseudoKnots {
				for _, l := range pk.Linkages {
					seen[l]++
				}
			}
			for _, l := range res.Linkages {
				assert.Equal(t, 1, seen[l], "%s: linkage %s", s, l.Key())
			}
		}
	})
	t.Run("Monotone", func(t *testing.T) {
		results := []*looper.Result{}
		for _, s := range structures {
			results = append(results, build(t, s))
		}
		for _, core := range []bool{false, true} {
			res, err := looper.Build(withParallelLinkage(core), looper.DefaultOptions())
			require.NoError(t, err)
			results = append(results, res)
		}

		parallel := 0
		for _, res := range results {
			for _, st := range append(res.Stems, res.Linkages...) {
				if st.Orientation == looper.Parallel {
					parallel++
				}
				for k := 1; k < st.Len(); k++ {
					prev, p := st.Pairs[k-1], st.Pairs[k]
					assert.Less(t, prev.I, p.I, st.String())
					if st.Orientation == looper.Parallel {
						assert.Less(t, prev.J, p.J, st.String())
					} else {
						assert.Greater(t, prev.J, p.J, st.String())
					}
				}
			}
		}
		assert.Equal(t, 2, parallel)
	})
	t.Run("Idempotent", func(t *testing.T) {
		for _, s := range structures {
			res := build(t, s)
			again, err := looper.Build(looper.Derive(res.General), looper.DefaultOptions())
			require.NoError(t, err, s)
			assert.True(t, res.General.Equal(again.General), "%s:\n%s\n%s", s, res.General, again.General)
		}
	})
	t.Run("DotBracket", func(t *testing.T) {
		for _, s := range []string{coreStructure, extendedStructure, hType, threeDomains, multiloop, plainHairp} {
			res := build(t, s)
			db, err := looper.DotBracket(res.General)
			require.NoError(t, err)
			assert.Equal(t, s, db)
		}

		// the two linkages never cross, so they share a bracket family
		res := build(t, chained)
		db, err := looper.DotBracket(res.General)
		require.NoError(t, err)
		assert.Equal(t, ".(((..[[[..)))..(((..]]]..[[[..)))..(((..]]]..))).", db)
		again := build(t, db)
		assert.True(t, res.General.Equal(again.General))
	})
	t.Run("DotBracketParallel", func(t *testing.T) {
		pairs := []looper.Pair{
			{I: 0, J: 10, Orientation: looper.Parallel},
			{I: 1, J: 11, Orientation: looper.Parallel},
			{I: 2, J: 12, Orientation: looper.Parallel},
		}
		res, err := looper.Build(looper.Input{N: 14, Secondary: pairs, SecondaryRoots: looper.FindRoots(pairs)}, looper.DefaultOptions())
		require.NoError(t, err)
		require.Len(t, res.Stems, 1)
		assert.Equal(t, looper.Parallel, res.Stems[0].Orientation)

		_, err = looper.DotBracket(res.General)
		assert.Error(t, err)
	})
}

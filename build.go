package looper

import "golang.org/x/exp/slices"

// Result of one Build call.
type Result struct {
	// N is the sequence length.
	N int
	// Secondary is the tree of the secondary stems alone.
	Secondary *Node
	// General is the final tree with pseudoknots grafted in.
	General *Node
	// Stems are the secondary stems ordered by start; roots of a
	// pseudoknot are flagged Consumed.
	Stems []*Stem
	// Linkages are the crossing stems ordered by start.
	Linkages    []*Stem
	PseudoKnots []*PseudoKnot
}

// Build runs the whole pipeline over one annotated structure: stems are
// grown from the roots, the secondary tree is built, every linkage is
// classified as a core or extended pseudoknot, conflicts are resolved and
// the pseudoknots are grafted into the general tree.
//
// Every failure is fatal and returned as an *IntervalError wrapping one of
// the package sentinels; no partial result is returned.
func Build(in Input, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if err := validate(in); err != nil {
		return nil, err
	}

	ssRoots, crossing := normalizeTails(in.SecondaryRoots)
	for _, p := range crossing {
		tracef(opts.Log, "secondary root %s crosses its predecessor, taken as linkage", p.IJ())
	}
	ssb := newStemBuilder(in.Secondary, opts)
	pkb := newStemBuilder(in.Pseudoknot, opts)

	stems, err := buildStems("secondary stems", ssRoots, ssb)
	if err != nil {
		return nil, err
	}
	linkTails := sortPairs(append(slices.Clone(in.PseudoknotRoots), crossing...))
	links, err := buildStems("linkage stems", linkTails, pkb, ssb)
	if err != nil {
		return nil, err
	}
	tracef(opts.Log, "%d secondary stems, %d linkages", len(stems), len(links))

	ssDomains := make([]Domain, len(stems))
	for k, s := range stems {
		ssDomains[k] = StemDomain(s)
	}
	ssTree, err := BuildTree(0, in.N-1, ssDomains, opts.MaxDepth)
	if err != nil {
		return nil, err
	}

	cores, exts, err := newClassifier(ssTree, stems, opts).classifyAll(links)
	if err != nil {
		return nil, err
	}
	cands, err := resolveConflicts(cores, exts, opts.Log)
	if err != nil {
		return nil, err
	}
	pks, err := newPKBuilder(stems, links, opts.Log).build(cands)
	if err != nil {
		return nil, err
	}

	general, err := graft(in.N, stems, pks, opts.MaxDepth, opts.Log)
	if err != nil {
		return nil, err
	}
	return &Result{
		N:           in.N,
		Secondary:   ssTree,
		General:     general,
		Stems:       stems,
		Linkages:    links,
		PseudoKnots: pks,
	}, nil
}

// validate checks that every pair lies inside the sequence with i < j.
func validate(in Input) error {
	if in.N <= 0 {
		return intervalErr("validate", ErrMalformedInput, IJ{I: 0, J: in.N - 1})
	}
	for _, set := range [][]Pair{in.Secondary, in.SecondaryRoots, in.Pseudoknot, in.PseudoknotRoots} {
		for _, p := range set {
			if p.I < 0 || p.J >= in.N || p.I >= p.J {
				return intervalErr("validate", ErrMalformedInput, p.IJ())
			}
		}
	}
	return nil
}

// Branches returns the keys of the secondary stems lying strictly inside
// (ib, jb), ordered by start.
func (r *Result) Branches(ib, jb int) []IJ {
	out := []IJ{}
	for _, s := range r.Stems {
		k := s.Key()
		if ib < k.I && k.J < jb {
			out = append(out, k)
		}
	}
	return out
}

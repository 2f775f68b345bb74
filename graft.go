package looper

import "io"

// markRoots flags the roots of pk as consumed, descending into roots that
// are pseudoknots themselves.
func markRoots(pk *PseudoKnot, depth, maxDepth int) error {
	if depth > maxDepth {
		return intervalErr("mark roots", ErrRecursionOverflow, pk.Key())
	}
	for _, r := range pk.Roots {
		switch r.Kind {
		case KindStem:
			r.Stem.Consumed = true
		case KindPseudoKnot:
			r.PseudoKnot.Consumed = true
			if err := markRoots(r.PseudoKnot, depth+1, maxDepth); err != nil {
				return err
			}
		}
	}
	return nil
}

// graft assembles the general tree over (0, n-1) from the stems and
// pseudoknots that are not roots of another pseudoknot.
func graft(n int, stems []*Stem, pks []*PseudoKnot, maxDepth int, log io.Writer) (*Node, error) {
	for _, pk := range pks {
		if err := markRoots(pk, 0, maxDepth); err != nil {
			return nil, err
		}
	}

	domains := make([]Domain, 0, len(stems)+len(pks))
	for _, s := range stems {
		if !s.Consumed {
			domains = append(domains, StemDomain(s))
		}
	}
	for _, pk := range pks {
		if !pk.Consumed {
			domains = append(domains, PseudoKnotDomain(pk))
		}
	}
	tracef(log, "graft: %d domains over (0,%d)", len(domains), n-1)
	return BuildTree(0, n-1, domains, maxDepth)
}

package looper

import (
	"io"

	"golang.org/x/exp/slices"
)

// resolveConflicts reconciles core candidates against extended ones so
// that no two surviving records share a boundary and none partially
// overlap.
func resolveConflicts(cores, exts []*candidate, log io.Writer) ([]*candidate, error) {
	kR := 0
	for kR < len(exts) {
		r := exts[kR]
		discarded := false
		kK := 0
		for kK < len(cores) {
			k := cores[kK]
			switch {
			case k.span == r.span:
				return nil, conflictErr("resolve", ErrClassificationContradiction, k.span, r.span)
			case k.span.Contains(r.span):
				tracef(log, "resolve: extended %s inside core %s, merged", r.span, k.span)
				k.links = append(k.links, r.links...)
				discarded = true
			case r.span.Contains(k.span):
				tracef(log, "resolve: core %s inside extended %s, merged", k.span, r.span)
				r.links = append(r.links, k.links...)
				cores = slices.Delete(cores, kK, kK+1)
				continue
			case k.span.Crosses(r.span):
				tracef(log, "resolve: core %s overlaps extended %s, joined", k.span, r.span)
				k.typ = Extended
				k.span = r.span
				k.domains = r.domains
				k.links = append(k.links, r.links...)
				discarded = true
			}
			if discarded {
				break
			}
			kK++
		}
		if discarded {
			exts = slices.Delete(exts, kR, kR+1)
			continue
		}
		kR++
	}
	return append(cores, exts...), nil
}

// pkBuilder turns resolved candidates into PseudoKnot records.
type pkBuilder struct {
	stems map[IJ]*Stem
	links map[IJ]*Stem
	pks   map[IJ]*PseudoKnot
	// owner maps a stem key to the outermost pseudoknot anchored on it
	owner map[IJ]*PseudoKnot
	log   io.Writer
}

func newPKBuilder(stems, links []*Stem, log io.Writer) *pkBuilder {
	b := &pkBuilder{
		stems: make(map[IJ]*Stem, len(stems)),
		links: make(map[IJ]*Stem, len(links)),
		pks:   map[IJ]*PseudoKnot{},
		owner: map[IJ]*PseudoKnot{},
		log:   log,
	}
	for _, s := range stems {
		b.stems[s.Key()] = s
	}
	for _, l := range links {
		b.links[l.Key()] = l
	}
	return b
}

// root resolves a domain span to a secondary stem or, failing that, to a
// pseudoknot built earlier. A stem that already anchors a pseudoknot
// resolves to the outermost pseudoknot holding it.
func (b *pkBuilder) root(ij IJ) (Domain, error) {
	if s, ok := b.stems[ij]; ok {
		if pk, ok := b.owner[ij]; ok {
			tracef(b.log, "root %s: anchored on %s", ij, pk.Key())
			return PseudoKnotDomain(pk), nil
		}
		return StemDomain(s), nil
	}
	if pk, ok := b.pks[ij]; ok {
		return PseudoKnotDomain(pk), nil
	}
	return Domain{}, intervalErr("pseudoknot root", ErrMalformedInput, ij)
}

// Build the PseudoKnot records, innermost first so that an outer record can
// be anchored on an inner one.
// Args:
//
//	cands: the resolved candidates
//
// Returns:
//
//	[]*PseudoKnot: ordered by start
//	error: ErrMalformedInput when a root or linkage has no record
func (b *pkBuilder) build(cands []*candidate) ([]*PseudoKnot, error) {
	sorted := slices.Clone(cands)
	slices.SortStableFunc(sorted, func(x, y *candidate) int {
		if wx, wy := x.span.J-x.span.I, y.span.J-y.span.I; wx != wy {
			return wx - wy
		}
		return byStart(x.span, y.span)
	})

	out := make([]*PseudoKnot, 0, len(sorted))
	for _, c := range sorted {
		pk, err := b.one(c)
		if err != nil {
			return nil, err
		}
		tracef(b.log, "pseudoknot %s", pk)
		b.pks[pk.Key()] = pk
		b.claim(pk)
		out = append(out, pk)
	}
	slices.SortStableFunc(out, func(x, y *PseudoKnot) int { return byStart(x.Key(), y.Key()) })
	return out, nil
}

// claim makes pk the owner of its root stems and of every stem owned by
// its root pseudoknots.
func (b *pkBuilder) claim(pk *PseudoKnot) {
	for _, r := range pk.Roots {
		switch r.Kind {
		case KindStem:
			b.owner[r.Stem.Key()] = pk
		case KindPseudoKnot:
			for k, o := range b.owner {
				if o == r.PseudoKnot {
					b.owner[k] = pk
				}
			}
		}
	}
}

func (b *pkBuilder) one(c *candidate) (*PseudoKnot, error) {
	pk := &PseudoKnot{Type: Core, Branches: slices.Clone(c.domains)}
	spans := []IJ{c.domains[0]}
	if len(c.domains) > 1 {
		pk.Type = Extended
		spans = append(spans, c.domains[len(c.domains)-1])
	}

	var boundary IJ
	for k, ij := range spans {
		d, err := b.root(ij)
		if err != nil {
			return nil, err
		}
		if k > 0 && d.Equal(pk.Roots[0]) {
			return nil, conflictErr("pseudoknot root", ErrClassificationContradiction, spans[0], ij)
		}
		pk.Roots = append(pk.Roots, d)
		if k == 0 {
			boundary = d.Span()
		}
		boundary = boundary.union(d.Span())
	}

	for _, ij := range c.links {
		l, ok := b.links[ij]
		if !ok {
			return nil, intervalErr("pseudoknot linkage", ErrMalformedInput, ij)
		}
		pk.Linkages = append(pk.Linkages, l)
		boundary = boundary.union(l.extent())
	}
	slices.SortStableFunc(pk.Linkages, func(x, y *Stem) int {
		if x.Key().J != y.Key().J {
			return x.Key().J - y.Key().J
		}
		return x.Key().I - y.Key().I
	})
	pk.IJ = boundary
	return pk, nil
}

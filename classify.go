package looper

import "io"

// candidate is a pseudoknot before its roots and linkages are resolved to
// records: the bridged domain spans and the linkage keys.
type candidate struct {
	typ     PKType
	span    IJ
	domains []IJ
	links   []IJ
}

// mergeKey identifies candidates that describe the same pseudoknot: the
// bridged region for extended ones, the root domain for core ones.
func (c *candidate) mergeKey() IJ {
	if c.typ == Extended {
		return c.span
	}
	return c.domains[0]
}

func (c *candidate) absorb(other *candidate) {
	c.span = c.span.union(other.span)
	c.links = append(c.links, other.links...)
}

// classifier decides, for each linkage, which secondary domains it bridges.
type classifier struct {
	tree     *Node
	stems    []*Stem
	maxDepth int
	log      io.Writer
}

func newClassifier(tree *Node, stems []*Stem, opts Options) *classifier {
	return &classifier{tree: tree, stems: stems, maxDepth: opts.MaxDepth, log: opts.Log}
}

// isCorePK reports whether the secondary stems crossed by the linkage sit on
// one side of it only.
func (c *classifier) isCorePK(link IJ) bool {
	left, right := 0, 0
	for _, s := range c.stems {
		k := s.Key()
		if k == link {
			continue
		}
		switch {
		case link.I < k.I && k.I < link.J && link.J < k.J:
			right++
		case k.I < link.I && link.I < k.J && k.J < link.J:
			left++
		}
	}
	return (left > 0) != (right > 0)
}

// scanForKdmns finds the first domain, in pre-order, that the linkage
// crosses. The search only descends into nodes whose inner interval
// strictly contains the linkage.
func (c *classifier) scanForKdmns(n *Node, link IJ, depth int) (IJ, bool, error) {
	if depth > c.maxDepth {
		return IJ{}, false, intervalErr("scan core domains", ErrRecursionOverflow, link)
	}
	span := n.Span()
	if n.Domain.Kind != KindBase && span.Crosses(link) {
		return span, true, nil
	}
	inner := n.Domain.inner()
	if !(inner.I < link.I && link.J < inner.J) {
		return IJ{}, false, nil
	}
	for _, ch := range n.Children {
		d, ok, err := c.scanForKdmns(ch, link, depth+1)
		if err != nil || ok {
			return d, ok, err
		}
	}
	return IJ{}, false, nil
}

// scanForRdmns finds two distinct sibling domains, one holding each end of
// the linkage, and returns the region from the start of the first to the
// end of the second.
func (c *classifier) scanForRdmns(n *Node, link IJ, depth int) (IJ, bool, error) {
	if depth > c.maxDepth {
		return IJ{}, false, intervalErr("scan extended domains", ErrRecursionOverflow, link)
	}
	if len(n.Children) == 0 {
		return IJ{}, false, nil
	}
	first, last := n.Children[0].Span(), n.Children[len(n.Children)-1].Span()
	if !(first.I < link.I && link.J < last.J) {
		return IJ{}, false, nil
	}

	iR, jR := -1, -1
	for k, ch := range n.Children {
		s := ch.Span()
		if s.I < link.I && link.I < s.J {
			iR = k
		} else if s.I < link.J && link.J < s.J {
			jR = k
		}
	}
	if iR >= 0 && iR < jR {
		return IJ{I: n.Children[iR].Span().I, J: n.Children[jR].Span().J}, true, nil
	}

	for _, ch := range n.Children {
		r, ok, err := c.scanForRdmns(ch, link, depth+1)
		if err != nil || ok {
			return r, ok, err
		}
	}
	return IJ{}, false, nil
}

// isExtendedPK confirms the linkage crosses one stem of the region on
// each side.
func (c *classifier) isExtendedPK(region, link IJ) bool {
	left, right := false, false
	for _, s := range c.stems {
		k := s.Key()
		if k == link || !region.Contains(k) {
			continue
		}
		if k.I < link.I && link.I < k.J && k.J < link.J {
			left = true
		}
		if link.I < k.I && k.I < link.J && link.J < k.J {
			right = true
		}
	}
	return left && right
}

// classify files one linkage as an extended or core candidate. Extended is
// tried first; a linkage that is neither is an error, never dropped.
func (c *classifier) classify(link IJ) (*candidate, error) {
	region, ok, err := c.scanForRdmns(c.tree, link, 0)
	if err != nil {
		return nil, err
	}
	if ok && c.isExtendedPK(region, link) {
		dmns, err := domainsIn(c.tree, region, 0, c.maxDepth)
		if err != nil {
			return nil, err
		}
		if len(dmns) < 2 {
			return nil, conflictErr("classify extended", ErrEmptyDomain, link, region)
		}
		span := dmns[0].union(dmns[len(dmns)-1])
		tracef(c.log, "linkage %s: extended over %s, %d domains", link, span, len(dmns))
		return &candidate{typ: Extended, span: span, domains: dmns, links: []IJ{link}}, nil
	}

	root, ok, err := c.scanForKdmns(c.tree, link, 0)
	if err != nil {
		return nil, err
	}
	if ok && c.isCorePK(link) {
		tracef(c.log, "linkage %s: core on %s", link, root)
		return &candidate{typ: Core, span: root.union(link), domains: []IJ{root}, links: []IJ{link}}, nil
	}
	return nil, intervalErr("classify", ErrEmptyDomain, link)
}

// classifyAll classifies every linkage and merges candidates that describe
// the same pseudoknot.
func (c *classifier) classifyAll(links []*Stem) (cores, exts []*candidate, err error) {
	for _, l := range links {
		cand, err := c.classify(l.Key())
		if err != nil {
			return nil, nil, err
		}
		if cand.typ == Extended {
			exts = append(exts, cand)
		} else {
			cores = append(cores, cand)
		}
	}
	return mergeCandidates(cores), mergeCandidates(exts), nil
}

func mergeCandidates(cands []*candidate) []*candidate {
	out := []*candidate{}
	seen := map[IJ]*candidate{}
	for _, c := range cands {
		key := c.mergeKey()
		if prev, ok := seen[key]; ok {
			prev.absorb(c)
			continue
		}
		seen[key] = c
		out = append(out, c)
	}
	return out
}

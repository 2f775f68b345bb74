package looper

// Derive regenerates the pair store a tree was built from.
//
// Secondary stems and pseudoknot roots go to the secondary collection,
// linkages to the pseudoknot one; every stem contributes its tail as a
// root. Building the derived input yields an equal tree.
// Args:
//
//	root: the tree, usually Result.General
//
// Returns:
//
//	Input: pairs and roots ordered by start, N from the root span
func Derive(root *Node) Input {
	c := collect(root)
	in := Input{N: root.Span().J + 1}
	for _, s := range c.secondary {
		for _, p := range s.Pairs {
			p.Source = Secondary
			in.Secondary = append(in.Secondary, p)
		}
		in.SecondaryRoots = append(in.SecondaryRoots, in.Secondary[len(in.Secondary)-s.Len()])
	}
	for _, l := range c.linkages {
		for _, p := range l.Pairs {
			p.Source = Pseudoknot
			in.Pseudoknot = append(in.Pseudoknot, p)
		}
		in.PseudoknotRoots = append(in.PseudoknotRoots, in.Pseudoknot[len(in.Pseudoknot)-l.Len()])
	}
	in.Secondary = sortPairs(in.Secondary)
	in.SecondaryRoots = sortPairs(in.SecondaryRoots)
	in.Pseudoknot = sortPairs(in.Pseudoknot)
	in.PseudoknotRoots = sortPairs(in.PseudoknotRoots)
	return in
}

// stemCollector gathers every stem of a tree once, split into secondary
// stems (pseudoknot roots included) and linkages.
type stemCollector struct {
	secondary []*Stem
	linkages  []*Stem
	seen      map[*Stem]bool
}

func collect(root *Node) *stemCollector {
	c := &stemCollector{seen: map[*Stem]bool{}}
	_ = root.Accept(c)
	return c
}

func (c *stemCollector) children(n *Node) error {
	for _, ch := range n.Children {
		if err := ch.Accept(c); err != nil {
			return err
		}
	}
	return nil
}

func (c *stemCollector) VisitBase(n *Node) error { return c.children(n) }

func (c *stemCollector) VisitStem(n *Node, s *Stem) error {
	c.add(&c.secondary, s)
	return c.children(n)
}

func (c *stemCollector) VisitPseudoKnot(n *Node, pk *PseudoKnot) error {
	c.pseudoKnot(pk)
	return c.children(n)
}

func (c *stemCollector) pseudoKnot(pk *PseudoKnot) {
	for _, r := range pk.Roots {
		switch r.Kind {
		case KindStem:
			c.add(&c.secondary, r.Stem)
		case KindPseudoKnot:
			c.pseudoKnot(r.PseudoKnot)
		}
	}
	for _, l := range pk.Linkages {
		c.add(&c.linkages, l)
	}
}

func (c *stemCollector) add(dst *[]*Stem, s *Stem) {
	if c.seen[s] {
		return
	}
	c.seen[s] = true
	*dst = append(*dst, s)
}

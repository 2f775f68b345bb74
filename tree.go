package looper

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Kind tags the payload of a Domain.
type Kind uint8

const (
	// KindBase is the synthetic whole-sequence root.
	KindBase Kind = iota
	KindStem
	KindPseudoKnot
)

func (k Kind) String() string {
	switch k {
	case KindStem:
		return "Stem"
	case KindPseudoKnot:
		return "PseudoKnot"
	default:
		return "Base"
	}
}

// Domain holds exactly one of a Stem, a PseudoKnot or the base interval,
// as told by Kind.
type Domain struct {
	Kind       Kind
	Stem       *Stem
	PseudoKnot *PseudoKnot
	Base       IJ
}

func StemDomain(s *Stem) Domain { return Domain{Kind: KindStem, Stem: s} }

func PseudoKnotDomain(pk *PseudoKnot) Domain { return Domain{Kind: KindPseudoKnot, PseudoKnot: pk} }

func BaseDomain(ij IJ) Domain { return Domain{Kind: KindBase, Base: ij} }

// Span is the interval the domain occupies in the tree.
func (d Domain) Span() IJ {
	switch d.Kind {
	case KindStem:
		return d.Stem.Key()
	case KindPseudoKnot:
		return d.PseudoKnot.Key()
	default:
		return d.Base
	}
}

// inner is the interval enclosed by the domain: the head pair of a stem,
// the boundary of a pseudoknot, and one past each end for the base.
func (d Domain) inner() IJ {
	switch d.Kind {
	case KindStem:
		return d.Stem.Head().IJ()
	case KindPseudoKnot:
		return d.PseudoKnot.Key()
	default:
		return IJ{I: d.Base.I - 1, J: d.Base.J + 1}
	}
}

// Equal compares kinds and payloads.
func (d Domain) Equal(other Domain) bool {
	if d.Kind != other.Kind {
		return false
	}
	switch d.Kind {
	case KindStem:
		return d.Stem.Equal(other.Stem)
	case KindPseudoKnot:
		return d.PseudoKnot.Equal(other.PseudoKnot)
	default:
		return d.Base == other.Base
	}
}

func (d Domain) String() string {
	switch d.Kind {
	case KindStem:
		return d.Stem.String()
	case KindPseudoKnot:
		return d.PseudoKnot.String()
	default:
		return "Base" + d.Base.String()
	}
}

// Node is one domain of the tree. Children are the maximal domains
// strictly inside it, ordered by start position.
type Node struct {
	Domain   Domain
	Children []*Node
}

// Span of the node's domain.
func (n *Node) Span() IJ { return n.Domain.Span() }

// BranchCount is the number of direct sub-domains: 0 closes a hairpin,
// 1 an internal loop, more a multibranch loop.
func (n *Node) BranchCount() int { return len(n.Children) }

// Visitor receives one call per node, chosen by the node's Kind.
// Implementations descend by calling Accept on the children themselves.
type Visitor interface {
	VisitBase(n *Node) error
	VisitStem(n *Node, s *Stem) error
	VisitPseudoKnot(n *Node, pk *PseudoKnot) error
}

// Accept dispatches n to the matching Visitor method.
func (n *Node) Accept(v Visitor) error {
	switch n.Domain.Kind {
	case KindStem:
		return v.VisitStem(n, n.Domain.Stem)
	case KindPseudoKnot:
		return v.VisitPseudoKnot(n, n.Domain.PseudoKnot)
	default:
		return v.VisitBase(n)
	}
}

// Walk calls fn on n and its descendants in pre-order, stopping at the
// first error.
func (n *Node) Walk(fn func(n *Node, depth int) error) error {
	return n.walk(fn, 0)
}

func (n *Node) walk(fn func(n *Node, depth int) error, depth int) error {
	if err := fn(n, depth); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := c.walk(fn, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Equal compares two trees node by node.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if !n.Domain.Equal(other.Domain) || len(n.Children) != len(other.Children) {
		return false
	}
	for k, c := range n.Children {
		if !c.Equal(other.Children[k]) {
			return false
		}
	}
	return true
}

// String lays the tree out one node per line, indented by depth.
func (n *Node) String() string {
	var sb strings.Builder
	_ = n.Walk(func(c *Node, depth int) error {
		fmt.Fprintf(&sb, "%s%s\n", strings.Repeat("  ", depth), c.Domain)
		return nil
	})
	return sb.String()
}

// DomainsIn returns the spans of the children of the deepest node
// enclosing [i, j] that lie inside [i, j].
func (n *Node) DomainsIn(i, j int) []IJ {
	dmns, _ := domainsIn(n, IJ{I: i, J: j}, 0, -1)
	return dmns
}

// domainsIn is DomainsIn with a depth bound; maxDepth < 0 means none.
func domainsIn(n *Node, region IJ, depth, maxDepth int) ([]IJ, error) {
	if maxDepth >= 0 && depth > maxDepth {
		return nil, intervalErr("domains in region", ErrRecursionOverflow, region)
	}
	if !n.Span().Contains(region) {
		return nil, nil
	}
	dmns := []IJ{}
	for _, c := range n.Children {
		if region.Contains(c.Span()) {
			dmns = append(dmns, c.Span())
		}
	}
	if len(dmns) > 0 {
		return dmns, nil
	}
	for _, c := range n.Children {
		if c.Span().Contains(region) {
			return domainsIn(c, region, depth+1, maxDepth)
		}
	}
	return dmns, nil
}

type treeBuilder struct {
	items    []Domain
	maxDepth int
}

// Build the containment tree of domains over the boundary (ib, jb).
//
// Domains are taken left to right; each one inside the current node becomes
// a child and collects its own children before the sibling level resumes
// past it. The domains must be disjoint or nested at every level.
// Args:
//
//	ib: The first position of the boundary
//	jb: The last position of the boundary (inclusive)
//	domains: The stems and pseudoknots to arrange, any order
//	maxDepth: The recursion sanity bound
//
// Returns:
//
//	*Node: the base node spanning (ib, jb)
//	error: ErrPartialOverlap, ErrRecursionOverflow or ErrMalformedInput
func BuildTree(ib, jb int, domains []Domain, maxDepth int) (*Node, error) {
	items := slices.Clone(domains)
	slices.SortStableFunc(items, func(a, b Domain) int { return byStart(a.Span(), b.Span()) })

	tb := &treeBuilder{items: items, maxDepth: maxDepth}
	root := &Node{Domain: BaseDomain(IJ{I: ib, J: jb})}
	k, err := tb.fill(root, 0, 0)
	if err != nil {
		return nil, err
	}
	if k < len(items) {
		return nil, intervalErr("build tree", ErrMalformedInput, items[k].Span())
	}
	return root, nil
}

// fill attaches items[k:] that lie inside node and returns the index of
// the first item outside it.
func (tb *treeBuilder) fill(node *Node, k, depth int) (int, error) {
	span := node.Span()
	if depth > tb.maxDepth {
		return k, intervalErr("build tree", ErrRecursionOverflow, span)
	}
	for k < len(tb.items) {
		d := tb.items[k]
		ij := d.Span()
		if !span.Contains(ij) || (node.Domain.Kind != KindBase && ij == span) {
			if ij.I <= span.J && ij.J >= span.I {
				// starts inside but does not nest
				return k, conflictErr("build tree", ErrPartialOverlap, span, ij)
			}
			break
		}
		child := &Node{Domain: d}
		node.Children = append(node.Children, child)
		var err error
		k, err = tb.fill(child, k+1, depth+1)
		if err != nil {
			return k, err
		}
	}
	return k, nil
}

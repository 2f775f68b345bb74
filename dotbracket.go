package looper

import "fmt"

// pkBrackets are the bracket families handed to linkages, in order of use.
var pkBrackets = func() [][2]byte {
	fams := [][2]byte{{'[', ']'}, {'{', '}'}, {'<', '>'}}
	for c := byte('A'); c <= 'Z'; c++ {
		fams = append(fams, [2]byte{c, c + 'a' - 'A'})
	}
	return fams
}()

// DotBracket gets the extended dot-bracket notation of a tree.
//
// Secondary stems and pseudoknot roots are written with parentheses. Each
// linkage takes the first bracket family none of whose pairs it crosses.
// Args:
//
//	root: the tree, usually Result.General
//
// Returns:
//
//	string: one character per position
//	error: parallel pairs have no bracket form, or the families ran out
func DotBracket(root *Node) (string, error) {
	c := collect(root)
	result := make([]byte, root.Span().J+1)
	for i := range result {
		result[i] = '.'
	}

	for _, s := range c.secondary {
		if s.Orientation == Parallel {
			return "", fmt.Errorf("dot-bracket: parallel stem %s", s.Key())
		}
		for _, p := range s.Pairs {
			result[p.I] = '('
			result[p.J] = ')'
		}
	}

	used := make([][]Pair, len(pkBrackets))
	for _, l := range c.linkages {
		if l.Orientation == Parallel {
			return "", fmt.Errorf("dot-bracket: parallel stem %s", l.Key())
		}
		fam := -1
		for f := range pkBrackets {
			if !crossesAny(l.Pairs, used[f]) {
				fam = f
				break
			}
		}
		if fam < 0 {
			return "", fmt.Errorf("dot-bracket: no bracket left for linkage %s", l.Key())
		}
		used[fam] = append(used[fam], l.Pairs...)
		for _, p := range l.Pairs {
			result[p.I] = pkBrackets[fam][0]
			result[p.J] = pkBrackets[fam][1]
		}
	}
	return string(result), nil
}

func crossesAny(run, others []Pair) bool {
	for _, p := range run {
		for _, o := range others {
			if p.IJ().Crosses(o.IJ()) {
				return true
			}
		}
	}
	return false
}

// Package vienna reads structures written in extended dot-bracket
// (Vienna) notation into a looper.Input.
//
// Parentheses mark secondary pairs. Square, curly and angle brackets and
// the letter pairs A/a .. Z/z mark candidate pseudoknot pairs; a run of them
// that crosses no secondary pair is nested and is read as secondary. Dots
// and commas are unpaired positions. All pairs are antiparallel.
package vienna

import (
	"errors"
	"fmt"

	"github.com/4dnucleome/looper"
	"golang.org/x/exp/slices"
)

// ErrSyntax is wrapped by every Parse error.
var ErrSyntax = errors.New("vienna: syntax error")

type bracket struct {
	open   byte
	source looper.Source
}

// closers maps each closing character to its opening one.
var closers = func() map[byte]bracket {
	m := map[byte]bracket{
		')': {'(', looper.Secondary},
		']': {'[', looper.Pseudoknot},
		'}': {'{', looper.Pseudoknot},
		'>': {'<', looper.Pseudoknot},
	}
	for c := byte('a'); c <= 'z'; c++ {
		m[c] = bracket{c - 'a' + 'A', looper.Pseudoknot}
	}
	return m
}()

func isOpen(c byte) bool {
	return c == '(' || c == '[' || c == '{' || c == '<' || ('A' <= c && c <= 'Z')
}

// Parse a structure into its pair collections and their roots.
//
// Args:
//
//	structure: the annotation, one character per position
//
// Returns:
//
//	looper.Input: pairs ordered by i, roots from looper.FindRoots; the
//	Source of every pair tells nested from crossing
//	error: an unknown character or an unbalanced bracket, wrapping ErrSyntax
func Parse(structure string) (looper.Input, error) {
	stacks := map[byte][]int{}
	var ss, pk []looper.Pair
	for k := 0; k < len(structure); k++ {
		c := structure[k]
		switch {
		case c == '.' || c == ',':
		case isOpen(c):
			stacks[c] = append(stacks[c], k)
		default:
			b, ok := closers[c]
			if !ok {
				return looper.Input{}, fmt.Errorf("%w: unknown character %q at %d", ErrSyntax, c, k)
			}
			st := stacks[b.open]
			if len(st) == 0 {
				return looper.Input{}, fmt.Errorf("%w: unmatched %q at %d", ErrSyntax, c, k)
			}
			i := st[len(st)-1]
			stacks[b.open] = st[:len(st)-1]
			p := looper.Pair{I: i, J: k, Orientation: looper.Antiparallel, Source: b.source}
			if b.source == looper.Secondary {
				ss = append(ss, p)
			} else {
				pk = append(pk, p)
			}
		}
	}
	first := -1
	for _, st := range stacks {
		if len(st) > 0 && (first < 0 || st[0] < first) {
			first = st[0]
		}
	}
	if first >= 0 {
		return looper.Input{}, fmt.Errorf("%w: unmatched %q at %d", ErrSyntax, structure[first], first)
	}

	ss, pk = nestRuns(ss, pk)

	in := looper.Input{N: len(structure)}
	in.SecondaryRoots = looper.FindRoots(ss)
	in.PseudoknotRoots = looper.FindRoots(pk)
	in.Secondary = sortByI(ss)
	in.Pseudoknot = sortByI(pk)
	return in, nil
}

// nestRuns moves every bracket run that crosses no secondary pair over to
// the secondary pairs. Runs are taken in start order and each one is checked
// against the secondary pairs gathered so far, so of two runs crossing each
// other only the later one stays a pseudoknot.
func nestRuns(ss, pk []looper.Pair) (nested, crossing []looper.Pair) {
	nested = slices.Clone(ss)
	for _, run := range runs(pk) {
		if crossesAny(run, nested) {
			crossing = append(crossing, run...)
			continue
		}
		for _, p := range run {
			p.Source = looper.Secondary
			nested = append(nested, p)
		}
	}
	return nested, crossing
}

// runs splits pairs into helices: a pair joins the run whose last pair it
// directly follows, otherwise it opens a new run. Runs come in start order.
func runs(pairs []looper.Pair) [][]looper.Pair {
	sorted := sortByI(slices.Clone(pairs))
	out := [][]looper.Pair{}
	last := map[looper.IJ]int{}
	for _, p := range sorted {
		prev := looper.IJ{I: p.I - 1, J: p.J + 1}
		if k, ok := last[prev]; ok {
			delete(last, prev)
			out[k] = append(out[k], p)
			last[p.IJ()] = k
			continue
		}
		last[p.IJ()] = len(out)
		out = append(out, []looper.Pair{p})
	}
	return out
}

func crossesAny(run, others []looper.Pair) bool {
	for _, p := range run {
		for _, o := range others {
			if p.IJ().Crosses(o.IJ()) {
				return true
			}
		}
	}
	return false
}

func sortByI(pairs []looper.Pair) []looper.Pair {
	slices.SortFunc(pairs, func(a, b looper.Pair) int { return a.I - b.I })
	return pairs
}

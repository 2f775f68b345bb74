package looper

import (
	"errors"
	"fmt"
)

// Fatal conditions. Every error returned by Build wraps exactly one of
// these in an *IntervalError; there is no recoverable path.
var (
	// ErrMalformedInput: a stem or pair that a lookup expects is missing.
	ErrMalformedInput = errors.New("malformed input")
	// ErrClassificationContradiction: one span reads as both core and
	// extended pseudoknot.
	ErrClassificationContradiction = errors.New("classification contradiction")
	// ErrRecursionOverflow: tree or scan recursion exceeded the depth bound.
	ErrRecursionOverflow = errors.New("recursion overflow")
	// ErrEmptyDomain: a classification step found no bridged domain.
	ErrEmptyDomain = errors.New("empty domain")
	// ErrPartialOverlap: two domains at one tree level partially overlap.
	ErrPartialOverlap = errors.New("partial overlap")
)

// IntervalError identifies the interval that made a stage abort.
type IntervalError struct {
	Op    string
	Kind  error
	IJ    IJ
	Other *IJ
}

func (e *IntervalError) Error() string {
	if e.Other != nil {
		return fmt.Sprintf("%s: %v %s vs %s", e.Op, e.Kind, e.IJ, *e.Other)
	}
	return fmt.Sprintf("%s: %v %s", e.Op, e.Kind, e.IJ)
}

func (e *IntervalError) Unwrap() error { return e.Kind }

func intervalErr(op string, kind error, ij IJ) error {
	return &IntervalError{Op: op, Kind: kind, IJ: ij}
}

func conflictErr(op string, kind error, ij, other IJ) error {
	return &IntervalError{Op: op, Kind: kind, IJ: ij, Other: &other}
}

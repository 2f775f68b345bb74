package looper

import "io"

// Recursion parameters
const (
	// DefaultMaxDepth bounds tree and scan recursion; deeper nesting is
	// treated as malformed input.
	DefaultMaxDepth = 30
)

// Stem gap parameters
const (
	DefaultMaxAntiparallelGap = 2
	DefaultMaxParallelGap     = 1
)

// Options configures one Build call. Zero fields take the defaults.
type Options struct {
	// MaxDepth is the sanity bound on recursion depth.
	MaxDepth int
	// MaxAntiparallelGap caps the positional gap a stem may bridge.
	MaxAntiparallelGap int
	MaxParallelGap     int
	// Connector decides whether a gapped segment is spliced onto a stem.
	Connector Connector
	// Log receives a trace of each stage; nil is silent.
	Log io.Writer
}

// DefaultOptions returns the settings used when Build is given a zero
// Options.
func DefaultOptions() Options {
	return Options{
		MaxDepth:           DefaultMaxDepth,
		MaxAntiparallelGap: DefaultMaxAntiparallelGap,
		MaxParallelGap:     DefaultMaxParallelGap,
		Connector:          AlwaysConnect,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxDepth <= 0 {
		o.MaxDepth = d.MaxDepth
	}
	if o.MaxAntiparallelGap <= 0 {
		o.MaxAntiparallelGap = d.MaxAntiparallelGap
	}
	if o.MaxParallelGap <= 0 {
		o.MaxParallelGap = d.MaxParallelGap
	}
	if o.Connector == nil {
		o.Connector = d.Connector
	}
	return o
}

func (o Options) maxGap(or Orientation) int {
	if or == Parallel {
		return o.MaxParallelGap
	}
	return o.MaxAntiparallelGap
}

// Segment is a contiguous run of pairs inside a stem, described by its
// length and its outermost and innermost pairs.
type Segment struct {
	Len         int
	Orientation Orientation
	Tail, Head  IJ
}

// Connector is the connectivity oracle consulted when a stem continues
// past a gap.
type Connector interface {
	Connected(prev, next Segment) bool
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(prev, next Segment) bool

// Connected calls f(prev, next).
func (f ConnectorFunc) Connected(prev, next Segment) bool { return f(prev, next) }

// AlwaysConnect splices every segment the gap rule admits.
var AlwaysConnect = ConnectorFunc(func(prev, next Segment) bool { return true })

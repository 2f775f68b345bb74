package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/4dnucleome/looper"
	"github.com/4dnucleome/looper/vienna"
)

const usage = `usage: looper [-h] [-s] [-d] [-t] [-c FLOAT] STRUCTURE

Build the hierarchical domain tree of an extended dot-bracket structure

positional arguments:
  STRUCTURE             structure in extended dot-bracket notation

optional arguments:
  -h, --help            show this help message and exit
  -s, --secondary       also write the tree of the secondary structure alone
  -d, --dot-bracket     write the dot-bracket regenerated from the tree
  -t, --trace           write a trace of every stage to stderr
  -c FLOAT, --celsius FLOAT
                        splice gapped stems by loop free energy at this
                        temperature instead of splicing every admissible gap
`

// celsiusSet reports whether a temperature was given, 0 included.
func celsiusSet() bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "c" || f.Name == "celsius" {
			set = true
		}
	})
	return set
}

func main() {
	var (
		structure string
		secondary bool
		dot       bool
		trace     bool
		temp      float64
	)
	flag.BoolVar(&secondary, "secondary", false, "also write the tree of the secondary structure alone")
	flag.BoolVar(&secondary, "s", false, "also write the tree of the secondary structure alone")

	flag.BoolVar(&dot, "dot-bracket", false, "write the dot-bracket regenerated from the tree")
	flag.BoolVar(&dot, "d", false, "write the dot-bracket regenerated from the tree")

	flag.BoolVar(&trace, "trace", false, "write a trace of every stage to stderr")
	flag.BoolVar(&trace, "t", false, "write a trace of every stage to stderr")

	flag.Float64Var(&temp, "celsius", 0, "splice gapped stems by loop free energy at this temperature")
	flag.Float64Var(&temp, "c", 0, "splice gapped stems by loop free energy at this temperature")

	flag.Usage = func() { fmt.Print(usage) }

	flag.Parse()

	structure = flag.Arg(0)

	if structure == "" {
		fmt.Print(usage)
		os.Exit(1)
	}

	in, err := vienna.Parse(structure)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	opts := looper.DefaultOptions()
	if trace {
		opts.Log = os.Stderr
	}
	if celsiusSet() {
		opts.Connector = looper.NewThermoConnector(temp)
	}

	res, err := looper.Build(in, opts)
	if err != nil {
		var ie *looper.IntervalError
		if errors.As(err, &ie) {
			fmt.Fprintf(os.Stderr, "ERROR: %s failed at %s: %v\n", ie.Op, ie.IJ, ie.Kind)
		} else {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		}
		os.Exit(1)
	}

	if secondary {
		fmt.Print(res.Secondary)
		fmt.Println()
	}
	fmt.Print(res.General)
	if dot {
		db, err := looper.DotBracket(res.General)
		if err != nil {
			fmt.Fprintf(os.Stderr, "WARN: %v\n", err)
			return
		}
		fmt.Println(structure)
		fmt.Println(db)
	}
}

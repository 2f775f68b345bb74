package looper

import "math"

// Energy holds two energies, enthaply and entropy
// SantaLucia & Hicks (2004), Annu. Rev. Biophys. Biomol. Struct 33: 415-440
type Energy struct {
	// enthalpy, kcal/mol
	H float64
	// entropy, cal/(mol K)
	S float64
}

type LoopEnergy map[int]Energy

// entropic expresses a loop initiation free energy measured at 37C as a
// purely entropic term.
func entropic(dg37 float64) Energy {
	return Energy{H: 0, S: -1000 * dg37 / 310.15}
}

// Loop initiation values, Turner 2004 (NNDB), kcal/mol at 37C.
var (
	BULGE_LOOPS = LoopEnergy{
		1: entropic(3.8),
		2: entropic(2.8),
		3: entropic(3.2),
		4: entropic(3.6),
		5: entropic(4.0),
		6: entropic(4.4),
	}
	INTERNAL_LOOPS = LoopEnergy{
		2: entropic(0.5),
		3: entropic(1.6),
		4: entropic(1.1),
		5: entropic(2.0),
		6: entropic(2.0),
	}
)

// DefaultStackDG is the mean stacking free energy of one paired step,
// kcal/mol at 37C.
const DefaultStackDG = -2.0

// ThermoConnector is a sequence-independent connectivity oracle: a gapped
// segment is spliced onto the stem when the loop it closes costs less than
// the stacking the segment contributes.
type ThermoConnector struct {
	// Temp is the temperature in Celsius
	Temp float64
	// StackDG is the free energy of one stacked step
	StackDG  float64
	Bulges   LoopEnergy
	Internal LoopEnergy
}

// NewThermoConnector returns a connector at temp Celsius with the Turner
// loop tables.
func NewThermoConnector(temp float64) *ThermoConnector {
	return &ThermoConnector{
		Temp:     temp,
		StackDG:  DefaultStackDG,
		Bulges:   BULGE_LOOPS,
		Internal: INTERNAL_LOOPS,
	}
}

// Connected implements Connector.
func (c *ThermoConnector) Connected(prev, next Segment) bool {
	loop := c.LoopDG(prev, next)
	if math.IsInf(loop, 1) {
		return false
	}
	return loop+float64(next.Len)*c.StackDG < 0
}

// LoopDG estimates the free energy of the loop closed between the head of
// prev and the tail of next.
//
// A loop open on one strand only is a bulge, otherwise an internal loop with
// the asymmetry penalty of SantaLucia/Hicks, 2004.
// Args:
//
//	prev: the segment already on the stem
//	next: the segment after the gap
//
// Returns:
//
//	float: the free energy increment in kcal/mol, +Inf if the segments do
//	not close a loop
func (c *ThermoConnector) LoopDG(prev, next Segment) float64 {
	temp := c.Temp + 273.15 // kelvin
	left := next.Tail.I - prev.Head.I - 1
	right := prev.Head.J - next.Tail.J - 1
	if prev.Orientation == Parallel {
		right = next.Tail.J - prev.Head.J - 1
	}
	if left < 0 || right < 0 || left+right == 0 {
		return math.Inf(1)
	}

	if left == 0 || right == 0 {
		return loopInit(c.Bulges, max(left, right), temp)
	}
	dG := loopInit(c.Internal, left+right, temp)
	// apply an asymmetry penalty
	dG += 0.3 * float64(abs(left-right))
	return dG
}

// loopInit looks a loop length up in table, extrapolating beyond the
// largest tabulated length.
func loopInit(table LoopEnergy, loop_len int, temp float64) float64 {
	if en, ok := table[loop_len]; ok {
		return d_g(en.H, en.S, temp)
	}
	known := 0
	for k := range table {
		if k > known && k < loop_len {
			known = k
		}
	}
	if known == 0 {
		return math.Inf(1)
	}
	en := table[known]
	return j_s(loop_len, known, d_g(en.H, en.S, temp), temp)
}

// Find the free energy given delta h, s and temp
// Args:
//
//	d_h: The enthalpy increment in kcal / mol
//	d_s: The entropy increment in cal / mol
//	temp: The temperature in Kelvin
//
// Returns:
//
//	The free energy increment in kcal / (mol x K)
func d_g(d_h, d_s, temp float64) float64 {
	return d_h - temp*(d_s/1000.0)
}

// Estimate the free energy of length query_len based on one of length known_len.
//
// The Jacobson-Stockmayer entry extrapolation formula is used
// for bulges, hairpins, etc that fall outside the tabulated upper limit.
// See SantaLucia and Hicks (2004).
// Args:
//
//	query_len: Length of element without known free energy value
//	known_len: Length of element with known free energy value (d_g_x)
//	d_g_x: The free energy of the element known_len
//	temp: Temperature in Kelvin
//
// Returns:
//
//	float: The free energy for a structure of length query_len
func j_s(query_len, known_len int, d_g_x, temp float64) float64 {
	gas_constant := 1.9872e-3
	return d_g_x + 2.44*gas_constant*temp*math.Log(float64(query_len)/float64(known_len))
}

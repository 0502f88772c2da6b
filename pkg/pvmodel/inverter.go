package pvmodel

import "math"

// Inverter models DC-to-AC conversion with a load-dependent efficiency
// curve, hard clipping at the AC rating, and start/stop hysteresis around
// the self-consumption threshold.
type Inverter struct {
	// RatedAC is the maximum AC output power, W. Output never exceeds it.
	RatedAC float64
	// RatedDC is the DC input power at which the inverter reaches RatedAC.
	RatedDC float64
	// NominalEfficiency is the datasheet peak conversion efficiency.
	NominalEfficiency float64
	// StartFraction and StopFraction express the hysteresis thresholds as
	// fractions of RatedDC. Start must exceed Stop so the inverter does
	// not chatter when DC power hovers at the boundary.
	StartFraction float64
	StopFraction  float64
}

// referenceEfficiency anchors the quadratic loss curve; the standard
// curve coefficients below were fitted at this efficiency.
const referenceEfficiency = 0.9637

// Default hysteresis thresholds as fractions of rated DC input.
const (
	DefaultStartFraction = 0.020
	DefaultStopFraction  = 0.010
)

// NewInverter builds an inverter with the default hysteresis band.
func NewInverter(ratedAC, ratedDC, nominalEfficiency float64) Inverter {
	return Inverter{
		RatedAC:           ratedAC,
		RatedDC:           ratedDC,
		NominalEfficiency: nominalEfficiency,
		StartFraction:     DefaultStartFraction,
		StopFraction:      DefaultStopFraction,
	}
}

// efficiency returns the conversion efficiency at a DC load fraction zeta.
// The curve droops at low load (fixed self-consumption dominates), peaks
// near nameplate, and rolls off slightly approaching full load.
func (inv Inverter) efficiency(zeta float64) float64 {
	if zeta <= 0 {
		return 0
	}
	eta := inv.NominalEfficiency / referenceEfficiency *
		(-0.0162*zeta - 0.0059/zeta + 0.9858)
	if eta < 0 {
		return 0
	}
	return eta
}

// Convert transforms a single DC power value to AC given the current
// on/off state. Clipping is absolute: DC input beyond saturation is lost,
// never partially converted above RatedAC.
func (inv Inverter) Convert(dcPower float64, on bool) float64 {
	if !on || dcPower <= 0 || inv.RatedDC <= 0 {
		return 0
	}
	zeta := dcPower / inv.RatedDC
	ac := inv.efficiency(zeta) * dcPower
	return math.Max(0, math.Min(ac, inv.RatedAC))
}

// nextState advances the hysteresis flag for one timestep.
func (inv Inverter) nextState(dcPower float64, on bool) bool {
	if on {
		return dcPower >= inv.StopFraction*inv.RatedDC
	}
	return dcPower >= inv.StartFraction*inv.RatedDC
}

// ConvertSeries converts a DC power series to AC with a strict
// left-to-right scan carrying the single piece of cross-timestep state:
// the on/off hysteresis flag, which starts OFF.
func (inv Inverter) ConvertSeries(dcPower []float64) []float64 {
	ac := make([]float64, len(dcPower))
	on := false
	for i, dc := range dcPower {
		on = inv.nextState(dc, on)
		ac[i] = inv.Convert(dc, on)
	}
	return ac
}

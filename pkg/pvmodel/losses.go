package pvmodel

// Losses holds the named system derates as percentages (2.0 means 2%).
// Unset entries default to zero effect, never to an error. The inverter
// percentage exists for reporting only: inverter conversion loss is
// already captured by the efficiency curve and is never applied here a
// second time.
type Losses struct {
	Soiling      float64 `yaml:"soiling"`
	Shading      float64 `yaml:"shading"`
	Snow         float64 `yaml:"snow"`
	Mismatch     float64 `yaml:"mismatch"`
	Wiring       float64 `yaml:"wiring"`
	Connection   float64 `yaml:"connection"`
	LID          float64 `yaml:"lid"`
	Nameplate    float64 `yaml:"nameplate"`
	Age          float64 `yaml:"age"`
	Availability float64 `yaml:"availability"`
	Inverter     float64 `yaml:"inverter"`
}

// DefaultLosses are the documented defaults for a new, reasonably sited
// residential system.
func DefaultLosses() Losses {
	return Losses{
		Soiling:      2.0,
		Shading:      3.0,
		Snow:         0.0,
		Mismatch:     2.0,
		Wiring:       2.0,
		Connection:   0.5,
		LID:          1.5,
		Nameplate:    1.0,
		Age:          0.0,
		Availability: 3.0,
	}
}

func derate(factor, pct float64) float64 {
	f := 1 - pct/100.0
	if f < 0 {
		f = 0
	}
	return factor * f
}

// IrradianceFactor is the multiplicative factor for the optical derates
// that reduce effective irradiance before the DC model: soiling, shading
// and snow coverage.
func (l Losses) IrradianceFactor() float64 {
	f := 1.0
	for _, pct := range []float64{l.Soiling, l.Shading, l.Snow} {
		f = derate(f, pct)
	}
	return f
}

// DCFactor covers the electrical derates applied to DC power ahead of the
// inverter: mismatch, wiring, connections, light-induced degradation and
// nameplate tolerance.
func (l Losses) DCFactor() float64 {
	f := 1.0
	for _, pct := range []float64{l.Mismatch, l.Wiring, l.Connection, l.LID, l.Nameplate} {
		f = derate(f, pct)
	}
	return f
}

// ACFactor covers the system-level derates applied after conversion:
// availability and age-related degradation.
func (l Losses) ACFactor() float64 {
	f := 1.0
	for _, pct := range []float64{l.Availability, l.Age} {
		f = derate(f, pct)
	}
	return f
}

// TotalFactor is the product of every applied derate, the performance-
// ratio contribution of the configured losses. The inverter percentage is
// excluded; it lives in the efficiency curve.
func (l Losses) TotalFactor() float64 {
	return l.IrradianceFactor() * l.DCFactor() * l.ACFactor()
}

// Package pvmodel converts plane-of-array irradiance into electrical power:
// cell temperature (Sandia array performance model), temperature-corrected
// DC power, inverter conversion with clipping and start/stop hysteresis,
// and the multiplicative system derates.
package pvmodel

import "math"

// ThermalParams are the Sandia cell-temperature coefficients for one
// racking/module construction. A and B set the irradiance-driven module
// temperature rise and its wind sensitivity; DeltaT is the module-to-cell
// conduction offset at reference irradiance.
type ThermalParams struct {
	A      float64
	B      float64
	DeltaT float64
}

const thermalReferenceIrradiance = 1000.0 // W/m²

// CellTemperature implements the Sandia model:
//
//	T_module = T_ambient + POA * exp(A + B*wind)
//	T_cell   = T_module + (POA/1000) * DeltaT
//
// The model is memoryless; with zero irradiance the cell sits at ambient.
func CellTemperature(poa, ambient, windSpeed float64, p ThermalParams) float64 {
	if poa <= 0 {
		return ambient
	}
	module := ambient + poa*math.Exp(p.A+p.B*windSpeed)
	return module + poa/thermalReferenceIrradiance*p.DeltaT
}

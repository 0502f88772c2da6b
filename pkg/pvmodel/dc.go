package pvmodel

const (
	// ReferenceIrradiance and ReferenceCellTemp are the standard test
	// conditions every module nameplate is rated at.
	ReferenceIrradiance = 1000.0 // W/m²
	ReferenceCellTemp   = 25.0   // °C
)

// DCPower converts effective irradiance and cell temperature into DC power:
//
//	P_dc = (G_eff/G_ref) * P_dc0 * (1 + gamma*(T_cell - T_ref))
//
// gamma is the power temperature coefficient in 1/°C (negative for
// crystalline silicon). Output is clamped to zero so an extreme
// temperature term can never produce negative generation, and zero
// irradiance yields exactly zero regardless of temperature.
func DCPower(effectiveIrradiance, cellTemp, ratedDC, gamma float64) float64 {
	if effectiveIrradiance <= 0 || ratedDC <= 0 {
		return 0
	}
	p := effectiveIrradiance / ReferenceIrradiance * ratedDC *
		(1 + gamma*(cellTemp-ReferenceCellTemp))
	if p < 0 {
		return 0
	}
	return p
}

// TemperatureLossFraction is the fractional power change attributable to
// cell temperature deviating from reference: negative when the cell runs
// hot with a negative gamma.
func TemperatureLossFraction(cellTemp, gamma float64) float64 {
	return gamma * (cellTemp - ReferenceCellTemp)
}

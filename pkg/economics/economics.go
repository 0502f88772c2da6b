// Package economics turns annual energy yield into payback, levelized
// cost, return on investment and net present value. It performs no
// physical modeling; all inputs are externally supplied.
package economics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// NoPayback is the sentinel returned when the system can never pay for
// itself with the supplied rates (zero or negative revenue).
const NoPayback = -1.0

// Inputs are the externally supplied cost and rate assumptions.
type Inputs struct {
	// CostPerWatt is the installed cost in currency units per DC watt.
	CostPerWatt float64 `yaml:"cost_per_watt"`
	// ElectricityRate is the value of generated energy per kWh.
	ElectricityRate float64 `yaml:"electricity_rate"`
	// IncentiveFraction reduces the installed cost (0.30 = 30% credit).
	IncentiveFraction float64 `yaml:"incentive_fraction"`
	// DiscountRate is the annual discount rate for NPV/LCOE (0.04 = 4%).
	DiscountRate float64 `yaml:"discount_rate"`
	// DegradationRate is the annual output decline (0.005 = 0.5%/year).
	DegradationRate float64 `yaml:"degradation_rate"`
	// SystemLifeYears is the analysis horizon.
	SystemLifeYears int `yaml:"system_life_years"`
}

// Defaults for unset optional inputs.
const (
	DefaultDiscountRate    = 0.04
	DefaultDegradationRate = 0.005
	DefaultSystemLifeYears = 25
)

// ApplyDefaults fills unset optional fields.
func (in *Inputs) ApplyDefaults() {
	if in.DiscountRate == 0 {
		in.DiscountRate = DefaultDiscountRate
	}
	if in.DegradationRate == 0 {
		in.DegradationRate = DefaultDegradationRate
	}
	if in.SystemLifeYears == 0 {
		in.SystemLifeYears = DefaultSystemLifeYears
	}
}

// Result is the economic summary for one site.
type Result struct {
	InstalledCost float64
	PaybackYears  float64
	LCOE          float64
	ROI           float64
	NPV           float64
}

// Analyze computes the economic metrics for a first-year energy yield in
// kWh and a rated DC size in watts. Degenerate inputs (zero energy, zero
// or negative rate, zero cost) resolve to defined sentinels instead of
// NaN or infinity.
func Analyze(annualEnergyKWh, ratedDCWatts float64, in Inputs) Result {
	in.ApplyDefaults()

	installed := in.CostPerWatt * ratedDCWatts * (1 - in.IncentiveFraction)
	if installed < 0 {
		installed = 0
	}

	res := Result{InstalledCost: installed, PaybackYears: NoPayback}

	years := in.SystemLifeYears
	if years <= 0 || annualEnergyKWh <= 0 {
		return res
	}

	// Year-by-year energy with degradation, and its discounted value.
	energy := make([]float64, years)
	discounted := make([]float64, years)
	revenue := make([]float64, years)
	for y := 0; y < years; y++ {
		e := annualEnergyKWh * math.Pow(1-in.DegradationRate, float64(y))
		d := math.Pow(1+in.DiscountRate, float64(y+1))
		energy[y] = e
		discounted[y] = e / d
		if in.ElectricityRate > 0 {
			revenue[y] = e * in.ElectricityRate / d
		}
	}

	if sum := floats.Sum(discounted); sum > 0 {
		res.LCOE = installed / sum
	}

	if in.ElectricityRate > 0 {
		firstYearRevenue := annualEnergyKWh * in.ElectricityRate
		res.PaybackYears = installed / firstYearRevenue
		res.NPV = floats.Sum(revenue) - installed

		lifetimeRevenue := floats.Sum(energy) * in.ElectricityRate
		if installed > 0 {
			res.ROI = (lifetimeRevenue - installed) / installed
		}
	} else {
		res.NPV = -installed
	}

	return res
}

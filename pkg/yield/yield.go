// Package yield aggregates simulated power series into the monthly and
// annual production figures a system owner actually reads: energy, specific
// yield, capacity factor, and performance ratio. Annual totals are defined
// as the sum of the monthly rows, so the two can never disagree.
package yield

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/secwest/pv-generation-planning/pkg/simulate"
)

// Monthly is the production summary for one calendar month of the series.
type Monthly struct {
	Year  int
	Month time.Month
	// EnergyKWh is AC energy delivered during the month.
	EnergyKWh float64
	// DailyEnergyKWh is the mean energy per covered day.
	DailyEnergyKWh float64
	// SpecificYieldKWhPerKWp is the month's energy per kW of DC
	// nameplate. Zero when the nameplate rating is zero.
	SpecificYieldKWhPerKWp float64
	// POAInsolationKWhM2 is plane-of-array insolation received.
	POAInsolationKWhM2 float64
	// MeanCellTemperature and MeanEffectiveIrradiance average daylight
	// timesteps only; a month of nights would otherwise drag the figures
	// toward ambient and zero.
	MeanCellTemperature     float64
	MeanEffectiveIrradiance float64
	PeakACPowerW            float64
	Hours                   float64
}

// Summary is the full aggregation for one site run.
type Summary struct {
	Monthly []Monthly
	// AnnualEnergyKWh is exactly the sum of the monthly energies.
	AnnualEnergyKWh float64
	// SpecificYieldKWhPerKWp is annual energy per kW of DC nameplate.
	// Zero when the nameplate rating is zero.
	SpecificYieldKWhPerKWp float64
	// CapacityFactor is delivered energy over nameplate energy for the
	// covered period, dimensionless.
	CapacityFactor float64
	// PerformanceRatio compares delivered energy to what the nameplate
	// would produce under the received insolation, isolating system
	// losses from resource variation.
	PerformanceRatio float64
}

// monthKey orders year/month pairs chronologically.
type monthKey struct {
	year  int
	month time.Month
}

// Aggregate reduces a simulation run to monthly and annual figures.
// ratedDCWatts is the array nameplate used for the normalized metrics.
func Aggregate(out *simulate.Output, ratedDCWatts float64) Summary {
	stepHours := out.Step.Hours()

	order := make([]monthKey, 0, 12)
	rows := make(map[monthKey]*Monthly)
	cellTemps := make(map[monthKey][]float64)
	effIrr := make(map[monthKey][]float64)

	for _, p := range out.Points {
		key := monthKey{p.Time.Year(), p.Time.Month()}
		row, ok := rows[key]
		if !ok {
			row = &Monthly{Year: key.year, Month: key.month}
			rows[key] = row
			order = append(order, key)
		}
		row.EnergyKWh += p.ACPower * stepHours / 1000
		row.POAInsolationKWhM2 += p.POAIrradiance * stepHours / 1000
		row.Hours += stepHours
		if p.ACPower > row.PeakACPowerW {
			row.PeakACPowerW = p.ACPower
		}
		if p.Zenith < 90 {
			cellTemps[key] = append(cellTemps[key], p.CellTemperature)
			effIrr[key] = append(effIrr[key], p.EffectiveIrradiance)
		}
	}

	ratedKW := ratedDCWatts / 1000

	monthly := make([]Monthly, 0, len(order))
	energies := make([]float64, 0, len(order))
	var totalHours, totalInsolation float64
	for _, key := range order {
		row := rows[key]
		if temps := cellTemps[key]; len(temps) > 0 {
			row.MeanCellTemperature = stat.Mean(temps, nil)
			row.MeanEffectiveIrradiance = stat.Mean(effIrr[key], nil)
		}
		if row.Hours > 0 {
			row.DailyEnergyKWh = row.EnergyKWh / (row.Hours / 24)
		}
		if ratedKW > 0 {
			row.SpecificYieldKWhPerKWp = row.EnergyKWh / ratedKW
		}
		monthly = append(monthly, *row)
		energies = append(energies, row.EnergyKWh)
		totalHours += row.Hours
		totalInsolation += row.POAInsolationKWhM2
	}

	s := Summary{
		Monthly:         monthly,
		AnnualEnergyKWh: floats.Sum(energies),
	}

	if ratedKW > 0 {
		s.SpecificYieldKWhPerKWp = s.AnnualEnergyKWh / ratedKW
		if totalHours > 0 {
			s.CapacityFactor = s.AnnualEnergyKWh / (ratedKW * totalHours)
		}
		if totalInsolation > 0 {
			s.PerformanceRatio = s.AnnualEnergyKWh / (ratedKW * totalInsolation)
		}
	}
	return s
}

package yield

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/secwest/pv-generation-planning/pkg/simulate"
)

// flatOutput builds a run producing ac watts for every daylight hour over
// the given span, alternating 12h day / 12h night.
func flatOutput(start time.Time, days int, ac float64) *simulate.Output {
	out := &simulate.Output{Step: time.Hour}
	for h := 0; h < days*24; h++ {
		ts := start.Add(time.Duration(h) * time.Hour)
		p := simulate.Point{Time: ts, Zenith: 120}
		if hour := ts.Hour(); hour >= 6 && hour < 18 {
			p.Zenith = 45
			p.ACPower = ac
			p.POAIrradiance = 500
			p.EffectiveIrradiance = 450
			p.CellTemperature = 40
		}
		out.Points = append(out.Points, p)
	}
	return out
}

func TestAggregateAnnualIsSumOfMonths(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	out := flatOutput(start, 365, 4000)

	s := Aggregate(out, 8000)

	require.Len(t, s.Monthly, 12)
	var sum float64
	for _, m := range s.Monthly {
		sum += m.EnergyKWh
	}
	require.Equal(t, sum, s.AnnualEnergyKWh, "annual must be the exact sum of monthly")
}

func TestAggregateEnergyArithmetic(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	// 31 days, 12 daylight hours at 4 kW.
	out := flatOutput(start, 31, 4000)

	s := Aggregate(out, 8000)

	require.Len(t, s.Monthly, 1)
	jan := s.Monthly[0]
	require.Equal(t, time.January, jan.Month)
	require.InDelta(t, 31*12*4.0, jan.EnergyKWh, 1e-9)
	require.InDelta(t, 4000.0, jan.PeakACPowerW, 1e-9)
	require.InDelta(t, 40.0, jan.MeanCellTemperature, 1e-9)
	require.InDelta(t, 450.0, jan.MeanEffectiveIrradiance, 1e-9)
	require.InDelta(t, 12*4.0, jan.DailyEnergyKWh, 1e-9)
	require.InDelta(t, 24*31.0, jan.Hours, 1e-9)
}

func TestAggregateNormalizedMetrics(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	out := flatOutput(start, 365, 4000)

	s := Aggregate(out, 8000)

	// 8 kWp producing 4 kW for half of all hours.
	require.InDelta(t, 365*12*4.0/8.0, s.SpecificYieldKWhPerKWp, 1e-6)
	require.InDelta(t, 0.25, s.CapacityFactor, 1e-9)
	require.Greater(t, s.PerformanceRatio, 0.0)
	require.Less(t, s.PerformanceRatio, 1.5)
}

func TestAggregateMonthlySpecificYield(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	out := flatOutput(start, 365, 4000)

	s := Aggregate(out, 8000)

	var sum float64
	for _, m := range s.Monthly {
		require.InDelta(t, m.EnergyKWh/8.0, m.SpecificYieldKWhPerKWp, 1e-9)
		sum += m.SpecificYieldKWhPerKWp
	}
	// The monthly figures must add up to the annual one.
	require.InDelta(t, s.SpecificYieldKWhPerKWp, sum, 1e-6)
}

func TestAggregateZeroRatedPower(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	out := flatOutput(start, 10, 4000)

	s := Aggregate(out, 0)

	require.Positive(t, s.AnnualEnergyKWh)
	require.Zero(t, s.SpecificYieldKWhPerKWp)
	require.Zero(t, s.CapacityFactor)
	require.Zero(t, s.PerformanceRatio)
	for _, m := range s.Monthly {
		require.Zero(t, m.SpecificYieldKWhPerKWp)
	}
}

func TestAggregateEmptyRun(t *testing.T) {
	s := Aggregate(&simulate.Output{Step: time.Hour}, 8000)
	require.Empty(t, s.Monthly)
	require.Zero(t, s.AnnualEnergyKWh)
}

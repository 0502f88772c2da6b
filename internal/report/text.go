// Package report renders completed site runs for people and machines: a
// plain-text summary, CSV exports of the hourly and monthly series, and a
// small HTTP API serving the same figures as JSON.
package report

import (
	"fmt"
	"io"

	"github.com/secwest/pv-generation-planning/internal/batch"
	"github.com/secwest/pv-generation-planning/pkg/economics"
)

// WriteText renders the human-readable summary for one site run.
func WriteText(w io.Writer, res *batch.SiteResult) error {
	y := res.Yield
	e := res.Economics

	fmt.Fprintf(w, "Site: %s\n", res.Site)
	fmt.Fprintf(w, "Run:  %s (%s)\n\n", res.RunID, res.CompletedAt.Format("2006-01-02 15:04 UTC"))

	fmt.Fprintf(w, "Annual energy        %10.0f kWh\n", y.AnnualEnergyKWh)
	fmt.Fprintf(w, "Specific yield       %10.0f kWh/kWp\n", y.SpecificYieldKWhPerKWp)
	fmt.Fprintf(w, "Capacity factor      %10.1f %%\n", y.CapacityFactor*100)
	fmt.Fprintf(w, "Performance ratio    %10.1f %%\n\n", y.PerformanceRatio*100)

	fmt.Fprintf(w, "%-10s %12s %10s %14s %12s\n", "Month", "Energy kWh", "kWh/day", "POA kWh/m2", "Peak AC kW")
	for _, m := range y.Monthly {
		fmt.Fprintf(w, "%-10s %12.0f %10.1f %14.1f %12.2f\n",
			m.Month.String()[:3], m.EnergyKWh, m.DailyEnergyKWh, m.POAInsolationKWhM2, m.PeakACPowerW/1000)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Installed cost       %10.0f\n", e.InstalledCost)
	if e.PaybackYears == economics.NoPayback {
		fmt.Fprintf(w, "Simple payback          never\n")
	} else {
		fmt.Fprintf(w, "Simple payback       %10.1f years\n", e.PaybackYears)
	}
	fmt.Fprintf(w, "LCOE                 %10.3f per kWh\n", e.LCOE)
	fmt.Fprintf(w, "Net present value    %10.0f\n", e.NPV)

	if qc := res.Output.QC; qc.Changed() {
		fmt.Fprintf(w, "\nWeather QC: %d negative clamped, %d above ceiling, %d night beam zeroed, %d diffuse clamped, %d closure resets\n",
			qc.NegativeIrradianceClamped, qc.CeilingClamped, qc.NightBeamZeroed, qc.DiffuseClamped, qc.ClosureReset)
	}
	return nil
}

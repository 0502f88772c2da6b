// Package weather defines the hourly meteorological series the simulation
// consumes and the quality-control pass that keeps physically impossible
// values out of the models. Irradiance violations are clamped and counted;
// broken timestamp ordering rejects the series outright.
package weather

import (
	"math"
	"time"

	"github.com/secwest/pv-generation-planning/pkg/irradiance"
	"github.com/secwest/pv-generation-planning/pkg/pverr"
	"github.com/secwest/pv-generation-planning/pkg/solar"
)

// Record is one timestamped weather observation. Irradiance in W/m²,
// temperature in °C, wind speed in m/s.
type Record struct {
	Time      time.Time
	GHI       float64
	DNI       float64
	DHI       float64
	TempAir   float64
	WindSpeed float64
}

// QCReport summarizes what the quality-control pass changed.
type QCReport struct {
	NegativeIrradianceClamped int
	CeilingClamped            int
	NightBeamZeroed           int
	DiffuseClamped            int
	ClosureReset              int
}

// Changed reports whether any record was adjusted.
func (r QCReport) Changed() bool {
	return r.NegativeIrradianceClamped+r.CeilingClamped+r.NightBeamZeroed+
		r.DiffuseClamped+r.ClosureReset > 0
}

// nightBeamTolerance is the residual beam irradiance accepted in a record
// whose sun is below the horizon before QC zeroes it, W/m².
const nightBeamTolerance = 10.0

// closureTolerance and closureFloor bound how far the reported beam and
// diffuse components may stray from DNI*cos(zenith)+DHI = GHI before the
// components are discarded and rederived from GHI.
const (
	closureTolerance = 0.15
	closureFloor     = 50.0
)

// ValidateSeries checks structural integrity: non-empty, strictly
// increasing timestamps with a uniform step. Returns the step on success.
func ValidateSeries(records []Record) (time.Duration, error) {
	if len(records) == 0 {
		return 0, &pverr.DataQualityError{Stage: "weather", Field: "records", Index: 0, Reason: "empty series"}
	}
	if len(records) == 1 {
		return time.Hour, nil
	}
	step := records[1].Time.Sub(records[0].Time)
	if step <= 0 {
		return 0, &pverr.DataQualityError{Stage: "weather", Field: "timestamp", Index: 1, Reason: "timestamps not strictly increasing"}
	}
	for i := 1; i < len(records); i++ {
		d := records[i].Time.Sub(records[i-1].Time)
		if d <= 0 {
			return 0, &pverr.DataQualityError{Stage: "weather", Field: "timestamp", Index: i, Reason: "timestamps not strictly increasing"}
		}
		if d != step {
			return 0, &pverr.DataQualityError{Stage: "weather", Field: "timestamp", Index: i, Reason: "gap or irregular interval in series"}
		}
	}
	return step, nil
}

// QualityControl clamps physically impossible values against the sun
// position for each record and reports what changed. NaN values are
// rejected rather than clamped: there is no safe nearest bound for them.
func QualityControl(records []Record, positions []solar.PositionRecord) ([]Record, QCReport, error) {
	out := make([]Record, len(records))
	var report QCReport

	for i, rec := range records {
		if math.IsNaN(rec.GHI) || math.IsNaN(rec.DNI) || math.IsNaN(rec.DHI) ||
			math.IsNaN(rec.TempAir) || math.IsNaN(rec.WindSpeed) {
			return nil, report, &pverr.DataQualityError{Stage: "weather", Field: "irradiance", Index: i, Reason: "NaN value"}
		}

		r := rec
		if r.GHI < 0 || r.DNI < 0 || r.DHI < 0 {
			r.GHI = math.Max(0, r.GHI)
			r.DNI = math.Max(0, r.DNI)
			r.DHI = math.Max(0, r.DHI)
			report.NegativeIrradianceClamped++
		}

		pos := positions[i]
		doy := r.Time.YearDay()

		if pos.Zenith >= 90 {
			// Sun below the horizon: small sensor offsets are tolerated,
			// anything above tolerance is zeroed so night records cannot
			// generate power downstream.
			if r.GHI > nightBeamTolerance || r.DNI > nightBeamTolerance {
				report.NightBeamZeroed++
			}
			r.GHI, r.DNI, r.DHI = 0, 0, 0
		} else {
			// Daytime ceiling: GHI cannot meaningfully exceed 1.2x the
			// extraterrestrial horizontal irradiance.
			if ceiling := 1.2 * irradiance.ExtraterrestrialHorizontal(doy, pos.Zenith); r.GHI > ceiling {
				r.GHI = ceiling
				report.CeilingClamped++
			}
			// The diffuse component is part of the global; it cannot exceed it.
			if r.DHI > r.GHI {
				r.DHI = r.GHI
				report.DiffuseClamped++
			}
			// Closure: the components must reconstruct GHI. GHI is the trusted
			// measurement, so a gross mismatch drops DNI and DHI and lets the
			// transposition rederive them from GHI alone.
			if r.DNI > 0 {
				reconstructed := r.DNI*math.Cos(pos.Zenith*math.Pi/180) + r.DHI
				if math.Abs(reconstructed-r.GHI) > math.Max(closureTolerance*r.GHI, closureFloor) {
					r.DNI, r.DHI = 0, 0
					report.ClosureReset++
				}
			}
		}
		out[i] = r
	}
	return out, report, nil
}

// Package simulate chains the physical models into the hourly simulation
// pipeline: sun position, weather quality control, transposition to the
// array plane, cell temperature, DC power, inverter conversion, and the
// system loss derates. The pipeline is deterministic: the same inputs
// always produce bit-identical output.
package simulate

import (
	"context"
	"time"

	"github.com/secwest/pv-generation-planning/pkg/config"
	"github.com/secwest/pv-generation-planning/pkg/irradiance"
	"github.com/secwest/pv-generation-planning/pkg/pverr"
	"github.com/secwest/pv-generation-planning/pkg/pvmodel"
	"github.com/secwest/pv-generation-planning/pkg/solar"
	"github.com/secwest/pv-generation-planning/pkg/weather"
)

// Point is one simulated timestep. Power in W, irradiance in W/m²,
// temperature in °C. ACPower is zero whenever the sun is below the
// horizon, exactly, regardless of what the weather record claims.
type Point struct {
	Time                time.Time
	Zenith              float64
	POAIrradiance       float64
	EffectiveIrradiance float64
	CellTemperature     float64
	DCPower             float64
	ACPower             float64
	TemperatureLossFrac float64
	IrradianceClamped   bool
}

// Output is a complete simulation run for one site.
type Output struct {
	Points []Point
	// Step is the uniform interval of the input series, used downstream
	// to convert average power to energy.
	Step time.Duration
	QC   weather.QCReport
}

// cancelCheckInterval is how many timesteps pass between context checks.
const cancelCheckInterval = 4096

// Run executes the full pipeline for one site. The weather series must
// have strictly increasing, uniformly spaced timestamps; the system
// configuration must already be validated.
func Run(ctx context.Context, records []weather.Record, loc config.Location, sys *config.SystemConfig) (*Output, error) {
	if sys.RatedDCWatts() <= 0 {
		return nil, &pverr.NumericDegeneracyError{Stage: "simulate", Reason: "rated DC power is not positive; every power ratio would divide by zero"}
	}

	step, err := weather.ValidateSeries(records)
	if err != nil {
		return nil, err
	}

	times := make([]time.Time, len(records))
	for i, r := range records {
		times[i] = r.Time
	}
	positions, err := solar.PositionSeries(times, loc.Latitude, loc.Longitude)
	if err != nil {
		return nil, err
	}

	clean, qc, err := weather.QualityControl(records, positions)
	if err != nil {
		return nil, err
	}

	sky := irradiance.NewSkyModel(sys.SkyDiffuseModel)
	thermal := sys.Racking().ThermalParams()
	irrFactor := sys.Losses.IrradianceFactor()
	dcFactor := sys.Losses.DCFactor()
	acFactor := sys.Losses.ACFactor()
	ratedDC := sys.RatedDCWatts()
	inverter := sys.Inverter()

	points := make([]Point, len(clean))
	dc := make([]float64, len(clean))
	for i, rec := range clean {
		if i%cancelCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		pos := positions[i]
		ir := irradiance.Transpose(rec.GHI, rec.DNI, rec.DHI, pos,
			sys.SurfaceTilt, sys.SurfaceAzimuth, sys.Albedo, sky, rec.Time.YearDay())

		effective := ir.Effective * irrFactor
		cellTemp := pvmodel.CellTemperature(ir.POA, rec.TempAir, rec.WindSpeed, thermal)
		dc[i] = pvmodel.DCPower(effective, cellTemp, ratedDC, sys.GammaPdc) * dcFactor

		points[i] = Point{
			Time:                rec.Time,
			Zenith:              pos.Zenith,
			POAIrradiance:       ir.POA,
			EffectiveIrradiance: effective,
			CellTemperature:     cellTemp,
			DCPower:             dc[i],
			TemperatureLossFrac: pvmodel.TemperatureLossFraction(cellTemp, sys.GammaPdc),
			IrradianceClamped:   ir.Clamped,
		}
	}

	ac := inverter.ConvertSeries(dc)
	for i := range points {
		points[i].ACPower = ac[i] * acFactor
	}

	return &Output{Points: points, Step: step, QC: qc}, nil
}

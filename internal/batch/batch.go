// Package batch executes the simulation pipeline for every configured
// site. Sites are independent, so they run concurrently; each gets a
// unique run ID for persistence and reporting.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/secwest/pv-generation-planning/pkg/config"
	"github.com/secwest/pv-generation-planning/pkg/economics"
	"github.com/secwest/pv-generation-planning/pkg/simulate"
	"github.com/secwest/pv-generation-planning/pkg/weather"
	"github.com/secwest/pv-generation-planning/pkg/yield"
)

// SiteResult is the complete outcome for one site.
type SiteResult struct {
	RunID       string
	Site        string
	CompletedAt time.Time
	Output      *simulate.Output
	Yield       yield.Summary
	Economics   economics.Result
}

// Runner executes the full pipeline for a set of sites.
type Runner struct {
	logger *zap.SugaredLogger
}

// New creates a batch runner.
func New(logger *zap.SugaredLogger) *Runner {
	return &Runner{logger: logger}
}

// RunAll simulates every site concurrently and returns the results in the
// order the sites were configured. A failing site does not abort the
// others; its error is reported alongside the successful results.
func (r *Runner) RunAll(ctx context.Context, sites []config.SiteData) ([]SiteResult, error) {
	results := make([]*SiteResult, len(sites))
	errs := make([]error, len(sites))

	var wg sync.WaitGroup
	for i := range sites {
		wg.Add(1)
		go func(i int, site config.SiteData) {
			defer wg.Done()
			res, err := r.runSite(ctx, site)
			if err != nil {
				r.logger.Errorw("site simulation failed", "site", site.Name, "error", err)
				errs[i] = fmt.Errorf("site %q: %w", site.Name, err)
				return
			}
			results[i] = res
		}(i, sites[i])
	}
	wg.Wait()

	out := make([]SiteResult, 0, len(sites))
	for _, res := range results {
		if res != nil {
			out = append(out, *res)
		}
	}
	return out, errors.Join(errs...)
}

func (r *Runner) runSite(ctx context.Context, site config.SiteData) (*SiteResult, error) {
	start := time.Now()
	r.logger.Infow("simulating site", "site", site.Name, "weather_file", site.WeatherFile)

	records, err := weather.ReadCSV(site.WeatherFile, site.Location.TimezoneOffset)
	if err != nil {
		return nil, err
	}

	output, err := simulate.Run(ctx, records, site.Location, &site.System)
	if err != nil {
		return nil, err
	}
	if output.QC.Changed() {
		r.logger.Warnw("weather data adjusted during quality control",
			"site", site.Name,
			"negative_clamped", output.QC.NegativeIrradianceClamped,
			"ceiling_clamped", output.QC.CeilingClamped,
			"night_beam_zeroed", output.QC.NightBeamZeroed,
			"diffuse_clamped", output.QC.DiffuseClamped,
			"closure_reset", output.QC.ClosureReset)
	}

	rated := site.System.RatedDCWatts()
	summary := yield.Aggregate(output, rated)
	econ := economics.Analyze(summary.AnnualEnergyKWh, rated, site.Economics)

	r.logger.Infow("site simulation complete",
		"site", site.Name,
		"timesteps", len(output.Points),
		"annual_energy_kwh", summary.AnnualEnergyKWh,
		"elapsed", time.Since(start))

	return &SiteResult{
		RunID:       uuid.New().String(),
		Site:        site.Name,
		CompletedAt: time.Now().UTC(),
		Output:      output,
		Yield:       summary,
		Economics:   econ,
	}, nil
}

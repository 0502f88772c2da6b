// Package app wires configuration, simulation, persistence and reporting
// into the application lifecycle.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/secwest/pv-generation-planning/internal/batch"
	"github.com/secwest/pv-generation-planning/internal/log"
	"github.com/secwest/pv-generation-planning/internal/report"
	"github.com/secwest/pv-generation-planning/internal/storage"
	"github.com/secwest/pv-generation-planning/internal/storage/postgres"
	"github.com/secwest/pv-generation-planning/internal/storage/sqlite"
	"github.com/secwest/pv-generation-planning/pkg/config"
)

// Options are the command-line overrides applied on top of the loaded
// configuration.
type Options struct {
	// OutputDir receives the text and CSV reports.
	OutputDir string
	// WeatherFile, when set, replaces the weather file of every site.
	WeatherFile string
	// HTTPAddr, when set, overrides the configured results listen address.
	HTTPAddr string
}

// App represents the main application
type App struct {
	configProvider config.Provider
	opts           Options
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.Provider, opts Options, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		opts:           opts,
		logger:         logger,
	}
}

// Run executes the configured batch and blocks until reporting is done.
// When an HTTP endpoint is configured it keeps serving results until a
// shutdown signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.Load()
	if err != nil {
		return err
	}
	if a.opts.WeatherFile != "" {
		for i := range cfg.Sites {
			cfg.Sites[i].WeatherFile = a.opts.WeatherFile
		}
	}
	if a.opts.HTTPAddr != "" {
		cfg.HTTP = &config.HTTPData{ListenAddr: a.opts.HTTPAddr}
	}

	backend, err := openBackend(cfg.Storage)
	if err != nil {
		return err
	}
	if backend != nil {
		defer backend.Close()
	}

	runner := batch.New(a.logger)
	results, runErr := runner.RunAll(ctx, cfg.Sites)

	for i := range results {
		res := &results[i]
		if err := a.writeReports(res); err != nil {
			return err
		}
		if backend != nil {
			if err := saveRun(ctx, backend, res); err != nil {
				return err
			}
		}
	}

	if runErr != nil {
		return runErr
	}

	if cfg.HTTP != nil && cfg.HTTP.ListenAddr != "" {
		return a.serveResults(ctx, cancel, cfg.HTTP.ListenAddr, results)
	}

	log.Info("all sites complete")
	return nil
}

func (a *App) writeReports(res *batch.SiteResult) error {
	if err := os.MkdirAll(a.opts.OutputDir, 0o755); err != nil {
		return err
	}

	textPath := filepath.Join(a.opts.OutputDir, res.Site+".txt")
	f, err := os.Create(textPath)
	if err != nil {
		return err
	}
	if err := report.WriteText(f, res); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if err := report.WriteHourlyCSV(filepath.Join(a.opts.OutputDir, res.Site+"-hourly.csv"), res); err != nil {
		return err
	}
	if err := report.WriteMonthlyCSV(filepath.Join(a.opts.OutputDir, res.Site+"-monthly.csv"), res); err != nil {
		return err
	}

	a.logger.Infow("reports written", "site", res.Site, "dir", a.opts.OutputDir)
	return nil
}

func (a *App) serveResults(ctx context.Context, cancel context.CancelFunc, addr string, results []batch.SiteResult) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigs:
			log.Info("shutdown signal received, stopping results API...")
			cancel()
		case <-ctx.Done():
		}
	}()

	srv := report.NewServer(results, a.logger)
	return srv.ListenAndServe(ctx, addr)
}

func openBackend(cfg config.StorageData) (storage.Backend, error) {
	switch {
	case cfg.SQLite != nil && cfg.SQLite.Path != "":
		return sqlite.New(cfg.SQLite.Path)
	case cfg.Postgres != nil && cfg.Postgres.ConnectionString != "":
		return postgres.New(cfg.Postgres.ConnectionString)
	}
	return nil, nil
}

func saveRun(ctx context.Context, backend storage.Backend, res *batch.SiteResult) error {
	run := storage.RunRecord{
		ID:                     res.RunID,
		Site:                   res.Site,
		CreatedAt:              res.CompletedAt,
		AnnualEnergyKWh:        res.Yield.AnnualEnergyKWh,
		SpecificYieldKWhPerKWp: res.Yield.SpecificYieldKWhPerKWp,
		CapacityFactor:         res.Yield.CapacityFactor,
		PerformanceRatio:       res.Yield.PerformanceRatio,
		InstalledCost:          res.Economics.InstalledCost,
		PaybackYears:           res.Economics.PaybackYears,
		LCOE:                   res.Economics.LCOE,
		NPV:                    res.Economics.NPV,
	}
	monthly := make([]storage.MonthlyRecord, 0, len(res.Yield.Monthly))
	for _, m := range res.Yield.Monthly {
		monthly = append(monthly, storage.MonthlyRecord{
			RunID:                  res.RunID,
			Year:                   m.Year,
			Month:                  int(m.Month),
			EnergyKWh:              m.EnergyKWh,
			SpecificYieldKWhPerKWp: m.SpecificYieldKWhPerKWp,
			POAInsolationKWhM2:     m.POAInsolationKWhM2,
			MeanCellTemperature:    m.MeanCellTemperature,
			PeakACPowerW:           m.PeakACPowerW,
		})
	}
	if err := backend.SaveRun(ctx, run, monthly); err != nil {
		return fmt.Errorf("error persisting run %s: %w", res.RunID, err)
	}
	return nil
}

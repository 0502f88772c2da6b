// Package sqlite persists simulation runs to an embedded SQLite database
// using the pure-Go driver, so the binary stays CGO-free.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/secwest/pv-generation-planning/internal/log"
	"github.com/secwest/pv-generation-planning/internal/storage"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	site TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	annual_energy_kwh REAL NOT NULL,
	specific_yield_kwh_per_kwp REAL NOT NULL,
	capacity_factor REAL NOT NULL,
	performance_ratio REAL NOT NULL,
	installed_cost REAL NOT NULL,
	payback_years REAL NOT NULL,
	lcoe REAL NOT NULL,
	npv REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_site ON runs(site);

CREATE TABLE IF NOT EXISTS monthly_yield (
	run_id TEXT NOT NULL REFERENCES runs(id),
	year INTEGER NOT NULL,
	month INTEGER NOT NULL,
	energy_kwh REAL NOT NULL,
	specific_yield_kwh_per_kwp REAL NOT NULL,
	poa_insolation_kwh_m2 REAL NOT NULL,
	mean_cell_temperature REAL NOT NULL,
	peak_ac_power_w REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_monthly_run ON monthly_yield(run_id);
`

// Store is a SQLite-backed storage.Backend.
type Store struct {
	db *sql.DB
}

// New opens (creating if necessary) the SQLite database at path and
// ensures the schema exists.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening SQLite database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating SQLite schema: %w", err)
	}
	log.Infof("opened SQLite results database at %s", path)
	return &Store{db: db}, nil
}

// SaveRun writes the run and its monthly rows in one transaction.
func (s *Store) SaveRun(ctx context.Context, run storage.RunRecord, monthly []storage.MonthlyRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, site, created_at, annual_energy_kwh,
			specific_yield_kwh_per_kwp, capacity_factor, performance_ratio,
			installed_cost, payback_years, lcoe, npv)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Site, run.CreatedAt, run.AnnualEnergyKWh,
		run.SpecificYieldKWhPerKWp, run.CapacityFactor, run.PerformanceRatio,
		run.InstalledCost, run.PaybackYears, run.LCOE, run.NPV)
	if err != nil {
		return fmt.Errorf("error storing run %s: %w", run.ID, err)
	}

	for _, m := range monthly {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO monthly_yield (run_id, year, month, energy_kwh,
				specific_yield_kwh_per_kwp, poa_insolation_kwh_m2,
				mean_cell_temperature, peak_ac_power_w)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			m.RunID, m.Year, m.Month, m.EnergyKWh,
			m.SpecificYieldKWhPerKWp, m.POAInsolationKWhM2,
			m.MeanCellTemperature, m.PeakACPowerW)
		if err != nil {
			return fmt.Errorf("error storing monthly yield for run %s: %w", run.ID, err)
		}
	}

	return tx.Commit()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

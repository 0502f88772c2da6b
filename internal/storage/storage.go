// Package storage persists completed simulation runs. Two backends are
// supported: an embedded SQLite file for single-machine use and PostgreSQL
// for shared deployments. Both store the same shape: one run row per site
// execution plus its monthly yield breakdown.
package storage

import (
	"context"
	"time"
)

// RunRecord is the persisted summary of one site simulation.
type RunRecord struct {
	ID        string    `gorm:"primaryKey;column:id"`
	Site      string    `gorm:"column:site;index"`
	CreatedAt time.Time `gorm:"column:created_at"`

	AnnualEnergyKWh        float64 `gorm:"column:annual_energy_kwh"`
	SpecificYieldKWhPerKWp float64 `gorm:"column:specific_yield_kwh_per_kwp"`
	CapacityFactor         float64 `gorm:"column:capacity_factor"`
	PerformanceRatio       float64 `gorm:"column:performance_ratio"`

	InstalledCost float64 `gorm:"column:installed_cost"`
	PaybackYears  float64 `gorm:"column:payback_years"`
	LCOE          float64 `gorm:"column:lcoe"`
	NPV           float64 `gorm:"column:npv"`
}

// TableName customizes the table name used by GORM.
func (RunRecord) TableName() string {
	return "runs"
}

// MonthlyRecord is one month of yield for a stored run.
type MonthlyRecord struct {
	RunID                  string  `gorm:"column:run_id;index"`
	Year                   int     `gorm:"column:year"`
	Month                  int     `gorm:"column:month"`
	EnergyKWh              float64 `gorm:"column:energy_kwh"`
	SpecificYieldKWhPerKWp float64 `gorm:"column:specific_yield_kwh_per_kwp"`
	POAInsolationKWhM2     float64 `gorm:"column:poa_insolation_kwh_m2"`
	MeanCellTemperature    float64 `gorm:"column:mean_cell_temperature"`
	PeakACPowerW           float64 `gorm:"column:peak_ac_power_w"`
}

// TableName customizes the table name used by GORM.
func (MonthlyRecord) TableName() string {
	return "monthly_yield"
}

// Backend stores completed runs. The application selects a concrete
// backend from the storage configuration; a nil Backend means results are
// not persisted.
type Backend interface {
	SaveRun(ctx context.Context, run RunRecord, monthly []MonthlyRecord) error
	Close() error
}

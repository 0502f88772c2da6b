package report

import (
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/secwest/pv-generation-planning/internal/batch"
)

// csvTime serializes timestamps as RFC 3339.
type csvTime struct {
	time.Time
}

func (c csvTime) MarshalCSV() (string, error) {
	return c.Format(time.RFC3339), nil
}

func (c *csvTime) UnmarshalCSV(field string) error {
	t, err := time.Parse(time.RFC3339, field)
	if err != nil {
		return err
	}
	c.Time = t
	return nil
}

type hourlyRow struct {
	Time                csvTime `csv:"time"`
	POAIrradiance       float64 `csv:"poa_w_m2"`
	EffectiveIrradiance float64 `csv:"effective_w_m2"`
	CellTemperature     float64 `csv:"cell_temp_c"`
	DCPower             float64 `csv:"dc_power_w"`
	ACPower             float64 `csv:"ac_power_w"`
	TemperatureLossFrac float64 `csv:"temperature_loss"`
}

type monthlyRow struct {
	Year                    int     `csv:"year"`
	Month                   int     `csv:"month"`
	EnergyKWh               float64 `csv:"energy_kwh"`
	DailyEnergyKWh          float64 `csv:"daily_energy_kwh"`
	SpecificYieldKWhPerKWp  float64 `csv:"specific_yield_kwh_per_kwp"`
	POAInsolationKWhM2      float64 `csv:"poa_insolation_kwh_m2"`
	MeanCellTemperature     float64 `csv:"mean_cell_temp_c"`
	MeanEffectiveIrradiance float64 `csv:"mean_effective_w_m2"`
	PeakACPowerW            float64 `csv:"peak_ac_power_w"`
}

// WriteHourlyCSV exports the full simulated series for one run.
func WriteHourlyCSV(path string, res *batch.SiteResult) error {
	rows := make([]hourlyRow, len(res.Output.Points))
	for i, p := range res.Output.Points {
		rows[i] = hourlyRow{
			Time:                csvTime{p.Time},
			POAIrradiance:       p.POAIrradiance,
			EffectiveIrradiance: p.EffectiveIrradiance,
			CellTemperature:     p.CellTemperature,
			DCPower:             p.DCPower,
			ACPower:             p.ACPower,
			TemperatureLossFrac: p.TemperatureLossFrac,
		}
	}
	return writeCSV(path, &rows)
}

// WriteMonthlyCSV exports the monthly yield breakdown for one run.
func WriteMonthlyCSV(path string, res *batch.SiteResult) error {
	rows := make([]monthlyRow, len(res.Yield.Monthly))
	for i, m := range res.Yield.Monthly {
		rows[i] = monthlyRow{
			Year:                    m.Year,
			Month:                   int(m.Month),
			EnergyKWh:               m.EnergyKWh,
			DailyEnergyKWh:          m.DailyEnergyKWh,
			SpecificYieldKWhPerKWp:  m.SpecificYieldKWhPerKWp,
			POAInsolationKWhM2:      m.POAInsolationKWhM2,
			MeanCellTemperature:     m.MeanCellTemperature,
			MeanEffectiveIrradiance: m.MeanEffectiveIrradiance,
			PeakACPowerW:            m.PeakACPowerW,
		}
	}
	return writeCSV(path, &rows)
}

func writeCSV(path string, rows interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(rows, f)
}

package weather

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/secwest/pv-generation-planning/pkg/pverr"
	"github.com/secwest/pv-generation-planning/pkg/solar"
)

func hourlySeries(start time.Time, n int) []Record {
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{Time: start.Add(time.Duration(i) * time.Hour), GHI: 100, TempAir: 15, WindSpeed: 2}
	}
	return records
}

func TestValidateSeries(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	step, err := ValidateSeries(hourlySeries(start, 24))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step != time.Hour {
		t.Errorf("step = %v, want 1h", step)
	}
}

func TestValidateSeriesRejectsDisorder(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func([]Record)
	}{
		{"duplicate timestamp", func(r []Record) { r[3].Time = r[2].Time }},
		{"backwards timestamp", func(r []Record) { r[3].Time = r[2].Time.Add(-time.Hour) }},
		{"gap in series", func(r []Record) { r[3].Time = r[3].Time.Add(2 * time.Hour) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := hourlySeries(start, 6)
			tt.mutate(records)
			_, err := ValidateSeries(records)
			var dq *pverr.DataQualityError
			if !errors.As(err, &dq) {
				t.Errorf("error = %v, want DataQualityError", err)
			}
		})
	}

	if _, err := ValidateSeries(nil); err == nil {
		t.Error("empty series must be rejected")
	}
}

func TestQualityControlClampsNegatives(t *testing.T) {
	records := []Record{{Time: time.Date(2023, 6, 21, 12, 0, 0, 0, time.UTC), GHI: -50, DNI: -10, DHI: 20, TempAir: 20}}
	positions := []solar.PositionRecord{{Zenith: 30}}

	clean, report, err := QualityControl(records, positions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clean[0].GHI != 0 || clean[0].DNI != 0 {
		t.Errorf("negative irradiance not clamped: GHI=%.1f DNI=%.1f", clean[0].GHI, clean[0].DNI)
	}
	if report.NegativeIrradianceClamped != 1 {
		t.Errorf("clamp count = %d, want 1", report.NegativeIrradianceClamped)
	}
	if !report.Changed() {
		t.Error("report should flag the change")
	}
}

func TestQualityControlZeroesNightBeam(t *testing.T) {
	records := []Record{{Time: time.Date(2023, 6, 21, 0, 0, 0, 0, time.UTC), GHI: 0, DNI: 150, DHI: 0, TempAir: 10}}
	positions := []solar.PositionRecord{{Zenith: 110}}

	clean, report, err := QualityControl(records, positions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clean[0].DNI != 0 || clean[0].GHI != 0 || clean[0].DHI != 0 {
		t.Errorf("night irradiance survived QC: %+v", clean[0])
	}
	if report.NightBeamZeroed != 1 {
		t.Errorf("night beam count = %d, want 1", report.NightBeamZeroed)
	}
}

func TestQualityControlCeilingClamp(t *testing.T) {
	records := []Record{{Time: time.Date(2023, 6, 21, 12, 0, 0, 0, time.UTC), GHI: 2500, DNI: 900, DHI: 100, TempAir: 25}}
	positions := []solar.PositionRecord{{Zenith: 10}}

	clean, report, err := QualityControl(records, positions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clean[0].GHI >= 2500 {
		t.Errorf("GHI = %.1f, want clamped below input", clean[0].GHI)
	}
	if report.CeilingClamped != 1 {
		t.Errorf("ceiling count = %d, want 1", report.CeilingClamped)
	}
}

func TestQualityControlClampsDiffuseToGlobal(t *testing.T) {
	records := []Record{{Time: time.Date(2023, 6, 21, 12, 0, 0, 0, time.UTC), GHI: 300, DNI: 0, DHI: 450, TempAir: 18}}
	positions := []solar.PositionRecord{{Zenith: 40}}

	clean, report, err := QualityControl(records, positions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clean[0].DHI != clean[0].GHI {
		t.Errorf("DHI = %.1f, want clamped to GHI %.1f", clean[0].DHI, clean[0].GHI)
	}
	if report.DiffuseClamped != 1 {
		t.Errorf("diffuse clamp count = %d, want 1", report.DiffuseClamped)
	}
	if !report.Changed() {
		t.Error("report should flag the change")
	}
}

func TestQualityControlResetsBrokenClosure(t *testing.T) {
	// DNI*cos(zenith)+DHI reconstructs roughly 950 W/m² against a reported
	// GHI of 400: the components are untrustworthy and must be dropped so
	// the transposition rederives them from GHI.
	records := []Record{{Time: time.Date(2023, 6, 21, 12, 0, 0, 0, time.UTC), GHI: 400, DNI: 900, DHI: 160, TempAir: 25}}
	positions := []solar.PositionRecord{{Zenith: 30}}

	clean, report, err := QualityControl(records, positions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clean[0].DNI != 0 || clean[0].DHI != 0 {
		t.Errorf("components survived closure reset: DNI=%.1f DHI=%.1f", clean[0].DNI, clean[0].DHI)
	}
	if clean[0].GHI != 400 {
		t.Errorf("GHI = %.1f, want 400 untouched", clean[0].GHI)
	}
	if report.ClosureReset != 1 {
		t.Errorf("closure reset count = %d, want 1", report.ClosureReset)
	}

	// Components within tolerance of GHI pass through unchanged.
	records[0] = Record{Time: records[0].Time, GHI: 850, DNI: 800, DHI: 160, TempAir: 25}
	clean, report, err = QualityControl(records, positions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.ClosureReset != 0 {
		t.Errorf("closure reset count = %d, want 0", report.ClosureReset)
	}
	if clean[0].DNI != 800 {
		t.Errorf("DNI = %.1f, want 800 untouched", clean[0].DNI)
	}
}

func TestQualityControlRejectsNaN(t *testing.T) {
	nan := func() float64 { var z float64; return z / z }()
	records := []Record{{Time: time.Now(), GHI: nan}}
	positions := []solar.PositionRecord{{Zenith: 45}}

	_, _, err := QualityControl(records, positions)
	var dq *pverr.DataQualityError
	if !errors.As(err, &dq) {
		t.Errorf("error = %v, want DataQualityError", err)
	}
}

func TestReadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tmy.csv")
	content := "time(UTC),G(h),Gb(n),Gd(h),T2m,WS10m\n" +
		"20230621:1100,820,710,160,22.5,3.1\n" +
		"20230621:1200,870,745,170,23.0,2.8\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := ReadCSV(path, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].GHI != 820 || records[0].WindSpeed != 3.1 {
		t.Errorf("first record = %+v", records[0])
	}
	want := time.Date(2023, 6, 21, 11, 0, 0, 0, time.UTC)
	if !records[0].Time.Equal(want) {
		t.Errorf("timestamp = %v, want %v", records[0].Time, want)
	}
}

func TestReadCSVTimezoneOffset(t *testing.T) {
	dir := t.TempDir()

	// PVGIS stamps are declared UTC by the column itself; the site offset
	// must never displace them.
	utcPath := filepath.Join(dir, "utc.csv")
	utcContent := "time(UTC),G(h),Gb(n),Gd(h),T2m,WS10m\n" +
		"20230621:1700,870,745,170,23.0,2.8\n"
	if err := os.WriteFile(utcPath, []byte(utcContent), 0o644); err != nil {
		t.Fatal(err)
	}
	records, err := ReadCSV(utcPath, -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2023, 6, 21, 17, 0, 0, 0, time.UTC)
	if !records[0].Time.Equal(want) {
		t.Errorf("UTC stamp = %v, want %v", records[0].Time, want)
	}

	// Zone-less stamps written in UTC-5 local time shift forward five
	// hours.
	naivePath := filepath.Join(dir, "naive.csv")
	naiveContent := "time(UTC),G(h),Gb(n),Gd(h),T2m,WS10m\n" +
		"2023-06-21 12:00,870,745,170,23.0,2.8\n"
	if err := os.WriteFile(naivePath, []byte(naiveContent), 0o644); err != nil {
		t.Fatal(err)
	}
	records, err = ReadCSV(naivePath, -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !records[0].Time.Equal(want) {
		t.Errorf("naive stamp = %v, want %v", records[0].Time, want)
	}
}

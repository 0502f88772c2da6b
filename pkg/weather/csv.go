package weather

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"
)

// csvTime parses the timestamp formats weather providers actually emit:
// PVGIS TMY compact stamps ("20230621:1200", documented UTC), RFC 3339,
// and zone-less local stamps. Naive records which layouts carry no zone
// of their own, so only those may be shifted by the site offset later.
type csvTime struct {
	time.Time
	Naive bool
}

const (
	pvgisTimeLayout = "20060102:1504"
	naiveTimeLayout = "2006-01-02 15:04"
)

func (c *csvTime) UnmarshalCSV(field string) error {
	for _, layout := range []string{pvgisTimeLayout, time.RFC3339, naiveTimeLayout} {
		if t, err := time.Parse(layout, field); err == nil {
			c.Time = t.UTC()
			c.Naive = layout == naiveTimeLayout
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", field)
}

func (c csvTime) MarshalCSV() (string, error) {
	return c.Format(time.RFC3339), nil
}

// csvRecord mirrors the PVGIS TMY hourly CSV column naming used by the
// weather-acquisition layer.
type csvRecord struct {
	Time      csvTime `csv:"time(UTC)"`
	GHI       float64 `csv:"G(h)"`
	DNI       float64 `csv:"Gb(n)"`
	DHI       float64 `csv:"Gd(h)"`
	TempAir   float64 `csv:"T2m"`
	WindSpeed float64 `csv:"WS10m"`
}

// ReadCSV loads a TMY weather file. Timestamps whose layout carries or
// declares a zone (PVGIS UTC stamps, RFC 3339) are taken as-is; only
// naive local stamps are interpreted as offset from UTC by tzOffsetHours
// and converted.
func ReadCSV(path string, tzOffsetHours float64) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening weather file: %w", err)
	}
	defer f.Close()

	var rows []csvRecord
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parsing weather file %s: %w", path, err)
	}

	offset := time.Duration(tzOffsetHours * float64(time.Hour))
	records := make([]Record, len(rows))
	for i, row := range rows {
		ts := row.Time.Time
		if row.Time.Naive {
			ts = ts.Add(-offset)
		}
		records[i] = Record{
			Time:      ts,
			GHI:       row.GHI,
			DNI:       row.DNI,
			DHI:       row.DHI,
			TempAir:   row.TempAir,
			WindSpeed: row.WindSpeed,
		}
	}
	return records, nil
}

package config

import (
	"github.com/secwest/pv-generation-planning/pkg/economics"
	"github.com/secwest/pv-generation-planning/pkg/pverr"
	"github.com/secwest/pv-generation-planning/pkg/solar"
)

// Provider is the interface for configuration sources.
type Provider interface {
	// Load reads, defaults and validates the complete configuration.
	Load() (*Data, error)
}

// Data is the complete validated configuration for a run: one or more
// sites plus optional storage and HTTP output settings.
type Data struct {
	Sites   []SiteData  `yaml:"sites"`
	Storage StorageData `yaml:"storage"`
	HTTP    *HTTPData   `yaml:"http,omitempty"`
}

// SiteData describes one independent simulation unit: a location, the
// weather file covering one representative year, the system design and
// the economic assumptions.
type SiteData struct {
	Name        string           `yaml:"name"`
	WeatherFile string           `yaml:"weather_file"`
	Location    Location         `yaml:"location"`
	System      SystemConfig     `yaml:"system"`
	Economics   economics.Inputs `yaml:"economics"`
}

// StorageData selects the optional results backend. At most one backend
// is used; when none is configured results are only written to files.
type StorageData struct {
	SQLite   *SQLiteData   `yaml:"sqlite,omitempty"`
	Postgres *PostgresData `yaml:"postgres,omitempty"`
}

type SQLiteData struct {
	Path string `yaml:"path"`
}

type PostgresData struct {
	ConnectionString string `yaml:"connection_string"`
}

// HTTPData configures the optional results endpoint.
type HTTPData struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Validate defaults and checks every site eagerly so that a malformed
// configuration is rejected before any simulation work begins.
func (d *Data) Validate() error {
	if len(d.Sites) == 0 {
		return &pverr.ConfigurationError{Field: "sites", Reason: "at least one site is required"}
	}
	seen := make(map[string]bool, len(d.Sites))
	for i := range d.Sites {
		site := &d.Sites[i]
		if site.Name == "" {
			return &pverr.ConfigurationError{Field: "site.name", Reason: "must not be empty"}
		}
		if seen[site.Name] {
			return &pverr.ConfigurationError{Field: "site.name", Reason: "duplicate site name " + site.Name}
		}
		seen[site.Name] = true
		if err := solar.ValidateCoordinates(site.Location.Latitude, site.Location.Longitude); err != nil {
			return err
		}
		if site.Location.Altitude < -420 || site.Location.Altitude > 8848 {
			return &pverr.ConfigurationError{Field: "altitude", Reason: "must be within [-420, 8848] meters"}
		}
		site.System.ApplyDefaults()
		if err := site.System.Validate(); err != nil {
			return err
		}
		site.Economics.ApplyDefaults()
	}
	return nil
}

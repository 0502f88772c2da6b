package config

import (
	"fmt"
	"os"

	"github.com/secwest/pv-generation-planning/pkg/economics"
	"github.com/secwest/pv-generation-planning/pkg/pvmodel"
	"gopkg.in/yaml.v2"
)

// YAMLProvider loads configuration from a YAML file.
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a provider for the given file path.
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{filename: filename}
}

// Load reads the file, unmarshals, defaults and validates.
func (y *YAMLProvider) Load() (*Data, error) {
	raw, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ParseYAML(raw)
}

// YAML shadow structs: tilt, azimuth, gamma and albedo are pointers
// because 0 is a meaningful configured value that must be told apart
// from "absent".
type systemYAML struct {
	SurfaceTilt        *float64       `yaml:"surface_tilt"`
	SurfaceAzimuth     *float64       `yaml:"surface_azimuth"`
	ModulePowerWatts   float64        `yaml:"module_power_watts"`
	ModulesPerString   int            `yaml:"modules_per_string"`
	StringsPerInverter int            `yaml:"strings_per_inverter"`
	GammaPdc           *float64       `yaml:"gamma_pdc"`
	InverterPowerWatts float64        `yaml:"inverter_power_watts"`
	DCACRatio          float64        `yaml:"dc_ac_ratio"`
	InverterEfficiency float64        `yaml:"inverter_efficiency"`
	RackingModel       string         `yaml:"racking_model"`
	Albedo             *float64       `yaml:"albedo"`
	SkyDiffuseModel    string         `yaml:"sky_diffuse_model"`
	Losses             pvmodel.Losses `yaml:"losses"`
}

type siteYAML struct {
	Name        string           `yaml:"name"`
	WeatherFile string           `yaml:"weather_file"`
	Location    Location         `yaml:"location"`
	System      systemYAML       `yaml:"system"`
	Economics   economics.Inputs `yaml:"economics"`
}

type dataYAML struct {
	Sites   []siteYAML  `yaml:"sites"`
	Storage StorageData `yaml:"storage"`
	HTTP    *HTTPData   `yaml:"http,omitempty"`
}

func (s systemYAML) toSystemConfig() SystemConfig {
	cfg := SystemConfig{
		SurfaceTilt:        -1,
		SurfaceAzimuth:     -1,
		ModulePowerWatts:   s.ModulePowerWatts,
		ModulesPerString:   s.ModulesPerString,
		StringsPerInverter: s.StringsPerInverter,
		InverterPowerWatts: s.InverterPowerWatts,
		DCACRatio:          s.DCACRatio,
		InverterEfficiency: s.InverterEfficiency,
		RackingModel:       s.RackingModel,
		SkyDiffuseModel:    s.SkyDiffuseModel,
		Losses:             s.Losses,
	}
	if s.SurfaceTilt != nil {
		cfg.SurfaceTilt = *s.SurfaceTilt
	}
	if s.SurfaceAzimuth != nil {
		cfg.SurfaceAzimuth = *s.SurfaceAzimuth
	}
	if s.GammaPdc != nil {
		cfg.GammaPdc = *s.GammaPdc
		cfg.gammaSet = true
	}
	if s.Albedo != nil {
		cfg.Albedo = *s.Albedo
		cfg.albedoSet = true
	}
	return cfg
}

// ParseYAML parses and validates configuration from YAML bytes.
func ParseYAML(raw []byte) (*Data, error) {
	var doc dataYAML
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	data := &Data{
		Sites:   make([]SiteData, len(doc.Sites)),
		Storage: doc.Storage,
		HTTP:    doc.HTTP,
	}
	for i, site := range doc.Sites {
		data.Sites[i] = SiteData{
			Name:        site.Name,
			WeatherFile: site.WeatherFile,
			Location:    site.Location,
			System:      site.System.toSystemConfig(),
			Economics:   site.Economics,
		}
	}

	if err := data.Validate(); err != nil {
		return nil, err
	}
	return data, nil
}

// Package config defines the site and system configuration consumed by the
// simulation pipeline, with documented defaults for every optional field
// and eager validation at construction. Configuration is immutable once a
// run starts and safe to share across concurrent site runs.
package config

import (
	"fmt"
	"math"

	"github.com/secwest/pv-generation-planning/pkg/pverr"
	"github.com/secwest/pv-generation-planning/pkg/pvmodel"
)

// Location pins a site on the globe. TimezoneOffset is the fixed UTC
// offset in hours used to interpret naive weather timestamps.
type Location struct {
	Latitude       float64 `yaml:"latitude"`
	Longitude      float64 `yaml:"longitude"`
	Altitude       float64 `yaml:"altitude"`
	TimezoneOffset float64 `yaml:"timezone_offset"`
}

// Racking identifies the mounting/module construction and selects the
// Sandia thermal coefficients. The set is closed: unknown names are a
// configuration error, resolved once before simulation rather than
// matched as strings inside the pipeline.
type Racking int

const (
	OpenRackGlassGlass Racking = iota
	CloseMountGlassGlass
	OpenRackGlassPolymer
	InsulatedBackGlassPolymer
)

var rackingNames = map[string]Racking{
	"open_rack_glass_glass":        OpenRackGlassGlass,
	"close_mount_glass_glass":      CloseMountGlassGlass,
	"open_rack_glass_polymer":      OpenRackGlassPolymer,
	"insulated_back_glass_polymer": InsulatedBackGlassPolymer,
}

// The coefficient sets differ by an order of magnitude in resulting
// temperature rise between open-rack and insulated-back mounting, so the
// table is keyed by the closed enum and resolved exactly once.
var thermalParams = map[Racking]pvmodel.ThermalParams{
	OpenRackGlassGlass:        {A: -3.47, B: -0.0594, DeltaT: 3},
	CloseMountGlassGlass:      {A: -2.98, B: -0.0471, DeltaT: 1},
	OpenRackGlassPolymer:      {A: -3.56, B: -0.0750, DeltaT: 3},
	InsulatedBackGlassPolymer: {A: -2.81, B: -0.0455, DeltaT: 0},
}

// ParseRacking resolves a configured racking name. An empty name selects
// the open-rack glass/glass default.
func ParseRacking(name string) (Racking, error) {
	if name == "" {
		return OpenRackGlassGlass, nil
	}
	r, ok := rackingNames[name]
	if !ok {
		return 0, &pverr.ConfigurationError{Field: "racking_model", Reason: fmt.Sprintf("unknown racking model %q", name)}
	}
	return r, nil
}

// ThermalParams returns the Sandia coefficients for the racking category.
func (r Racking) ThermalParams() pvmodel.ThermalParams {
	return thermalParams[r]
}

func (r Racking) String() string {
	for name, v := range rackingNames {
		if v == r {
			return name
		}
	}
	return "unknown"
}

// SystemConfig describes one PV installation. Zero values for optional
// fields are replaced by the documented defaults in ApplyDefaults.
type SystemConfig struct {
	SurfaceTilt        float64 `yaml:"surface_tilt"`
	SurfaceAzimuth     float64 `yaml:"surface_azimuth"`
	ModulePowerWatts   float64 `yaml:"module_power_watts"`
	ModulesPerString   int     `yaml:"modules_per_string"`
	StringsPerInverter int     `yaml:"strings_per_inverter"`
	// GammaPdc is the module power temperature coefficient, 1/°C.
	GammaPdc float64 `yaml:"gamma_pdc"`
	// InverterPowerWatts is the AC rating. When zero it is sized from the
	// DC rating using DCACRatio.
	InverterPowerWatts float64 `yaml:"inverter_power_watts"`
	DCACRatio          float64 `yaml:"dc_ac_ratio"`
	InverterEfficiency float64 `yaml:"inverter_efficiency"`
	RackingModel       string  `yaml:"racking_model"`
	Albedo             float64 `yaml:"albedo"`
	// SkyDiffuseModel selects the transposition strategy: "isotropic"
	// (default) or "haydavies".
	SkyDiffuseModel string         `yaml:"sky_diffuse_model"`
	Losses          pvmodel.Losses `yaml:"losses"`

	racking Racking

	// Set by the YAML loader when the field appeared in the document, so
	// an explicit 0 survives ApplyDefaults. 0 is a legal value for both.
	gammaSet  bool
	albedoSet bool
}

// Defaults for optional SystemConfig fields.
const (
	DefaultSurfaceTilt        = 30.0
	DefaultSurfaceAzimuth     = 180.0
	DefaultModulePowerWatts   = 400.0
	DefaultModulesPerString   = 20
	DefaultStringsPerInverter = 1
	DefaultGammaPdc           = -0.0035
	DefaultDCACRatio          = 1.2
	DefaultInverterEfficiency = 0.97
	DefaultAlbedo             = 0.2
)

// ApplyDefaults fills unset optional fields. Tilt 0 and azimuth 0 are
// legal configured values; the YAML loader distinguishes "absent" from
// "zero" by seeding the negative sentinel -1 before unmarshaling.
func (c *SystemConfig) ApplyDefaults() {
	if c.SurfaceTilt < 0 {
		c.SurfaceTilt = DefaultSurfaceTilt
	}
	if c.SurfaceAzimuth < 0 {
		c.SurfaceAzimuth = DefaultSurfaceAzimuth
	}
	if c.ModulePowerWatts == 0 {
		c.ModulePowerWatts = DefaultModulePowerWatts
	}
	if c.ModulesPerString == 0 {
		c.ModulesPerString = DefaultModulesPerString
	}
	if c.StringsPerInverter == 0 {
		c.StringsPerInverter = DefaultStringsPerInverter
	}
	if c.GammaPdc == 0 && !c.gammaSet {
		c.GammaPdc = DefaultGammaPdc
	}
	if c.DCACRatio == 0 {
		c.DCACRatio = DefaultDCACRatio
	}
	if c.InverterEfficiency == 0 {
		c.InverterEfficiency = DefaultInverterEfficiency
	}
	if c.InverterPowerWatts == 0 {
		c.InverterPowerWatts = c.RatedDCWatts() / c.DCACRatio
	}
	if c.Albedo == 0 && !c.albedoSet {
		c.Albedo = DefaultAlbedo
	}
	if c.Losses == (pvmodel.Losses{}) {
		c.Losses = pvmodel.DefaultLosses()
	}
}

// RatedDCWatts is the array nameplate DC power.
func (c *SystemConfig) RatedDCWatts() float64 {
	return c.ModulePowerWatts * float64(c.ModulesPerString) * float64(c.StringsPerInverter)
}

// Racking returns the resolved racking category. Valid only after
// Validate has succeeded.
func (c *SystemConfig) Racking() Racking {
	return c.racking
}

// Validate checks every field eagerly.
func (c *SystemConfig) Validate() error {
	if math.IsNaN(c.SurfaceTilt) || math.IsNaN(c.SurfaceAzimuth) {
		return &pverr.ConfigurationError{Field: "orientation", Reason: "must not be NaN"}
	}
	if c.SurfaceTilt < 0 || c.SurfaceTilt > 90 {
		return &pverr.ConfigurationError{Field: "surface_tilt", Reason: "must be within [0, 90] degrees"}
	}
	if c.SurfaceAzimuth < 0 || c.SurfaceAzimuth >= 360 {
		return &pverr.ConfigurationError{Field: "surface_azimuth", Reason: "must be within [0, 360) degrees"}
	}
	if c.ModulePowerWatts <= 0 {
		return &pverr.ConfigurationError{Field: "module_power_watts", Reason: "must be positive"}
	}
	if c.ModulesPerString <= 0 || c.StringsPerInverter <= 0 {
		return &pverr.ConfigurationError{Field: "string_configuration", Reason: "module and string counts must be positive"}
	}
	if c.InverterPowerWatts <= 0 {
		return &pverr.ConfigurationError{Field: "inverter_power_watts", Reason: "must be positive"}
	}
	if c.InverterEfficiency <= 0 || c.InverterEfficiency > 1 {
		return &pverr.ConfigurationError{Field: "inverter_efficiency", Reason: "must be within (0, 1]"}
	}
	if c.GammaPdc > 0 || c.GammaPdc < -0.02 {
		return &pverr.ConfigurationError{Field: "gamma_pdc", Reason: "must be within [-0.02, 0] per °C"}
	}
	if c.Albedo < 0 || c.Albedo > 1 {
		return &pverr.ConfigurationError{Field: "albedo", Reason: "must be within [0, 1]"}
	}
	racking, err := ParseRacking(c.RackingModel)
	if err != nil {
		return err
	}
	c.racking = racking
	return nil
}

// Inverter builds the inverter model from the validated configuration.
func (c *SystemConfig) Inverter() pvmodel.Inverter {
	return pvmodel.NewInverter(c.InverterPowerWatts, c.RatedDCWatts(), c.InverterEfficiency)
}

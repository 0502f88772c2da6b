package irradiance

import (
	"math"
	"testing"

	"github.com/secwest/pv-generation-planning/pkg/solar"
)

func TestErbsDiffuseFraction(t *testing.T) {
	tests := []struct {
		name string
		kt   float64
		want float64
		tol  float64
	}{
		{"fully overcast", 0.0, 1.0, 0},
		{"linear branch upper edge", 0.22, 1.0 - 0.09*0.22, 1e-12},
		{"constant floor at threshold", 0.80, 0.165, 1e-12},
		{"constant floor above threshold", 0.95, 0.165, 1e-12},
		{"mixed range mid", 0.5, 0.9511 - 0.1604*0.5 + 4.388*0.25 - 16.638*0.125 + 12.336*0.0625, 1e-12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ErbsDiffuseFraction(tt.kt)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("ErbsDiffuseFraction(%.2f) = %.6f, want %.6f", tt.kt, got, tt.want)
			}
		})
	}

	// The diffuse fraction is a fraction everywhere.
	for kt := 0.0; kt <= 1.0; kt += 0.01 {
		df := ErbsDiffuseFraction(kt)
		if df < 0 || df > 1 {
			t.Fatalf("diffuse fraction %.4f out of [0,1] at kt=%.2f", df, kt)
		}
	}
}

func TestAngleOfIncidence(t *testing.T) {
	tests := []struct {
		name                          string
		zenith, azimuth, tilt, surfAz float64
		want                          float64
		atLeast                       bool // only require AOI >= want
	}{
		{"sun overhead, 30 degree tilt", 0, 180, 30, 180, 30, false},
		{"sun overhead, flat panel", 0, 180, 0, 180, 0, false},
		{"sun normal to panel", 30, 180, 30, 180, 0, false},
		{"sun behind panel", 60, 0, 30, 180, 90, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AngleOfIncidence(tt.zenith, tt.azimuth, tt.tilt, tt.surfAz)
			if tt.atLeast {
				if got < tt.want {
					t.Errorf("AOI = %.3f, want >= %.3f", got, tt.want)
				}
				return
			}
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("AOI = %.3f, want %.3f", got, tt.want)
			}
		})
	}
}

func TestMartinRuizIAM(t *testing.T) {
	// Near-normal incidence loses almost nothing.
	if iam := MartinRuizIAM(0); math.Abs(iam-1.0) > 0.005 {
		t.Errorf("IAM(0) = %.4f, want ~1", iam)
	}
	// Grazing incidence is cut to zero and the modifier stays in [0,1].
	if iam := MartinRuizIAM(90); iam != 0 {
		t.Errorf("IAM(90) = %.4f, want 0", iam)
	}
	prev := 2.0
	for aoi := 0.0; aoi <= 90; aoi += 5 {
		iam := MartinRuizIAM(aoi)
		if iam < 0 || iam > 1 {
			t.Fatalf("IAM(%.0f) = %.4f out of [0,1]", aoi, iam)
		}
		if iam > prev {
			t.Fatalf("IAM not monotonically decreasing at %.0f degrees", aoi)
		}
		prev = iam
	}
}

func TestDecompose(t *testing.T) {
	// Night: both components exactly zero.
	if dni, dhi := Decompose(0, 120, 172); dni != 0 || dhi != 0 {
		t.Errorf("night Decompose = (%.2f, %.2f), want (0, 0)", dni, dhi)
	}

	// A bright mid-day record splits into plausible components that close
	// back to GHI.
	dni, dhi := Decompose(800, 30, 172)
	if dni <= 0 || dhi <= 0 {
		t.Fatalf("Decompose(800, 30) = (%.2f, %.2f), want positive components", dni, dhi)
	}
	closure := dni*math.Cos(30*math.Pi/180) + dhi
	if math.Abs(closure-800) > 1 {
		t.Errorf("closure dni*cos(z)+dhi = %.2f, want ~800", closure)
	}
}

func TestTransposeSolarNoonScenario(t *testing.T) {
	// Flat-plate, tilt 30, azimuth 180, solar noon with the sun at the
	// zenith: POA should come out within a few percent of GHI.
	pos := solar.PositionRecord{Zenith: 0, Azimuth: 180, Elevation: 90, AirMass: 1}
	rec := Transpose(1000, 900, 100, pos, 30, 180, 0.2, Isotropic{}, 172)

	if rec.POA < 950 || rec.POA > 1100 {
		t.Errorf("POA = %.1f, want within a few percent of GHI=1000", rec.POA)
	}
	if math.Abs(rec.AOI-30) > 0.01 {
		t.Errorf("AOI = %.2f, want 30", rec.AOI)
	}
	if rec.Effective <= 0 || rec.Effective > rec.POA {
		t.Errorf("effective = %.1f, want in (0, POA=%.1f]", rec.Effective, rec.POA)
	}
	if rec.Clamped {
		t.Error("physically ordinary record should not be flagged as clamped")
	}
}

func TestTransposeNightIsZero(t *testing.T) {
	pos := solar.PositionRecord{Zenith: 110, Azimuth: 0, Elevation: -20, AirMass: solar.AirMass(110)}
	rec := Transpose(0, 0, 0, pos, 30, 180, 0.2, Isotropic{}, 1)
	if rec.POA != 0 || rec.Effective != 0 {
		t.Errorf("night transposition = POA %.2f effective %.2f, want zero", rec.POA, rec.Effective)
	}
}

func TestTransposeCeilingClamp(t *testing.T) {
	pos := solar.PositionRecord{Zenith: 10, Azimuth: 180, Elevation: 80, AirMass: 1.02}
	// Absurd input irradiance must be clamped to the ceiling and flagged.
	rec := Transpose(3000, 5000, 800, pos, 30, 180, 0.8, Isotropic{}, 172)
	ceiling := 1.5 * Extraterrestrial(172)
	if rec.POA > ceiling+1e-9 {
		t.Errorf("POA = %.1f exceeds ceiling %.1f", rec.POA, ceiling)
	}
	if !rec.Clamped {
		t.Error("clamped record must be flagged")
	}
}

func TestHayDaviesFallsBackToIsotropic(t *testing.T) {
	pos := solar.PositionRecord{Zenith: 45, Azimuth: 180, Elevation: 45, AirMass: 1.41}
	iso := Isotropic{}.Diffuse(200, 0, 30, 20, pos, 172)
	// With zero DNI there is no circumsolar component to redistribute.
	hd := HayDavies{}.Diffuse(200, 0, 30, 20, pos, 172)
	if hd != iso {
		t.Errorf("HayDavies with zero DNI = %.2f, want isotropic %.2f", hd, iso)
	}

	// With strong beam the circumsolar weighting raises the tilted-plane
	// diffuse above the isotropic estimate for a sun-facing surface.
	hd = HayDavies{}.Diffuse(200, 800, 30, 15, pos, 172)
	if hd <= iso {
		t.Errorf("HayDavies with strong beam = %.2f, want > isotropic %.2f", hd, iso)
	}
}

func TestNewSkyModel(t *testing.T) {
	if m := NewSkyModel("haydavies"); m.Name() != "haydavies" {
		t.Errorf("NewSkyModel(haydavies) = %s", m.Name())
	}
	for _, name := range []string{"", "isotropic", "perez"} {
		if m := NewSkyModel(name); m.Name() != "isotropic" {
			t.Errorf("NewSkyModel(%q) = %s, want isotropic fallback", name, m.Name())
		}
	}
}

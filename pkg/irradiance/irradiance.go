// Package irradiance decomposes global horizontal irradiance into beam and
// diffuse components and transposes them onto a tilted module plane. The
// diffuse fraction follows the Erbs clearness-index correlation; sky
// diffuse uses the isotropic view factor by default with the Hay-Davies
// anisotropic model available as an alternative; beam irradiance is further
// reduced at grazing incidence by a Martin-Ruiz optical modifier.
package irradiance

import (
	"math"

	"github.com/secwest/pv-generation-planning/pkg/solar"
)

const (
	// SolarConstant is the mean extraterrestrial irradiance at 1 AU, W/m².
	SolarConstant = 1361.0

	// poaCeilingFactor bounds plane-of-array irradiance to a generous
	// multiple of extraterrestrial normal irradiance. Anything above is a
	// sensor or model artifact and gets clamped, not trusted.
	poaCeilingFactor = 1.5

	// martinRuizAR is the angular-loss coefficient for AR-coated glass.
	martinRuizAR = 0.16
)

// Record is the per-timestamp product of the transposition stage. All
// irradiance values are W/m². Clamped is set when the POA value had to be
// pulled back inside its physical ceiling.
type Record struct {
	AOI            float64
	Beam           float64
	SkyDiffuse     float64
	GroundDiffuse  float64
	POA            float64
	Effective      float64
	ClearnessIndex float64
	Clamped        bool
}

// Extraterrestrial returns normal-incidence extraterrestrial irradiance for
// a day of year, corrected for the Earth-Sun distance variation.
func Extraterrestrial(dayOfYear int) float64 {
	return SolarConstant * (1 + 0.033*math.Cos(degToRad(360.0*(float64(dayOfYear)-3)/365.0)))
}

// ExtraterrestrialHorizontal projects extraterrestrial irradiance onto the
// horizontal. Zero below the horizon.
func ExtraterrestrialHorizontal(dayOfYear int, zenithDeg float64) float64 {
	cosZen := math.Cos(degToRad(zenithDeg))
	if cosZen <= 0 {
		return 0
	}
	return Extraterrestrial(dayOfYear) * cosZen
}

// ClearnessIndex is GHI over extraterrestrial horizontal irradiance,
// clamped to [0, 1]. Returns 0 when the denominator vanishes (sun at or
// below the horizon) so night records never divide by zero.
func ClearnessIndex(ghi, extraHorizontal float64) float64 {
	if extraHorizontal <= 1e-9 {
		return 0
	}
	kt := ghi / extraHorizontal
	return math.Max(0, math.Min(1, kt))
}

// ErbsDiffuseFraction returns the diffuse fraction of GHI for a clearness
// index kt: linear below 0.22, a fourth-order polynomial through the mixed
// range, and a constant floor of 0.165 from 0.80 up.
func ErbsDiffuseFraction(kt float64) float64 {
	switch {
	case kt <= 0.22:
		return 1.0 - 0.09*kt
	case kt < 0.80:
		return 0.9511 - 0.1604*kt + 4.388*kt*kt - 16.638*kt*kt*kt + 12.336*kt*kt*kt*kt
	default:
		return 0.165
	}
}

// Decompose splits GHI into DNI and DHI using the Erbs correlation. Used
// when the weather source provides only the global component. Night
// records return zero for both.
func Decompose(ghi, zenithDeg float64, dayOfYear int) (dni, dhi float64) {
	if ghi <= 0 || zenithDeg >= 90 {
		return 0, 0
	}
	kt := ClearnessIndex(ghi, ExtraterrestrialHorizontal(dayOfYear, zenithDeg))
	df := ErbsDiffuseFraction(kt)
	dhi = ghi * df
	cosZen := math.Cos(degToRad(zenithDeg))
	if cosZen <= 1e-6 {
		// Effectively at the horizon: treat everything as diffuse rather
		// than dividing by a vanishing cosine.
		return 0, ghi
	}
	dni = (ghi - dhi) / cosZen
	if dni < 0 {
		dni = 0
	}
	return dni, dhi
}

// AngleOfIncidence returns the angle in degrees between the sun ray and
// the normal of a surface with the given tilt and azimuth.
func AngleOfIncidence(zenithDeg, azimuthDeg, tiltDeg, surfaceAzimuthDeg float64) float64 {
	zen := degToRad(zenithDeg)
	tilt := degToRad(tiltDeg)
	cosAOI := math.Cos(zen)*math.Cos(tilt) +
		math.Sin(zen)*math.Sin(tilt)*math.Cos(degToRad(azimuthDeg-surfaceAzimuthDeg))
	cosAOI = math.Max(-1, math.Min(1, cosAOI))
	return radToDeg(math.Acos(cosAOI))
}

// MartinRuizIAM is the incidence-angle optical modifier for the beam
// component, clamped to [0, 1].
func MartinRuizIAM(aoiDeg float64) float64 {
	if aoiDeg >= 90 {
		return 0
	}
	iam := (1 - math.Exp(-math.Cos(degToRad(aoiDeg))/martinRuizAR)) /
		(1 - math.Exp(-1/martinRuizAR))
	return math.Max(0, math.Min(1, iam))
}

// SkyModel converts diffuse horizontal irradiance to tilted-plane sky
// diffuse irradiance.
type SkyModel interface {
	// Diffuse returns the sky-diffuse irradiance on the tilted plane.
	Diffuse(dhi, dni, tiltDeg, aoiDeg float64, pos solar.PositionRecord, dayOfYear int) float64
	Name() string
}

// Isotropic treats the sky dome as uniformly bright: the tilted plane sees
// the fraction (1+cos(tilt))/2 of it.
type Isotropic struct{}

func (Isotropic) Name() string { return "isotropic" }

func (Isotropic) Diffuse(dhi, _, tiltDeg, _ float64, _ solar.PositionRecord, _ int) float64 {
	return dhi * (1 + math.Cos(degToRad(tiltDeg))) / 2
}

// HayDavies adds a circumsolar term weighted by the anisotropy index
// Ai = DNI / E0: the clearer the sky, the more of the diffuse light is
// treated as coming from near the solar disk and projected like beam.
// Falls back to the isotropic view factor when the index degenerates.
type HayDavies struct{}

func (HayDavies) Name() string { return "haydavies" }

func (HayDavies) Diffuse(dhi, dni, tiltDeg, aoiDeg float64, pos solar.PositionRecord, dayOfYear int) float64 {
	iso := Isotropic{}.Diffuse(dhi, dni, tiltDeg, aoiDeg, pos, dayOfYear)
	e0 := Extraterrestrial(dayOfYear)
	if e0 <= 0 || dni <= 0 || pos.Zenith >= 90 {
		return iso
	}
	ai := math.Min(1, dni/e0)
	cosZen := math.Cos(degToRad(pos.Zenith))
	// Guard the beam ratio near the horizon where cos(zenith) vanishes.
	if cosZen < math.Cos(degToRad(87)) {
		cosZen = math.Cos(degToRad(87))
	}
	rb := math.Max(0, math.Cos(degToRad(aoiDeg))) / cosZen
	return dhi * ((1-ai)*(1+math.Cos(degToRad(tiltDeg)))/2 + ai*rb)
}

// Transpose projects one weather record onto the tilted plane. DNI and DHI
// are decomposed from GHI when absent, the beam component is clamped to
// non-negative, and the total POA is clamped to the physical ceiling.
// Effective irradiance carries the beam optical (IAM) correction; soiling
// and other configured derates are applied downstream.
func Transpose(ghi, dni, dhi float64, pos solar.PositionRecord, tiltDeg, surfaceAzimuthDeg, albedo float64, sky SkyModel, dayOfYear int) Record {
	if pos.Zenith >= 90 || ghi <= 0 {
		return Record{AOI: AngleOfIncidence(pos.Zenith, pos.Azimuth, tiltDeg, surfaceAzimuthDeg)}
	}

	if dni <= 0 && dhi <= 0 {
		dni, dhi = Decompose(ghi, pos.Zenith, dayOfYear)
	}

	aoi := AngleOfIncidence(pos.Zenith, pos.Azimuth, tiltDeg, surfaceAzimuthDeg)
	beam := dni * math.Max(0, math.Cos(degToRad(aoi)))
	skyDiffuse := sky.Diffuse(dhi, dni, tiltDeg, aoi, pos, dayOfYear)
	groundDiffuse := ghi * albedo * (1 - math.Cos(degToRad(tiltDeg))) / 2

	rec := Record{
		AOI:            aoi,
		Beam:           beam,
		SkyDiffuse:     skyDiffuse,
		GroundDiffuse:  groundDiffuse,
		ClearnessIndex: ClearnessIndex(ghi, ExtraterrestrialHorizontal(dayOfYear, pos.Zenith)),
	}

	poa := beam + skyDiffuse + groundDiffuse
	if poa < 0 {
		poa = 0
		rec.Clamped = true
	}
	if ceiling := poaCeilingFactor * Extraterrestrial(dayOfYear); poa > ceiling {
		// Scale every component back so the record stays self-consistent.
		scale := ceiling / poa
		rec.Beam *= scale
		rec.SkyDiffuse *= scale
		rec.GroundDiffuse *= scale
		beam = rec.Beam
		poa = ceiling
		rec.Clamped = true
	}
	rec.POA = poa
	rec.Effective = beam*MartinRuizIAM(aoi) + rec.SkyDiffuse + rec.GroundDiffuse
	return rec
}

// NewSkyModel maps a configured model name to its implementation. Unknown
// names fall back to the isotropic default.
func NewSkyModel(name string) SkyModel {
	if name == "haydavies" {
		return HayDavies{}
	}
	return Isotropic{}
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }

// Package solar computes apparent sun positions and relative air mass for
// arbitrary timestamps and locations. The position algorithm follows the
// NOAA solar calculator formulation: mean solar coordinates from Julian
// centuries, equation of center, apparent longitude with the longitude-of-
// ascending-node correction, corrected obliquity, and an atmospheric
// refraction adjustment to the elevation angle.
package solar

import (
	"math"
	"time"

	"github.com/secwest/pv-generation-planning/pkg/pverr"
	"github.com/soniakeys/meeus/v3/julian"
)

// PositionRecord holds the sun position for a single timestamp. Angles are
// in degrees: zenith 0 = sun overhead, azimuth 180 = south, elevation is
// refraction-corrected. AirMass is the Kasten-Young relative air mass,
// saturated for zenith >= 85.
type PositionRecord struct {
	Zenith    float64
	Azimuth   float64
	Elevation float64
	AirMass   float64
}

// airMassSaturationZenith is the zenith angle beyond which the Kasten-Young
// relation is no longer evaluated. The formula diverges toward the horizon,
// so air mass is held at its value here for all larger zenith angles.
const airMassSaturationZenith = 85.0

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }

// fixAngle normalizes an angle to the range [0, 360) degrees.
func fixAngle(angle float64) float64 {
	return math.Mod(math.Mod(angle, 360)+360, 360)
}

// ValidateCoordinates rejects latitudes outside +/-90 and longitudes
// outside +/-180 degrees.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return &pverr.ConfigurationError{Field: "latitude", Reason: "must be within [-90, 90] degrees"}
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return &pverr.ConfigurationError{Field: "longitude", Reason: "must be within [-180, 180] degrees"}
	}
	return nil
}

// Position computes the apparent sun position for a UTC timestamp.
func Position(t time.Time, lat, lon float64) PositionRecord {
	jd := julian.TimeToJD(t.UTC())
	T := (jd - 2451545.0) / 36525.0 // Julian centuries since J2000.0

	// Geometric mean longitude and anomaly of the Sun, degrees
	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032))
	M := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)

	// Equation of center
	C := math.Sin(degToRad(M))*(1.914602-T*(0.004817+T*0.000014)) +
		math.Sin(degToRad(2*M))*(0.019993-T*0.000101) +
		math.Sin(degToRad(3*M))*0.000289
	sunLong := L0 + C

	// Apparent longitude, corrected for nutation and aberration via the
	// longitude of the Moon's ascending node
	omega := 125.04 - 1934.136*T
	lambda := sunLong - 0.00569 - 0.00478*math.Sin(degToRad(omega))

	// Mean obliquity of the ecliptic, with the same omega correction
	eps0 := 23 + (26+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60)/60
	eps := eps0 + 0.00256*math.Cos(degToRad(omega))

	// Declination
	deltaRad := math.Asin(math.Sin(degToRad(eps)) * math.Sin(degToRad(lambda)))

	// Equation of time, minutes
	y := math.Tan(degToRad(eps0)/2) * math.Tan(degToRad(eps0)/2)
	eqTimeMin := radToDeg(y*math.Sin(degToRad(2*L0))-
		2*e*math.Sin(degToRad(M))+
		4*e*y*math.Sin(degToRad(M))*math.Cos(degToRad(2*L0))-
		0.5*y*y*math.Sin(degToRad(4*L0))-
		1.25*e*e*math.Sin(degToRad(2*M))) * 4

	// True solar time and hour angle
	u := t.UTC()
	utcMin := float64(u.Hour()*60+u.Minute()) + float64(u.Second())/60.0
	tst := utcMin + 4*lon + eqTimeMin
	ha := tst/4 - 180
	if ha < -180 {
		ha += 360
	}

	latRad := degToRad(lat)
	haRad := degToRad(ha)
	cosZen := math.Sin(latRad)*math.Sin(deltaRad) + math.Cos(latRad)*math.Cos(deltaRad)*math.Cos(haRad)
	cosZen = math.Max(-1, math.Min(1, cosZen))
	zenRad := math.Acos(cosZen)
	zenDeg := radToDeg(zenRad)

	elDeg := 90 - zenDeg
	elDeg += refractionCorrection(elDeg)
	zenDeg = 90 - elDeg

	// Azimuth measured clockwise from north
	var azDeg float64
	azDen := math.Cos(latRad) * math.Sin(zenRad)
	if math.Abs(azDen) > 1e-9 {
		azCos := (math.Sin(deltaRad) - math.Sin(latRad)*cosZen) / azDen
		azCos = math.Max(-1, math.Min(1, azCos))
		azDeg = radToDeg(math.Acos(azCos))
		if ha > 0 {
			azDeg = 360 - azDeg
		}
	} else {
		// Sun at the zenith (or observer at a pole): azimuth is undefined,
		// report south so downstream incidence terms stay finite.
		azDeg = 180
	}

	return PositionRecord{
		Zenith:    zenDeg,
		Azimuth:   azDeg,
		Elevation: elDeg,
		AirMass:   AirMass(zenDeg),
	}
}

// PositionSeries computes one PositionRecord per timestamp. Coordinates are
// validated once for the whole series.
func PositionSeries(times []time.Time, lat, lon float64) ([]PositionRecord, error) {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	positions := make([]PositionRecord, len(times))
	for i, t := range times {
		positions[i] = Position(t, lat, lon)
	}
	return positions, nil
}

// AirMass returns the Kasten-Young relative air mass for a zenith angle in
// degrees. The relation is only valid below 85 degrees; beyond that the
// value saturates rather than diverging.
func AirMass(zenithDeg float64) float64 {
	z := zenithDeg
	if z < 0 {
		z = 0
	}
	if z >= airMassSaturationZenith {
		z = airMassSaturationZenith
	}
	return 1.0 / (math.Cos(degToRad(z)) + 0.50572*math.Pow(96.07995-z, -1.6364))
}

// refractionCorrection returns the NOAA atmospheric refraction adjustment
// in degrees for a true (geometric) elevation angle in degrees.
func refractionCorrection(elDeg float64) float64 {
	if elDeg > 85 {
		return 0
	}
	var arcsec float64
	switch {
	case elDeg > 5:
		te := math.Tan(degToRad(elDeg))
		arcsec = 58.1/te - 0.07/(te*te*te) + 0.000086/(te*te*te*te*te)
	case elDeg > -0.575:
		arcsec = 1735 + elDeg*(-518.2+elDeg*(103.4+elDeg*(-12.79+elDeg*0.711)))
	default:
		arcsec = -20.772 / math.Tan(degToRad(elDeg))
	}
	return arcsec / 3600.0
}

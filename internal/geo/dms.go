package geo

import (
	"fmt"
	"math"

	"github.com/optics-dcs/miz-import/pkg/core"
)

// Hemisphere suffixes, positive first
var (
	LatHemispheres = [2]string{"N", "S"}
	LngHemispheres = [2]string{"E", "W"}
)

// floorMod is a remainder whose sign follows the divisor. A zero remainder is always +0.
func floorMod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r == 0 {
		return 0
	}
	if (r < 0) != (m < 0) {
		r += m
	}
	return r
}

// FormatComponent renders one coordinate as degrees, minutes and seconds with a hemisphere
// suffix, e.g. 45°07'46"N. Degrees are truncated toward zero; minutes and seconds use a
// floor modulo of the signed value. precision is the number of decimals on the seconds.
func FormatComponent(value float64, hemispheres [2]string, precision int) string {
	hemi := hemispheres[0]
	if value < 0 {
		hemi = hemispheres[1]
	}
	deg := int(value)
	mins := int(floorMod(value*60, 60))
	sec := floorMod(value*3600, 60)
	return fmt.Sprintf("%d°%02d'%0*.*f\"%s", deg, mins, 2, precision, sec, hemi)
}

func secondsPrecision(decimal bool) int {
	if decimal {
		return 2
	}
	return 0
}

// FormatLatitude renders ll.Lat, with two decimals on the seconds when decimal is set.
func FormatLatitude(ll core.LatLng, decimal bool) string {
	return FormatComponent(ll.Lat, LatHemispheres, secondsPrecision(decimal))
}

// FormatLongitude renders ll.Lng, with two decimals on the seconds when decimal is set.
func FormatLongitude(ll core.LatLng, decimal bool) string {
	return FormatComponent(ll.Lng, LngHemispheres, secondsPrecision(decimal))
}

// FormatDMS joins the latitude and longitude renderings with a space.
func FormatDMS(ll core.LatLng, decimal bool) string {
	return FormatLatitude(ll, decimal) + " " + FormatLongitude(ll, decimal)
}

package geo

import (
	"errors"
	"math"

	"github.com/optics-dcs/miz-import/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// GEO POINTS
// Waypoint locations are stored as EPSG:3857 points. SQLite has no spatial awareness, so the
// geometry is kept in WKB form and read back through the Scan implementation of geom.Point.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

var toWebMercator = wgs84.EPSG().Transform(4326, 3857)

// WebMercator converts a WGS84 coordinate to an EPSG:3857 point with elevation z.
func WebMercator(ll core.LatLng, z float64) (geom.Point, error) {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.Abs(ll.Lat) > 90 || math.Abs(ll.Lng) > 180 {
		return geom.NewEmptyPoint(geom.DimXYZ), ErrInvalidCoordinates
	}
	x, y, _ := toWebMercator(ll.Lng, ll.Lat, 0)
	return geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: x, Y: y},
			Z:    z,
			Type: geom.CoordinatesType(geom.DimXYZ),
		},
	), nil
}

// TerrainPointToWebMercator reprojects a terrain point straight to an EPSG:3857 point.
func TerrainPointToWebMercator(p core.Point, proj Projection, z float64) (geom.Point, error) {
	return WebMercator(ToLatLng(p, proj), z)
}

var fromWebMercator = wgs84.EPSG().Transform(3857, 4326)

// LatLngFromWebMercator is the inverse of WebMercator. ok is false for an empty point.
func LatLngFromWebMercator(p geom.Point) (ll core.LatLng, z float64, ok bool) {
	c, ok := p.Coordinates()
	if !ok {
		return core.LatLng{}, 0, false
	}
	lng, lat, _ := fromWebMercator(c.XY.X, c.XY.Y, 0)
	return core.LatLng{Lat: lat, Lng: lng}, c.Z, true
}

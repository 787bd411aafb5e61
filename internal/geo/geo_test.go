package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/optics-dcs/miz-import/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToLatLng_CaucasusOrigin(t *testing.T) {
	ll := ToLatLng(core.Point{}, Terrains["Caucasus"])

	assert.InDelta(t, 45.129497060328994, ll.Lat, 1e-9)
	assert.InDelta(t, 34.265515188456, ll.Lng, 1e-9)
}

func TestFormatDMS_CaucasusOrigin(t *testing.T) {
	ll := ToLatLng(core.Point{}, Terrains["Caucasus"])

	assert.Equal(t, `45°07'46"N 34°15'56"E`, FormatDMS(ll, false))
	assert.Equal(t, `45°07'46.19"N 34°15'55.85"E`, FormatDMS(ll, true))
	assert.Equal(t, `45°07'46"N`, FormatLatitude(ll, false))
	assert.Equal(t, `34°15'55.85"E`, FormatLongitude(ll, true))
}

func TestRoundTrip_AllTerrains(t *testing.T) {
	samples := []core.Point{
		{X: 0, Y: 0},
		{X: -281713, Y: 647369},
		{X: 125000.5, Y: -33000.25},
		{X: -5000, Y: 250000},
	}
	for _, name := range TerrainNames() {
		proj := Terrains[name]
		t.Run(name, func(t *testing.T) {
			for _, p := range samples {
				back := FromLatLng(ToLatLng(p, proj), proj)
				assert.InDelta(t, p.X, back.X, 1e-4, "x of %+v", p)
				assert.InDelta(t, p.Y, back.Y, 1e-4, "y of %+v", p)
			}
		})
	}
}

func TestTerrain(t *testing.T) {
	p, err := Terrain("Syria")
	require.NoError(t, err)
	assert.Equal(t, 39, p.CentralMeridian)

	_, err = Terrain("Kola")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTerrain))
	assert.Contains(t, err.Error(), "Kola")

	assert.Len(t, TerrainNames(), 9)
}

func TestFormatComponent_NegativeValues(t *testing.T) {
	tests := []struct {
		value     float64
		precision int
		want      string
	}{
		{-45.5, 0, `-45°30'00"W`},
		{-0.25, 0, `0°45'00"W`},
		{-34.2655, 0, `-34°44'04"W`},
		{-34.2655, 2, `-34°44'4.20"W`},
		{10.5, 2, `10°30'0.00"E`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatComponent(tt.value, LngHemispheres, tt.precision))
	}
}

func TestFloorMod(t *testing.T) {
	assert.Equal(t, 30.0, floorMod(-2730, 60))
	assert.Equal(t, 15.0, floorMod(75, 60))
	assert.Equal(t, 0.0, floorMod(-120, 60))

	for _, x := range []float64{-120, -2700, -163800, 0} {
		r := floorMod(x, 60)
		assert.Equal(t, 0.0, r)
		assert.False(t, math.Signbit(r), "floorMod(%v, 60) is negative zero", x)
	}
}

func TestFormatComponent_WholeMinutesSouthWest(t *testing.T) {
	assert.Equal(t, `-45°30'00"W`, FormatComponent(-45.5, LngHemispheres, 0))
	assert.Equal(t, `-33°15'0.00"S`, FormatComponent(-33.75, LatHemispheres, 2))
	assert.Equal(t, `-12°00'00"S`, FormatComponent(-12, LatHemispheres, 0))
}

func TestWebMercator(t *testing.T) {
	point, err := WebMercator(core.LatLng{}, 0)
	require.NoError(t, err)
	coords, ok := point.Coordinates()
	require.True(t, ok)
	assert.InDelta(t, 0, coords.X, 1e-6)
	assert.InDelta(t, 0, coords.Y, 1e-6)

	point, err = WebMercator(core.LatLng{Lat: -30, Lng: -45}, 1200)
	require.NoError(t, err)
	coords, ok = point.Coordinates()
	require.True(t, ok)
	assert.Less(t, coords.X, 0.0)
	assert.Less(t, coords.Y, 0.0)
	assert.Equal(t, 1200.0, coords.Z)
}

func TestWebMercator_Invalid(t *testing.T) {
	_, err := WebMercator(core.LatLng{Lat: 95, Lng: 0}, 0)
	assert.True(t, errors.Is(err, ErrInvalidCoordinates))
}

func TestTerrainPointToWebMercator(t *testing.T) {
	point, err := TerrainPointToWebMercator(core.Point{}, Terrains["Caucasus"], 0)
	require.NoError(t, err)
	coords, ok := point.Coordinates()
	require.True(t, ok)
	// 34.27°E, 45.13°N
	assert.InDelta(t, 3814420, coords.X, 50)
	assert.InDelta(t, 5641931, coords.Y, 50)
}

func TestLatLngFromWebMercator(t *testing.T) {
	want := core.LatLng{Lat: 42.1785, Lng: 42.4957}
	point, err := WebMercator(want, 45)
	require.NoError(t, err)

	got, z, ok := LatLngFromWebMercator(point)
	require.True(t, ok)
	assert.InDelta(t, want.Lat, got.Lat, 1e-7)
	assert.InDelta(t, want.Lng, got.Lng, 1e-7)
	assert.Equal(t, 45.0, z)

	_, _, ok = LatLngFromWebMercator(geom.NewEmptyPoint(geom.DimXYZ))
	assert.False(t, ok)
}

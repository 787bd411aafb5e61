package geo

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/optics-dcs/miz-import/pkg/core"
)

// ErrUnknownTerrain is returned when a theatre name has no projection
var ErrUnknownTerrain = errors.New("unknown terrain")

// Projection is the transverse Mercator definition of one terrain.
type Projection = core.Projection

// Terrains maps the theatre names of the mission editor to their projections.
// The set is closed; callers must not add to it.
var Terrains = map[string]Projection{
	"Caucasus":       {CentralMeridian: 33, FalseEasting: -99516.9999999732, FalseNorthing: -4998114.999999984, ScaleFactor: 0.9996},
	"PersianGulf":    {CentralMeridian: 57, FalseEasting: 75755.99999999645, FalseNorthing: -2894933.0000000377, ScaleFactor: 0.9996},
	"Normandy":       {CentralMeridian: -3, FalseEasting: -1995526.00000000204, FalseNorthing: -5484812.999999951, ScaleFactor: 0.9996},
	"Nevada":         {CentralMeridian: -117, FalseEasting: -193996.80999964548, FalseNorthing: -4410028.063999966, ScaleFactor: 0.9996},
	"MarianaIslands": {CentralMeridian: 147, FalseEasting: 238417.99999989968, FalseNorthing: -1491840.000000048, ScaleFactor: 0.9996},
	"Falklands":      {CentralMeridian: -57, FalseEasting: 147639.99999997593, FalseNorthing: 5815417.000000032, ScaleFactor: 0.9996},
	"TheChannel":     {CentralMeridian: 3, FalseEasting: 99376.00000000288, FalseNorthing: -5636889.00000001, ScaleFactor: 0.9996},
	"SinaiMap":       {CentralMeridian: 33, FalseEasting: 169221.9999999585, FalseNorthing: -3325312.9999999693, ScaleFactor: 0.9996},
	"Syria":          {CentralMeridian: 39, FalseEasting: 282801.00000003993, FalseNorthing: -3879865.9999999935, ScaleFactor: 0.9996},
}

// Terrain returns the projection registered for name.
func Terrain(name string) (Projection, error) {
	p, ok := Terrains[name]
	if !ok {
		return Projection{}, fmt.Errorf("%w: %q", ErrUnknownTerrain, name)
	}
	return p, nil
}

// TerrainNames returns the registered theatre names in sorted order.
func TerrainNames() []string {
	names := make([]string, 0, len(Terrains))
	for name := range Terrains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WGS84 ellipsoid and the Krüger series coefficients derived from it, to order n^6.
var (
	semiMajor  = 6378137.0
	flattening = 1 / 298.257223563

	ecc      = math.Sqrt(flattening * (2 - flattening))
	thirdF   = flattening / (2 - flattening)
	rectRad  = rectifyingRadius(thirdF)
	alphaCoe = alphaSeries(thirdF)
	betaCoe  = betaSeries(thirdF)
)

func rectifyingRadius(n float64) float64 {
	n2 := n * n
	return semiMajor / (1 + n) * (1 + n2/4 + n2*n2/64 + n2*n2*n2/256)
}

func alphaSeries(n float64) [6]float64 {
	n2, n3, n4, n5, n6 := n*n, n*n*n, math.Pow(n, 4), math.Pow(n, 5), math.Pow(n, 6)
	return [6]float64{
		n/2 - 2*n2/3 + 5*n3/16 + 41*n4/180 - 127*n5/288 + 7891*n6/37800,
		13*n2/48 - 3*n3/5 + 557*n4/1440 + 281*n5/630 - 1983433*n6/1935360,
		61*n3/240 - 103*n4/140 + 15061*n5/26880 + 167603*n6/181440,
		49561*n4/161280 - 179*n5/168 + 6601661*n6/7257600,
		34729*n5/80640 - 3418889*n6/1995840,
		212378941 * n6 / 319334400,
	}
}

func betaSeries(n float64) [6]float64 {
	n2, n3, n4, n5, n6 := n*n, n*n*n, math.Pow(n, 4), math.Pow(n, 5), math.Pow(n, 6)
	return [6]float64{
		n/2 - 2*n2/3 + 37*n3/96 - n4/360 - 81*n5/512 + 96199*n6/604800,
		n2/48 + n3/15 - 437*n4/1440 + 46*n5/105 - 1118711*n6/3870720,
		17*n3/480 - 37*n4/840 - 209*n5/4480 + 5569*n6/90720,
		4397*n4/161280 - 11*n5/504 - 830251*n6/7257600,
		4583*n5/161280 - 108847*n6/3991680,
		20648693 * n6 / 638668800,
	}
}

// conformal returns tau' (tangent of the conformal latitude) for tau = tan(phi).
func conformal(tau float64) float64 {
	sigma := math.Sinh(ecc * math.Atanh(ecc*tau/math.Sqrt(1+tau*tau)))
	return tau*math.Sqrt(1+sigma*sigma) - sigma*math.Sqrt(1+tau*tau)
}

// ToLatLng projects a terrain point to WGS84 latitude and longitude.
func ToLatLng(p core.Point, proj Projection) core.LatLng {
	k0A := proj.ScaleFactor * rectRad
	xi := (p.X - proj.FalseNorthing) / k0A
	eta := (p.Y - proj.FalseEasting) / k0A

	xiP, etaP := xi, eta
	for j := 1; j <= 6; j++ {
		b := betaCoe[j-1]
		fj := float64(2 * j)
		xiP -= b * math.Sin(fj*xi) * math.Cosh(fj*eta)
		etaP -= b * math.Cos(fj*xi) * math.Sinh(fj*eta)
	}

	sinhEta := math.Sinh(etaP)
	cosXi := math.Cos(xiP)
	tauP := math.Sin(xiP) / math.Sqrt(sinhEta*sinhEta+cosXi*cosXi)

	// Newton iteration for tau from tau'
	e2 := ecc * ecc
	tau := tauP
	for i := 0; i < 20; i++ {
		tauI := conformal(tau)
		dTau := (tauP - tauI) / math.Sqrt(1+tauI*tauI) *
			(1 + (1-e2)*tau*tau) / ((1 - e2) * math.Sqrt(1+tau*tau))
		tau += dTau
		if math.Abs(dTau) < 1e-14 {
			break
		}
	}

	return core.LatLng{
		Lat: degrees(math.Atan(tau)),
		Lng: float64(proj.CentralMeridian) + degrees(math.Atan2(sinhEta, cosXi)),
	}
}

// FromLatLng projects WGS84 latitude and longitude to a terrain point.
func FromLatLng(ll core.LatLng, proj Projection) core.Point {
	phi := radians(ll.Lat)
	lambda := radians(ll.Lng - float64(proj.CentralMeridian))

	tauP := conformal(math.Tan(phi))
	cosL := math.Cos(lambda)
	xiP := math.Atan2(tauP, cosL)
	etaP := math.Asinh(math.Sin(lambda) / math.Sqrt(tauP*tauP+cosL*cosL))

	xi, eta := xiP, etaP
	for j := 1; j <= 6; j++ {
		a := alphaCoe[j-1]
		fj := float64(2 * j)
		xi += a * math.Sin(fj*xiP) * math.Cosh(fj*etaP)
		eta += a * math.Cos(fj*xiP) * math.Sinh(fj*etaP)
	}

	k0A := proj.ScaleFactor * rectRad
	return core.Point{
		X: proj.FalseNorthing + k0A*xi,
		Y: proj.FalseEasting + k0A*eta,
	}
}

func degrees(r float64) float64 { return r * 180 / math.Pi }
func radians(d float64) float64 { return d * math.Pi / 180 }

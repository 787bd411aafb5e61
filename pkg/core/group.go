// pkg/core/group.go
package core

// Group categories
const (
	CategoryPlane      = "plane"
	CategoryHelicopter = "helicopter"
)

// Unit skill values that mark a human-controlled seat
const (
	SkillPlayer = "Player"
	SkillClient = "Client"
)

// Projection is the transverse Mercator definition of one terrain.
// Latitude of origin is 0 and the ellipsoid is WGS84.
type Projection struct {
	CentralMeridian int
	FalseEasting    float64
	FalseNorthing   float64
	ScaleFactor     float64
}

// Point is a planar coordinate in terrain-local meters.
// X is the northing and Y the easting.
type Point struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Name string  `json:"name"`
}

// Waypoint is a route point of an aircraft group.
type Waypoint struct {
	Point
	Altitude   float64 `json:"alt"`
	Type       string  `json:"type"`
	Action     string  `json:"action"`
	ETASeconds float64 `json:"eta"`
}

// LatLng is a geographic coordinate in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AirUnit is one aircraft of a group.
type AirUnit struct {
	Type          string `json:"type"`
	Callsign      string `json:"callsign"`
	UnitID        int    `json:"unitId"`
	Name          string `json:"name"`
	Skill         string `json:"skill"`
	IsPlayer      bool   `json:"player"`
	OnboardNumber string `json:"onboardNum"`
}

// IsHuman reports whether the seat is flown by a player or a multiplayer client.
func (u AirUnit) IsHuman() bool {
	return u.Skill == SkillPlayer || u.Skill == SkillClient
}

// AircraftGroup is a flight of aircraft sharing a route.
// Frequency is nil when the group has no radio frequency set.
type AircraftGroup struct {
	Name      string
	GroupID   int
	Frequency *float64
	Task      string
	Coalition string
	Country   string
	Category  string
	Waypoints []Waypoint
	Units     []AirUnit
}

// HasHuman reports whether any unit of the group is human-controlled.
func (g AircraftGroup) HasHuman() bool {
	for _, u := range g.Units {
		if u.IsHuman() {
			return true
		}
	}
	return false
}

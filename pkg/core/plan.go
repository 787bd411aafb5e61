// pkg/core/plan.go
package core

// PackagePlan is the read model of a package and its materialized flights.
type PackagePlan struct {
	ID      uint            `json:"id"`
	Name    string          `json:"name"`
	Flights []PlannedFlight `json:"flights"`
}

// PlannedFlight is one flight of a package.
type PlannedFlight struct {
	ID             uint              `json:"id"`
	Callsign       string            `json:"callsign"`
	RadioFrequency string            `json:"radioFrequency,omitempty"`
	Aircraft       []PlannedAircraft `json:"aircraft"`
	Waypoints      []PlannedWaypoint `json:"waypoints"`
}

// PlannedAircraft is an airframe assigned to a flight.
type PlannedAircraft struct {
	ID        uint   `json:"id"`
	Airframe  string `json:"airframe"`
	DCSName   string `json:"dcsName,omitempty"`
	Tailcode  string `json:"tailcode,omitempty"`
	Stations  int    `json:"stations"`
	Multicrew bool   `json:"multicrew"`
}

// PlannedWaypoint is a route point of a flight. Position is nil when the stored location is
// empty.
type PlannedWaypoint struct {
	ID        uint    `json:"id"`
	Number    int     `json:"number"`
	Name      string  `json:"name"`
	Type      string  `json:"type,omitempty"`
	Lat       string  `json:"lat"`
	Long      string  `json:"long"`
	Elevation float64 `json:"elevation"`
	TOT       string  `json:"tot"`
	Position  *LatLng `json:"position,omitempty"`
}

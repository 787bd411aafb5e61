// pkg/core/mission.go
package core

import "time"

// Mission is the normalized form of a decoded mission archive.
// It is built once per load and is read-only afterwards.
type Mission struct {
	Filename            string
	Terrain             string
	Projection          Projection
	DescriptionText     string
	DescriptionBlueTask string
	DescriptionRedTask  string
	Sortie              string
	StartTime           time.Time
	BullseyeBlue        Point
	BullseyeRed         Point
	Weather             Weather
	AircraftGroups      []AircraftGroup
	UsedModules         []string
}

// Weather is a flat snapshot of the mission weather block.
type Weather struct {
	Name               string  `json:"name"`
	VisibilityDistance float64 `json:"visibilityDistance"`
	QNH                float64 `json:"qnh"`
	Temperature        float64 `json:"temperature"`
	WindAtGround       Wind    `json:"windAtGround"`
	WindAt2000         Wind    `json:"windAt2000"`
	WindAt8000         Wind    `json:"windAt8000"`
}

// Wind is a speed (m/s) and direction (degrees) pair
type Wind struct {
	Speed     float64 `json:"speed"`
	Direction float64 `json:"direction"`
}

// HumanGroups returns the groups that hold at least one human-controlled unit.
func (m *Mission) HumanGroups() []AircraftGroup {
	var out []AircraftGroup
	for _, g := range m.AircraftGroups {
		if g.HasHuman() {
			out = append(out, g)
		}
	}
	return out
}

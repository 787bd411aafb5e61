package tree

import (
	"fmt"
	"strconv"
	"time"

	"github.com/optics-dcs/miz-import/internal/geo"
	"github.com/optics-dcs/miz-import/pkg/core"
)

// RootID is the id of every tree root.
const RootID = "root"

const (
	isoDateTime = "2006-01-02T15:04:05"
	timeOfDay   = "15:04:05"
)

// Builder turns a mission source into a selection tree.
type Builder[M any] interface {
	Build(M) *Node
}

var (
	_ Builder[*core.Mission] = ArchiveBuilder{}
	_ Builder[LiveMission]   = LiveBuilder{}
)

// ArchiveBuilder projects a decoded archive mission. Every aircraft group becomes a flight
// directly under the root.
type ArchiveBuilder struct{}

// Build returns the root of the archive tree for m.
func (ArchiveBuilder) Build(m *core.Mission) *Node {
	root := NewNode(RootID, m.Sortie, RootAttrs{
		StartTime: m.StartTime.Format(isoDateTime),
		Scheme:    SchemeArchive,
		Terrain:   m.Terrain,
	})

	for _, g := range m.AircraftGroups {
		gid := strconv.Itoa(g.GroupID)
		flight := root.Add(NewNode(string(KindFlight)+gid, g.Name, FlightAttrs{
			Frequency: g.Frequency,
			Task:      g.Task,
		}))

		points := flight.Add(NewNode(string(KindWaypoints)+g.Name, g.Name+" Waypoints", WaypointsAttrs{}))
		for i, wp := range g.Waypoints {
			id := fmt.Sprintf("%s%s%02d", KindWaypoint, gid, i)
			text := fmt.Sprintf("%s - Alt %s", wp.Type, formatNumber(wp.Altitude))
			points.Add(NewNode(id, text, waypointAttrs(wp, m.Projection, m.StartTime, false)))
		}

		units := flight.Add(NewNode(string(KindUnits)+gid, g.Name+" Aircraft", UnitsAttrs{}))
		for _, u := range g.Units {
			text := fmt.Sprintf(" %s - %s - %s", u.Type, u.Name, u.Callsign)
			units.Add(NewNode(string(KindUnit)+strconv.Itoa(u.UnitID), text, unitAttrs(u)))
		}
	}
	return root
}

// waypointAttrs renders a waypoint. decimal puts two decimals on the seconds of lat and lon;
// the archive scheme uses whole seconds and the live scheme decimals.
func waypointAttrs(wp core.Waypoint, proj core.Projection, start time.Time, decimal bool) WaypointAttrs {
	ll := geo.ToLatLng(wp.Point, proj)
	eta := start.Add(time.Duration(wp.ETASeconds * float64(time.Second)))
	return WaypointAttrs{
		Lat:          geo.FormatLatitude(ll, decimal),
		Lon:          geo.FormatLongitude(ll, decimal),
		LatLng:       geo.FormatDMS(ll, false),
		Latitude:     ll.Lat,
		Longitude:    ll.Lng,
		WaypointType: wp.Type,
		Alt:          wp.Altitude,
		ETA:          eta.Format(timeOfDay),
		Action:       wp.Action,
	}
}

func unitAttrs(u core.AirUnit) UnitAttrs {
	return UnitAttrs{
		UnitType:   u.Type,
		Name:       u.Name,
		Callsign:   u.Callsign,
		OnboardNum: u.OnboardNumber,
		Player:     u.IsPlayer,
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

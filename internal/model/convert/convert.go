package convert

import (
	"github.com/optics-dcs/miz-import/internal/geo"
	"github.com/optics-dcs/miz-import/internal/model"
	"github.com/optics-dcs/miz-import/pkg/core"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PackageToCore converts a GORM Package and its loaded flights to a core.PackagePlan.
func PackageToCore(p model.Package, flights []model.Flight) core.PackagePlan {
	plan := core.PackagePlan{
		ID:      p.ID,
		Name:    p.Name,
		Flights: make([]core.PlannedFlight, 0, len(flights)),
	}
	for _, f := range flights {
		plan.Flights = append(plan.Flights, FlightToCore(f))
	}
	return plan
}

// FlightToCore converts a GORM Flight with preloaded aircraft and waypoints.
func FlightToCore(f model.Flight) core.PlannedFlight {
	out := core.PlannedFlight{
		ID:             f.ID,
		Callsign:       f.Callsign,
		RadioFrequency: deref(f.RadioFrequency),
		Aircraft:       make([]core.PlannedAircraft, 0, len(f.Aircraft)),
		Waypoints:      make([]core.PlannedWaypoint, 0, len(f.Waypoints)),
	}
	for _, a := range f.Aircraft {
		out.Aircraft = append(out.Aircraft, AircraftToCore(a))
	}
	for _, w := range f.Waypoints {
		out.Waypoints = append(out.Waypoints, WaypointToCore(w))
	}
	return out
}

// AircraftToCore converts a GORM Aircraft with its preloaded Airframe.
func AircraftToCore(a model.Aircraft) core.PlannedAircraft {
	return core.PlannedAircraft{
		ID:        a.ID,
		Airframe:  a.Airframe.Name,
		DCSName:   deref(a.Airframe.DCSNameID),
		Tailcode:  deref(a.Tailcode),
		Stations:  a.Airframe.Stations,
		Multicrew: a.Airframe.Multicrew,
	}
}

// WaypointToCore converts a GORM Waypoint. The EPSG:3857 location is turned back into WGS84.
func WaypointToCore(w model.Waypoint) core.PlannedWaypoint {
	out := core.PlannedWaypoint{
		ID:        w.ID,
		Number:    w.Number,
		Name:      w.Name,
		Lat:       w.Lat,
		Long:      w.Long,
		Elevation: w.Elevation,
		TOT:       w.TOT,
	}
	if w.WaypointType != nil {
		out.Type = w.WaypointType.Name
	}
	if ll, _, ok := geo.LatLngFromWebMercator(w.Location); ok {
		out.Position = &ll
	}
	return out
}

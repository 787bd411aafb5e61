// Package convert maps projected tree nodes to GORM models and GORM models to core read models
package convert

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/optics-dcs/miz-import/internal/geo"
	"github.com/optics-dcs/miz-import/internal/model"
	"github.com/optics-dcs/miz-import/internal/tree"
	"github.com/optics-dcs/miz-import/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// ErrWrongKind is returned when a node of another kind is passed to a converter.
var ErrWrongKind = errors.New("wrong node kind")

// formatFrequency renders a radio frequency without trailing zeros.
func formatFrequency(f *float64) *string {
	if f == nil {
		return nil
	}
	s := strconv.FormatFloat(*f, 'f', -1, 64)
	return &s
}

// NodeToFlight converts a flight node to an unsaved GORM Flight.
// The callsign is "<node id> - <task>".
func NodeToFlight(n *tree.Node) (model.Flight, error) {
	attrs, ok := n.Attrs.(tree.FlightAttrs)
	if !ok {
		return model.Flight{}, fmt.Errorf("%w: %s is %s, want flight", ErrWrongKind, n.ID, n.Kind)
	}
	return model.Flight{
		Callsign:       n.ID + " - " + attrs.Task,
		RadioFrequency: formatFrequency(attrs.Frequency),
	}, nil
}

// WaypointNumber is the route index encoded in the last two characters of a waypoint id.
func WaypointNumber(id string) (int, error) {
	if len(id) < 2 {
		return 0, fmt.Errorf("waypoint id %q has no number suffix", id)
	}
	n, err := strconv.Atoi(id[len(id)-2:])
	if err != nil {
		return 0, fmt.Errorf("waypoint id %q: %w", id, err)
	}
	return n, nil
}

// NodeToWaypoint converts a waypoint node to an unsaved GORM Waypoint. The waypoint type is
// left for the caller to resolve from the returned mapping string.
func NodeToWaypoint(n *tree.Node) (wp model.Waypoint, typeMapping string, err error) {
	attrs, ok := n.Attrs.(tree.WaypointAttrs)
	if !ok {
		return model.Waypoint{}, "", fmt.Errorf("%w: %s is %s, want waypoint", ErrWrongKind, n.ID, n.Kind)
	}
	number, err := WaypointNumber(n.ID)
	if err != nil {
		return model.Waypoint{}, "", err
	}

	location, err := geo.WebMercator(core.LatLng{Lat: attrs.Latitude, Lng: attrs.Longitude}, attrs.Alt)
	if err != nil {
		location = geom.NewEmptyPoint(geom.DimXYZ)
	}

	return model.Waypoint{
		Number:    number,
		Name:      n.Text,
		Lat:       attrs.Lat,
		Long:      attrs.Lon,
		Elevation: attrs.Alt,
		TOT:       attrs.ETA,
		Location:  location,
	}, attrs.WaypointType, nil
}

// NodeToAircraft converts a unit node to an unsaved GORM Aircraft and the editor type string
// its airframe is looked up by. An empty onboard number leaves the tailcode nil.
func NodeToAircraft(n *tree.Node) (ac model.Aircraft, dcsName string, err error) {
	attrs, ok := n.Attrs.(tree.UnitAttrs)
	if !ok {
		return model.Aircraft{}, "", fmt.Errorf("%w: %s is %s, want unit", ErrWrongKind, n.ID, n.Kind)
	}
	if attrs.OnboardNum != "" {
		tail := attrs.OnboardNum
		ac.Tailcode = &tail
	}
	return ac, attrs.UnitType, nil
}

// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/optics-dcs/miz-import/internal/model"
)

// ErrNotFound is returned when a lookup matches no row. Callers test it with errors.Is.
var ErrNotFound = errors.New("not found")

// Backend is the interface all planning store implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Packages
	CreatePackage(ctx context.Context, p *model.Package) error
	GetPackage(ctx context.Context, id uint) (*model.Package, error)
	FlightsByPackage(ctx context.Context, packageID uint) ([]model.Flight, error)

	// Flights (assigns ID to the passed pointer)
	CreateFlight(ctx context.Context, f *model.Flight) error
	SaveFlight(ctx context.Context, f *model.Flight) error
	AttachFlight(ctx context.Context, flightID, packageID uint) error

	// Flight members. CreateAircraft resolves dcsName through the airframe catalog and
	// writes nothing when it is unmapped.
	CreateAircraft(ctx context.Context, dcsName string, a *model.Aircraft) error
	CreateWaypoint(ctx context.Context, w *model.Waypoint) error

	// Catalog
	AirframeByDCSName(ctx context.Context, dcsName string) (*model.Airframe, error)
	WaypointTypeByDCSName(ctx context.Context, mapping string) (*model.WaypointType, error)
	SeedAirframe(ctx context.Context, a *model.Airframe) error
	SeedWaypointType(ctx context.Context, wt *model.WaypointType) error
}

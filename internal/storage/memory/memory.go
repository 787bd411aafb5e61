// internal/storage/memory/memory.go
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/optics-dcs/miz-import/internal/model"
	"github.com/optics-dcs/miz-import/internal/storage"
	"gorm.io/gorm"
)

// Backend keeps the planning store in process memory. Used for dry runs and tests.
// Stored rows are copies; association fields are filled on read.
type Backend struct {
	packages      map[uint]model.Package
	flights       map[uint]model.Flight
	aircraft      map[uint]model.Aircraft
	waypoints     map[uint]model.Waypoint
	airframes     map[string]model.Airframe // keyed by DCS name
	waypointTypes []model.WaypointType      // insertion order; first mapping match wins

	idCounter uint
	now       func() time.Time
	mu        sync.RWMutex
}

var _ storage.Backend = (*Backend)(nil)

// New creates a new memory backend
func New() *Backend {
	return &Backend{
		packages:  make(map[uint]model.Package),
		flights:   make(map[uint]model.Flight),
		aircraft:  make(map[uint]model.Aircraft),
		waypoints: make(map[uint]model.Waypoint),
		airframes: make(map[string]model.Airframe),
		now:       time.Now,
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// stamp assigns the next id; callers hold the write lock
func (b *Backend) stamp(m *gorm.Model) {
	b.idCounter++
	now := b.now()
	m.ID = b.idCounter
	m.CreatedAt = now
	m.UpdatedAt = now
}

// CreatePackage registers a new package
func (b *Backend) CreatePackage(ctx context.Context, p *model.Package) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stamp(&p.Model)
	row := *p
	row.Flights = nil
	b.packages[p.ID] = row
	return nil
}

// GetPackage looks up a package by id
func (b *Backend) GetPackage(ctx context.Context, id uint) (*model.Package, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	p, ok := b.packages[id]
	if !ok {
		return nil, fmt.Errorf("package %d: %w", id, storage.ErrNotFound)
	}
	return &p, nil
}

// FlightsByPackage returns the package's flights ordered by id, with aircraft and waypoints
func (b *Backend) FlightsByPackage(ctx context.Context, packageID uint) ([]model.Flight, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []model.Flight
	for _, f := range b.flights {
		if f.PackageID == nil || *f.PackageID != packageID {
			continue
		}
		out = append(out, b.loadFlight(f))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (b *Backend) loadFlight(f model.Flight) model.Flight {
	f.Aircraft = nil
	f.Waypoints = nil
	for _, a := range b.aircraft {
		if a.FlightID != nil && *a.FlightID == f.ID {
			a.Airframe = b.airframeByID(a.AirframeID)
			f.Aircraft = append(f.Aircraft, a)
		}
	}
	for _, w := range b.waypoints {
		if w.FlightID != nil && *w.FlightID == f.ID {
			w.WaypointType = b.waypointTypeByID(w.WaypointTypeID)
			f.Waypoints = append(f.Waypoints, w)
		}
	}
	sort.Slice(f.Aircraft, func(i, j int) bool { return f.Aircraft[i].ID < f.Aircraft[j].ID })
	sort.Slice(f.Waypoints, func(i, j int) bool {
		if f.Waypoints[i].Number != f.Waypoints[j].Number {
			return f.Waypoints[i].Number < f.Waypoints[j].Number
		}
		return f.Waypoints[i].ID < f.Waypoints[j].ID
	})
	return f
}

func (b *Backend) airframeByID(id uint) model.Airframe {
	for _, af := range b.airframes {
		if af.ID == id {
			return af
		}
	}
	return model.Airframe{}
}

func (b *Backend) waypointTypeByID(id *uint) *model.WaypointType {
	if id == nil {
		return nil
	}
	for _, wt := range b.waypointTypes {
		if wt.ID == *id {
			return &wt
		}
	}
	return nil
}

// CreateFlight registers a new flight
func (b *Backend) CreateFlight(ctx context.Context, f *model.Flight) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stamp(&f.Model)
	b.flights[f.ID] = stripFlight(*f)
	return nil
}

// SaveFlight updates the flight's own columns, creating it when it has no id
func (b *Backend) SaveFlight(ctx context.Context, f *model.Flight) error {
	if f.ID == 0 {
		return b.CreateFlight(ctx, f)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.flights[f.ID]; !ok {
		return fmt.Errorf("flight %d: %w", f.ID, storage.ErrNotFound)
	}
	f.UpdatedAt = b.now()
	b.flights[f.ID] = stripFlight(*f)
	return nil
}

func stripFlight(f model.Flight) model.Flight {
	f.Aircraft = nil
	f.Waypoints = nil
	return f
}

// AttachFlight assigns the flight to the package
func (b *Backend) AttachFlight(ctx context.Context, flightID, packageID uint) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.packages[packageID]; !ok {
		return fmt.Errorf("package %d: %w", packageID, storage.ErrNotFound)
	}
	f, ok := b.flights[flightID]
	if !ok {
		return fmt.Errorf("flight %d: %w", flightID, storage.ErrNotFound)
	}
	f.PackageID = &packageID
	f.UpdatedAt = b.now()
	b.flights[flightID] = f
	return nil
}

// CreateAircraft resolves the airframe and registers the aircraft
func (b *Backend) CreateAircraft(ctx context.Context, dcsName string, a *model.Aircraft) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	af, ok := b.airframes[dcsName]
	if !ok {
		return fmt.Errorf("airframe %q: %w", dcsName, storage.ErrNotFound)
	}
	b.stamp(&a.Model)
	a.AirframeID = af.ID
	a.Airframe = af
	row := *a
	row.Airframe = model.Airframe{}
	b.aircraft[a.ID] = row
	return nil
}

// CreateWaypoint registers a new waypoint
func (b *Backend) CreateWaypoint(ctx context.Context, w *model.Waypoint) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stamp(&w.Model)
	row := *w
	row.WaypointType = nil
	b.waypoints[w.ID] = row
	return nil
}

// AirframeByDCSName looks up a catalog airframe
func (b *Backend) AirframeByDCSName(ctx context.Context, dcsName string) (*model.Airframe, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	af, ok := b.airframes[dcsName]
	if !ok {
		return nil, fmt.Errorf("airframe %q: %w", dcsName, storage.ErrNotFound)
	}
	return &af, nil
}

// WaypointTypeByDCSName returns the first catalog type with the mapping
func (b *Backend) WaypointTypeByDCSName(ctx context.Context, mapping string) (*model.WaypointType, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, wt := range b.waypointTypes {
		if wt.DCSMapping == mapping {
			return &wt, nil
		}
	}
	return nil, fmt.Errorf("waypoint type %q: %w", mapping, storage.ErrNotFound)
}

// SeedAirframe inserts or updates the catalog airframe keyed by its DCS name
func (b *Backend) SeedAirframe(ctx context.Context, a *model.Airframe) error {
	if a.DCSNameID == nil || *a.DCSNameID == "" {
		return fmt.Errorf("seeding airframe %q: dcs name is required", a.Name)
	}
	if a.Stations == 0 {
		a.Stations = 2
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, ok := b.airframes[*a.DCSNameID]; ok {
		a.Model = existing.Model
		a.UpdatedAt = b.now()
	} else {
		b.stamp(&a.Model)
	}
	row := *a
	row.DCSAirframe = nil
	b.airframes[*a.DCSNameID] = row
	return nil
}

// SeedWaypointType inserts or renames the catalog type keyed by its mapping
func (b *Backend) SeedWaypointType(ctx context.Context, wt *model.WaypointType) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, existing := range b.waypointTypes {
		if existing.DCSMapping == wt.DCSMapping {
			wt.Model = existing.Model
			wt.UpdatedAt = b.now()
			b.waypointTypes[i] = *wt
			return nil
		}
	}
	b.stamp(&wt.Model)
	b.waypointTypes = append(b.waypointTypes, *wt)
	return nil
}

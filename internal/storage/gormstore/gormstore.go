// Package gormstore implements the storage.Backend interface using GORM against Postgres or
// SQLite.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/optics-dcs/miz-import/internal/database"
	"github.com/optics-dcs/miz-import/internal/model"
	"github.com/optics-dcs/miz-import/internal/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

// Backend implements storage.Backend on a gorm connection.
type Backend struct {
	db  *gorm.DB
	log *slog.Logger
}

var _ storage.Backend = (*Backend)(nil)

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Backend{db: deps.DB, log: log}
}

// Init runs schema migration.
func (b *Backend) Init() error {
	if b.db == nil {
		return fmt.Errorf("gormstore: no database connection")
	}
	if err := database.Migrate(b.db); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.log.Debug("Planning schema ready", "dialect", b.db.Dialector.Name())
	return nil
}

// Close is a no-op; the connection belongs to the database manager.
func (b *Backend) Close() error {
	return nil
}

// DB exposes the connection for callers that share it, such as the session store.
func (b *Backend) DB() *gorm.DB {
	return b.db
}

func notFound(err error, what string, key any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %v: %w", what, key, storage.ErrNotFound)
	}
	return fmt.Errorf("loading %s %v: %w", what, key, err)
}

func (b *Backend) CreatePackage(ctx context.Context, p *model.Package) error {
	return b.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (b *Backend) GetPackage(ctx context.Context, id uint) (*model.Package, error) {
	var p model.Package
	if err := b.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, "package", id)
	}
	return &p, nil
}

// FlightsByPackage returns the package's flights with aircraft and waypoints loaded.
// Flights are ordered by id and waypoints by number.
func (b *Backend) FlightsByPackage(ctx context.Context, packageID uint) ([]model.Flight, error) {
	var flights []model.Flight
	err := b.db.WithContext(ctx).
		Preload("Aircraft", func(db *gorm.DB) *gorm.DB { return db.Order("aircraft.id") }).
		Preload("Aircraft.Airframe").
		Preload("Waypoints").
		Preload("Waypoints.WaypointType").
		Where("package_id = ?", packageID).
		Order("id").
		Find(&flights).Error
	if err != nil {
		return nil, fmt.Errorf("loading flights of package %d: %w", packageID, err)
	}
	for i := range flights {
		wps := flights[i].Waypoints
		sort.SliceStable(wps, func(a, c int) bool {
			if wps[a].Number != wps[c].Number {
				return wps[a].Number < wps[c].Number
			}
			return wps[a].ID < wps[c].ID
		})
	}
	return flights, nil
}

func (b *Backend) CreateFlight(ctx context.Context, f *model.Flight) error {
	return b.db.WithContext(ctx).Omit(clause.Associations).Create(f).Error
}

func (b *Backend) SaveFlight(ctx context.Context, f *model.Flight) error {
	if f.ID == 0 {
		return b.CreateFlight(ctx, f)
	}
	return b.db.WithContext(ctx).Omit(clause.Associations).Save(f).Error
}

func (b *Backend) AttachFlight(ctx context.Context, flightID, packageID uint) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Package
		if err := tx.Select("id").First(&p, packageID).Error; err != nil {
			return notFound(err, "package", packageID)
		}
		res := tx.Model(&model.Flight{}).Where("id = ?", flightID).Update("package_id", packageID)
		if res.Error != nil {
			return fmt.Errorf("attaching flight %d: %w", flightID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("flight %d: %w", flightID, storage.ErrNotFound)
		}
		return nil
	})
}

// CreateAircraft looks up the airframe and inserts the aircraft in one transaction.
func (b *Backend) CreateAircraft(ctx context.Context, dcsName string, a *model.Aircraft) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var af model.Airframe
		if err := tx.Where("dcs_name_id = ?", dcsName).First(&af).Error; err != nil {
			return notFound(err, "airframe", fmt.Sprintf("%q", dcsName))
		}
		a.AirframeID = af.ID
		if err := tx.Omit(clause.Associations).Create(a).Error; err != nil {
			return fmt.Errorf("creating aircraft: %w", err)
		}
		a.Airframe = af
		return nil
	})
}

func (b *Backend) CreateWaypoint(ctx context.Context, w *model.Waypoint) error {
	return b.db.WithContext(ctx).Omit(clause.Associations).Create(w).Error
}

func (b *Backend) AirframeByDCSName(ctx context.Context, dcsName string) (*model.Airframe, error) {
	var af model.Airframe
	if err := b.db.WithContext(ctx).Where("dcs_name_id = ?", dcsName).First(&af).Error; err != nil {
		return nil, notFound(err, "airframe", fmt.Sprintf("%q", dcsName))
	}
	return &af, nil
}

func (b *Backend) WaypointTypeByDCSName(ctx context.Context, mapping string) (*model.WaypointType, error) {
	var wt model.WaypointType
	err := b.db.WithContext(ctx).Where("dcs_mapping = ?", mapping).Order("id").First(&wt).Error
	if err != nil {
		return nil, notFound(err, "waypoint type", fmt.Sprintf("%q", mapping))
	}
	return &wt, nil
}

// SeedAirframe inserts or updates the catalog airframe keyed by its DCSNameID.
func (b *Backend) SeedAirframe(ctx context.Context, a *model.Airframe) error {
	if a.DCSNameID == nil || *a.DCSNameID == "" {
		return fmt.Errorf("seeding airframe %q: dcs name is required", a.Name)
	}
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dcs := model.DCSAirframe{DCSName: *a.DCSNameID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&dcs).Error; err != nil {
			return fmt.Errorf("seeding dcs airframe %q: %w", dcs.DCSName, err)
		}

		var existing model.Airframe
		err := tx.Where("dcs_name_id = ?", *a.DCSNameID).First(&existing).Error
		switch {
		case err == nil:
			a.ID = existing.ID
			a.CreatedAt = existing.CreatedAt
			return tx.Model(&existing).Updates(map[string]any{"name": a.Name, "stations": a.Stations, "multicrew": a.Multicrew}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Omit(clause.Associations).Create(a).Error
		default:
			return err
		}
	})
}

// SeedWaypointType inserts or renames the catalog type keyed by its DCSMapping.
func (b *Backend) SeedWaypointType(ctx context.Context, wt *model.WaypointType) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.WaypointType
		err := tx.Where("dcs_mapping = ?", wt.DCSMapping).First(&existing).Error
		switch {
		case err == nil:
			wt.ID = existing.ID
			return tx.Model(&existing).Update("name", wt.Name).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(wt).Error
		default:
			return err
		}
	})
}

// Package importer materializes a selection of projected tree nodes into planned flights of a
// package.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/optics-dcs/miz-import/internal/metrics"
	"github.com/optics-dcs/miz-import/internal/model"
	"github.com/optics-dcs/miz-import/internal/model/convert"
	"github.com/optics-dcs/miz-import/internal/storage"
	"github.com/optics-dcs/miz-import/internal/tree"
)

var (
	// ErrUnknownNode is reported for a selected id that is not in the tree.
	ErrUnknownNode = errors.New("unknown node")
	// ErrNoFlight is reported when a waypoint or unit has no flight at its expected ancestor.
	ErrNoFlight = errors.New("no flight ancestor")
)

// Importer writes tree selections to the planning store.
type Importer struct {
	Store   storage.Backend
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// New creates an Importer. A nil logger falls back to slog.Default.
func New(store storage.Backend, logger *slog.Logger, rec *metrics.Recorder) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{Store: store, Logger: logger, Metrics: rec}
}

// Result is the outcome of AddToPackage.
type Result struct {
	// Flights holds the flights created by the call, in the order they were first touched.
	Flights []*model.Flight
	// Failed maps each selected id that could not be materialized to its cause.
	Failed map[string]error
}

// Err joins the per-id failures in id order, or returns nil.
func (r Result) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	ids := make([]string, 0, len(r.Failed))
	for id := range r.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	errs := make([]error, 0, len(ids))
	for _, id := range ids {
		errs = append(errs, fmt.Errorf("%s: %w", id, r.Failed[id]))
	}
	return errors.Join(errs...)
}

// AddToPackage materializes every selected node of the tree under root and attaches the
// resulting flights to pkg. A failure on one id is recorded in Result.Failed and does not
// stop the others. The returned error is set only when the call could not run at all.
func (im *Importer) AddToPackage(ctx context.Context, root *tree.Node, ids []string, pkg *model.Package) (Result, error) {
	res := Result{Failed: make(map[string]error)}
	if root == nil {
		return res, fmt.Errorf("add to package: %w", tree.ErrInvalidTree)
	}
	if pkg == nil {
		return res, fmt.Errorf("add to package: no package")
	}
	if _, err := im.Store.GetPackage(ctx, pkg.ID); err != nil {
		return res, fmt.Errorf("add to package: %w", err)
	}

	b := im.newBatch()
	seen := make(map[string]bool, len(ids))
	succeeded := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		node := tree.Find(root, id)
		if node == nil {
			im.Logger.Warn("Selected id not in tree", "id", id)
			res.Failed[id] = ErrUnknownNode
			continue
		}
		if err := b.add(ctx, node); err != nil {
			im.Logger.Error("Failed to import node", "id", id, "kind", node.Kind, "error", err)
			res.Failed[id] = err
			continue
		}
		succeeded++
	}

	for _, f := range b.order {
		if err := im.Store.AttachFlight(ctx, f.ID, pkg.ID); err != nil {
			return res, fmt.Errorf("attaching flight %d to package %d: %w", f.ID, pkg.ID, err)
		}
		pid := pkg.ID
		f.PackageID = &pid
		res.Flights = append(res.Flights, f)
	}

	im.Metrics.RecordImport(ctx, succeeded, len(res.Failed))
	im.Logger.Info("Imported selection",
		"package", pkg.ID,
		"selected", len(ids),
		"flights", len(res.Flights),
		"failed", len(res.Failed))
	return res, nil
}

// BuildFlight creates the flight row for a flight node, without children.
func (im *Importer) BuildFlight(ctx context.Context, flightNode *tree.Node) (*model.Flight, error) {
	return im.newBatch().flight(ctx, flightNode)
}

// BuildFullFlight creates the flight for a flight node together with every waypoint and unit
// below it.
func (im *Importer) BuildFullFlight(ctx context.Context, flightNode *tree.Node) (*model.Flight, error) {
	b := im.newBatch()
	if err := b.fullFlight(ctx, flightNode); err != nil {
		return nil, err
	}
	return b.flights[flightNode.ID], nil
}

// CreateAircraft adds the aircraft of a unit node to flight. It returns storage.ErrNotFound
// when the unit type has no catalog airframe; nothing is written in that case.
func (im *Importer) CreateAircraft(ctx context.Context, flight *model.Flight, unitNode *tree.Node) (*model.Aircraft, error) {
	ac, dcsName, err := convert.NodeToAircraft(unitNode)
	if err != nil {
		return nil, err
	}
	ac.FlightID = &flight.ID
	if err := im.Store.CreateAircraft(ctx, dcsName, &ac); err != nil {
		return nil, fmt.Errorf("unit %s: %w", unitNode.ID, err)
	}
	return &ac, nil
}

// CreateWaypoint adds the waypoint of a waypoint node to flight. The waypoint type is the first
// catalog entry mapped to the node's type string, or none.
func (im *Importer) CreateWaypoint(ctx context.Context, flight *model.Flight, waypointNode *tree.Node) (*model.Waypoint, error) {
	wp, mapping, err := convert.NodeToWaypoint(waypointNode)
	if err != nil {
		return nil, err
	}
	wp.FlightID = &flight.ID

	if mapping != "" {
		wt, err := im.Store.WaypointTypeByDCSName(ctx, mapping)
		switch {
		case err == nil:
			wp.WaypointTypeID = &wt.ID
			wp.WaypointType = wt
		case errors.Is(err, storage.ErrNotFound):
			im.Logger.Debug("No waypoint type mapped", "type", mapping, "id", waypointNode.ID)
		default:
			return nil, err
		}
	}

	if err := im.Store.CreateWaypoint(ctx, &wp); err != nil {
		return nil, fmt.Errorf("waypoint %s: %w", waypointNode.ID, err)
	}
	return &wp, nil
}

package importer

import (
	"context"
	"fmt"

	"github.com/optics-dcs/miz-import/internal/model"
	"github.com/optics-dcs/miz-import/internal/model/convert"
	"github.com/optics-dcs/miz-import/internal/tree"
)

// batch is the state of one AddToPackage call. Flights are memoized by flight node id and
// every waypoint or unit node is materialized at most once.
type batch struct {
	im      *Importer
	flights map[string]*model.Flight
	order   []*model.Flight
	done    map[string]bool
}

func (im *Importer) newBatch() *batch {
	return &batch{
		im:      im,
		flights: make(map[string]*model.Flight),
		done:    make(map[string]bool),
	}
}

func (b *batch) add(ctx context.Context, n *tree.Node) error {
	switch n.Kind {
	case tree.KindRoot, tree.KindCoalition, tree.KindCountry:
		flights := n.Descendants(tree.KindFlight)
		if len(flights) == 0 {
			b.im.Logger.Warn("Selection holds no flights", "id", n.ID, "kind", n.Kind)
		}
		for _, f := range flights {
			if err := b.fullFlight(ctx, f); err != nil {
				return err
			}
		}
		return nil

	case tree.KindFlight:
		return b.fullFlight(ctx, n)

	case tree.KindWaypoints, tree.KindUnits:
		flight, err := b.flight(ctx, n.Parent)
		if err != nil {
			return err
		}
		for _, c := range n.Children {
			if err := b.member(ctx, flight, c); err != nil {
				return err
			}
		}
		return nil

	case tree.KindWaypoint, tree.KindUnit:
		flight, err := b.flight(ctx, flightAncestor(n))
		if err != nil {
			return err
		}
		return b.member(ctx, flight, n)
	}
	return fmt.Errorf("%w: unsupported kind %q", tree.ErrInvalidTree, n.Kind)
}

// flightAncestor is the grandparent of an entity in the archive scheme, where entities sit
// under a group node, and the parent in the live scheme.
func flightAncestor(n *tree.Node) *tree.Node {
	if n.Scheme() == tree.SchemeLive {
		return n.Ancestor(1)
	}
	return n.Ancestor(2)
}

// flight returns the flight for a flight node, creating it on first touch and re-saving it on
// later touches.
func (b *batch) flight(ctx context.Context, n *tree.Node) (*model.Flight, error) {
	if n == nil || n.Kind != tree.KindFlight {
		return nil, ErrNoFlight
	}
	if f, ok := b.flights[n.ID]; ok {
		if err := b.im.Store.SaveFlight(ctx, f); err != nil {
			return nil, fmt.Errorf("saving flight %s: %w", n.ID, err)
		}
		return f, nil
	}

	f, err := convert.NodeToFlight(n)
	if err != nil {
		return nil, err
	}
	if err := b.im.Store.CreateFlight(ctx, &f); err != nil {
		return nil, fmt.Errorf("creating flight %s: %w", n.ID, err)
	}
	b.im.Logger.Debug("Created flight", "id", n.ID, "flightID", f.ID, "callsign", f.Callsign)
	b.flights[n.ID] = &f
	b.order = append(b.order, &f)
	return &f, nil
}

func (b *batch) fullFlight(ctx context.Context, n *tree.Node) error {
	flight, err := b.flight(ctx, n)
	if err != nil {
		return err
	}
	for _, m := range n.Descendants(tree.KindWaypoint) {
		if err := b.member(ctx, flight, m); err != nil {
			return err
		}
	}
	for _, m := range n.Descendants(tree.KindUnit) {
		if err := b.member(ctx, flight, m); err != nil {
			return err
		}
	}
	return nil
}

// member materializes a waypoint or unit node once.
func (b *batch) member(ctx context.Context, flight *model.Flight, n *tree.Node) error {
	if b.done[n.ID] {
		return nil
	}
	var err error
	switch n.Kind {
	case tree.KindWaypoint:
		_, err = b.im.CreateWaypoint(ctx, flight, n)
	case tree.KindUnit:
		_, err = b.im.CreateAircraft(ctx, flight, n)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	b.done[n.ID] = true
	return nil
}

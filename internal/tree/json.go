package tree

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidTree is returned when serialized tree text cannot be restored
var ErrInvalidTree = errors.New("invalid tree")

// wireNode is the serialized form of a node: common fields, the kind attributes flattened
// into the same object, and the children array. Attribute field names are unique across
// kinds so the embedded structs never shadow each other.
type wireNode struct {
	ID   string `json:"id"`
	Type Kind   `json:"type"`
	Text string `json:"text,omitempty"`
	*RootAttrs
	*FlightAttrs
	*WaypointAttrs
	*UnitAttrs
	Children []*wireNode `json:"children,omitempty"`
}

// Marshal renders the tree below root as JSON text.
func Marshal(root *Node) ([]byte, error) {
	return json.Marshal(toWire(root))
}

// Unmarshal restores a tree from JSON text produced by Marshal, including parent links.
func Unmarshal(data []byte) (*Node, error) {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTree, err)
	}
	return fromWire(&w, nil)
}

func toWire(n *Node) *wireNode {
	w := &wireNode{ID: n.ID, Type: n.Kind, Text: n.Text}
	switch a := n.Attrs.(type) {
	case RootAttrs:
		w.RootAttrs = &a
	case FlightAttrs:
		w.FlightAttrs = &a
	case WaypointAttrs:
		w.WaypointAttrs = &a
	case UnitAttrs:
		w.UnitAttrs = &a
	}
	for _, c := range n.Children {
		w.Children = append(w.Children, toWire(c))
	}
	return w
}

func fromWire(w *wireNode, parent *Node) (*Node, error) {
	if w.ID == "" {
		return nil, fmt.Errorf("%w: node without id", ErrInvalidTree)
	}
	n := &Node{ID: w.ID, Kind: w.Type, Text: w.Text, Parent: parent}

	switch w.Type {
	case KindRoot:
		n.Attrs = deref(w.RootAttrs)
	case KindCoalition:
		n.Attrs = CoalitionAttrs{}
	case KindCountry:
		n.Attrs = CountryAttrs{}
	case KindFlight:
		n.Attrs = deref(w.FlightAttrs)
	case KindWaypoints:
		n.Attrs = WaypointsAttrs{}
	case KindWaypoint:
		n.Attrs = deref(w.WaypointAttrs)
	case KindUnits:
		n.Attrs = UnitsAttrs{}
	case KindUnit:
		n.Attrs = deref(w.UnitAttrs)
	default:
		return nil, fmt.Errorf("%w: node %q has unknown type %q", ErrInvalidTree, w.ID, w.Type)
	}

	for _, cw := range w.Children {
		c, err := fromWire(cw, n)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, c)
	}
	return n, nil
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

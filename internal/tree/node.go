// Package tree projects a mission into a labeled selection tree with deterministic node ids.
package tree

// Kind discriminates the node variants.
type Kind string

const (
	KindRoot      Kind = "root"
	KindCoalition Kind = "coalition"
	KindCountry   Kind = "country"
	KindFlight    Kind = "flight"
	KindWaypoints Kind = "waypoints"
	KindWaypoint  Kind = "waypoint"
	KindUnits     Kind = "units"
	KindUnit      Kind = "unit"
)

// Scheme names the id scheme a tree was built with. Archive and live ids are not
// interchangeable, so the root records which one produced the tree.
type Scheme string

const (
	SchemeArchive Scheme = "archive"
	SchemeLive    Scheme = "live"
)

// Attrs is the kind-specific payload of a node.
type Attrs interface {
	nodeKind() Kind
}

// RootAttrs are carried by the root node.
type RootAttrs struct {
	StartTime string `json:"start_time,omitempty"`
	Scheme    Scheme `json:"scheme,omitempty"`
	Terrain   string `json:"terrain,omitempty"`
}

// CoalitionAttrs are carried by coalition nodes (live scheme only).
type CoalitionAttrs struct{}

// CountryAttrs are carried by country nodes (live scheme only).
type CountryAttrs struct{}

// FlightAttrs are carried by flight nodes. Frequency is nil when unset.
type FlightAttrs struct {
	Frequency *float64 `json:"frequency,omitempty"`
	Task      string   `json:"task,omitempty"`
}

// WaypointsAttrs are carried by the waypoints group of a flight.
type WaypointsAttrs struct{}

// WaypointAttrs are carried by waypoint nodes.
type WaypointAttrs struct {
	Lat          string  `json:"lat,omitempty"`
	Lon          string  `json:"lon,omitempty"`
	LatLng       string  `json:"latlng,omitempty"`
	Latitude     float64 `json:"latitude,omitempty"`
	Longitude    float64 `json:"longitude,omitempty"`
	WaypointType string  `json:"waypoint_type,omitempty"`
	Alt          float64 `json:"alt,omitempty"`
	ETA          string  `json:"ETA,omitempty"`
	Action       string  `json:"action,omitempty"`
}

// UnitsAttrs are carried by the units group of a flight.
type UnitsAttrs struct{}

// UnitAttrs are carried by unit nodes.
type UnitAttrs struct {
	UnitType   string `json:"unit_type,omitempty"`
	Name       string `json:"name,omitempty"`
	Callsign   string `json:"callsign,omitempty"`
	OnboardNum string `json:"onboard_num,omitempty"`
	Player     bool   `json:"player,omitempty"`
}

func (RootAttrs) nodeKind() Kind      { return KindRoot }
func (CoalitionAttrs) nodeKind() Kind { return KindCoalition }
func (CountryAttrs) nodeKind() Kind   { return KindCountry }
func (FlightAttrs) nodeKind() Kind    { return KindFlight }
func (WaypointsAttrs) nodeKind() Kind { return KindWaypoints }
func (WaypointAttrs) nodeKind() Kind  { return KindWaypoint }
func (UnitsAttrs) nodeKind() Kind     { return KindUnits }
func (UnitAttrs) nodeKind() Kind      { return KindUnit }

// Node is one element of a selection tree. Parent is a back reference for navigation.
type Node struct {
	ID       string
	Kind     Kind
	Text     string
	Parent   *Node
	Children []*Node
	Attrs    Attrs
}

// NewNode creates a detached node whose kind follows its attrs.
func NewNode(id, text string, attrs Attrs) *Node {
	return &Node{ID: id, Kind: attrs.nodeKind(), Text: text, Attrs: attrs}
}

// Add appends child to n and returns the child.
func (n *Node) Add(child *Node) *Node {
	child.Parent = n
	n.Children = append(n.Children, child)
	return child
}

// Walk visits n and its descendants in pre-order. Returning false from fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Descendants returns every node below n of the given kind, in pre-order.
func (n *Node) Descendants(kind Kind) []*Node {
	var out []*Node
	for _, c := range n.Children {
		c.Walk(func(d *Node) bool {
			if d.Kind == kind {
				out = append(out, d)
			}
			return true
		})
	}
	return out
}

// Root returns the topmost ancestor of n.
func (n *Node) Root() *Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// Ancestor returns the node levels steps above n, or nil.
func (n *Node) Ancestor(levels int) *Node {
	cur := n
	for i := 0; i < levels && cur != nil; i++ {
		cur = cur.Parent
	}
	return cur
}

// Path returns the ids from the root down to n.
func (n *Node) Path() []string {
	var ids []string
	for cur := n; cur != nil; cur = cur.Parent {
		ids = append([]string{cur.ID}, ids...)
	}
	return ids
}

// Scheme returns the id scheme recorded on the root of the tree holding n.
func (n *Node) Scheme() Scheme {
	if attrs, ok := n.Root().Attrs.(RootAttrs); ok {
		return attrs.Scheme
	}
	return ""
}

// Find returns the first node with the given id in pre-order, or nil.
func Find(root *Node, id string) *Node {
	var found *Node
	root.Walk(func(n *Node) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

package tree

import (
	"fmt"
	"strconv"
	"time"

	"github.com/optics-dcs/miz-import/pkg/core"
)

// LiveMission is the read-only view of an in-memory mission that the live builder walks.
type LiveMission interface {
	Sortie() string
	StartTime() time.Time
	Terrain() string
	Projection() core.Projection
	Coalitions() []LiveCoalition
}

// LiveCoalition is one side of a live mission.
type LiveCoalition interface {
	Name() string
	Countries() []LiveCountry
}

// LiveCountry is one country of a coalition. Groups returns the groups of a category
// (core.CategoryPlane or core.CategoryHelicopter) in source order.
type LiveCountry interface {
	Name() string
	ShortName() string
	Groups(category string) []core.AircraftGroup
}

// LiveBuilder projects a live mission. Only groups with a human-controlled unit are kept,
// and coalition and country levels appear only above such groups.
type LiveBuilder struct{}

// Build returns the root of the live tree for m.
func (LiveBuilder) Build(m LiveMission) *Node {
	start := m.StartTime()
	proj := m.Projection()
	root := NewNode(RootID, m.Sortie(), RootAttrs{
		StartTime: start.Format(isoDateTime),
		Scheme:    SchemeLive,
		Terrain:   m.Terrain(),
	})

	for _, coalition := range m.Coalitions() {
		var coalitionNode *Node
		for _, country := range coalition.Countries() {
			groups := humanGroups(country)
			if len(groups) == 0 {
				continue
			}
			if coalitionNode == nil {
				coalitionNode = root.Add(NewNode(coalition.Name(), coalition.Name(), CoalitionAttrs{}))
			}
			countryNode := coalitionNode.Add(NewNode(country.ShortName(), country.Name(), CountryAttrs{}))
			for _, g := range groups {
				addLiveFlight(countryNode, g, proj, start)
			}
		}
	}
	return root
}

func humanGroups(country LiveCountry) []core.AircraftGroup {
	var out []core.AircraftGroup
	for _, category := range []string{core.CategoryPlane, core.CategoryHelicopter} {
		for _, g := range country.Groups(category) {
			if g.HasHuman() {
				out = append(out, g)
			}
		}
	}
	return out
}

func addLiveFlight(parent *Node, g core.AircraftGroup, proj core.Projection, start time.Time) {
	flight := parent.Add(NewNode(g.Name, g.Name, FlightAttrs{Frequency: g.Frequency, Task: g.Task}))
	for _, u := range g.Units {
		if !u.IsHuman() {
			continue
		}
		flight.Add(NewNode("airframe-"+strconv.Itoa(u.UnitID), u.Name, unitAttrs(u)))
	}
	for i, wp := range g.Waypoints {
		id := fmt.Sprintf("%s-wp-%02d", g.Name, i)
		flight.Add(NewNode(id, fmt.Sprintf("wp %d - %s", i, wp.Action), waypointAttrs(wp, proj, start, true)))
	}
}

// MissionView adapts a built mission model to LiveMission. Coalitions and countries keep
// the order in which their first group appears.
func MissionView(m *core.Mission) LiveMission {
	v := &missionView{m: m}
	byCoalition := map[string]*viewCoalition{}
	byCountry := map[string]*viewCountry{}
	for _, g := range m.AircraftGroups {
		c, ok := byCoalition[g.Coalition]
		if !ok {
			c = &viewCoalition{name: g.Coalition}
			byCoalition[g.Coalition] = c
			v.coalitions = append(v.coalitions, c)
		}
		key := g.Coalition + "\x00" + g.Country
		ct, ok := byCountry[key]
		if !ok {
			ct = &viewCountry{name: g.Country, groups: map[string][]core.AircraftGroup{}}
			byCountry[key] = ct
			c.countries = append(c.countries, ct)
		}
		ct.groups[g.Category] = append(ct.groups[g.Category], g)
	}
	return v
}

type missionView struct {
	m          *core.Mission
	coalitions []*viewCoalition
}

func (v *missionView) Sortie() string              { return v.m.Sortie }
func (v *missionView) StartTime() time.Time        { return v.m.StartTime }
func (v *missionView) Terrain() string             { return v.m.Terrain }
func (v *missionView) Projection() core.Projection { return v.m.Projection }
func (v *missionView) Coalitions() []LiveCoalition {
	out := make([]LiveCoalition, len(v.coalitions))
	for i, c := range v.coalitions {
		out[i] = c
	}
	return out
}

type viewCoalition struct {
	name      string
	countries []*viewCountry
}

func (c *viewCoalition) Name() string { return c.name }
func (c *viewCoalition) Countries() []LiveCountry {
	out := make([]LiveCountry, len(c.countries))
	for i, ct := range c.countries {
		out[i] = ct
	}
	return out
}

type viewCountry struct {
	name   string
	groups map[string][]core.AircraftGroup
}

func (c *viewCountry) Name() string                                { return c.name }
func (c *viewCountry) ShortName() string                           { return c.name }
func (c *viewCountry) Groups(category string) []core.AircraftGroup { return c.groups[category] }

package parser

import (
	"fmt"
	"strconv"

	"github.com/optics-dcs/miz-import/internal/luatable"
	"github.com/optics-dcs/miz-import/pkg/core"
)

var categories = []string{core.CategoryPlane, core.CategoryHelicopter}

// aircraftGroups collects plane and helicopter groups of every coalition and country.
// Only a missing coalition table is an error; absent categories contribute nothing.
func (p *Parser) aircraftGroups(mission *luatable.Table) ([]core.AircraftGroup, error) {
	coalitions, ok := mission.Table("coalition")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, "coalition")
	}

	var groups []core.AircraftGroup
	for _, category := range categories {
		forEachCountry(coalitions, func(coalition string, country *luatable.Table) {
			groups = append(groups, countryGroups(coalition, country, category)...)
		})
	}
	p.logger.Debug("Collected aircraft groups", "count", len(groups))
	return groups, nil
}

// forEachCountry visits the countries of every coalition, coalitions in source order and
// countries by ascending key.
func forEachCountry(coalitions *luatable.Table, fn func(coalition string, country *luatable.Table)) {
	for _, e := range coalitions.Entries() {
		name, _ := e.Key.(string)
		coalition, ok := e.Value.(*luatable.Table)
		if !ok {
			continue
		}
		countries, ok := coalition.Table("country")
		if !ok {
			continue
		}
		for _, v := range countries.SortedValues() {
			if country, ok := v.(*luatable.Table); ok {
				fn(name, country)
			}
		}
	}
}

// countryGroups builds the groups of one category of a country, by ascending key.
func countryGroups(coalition string, country *luatable.Table, category string) []core.AircraftGroup {
	list, ok := tableAt(country, category, "group")
	if !ok {
		return nil
	}
	countryName, _ := country.String("name")

	var groups []core.AircraftGroup
	for _, v := range list.SortedValues() {
		tbl, ok := v.(*luatable.Table)
		if !ok {
			continue
		}
		g := newAircraftGroup(tbl)
		g.Coalition = coalition
		g.Country = countryName
		g.Category = category
		groups = append(groups, g)
	}
	return groups
}

func newAircraftGroup(tbl *luatable.Table) core.AircraftGroup {
	g := core.AircraftGroup{Name: "Unknown"}
	if name, ok := tbl.String("name"); ok {
		g.Name = name
	}
	g.GroupID, _ = tbl.Int("groupId")
	if f, ok := tbl.Number("frequency"); ok {
		g.Frequency = &f
	}
	g.Task, _ = tbl.String("task")

	if points, ok := tableAt(tbl, "route", "points"); ok {
		for _, v := range points.SortedValues() {
			if pt, ok := v.(*luatable.Table); ok {
				g.Waypoints = append(g.Waypoints, newWaypoint(pt))
			}
		}
	}
	if units, ok := tbl.Table("units"); ok {
		for _, v := range units.SortedValues() {
			if u, ok := v.(*luatable.Table); ok {
				g.Units = append(g.Units, newAirUnit(u))
			}
		}
	}
	return g
}

func newWaypoint(tbl *luatable.Table) core.Waypoint {
	var wp core.Waypoint
	wp.ETASeconds, _ = tbl.Number("ETA")
	wp.Altitude, _ = tbl.Number("alt")
	wp.X, _ = tbl.Number("x")
	wp.Y, _ = tbl.Number("y")
	wp.Type, _ = tbl.String("type")
	wp.Name, _ = tbl.String("name")
	wp.Action, _ = tbl.String("action")
	return wp
}

func newAirUnit(tbl *luatable.Table) core.AirUnit {
	var u core.AirUnit
	u.Type, _ = tbl.String("type")
	u.Callsign = callsign(tbl)
	u.UnitID, _ = tbl.Int("unitId")
	u.Name, _ = tbl.String("name")
	u.Skill, _ = tbl.String("skill")
	u.IsPlayer = u.Skill == core.SkillPlayer
	u.OnboardNumber = text(tbl, "onboard_num")
	return u
}

// text reads a string field that the editor may also write as a bare number.
func text(tbl *luatable.Table, key string) string {
	v, _ := tbl.Get(key)
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

// callsign reads the unit callsign, a table with a name for western aircraft and a plain
// number for eastern ones.
func callsign(unit *luatable.Table) string {
	v, _ := unit.Get("callsign")
	if c, ok := v.(*luatable.Table); ok {
		name, _ := c.String("name")
		return name
	}
	return text(unit, "callsign")
}

func tableAt(t *luatable.Table, keys ...any) (*luatable.Table, bool) {
	v, ok := t.Path(keys...)
	if !ok {
		return nil, false
	}
	sub, ok := v.(*luatable.Table)
	return sub, ok
}

package parser

import (
	"time"

	"github.com/optics-dcs/miz-import/internal/geo"
	"github.com/optics-dcs/miz-import/internal/luatable"
	"github.com/optics-dcs/miz-import/internal/tree"
	"github.com/optics-dcs/miz-import/pkg/core"
)

// LiveView exposes a decoded mission document to the live tree builder without building a
// mission model first. Groups are read from the document on every call.
type LiveView struct {
	sortie     string
	startTime  time.Time
	terrain    string
	projection core.Projection
	coalitions *luatable.Table
}

var _ tree.LiveMission = (*LiveView)(nil)

// LiveView resolves the header fields of doc and returns a view over its coalitions.
func (p *Parser) LiveView(doc *Document) (*LiveView, error) {
	theatre, _ := doc.Mission.String("theatre")
	proj, err := geo.Terrain(theatre)
	if err != nil {
		return nil, err
	}

	v := &LiveView{
		terrain:    theatre,
		projection: proj,
		startTime:  p.startTime(doc.Mission),
	}
	if key, ok := doc.Mission.String(keySortie); ok {
		v.sortie, _ = doc.Dictionary.String(key)
	}
	if v.coalitions, _ = doc.Mission.Table("coalition"); v.coalitions == nil {
		p.logger.Warn("Mission has no coalition table", "file", doc.Filename)
	}
	return v, nil
}

func (v *LiveView) Sortie() string              { return v.sortie }
func (v *LiveView) StartTime() time.Time        { return v.startTime }
func (v *LiveView) Terrain() string             { return v.terrain }
func (v *LiveView) Projection() core.Projection { return v.projection }

// Coalitions returns the coalitions in source order.
func (v *LiveView) Coalitions() []tree.LiveCoalition {
	if v.coalitions == nil {
		return nil
	}
	var out []tree.LiveCoalition
	for _, e := range v.coalitions.Entries() {
		name, _ := e.Key.(string)
		if tbl, ok := e.Value.(*luatable.Table); ok {
			out = append(out, liveCoalition{name: name, tbl: tbl})
		}
	}
	return out
}

type liveCoalition struct {
	name string
	tbl  *luatable.Table
}

func (c liveCoalition) Name() string { return c.name }

func (c liveCoalition) Countries() []tree.LiveCountry {
	countries, ok := c.tbl.Table("country")
	if !ok {
		return nil
	}
	var out []tree.LiveCountry
	for _, v := range countries.SortedValues() {
		if tbl, ok := v.(*luatable.Table); ok {
			out = append(out, liveCountry{coalition: c.name, tbl: tbl})
		}
	}
	return out
}

type liveCountry struct {
	coalition string
	tbl       *luatable.Table
}

func (c liveCountry) Name() string {
	name, _ := c.tbl.String("name")
	return name
}

// ShortName is the country name; mission documents carry no separate short form.
func (c liveCountry) ShortName() string { return c.Name() }

func (c liveCountry) Groups(category string) []core.AircraftGroup {
	return countryGroups(c.coalition, c.tbl, category)
}

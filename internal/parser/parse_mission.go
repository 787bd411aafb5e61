package parser

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/optics-dcs/miz-import/internal/geo"
	"github.com/optics-dcs/miz-import/internal/luatable"
	"github.com/optics-dcs/miz-import/pkg/core"
)

// Mission keys that hold dictionary keys instead of text
const (
	keyDescriptionText     = "descriptionText"
	keyDescriptionBlueTask = "descriptionBlueTask"
	keyDescriptionRedTask  = "descriptionRedTask"
	keySortie              = "sortie"
)

// defaultStartSeconds is used when the mission has no start_time (12:00:00).
const defaultStartSeconds = 43200

var defaultDate = struct{ year, month, day int }{2011, 6, 1}

// Build converts decoded mission and dictionary tables into a mission model.
// Returns the model. NO file access, NO DB operations.
func (p *Parser) Build(mission, dictionary *luatable.Table, filename string) (*core.Mission, error) {
	m := &core.Mission{Filename: filename}

	// terrain
	theatre, _ := mission.String("theatre")
	proj, err := geo.Terrain(theatre)
	if err != nil {
		return nil, err
	}
	m.Terrain = theatre
	m.Projection = proj

	// Helper to resolve a dictionary-indirected mission string
	localized := func(field string) (string, error) {
		key, ok := mission.String(field)
		if !ok {
			return "", fmt.Errorf("%w: mission field %q is missing or not a string", ErrMissingLocalization, field)
		}
		text, ok := dictionary.String(key)
		if !ok {
			return "", fmt.Errorf("%w: no dictionary entry %q for mission field %q", ErrMissingLocalization, key, field)
		}
		return text, nil
	}

	if m.DescriptionText, err = localized(keyDescriptionText); err != nil {
		return nil, err
	}
	if m.DescriptionBlueTask, err = localized(keyDescriptionBlueTask); err != nil {
		return nil, err
	}
	if m.DescriptionRedTask, err = localized(keyDescriptionRedTask); err != nil {
		return nil, err
	}
	if m.Sortie, err = localized(keySortie); err != nil {
		return nil, err
	}

	m.StartTime = p.startTime(mission)
	m.UsedModules = usedModules(mission)
	m.BullseyeBlue = p.bullseye(mission, "blue", "Blue Bullseye")
	m.BullseyeRed = p.bullseye(mission, "red", "Red Bullseye")
	m.Weather = p.weather(mission)

	groups, err := p.aircraftGroups(mission)
	if err != nil {
		return nil, err
	}
	m.AircraftGroups = groups

	p.logger.Debug("Built mission model",
		"sortie", m.Sortie,
		"terrain", m.Terrain,
		"startTime", m.StartTime,
		"groups", len(m.AircraftGroups))

	return m, nil
}

// startTime combines the date record with the start_time seconds since midnight, in UTC.
func (p *Parser) startTime(mission *luatable.Table) time.Time {
	year, month, day := defaultDate.year, defaultDate.month, defaultDate.day
	if date, ok := mission.Table("date"); ok {
		if v, ok := date.Int("Year"); ok {
			year = v
		}
		if v, ok := date.Int("Month"); ok {
			month = v
		}
		if v, ok := date.Int("Day"); ok {
			day = v
		}
	}

	seconds, ok := mission.Number("start_time")
	if !ok {
		p.logger.Warn("Mission has no start_time, using default", "seconds", defaultStartSeconds)
		seconds = defaultStartSeconds
	}
	hour := int(math.Floor(seconds / 3600))
	minute := int(math.Floor(seconds/60)) - hour*60
	second := int(math.Floor(math.Mod(seconds, 60)))

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
}

func (p *Parser) bullseye(mission *luatable.Table, coalition, name string) core.Point {
	pt := core.Point{Name: name}
	x, okX := numberAt(mission, "coalition", coalition, "bullseye", "x")
	y, okY := numberAt(mission, "coalition", coalition, "bullseye", "y")
	if !okX || !okY {
		p.logger.Warn("Mission has no bullseye", "coalition", coalition)
	}
	pt.X, pt.Y = x, y
	return pt
}

func (p *Parser) weather(mission *luatable.Table) core.Weather {
	var w core.Weather
	tbl, ok := mission.Table("weather")
	if !ok {
		p.logger.Warn("Mission has no weather block")
		return w
	}

	w.Name, _ = tbl.String("name")
	w.VisibilityDistance, _ = numberAt(tbl, "visibility", "distance")
	w.QNH, _ = tbl.Number("qnh")
	w.Temperature, _ = numberAt(tbl, "season", "temperature")

	wind := func(level string) core.Wind {
		speed, _ := numberAt(tbl, "wind", level, "speed")
		dir, _ := numberAt(tbl, "wind", level, "dir")
		return core.Wind{Speed: speed, Direction: dir}
	}
	w.WindAtGround = wind("atGround")
	w.WindAt2000 = wind("at2000")
	w.WindAt8000 = wind("at8000")
	return w
}

// usedModules returns the sorted names of the modules flagged true in usedModules.
func usedModules(mission *luatable.Table) []string {
	tbl, ok := mission.Table("usedModules")
	if !ok {
		return nil
	}
	var names []string
	for _, e := range tbl.Entries() {
		name, isString := e.Key.(string)
		if enabled, _ := e.Value.(bool); isString && enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func numberAt(t *luatable.Table, keys ...any) (float64, bool) {
	v, ok := t.Path(keys...)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

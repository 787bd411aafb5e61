package importer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/optics-dcs/miz-import/internal/geo"
	"github.com/optics-dcs/miz-import/internal/model"
	"github.com/optics-dcs/miz-import/internal/storage"
	"github.com/optics-dcs/miz-import/internal/storage/memory"
	"github.com/optics-dcs/miz-import/internal/tree"
	"github.com/optics-dcs/miz-import/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freq(f float64) *float64 { return &f }
func strPtr(s string) *string { return &s }

func importMission() *core.Mission {
	return &core.Mission{
		Filename:   "strike.miz",
		Terrain:    "Caucasus",
		Projection: geo.Terrains["Caucasus"],
		Sortie:     "Strike",
		StartTime:  time.Date(2011, 6, 1, 12, 0, 0, 0, time.UTC),
		AircraftGroups: []core.AircraftGroup{
			{
				Name:      "Hog Flight",
				GroupID:   1,
				Frequency: freq(251),
				Task:      "CAS",
				Coalition: "blue",
				Country:   "USA",
				Category:  core.CategoryPlane,
				Waypoints: []core.Waypoint{
					{Altitude: 20, Type: "TakeOffParking", Action: "From Parking Area"},
					{Point: core.Point{X: -1000, Y: 5000}, Altitude: 1828.8, Type: "Turning Point", Action: "Turning Point", ETASeconds: 600},
				},
				Units: []core.AirUnit{
					{Type: "A-10C_2", Callsign: "Enfield11", UnitID: 11, Name: "Hog-1", Skill: core.SkillClient, OnboardNumber: "010"},
					{Type: "A-10C_2", Callsign: "Enfield12", UnitID: 12, Name: "Hog-2", Skill: core.SkillClient, OnboardNumber: "011"},
					{Type: "A-10C_2", Callsign: "Enfield13", UnitID: 13, Name: "Hog-3", Skill: core.SkillClient},
				},
			},
			{
				Name:      "Viper Flight",
				GroupID:   2,
				Task:      "CAP",
				Coalition: "blue",
				Country:   "USA",
				Category:  core.CategoryPlane,
				Units: []core.AirUnit{
					{Type: "F-16C_50", Callsign: "Uzi11", UnitID: 21, Name: "Viper-1", Skill: core.SkillPlayer, IsPlayer: true},
				},
			},
		},
	}
}

type fixture struct {
	store *memory.Backend
	im    *Importer
	pkg   *model.Package
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.SeedAirframe(ctx, &model.Airframe{Name: "A-10C II", Stations: 1, DCSNameID: strPtr("A-10C_2")}))
	require.NoError(t, store.SeedWaypointType(ctx, &model.WaypointType{Name: "Steerpoint", DCSMapping: "Turning Point"}))

	pkg := &model.Package{Name: "Strike"}
	require.NoError(t, store.CreatePackage(ctx, pkg))
	return fixture{store: store, im: New(store, nil, nil), pkg: pkg}
}

func (f fixture) flights(t *testing.T) []model.Flight {
	t.Helper()
	flights, err := f.store.FlightsByPackage(context.Background(), f.pkg.ID)
	require.NoError(t, err)
	return flights
}

func TestAddToPackage_UnitsGroup(t *testing.T) {
	f := newFixture(t)
	root := tree.ArchiveBuilder{}.Build(importMission())

	res, err := f.im.AddToPackage(context.Background(), root, []string{"units1"}, f.pkg)
	require.NoError(t, err)
	require.NoError(t, res.Err())
	require.Len(t, res.Flights, 1)
	require.NotNil(t, res.Flights[0].PackageID)
	assert.Equal(t, f.pkg.ID, *res.Flights[0].PackageID)

	flights := f.flights(t)
	require.Len(t, flights, 1)
	fl := flights[0]
	assert.Equal(t, "flight1 - CAS", fl.Callsign)
	require.NotNil(t, fl.RadioFrequency)
	assert.Equal(t, "251", *fl.RadioFrequency)
	require.Len(t, fl.Aircraft, 3)
	assert.Equal(t, "010", *fl.Aircraft[0].Tailcode)
	assert.Nil(t, fl.Aircraft[2].Tailcode)
	assert.Equal(t, "A-10C II", fl.Aircraft[0].Airframe.Name)
	assert.Empty(t, fl.Waypoints)
}

func TestAddToPackage_WaypointsGroup(t *testing.T) {
	f := newFixture(t)
	root := tree.ArchiveBuilder{}.Build(importMission())
	require.NotNil(t, tree.Find(root, "waypointsHog Flight"))

	res, err := f.im.AddToPackage(context.Background(), root, []string{"waypointsHog Flight"}, f.pkg)
	require.NoError(t, err)
	require.NoError(t, res.Err())
	require.Len(t, res.Flights, 1)

	flights := f.flights(t)
	require.Len(t, flights, 1)
	fl := flights[0]
	assert.Equal(t, "flight1 - CAS", fl.Callsign)
	assert.Empty(t, fl.Aircraft)
	require.Len(t, fl.Waypoints, 2)
	assert.Equal(t, 0, fl.Waypoints[0].Number)
	assert.Equal(t, 1, fl.Waypoints[1].Number)
	assert.Equal(t, `45°07'46"N`, fl.Waypoints[0].Lat)
}

func TestAddToPackage_FullFlight(t *testing.T) {
	f := newFixture(t)
	root := tree.ArchiveBuilder{}.Build(importMission())

	res, err := f.im.AddToPackage(context.Background(), root, []string{"flight1"}, f.pkg)
	require.NoError(t, err)
	require.NoError(t, res.Err())

	flights := f.flights(t)
	require.Len(t, flights, 1)
	require.Len(t, flights[0].Waypoints, 2)
	require.Len(t, flights[0].Aircraft, 3)

	wp0, wp1 := flights[0].Waypoints[0], flights[0].Waypoints[1]
	assert.Equal(t, 0, wp0.Number)
	assert.Nil(t, wp0.WaypointType)
	assert.Equal(t, 1, wp1.Number)
	assert.Equal(t, "Turning Point - Alt 1828.8", wp1.Name)
	assert.Equal(t, "12:10:00", wp1.TOT)
	require.NotNil(t, wp1.WaypointType)
	assert.Equal(t, "Steerpoint", wp1.WaypointType.Name)
	_, ok := wp1.Location.Coordinates()
	assert.True(t, ok)
}

func TestAddToPackage_UnmappedAirframe(t *testing.T) {
	f := newFixture(t)
	root := tree.ArchiveBuilder{}.Build(importMission())

	res, err := f.im.AddToPackage(context.Background(), root, []string{"unit21"}, f.pkg)
	require.NoError(t, err)
	require.Contains(t, res.Failed, "unit21")
	assert.True(t, errors.Is(res.Failed["unit21"], storage.ErrNotFound))
	assert.True(t, errors.Is(res.Err(), storage.ErrNotFound))

	flights := f.flights(t)
	require.Len(t, flights, 1)
	assert.Equal(t, "flight2 - CAP", flights[0].Callsign)
	assert.Empty(t, flights[0].Aircraft)
}

func TestAddToPackage_UnknownIDSkipped(t *testing.T) {
	f := newFixture(t)
	root := tree.ArchiveBuilder{}.Build(importMission())

	res, err := f.im.AddToPackage(context.Background(), root, []string{"nope", "unit11"}, f.pkg)
	require.NoError(t, err)
	assert.True(t, errors.Is(res.Failed["nope"], ErrUnknownNode))
	require.Len(t, res.Flights, 1)

	flights := f.flights(t)
	require.Len(t, flights, 1)
	assert.Len(t, flights[0].Aircraft, 1)
}

func TestAddToPackage_MemoizesFlights(t *testing.T) {
	f := newFixture(t)
	root := tree.ArchiveBuilder{}.Build(importMission())

	ids := []string{"unit11", "waypoint101", "unit12", "unit11", "flight1"}
	res, err := f.im.AddToPackage(context.Background(), root, ids, f.pkg)
	require.NoError(t, err)
	require.NoError(t, res.Err())
	require.Len(t, res.Flights, 1)

	flights := f.flights(t)
	require.Len(t, flights, 1)
	assert.Len(t, flights[0].Aircraft, 3)
	assert.Len(t, flights[0].Waypoints, 2)
}

func TestAddToPackage_LiveScheme(t *testing.T) {
	f := newFixture(t)
	m := importMission()
	root := tree.LiveBuilder{}.Build(tree.MissionView(m))

	res, err := f.im.AddToPackage(context.Background(), root, []string{"airframe-11", "Hog Flight-wp-01"}, f.pkg)
	require.NoError(t, err)
	require.NoError(t, res.Err())

	flights := f.flights(t)
	require.Len(t, flights, 1)
	assert.Equal(t, "Hog Flight - CAS", flights[0].Callsign)
	assert.Len(t, flights[0].Aircraft, 1)
	require.Len(t, flights[0].Waypoints, 1)
	assert.Equal(t, 1, flights[0].Waypoints[0].Number)
}

func TestAddToPackage_Coalition(t *testing.T) {
	f := newFixture(t)
	root := tree.LiveBuilder{}.Build(tree.MissionView(importMission()))

	res, err := f.im.AddToPackage(context.Background(), root, []string{"blue"}, f.pkg)
	require.NoError(t, err)

	// both flights are created; the unmapped F-16 fails its id
	assert.Len(t, res.Flights, 2)
	assert.True(t, errors.Is(res.Failed["blue"], storage.ErrNotFound))
	assert.Len(t, f.flights(t), 2)
}

func TestAddToPackage_MissingPackage(t *testing.T) {
	f := newFixture(t)
	root := tree.ArchiveBuilder{}.Build(importMission())

	_, err := f.im.AddToPackage(context.Background(), root, []string{"flight1"}, &model.Package{Name: "ghost"})
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	_, err = f.im.AddToPackage(context.Background(), nil, []string{"flight1"}, f.pkg)
	assert.True(t, errors.Is(err, tree.ErrInvalidTree))
}

func TestAddToPackage_CanceledContext(t *testing.T) {
	f := newFixture(t)
	root := tree.ArchiveBuilder{}.Build(importMission())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.im.AddToPackage(ctx, root, []string{"flight1"}, f.pkg)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBuildHelpers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := tree.ArchiveBuilder{}.Build(importMission())

	shell, err := f.im.BuildFlight(ctx, tree.Find(root, "flight2"))
	require.NoError(t, err)
	assert.Equal(t, "flight2 - CAP", shell.Callsign)
	assert.Nil(t, shell.PackageID)

	full, err := f.im.BuildFullFlight(ctx, tree.Find(root, "flight1"))
	require.NoError(t, err)
	assert.NotZero(t, full.ID)

	_, err = f.im.BuildFlight(ctx, tree.Find(root, "units1"))
	assert.True(t, errors.Is(err, ErrNoFlight))

	ac, err := f.im.CreateAircraft(ctx, full, tree.Find(root, "unit13"))
	require.NoError(t, err)
	assert.Equal(t, full.ID, *ac.FlightID)

	_, err = f.im.CreateAircraft(ctx, full, tree.Find(root, "unit21"))
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	wp, err := f.im.CreateWaypoint(ctx, full, tree.Find(root, "waypoint101"))
	require.NoError(t, err)
	require.NotNil(t, wp.WaypointType)
	assert.Equal(t, "Steerpoint", wp.WaypointType.Name)
}

func TestResultErr(t *testing.T) {
	assert.NoError(t, Result{}.Err())

	res := Result{Failed: map[string]error{"b": ErrUnknownNode, "a": storage.ErrNotFound}}
	err := res.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownNode))
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	assert.Equal(t, "a: not found\nb: unknown node", err.Error())
}

package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Package{},
	&Flight{},
	&DCSAirframe{},
	&Airframe{},
	&Aircraft{},
	&WaypointType{},
	&Waypoint{},
	&ImportSession{},
}

////////////////////////
// PLANNING MODELS
////////////////////////

// Package groups the flights of one planned operation
type Package struct {
	gorm.Model
	Name    string   `json:"name" gorm:"size:200"`
	Flights []Flight `json:"flights" gorm:"foreignkey:PackageID"`
}

func (*Package) TableName() string {
	return "packages"
}

// Flight is a planned flight. PackageID stays nil until the flight is attached.
type Flight struct {
	gorm.Model
	PackageID      *uint      `json:"packageId" gorm:"index:idx_flight_package_id"`
	Callsign       string     `json:"callsign" gorm:"size:200"`
	RadioFrequency *string    `json:"radioFrequency" gorm:"size:20"`
	Aircraft       []Aircraft `json:"aircraft" gorm:"foreignkey:FlightID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Waypoints      []Waypoint `json:"waypoints" gorm:"foreignkey:FlightID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (*Flight) TableName() string {
	return "flights"
}

////////////////////////
// AIRFRAME CATALOG
////////////////////////

// DCSAirframe is the unit type string the mission editor writes for an airframe
type DCSAirframe struct {
	DCSName string `json:"dcsName" gorm:"primaryKey;size:50"`
}

func (*DCSAirframe) TableName() string {
	return "dcs_airframes"
}

// Airframe is a catalog aircraft type, optionally linked to its editor type string
type Airframe struct {
	gorm.Model
	Name        string       `json:"name" gorm:"size:200"`
	Stations    int          `json:"stations" gorm:"default:2"`
	Multicrew   bool         `json:"multicrew" gorm:"default:false"`
	DCSNameID   *string      `json:"dcsName" gorm:"size:50;uniqueIndex:idx_airframe_dcs_name"`
	DCSAirframe *DCSAirframe `json:"-" gorm:"foreignkey:DCSNameID;references:DCSName;constraint:OnDelete:SET NULL;"`
}

func (*Airframe) TableName() string {
	return "airframes"
}

// Aircraft is one airframe assigned to a flight
type Aircraft struct {
	gorm.Model
	AirframeID uint     `json:"airframeId" gorm:"index:idx_aircraft_airframe_id"`
	Airframe   Airframe `json:"-" gorm:"foreignkey:AirframeID"`
	FlightID   *uint    `json:"flightId" gorm:"index:idx_aircraft_flight_id"`
	Tailcode   *string  `json:"tailcode" gorm:"size:20"`
}

func (*Aircraft) TableName() string {
	return "aircraft"
}

////////////////////////
// NAVIGATION
////////////////////////

// WaypointType is a catalog waypoint kind, matched by its editor type string
type WaypointType struct {
	gorm.Model
	Name       string `json:"name" gorm:"size:100"`
	DCSMapping string `json:"dcsMapping" gorm:"size:100;index:idx_waypoint_type_dcs_mapping"`
}

func (*WaypointType) TableName() string {
	return "waypoint_types"
}

// Waypoint is a route point of a flight
type Waypoint struct {
	gorm.Model
	FlightID       *uint         `json:"flightId" gorm:"index:idx_waypoint_flight_id"`
	Number         int           `json:"number"`
	Name           string        `json:"name" gorm:"size:200"`
	Lat            string        `json:"lat" gorm:"size:30"`
	Long           string        `json:"long" gorm:"size:30"`
	Elevation      float64       `json:"elevation"`
	TOT            string        `json:"tot" gorm:"size:10"`
	WaypointTypeID *uint         `json:"waypointTypeId"`
	WaypointType   *WaypointType `json:"-" gorm:"foreignkey:WaypointTypeID"`
	Location       geom.Point    `json:"location"` // EPSG:3857
}

func (*Waypoint) TableName() string {
	return "waypoints"
}

////////////////////////
// IMPORT SESSIONS
////////////////////////

// ImportSession is a projected tree kept between staging an archive and committing a
// selection from it
type ImportSession struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time      `json:"createdAt" gorm:"index:idx_import_session_created_at"`
	PackageID uint           `json:"packageId"`
	Filename  string         `json:"filename" gorm:"size:255"`
	Scheme    string         `json:"scheme" gorm:"size:16"`
	Tree      datatypes.JSON `json:"tree"`
}

func (*ImportSession) TableName() string {
	return "import_sessions"
}

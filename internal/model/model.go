// Package model defines the database schema for archived playback
// sessions.
package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DatabaseModels is a list of all the structs exported here which
// represent tables in the database schema.
var DatabaseModels = []interface{}{
	&Session{},
	&Vessel{},
	&VesselState{},
	&SessionPerformance{},
}

// Session is one playback run over one dataset.
type Session struct {
	gorm.Model
	Name        string    `json:"name" gorm:"size:200"`
	DatasetPath string    `json:"datasetPath" gorm:"size:255"`
	StartTime   time.Time `json:"startTime" gorm:"type:timestamptz;index:idx_session_start"`
	WindowStart time.Time `json:"windowStart" gorm:"type:timestamptz"`
	WindowEnd   time.Time `json:"windowEnd" gorm:"type:timestamptz"`
	BaseRatio   float64   `json:"baseRatio" gorm:"default:60"`
	Speed       float64   `json:"speed" gorm:"default:1"`

	Vessels      []Vessel
	VesselStates []VesselState
}

func (*Session) TableName() string {
	return "sessions"
}

// Vessel is one tracked entity within a session. The session ID and
// the dataset's vessel ID form the composite key.
type Vessel struct {
	SessionID uint           `json:"sessionId" gorm:"primaryKey;autoIncrement:false"`
	VesselID  string         `json:"vesselId" gorm:"primaryKey;autoIncrement:false;size:64"`
	Session   Session        `gorm:"foreignkey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"deletedAt" gorm:"index"`

	Category   string         `json:"category" gorm:"size:32"`                    // Normalized origin code, empty when absent
	SizeClass  string         `json:"sizeClass" gorm:"size:16;default:small"`     // small, medium, large
	Color      string         `json:"color" gorm:"size:16"`                       // Palette color assigned at load
	PointCount int            `json:"pointCount"`                                 // Usable points after filtering
	FirstSeen  time.Time      `json:"firstSeen" gorm:"type:timestamptz"`          // Activity window start
	LastSeen   time.Time      `json:"lastSeen" gorm:"type:timestamptz"`           // Activity window end
	Attributes datatypes.JSON `json:"attributes" gorm:"type:jsonb;default:'{}'"`  // Static attributes from the first point
}

func (*Vessel) TableName() string {
	return "vessels"
}

// VesselState is one rendered marker at one virtual instant.
type VesselState struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time      time.Time `json:"time" gorm:"type:timestamptz;index:idx_vesselstate_time"` // Virtual time of the snapshot
	SessionID uint      `json:"sessionId" gorm:"index:idx_vesselstate_session_id"`
	Session   Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	VesselID  string    `json:"vesselId" gorm:"index:idx_vesselstate_vessel_id;size:64"`

	Position    geom.Point `json:"position"` // WGS84 lon/lat
	Heading     float32    `json:"heading"`  // Geometry-derived, degrees [0,360)
	Opacity     float32    `json:"opacity" gorm:"default:1"`
	Destination string     `json:"destination" gorm:"size:128"`
}

func (*VesselState) TableName() string {
	return "vessel_states"
}

// SessionPerformance is the model for playback performance metrics.
type SessionPerformance struct {
	Time               time.Time `json:"time" gorm:"type:timestamptz;index:idx_sessionperformance_time"`
	SessionID          uint      `json:"sessionId" gorm:"index:idx_sessionperformance_session_id"`
	Session            Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	ActiveMarkers      uint16    `json:"activeMarkers"`
	LastTickDurationMs float32   `json:"lastTickDurationMs"`
}

func (*SessionPerformance) TableName() string {
	return "session_performances"
}

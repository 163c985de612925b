// Package loader reads vessel trajectory datasets from JSON files and
// maps them onto the core entity model. Malformed records degrade to
// counters, never to a failed load.
package loader

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/vesselwatch/replay/pkg/core"
)

// Stats summarizes tolerated input defects.
type Stats struct {
	Vessels             int
	Points              int
	MalformedTimestamps int
	MissingCoordinates  int
}

// Dataset is the decoded input before conversion to core entities.
type Dataset struct {
	Range   *rangeRecord            `json:"range,omitempty"`
	Vessels map[string]vesselRecord `json:"vessels"`
}

type rangeRecord struct {
	Start flexTime `json:"start"`
	End   flexTime `json:"end"`
}

type vesselRecord struct {
	Points []pointRecord `json:"points"`
}

type pointRecord struct {
	Lon *float64 `json:"lon"`
	Lat *float64 `json:"lat"`
	TS  flexTime `json:"ts"`

	Origin      string   `json:"origin,omitempty"`
	ShipType    *float64 `json:"shipType,omitempty"`
	Speed       *float64 `json:"speed,omitempty"`
	TurnRate    *float64 `json:"turnRate,omitempty"`
	Draught     *float64 `json:"draught,omitempty"`
	Heading     *float64 `json:"heading,omitempty"`
	Course      *float64 `json:"course,omitempty"`
	NavStatus   string   `json:"navStatus,omitempty"`
	Destination string   `json:"destination,omitempty"`
	ETA         flexTime `json:"eta,omitempty"`
	LegStart    flexTime `json:"legStart,omitempty"`
	Arrival     flexTime `json:"arrival,omitempty"`
}

// timeLayouts are tried in order for textual timestamps. AIS feeds in
// the wild mix RFC3339 with space-separated variants.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// flexTime accepts a timestamp as an RFC3339-ish string or as Unix
// milliseconds. Unparseable values decode as absent but are flagged so
// the loader can count them.
type flexTime struct {
	value     *time.Time
	malformed bool
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return nil
	}

	if s[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			f.malformed = true
			return nil
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, text); err == nil {
				t = t.UTC()
				f.value = &t
				return nil
			}
		}
		f.malformed = true
		return nil
	}

	var millis int64
	if err := json.Unmarshal(data, &millis); err != nil {
		f.malformed = true
		return nil
	}
	t := time.UnixMilli(millis).UTC()
	f.value = &t
	return nil
}

// Loader converts dataset files into core entities.
type Loader struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadFile reads a dataset from path. Files ending in .gz are
// transparently decompressed. Only an unreadable file or invalid JSON
// is an error; defective records inside a valid document are counted
// and skipped.
func (l *Loader) LoadFile(path string) ([]core.Entity, *core.TimeRange, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, Stats{}, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, Stats{}, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	return l.Load(r)
}

// Load decodes a dataset document from r.
func (l *Loader) Load(r io.Reader) ([]core.Entity, *core.TimeRange, Stats, error) {
	var doc Dataset
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, Stats{}, fmt.Errorf("decoding dataset: %w", err)
	}

	var stats Stats
	entities := make([]core.Entity, 0, len(doc.Vessels))
	for id, v := range doc.Vessels {
		e := core.Entity{ID: id, Points: make([]core.TrajectoryPoint, 0, len(v.Points))}
		for _, p := range v.Points {
			if p.TS.malformed {
				stats.MalformedTimestamps++
			}
			if p.Lon == nil || p.Lat == nil {
				stats.MissingCoordinates++
				continue
			}
			e.Points = append(e.Points, core.TrajectoryPoint{
				Lon:  *p.Lon,
				Lat:  *p.Lat,
				Time: p.TS.value,
				Attrs: core.PointAttributes{
					Origin:      p.Origin,
					ShipType:    p.ShipType,
					SpeedKnots:  p.Speed,
					TurnRate:    p.TurnRate,
					Draught:     p.Draught,
					Heading:     p.Heading,
					Course:      p.Course,
					NavStatus:   p.NavStatus,
					Destination: p.Destination,
					ETA:         p.ETA.value,
					LegStart:    p.LegStart.value,
					Arrival:     p.Arrival.value,
				},
			})
			stats.Points++
		}
		entities = append(entities, e)
		stats.Vessels++
	}

	var explicit *core.TimeRange
	if doc.Range != nil && doc.Range.Start.value != nil && doc.Range.End.value != nil {
		explicit = &core.TimeRange{Start: *doc.Range.Start.value, End: *doc.Range.End.value}
	}

	if stats.MalformedTimestamps > 0 || stats.MissingCoordinates > 0 {
		l.logger.Warn("dataset contains defective records",
			"malformed_timestamps", stats.MalformedTimestamps,
			"missing_coordinates", stats.MissingCoordinates,
		)
	}
	return entities, explicit, stats, nil
}

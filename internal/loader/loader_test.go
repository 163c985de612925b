package loader

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleDoc = `{
  "range": {"start": "2024-01-01T08:00:00Z", "end": "2024-01-01T20:00:00Z"},
  "vessels": {
    "219000001": {
      "points": [
        {"lon": 12.6, "lat": 55.7, "ts": "2024-01-01T10:00:00Z", "origin": "DK", "shipType": 70500, "speed": 12.3, "destination": "AARHUS"},
        {"lon": 12.7, "lat": 55.8, "ts": 1704103200000},
        {"lon": 12.8, "lat": 55.9, "ts": "2024-01-01 11:00:00"}
      ]
    },
    "265000002": {
      "points": [
        {"lon": 11.9, "lat": 57.7}
      ]
    }
  }
}`

func TestLoad_ParsesVesselsAndRange(t *testing.T) {
	l := New(nil)
	entities, explicit, stats, err := l.Load(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stats.Vessels != 2 || stats.Points != 4 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if explicit == nil {
		t.Fatal("expected explicit range")
	}
	if !explicit.Start.Equal(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected range start: %v", explicit.Start)
	}

	var dk []int
	for _, e := range entities {
		if e.ID != "219000001" {
			continue
		}
		for i, p := range e.Points {
			if p.Timestamped() {
				dk = append(dk, i)
			}
		}
		if e.Points[0].Attrs.Origin != "DK" || e.Points[0].Attrs.Destination != "AARHUS" {
			t.Errorf("attributes not carried: %+v", e.Points[0].Attrs)
		}
		if e.Points[0].Attrs.ShipType == nil || *e.Points[0].Attrs.ShipType != 70500 {
			t.Error("ship type not carried")
		}
	}
	if len(dk) != 3 {
		t.Errorf("expected all three timestamp layouts to parse, got %d", len(dk))
	}
}

func TestLoad_UnixMillisTimestamp(t *testing.T) {
	l := New(nil)
	entities, _, _, err := l.Load(strings.NewReader(
		`{"vessels":{"a":{"points":[{"lon":1,"lat":2,"ts":1704103200000}]}}}`,
	))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p := entities[0].Points[0]
	if p.Time == nil {
		t.Fatal("expected parsed timestamp")
	}
	want := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	if !p.Time.Equal(want) {
		t.Errorf("timestamp = %v, want %v", p.Time, want)
	}
}

func TestLoad_CountsDefects(t *testing.T) {
	l := New(nil)
	doc := `{
	  "vessels": {
	    "a": {"points": [
	      {"lon": 1, "lat": 2, "ts": "not a time"},
	      {"lat": 2, "ts": "2024-01-01T10:00:00Z"},
	      {"lon": 1, "ts": "2024-01-01T10:00:00Z"}
	    ]}
	  }
	}`
	entities, _, stats, err := l.Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stats.MalformedTimestamps != 1 {
		t.Errorf("malformed timestamps = %d, want 1", stats.MalformedTimestamps)
	}
	if stats.MissingCoordinates != 2 {
		t.Errorf("missing coordinates = %d, want 2", stats.MissingCoordinates)
	}
	if len(entities) != 1 || len(entities[0].Points) != 1 {
		t.Fatalf("expected the malformed-timestamp point kept as untimestamped, got %+v", entities)
	}
	if entities[0].Points[0].Timestamped() {
		t.Error("unparseable timestamp must load as absent")
	}
}

func TestLoad_MissingRangeEndpointIgnored(t *testing.T) {
	l := New(nil)
	_, explicit, _, err := l.Load(strings.NewReader(
		`{"range":{"start":"2024-01-01T08:00:00Z"},"vessels":{}}`,
	))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if explicit != nil {
		t.Error("half-open explicit range must be ignored")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	l := New(nil)
	if _, _, _, err := l.Load(strings.NewReader("{")); err == nil {
		t.Fatal("expected error for truncated document")
	}
}

func TestLoadFile_Gzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(sampleDoc)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "dataset.json.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	l := New(nil)
	entities, _, _, err := l.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(entities) != 2 {
		t.Errorf("expected 2 vessels from gzip dataset, got %d", len(entities))
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	l := New(nil)
	if _, _, _, err := l.LoadFile("/nonexistent/dataset.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

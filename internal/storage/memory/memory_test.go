package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/vesselwatch/replay/internal/config"
	"github.com/vesselwatch/replay/pkg/core"
)

func sessionInfo() *core.SessionInfo {
	return &core.SessionInfo{
		Name:        "morning run",
		DatasetPath: "data/morning.json",
		StartedAt:   time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		Window: core.TimeRange{
			Start: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
		},
		Speed:     1,
		BaseRatio: 60,
	}
}

func snapshot(at time.Time, ids ...string) *core.Snapshot {
	markers := make(map[string]core.Marker, len(ids))
	for _, id := range ids {
		markers[id] = core.Marker{ID: id, Lon: 1, Lat: 2, Opacity: 1}
	}
	return &core.Snapshot{Time: at, Markers: markers}
}

func TestRecordSnapshot_RequiresSession(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	if err := b.RecordSnapshot(snapshot(time.Now())); err == nil {
		t.Fatal("expected error when no session started")
	}
}

func TestEndSession_WritesGzipExport(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true})

	info := sessionInfo()
	if err := b.StartSession(info); err != nil {
		t.Fatal(err)
	}
	at := info.Window.Start
	for i := 0; i < 3; i++ {
		if err := b.RecordSnapshot(snapshot(at.Add(time.Duration(i)*time.Minute), "b", "a")); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.EndSession(); err != nil {
		t.Fatal(err)
	}

	path := b.ExportedFilePath()
	if !strings.HasSuffix(path, ".json.gz") {
		t.Fatalf("expected gzip export, got %q", path)
	}
	if !strings.Contains(path, "morning_run_20240101_090000") {
		t.Errorf("filename should carry session name and start time: %q", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	var export ReplayExport
	if err := json.NewDecoder(gz).Decode(&export); err != nil {
		t.Fatal(err)
	}

	if export.SessionName != "morning run" || len(export.Frames) != 3 {
		t.Errorf("unexpected export: %+v", export)
	}
	if export.Frames[0].Markers[0].ID != "a" || export.Frames[0].Markers[1].ID != "b" {
		t.Error("markers must be sorted by id")
	}
}

func TestEndSession_PlainJSON(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: false})

	if err := b.StartSession(sessionInfo()); err != nil {
		t.Fatal(err)
	}
	if err := b.EndSession(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(b.ExportedFilePath(), ".json") {
		t.Errorf("expected plain json export, got %q", b.ExportedFilePath())
	}
}

func TestStartSession_DiscardsPreviousFrames(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	if err := b.StartSession(sessionInfo()); err != nil {
		t.Fatal(err)
	}
	if err := b.RecordSnapshot(snapshot(time.Now(), "a")); err != nil {
		t.Fatal(err)
	}
	if err := b.StartSession(sessionInfo()); err != nil {
		t.Fatal(err)
	}
	if b.FrameCount() != 0 {
		t.Errorf("expected frames discarded on new session, got %d", b.FrameCount())
	}
}

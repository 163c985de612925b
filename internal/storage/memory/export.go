// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vesselwatch/replay/pkg/core"
)

// ReplayExport is the root JSON structure
type ReplayExport struct {
	SessionName string      `json:"sessionName"`
	DatasetPath string      `json:"datasetPath"`
	StartedAt   time.Time   `json:"startedAt"`
	WindowStart time.Time   `json:"windowStart"`
	WindowEnd   time.Time   `json:"windowEnd"`
	Speed       float64     `json:"speed"`
	BaseRatio   float64     `json:"baseRatio"`
	Frames      []FrameJSON `json:"frames"`
}

// FrameJSON is one tick's snapshot. Markers are sorted by id so
// exports of the same session diff cleanly.
type FrameJSON struct {
	Time    time.Time     `json:"time"`
	Markers []core.Marker `json:"markers"`
}

// exportJSON writes the session data to a (optionally gzipped) JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	// Build filename
	sessionName := strings.ReplaceAll(b.session.Name, " ", "_")
	sessionName = strings.ReplaceAll(sessionName, ":", "_")
	timestamp := b.session.StartedAt.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", sessionName, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", sessionName, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := b.writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := b.writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() ReplayExport {
	export := ReplayExport{
		SessionName: b.session.Name,
		DatasetPath: b.session.DatasetPath,
		StartedAt:   b.session.StartedAt,
		WindowStart: b.session.Window.Start,
		WindowEnd:   b.session.Window.End,
		Speed:       b.session.Speed,
		BaseRatio:   b.session.BaseRatio,
		Frames:      make([]FrameJSON, 0, len(b.frames)),
	}

	for _, snap := range b.frames {
		frame := FrameJSON{
			Time:    snap.Time,
			Markers: make([]core.Marker, 0, len(snap.Markers)),
		}
		for _, id := range sortedIDs(snap.Markers) {
			frame.Markers = append(frame.Markers, snap.Markers[id])
		}
		export.Frames = append(export.Frames, frame)
	}
	return export
}

func sortedIDs(markers map[string]core.Marker) []string {
	ids := make([]string, 0, len(markers))
	for id := range markers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (b *Backend) writeJSON(path string, data ReplayExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func (b *Backend) writeGzipJSON(path string, data ReplayExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}

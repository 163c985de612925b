package geo

import (
	"math"
	"testing"

	"github.com/vesselwatch/replay/pkg/core"
)

func TestInitialBearing_IdenticalPoints(t *testing.T) {
	if got := InitialBearing(0, 0, 0, 0); got != 0 {
		t.Errorf("expected 0 for identical points, got %f", got)
	}
}

func TestInitialBearing_DueNorth(t *testing.T) {
	if got := InitialBearing(0, 0, 1, 0); got != 0 {
		t.Errorf("expected 0 (due north), got %f", got)
	}
}

func TestInitialBearing_DueEast(t *testing.T) {
	got := InitialBearing(0, 0, 0, 1)
	if math.Abs(got-90) > 1e-9 {
		t.Errorf("expected 90 (due east), got %f", got)
	}
}

func TestInitialBearing_DueSouth(t *testing.T) {
	got := InitialBearing(1, 0, 0, 0)
	if math.Abs(got-180) > 1e-9 {
		t.Errorf("expected 180 (due south), got %f", got)
	}
}

func TestInitialBearing_DueWest(t *testing.T) {
	got := InitialBearing(0, 1, 0, 0)
	if math.Abs(got-270) > 1e-9 {
		t.Errorf("expected 270 (due west), got %f", got)
	}
}

func TestInitialBearing_Range(t *testing.T) {
	coords := []struct{ lat, lon float64 }{
		{55.7, 12.6}, {-33.9, 151.2}, {35.6, 139.7}, {40.7, -74.0}, {0, 179.9}, {0, -179.9},
	}
	for _, a := range coords {
		for _, b := range coords {
			got := InitialBearing(a.lat, a.lon, b.lat, b.lon)
			if got < 0 || got >= 360 {
				t.Errorf("bearing (%v -> %v) = %f out of [0,360)", a, b, got)
			}
		}
	}
}

func TestFiniteCoord(t *testing.T) {
	tests := []struct {
		lon, lat float64
		want     bool
	}{
		{12.6, 55.7, true},
		{0, 0, true},
		{math.NaN(), 55.7, false},
		{12.6, math.NaN(), false},
		{math.Inf(1), 55.7, false},
		{12.6, math.Inf(-1), false},
	}
	for _, tt := range tests {
		if got := FiniteCoord(tt.lon, tt.lat); got != tt.want {
			t.Errorf("FiniteCoord(%f, %f) = %v, want %v", tt.lon, tt.lat, got, tt.want)
		}
	}
}

func TestBoundsTracker_TwoPoints(t *testing.T) {
	bt := NewBoundsTracker()
	bt.Add(10, 20)
	bt.Add(30, 40)

	b, ok := bt.Bounds()
	if !ok {
		t.Fatal("expected bounds")
	}
	if b.MinLon != 10 || b.MaxLon != 30 || b.MinLat != 20 || b.MaxLat != 40 {
		t.Errorf("unexpected envelope: %+v", b)
	}
	if b.CenterLon != 20 || b.CenterLat != 30 {
		t.Errorf("unexpected center: %+v", b)
	}
	if b.LonSpan != 20 || b.LatSpan != 20 {
		t.Errorf("unexpected span: %+v", b)
	}
}

func TestBoundsTracker_IgnoresNonFinite(t *testing.T) {
	bt := NewBoundsTracker()
	bt.Add(math.NaN(), 10)
	bt.Add(10, math.Inf(1))

	if _, ok := bt.Bounds(); ok {
		t.Fatal("expected no bounds from non-finite input")
	}

	bt.Add(5, 6)
	b, ok := bt.Bounds()
	if !ok {
		t.Fatal("expected bounds after finite input")
	}
	if b.MinLon != 5 || b.MaxLat != 6 {
		t.Errorf("unexpected envelope: %+v", b)
	}
}

func TestBoundsTracker_Empty(t *testing.T) {
	bt := NewBoundsTracker()
	if _, ok := bt.Bounds(); ok {
		t.Fatal("expected no bounds from empty tracker")
	}
}

func TestCoords3857From4326_Origin(t *testing.T) {
	point := Coords3857From4326(0, 0)
	coords, ok := point.Coordinates()
	if !ok {
		t.Fatal("expected valid coordinates")
	}
	if coords.X != 0 {
		t.Errorf("expected X=0 at origin, got %f", coords.X)
	}
	if coords.Y != 0 {
		t.Errorf("expected Y=0 at origin, got %f", coords.Y)
	}
}

func TestCoords3857From4326_Hemispheres(t *testing.T) {
	point := Coords3857From4326(-45, -30)
	coords, ok := point.Coordinates()
	if !ok {
		t.Fatal("expected valid coordinates")
	}
	if coords.X >= 0 {
		t.Errorf("expected negative X for western hemisphere, got %f", coords.X)
	}
	if coords.Y >= 0 {
		t.Errorf("expected negative Y for southern hemisphere, got %f", coords.Y)
	}
}

func TestMercatorBounds_PreservesOrdering(t *testing.T) {
	b := MercatorBounds(core.Bounds{
		MinLon: 10, MaxLon: 30,
		MinLat: 20, MaxLat: 40,
	})
	if b.MinLon >= b.MaxLon || b.MinLat >= b.MaxLat {
		t.Errorf("projected bounds lost ordering: %+v", b)
	}
	if b.LonSpan <= 0 || b.LatSpan <= 0 {
		t.Errorf("projected spans must be positive: %+v", b)
	}
}

package geo

import (
	"math"

	"github.com/vesselwatch/replay/pkg/core"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Positions are WGS84 (EPSG:4326) longitude/latitude pairs throughout
// the core. Conversion to Web Mercator (EPSG:3857) happens only at the
// presentation boundary, where map renderers and the archive expect it.

const degToRad = math.Pi / 180

// InitialBearing computes the initial great-circle bearing in degrees
// [0,360) from point a to point b. 0 is due north, 90 due east.
// Identical points yield 0.
func InitialBearing(latA, lonA, latB, lonB float64) float64 {
	if latA == latB && lonA == lonB {
		return 0
	}

	phi1 := latA * degToRad
	phi2 := latB * degToRad
	deltaLambda := (lonB - lonA) * degToRad

	y := math.Sin(deltaLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLambda)

	deg := math.Atan2(y, x) / degToRad
	deg = math.Mod(deg+360, 360)
	if deg == 360 {
		return 0
	}
	return deg
}

// FiniteCoord reports whether both coordinates are usable for position.
func FiniteCoord(lon, lat float64) bool {
	return !math.IsNaN(lon) && !math.IsInf(lon, 0) &&
		!math.IsNaN(lat) && !math.IsInf(lat, 0)
}

// BoundsTracker accumulates a geographic envelope from finite
// coordinates. Non-finite inputs are ignored.
type BoundsTracker struct {
	minLon, maxLon float64
	minLat, maxLat float64
	seen           bool
}

// NewBoundsTracker creates an empty tracker.
func NewBoundsTracker() *BoundsTracker {
	return &BoundsTracker{}
}

// Add extends the envelope to include the coordinate, if finite.
func (b *BoundsTracker) Add(lon, lat float64) {
	if !FiniteCoord(lon, lat) {
		return
	}
	if !b.seen {
		b.minLon, b.maxLon = lon, lon
		b.minLat, b.maxLat = lat, lat
		b.seen = true
		return
	}
	b.minLon = math.Min(b.minLon, lon)
	b.maxLon = math.Max(b.maxLon, lon)
	b.minLat = math.Min(b.minLat, lat)
	b.maxLat = math.Max(b.maxLat, lat)
}

// Bounds returns the accumulated envelope. ok is false when no finite
// coordinate was ever added.
func (b *BoundsTracker) Bounds() (core.Bounds, bool) {
	if !b.seen {
		return core.Bounds{}, false
	}
	return core.Bounds{
		MinLon:    b.minLon,
		MaxLon:    b.maxLon,
		MinLat:    b.minLat,
		MaxLat:    b.maxLat,
		CenterLon: (b.minLon + b.maxLon) / 2,
		CenterLat: (b.minLat + b.maxLat) / 2,
		LonSpan:   b.maxLon - b.minLon,
		LatSpan:   b.maxLat - b.minLat,
	}, true
}

// PointFromLonLat builds a simplefeatures 2D point from a WGS84
// coordinate, for storage in geometry columns.
func PointFromLonLat(lon, lat float64) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: lon, Y: lat},
		Type: geom.DimXY,
	})
}

// Coords3857From4326 converts a WGS84 longitude/latitude into a Web
// Mercator point for renderers that work in projected coordinates.
func Coords3857From4326(longitude, latitude float64) geom.Point {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ := f(longitude, latitude, 0)
	return geom.NewPoint(geom.Coordinates{
		XY: geom.XY{X: x, Y: y},
	})
}

// MercatorBounds reprojects a WGS84 envelope to Web Mercator.
func MercatorBounds(b core.Bounds) core.Bounds {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	minX, minY, _ := f(b.MinLon, b.MinLat, 0)
	maxX, maxY, _ := f(b.MaxLon, b.MaxLat, 0)
	return core.Bounds{
		MinLon:    minX,
		MaxLon:    maxX,
		MinLat:    minY,
		MaxLat:    maxY,
		CenterLon: (minX + maxX) / 2,
		CenterLat: (minY + maxY) / 2,
		LonSpan:   maxX - minX,
		LatSpan:   maxY - minY,
	}
}

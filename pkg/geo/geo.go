// Package geo provides the small set of geographic primitives used by the
// ingestion pipeline: bounding boxes and GeoJSON points.
package geo

import "fmt"

// BoundingBox is an axis-aligned lat/lon rectangle
type BoundingBox struct {
	MinLat float64 `json:"minLat" yaml:"min_lat"`
	MinLon float64 `json:"minLon" yaml:"min_lon"`
	MaxLat float64 `json:"maxLat" yaml:"max_lat"`
	MaxLon float64 `json:"maxLon" yaml:"max_lon"`
}

// Contains reports whether the point lies inside the box, edges included
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Validate checks that the box is well formed
func (b BoundingBox) Validate() error {
	if err := ValidateCoords(b.MinLat, b.MinLon); err != nil {
		return fmt.Errorf("invalid south-west corner: %w", err)
	}
	if err := ValidateCoords(b.MaxLat, b.MaxLon); err != nil {
		return fmt.Errorf("invalid north-east corner: %w", err)
	}
	if b.MinLat >= b.MaxLat || b.MinLon >= b.MaxLon {
		return fmt.Errorf("bounding box is empty: min must be strictly less than max")
	}
	return nil
}

// OverpassString renders the box in Overpass QL order (south,west,north,east)
func (b BoundingBox) OverpassString() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
}

// ValidateCoords validates latitude and longitude values
func ValidateCoords(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("invalid latitude: %f (must be between -90 and 90)", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("invalid longitude: %f (must be between -180 and 180)", lon)
	}
	return nil
}

// Point is a GeoJSON point. Coordinates are [longitude, latitude].
type Point struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewPoint builds a GeoJSON point from a latitude and a longitude.
// The argument order follows OSM (lat, lon); the stored order follows GeoJSON.
func NewPoint(lat, lon float64) Point {
	return Point{
		Type:        "Point",
		Coordinates: [2]float64{lon, lat},
	}
}

// Lat returns the latitude of the point
func (p Point) Lat() float64 { return p.Coordinates[1] }

// Lon returns the longitude of the point
func (p Point) Lon() float64 { return p.Coordinates[0] }

package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Source string

const (
	SourceCDO Source = "CDO"
)

// Point is a latitude/longitude pair in degrees. A point with a NaN
// component is undefined and never sent to the directory.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func UndefinedPoint() Point {
	return Point{Latitude: math.NaN(), Longitude: math.NaN()}
}

func (p Point) Defined() bool {
	return !math.IsNaN(p.Latitude) && !math.IsNaN(p.Longitude)
}

func (p Point) String() string {
	if !p.Defined() {
		return "undefined"
	}
	return fmt.Sprintf("(%g, %g)", p.Latitude, p.Longitude)
}

// BoundingBox is an axis-aligned lat/lon rectangle.
type BoundingBox struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// NewBoundingBox returns the square of the given half-width centered on p.
func NewBoundingBox(p Point, halfWidth float64) BoundingBox {
	return BoundingBox{
		MinLat: p.Latitude - halfWidth,
		MinLon: p.Longitude - halfWidth,
		MaxLat: p.Latitude + halfWidth,
		MaxLon: p.Longitude + halfWidth,
	}
}

// Extent renders the box in the directory's "minLat,minLon,maxLat,maxLon" form.
func (b BoundingBox) Extent() string {
	parts := []string{
		strconv.FormatFloat(b.MinLat, 'f', -1, 64),
		strconv.FormatFloat(b.MinLon, 'f', -1, 64),
		strconv.FormatFloat(b.MaxLat, 'f', -1, 64),
		strconv.FormatFloat(b.MaxLon, 'f', -1, 64),
	}
	return strings.Join(parts, ",")
}

// Candidate is a station record returned by the directory.
type Candidate struct {
	ID        string  `json:"id"`
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Source    Source  `json:"source"`
}

func (c Candidate) Point() Point {
	return Point{Latitude: c.Latitude, Longitude: c.Longitude}
}

func (c Candidate) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("station ID is required")
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("invalid latitude: %f", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("invalid longitude: %f", c.Longitude)
	}
	return nil
}

// PlanarDistance is the Euclidean distance on raw degree values. It is only
// meaningful for ranking candidates within a single small search box.
func PlanarDistance(a, b Point) float64 {
	return math.Hypot(b.Latitude-a.Latitude, b.Longitude-a.Longitude)
}

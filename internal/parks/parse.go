// Package parks holds park-level calculations over the loaded tables.
package parks

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/npsdash/backend-go/internal/models"
)

var (
	ErrNoCoordinates = errors.New("no coordinates found")
	ErrNoArea        = errors.New("no area found")

	coordinatesPattern = regexp.MustCompile(`([+-]?\d+(?:\.\d+)?)°\s*([NS]).*?([+-]?\d+(?:\.\d+)?)°\s*([EW])`)
	areaPattern        = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
)

// ParseCoordinates reads decimal coordinates from an infobox cell such as
// "46°51′N 121°45′W / 46.85°N 121.75°W". The first decimal-degree pair wins;
// South and West are negative.
func ParseCoordinates(s string) (models.Point, error) {
	for _, m := range coordinatesPattern.FindAllStringSubmatch(s, -1) {
		lat, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			continue
		}
		if m[2] == "S" {
			lat = -lat
		}
		if m[4] == "W" {
			lon = -lon
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return models.UndefinedPoint(), fmt.Errorf("coordinates out of range in %q", s)
		}
		return models.Point{Latitude: lat, Longitude: lon}, nil
	}
	return models.UndefinedPoint(), fmt.Errorf("%w in %q", ErrNoCoordinates, s)
}

// ParseArea returns the first number in an area cell, e.g.
// "236,381.64 acres (956.6 km2)" gives 236381.64.
func ParseArea(s string) (float64, error) {
	m := areaPattern.FindString(s)
	if m == "" {
		return 0, fmt.Errorf("%w in %q", ErrNoArea, s)
	}
	area, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing area %q: %w", m, err)
	}
	return area, nil
}

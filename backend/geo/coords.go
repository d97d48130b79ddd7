package geo

import (
	"fmt"
	"strconv"
	"strings"

	"mangrovewatch/backend/api"

	"github.com/golang/geo/s2"
	"github.com/shopspring/decimal"
)

const (
	locationPlaces = 6

	// earthRadiusMeters is the mean radius used for distances on the sphere.
	earthRadiusMeters = 6371008.8

	// mappedCellLevel buckets points into cells roughly 30 m across.
	mappedCellLevel = 18
)

// FormatLocation renders c as "<lat>, <lon>" with six decimals each.
func FormatLocation(c api.GPSCoordinates) string {
	return decimal.NewFromFloat(c.Latitude).StringFixed(locationPlaces) + ", " +
		decimal.NewFromFloat(c.Longitude).StringFixed(locationPlaces)
}

// ParseLocation reads manually entered "lat, lon" text. Accuracy is unknown
// and left at zero.
func ParseLocation(s string) (api.GPSCoordinates, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return api.GPSCoordinates{}, fmt.Errorf("location %q: need \"lat, lon\"", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return api.GPSCoordinates{}, fmt.Errorf("location %q: invalid latitude: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return api.GPSCoordinates{}, fmt.Errorf("location %q: invalid longitude: %w", s, err)
	}
	c := api.GPSCoordinates{Latitude: lat, Longitude: lon}
	if !Valid(c) {
		return api.GPSCoordinates{}, fmt.Errorf("location %q: out of range", s)
	}
	return c, nil
}

// Valid reports whether c lies on the globe and has a non-negative accuracy.
func Valid(c api.GPSCoordinates) bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180 &&
		c.Accuracy >= 0
}

// DistanceMeters is the great circle distance between a and b.
func DistanceMeters(a, b api.GPSCoordinates) float64 {
	return latLng(a).Distance(latLng(b)).Radians() * earthRadiusMeters
}

func latLng(c api.GPSCoordinates) s2.LatLng {
	return s2.LatLngFromDegrees(c.Latitude, c.Longitude)
}

// CellToken names the s2 cell around c that counts as one mapped location.
func CellToken(c api.GPSCoordinates) string {
	return s2.CellIDFromLatLng(latLng(c)).Parent(mappedCellLevel).ToToken()
}

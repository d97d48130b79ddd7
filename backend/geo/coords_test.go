package geo

import (
	"math"
	"testing"

	"mangrovewatch/backend/api"
)

func TestFormatLocation(t *testing.T) {
	testCases := []struct {
		c    api.GPSCoordinates
		want string
	}{
		{api.GPSCoordinates{Latitude: 12.97, Longitude: 77.59, Accuracy: 8}, "12.970000, 77.590000"},
		{api.GPSCoordinates{Latitude: 12.9716, Longitude: 77.5946}, "12.971600, 77.594600"},
		{api.GPSCoordinates{Latitude: -33.8688197, Longitude: 151.2092955}, "-33.868820, 151.209296"},
		{api.GPSCoordinates{Latitude: 0, Longitude: -0.5}, "0.000000, -0.500000"},
	}
	for _, tc := range testCases {
		if got := FormatLocation(tc.c); got != tc.want {
			t.Errorf("FormatLocation(%v) = %q, want %q", tc.c, got, tc.want)
		}
	}
}

func TestParseLocation(t *testing.T) {
	c, err := ParseLocation(" 12.971600 ,77.594600")
	if err != nil {
		t.Fatal(err)
	}
	if c.Latitude != 12.9716 || c.Longitude != 77.5946 {
		t.Errorf("ParseLocation = %v", c)
	}
	for _, bad := range []string{"", "12.9", "a, b", "12, 77, 3", "91, 0"} {
		if _, err := ParseLocation(bad); err == nil {
			t.Errorf("ParseLocation(%q): expected error", bad)
		}
	}
}

func TestRoundTripThroughFormat(t *testing.T) {
	in := api.GPSCoordinates{Latitude: 12.970001, Longitude: 77.589999}
	out, err := ParseLocation(FormatLocation(in))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(out.Latitude-in.Latitude) > 1e-9 || math.Abs(out.Longitude-in.Longitude) > 1e-9 {
		t.Errorf("round trip drifted: %v -> %v", in, out)
	}
}

func TestValid(t *testing.T) {
	if !Valid(api.GPSCoordinates{Latitude: 90, Longitude: 180}) {
		t.Error("poles and antimeridian are valid")
	}
	if Valid(api.GPSCoordinates{Latitude: 90.1}) {
		t.Error("latitude above 90 is invalid")
	}
	if Valid(api.GPSCoordinates{Longitude: -180.5}) {
		t.Error("longitude below -180 is invalid")
	}
	if Valid(api.GPSCoordinates{Accuracy: -1}) {
		t.Error("negative accuracy is invalid")
	}
}

func TestDistanceMeters(t *testing.T) {
	a := api.GPSCoordinates{Latitude: 0, Longitude: 0}
	b := api.GPSCoordinates{Latitude: 0, Longitude: 1}
	// One degree along the equator is ~111.2 km.
	if d := DistanceMeters(a, b); math.Abs(d-111195) > 100 {
		t.Errorf("DistanceMeters = %f", d)
	}
	if d := DistanceMeters(a, a); d != 0 {
		t.Errorf("DistanceMeters to self = %f", d)
	}
}

func TestParseDeviceLocation(t *testing.T) {
	c, err := ParseDeviceLocation("12.97, 77.59, 8")
	if err != nil || c != (api.GPSCoordinates{Latitude: 12.97, Longitude: 77.59, Accuracy: 8}) {
		t.Errorf("ParseDeviceLocation = %v, %v", c, err)
	}
	c, err = ParseDeviceLocation("12.97,77.59")
	if err != nil || c.Accuracy != 0 || c.Longitude != 77.59 {
		t.Errorf("ParseDeviceLocation without accuracy = %v, %v", c, err)
	}
	for _, bad := range []string{"north", "12.97", "1, 2, 3, junk", "1, 2, x", "95, 10", "1, 2, -3"} {
		if _, err := ParseDeviceLocation(bad); err == nil {
			t.Errorf("ParseDeviceLocation(%q): expected error", bad)
		}
	}
}

func TestCellToken(t *testing.T) {
	a := api.GPSCoordinates{Latitude: 12.97, Longitude: 77.59, Accuracy: 8}
	same := api.GPSCoordinates{Latitude: 12.97, Longitude: 77.59, Accuracy: 15}
	far := api.GPSCoordinates{Latitude: 12.98, Longitude: 77.59}
	if CellToken(a) != CellToken(same) {
		t.Error("accuracy must not change the cell")
	}
	if CellToken(a) == CellToken(far) {
		t.Error("points a kilometer apart share a cell")
	}
}

package geo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"mangrovewatch/backend/api"
)

// Options mirror what a device positioning request can ask for.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration // Zero means no bound.
	MaximumAge   time.Duration // How stale a cached fix may be.
}

var DefaultOptions = Options{
	HighAccuracy: true,
	Timeout:      10 * time.Second,
	MaximumAge:   60 * time.Second,
}

// Provider yields the device position.
type Provider interface {
	CurrentPosition(ctx context.Context, opts Options) (api.GPSCoordinates, error)
}

type Reason string

const (
	ReasonPermissionDenied    Reason = "permission_denied"
	ReasonTimeout             Reason = "timeout"
	ReasonPositionUnavailable Reason = "position_unavailable"
	ReasonUnsupported         Reason = "unsupported"
)

const (
	MsgLocationFailed = "Unable to get your location. Please enter coordinates manually."
	MsgUnsupported    = "Geolocation is not supported on this device."
)

// LocationError is a recoverable positioning failure; manual entry remains possible.
type LocationError struct {
	Reason Reason
	Err    error
}

func (e *LocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geolocation %s: %v", e.Reason, e.Err)
	}
	return "geolocation " + string(e.Reason)
}

func (e *LocationError) Unwrap() error { return e.Err }

// Message is the text shown to the user.
func (e *LocationError) Message() string {
	if e.Reason == ReasonUnsupported {
		return MsgUnsupported
	}
	return MsgLocationFailed
}

// ReasonOf extracts the failure reason from err, or "" if err is not a LocationError.
func ReasonOf(err error) Reason {
	var le *LocationError
	if errors.As(err, &le) {
		return le.Reason
	}
	return ""
}

// Static always reports the same fix.
type Static struct {
	Coords api.GPSCoordinates
}

func (s Static) CurrentPosition(ctx context.Context, _ Options) (api.GPSCoordinates, error) {
	if err := ctx.Err(); err != nil {
		return api.GPSCoordinates{}, err
	}
	return s.Coords, nil
}

// Unsupported is used when the device has no positioning capability.
type Unsupported struct{}

func (Unsupported) CurrentPosition(context.Context, Options) (api.GPSCoordinates, error) {
	return api.GPSCoordinates{}, &LocationError{Reason: ReasonUnsupported}
}

// ParseDeviceLocation reads "lat, lon[, accuracy]" as configured for a fixed device.
func ParseDeviceLocation(s string) (api.GPSCoordinates, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 && len(parts) != 3 {
		return api.GPSCoordinates{}, fmt.Errorf("device location %q: need \"lat, lon[, accuracy]\"", s)
	}
	var vals [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return api.GPSCoordinates{}, fmt.Errorf("device location %q: %w", s, err)
		}
		vals[i] = v
	}
	c := api.GPSCoordinates{Latitude: vals[0], Longitude: vals[1], Accuracy: vals[2]}
	if !Valid(c) {
		return api.GPSCoordinates{}, fmt.Errorf("device location %q: out of range", s)
	}
	return c, nil
}

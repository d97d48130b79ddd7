package api

import (
	"strconv"
	"time"
)

const (
	// StatusPending is the only status a freshly submitted report carries.
	StatusPending = "pending"

	// TimestampLayout matches ISO-8601 UTC with millisecond precision.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

type User struct {
	Username string `json:"username"`
	Phone    string `json:"phone"`
	ID       string `json:"id"` // Client generated, unix millis.
}

type GPSCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"` // Meters.
}

// Report is an immutable record of one submitted incident.
type Report struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	Username       string          `json:"username"`
	Timestamp      string          `json:"timestamp"`
	Description    string          `json:"description"`
	Location       string          `json:"location"`
	GPSCoordinates *GPSCoordinates `json:"gpsCoordinates"`
	Severity       Severity        `json:"severity"`
	Photo          string          `json:"photo"` // File name only.
	Status         string          `json:"status"`
}

// ClientID renders t the way client side ids are generated.
func ClientID(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// FormatTimestamp renders t as an ISO-8601 UTC timestamp.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

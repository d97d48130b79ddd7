package api

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseSeverity(t *testing.T) {
	testCases := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{"low", SeverityLow, false},
		{"Medium", SeverityMedium, false},
		{" high ", SeverityHigh, false},
		{"critical", SeverityCritical, false},
		{"", "", true},
		{"extreme", "", true},
	}
	for _, tc := range testCases {
		got, err := ParseSeverity(tc.in)
		if tc.wantErr != (err != nil) {
			t.Errorf("ParseSeverity(%q): expected error %v, got %v", tc.in, tc.wantErr, err)
			continue
		}
		if err != nil {
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != "severity" {
				t.Errorf("ParseSeverity(%q): expected a severity ValidationError, got %v", tc.in, err)
			}
		}
		if got != tc.want {
			t.Errorf("ParseSeverity(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSeverityOrder(t *testing.T) {
	levels := Severities()
	if len(levels) != 4 {
		t.Fatalf("expected 4 levels, got %d", len(levels))
	}
	for i := 1; i < len(levels); i++ {
		if levels[i].Compare(levels[i-1]) <= 0 {
			t.Errorf("%s should rank above %s", levels[i], levels[i-1])
		}
	}
	if DefaultSeverity != SeverityMedium {
		t.Errorf("default severity = %s, want medium", DefaultSeverity)
	}
}

func TestReportJSONShape(t *testing.T) {
	r := Report{
		ID:       "1700000000000",
		UserID:   "1699999999999",
		Username: "alice",
		Location: "12.970000, 77.590000",
		Severity: SeverityMedium,
		Photo:    "cut.jpg",
		Status:   StatusPending,
	}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	for _, key := range []string{`"userId":"1699999999999"`, `"gpsCoordinates":null`, `"status":"pending"`, `"severity":"medium"`} {
		if !strings.Contains(s, key) {
			t.Errorf("expected %s in %s", key, s)
		}
	}
}

func TestClientIDAndTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 20, 30, 456000000, time.FixedZone("IST", 19800))
	if got, want := FormatTimestamp(ts), "2024-03-01T04:50:30.456Z"; got != want {
		t.Errorf("FormatTimestamp = %s, want %s", got, want)
	}
	if got, want := ClientID(ts), "1709268630456"; got != want {
		t.Errorf("ClientID = %s, want %s", got, want)
	}
}

package report

import (
	"fmt"

	"mangrovewatch/backend/api"
	"mangrovewatch/backend/geo"

	"github.com/apex/log"
	geojson "github.com/paulmach/go.geojson"
)

// ExportGeoJSON renders reports as a FeatureCollection of points. Reports
// without GPS fall back to their location text; those with neither are left
// out.
func ExportGeoJSON(reports []api.Report) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, rep := range reports {
		c, ok := Position(rep)
		if !ok {
			log.WithField("report_id", rep.ID).Warn("Report has no usable position, skipping")
			continue
		}
		f := geojson.NewPointFeature([]float64{c.Longitude, c.Latitude})
		f.ID = rep.ID
		f.SetProperty("userId", rep.UserID)
		f.SetProperty("username", rep.Username)
		f.SetProperty("timestamp", rep.Timestamp)
		f.SetProperty("description", rep.Description)
		f.SetProperty("location", rep.Location)
		f.SetProperty("severity", string(rep.Severity))
		f.SetProperty("photo", rep.Photo)
		f.SetProperty("status", rep.Status)
		if rep.GPSCoordinates != nil {
			f.SetProperty("accuracy", rep.GPSCoordinates.Accuracy)
		}
		fc.AddFeature(f)
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode reports: %w", err)
	}
	return b, nil
}

// Position is where rep was made: its GPS fix, else its location text.
func Position(rep api.Report) (api.GPSCoordinates, bool) {
	if rep.GPSCoordinates != nil && geo.Valid(*rep.GPSCoordinates) {
		return *rep.GPSCoordinates, true
	}
	c, err := geo.ParseLocation(rep.Location)
	if err != nil {
		return api.GPSCoordinates{}, false
	}
	return c, true
}

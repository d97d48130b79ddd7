package photo

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"mangrovewatch/backend/api"

	"github.com/apex/log"
	"github.com/rwcarlsen/goexif/exif"
)

// Extractor reads capture coordinates from a photo. A nil result with a nil
// error means the photo carries no usable location.
type Extractor interface {
	Extract(ctx context.Context, p Photo) (*api.GPSCoordinates, error)
}

const (
	// uereMeters converts GPS dilution of precision into an accuracy radius.
	uereMeters = 5.0
	// DefaultAccuracy is assumed when the photo has a fix but no DOP.
	DefaultAccuracy = 10.0
)

// Exif extracts the GPS position embedded in JPEG/TIFF metadata.
type Exif struct{}

func (Exif) Extract(ctx context.Context, p Photo) (*api.GPSCoordinates, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	x, err := exif.Decode(bytes.NewReader(p.Data))
	if err != nil {
		// No metadata is not an error for the caller.
		log.WithField("photo", p.Name).Debugf("No EXIF data: %v", err)
		return nil, nil
	}
	lat, lon, err := x.LatLong()
	if err != nil {
		var missing exif.TagNotPresentError
		if errors.As(err, &missing) {
			return nil, nil
		}
		log.WithField("photo", p.Name).Warnf("Unreadable GPS tags: %v", err)
		return nil, nil
	}
	return &api.GPSCoordinates{Latitude: lat, Longitude: lon, Accuracy: accuracy(x)}, nil
}

func accuracy(x *exif.Exif) float64 {
	tag, err := x.Get(exif.GPSDOP)
	if err != nil {
		return DefaultAccuracy
	}
	r, err := tag.Rat(0)
	if err != nil {
		return DefaultAccuracy
	}
	dop, _ := r.Float64()
	if dop <= 0 {
		return DefaultAccuracy
	}
	return dop * uereMeters
}

// Reference point the mock scatters around.
const (
	MockLatitude  = 12.9716
	MockLongitude = 77.5946
	mockSpread    = 0.05
	mockMinAcc    = 5 // Whole meters, 5 to 14.
	mockAccSpan   = 10
)

// Mock stands in for a real reader during demos: after Delay it reports a
// random point near the reference location.
type Mock struct {
	Delay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewMock(delay time.Duration, seed int64) *Mock {
	return &Mock{Delay: delay, rnd: rand.New(rand.NewSource(seed))}
}

func (m *Mock) Extract(ctx context.Context, p Photo) (*api.GPSCoordinates, error) {
	if m.Delay > 0 {
		t := time.NewTimer(m.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rnd == nil {
		m.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	c := &api.GPSCoordinates{
		Latitude:  MockLatitude + (m.rnd.Float64()*2-1)*mockSpread,
		Longitude: MockLongitude + (m.rnd.Float64()*2-1)*mockSpread,
		Accuracy:  float64(mockMinAcc + m.rnd.Intn(mockAccSpan)),
	}
	log.WithField("photo", p.Name).Debugf("Mock coordinates %.6f, %.6f", c.Latitude, c.Longitude)
	return c, nil
}

// None never finds coordinates.
type None struct{}

func (None) Extract(context.Context, Photo) (*api.GPSCoordinates, error) { return nil, nil }

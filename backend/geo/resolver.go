package geo

import (
	"mangrovewatch/backend/api"

	"github.com/apex/log"
)

type Source int

const (
	SourcePhoto  Source = iota + 1 // Coordinates embedded in the photo.
	SourceDevice                   // Explicit request to the device.
)

func (s Source) String() string {
	switch s {
	case SourcePhoto:
		return "photo"
	case SourceDevice:
		return "device"
	}
	return "unknown"
}

// Policy decides whether an incoming update replaces the current one.
type Policy int

const (
	// LastWriterWins accepts every valid update in arrival order.
	LastWriterWins Policy = iota
	// PreferDevice never lets a photo guess replace a device fix.
	PreferDevice
)

func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "", "last_writer_wins":
		return LastWriterWins, true
	case "prefer_device":
		return PreferDevice, true
	}
	return LastWriterWins, false
}

type Update struct {
	Source Source
	Coords api.GPSCoordinates
	Seq    uint64 // Arrival order, assigned by Offer.
}

// Resolver is the single slot both location sources write through. It is not
// safe for concurrent use; the owner serializes access.
type Resolver struct {
	policy  Policy
	seq     uint64
	current *Update
}

func NewResolver(p Policy) *Resolver {
	return &Resolver{policy: p}
}

// Offer records an arriving update and reports whether it became current.
func (r *Resolver) Offer(src Source, c api.GPSCoordinates) (Update, bool) {
	r.seq++
	u := Update{Source: src, Coords: c, Seq: r.seq}
	if !Valid(c) {
		log.WithField("source", src).Warnf("Rejecting invalid coordinates %v", c)
		return u, false
	}
	if r.current != nil {
		if r.policy == PreferDevice && src == SourcePhoto && r.current.Source == SourceDevice {
			log.WithFields(log.Fields{
				"distance_m": int(DistanceMeters(r.current.Coords, c)),
			}).Info("Keeping device location over photo metadata")
			return u, false
		}
		log.WithFields(log.Fields{
			"from":       r.current.Source,
			"to":         src,
			"distance_m": int(DistanceMeters(r.current.Coords, c)),
		}).Debug("Location replaced")
	}
	r.current = &u
	return u, true
}

// Current returns the accepted update, if any.
func (r *Resolver) Current() (Update, bool) {
	if r.current == nil {
		return Update{}, false
	}
	return *r.current, true
}

func (r *Resolver) Reset() {
	r.current = nil
}

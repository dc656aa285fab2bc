package listing

import (
	"time"

	"github.com/google/uuid"
)

// Status is the publication state of a listing.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusPaused    Status = "paused"
)

// Listing is a rentable unit. This service only reads listings; the catalog
// subsystem owns their lifecycle.
type Listing struct {
	id            uuid.UUID
	hostID        uuid.UUID
	title         string
	pricePerNight int64
	maxGuests     int
	status        Status
	createdAt     time.Time
	updatedAt     time.Time
}

func (l *Listing) ID() uuid.UUID        { return l.id }
func (l *Listing) HostID() uuid.UUID    { return l.hostID }
func (l *Listing) Title() string        { return l.title }
func (l *Listing) PricePerNight() int64 { return l.pricePerNight }
func (l *Listing) MaxGuests() int       { return l.maxGuests }
func (l *Listing) Status() Status       { return l.status }
func (l *Listing) CreatedAt() time.Time { return l.createdAt }
func (l *Listing) UpdatedAt() time.Time { return l.updatedAt }

// IsBookable reports whether the listing accepts new reservations.
func (l *Listing) IsBookable() bool {
	return l.status == StatusPublished
}

// Reconstitute rebuilds a Listing from persisted data.
func Reconstitute(
	id, hostID uuid.UUID,
	title string,
	pricePerNight int64,
	maxGuests int,
	status Status,
	createdAt, updatedAt time.Time,
) *Listing {
	return &Listing{
		id:            id,
		hostID:        hostID,
		title:         title,
		pricePerNight: pricePerNight,
		maxGuests:     maxGuests,
		status:        status,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

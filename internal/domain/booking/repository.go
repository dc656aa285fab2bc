package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByGuestID retrieves bookings belonging to a guest with pagination.
	FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByListingID retrieves bookings for a listing with pagination.
	FindByListingID(ctx context.Context, listingID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindBlocking returns bookings for the listing that overlap the
	// half-open range [checkIn, checkOut) and still block it: confirmed
	// bookings, plus pending_payment bookings created after holdCutoff.
	FindBlocking(ctx context.Context, listingID uuid.UUID, checkIn, checkOut time.Time, holdCutoff time.Time) ([]*Booking, error)

	// SaveIfAvailable atomically re-runs the blocking check and inserts the
	// booking under a listing-scoped advisory lock, so two concurrent
	// reservations for overlapping dates cannot both commit.
	SaveIfAvailable(ctx context.Context, b *Booking, holdCutoff time.Time) error

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, b *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, b *Booking) error
}

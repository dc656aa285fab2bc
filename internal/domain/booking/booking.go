package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/vietstay/service-booking/internal/pkg/domain"
)

// Booking is the aggregate root for a reservation between a guest and a
// listing over a half-open date range [checkIn, checkOut).
type Booking struct {
	id            uuid.UUID
	listingID     uuid.UUID
	guestID       uuid.UUID
	checkIn       time.Time
	checkOut      time.Time
	guestsCount   int
	status        Status
	priceSnapshot int64
	totalAmount   int64
	currency      string
	version       int64
	createdAt     time.Time
	updatedAt     time.Time
}

// NewBooking creates a pending_payment booking with the nightly price
// snapshotted from the listing. The total is fixed here and never recomputed.
func NewBooking(listingID, guestID uuid.UUID, checkIn, checkOut time.Time, guestsCount int, pricePerNight int64, currency string) (*Booking, error) {
	checkIn = truncateToDate(checkIn)
	checkOut = truncateToDate(checkOut)

	nights := Nights(checkIn, checkOut)
	if nights < 1 {
		return nil, domain.NewValidationError("check_out must be after check_in")
	}
	if guestsCount < 1 {
		return nil, domain.NewValidationError("guests_count must be positive")
	}

	now := time.Now().UTC()
	return &Booking{
		id:            uuid.New(),
		listingID:     listingID,
		guestID:       guestID,
		checkIn:       checkIn,
		checkOut:      checkOut,
		guestsCount:   guestsCount,
		status:        StatusPendingPayment,
		priceSnapshot: pricePerNight,
		totalAmount:   pricePerNight * int64(nights),
		currency:      currency,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Nights returns the number of nights in [checkIn, checkOut).
func Nights(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// Overlaps reports whether two half-open date ranges intersect.
// Back-to-back ranges (a2 == b1) do not overlap.
func Overlaps(a1, a2, b1, b2 time.Time) bool {
	return a1.Before(b2) && a2.After(b1)
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID        { return b.id }
func (b *Booking) ListingID() uuid.UUID { return b.listingID }
func (b *Booking) GuestID() uuid.UUID   { return b.guestID }
func (b *Booking) CheckIn() time.Time   { return b.checkIn }
func (b *Booking) CheckOut() time.Time  { return b.checkOut }
func (b *Booking) GuestsCount() int     { return b.guestsCount }
func (b *Booking) Status() Status       { return b.status }
func (b *Booking) PriceSnapshot() int64 { return b.priceSnapshot }
func (b *Booking) TotalAmount() int64   { return b.totalAmount }
func (b *Booking) Currency() string     { return b.currency }
func (b *Booking) Version() int64       { return b.version }
func (b *Booking) CreatedAt() time.Time { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior / State Transitions ---

// Confirm transitions from pending_payment to confirmed after successful settlement.
func (b *Booking) Confirm() error {
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	b.status = StatusConfirmed
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions to cancelled. A confirmed booking can only be cancelled
// while its check-in is still in the future.
func (b *Booking) Cancel(now time.Time) error {
	if !b.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	if b.status == StatusConfirmed && !b.checkIn.After(now) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	b.status = StatusCancelled
	b.updatedAt = time.Now().UTC()
	return nil
}

// Complete transitions from confirmed to completed on guest checkout.
func (b *Booking) Complete() error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	b.status = StatusCompleted
	b.updatedAt = time.Now().UTC()
	return nil
}

// IsReviewable reports whether the stay can be reviewed: completed, or
// confirmed with check-out on or before today.
func (b *Booking) IsReviewable(today time.Time) bool {
	if b.status == StatusCompleted {
		return true
	}
	return b.status == StatusConfirmed && !b.checkOut.After(truncateToDate(today))
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

// Reconstitute rebuilds a Booking from persisted data.
func Reconstitute(
	id, listingID, guestID uuid.UUID,
	checkIn, checkOut time.Time,
	guestsCount int,
	status Status,
	priceSnapshot, totalAmount int64,
	currency string,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		listingID:     listingID,
		guestID:       guestID,
		checkIn:       checkIn,
		checkOut:      checkOut,
		guestsCount:   guestsCount,
		status:        status,
		priceSnapshot: priceSnapshot,
		totalAmount:   totalAmount,
		currency:      currency,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

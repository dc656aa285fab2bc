package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vietstay/service-booking/internal/domain/booking"
)

// AvailabilityService decides whether a listing is free for a requested
// [checkIn, checkOut) window. The check is advisory: the insert path re-runs
// it under a listing lock (see BookingRepository.SaveIfAvailable).
type AvailabilityService struct {
	bookings   booking.BookingRepository
	holdWindow time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewAvailabilityService creates an AvailabilityService with the configured
// provisional-hold window.
func NewAvailabilityService(bookings booking.BookingRepository, holdWindow time.Duration, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		bookings:   bookings,
		holdWindow: holdWindow,
		logger:     logger,
		now:        time.Now,
	}
}

// HoldCutoff returns the creation-time threshold before which pending_payment
// bookings no longer block. Stale holds expire lazily through this cutoff;
// there is no sweep job.
func (s *AvailabilityService) HoldCutoff() time.Time {
	return s.now().UTC().Add(-s.holdWindow)
}

// IsAvailable reports whether no blocking booking overlaps the requested range.
func (s *AvailabilityService) IsAvailable(ctx context.Context, listingID uuid.UUID, checkIn, checkOut time.Time) (bool, error) {
	blocking, err := s.bookings.FindBlocking(ctx, listingID, checkIn, checkOut, s.HoldCutoff())
	if err != nil {
		return false, err
	}

	if len(blocking) > 0 {
		s.logger.Debug("dates blocked",
			zap.String("listing_id", listingID.String()),
			zap.Int("blocking_count", len(blocking)),
		)
		return false, nil
	}
	return true, nil
}

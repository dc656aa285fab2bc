package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vietstay/service-booking/internal/domain/booking"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedBooking(t *testing.T, repo *fakeBookingRepo, listingID uuid.UUID, checkIn, checkOut time.Time, status booking.Status, createdAt time.Time) *booking.Booking {
	t.Helper()
	b := booking.Reconstitute(uuid.New(), listingID, uuid.New(), checkIn, checkOut,
		2, status, 1_000_000, 1_000_000*int64(booking.Nights(checkIn, checkOut)), "VND",
		1, createdAt, createdAt)
	repo.add(b)
	return b
}

func TestAvailability(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	listingID := uuid.New()

	newService := func(repo *fakeBookingRepo) *AvailabilityService {
		svc := NewAvailabilityService(repo, 15*time.Minute, zap.NewNop())
		svc.now = func() time.Time { return now }
		return svc
	}

	t.Run("no bookings", func(t *testing.T) {
		svc := newService(newFakeBookingRepo())
		available, err := svc.IsAvailable(context.Background(), listingID, date(2026, 7, 1), date(2026, 7, 4))
		require.NoError(t, err)
		assert.True(t, available)
	})

	t.Run("confirmed booking blocks overlap", func(t *testing.T) {
		repo := newFakeBookingRepo()
		seedBooking(t, repo, listingID, date(2026, 7, 1), date(2026, 7, 4), booking.StatusConfirmed, now.Add(-time.Hour))

		svc := newService(repo)
		available, err := svc.IsAvailable(context.Background(), listingID, date(2026, 7, 3), date(2026, 7, 6))
		require.NoError(t, err)
		assert.False(t, available)
	})

	t.Run("back-to-back stay is allowed", func(t *testing.T) {
		repo := newFakeBookingRepo()
		seedBooking(t, repo, listingID, date(2026, 7, 1), date(2026, 7, 4), booking.StatusConfirmed, now.Add(-time.Hour))

		svc := newService(repo)
		available, err := svc.IsAvailable(context.Background(), listingID, date(2026, 7, 4), date(2026, 7, 7))
		require.NoError(t, err)
		assert.True(t, available)
	})

	t.Run("fresh pending hold blocks", func(t *testing.T) {
		repo := newFakeBookingRepo()
		seedBooking(t, repo, listingID, date(2026, 7, 1), date(2026, 7, 4), booking.StatusPendingPayment, now.Add(-5*time.Minute))

		svc := newService(repo)
		available, err := svc.IsAvailable(context.Background(), listingID, date(2026, 7, 1), date(2026, 7, 4))
		require.NoError(t, err)
		assert.False(t, available)
	})

	t.Run("expired pending hold no longer blocks", func(t *testing.T) {
		repo := newFakeBookingRepo()
		seedBooking(t, repo, listingID, date(2026, 7, 1), date(2026, 7, 4), booking.StatusPendingPayment, now.Add(-16*time.Minute))

		svc := newService(repo)
		available, err := svc.IsAvailable(context.Background(), listingID, date(2026, 7, 1), date(2026, 7, 4))
		require.NoError(t, err)
		assert.True(t, available)
	})

	t.Run("cancelled and completed never block", func(t *testing.T) {
		repo := newFakeBookingRepo()
		seedBooking(t, repo, listingID, date(2026, 7, 1), date(2026, 7, 4), booking.StatusCancelled, now.Add(-time.Hour))
		seedBooking(t, repo, listingID, date(2026, 7, 2), date(2026, 7, 5), booking.StatusCompleted, now.Add(-time.Hour))

		svc := newService(repo)
		available, err := svc.IsAvailable(context.Background(), listingID, date(2026, 7, 1), date(2026, 7, 5))
		require.NoError(t, err)
		assert.True(t, available)
	})

	t.Run("other listings do not interfere", func(t *testing.T) {
		repo := newFakeBookingRepo()
		seedBooking(t, repo, uuid.New(), date(2026, 7, 1), date(2026, 7, 4), booking.StatusConfirmed, now.Add(-time.Hour))

		svc := newService(repo)
		available, err := svc.IsAvailable(context.Background(), listingID, date(2026, 7, 1), date(2026, 7, 4))
		require.NoError(t, err)
		assert.True(t, available)
	})
}

func TestHoldCutoff(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewAvailabilityService(newFakeBookingRepo(), 15*time.Minute, zap.NewNop())
	svc.now = func() time.Time { return now }

	assert.Equal(t, now.Add(-15*time.Minute), svc.HoldCutoff())
}

package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietstay/service-booking/internal/pkg/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewBooking(t *testing.T) {
	listingID := uuid.New()
	guestID := uuid.New()

	b, err := NewBooking(listingID, guestID, date(2026, 7, 1), date(2026, 7, 4), 2, 1_500_000, "VND")
	require.NoError(t, err)

	assert.Equal(t, listingID, b.ListingID())
	assert.Equal(t, guestID, b.GuestID())
	assert.Equal(t, StatusPendingPayment, b.Status())
	assert.Equal(t, 2, b.GuestsCount())
	assert.Equal(t, int64(1_500_000), b.PriceSnapshot())
	assert.Equal(t, int64(4_500_000), b.TotalAmount(), "3 nights at the snapshotted price")
	assert.Equal(t, "VND", b.Currency())
	assert.Equal(t, int64(1), b.Version())
}

func TestNewBooking_TruncatesToDate(t *testing.T) {
	checkIn := time.Date(2026, 7, 1, 14, 30, 0, 0, time.UTC)
	checkOut := time.Date(2026, 7, 3, 9, 0, 0, 0, time.UTC)

	b, err := NewBooking(uuid.New(), uuid.New(), checkIn, checkOut, 1, 1_000_000, "VND")
	require.NoError(t, err)

	assert.Equal(t, date(2026, 7, 1), b.CheckIn())
	assert.Equal(t, date(2026, 7, 3), b.CheckOut())
	assert.Equal(t, int64(2_000_000), b.TotalAmount())
}

func TestNewBooking_Validation(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		guests   int
	}{
		{"check_out equals check_in", date(2026, 7, 1), date(2026, 7, 1), 1},
		{"check_out before check_in", date(2026, 7, 4), date(2026, 7, 1), 1},
		{"zero guests", date(2026, 7, 1), date(2026, 7, 4), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBooking(uuid.New(), uuid.New(), tt.checkIn, tt.checkOut, tt.guests, 1_000_000, "VND")
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestNights(t *testing.T) {
	assert.Equal(t, 1, Nights(date(2026, 7, 1), date(2026, 7, 2)))
	assert.Equal(t, 3, Nights(date(2026, 7, 1), date(2026, 7, 4)))
	assert.Equal(t, 0, Nights(date(2026, 7, 1), date(2026, 7, 1)))
	assert.Equal(t, -3, Nights(date(2026, 7, 4), date(2026, 7, 1)))
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		a1, a2, b1, b2 time.Time
		want           bool
	}{
		{"identical ranges", date(2026, 7, 1), date(2026, 7, 4), date(2026, 7, 1), date(2026, 7, 4), true},
		{"b inside a", date(2026, 7, 1), date(2026, 7, 10), date(2026, 7, 3), date(2026, 7, 5), true},
		{"a inside b", date(2026, 7, 3), date(2026, 7, 5), date(2026, 7, 1), date(2026, 7, 10), true},
		{"partial overlap left", date(2026, 7, 1), date(2026, 7, 4), date(2026, 7, 3), date(2026, 7, 6), true},
		{"partial overlap right", date(2026, 7, 3), date(2026, 7, 6), date(2026, 7, 1), date(2026, 7, 4), true},
		{"back to back, a before b", date(2026, 7, 1), date(2026, 7, 4), date(2026, 7, 4), date(2026, 7, 7), false},
		{"back to back, b before a", date(2026, 7, 4), date(2026, 7, 7), date(2026, 7, 1), date(2026, 7, 4), false},
		{"disjoint", date(2026, 7, 1), date(2026, 7, 3), date(2026, 7, 10), date(2026, 7, 12), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a1, tt.a2, tt.b1, tt.b2))
		})
	}
}

func TestBookingLifecycle(t *testing.T) {
	b, err := NewBooking(uuid.New(), uuid.New(), date(2026, 7, 1), date(2026, 7, 4), 2, 1_000_000, "VND")
	require.NoError(t, err)

	require.NoError(t, b.Confirm())
	assert.Equal(t, StatusConfirmed, b.Status())

	require.NoError(t, b.Complete())
	assert.Equal(t, StatusCompleted, b.Status())

	// Completed is terminal.
	assert.ErrorIs(t, b.Confirm(), domain.ErrInvalidState)
	assert.ErrorIs(t, b.Cancel(date(2026, 6, 1)), domain.ErrInvalidState)
}

func TestBooking_Cancel(t *testing.T) {
	t.Run("pending_payment cancels any time", func(t *testing.T) {
		b, err := NewBooking(uuid.New(), uuid.New(), date(2026, 7, 1), date(2026, 7, 4), 1, 1_000_000, "VND")
		require.NoError(t, err)

		require.NoError(t, b.Cancel(date(2026, 7, 2)))
		assert.Equal(t, StatusCancelled, b.Status())
	})

	t.Run("confirmed cancels before check-in", func(t *testing.T) {
		b, err := NewBooking(uuid.New(), uuid.New(), date(2026, 7, 1), date(2026, 7, 4), 1, 1_000_000, "VND")
		require.NoError(t, err)
		require.NoError(t, b.Confirm())

		require.NoError(t, b.Cancel(date(2026, 6, 30)))
		assert.Equal(t, StatusCancelled, b.Status())
	})

	t.Run("confirmed cannot cancel on or after check-in", func(t *testing.T) {
		b, err := NewBooking(uuid.New(), uuid.New(), date(2026, 7, 1), date(2026, 7, 4), 1, 1_000_000, "VND")
		require.NoError(t, err)
		require.NoError(t, b.Confirm())

		assert.ErrorIs(t, b.Cancel(date(2026, 7, 1)), domain.ErrInvalidState)
		assert.Equal(t, StatusConfirmed, b.Status())
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		b, err := NewBooking(uuid.New(), uuid.New(), date(2026, 7, 1), date(2026, 7, 4), 1, 1_000_000, "VND")
		require.NoError(t, err)
		require.NoError(t, b.Cancel(date(2026, 6, 1)))

		assert.ErrorIs(t, b.Confirm(), domain.ErrInvalidState)
		assert.ErrorIs(t, b.Complete(), domain.ErrInvalidState)
	})
}

func TestBooking_CompleteRequiresConfirmed(t *testing.T) {
	b, err := NewBooking(uuid.New(), uuid.New(), date(2026, 7, 1), date(2026, 7, 4), 1, 1_000_000, "VND")
	require.NoError(t, err)

	assert.ErrorIs(t, b.Complete(), domain.ErrInvalidState)
}

func TestBooking_IsReviewable(t *testing.T) {
	newConfirmed := func(t *testing.T) *Booking {
		t.Helper()
		b, err := NewBooking(uuid.New(), uuid.New(), date(2026, 7, 1), date(2026, 7, 4), 1, 1_000_000, "VND")
		require.NoError(t, err)
		require.NoError(t, b.Confirm())
		return b
	}

	t.Run("confirmed before check-out", func(t *testing.T) {
		assert.False(t, newConfirmed(t).IsReviewable(date(2026, 7, 3)))
	})

	t.Run("confirmed on check-out day", func(t *testing.T) {
		assert.True(t, newConfirmed(t).IsReviewable(date(2026, 7, 4)))
	})

	t.Run("completed is always reviewable", func(t *testing.T) {
		b := newConfirmed(t)
		require.NoError(t, b.Complete())
		assert.True(t, b.IsReviewable(date(2026, 7, 2)))
	})

	t.Run("pending_payment is never reviewable", func(t *testing.T) {
		b, err := NewBooking(uuid.New(), uuid.New(), date(2026, 7, 1), date(2026, 7, 4), 1, 1_000_000, "VND")
		require.NoError(t, err)
		assert.False(t, b.IsReviewable(date(2026, 8, 1)))
	})
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPendingPayment.CanTransitionTo(StatusConfirmed))
	assert.True(t, StatusPendingPayment.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusPendingPayment.CanTransitionTo(StatusCompleted))

	assert.True(t, StatusConfirmed.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusCancelled))

	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPendingPayment.IsTerminal())

	assert.False(t, Status("bogus").IsValid())
	assert.False(t, Status("bogus").CanTransitionTo(StatusConfirmed))
}

package payment

import (
	"context"

	"github.com/google/uuid"
)

// PaymentRepository defines the persistence contract for Payment aggregates.
type PaymentRepository interface {
	// FindByID retrieves a payment by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByTxnRef retrieves a payment by its provider-facing transaction
	// reference. This is the join key for inbound callbacks.
	FindByTxnRef(ctx context.Context, txnRef string) (*Payment, error)

	// FindByBookingID retrieves all payment attempts for a booking, newest first.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*Payment, error)

	// HasSucceededForBooking reports whether any attempt for the booking
	// has reached succeeded.
	HasSucceededForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error)

	// ListAll retrieves all payments with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Payment, int64, error)

	// CountByStatus returns payment counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new payment aggregate.
	Save(ctx context.Context, p *Payment) error

	// Update persists changes to an existing payment aggregate with optimistic locking.
	Update(ctx context.Context, p *Payment) error
}

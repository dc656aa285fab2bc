package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vietstay/service-booking/internal/pkg/kafka"
)

// Topics this service publishes to.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Event type names.
const (
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
	PaymentSettled   = "payment.settled"
	PaymentFailed    = "payment.failed"
)

// Publisher publishes CloudEvents; the notification dispatcher consumes them.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// BookingConfirmedEvent announces a booking reaching confirmed after settlement.
type BookingConfirmedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	ListingID   uuid.UUID `json:"listing_id"`
	GuestID     uuid.UUID `json:"guest_id"`
	CheckIn     time.Time `json:"check_in"`
	CheckOut    time.Time `json:"check_out"`
	TotalAmount int64     `json:"total_amount"`
	Currency    string    `json:"currency"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// BookingCancelledEvent announces a booking cancellation.
type BookingCancelledEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ListingID  uuid.UUID `json:"listing_id"`
	GuestID    uuid.UUID `json:"guest_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentSettledEvent announces a payment reaching a terminal settlement state.
type PaymentSettledEvent struct {
	PaymentID     uuid.UUID `json:"payment_id"`
	BookingID     uuid.UUID `json:"booking_id"`
	TxnRef        string    `json:"txn_ref"`
	ProviderTxnNo string    `json:"provider_txn_no,omitempty"`
	Status        string    `json:"status"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// PaymentFailedEvent announces a payment attempt that did not settle successfully.
type PaymentFailedEvent struct {
	PaymentID    uuid.UUID `json:"payment_id"`
	BookingID    uuid.UUID `json:"booking_id"`
	ResponseCode string    `json:"response_code"`
	OccurredAt   time.Time `json:"occurred_at"`
}

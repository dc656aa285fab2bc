package settlement

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vietstay/service-booking/internal/domain/booking"
	"github.com/vietstay/service-booking/internal/domain/payment"
	"github.com/vietstay/service-booking/internal/events"
	"github.com/vietstay/service-booking/internal/pkg/domain"
	"github.com/vietstay/service-booking/internal/pkg/kafka"
	"github.com/vietstay/service-booking/internal/vnpay"
)

// Result describes the outcome of reconciling one inbound callback.
type Result struct {
	PaymentID        uuid.UUID
	BookingID        uuid.UUID
	Status           payment.Status
	ResponseCode     string
	AlreadySettled   bool
	BookingConfirmed bool
}

// Reconciler applies a verified payment callback to Payment and Booking state
// exactly once. The browser-return and the server notification both converge
// here; duplicate deliveries are no-ops on financial state.
type Reconciler struct {
	payments payment.PaymentRepository
	bookings booking.BookingRepository
	gateway  *vnpay.Gateway
	producer events.Publisher
	logger   *zap.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(
	payments payment.PaymentRepository,
	bookings booking.BookingRepository,
	gateway *vnpay.Gateway,
	producer events.Publisher,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		payments: payments,
		bookings: bookings,
		gateway:  gateway,
		producer: producer,
		logger:   logger,
	}
}

// Settle verifies the callback and applies it. Nothing is mutated before the
// signature and amount checks pass. Concurrency between the two callback
// paths is resolved by the payment's optimistic version: the loser of a race
// reloads and reports the settled state instead of double-applying.
func (r *Reconciler) Settle(ctx context.Context, query url.Values) (*Result, error) {
	cb, err := r.gateway.ParseCallback(query)
	if err != nil {
		return nil, err
	}

	p, err := r.payments.FindByTxnRef(ctx, cb.TxnRef)
	if err != nil {
		return nil, err
	}

	expected := p.Amount() * vnpay.AmountMultiplier
	if cb.Amount != expected {
		r.logger.Warn("callback amount mismatch",
			zap.String("txn_ref", cb.TxnRef),
			zap.Int64("expected", expected),
			zap.Int64("got", cb.Amount),
		)
		return nil, domain.NewAmountMismatchError(expected, cb.Amount)
	}

	// Idempotency guard: a payment that already left pending is never mutated
	// again; the duplicate delivery still gets a well-formed result.
	if p.Status() != payment.StatusPending {
		r.logger.Info("callback for already-settled payment",
			zap.String("payment_id", p.ID().String()),
			zap.String("status", string(p.Status())),
		)
		return &Result{
			PaymentID:      p.ID(),
			BookingID:      p.BookingID(),
			Status:         p.Status(),
			ResponseCode:   cb.ResponseCode,
			AlreadySettled: true,
		}, nil
	}

	if err := r.applyOutcome(ctx, p, cb); err != nil {
		return nil, err
	}
	p.MergeResponsePayload(cb.Raw)
	p.IncrementVersion()

	if err := r.payments.Update(ctx, p); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return r.resolveRace(ctx, cb)
		}
		return nil, err
	}

	result := &Result{
		PaymentID:    p.ID(),
		BookingID:    p.BookingID(),
		Status:       p.Status(),
		ResponseCode: cb.ResponseCode,
	}

	if p.Status() == payment.StatusSucceeded {
		result.BookingConfirmed = r.confirmBooking(ctx, p.BookingID())
	}

	r.logger.Info("payment settled",
		zap.String("payment_id", p.ID().String()),
		zap.String("txn_ref", p.TxnRef()),
		zap.String("status", string(p.Status())),
		zap.Bool("booking_confirmed", result.BookingConfirmed),
	)
	r.publishSettled(ctx, p)

	return result, nil
}

// SettleNotification runs Settle for the server-to-server path and maps the
// outcome to the provider's fixed acknowledgement vocabulary. Verification
// failures return a generic rejection; details stay in the logs.
func (r *Reconciler) SettleNotification(ctx context.Context, query url.Values) vnpay.Ack {
	result, err := r.Settle(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) {
			return vnpay.Ack{RspCode: vnpay.RspCodeInvalidChecksum, Message: "Invalid Checksum"}
		}
		r.logger.Error("notification settlement failed", zap.Error(err))
		return vnpay.Ack{RspCode: vnpay.RspCodeUnknownError, Message: "Unknown Error"}
	}

	r.logger.Info("notification settled",
		zap.String("payment_id", result.PaymentID.String()),
		zap.String("status", string(result.Status)),
		zap.Bool("already_settled", result.AlreadySettled),
	)
	return vnpay.Ack{RspCode: vnpay.RspCodeSuccess, Message: "Confirm Success"}
}

// applyOutcome maps the provider outcome code onto the payment state machine.
// At most one attempt per booking may ever reach succeeded: a success callback
// for a booking that already has a succeeded attempt is recorded as failed.
// The partial unique index on payments(booking_id) backstops this at the
// database level.
func (r *Reconciler) applyOutcome(ctx context.Context, p *payment.Payment, cb *vnpay.Callback) error {
	switch {
	case cb.IsSuccess():
		paid, err := r.payments.HasSucceededForBooking(ctx, p.BookingID())
		if err != nil {
			return err
		}
		if paid {
			r.logger.Warn("success callback for an already-paid booking",
				zap.String("payment_id", p.ID().String()),
				zap.String("booking_id", p.BookingID().String()),
				zap.String("txn_ref", p.TxnRef()),
			)
			return p.MarkFailed(cb.ResponseCode)
		}
		return p.MarkSucceeded(cb.TransactionNo, cb.ResponseCode, cb.PayDate)
	case cb.IsUserCancelled():
		return p.MarkCancelled(cb.ResponseCode)
	default:
		return p.MarkFailed(cb.ResponseCode)
	}
}

// resolveRace handles losing an optimistic-lock race against the other
// callback path: reload and report the winner's settlement.
func (r *Reconciler) resolveRace(ctx context.Context, cb *vnpay.Callback) (*Result, error) {
	p, err := r.payments.FindByTxnRef(ctx, cb.TxnRef)
	if err != nil {
		return nil, err
	}
	if p.Status() == payment.StatusPending {
		return nil, domain.NewConflictError("payment settlement raced and did not converge")
	}

	return &Result{
		PaymentID:      p.ID(),
		BookingID:      p.BookingID(),
		Status:         p.Status(),
		ResponseCode:   cb.ResponseCode,
		AlreadySettled: true,
	}, nil
}

// confirmBooking transitions the booking to confirmed after a successful
// settlement. The payment record is authoritative: a missing or already
// advanced booking is logged, never fatal.
func (r *Reconciler) confirmBooking(ctx context.Context, bookingID uuid.UUID) bool {
	b, err := r.bookings.FindByID(ctx, bookingID)
	if err != nil {
		r.logger.Warn("settled payment has no booking",
			zap.String("booking_id", bookingID.String()),
			zap.Error(err),
		)
		return false
	}

	if err := b.Confirm(); err != nil {
		r.logger.Warn("booking not confirmable after settlement",
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(b.Status())),
		)
		return false
	}
	b.IncrementVersion()
	if err := r.bookings.Update(ctx, b); err != nil {
		r.logger.Warn("failed to persist booking confirmation",
			zap.String("booking_id", bookingID.String()),
			zap.Error(err),
		)
		return false
	}

	r.publishBookingConfirmed(ctx, b)
	return true
}

// publishSettled publishes the payment outcome; failures are logged, not propagated.
func (r *Reconciler) publishSettled(ctx context.Context, p *payment.Payment) {
	if p.Status() == payment.StatusSucceeded {
		event := events.PaymentSettledEvent{
			PaymentID:     p.ID(),
			BookingID:     p.BookingID(),
			TxnRef:        p.TxnRef(),
			ProviderTxnNo: p.ProviderTxnNo(),
			Status:        string(p.Status()),
			Amount:        p.Amount(),
			Currency:      p.Currency(),
			OccurredAt:    time.Now().UTC(),
		}
		ce, err := kafka.NewCloudEvent("service-booking", events.PaymentSettled, event)
		if err != nil {
			r.logger.Error("failed to create payment settled event", zap.Error(err))
			return
		}
		if err := r.producer.PublishEvent(ctx, events.TopicPaymentEvents, ce); err != nil {
			r.logger.Error("failed to publish payment settled event", zap.Error(err))
		}
		return
	}

	event := events.PaymentFailedEvent{
		PaymentID:    p.ID(),
		BookingID:    p.BookingID(),
		ResponseCode: p.ResponseCode(),
		OccurredAt:   time.Now().UTC(),
	}
	ce, err := kafka.NewCloudEvent("service-booking", events.PaymentFailed, event)
	if err != nil {
		r.logger.Error("failed to create payment failed event", zap.Error(err))
		return
	}
	if err := r.producer.PublishEvent(ctx, events.TopicPaymentEvents, ce); err != nil {
		r.logger.Error("failed to publish payment failed event", zap.Error(err))
	}
}

// publishBookingConfirmed publishes the confirmation; failures are logged, not propagated.
func (r *Reconciler) publishBookingConfirmed(ctx context.Context, b *booking.Booking) {
	event := events.BookingConfirmedEvent{
		BookingID:   b.ID(),
		ListingID:   b.ListingID(),
		GuestID:     b.GuestID(),
		CheckIn:     b.CheckIn(),
		CheckOut:    b.CheckOut(),
		TotalAmount: b.TotalAmount(),
		Currency:    b.Currency(),
		OccurredAt:  time.Now().UTC(),
	}
	ce, err := kafka.NewCloudEvent("service-booking", events.BookingConfirmed, event)
	if err != nil {
		r.logger.Error("failed to create booking confirmed event", zap.Error(err))
		return
	}
	if err := r.producer.PublishEvent(ctx, events.TopicBookingEvents, ce); err != nil {
		r.logger.Error("failed to publish booking confirmed event", zap.Error(err))
	}
}

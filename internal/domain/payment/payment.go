package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vietstay/service-booking/internal/pkg/domain"
)

// ProviderVNPay is the only payment provider this service integrates with.
const ProviderVNPay = "vnpay"

// Payment is the aggregate root for one attempt to pay for a booking via an
// external provider. A booking may have many attempts; at most one may ever
// reach succeeded.
type Payment struct {
	id              uuid.UUID
	bookingID       uuid.UUID
	provider        string
	status          Status
	amount          int64
	currency        string
	txnRef          string
	providerTxnNo   string
	responseCode    string
	paidAt          *time.Time
	requestPayload  map[string]string
	responsePayload map[string]string
	version         int64
	createdAt       time.Time
	updatedAt       time.Time
}

// NewPayment creates a pending payment for the booking. The transaction
// reference sent to the provider is the payment id with separators stripped,
// since the gateway rejects non-alphanumeric references.
func NewPayment(bookingID uuid.UUID, amount int64, currency string) *Payment {
	id := uuid.New()
	now := time.Now().UTC()
	return &Payment{
		id:              id,
		bookingID:       bookingID,
		provider:        ProviderVNPay,
		status:          StatusPending,
		amount:          amount,
		currency:        currency,
		txnRef:          strings.ReplaceAll(id.String(), "-", ""),
		requestPayload:  map[string]string{},
		responsePayload: map[string]string{},
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}
}

// --- Getters ---

func (p *Payment) ID() uuid.UUID                      { return p.id }
func (p *Payment) BookingID() uuid.UUID               { return p.bookingID }
func (p *Payment) Provider() string                   { return p.provider }
func (p *Payment) Status() Status                     { return p.status }
func (p *Payment) Amount() int64                      { return p.amount }
func (p *Payment) Currency() string                   { return p.currency }
func (p *Payment) TxnRef() string                     { return p.txnRef }
func (p *Payment) ProviderTxnNo() string              { return p.providerTxnNo }
func (p *Payment) ResponseCode() string               { return p.responseCode }
func (p *Payment) PaidAt() *time.Time                 { return p.paidAt }
func (p *Payment) RequestPayload() map[string]string  { return p.requestPayload }
func (p *Payment) ResponsePayload() map[string]string { return p.responsePayload }
func (p *Payment) Version() int64                     { return p.version }
func (p *Payment) CreatedAt() time.Time               { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time               { return p.updatedAt }

// --- Behavior / State Transitions ---

// MarkSucceeded transitions from pending to succeeded and stamps paid_at.
func (p *Payment) MarkSucceeded(providerTxnNo, responseCode string, paidAt time.Time) error {
	if !p.status.CanTransitionTo(StatusSucceeded) {
		return domain.NewInvalidStateError(string(p.status), string(StatusSucceeded))
	}
	p.status = StatusSucceeded
	p.providerTxnNo = providerTxnNo
	p.responseCode = responseCode
	t := paidAt.UTC()
	p.paidAt = &t
	p.updatedAt = time.Now().UTC()
	return nil
}

// MarkCancelled transitions from pending to cancelled (user abandoned payment).
func (p *Payment) MarkCancelled(responseCode string) error {
	if !p.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidStateError(string(p.status), string(StatusCancelled))
	}
	p.status = StatusCancelled
	p.responseCode = responseCode
	p.updatedAt = time.Now().UTC()
	return nil
}

// MarkFailed transitions from pending to failed.
func (p *Payment) MarkFailed(responseCode string) error {
	if !p.status.CanTransitionTo(StatusFailed) {
		return domain.NewInvalidStateError(string(p.status), string(StatusFailed))
	}
	p.status = StatusFailed
	p.responseCode = responseCode
	p.updatedAt = time.Now().UTC()
	return nil
}

// SetRequestPayload records the outbound parameter set for audit. The request
// payload is written once at redirect creation and never overwritten.
func (p *Payment) SetRequestPayload(params map[string]string) {
	p.requestPayload = map[string]string{}
	for k, v := range params {
		p.requestPayload[k] = v
	}
	p.updatedAt = time.Now().UTC()
}

// MergeResponsePayload accumulates inbound callback parameters into the audit
// trail without touching the original request payload.
func (p *Payment) MergeResponsePayload(params map[string]string) {
	if p.responsePayload == nil {
		p.responsePayload = map[string]string{}
	}
	for k, v := range params {
		p.responsePayload[k] = v
	}
	p.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (p *Payment) IncrementVersion() {
	p.version++
	p.updatedAt = time.Now().UTC()
}

// Reconstitute rebuilds a Payment from persisted data.
func Reconstitute(
	id, bookingID uuid.UUID,
	provider string,
	status Status,
	amount int64,
	currency, txnRef, providerTxnNo, responseCode string,
	paidAt *time.Time,
	requestPayload, responsePayload map[string]string,
	version int64,
	createdAt, updatedAt time.Time,
) *Payment {
	if requestPayload == nil {
		requestPayload = map[string]string{}
	}
	if responsePayload == nil {
		responsePayload = map[string]string{}
	}
	return &Payment{
		id:              id,
		bookingID:       bookingID,
		provider:        provider,
		status:          status,
		amount:          amount,
		currency:        currency,
		txnRef:          txnRef,
		providerTxnNo:   providerTxnNo,
		responseCode:    responseCode,
		paidAt:          paidAt,
		requestPayload:  requestPayload,
		responsePayload: responsePayload,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

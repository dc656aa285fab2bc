package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vietstay/service-booking/internal/domain/booking"
	"github.com/vietstay/service-booking/internal/domain/payment"
	"github.com/vietstay/service-booking/internal/pkg/auth"
	"github.com/vietstay/service-booking/internal/pkg/domain"
	"github.com/vietstay/service-booking/internal/vnpay"
)

// PaymentDTO is the API response DTO for payment data.
type PaymentDTO struct {
	ID            uuid.UUID  `json:"id"`
	BookingID     uuid.UUID  `json:"booking_id"`
	Provider      string     `json:"provider"`
	Status        string     `json:"status"`
	Amount        int64      `json:"amount"`
	Currency      string     `json:"currency"`
	TxnRef        string     `json:"txn_ref"`
	ProviderTxnNo string     `json:"provider_txn_no,omitempty"`
	ResponseCode  string     `json:"response_code,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	Version       int64      `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// RedirectDTO carries the signed payment URL back to the client.
type RedirectDTO struct {
	Payment     PaymentDTO `json:"payment"`
	RedirectURL string     `json:"redirect_url"`
}

// PaymentService translates pending bookings into provider redirects and
// serves payment queries. Settlement lives in the reconciler.
type PaymentService struct {
	payments payment.PaymentRepository
	bookings booking.BookingRepository
	gateway  *vnpay.Gateway
	logger   *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	payments payment.PaymentRepository,
	bookings booking.BookingRepository,
	gateway *vnpay.Gateway,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		payments: payments,
		bookings: bookings,
		gateway:  gateway,
		logger:   logger,
	}
}

// CreateRedirect creates a pending payment for the booking and returns the
// signed provider redirect URL. The booking must still be pending_payment;
// the status re-check here closes the gap left by lazily expiring holds.
func (s *PaymentService) CreateRedirect(ctx context.Context, requesterID, bookingID uuid.UUID, clientIP string) (*RedirectDTO, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.GuestID() != requesterID {
		return nil, domain.NewForbiddenError("only the booking's guest may pay for it")
	}
	if b.Status() != booking.StatusPendingPayment {
		return nil, domain.NewConflictError("booking is not awaiting payment")
	}

	p := payment.NewPayment(b.ID(), b.TotalAmount(), b.Currency())
	if err := s.payments.Save(ctx, p); err != nil {
		return nil, err
	}

	orderInfo := fmt.Sprintf("Thanh toan dat phong %s", b.ID())
	redirectURL, params, err := s.gateway.BuildRedirectURL(p, orderInfo, clientIP)
	if err != nil {
		return nil, err
	}

	// Keep the outbound parameter set for audit.
	p.SetRequestPayload(params)
	p.IncrementVersion()
	if err := s.payments.Update(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("payment redirect created",
		zap.String("payment_id", p.ID().String()),
		zap.String("booking_id", b.ID().String()),
		zap.String("txn_ref", p.TxnRef()),
		zap.Int64("amount", p.Amount()),
	)

	return &RedirectDTO{Payment: toPaymentDTO(p), RedirectURL: redirectURL}, nil
}

// GetPayment retrieves a payment visible to the requester: the paying guest
// or an admin.
func (s *PaymentService) GetPayment(ctx context.Context, requesterID uuid.UUID, role auth.Role, paymentID uuid.UUID) (*PaymentDTO, error) {
	p, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if role != auth.RoleAdmin {
		b, err := s.bookings.FindByID(ctx, p.BookingID())
		if err != nil || b.GuestID() != requesterID {
			return nil, domain.NewForbiddenError("not allowed to view this payment")
		}
	}

	dto := toPaymentDTO(p)
	return &dto, nil
}

// ListBookingPayments retrieves all payment attempts for a booking.
func (s *PaymentService) ListBookingPayments(ctx context.Context, requesterID uuid.UUID, role auth.Role, bookingID uuid.UUID) ([]PaymentDTO, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if role != auth.RoleAdmin && b.GuestID() != requesterID {
		return nil, domain.NewForbiddenError("not allowed to view this booking's payments")
	}

	payments, err := s.payments.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	return dtos, nil
}

// --- Admin methods ---

// PaymentStatsDTO holds payment statistics for the admin dashboard.
type PaymentStatsDTO struct {
	TotalPayments int64            `json:"total_payments"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllPayments returns a paginated list of all payments (admin).
func (s *PaymentService) ListAllPayments(ctx context.Context, page, limit int) ([]PaymentDTO, int64, error) {
	payments, total, err := s.payments.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	return dtos, total, nil
}

// GetPaymentStats returns aggregate payment statistics (admin).
func (s *PaymentService) GetPaymentStats(ctx context.Context) (*PaymentStatsDTO, error) {
	counts, err := s.payments.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &PaymentStatsDTO{TotalPayments: total, ByStatus: counts}, nil
}

// toPaymentDTO maps a domain Payment to a PaymentDTO.
func toPaymentDTO(p *payment.Payment) PaymentDTO {
	return PaymentDTO{
		ID:            p.ID(),
		BookingID:     p.BookingID(),
		Provider:      p.Provider(),
		Status:        string(p.Status()),
		Amount:        p.Amount(),
		Currency:      p.Currency(),
		TxnRef:        p.TxnRef(),
		ProviderTxnNo: p.ProviderTxnNo(),
		ResponseCode:  p.ResponseCode(),
		PaidAt:        p.PaidAt(),
		Version:       p.Version(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

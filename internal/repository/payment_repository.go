package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	paymentDomain "github.com/vietstay/service-booking/internal/domain/payment"
	"github.com/vietstay/service-booking/internal/pkg/domain"
)

// PaymentModel is the GORM persistence model for the payments table.
type PaymentModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	BookingID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	Provider        string     `gorm:"type:varchar(20);not null;default:'vnpay'"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending'"`
	Amount          int64      `gorm:"not null"`
	Currency        string     `gorm:"type:varchar(3);not null;default:'VND'"`
	TxnRef          string     `gorm:"type:varchar(64);uniqueIndex;not null"`
	ProviderTxnNo   string     `gorm:"type:varchar(64)"`
	ResponseCode    string     `gorm:"type:varchar(8)"`
	PaidAt          *time.Time `gorm:"type:timestamptz"`
	RequestPayload  []byte     `gorm:"type:jsonb"`
	ResponsePayload []byte     `gorm:"type:jsonb"`
	Version         int64      `gorm:"not null;default:1"`
	CreatedAt       time.Time  `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt       time.Time  `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName specifies the table name for GORM.
func (PaymentModel) TableName() string {
	return "payments"
}

// PaymentRepositoryImpl is the GORM-based implementation of PaymentRepository.
type PaymentRepositoryImpl struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new GORM-based payment repository.
func NewPaymentRepository(db *gorm.DB) *PaymentRepositoryImpl {
	return &PaymentRepositoryImpl{db: db}
}

// FindByID retrieves a payment by its unique ID.
func (r *PaymentRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*paymentDomain.Payment, error) {
	var model PaymentModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Payment", id.String())
		}
		return nil, err
	}
	return paymentToDomain(&model)
}

// FindByTxnRef retrieves a payment by its provider-facing transaction reference.
func (r *PaymentRepositoryImpl) FindByTxnRef(ctx context.Context, txnRef string) (*paymentDomain.Payment, error) {
	var model PaymentModel
	if err := r.db.WithContext(ctx).Where("txn_ref = ?", txnRef).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Payment", txnRef)
		}
		return nil, err
	}
	return paymentToDomain(&model)
}

// FindByBookingID retrieves all payment attempts for a booking, newest first.
func (r *PaymentRepositoryImpl) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*paymentDomain.Payment, error) {
	var models []PaymentModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	payments := make([]*paymentDomain.Payment, len(models))
	for i := range models {
		p, err := paymentToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		payments[i] = p
	}
	return payments, nil
}

// HasSucceededForBooking reports whether any attempt for the booking succeeded.
func (r *PaymentRepositoryImpl) HasSucceededForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&PaymentModel{}).
		Where("booking_id = ? AND status = ?", bookingID, string(paymentDomain.StatusSucceeded)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListAll retrieves all payments with pagination (admin).
func (r *PaymentRepositoryImpl) ListAll(ctx context.Context, page, limit int) ([]*paymentDomain.Payment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&PaymentModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []PaymentModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	payments := make([]*paymentDomain.Payment, len(models))
	for i := range models {
		p, err := paymentToDomain(&models[i])
		if err != nil {
			return nil, 0, err
		}
		payments[i] = p
	}
	return payments, total, nil
}

// CountByStatus returns payment counts grouped by status (admin).
func (r *PaymentRepositoryImpl) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&PaymentModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new payment aggregate.
func (r *PaymentRepositoryImpl) Save(ctx context.Context, p *paymentDomain.Payment) error {
	model, err := paymentToModel(p)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists changes to an existing payment with optimistic locking.
func (r *PaymentRepositoryImpl) Update(ctx context.Context, p *paymentDomain.Payment) error {
	model, err := paymentToModel(p)
	if err != nil {
		return err
	}
	previousVersion := p.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&PaymentModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("payment was modified by another transaction")
	}
	return nil
}

// paymentToDomain maps a PaymentModel to the domain Payment aggregate.
func paymentToDomain(model *PaymentModel) (*paymentDomain.Payment, error) {
	requestPayload, err := unmarshalPayload(model.RequestPayload)
	if err != nil {
		return nil, err
	}
	responsePayload, err := unmarshalPayload(model.ResponsePayload)
	if err != nil {
		return nil, err
	}

	return paymentDomain.Reconstitute(
		model.ID,
		model.BookingID,
		model.Provider,
		paymentDomain.Status(model.Status),
		model.Amount,
		model.Currency,
		model.TxnRef,
		model.ProviderTxnNo,
		model.ResponseCode,
		model.PaidAt,
		requestPayload,
		responsePayload,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	), nil
}

// paymentToModel maps a domain Payment aggregate to a PaymentModel.
func paymentToModel(p *paymentDomain.Payment) (*PaymentModel, error) {
	requestPayload, err := json.Marshal(p.RequestPayload())
	if err != nil {
		return nil, err
	}
	responsePayload, err := json.Marshal(p.ResponsePayload())
	if err != nil {
		return nil, err
	}

	return &PaymentModel{
		ID:              p.ID(),
		BookingID:       p.BookingID(),
		Provider:        p.Provider(),
		Status:          string(p.Status()),
		Amount:          p.Amount(),
		Currency:        p.Currency(),
		TxnRef:          p.TxnRef(),
		ProviderTxnNo:   p.ProviderTxnNo(),
		ResponseCode:    p.ResponseCode(),
		PaidAt:          p.PaidAt(),
		RequestPayload:  requestPayload,
		ResponsePayload: responsePayload,
		Version:         p.Version(),
		CreatedAt:       p.CreatedAt(),
		UpdatedAt:       p.UpdatedAt(),
	}, nil
}

func unmarshalPayload(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return map[string]string{}, nil
	}
	var payload map[string]string
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

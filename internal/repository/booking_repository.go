package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/vietstay/service-booking/internal/domain/booking"
	"github.com/vietstay/service-booking/internal/pkg/domain"
)

// BookingModel is the GORM persistence model for the bookings table.
type BookingModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ListingID     uuid.UUID `gorm:"type:uuid;not null;index"`
	GuestID       uuid.UUID `gorm:"type:uuid;not null;index"`
	CheckIn       time.Time `gorm:"type:date;not null"`
	CheckOut      time.Time `gorm:"type:date;not null"`
	GuestsCount   int       `gorm:"not null;default:1"`
	Status        string    `gorm:"type:varchar(20);not null;default:'pending_payment'"`
	PriceSnapshot int64     `gorm:"not null"`
	TotalAmount   int64     `gorm:"not null"`
	Currency      string    `gorm:"type:varchar(3);not null;default:'VND'"`
	Version       int64     `gorm:"not null;default:1"`
	CreatedAt     time.Time `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt     time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName specifies the table name for GORM.
func (BookingModel) TableName() string {
	return "bookings"
}

// BookingRepositoryImpl is the GORM-based implementation of BookingRepository.
type BookingRepositoryImpl struct {
	db *gorm.DB
}

// NewBookingRepository creates a new GORM-based booking repository.
func NewBookingRepository(db *gorm.DB) *BookingRepositoryImpl {
	return &BookingRepositoryImpl{db: db}
}

// FindByID retrieves a booking by its unique ID.
func (r *BookingRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, err
	}
	return bookingToDomain(&model), nil
}

// FindByGuestID retrieves bookings belonging to a guest with pagination.
func (r *BookingRepositoryImpl) FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPage(ctx, r.db.WithContext(ctx).Where("guest_id = ?", guestID), page, limit)
}

// FindByListingID retrieves bookings for a listing with pagination.
func (r *BookingRepositoryImpl) FindByListingID(ctx context.Context, listingID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPage(ctx, r.db.WithContext(ctx).Where("listing_id = ?", listingID), page, limit)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *BookingRepositoryImpl) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPage(ctx, r.db.WithContext(ctx).Model(&BookingModel{}), page, limit)
}

func (r *BookingRepositoryImpl) findPage(ctx context.Context, query *gorm.DB, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := query.Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = bookingToDomain(&models[i])
	}
	return bookings, total, nil
}

// blockingClause matches bookings for the listing whose half-open date range
// overlaps [checkIn, checkOut) and which still block it: confirmed, or
// pending_payment created after holdCutoff.
func blockingClause(query *gorm.DB, listingID uuid.UUID, checkIn, checkOut, holdCutoff time.Time) *gorm.DB {
	return query.
		Where("listing_id = ?", listingID).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn).
		Where("(status = ? OR (status = ? AND created_at > ?))",
			string(bookingDomain.StatusConfirmed),
			string(bookingDomain.StatusPendingPayment),
			holdCutoff,
		)
}

// FindBlocking returns the bookings that currently block the requested range.
func (r *BookingRepositoryImpl) FindBlocking(ctx context.Context, listingID uuid.UUID, checkIn, checkOut time.Time, holdCutoff time.Time) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	query := blockingClause(r.db.WithContext(ctx), listingID, checkIn, checkOut, holdCutoff)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = bookingToDomain(&models[i])
	}
	return bookings, nil
}

// SaveIfAvailable re-runs the blocking check and inserts the booking inside
// one transaction, serialized per listing via a Postgres advisory lock. This
// closes the check-then-insert race between concurrent reservations.
func (r *BookingRepositoryImpl) SaveIfAvailable(ctx context.Context, b *bookingDomain.Booking, holdCutoff time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", b.ListingID().String()).Error; err != nil {
			return err
		}

		var count int64
		query := blockingClause(tx.Model(&BookingModel{}), b.ListingID(), b.CheckIn(), b.CheckOut(), holdCutoff)
		if err := query.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.NewConflictError("requested dates are no longer available")
		}

		return tx.Create(bookingToModel(b)).Error
	})
}

// Save persists a new booking.
func (r *BookingRepositoryImpl) Save(ctx context.Context, b *bookingDomain.Booking) error {
	return r.db.WithContext(ctx).Create(bookingToModel(b)).Error
}

// Update persists changes to an existing booking with optimistic locking.
func (r *BookingRepositoryImpl) Update(ctx context.Context, b *bookingDomain.Booking) error {
	model := bookingToModel(b)
	previousVersion := b.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *BookingRepositoryImpl) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
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

// bookingToDomain maps a BookingModel to the domain Booking aggregate.
func bookingToDomain(model *BookingModel) *bookingDomain.Booking {
	return bookingDomain.Reconstitute(
		model.ID,
		model.ListingID,
		model.GuestID,
		model.CheckIn,
		model.CheckOut,
		model.GuestsCount,
		bookingDomain.Status(model.Status),
		model.PriceSnapshot,
		model.TotalAmount,
		model.Currency,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

// bookingToModel maps a domain Booking aggregate to a BookingModel.
func bookingToModel(b *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:            b.ID(),
		ListingID:     b.ListingID(),
		GuestID:       b.GuestID(),
		CheckIn:       b.CheckIn(),
		CheckOut:      b.CheckOut(),
		GuestsCount:   b.GuestsCount(),
		Status:        string(b.Status()),
		PriceSnapshot: b.PriceSnapshot(),
		TotalAmount:   b.TotalAmount(),
		Currency:      b.Currency(),
		Version:       b.Version(),
		CreatedAt:     b.CreatedAt(),
		UpdatedAt:     b.UpdatedAt(),
	}
}

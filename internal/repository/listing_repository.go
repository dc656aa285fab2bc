package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	listingDomain "github.com/vietstay/service-booking/internal/domain/listing"
	"github.com/vietstay/service-booking/internal/pkg/domain"
)

// ListingModel is the GORM persistence model for the listings table.
type ListingModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	HostID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Title         string    `gorm:"type:varchar(255);not null"`
	PricePerNight int64     `gorm:"not null"`
	MaxGuests     int       `gorm:"not null;default:1"`
	Status        string    `gorm:"type:varchar(20);not null;default:'draft'"`
	CreatedAt     time.Time `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt     time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName specifies the table name for GORM.
func (ListingModel) TableName() string {
	return "listings"
}

// ListingRepositoryImpl is the GORM-based implementation of ListingRepository.
type ListingRepositoryImpl struct {
	db *gorm.DB
}

// NewListingRepository creates a new GORM-based listing repository.
func NewListingRepository(db *gorm.DB) *ListingRepositoryImpl {
	return &ListingRepositoryImpl{db: db}
}

// FindByID retrieves a listing by its unique ID.
func (r *ListingRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*listingDomain.Listing, error) {
	var model ListingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Listing", id.String())
		}
		return nil, err
	}
	return listingToDomain(&model), nil
}

// listingToDomain maps a ListingModel to the domain Listing.
func listingToDomain(model *ListingModel) *listingDomain.Listing {
	return listingDomain.Reconstitute(
		model.ID,
		model.HostID,
		model.Title,
		model.PricePerNight,
		model.MaxGuests,
		listingDomain.Status(model.Status),
		model.CreatedAt,
		model.UpdatedAt,
	)
}

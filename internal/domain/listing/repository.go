package listing

import (
	"context"

	"github.com/google/uuid"
)

// ListingRepository defines the read contract for listings.
type ListingRepository interface {
	// FindByID retrieves a listing by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)
}

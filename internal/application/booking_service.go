package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vietstay/service-booking/internal/domain/booking"
	"github.com/vietstay/service-booking/internal/domain/listing"
	"github.com/vietstay/service-booking/internal/domain/payment"
	"github.com/vietstay/service-booking/internal/events"
	"github.com/vietstay/service-booking/internal/pkg/auth"
	"github.com/vietstay/service-booking/internal/pkg/domain"
	"github.com/vietstay/service-booking/internal/pkg/kafka"
)

const dateLayout = "2006-01-02"

// CreateBookingRequest is the DTO for requesting a new reservation.
type CreateBookingRequest struct {
	ListingID   uuid.UUID `json:"listing_id" binding:"required"`
	CheckIn     string    `json:"check_in" binding:"required"`
	CheckOut    string    `json:"check_out" binding:"required"`
	GuestsCount int       `json:"guests_count" binding:"required,gt=0"`
}

// BookingDTO is the API response DTO for booking data.
type BookingDTO struct {
	ID            uuid.UUID `json:"id"`
	ListingID     uuid.UUID `json:"listing_id"`
	GuestID       uuid.UUID `json:"guest_id"`
	CheckIn       string    `json:"check_in"`
	CheckOut      string    `json:"check_out"`
	GuestsCount   int       `json:"guests_count"`
	Status        string    `json:"status"`
	PricePerNight int64     `json:"price_per_night"`
	TotalAmount   int64     `json:"total_amount"`
	Currency      string    `json:"currency"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BookingService owns the reservation lifecycle: creation with a price
// snapshot, cancellation, and guest checkout.
type BookingService struct {
	bookings     booking.BookingRepository
	listings     listing.ListingRepository
	payments     payment.PaymentRepository
	availability *AvailabilityService
	producer     events.Publisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings booking.BookingRepository,
	listings listing.ListingRepository,
	payments payment.PaymentRepository,
	availability *AvailabilityService,
	producer events.Publisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:     bookings,
		listings:     listings,
		payments:     payments,
		availability: availability,
		producer:     producer,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateBooking validates a reservation request and inserts a pending_payment
// booking with the listing's nightly price snapshotted. The availability check
// and the insert run atomically per listing.
func (s *BookingService) CreateBooking(ctx context.Context, guestID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	checkIn, err := time.ParseInLocation(dateLayout, req.CheckIn, time.UTC)
	if err != nil {
		return nil, domain.NewValidationError("check_in must be a yyyy-mm-dd date")
	}
	checkOut, err := time.ParseInLocation(dateLayout, req.CheckOut, time.UTC)
	if err != nil {
		return nil, domain.NewValidationError("check_out must be a yyyy-mm-dd date")
	}

	if booking.Nights(checkIn, checkOut) < 1 {
		return nil, domain.NewValidationError("check_out must be after check_in")
	}
	if checkIn.Before(today(s.now)) {
		return nil, domain.NewValidationError("check_in must be today or later")
	}

	l, err := s.listings.FindByID(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}
	if !l.IsBookable() {
		return nil, domain.NewNotFoundError("Listing", req.ListingID.String())
	}
	if req.GuestsCount > l.MaxGuests() {
		return nil, domain.NewValidationError("guests_count exceeds listing capacity")
	}
	if l.HostID() == guestID {
		return nil, domain.NewValidationError("guests cannot book their own listing")
	}

	available, err := s.availability.IsAvailable(ctx, l.ID(), checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, domain.NewConflictError("requested dates are not available")
	}

	b, err := booking.NewBooking(l.ID(), guestID, checkIn, checkOut, req.GuestsCount, l.PricePerNight(), "VND")
	if err != nil {
		return nil, err
	}

	// Re-checks availability under the listing lock before inserting.
	if err := s.bookings.SaveIfAvailable(ctx, b, s.availability.HoldCutoff()); err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", b.ID().String()),
		zap.String("listing_id", l.ID().String()),
		zap.String("guest_id", guestID.String()),
		zap.Int64("total_amount", b.TotalAmount()),
	)

	dto := toBookingDTO(b)
	return &dto, nil
}

// CancelBooking cancels a booking on behalf of its guest. Confirmed bookings
// can only be cancelled while check-in is still in the future.
func (s *BookingService) CancelBooking(ctx context.Context, requesterID, bookingID uuid.UUID) (*BookingDTO, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.GuestID() != requesterID {
		return nil, domain.NewForbiddenError("only the booking's guest may cancel it")
	}

	if err := b.Cancel(s.now().UTC()); err != nil {
		return nil, err
	}
	b.IncrementVersion()
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("booking cancelled",
		zap.String("booking_id", b.ID().String()),
		zap.String("guest_id", requesterID.String()),
	)
	s.publishBookingCancelled(ctx, b)

	dto := toBookingDTO(b)
	return &dto, nil
}

// CheckoutBooking completes a confirmed, paid booking on an explicit guest
// action, which may be ahead of the nightly-granularity checkout date.
func (s *BookingService) CheckoutBooking(ctx context.Context, requesterID, bookingID uuid.UUID) (*BookingDTO, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.GuestID() != requesterID {
		return nil, domain.NewForbiddenError("only the booking's guest may check out")
	}

	paid, err := s.payments.HasSucceededForBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !paid {
		return nil, domain.NewConflictError("booking has no successful payment")
	}

	if err := b.Complete(); err != nil {
		return nil, err
	}
	b.IncrementVersion()
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("booking completed",
		zap.String("booking_id", b.ID().String()),
	)

	dto := toBookingDTO(b)
	return &dto, nil
}

// GetBooking retrieves a booking visible to the requester: its guest, the
// listing's host, or an admin.
func (s *BookingService) GetBooking(ctx context.Context, requesterID uuid.UUID, role auth.Role, bookingID uuid.UUID) (*BookingDTO, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if b.GuestID() != requesterID && role != auth.RoleAdmin {
		l, err := s.listings.FindByID(ctx, b.ListingID())
		if err != nil || l.HostID() != requesterID {
			return nil, domain.NewForbiddenError("not allowed to view this booking")
		}
	}

	dto := toBookingDTO(b)
	return &dto, nil
}

// IsReviewable reports whether the booking's stay can be reviewed: completed,
// or confirmed with a check-out on or before today.
func (s *BookingService) IsReviewable(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return false, err
	}
	return b.IsReviewable(s.now().UTC()), nil
}

// ListGuestBookings returns the requester's own bookings.
func (s *BookingService) ListGuestBookings(ctx context.Context, guestID uuid.UUID, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.bookings.FindByGuestID(ctx, guestID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toBookingDTOs(bookings), total, nil
}

// ListListingBookings returns a listing's bookings to its host or an admin.
func (s *BookingService) ListListingBookings(ctx context.Context, requesterID uuid.UUID, role auth.Role, listingID uuid.UUID, page, limit int) ([]BookingDTO, int64, error) {
	if role != auth.RoleAdmin {
		l, err := s.listings.FindByID(ctx, listingID)
		if err != nil {
			return nil, 0, err
		}
		if l.HostID() != requesterID {
			return nil, 0, domain.NewForbiddenError("not allowed to view this listing's bookings")
		}
	}

	bookings, total, err := s.bookings.FindByListingID(ctx, listingID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toBookingDTOs(bookings), total, nil
}

// CheckAvailability exposes the advisory availability check.
func (s *BookingService) CheckAvailability(ctx context.Context, listingID uuid.UUID, checkIn, checkOut string) (bool, error) {
	in, err := time.ParseInLocation(dateLayout, checkIn, time.UTC)
	if err != nil {
		return false, domain.NewValidationError("check_in must be a yyyy-mm-dd date")
	}
	out, err := time.ParseInLocation(dateLayout, checkOut, time.UTC)
	if err != nil {
		return false, domain.NewValidationError("check_out must be a yyyy-mm-dd date")
	}
	if booking.Nights(in, out) < 1 {
		return false, domain.NewValidationError("check_out must be after check_in")
	}
	return s.availability.IsAvailable(ctx, listingID, in, out)
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{TotalBookings: total, ByStatus: counts}, nil
}

// publishBookingCancelled publishes a BookingCancelledEvent; failures are
// logged, not propagated.
func (s *BookingService) publishBookingCancelled(ctx context.Context, b *booking.Booking) {
	event := events.BookingCancelledEvent{
		BookingID:  b.ID(),
		ListingID:  b.ListingID(),
		GuestID:    b.GuestID(),
		OccurredAt: time.Now().UTC(),
	}
	ce, err := kafka.NewCloudEvent("service-booking", events.BookingCancelled, event)
	if err != nil {
		s.logger.Error("failed to create booking cancelled event", zap.Error(err))
		return
	}
	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, ce); err != nil {
		s.logger.Error("failed to publish booking cancelled event", zap.Error(err))
	}
}

func today(now func() time.Time) time.Time {
	y, m, d := now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// toBookingDTO maps a domain Booking to a BookingDTO.
func toBookingDTO(b *booking.Booking) BookingDTO {
	return BookingDTO{
		ID:            b.ID(),
		ListingID:     b.ListingID(),
		GuestID:       b.GuestID(),
		CheckIn:       b.CheckIn().Format(dateLayout),
		CheckOut:      b.CheckOut().Format(dateLayout),
		GuestsCount:   b.GuestsCount(),
		Status:        string(b.Status()),
		PricePerNight: b.PriceSnapshot(),
		TotalAmount:   b.TotalAmount(),
		Currency:      b.Currency(),
		Version:       b.Version(),
		CreatedAt:     b.CreatedAt(),
		UpdatedAt:     b.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*booking.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = toBookingDTO(b)
	}
	return dtos
}

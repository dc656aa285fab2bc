package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vietstay/service-booking/internal/domain/booking"
	"github.com/vietstay/service-booking/internal/domain/listing"
	"github.com/vietstay/service-booking/internal/domain/payment"
	"github.com/vietstay/service-booking/internal/pkg/domain"
	"github.com/vietstay/service-booking/internal/pkg/kafka"
)

// In-memory repository fakes. The booking fake implements the same blocking
// predicate as the SQL repository so availability behavior can be tested
// without a database.

type fakeListingRepo struct {
	listings map[uuid.UUID]*listing.Listing
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{listings: map[uuid.UUID]*listing.Listing{}}
}

func (r *fakeListingRepo) add(l *listing.Listing) { r.listings[l.ID()] = l }

func (r *fakeListingRepo) FindByID(_ context.Context, id uuid.UUID) (*listing.Listing, error) {
	l, ok := r.listings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Listing", id.String())
	}
	return l, nil
}

type fakeBookingRepo struct {
	bookings map[uuid.UUID]*booking.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[uuid.UUID]*booking.Booking{}}
}

func (r *fakeBookingRepo) add(b *booking.Booking) { r.bookings[b.ID()] = b }

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return b, nil
}

func (r *fakeBookingRepo) FindByGuestID(_ context.Context, guestID uuid.UUID, _, _ int) ([]*booking.Booking, int64, error) {
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.GuestID() == guestID {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) FindByListingID(_ context.Context, listingID uuid.UUID, _, _ int) ([]*booking.Booking, int64, error) {
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.ListingID() == listingID {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) FindBlocking(_ context.Context, listingID uuid.UUID, checkIn, checkOut, holdCutoff time.Time) ([]*booking.Booking, error) {
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.ListingID() != listingID {
			continue
		}
		if !booking.Overlaps(b.CheckIn(), b.CheckOut(), checkIn, checkOut) {
			continue
		}
		switch b.Status() {
		case booking.StatusConfirmed:
			out = append(out, b)
		case booking.StatusPendingPayment:
			if b.CreatedAt().After(holdCutoff) {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) SaveIfAvailable(ctx context.Context, b *booking.Booking, holdCutoff time.Time) error {
	blocking, err := r.FindBlocking(ctx, b.ListingID(), b.CheckIn(), b.CheckOut(), holdCutoff)
	if err != nil {
		return err
	}
	if len(blocking) > 0 {
		return domain.NewConflictError("requested dates are no longer available")
	}
	r.bookings[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, _, _ int) ([]*booking.Booking, int64, error) {
	var out []*booking.Booking
	for _, b := range r.bookings {
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, b := range r.bookings {
		counts[string(b.Status())]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, b *booking.Booking) error {
	r.bookings[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *booking.Booking) error {
	if _, ok := r.bookings[b.ID()]; !ok {
		return domain.NewNotFoundError("Booking", b.ID().String())
	}
	r.bookings[b.ID()] = b
	return nil
}

type fakePaymentRepo struct {
	payments map[uuid.UUID]*payment.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[uuid.UUID]*payment.Payment{}}
}

func (r *fakePaymentRepo) add(p *payment.Payment) { r.payments[p.ID()] = p }

func (r *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*payment.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.NewNotFoundError("Payment", id.String())
	}
	return p, nil
}

func (r *fakePaymentRepo) FindByTxnRef(_ context.Context, txnRef string) (*payment.Payment, error) {
	for _, p := range r.payments {
		if p.TxnRef() == txnRef {
			return p, nil
		}
	}
	return nil, domain.NewNotFoundError("Payment", txnRef)
}

func (r *fakePaymentRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*payment.Payment, error) {
	var out []*payment.Payment
	for _, p := range r.payments {
		if p.BookingID() == bookingID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) HasSucceededForBooking(_ context.Context, bookingID uuid.UUID) (bool, error) {
	for _, p := range r.payments {
		if p.BookingID() == bookingID && p.Status() == payment.StatusSucceeded {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePaymentRepo) ListAll(_ context.Context, _, _ int) ([]*payment.Payment, int64, error) {
	var out []*payment.Payment
	for _, p := range r.payments {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *fakePaymentRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, p := range r.payments {
		counts[string(p.Status())]++
	}
	return counts, nil
}

func (r *fakePaymentRepo) Save(_ context.Context, p *payment.Payment) error {
	r.payments[p.ID()] = p
	return nil
}

func (r *fakePaymentRepo) Update(_ context.Context, p *payment.Payment) error {
	if _, ok := r.payments[p.ID()]; !ok {
		return domain.NewNotFoundError("Payment", p.ID().String())
	}
	r.payments[p.ID()] = p
	return nil
}

type publishedEvent struct {
	topic string
	event kafka.CloudEvent
}

type fakePublisher struct {
	published []publishedEvent
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic string, event kafka.CloudEvent) error {
	f.published = append(f.published, publishedEvent{topic: topic, event: event})
	return nil
}

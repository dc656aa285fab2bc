//go:build integration

package main_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vietstay/service-booking/internal/config"
	bookingDomain "github.com/vietstay/service-booking/internal/domain/booking"
	listingDomain "github.com/vietstay/service-booking/internal/domain/listing"
	"github.com/vietstay/service-booking/internal/pkg/kafka"
	"github.com/vietstay/service-booking/internal/repository"
	"github.com/vietstay/service-booking/internal/settlement"
	"github.com/vietstay/service-booking/internal/vnpay"
)

const testHashSecret = "integration-hash-secret"

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB      *gorm.DB
	Cleanup func()
}

// setupPostgres starts a PostgreSQL testcontainer and returns a connected
// GORM DB with the schema migrated.
func setupPostgres(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_booking sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error)
	require.NoError(t, db.AutoMigrate(
		&repository.ListingModel{},
		&repository.BookingModel{},
		&repository.PaymentModel{},
	))

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{DB: db, Cleanup: cleanup}
}

// capturingPublisher records published events instead of talking to Kafka.
type capturingPublisher struct {
	published []kafka.CloudEvent
}

func (c *capturingPublisher) PublishEvent(_ context.Context, _ string, event kafka.CloudEvent) error {
	c.published = append(c.published, event)
	return nil
}

// seedListing inserts a published listing and returns its id.
func seedListing(t *testing.T, db *gorm.DB, hostID uuid.UUID, pricePerNight int64) uuid.UUID {
	t.Helper()
	model := repository.ListingModel{
		ID:            uuid.New(),
		HostID:        hostID,
		Title:         "Can ho trung tam Da Nang",
		PricePerNight: pricePerNight,
		MaxGuests:     4,
		Status:        string(listingDomain.StatusPublished),
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	require.NoError(t, db.Create(&model).Error)
	return model.ID
}

// newPendingBooking creates an unsaved pending_payment booking aggregate.
func newPendingBooking(t *testing.T, listingID uuid.UUID, checkIn, checkOut time.Time) *bookingDomain.Booking {
	t.Helper()
	b, err := bookingDomain.NewBooking(listingID, uuid.New(), checkIn, checkOut, 2, 1_500_000, "VND")
	require.NoError(t, err)
	return b
}

// newTestGateway builds a gateway with the integration hash secret.
func newTestGateway() *vnpay.Gateway {
	return vnpay.NewGateway(config.VNPayConfig{
		TmnCode:    "INTTEST1",
		HashSecret: testHashSecret,
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://api.vietstay.example/api/v1/payments/vnpay/return",
		ExpireIn:   15 * time.Minute,
	}, zap.NewNop())
}

// newTestReconciler wires a reconciler over the real repositories.
func newTestReconciler(db *gorm.DB, producer *capturingPublisher) *settlement.Reconciler {
	return settlement.NewReconciler(
		repository.NewPaymentRepository(db),
		repository.NewBookingRepository(db),
		newTestGateway(),
		producer,
		zap.NewNop(),
	)
}

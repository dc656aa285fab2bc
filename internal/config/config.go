package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vietstay/service-booking/internal/pkg/database"
	"github.com/vietstay/service-booking/internal/pkg/domain"
)

// JWTConfig holds token-signing configuration.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds broker addresses and the consumer group prefix.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// VNPayConfig holds the merchant credentials and endpoints for the VNPay gateway.
type VNPayConfig struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
	ExpireIn   time.Duration
}

// BookingConfig holds booking-workflow tunables.
type BookingConfig struct {
	// HoldWindow is how long a pending_payment booking keeps blocking
	// competing reservations for the same dates.
	HoldWindow time.Duration
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	FrontendURL string
	DBConfig    database.PostgresConfig
	JWTConfig   JWTConfig
	KafkaConfig KafkaConfig
	VNPayConfig VNPayConfig
	Booking     BookingConfig
}

// Load reads configuration from environment variables and returns a ServiceConfig.
// Missing VNPay merchant credentials are a fatal configuration error.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", ":8084")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "vietstay_booking")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "vietstay-")
	v.SetDefault("VNPAY_PAY_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html")
	v.SetDefault("VNPAY_EXPIRE_MINUTES", 15)
	v.SetDefault("BOOKING_HOLD_MINUTES", 15)
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")

	cfg := &ServiceConfig{
		Port:        normalizePort(v.GetString("SERVICE_PORT")),
		AppEnv:      v.GetString("APP_ENV"),
		FrontendURL: v.GetString("FRONTEND_URL"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWTConfig: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     strings.Split(v.GetString("KAFKA_BROKERS"), ","),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		VNPayConfig: VNPayConfig{
			TmnCode:    v.GetString("VNPAY_TMN_CODE"),
			HashSecret: v.GetString("VNPAY_HASH_SECRET"),
			PayURL:     v.GetString("VNPAY_PAY_URL"),
			ReturnURL:  v.GetString("VNPAY_RETURN_URL"),
			ExpireIn:   time.Duration(v.GetInt("VNPAY_EXPIRE_MINUTES")) * time.Minute,
		},
		Booking: BookingConfig{
			HoldWindow: time.Duration(v.GetInt("BOOKING_HOLD_MINUTES")) * time.Minute,
		},
	}

	if cfg.VNPayConfig.TmnCode == "" {
		return nil, domain.NewConfigurationError("VNPAY_TMN_CODE is required")
	}
	if cfg.VNPayConfig.HashSecret == "" {
		return nil, domain.NewConfigurationError("VNPAY_HASH_SECRET is required")
	}
	if cfg.VNPayConfig.ReturnURL == "" {
		return nil, domain.NewConfigurationError("VNPAY_RETURN_URL is required")
	}
	if cfg.JWTConfig.Secret == "" {
		return nil, domain.NewConfigurationError("JWT_SECRET is required")
	}

	return cfg, nil
}

// normalizePort ensures the port carries a leading colon for http.Server.
func normalizePort(port string) string {
	if port == "" || strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vietstay/service-booking/internal/application"
	"github.com/vietstay/service-booking/internal/domain/payment"
	"github.com/vietstay/service-booking/internal/pkg/auth"
	"github.com/vietstay/service-booking/internal/pkg/middleware"
	"github.com/vietstay/service-booking/internal/pkg/response"
	"github.com/vietstay/service-booking/internal/settlement"
)

// PaymentHandler handles HTTP requests for payment operations, including the
// two unauthenticated gateway callback endpoints.
type PaymentHandler struct {
	service     *application.PaymentService
	reconciler  *settlement.Reconciler
	frontendURL string
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *application.PaymentService, reconciler *settlement.Reconciler, frontendURL string) *PaymentHandler {
	return &PaymentHandler{
		service:     service,
		reconciler:  reconciler,
		frontendURL: frontendURL,
	}
}

// RegisterRoutes registers all payment routes on the given router group.
// The callback endpoints carry no auth: the gateway authenticates itself
// through the query signature.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	r.GET("/payments/vnpay/return", h.HandleReturn)
	r.GET("/payments/vnpay/ipn", h.HandleNotification)

	payments := r.Group("/payments")
	payments.Use(middleware.AuthMiddleware(jwtManager))
	{
		payments.GET("/:id", h.GetPayment)
	}

	bookings := r.Group("/bookings")
	bookings.Use(middleware.AuthMiddleware(jwtManager))
	{
		bookings.POST("/:id/payments", middleware.RequireRole(auth.RoleGuest), h.CreateRedirect)
		bookings.GET("/:id/payments", h.ListBookingPayments)
	}
}

// CreateRedirect handles POST /api/v1/bookings/:id/payments
func (h *PaymentHandler) CreateRedirect(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	dto, err := h.service.CreateRedirect(c.Request.Context(), userID, bookingID, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto)
}

// GetPayment handles GET /api/v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	role, _ := middleware.GetUserRole(c)

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment ID")
		return
	}

	dto, err := h.service.GetPayment(c.Request.Context(), userID, role, paymentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// ListBookingPayments handles GET /api/v1/bookings/:id/payments
func (h *PaymentHandler) ListBookingPayments(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	role, _ := middleware.GetUserRole(c)

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	dtos, err := h.service.ListBookingPayments(c.Request.Context(), userID, role, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dtos)
}

// HandleReturn handles GET /api/v1/payments/vnpay/return, the browser coming
// back from the gateway. It settles the callback and redirects the user agent
// to the frontend with the outcome. Parameter names here are a local contract
// with the frontend.
func (h *PaymentHandler) HandleReturn(c *gin.Context) {
	result, err := h.reconciler.Settle(c.Request.Context(), c.Request.URL.Query())

	target, parseErr := url.Parse(h.frontendURL + "/payment/result")
	if parseErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	q := target.Query()
	switch {
	case err != nil:
		q.Set("status", "error")
	case result.Status == payment.StatusSucceeded:
		q.Set("status", "success")
		q.Set("bookingId", result.BookingID.String())
		q.Set("paymentId", result.PaymentID.String())
		q.Set("code", result.ResponseCode)
	default:
		q.Set("status", "failed")
		q.Set("bookingId", result.BookingID.String())
		q.Set("paymentId", result.PaymentID.String())
		q.Set("code", result.ResponseCode)
	}
	target.RawQuery = q.Encode()

	c.Redirect(http.StatusFound, target.String())
}

// HandleNotification handles GET /api/v1/payments/vnpay/ipn, the
// server-to-server notification. Always answers 200 with the provider's
// fixed acknowledgement vocabulary.
func (h *PaymentHandler) HandleNotification(c *gin.Context) {
	ack := h.reconciler.SettleNotification(c.Request.Context(), c.Request.URL.Query())
	c.JSON(http.StatusOK, ack)
}

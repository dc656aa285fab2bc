package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/vietstay/service-booking/internal/application"
	"github.com/vietstay/service-booking/internal/pkg/auth"
	"github.com/vietstay/service-booking/internal/pkg/middleware"
	"github.com/vietstay/service-booking/internal/pkg/response"
)

// AdminHandler exposes cross-tenant booking and payment views for the admin console.
type AdminHandler struct {
	bookingService *application.BookingService
	paymentService *application.PaymentService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookingService *application.BookingService, paymentService *application.PaymentService) *AdminHandler {
	return &AdminHandler{
		bookingService: bookingService,
		paymentService: paymentService,
	}
}

// RegisterRoutes registers all admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager))
	admin.Use(middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/bookings/stats", h.BookingStats)
		admin.GET("/payments", h.ListPayments)
		admin.GET("/payments/stats", h.PaymentStats)
	}
}

// ListBookings handles GET /api/v1/admin/bookings
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := pagination(c)
	dtos, total, err := h.bookingService.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"bookings": dtos, "total": total, "page": page, "limit": limit})
}

// BookingStats handles GET /api/v1/admin/bookings/stats
func (h *AdminHandler) BookingStats(c *gin.Context) {
	stats, err := h.bookingService.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// ListPayments handles GET /api/v1/admin/payments
func (h *AdminHandler) ListPayments(c *gin.Context) {
	page, limit := pagination(c)
	dtos, total, err := h.paymentService.ListAllPayments(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"payments": dtos, "total": total, "page": page, "limit": limit})
}

// PaymentStats handles GET /api/v1/admin/payments/stats
func (h *AdminHandler) PaymentStats(c *gin.Context) {
	stats, err := h.paymentService.GetPaymentStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vietstay/service-booking/internal/application"
	"github.com/vietstay/service-booking/internal/pkg/auth"
	"github.com/vietstay/service-booking/internal/pkg/middleware"
	"github.com/vietstay/service-booking/internal/pkg/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	// Availability is consulted by the public search UI before login.
	r.GET("/listings/:listingId/availability", h.CheckAvailability)

	bookings := r.Group("/bookings")
	bookings.Use(middleware.AuthMiddleware(jwtManager))
	{
		bookings.POST("", middleware.RequireRole(auth.RoleGuest), h.CreateBooking)
		bookings.GET("", h.ListMyBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("/:id/reviewable", h.IsReviewable)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.POST("/:id/checkout", h.CheckoutBooking)
	}

	listings := r.Group("/listings")
	listings.Use(middleware.AuthMiddleware(jwtManager))
	{
		listings.GET("/:listingId/bookings", middleware.RequireRole(auth.RoleHost), h.ListListingBookings)
	}
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto)
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
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

	dto, err := h.service.GetBooking(c.Request.Context(), userID, role, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// IsReviewable handles GET /api/v1/bookings/:id/reviewable
func (h *BookingHandler) IsReviewable(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	reviewable, err := h.service.IsReviewable(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"reviewable": reviewable})
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
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

	dto, err := h.service.CancelBooking(c.Request.Context(), userID, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// CheckoutBooking handles POST /api/v1/bookings/:id/checkout
func (h *BookingHandler) CheckoutBooking(c *gin.Context) {
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

	dto, err := h.service.CheckoutBooking(c.Request.Context(), userID, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// ListMyBookings handles GET /api/v1/bookings
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := pagination(c)
	dtos, total, err := h.service.ListGuestBookings(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"bookings": dtos, "total": total, "page": page, "limit": limit})
}

// ListListingBookings handles GET /api/v1/listings/:listingId/bookings
func (h *BookingHandler) ListListingBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	role, _ := middleware.GetUserRole(c)

	listingID, err := uuid.Parse(c.Param("listingId"))
	if err != nil {
		response.BadRequest(c, "invalid listing ID")
		return
	}

	page, limit := pagination(c)
	dtos, total, err := h.service.ListListingBookings(c.Request.Context(), userID, role, listingID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"bookings": dtos, "total": total, "page": page, "limit": limit})
}

// CheckAvailability handles GET /api/v1/listings/:listingId/availability
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("listingId"))
	if err != nil {
		response.BadRequest(c, "invalid listing ID")
		return
	}

	available, err := h.service.CheckAvailability(
		c.Request.Context(),
		listingID,
		c.Query("check_in"),
		c.Query("check_out"),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"available": available})
}

// pagination parses page/limit query parameters with sane bounds.
func pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/skyreserve/internal/domain"
	"github.com/Domenick1991/skyreserve/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

// The user always comes from the access token, so the body carries no user id.
type createBookingRequest struct {
	FlightID    int64 `json:"flight_id" binding:"required,gt=0"`
	SeatsBooked int   `json:"seats_booked"`
}

type bookingResponse struct {
	ID            int64     `json:"id"`
	FlightID      int64     `json:"flight_id"`
	FlightNumber  string    `json:"flight_number"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	SeatsBooked   int       `json:"seats_booked"`
	TotalPrice    string    `json:"total_price"`
	Status        string    `json:"status"`
	BookingDate   time.Time `json:"booking_date"`
	UserID        int64     `json:"user_id"`
	UserName      string    `json:"user_name"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

// Register expects router to be behind JWTAuth.
func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
}

func (h *BookingHandler) create(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, statusLabel(http.StatusUnauthorized), "authentication required", nil)
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request body")
		return
	}

	confirmation, err := h.service.Reserve(c.Request.Context(), booking.ReserveInput{
		FlightID:       req.FlightID,
		UserID:         userID,
		SeatsRequested: req.SeatsBooked,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(confirmation))
}

func (h *BookingHandler) list(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, statusLabel(http.StatusUnauthorized), "authentication required", nil)
		return
	}

	bookings, err := h.service.ListUserBookings(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func toBookingResponse(b *domain.BookingConfirmation) bookingResponse {
	return bookingResponse{
		ID:            b.BookingID,
		FlightID:      b.FlightID,
		FlightNumber:  b.FlightNumber,
		Origin:        b.Origin,
		Destination:   b.Destination,
		DepartureTime: b.DepartureTime,
		ArrivalTime:   b.ArrivalTime,
		SeatsBooked:   b.SeatsBooked,
		TotalPrice:    domain.FormatCents(b.TotalPriceCents),
		Status:        string(b.Status),
		BookingDate:   b.BookingDate,
		UserID:        b.UserID,
		UserName:      b.UserName,
	}
}

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/skyreserve/internal/domain"
	"github.com/Domenick1991/skyreserve/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBookingContext(body string, userID int64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		c.Set(userIDKey, userID)
	}
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newBookingContext(`{"flight_id": 1, "seats_booked": 2, "user_id": 99}`, 7)

	input := booking.ReserveInput{FlightID: 1, UserID: 7, SeatsRequested: 2}
	mockService.On("Reserve", c.Request.Context(), input).Return(sampleConfirmation(), nil).Once()

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(42), response.ID)
	assert.Equal(t, "200.00", response.TotalPrice)
	assert.Equal(t, "confirmed", response.Status)
	assert.Equal(t, 2, response.SeatsBooked)
	assert.Equal(t, int64(7), response.UserID)
	assert.Equal(t, "Ada", response.UserName)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_createErrors(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantLabel  string
		wantMsg    string
	}{
		{"insufficient seats", domain.InsufficientSeats(1, 2, 1), http.StatusConflict, "InsufficientSeats", "insufficient seats available. Requested: 2, Available: 1"},
		{"flight not found", domain.FlightNotFound(1), http.StatusNotFound, "FlightNotFound", "flight with ID 1 not found"},
		{"user not found", domain.UserNotFound(7), http.StatusNotFound, "UserNotFound", "user with ID 7 not found"},
		{"invalid", domain.InvalidRequest("seats must be a positive integer"), http.StatusBadRequest, "InvalidRequest", "invalid request: seats must be a positive integer"},
		{"transient", domain.Transient(1, errors.New("deadlock detected")), http.StatusServiceUnavailable, "TransientFailure", "reservation temporarily unavailable, retry later"},
		{"unclassified", errors.New("connection reset by peer"), http.StatusInternalServerError, "InternalServerError", "internal server error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			handler := NewBookingHandler(mockService)
			c, w := newBookingContext(`{"flight_id": 1, "seats_booked": 2}`, 7)

			mockService.On("Reserve", mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			handler.create(c)

			assert.Equal(t, tc.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			assert.Equal(t, tc.wantLabel, resp.Error)
			assert.Equal(t, tc.wantMsg, resp.Message)
			assert.Equal(t, "/api/v1/bookings", resp.Path)
			assert.NotEmpty(t, resp.Timestamp)
		})
	}
}

func TestBookingHandler_createInsufficientSeatsDetails(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	c, w := newBookingContext(`{"flight_id": 1, "seats_booked": 2}`, 9)

	mockService.On("Reserve", mock.Anything, mock.Anything).Return(nil, domain.InsufficientSeats(1, 2, 1)).Once()

	handler.create(c)

	var body struct {
		Details struct {
			Requested int `json:"requested"`
			Available int `json:"available"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Details.Requested)
	assert.Equal(t, 1, body.Details.Available)
}

func TestBookingHandler_createTransientSetsRetryAfter(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	c, w := newBookingContext(`{"flight_id": 1, "seats_booked": 1}`, 7)

	mockService.On("Reserve", mock.Anything, mock.Anything).Return(nil, domain.Transient(1, nil)).Once()

	handler.create(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestBookingHandler_createBadRequests(t *testing.T) {
	testCases := []struct {
		name      string
		body      string
		wantLabel string
	}{
		{"missing flight", `{"seats_booked": 1}`, "ValidationError"},
		{"fractional seats", `{"flight_id": 1, "seats_booked": 1.5}`, "BadRequest"},
		{"not json", `seats please`, "BadRequest"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			handler := NewBookingHandler(mockService)
			c, w := newBookingContext(tc.body, 7)

			handler.create(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.wantLabel, decodeError(t, w).Error)
			mockService.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything)
		})
	}
}

func TestBookingHandler_createValidationDetails(t *testing.T) {
	handler := NewBookingHandler(&MockBookingUseCase{})
	c, w := newBookingContext(`{"seats_booked": 1}`, 7)

	handler.create(c)

	var body struct {
		Details []fieldError `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Details, 1)
	assert.Equal(t, "flight_id", body.Details[0].Field)
	assert.Equal(t, "flight_id is required", body.Details[0].Message)
}

func TestBookingHandler_createRequiresUser(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	c, w := newBookingContext(`{"flight_id": 1, "seats_booked": 1}`, 0)

	handler.create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything)
}

func TestBookingHandler_list(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	c.Set(userIDKey, int64(7))

	mockService.On("ListUserBookings", c.Request.Context(), int64(7)).
		Return([]domain.BookingConfirmation{*sampleConfirmation()}, nil).Once()

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, "BA117", response[0].FlightNumber)
	mockService.AssertExpectations(t)
}

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/skyreserve/internal/domain"
	"github.com/Domenick1991/skyreserve/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type listFlightsQuery struct {
	Origin        string `form:"origin"`
	Destination   string `form:"destination"`
	DepartureDate string `form:"departure_date" binding:"omitempty,datetime=2006-01-02"`
	DepartureFrom string `form:"departure_from" binding:"omitempty,datetime=2006-01-02"`
	DepartureTo   string `form:"departure_to" binding:"omitempty,datetime=2006-01-02"`
	SortBy        string `form:"sort_by" binding:"omitempty,oneof=price departure_time departureTime"`
	SortOrder     string `form:"sort_order" binding:"omitempty,oneof=ASC DESC asc desc"`
	Page          int    `form:"page" binding:"omitempty,min=1,max=1000000"`
	Limit         int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type flightResponse struct {
	ID             int64     `json:"id"`
	FlightNumber   string    `json:"flight_number"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	Price          string    `json:"price"`
	SeatsAvailable int       `json:"seats_available"`
}

type flightPageResponse struct {
	Data       []flightResponse `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *FlightHandler) list(c *gin.Context) {
	var q listFlightsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	filter, err := q.toFilter()
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := flightPageResponse{
		Data:       make([]flightResponse, 0, len(page.Flights)),
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
	}
	for i := range page.Flights {
		resp.Data = append(resp.Data, toFlightResponse(&page.Flights[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, statusLabel(http.StatusBadRequest), "invalid flight id", nil)
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(flight))
}

// toFilter converts the query into a catalog filter. departure_date selects
// one UTC day; departure_from and departure_to bound a range of whole days,
// both inclusive.
func (q listFlightsQuery) toFilter() (domain.FlightFilter, error) {
	filter := domain.FlightFilter{
		Origin:      q.Origin,
		Destination: q.Destination,
		SortBy:      domain.SortField(q.SortBy),
		SortOrder:   domain.SortOrder(q.SortOrder),
		Page:        q.Page,
		Limit:       q.Limit,
	}

	if q.DepartureDate != "" {
		if q.DepartureFrom != "" || q.DepartureTo != "" {
			return filter, domain.InvalidRequest("departure_date cannot be combined with departure_from or departure_to")
		}
		start, end, err := domain.DayRange(q.DepartureDate)
		if err != nil {
			return filter, domain.InvalidRequest(err.Error())
		}
		filter.DepartureFrom, filter.DepartureTo = &start, &end
		return filter, nil
	}

	if q.DepartureFrom != "" {
		start, _, err := domain.DayRange(q.DepartureFrom)
		if err != nil {
			return filter, domain.InvalidRequest(err.Error())
		}
		filter.DepartureFrom = &start
	}
	if q.DepartureTo != "" {
		_, end, err := domain.DayRange(q.DepartureTo)
		if err != nil {
			return filter, domain.InvalidRequest(err.Error())
		}
		filter.DepartureTo = &end
	}
	return filter, nil
}

func toFlightResponse(f *domain.Flight) flightResponse {
	return flightResponse{
		ID:             f.ID,
		FlightNumber:   f.FlightNumber,
		Origin:         f.Origin,
		Destination:    f.Destination,
		DepartureTime:  f.DepartureTime,
		ArrivalTime:    f.ArrivalTime,
		Price:          domain.FormatCents(f.PriceCents),
		SeatsAvailable: f.SeatsAvailable,
	}
}

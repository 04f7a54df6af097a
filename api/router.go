package api

import (
	"net/http"

	"github.com/Domenick1991/skyreserve/internal/service/auth"
	"github.com/Domenick1991/skyreserve/internal/service/booking"
	"github.com/Domenick1991/skyreserve/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Deps struct {
	Log      *zap.Logger
	Auth     auth.AuthUseCase
	Flights  flights.FlightUseCase
	Bookings booking.BookingUseCase
	// Limiter throttles /api/v1 per client IP; nil disables throttling.
	Limiter RateLimiter
	Health  map[string]Pinger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), AccessLog(d.Log), Recovery(d.Log))
	r.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, statusLabel(http.StatusNotFound), "route not found", nil)
	})

	r.GET("/health", NewHealthHandler(d.Health, d.Log).check)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	if d.Limiter != nil {
		v1.Use(Throttle(d.Limiter, d.Log))
	}

	NewAuthHandler(d.Auth).Register(v1.Group("/auth"))
	NewFlightHandler(d.Flights).Register(v1.Group("/flights"))
	NewBookingHandler(d.Bookings).Register(v1.Group("/bookings", JWTAuth(d.Auth)))

	return r
}

package api

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/Domenick1991/skyreserve/internal/domain"
	"github.com/Domenick1991/skyreserve/internal/repository"
	"github.com/Domenick1991/skyreserve/internal/service/auth"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Error      string `json:"error"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
	Details    any    `json:"details,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("strongpassword", strongPassword)
	}
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// strongPassword requires an upper case letter, a lower case letter and a
// digit or symbol.
func strongPassword(fl validator.FieldLevel) bool {
	var upper, lower, other bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r), unicode.IsPunct(r), unicode.IsSymbol(r):
			other = true
		}
	}
	return upper && lower && other
}

func statusLabel(status int) string {
	return strings.ReplaceAll(http.StatusText(status), " ", "")
}

func writeError(c *gin.Context, status int, label, message string, details any) {
	c.AbortWithStatusJSON(status, errorResponse{
		StatusCode: status,
		Message:    message,
		Error:      label,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Path:       c.Request.URL.Path,
		Details:    details,
	})
}

// respondError maps a service error onto the HTTP envelope. Unclassified
// errors are reported as 500 without their text; the access log keeps it.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var re *domain.ReservationError
	switch {
	case errors.As(err, &re):
		respondReservationError(c, re)
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		writeError(c, http.StatusUnauthorized, statusLabel(http.StatusUnauthorized), err.Error(), nil)
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(c, http.StatusConflict, statusLabel(http.StatusConflict), err.Error(), nil)
	case errors.Is(err, auth.ErrWeakPassword):
		writeError(c, http.StatusBadRequest, statusLabel(http.StatusBadRequest), err.Error(), nil)
	case errors.Is(err, repository.ErrUnavailable):
		c.Header("Retry-After", "1")
		writeError(c, http.StatusServiceUnavailable, statusLabel(http.StatusServiceUnavailable), "service temporarily unavailable, retry later", nil)
	default:
		writeError(c, http.StatusInternalServerError, statusLabel(http.StatusInternalServerError), "internal server error", nil)
	}
}

func respondReservationError(c *gin.Context, re *domain.ReservationError) {
	label := re.Kind.String()
	switch re.Kind {
	case domain.KindInvalidRequest:
		writeError(c, http.StatusBadRequest, label, re.Error(), nil)
	case domain.KindFlightNotFound, domain.KindUserNotFound:
		writeError(c, http.StatusNotFound, label, re.Error(), nil)
	case domain.KindInsufficientSeats:
		writeError(c, http.StatusConflict, label, re.Error(), gin.H{
			"requested": re.Requested,
			"available": re.Available,
		})
	case domain.KindTransient:
		c.Header("Retry-After", "1")
		writeError(c, http.StatusServiceUnavailable, label, "reservation temporarily unavailable, retry later", nil)
	default:
		writeError(c, http.StatusInternalServerError, statusLabel(http.StatusInternalServerError), "internal server error", nil)
	}
}

// respondBindError reports a request that failed decoding or validation.
func respondBindError(c *gin.Context, err error, what string) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		writeError(c, http.StatusBadRequest, statusLabel(http.StatusBadRequest), "invalid "+what, nil)
		return
	}

	fields := make([]fieldError, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, fieldError{Field: fe.Field(), Message: validationMessage(fe)})
	}
	writeError(c, http.StatusBadRequest, "ValidationError", "validation failed", fields)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fe.Field() + " must be at least " + fe.Param() + " characters"
		}
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fe.Field() + " must not exceed " + fe.Param() + " characters"
		}
		return fe.Field() + " must not exceed " + fe.Param()
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "datetime":
		return fe.Field() + " must be a date in YYYY-MM-DD format"
	case "strongpassword":
		return fe.Field() + " must contain an upper case letter, a lower case letter and a digit or symbol"
	default:
		return fe.Field() + " is invalid"
	}
}

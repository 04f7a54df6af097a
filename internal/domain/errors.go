package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies reservation failures. Every kind except
// KindTransient is a caller error and must not be retried.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidRequest
	KindFlightNotFound
	KindUserNotFound
	KindInsufficientSeats
	KindTransient
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidRequest:
		return "InvalidRequest"
	case KindFlightNotFound:
		return "FlightNotFound"
	case KindUserNotFound:
		return "UserNotFound"
	case KindInsufficientSeats:
		return "InsufficientSeats"
	case KindTransient:
		return "TransientFailure"
	default:
		return "Unknown"
	}
}

// Retryable reports whether a caller may resubmit the same request unchanged.
func (k ErrorKind) Retryable() bool {
	return k == KindTransient
}

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrFlightNotFound    = errors.New("flight not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrInsufficientSeats = errors.New("insufficient seats")
	ErrTransient         = errors.New("transient failure")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidRequest:
		return ErrInvalidRequest
	case KindFlightNotFound:
		return ErrFlightNotFound
	case KindUserNotFound:
		return ErrUserNotFound
	case KindInsufficientSeats:
		return ErrInsufficientSeats
	case KindTransient:
		return ErrTransient
	default:
		return nil
	}
}

// ReservationError is the only error type the reservation core returns.
// Requested and Available are set for KindInsufficientSeats.
type ReservationError struct {
	Kind      ErrorKind
	FlightID  int64
	UserID    int64
	Requested int
	Available int
	Reason    string
	Err       error
}

func (e *ReservationError) Error() string {
	var msg string
	switch e.Kind {
	case KindInvalidRequest:
		msg = "invalid request"
		if e.Reason != "" {
			msg += ": " + e.Reason
		}
	case KindFlightNotFound:
		msg = fmt.Sprintf("flight with ID %d not found", e.FlightID)
	case KindUserNotFound:
		msg = fmt.Sprintf("user with ID %d not found", e.UserID)
	case KindInsufficientSeats:
		msg = fmt.Sprintf("insufficient seats available. Requested: %d, Available: %d", e.Requested, e.Available)
	case KindTransient:
		msg = "reservation temporarily unavailable, retry later"
	default:
		msg = "reservation failed"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ReservationError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels, so errors.Is(err, ErrInsufficientSeats) works
// without unwrapping to the concrete type.
func (e *ReservationError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func InvalidRequest(reason string) *ReservationError {
	return &ReservationError{Kind: KindInvalidRequest, Reason: reason}
}

func FlightNotFound(flightID int64) *ReservationError {
	return &ReservationError{Kind: KindFlightNotFound, FlightID: flightID}
}

func UserNotFound(userID int64) *ReservationError {
	return &ReservationError{Kind: KindUserNotFound, UserID: userID}
}

func InsufficientSeats(flightID int64, requested, available int) *ReservationError {
	return &ReservationError{Kind: KindInsufficientSeats, FlightID: flightID, Requested: requested, Available: available}
}

func Transient(flightID int64, cause error) *ReservationError {
	return &ReservationError{Kind: KindTransient, FlightID: flightID, Err: cause}
}

// KindOf returns the kind of the first ReservationError in err's chain.
func KindOf(err error) ErrorKind {
	var re *ReservationError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

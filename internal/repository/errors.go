package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("concurrent update conflict")
	ErrDuplicate = errors.New("already exists")
	// ErrUnavailable marks a failure to reach the database. Nothing of the
	// failed statement was applied.
	ErrUnavailable = errors.New("store unavailable")
)

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
	codeAdminShutdown        = "57P01"
	codeCrashShutdown        = "57P02"
	codeCannotConnectNow     = "57P03"

	classConnectionException = "08"
)

// classify wraps err with op and tags it with ErrNotFound, ErrConflict,
// ErrDuplicate or ErrUnavailable when the driver error maps onto one of them.
func classify(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable, codeQueryCanceled:
			return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, ErrDuplicate, err)
		case codeAdminShutdown, codeCrashShutdown, codeCannotConnectNow:
			return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
		}
		if strings.HasPrefix(pgErr.Code, classConnectionException) {
			return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if connectionLost(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// classifyCommit is classify for COMMIT. A connection lost after COMMIT was
// sent leaves the outcome unknown, so it is only tagged ErrUnavailable when
// pgconn reports that nothing reached the server.
func classifyCommit(err error) error {
	if connectionLost(err) && !pgconn.SafeToRetry(err) {
		return fmt.Errorf("commit transaction: outcome unknown: %w", err)
	}
	return classify("commit transaction", err)
}

func connectionLost(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pgconn.SafeToRetry(err) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

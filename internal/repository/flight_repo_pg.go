package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/skyreserve/internal/domain"
	"github.com/jackc/pgx/v5"
)

type FlightRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Flight, error)
	DecrementSeats(ctx context.Context, id int64, seats int) (int, error)
	Search(ctx context.Context, filter domain.FlightFilter) ([]domain.Flight, int64, error)
}

type PGFlightRepository struct {
	db          DB
	lockTimeout time.Duration
}

type FlightRepositoryOption func(*PGFlightRepository)

// WithLockTimeout bounds how long GetForUpdate waits for the row lock.
func WithLockTimeout(d time.Duration) FlightRepositoryOption {
	return func(r *PGFlightRepository) {
		r.lockTimeout = d
	}
}

func NewFlightRepository(db DB, opts ...FlightRepositoryOption) FlightRepository {
	r := &PGFlightRepository{db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const flightColumns = `id, flight_number, origin, destination, departure_time, arrival_time, price_cents, total_seats, seats_available, created_at, updated_at`

func scanFlight(row pgx.Row, f *domain.Flight) error {
	return row.Scan(&f.ID, &f.FlightNumber, &f.Origin, &f.Destination, &f.DepartureTime, &f.ArrivalTime, &f.PriceCents, &f.TotalSeats, &f.SeatsAvailable, &f.CreatedAt, &f.UpdatedAt)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	var f domain.Flight
	if err := scanFlight(conn(ctx, r.db).QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id = $1`, id), &f); err != nil {
		return nil, classify("get flight", err)
	}
	return &f, nil
}

// GetForUpdate reads the flight and holds its row lock until the surrounding
// transaction ends, so concurrent reservations on the same flight serialize here.
func (r *PGFlightRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Flight, error) {
	tx, err := mustTx(ctx, "lock flight")
	if err != nil {
		return nil, err
	}
	if r.lockTimeout > 0 {
		// SET does not take bind parameters.
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
			return nil, classify("set lock timeout", err)
		}
	}

	var f domain.Flight
	if err := scanFlight(tx.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id = $1 FOR UPDATE`, id), &f); err != nil {
		return nil, classify("lock flight", err)
	}
	return &f, nil
}

// DecrementSeats subtracts seats and returns the remaining count. The
// predicate keeps the counter non-negative even without the row lock; a
// zero-row update is reported as ErrConflict.
func (r *PGFlightRepository) DecrementSeats(ctx context.Context, id int64, seats int) (int, error) {
	tx, err := mustTx(ctx, "decrement seats")
	if err != nil {
		return 0, err
	}

	var remaining int
	err = tx.QueryRow(ctx, `UPDATE flights SET seats_available = seats_available - $2, updated_at = now() WHERE id = $1 AND seats_available >= $2 RETURNING seats_available`, id, seats).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("decrement seats on flight %d: %w", id, ErrConflict)
	}
	if err != nil {
		return 0, classify("decrement seats", err)
	}
	return remaining, nil
}

var sortColumns = map[domain.SortField]string{
	domain.SortByDepartureTime: "departure_time",
	domain.SortByPrice:         "price_cents",
}

func (r *PGFlightRepository) Search(ctx context.Context, filter domain.FlightFilter) ([]domain.Flight, int64, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Origin != "" {
		add("origin ILIKE '%%' || $%d || '%%'", escapeLike(filter.Origin))
	}
	if filter.Destination != "" {
		add("destination ILIKE '%%' || $%d || '%%'", escapeLike(filter.Destination))
	}
	if filter.DepartureFrom != nil {
		add("departure_time >= $%d", *filter.DepartureFrom)
	}
	if filter.DepartureTo != nil {
		add("departure_time < $%d", *filter.DepartureTo)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	q := conn(ctx, r.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT count(*) FROM flights`+where, args...).Scan(&total); err != nil {
		return nil, 0, classify("count flights", err)
	}
	if total == 0 {
		return []domain.Flight{}, 0, nil
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = sortColumns[domain.SortByDepartureTime]
	}
	order := "ASC"
	if filter.SortOrder == domain.SortDesc {
		order = "DESC"
	}

	args = append(args, filter.Limit, filter.Offset())
	sql := fmt.Sprintf(`SELECT %s FROM flights%s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d`,
		flightColumns, where, column, order, len(args)-1, len(args))

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, classify("search flights", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0, filter.Limit)
	for rows.Next() {
		var f domain.Flight
		if err := scanFlight(rows, &f); err != nil {
			return nil, 0, classify("scan flight", err)
		}
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify("search flights", err)
	}
	return flights, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ FlightRepository = (*PGFlightRepository)(nil)

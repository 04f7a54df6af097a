package booking

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Domenick1991/skyreserve/internal/domain"
	"github.com/Domenick1991/skyreserve/internal/repository"
)

// memStore is a transactional in-memory store. A transaction holds the row
// lock of every flight it read for update until it ends; its writes are
// staged and applied on commit only.
type memStore struct {
	mu       sync.Mutex
	flights  map[int64]domain.Flight
	users    map[int64]domain.User
	bookings []domain.Booking
	rowLocks map[int64]*sync.Mutex

	nextBookingID atomic.Int64

	// conflicts makes the next n GetForUpdate calls fail with ErrConflict.
	conflicts      int
	// unavailable makes the next n transactions fail to begin.
	unavailable    int
	decrementErr   error
	beginCount     atomic.Int64
	committedCount atomic.Int64
}

type memTx struct {
	held   []*sync.Mutex
	staged []domain.Booking
	deltas map[int64]int
}

type memTxKey struct{}

func newMemStore() *memStore {
	return &memStore{
		flights:  make(map[int64]domain.Flight),
		users:    make(map[int64]domain.User),
		rowLocks: make(map[int64]*sync.Mutex),
	}
}

func (m *memStore) addFlight(f domain.Flight) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flights[f.ID] = f
	m.rowLocks[f.ID] = &sync.Mutex{}
}

func (m *memStore) addUser(u domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *memStore) flight(id int64) domain.Flight {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flights[id]
}

func (m *memStore) committedBookings() []domain.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Booking(nil), m.bookings...)
}

func (m *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(memTxKey{}).(*memTx); ok {
		return fn(ctx)
	}
	m.beginCount.Add(1)

	m.mu.Lock()
	if m.unavailable > 0 {
		m.unavailable--
		m.mu.Unlock()
		return fmt.Errorf("begin transaction: %w: dial tcp: connection refused", repository.ErrUnavailable)
	}
	m.mu.Unlock()

	tx := &memTx{deltas: make(map[int64]int)}
	defer func() {
		for i := len(tx.held) - 1; i >= 0; i-- {
			tx.held[i].Unlock()
		}
	}()

	if err := fn(context.WithValue(ctx, memTxKey{}, tx)); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, delta := range tx.deltas {
		f := m.flights[id]
		f.SeatsAvailable += delta
		m.flights[id] = f
	}
	m.bookings = append(m.bookings, tx.staged...)
	m.committedCount.Add(1)
	return nil
}

func txOf(ctx context.Context) (*memTx, error) {
	tx, ok := ctx.Value(memTxKey{}).(*memTx)
	if !ok {
		return nil, fmt.Errorf("must run inside a transaction")
	}
	return tx, nil
}

type memFlights struct{ *memStore }

func (r memFlights) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flights[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (r memFlights) GetForUpdate(ctx context.Context, id int64) (*domain.Flight, error) {
	tx, err := txOf(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.conflicts > 0 {
		r.conflicts--
		r.mu.Unlock()
		return nil, fmt.Errorf("lock flight: %w", repository.ErrConflict)
	}
	lock, ok := r.rowLocks[id]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("lock flight: %w", repository.ErrNotFound)
	}

	lock.Lock()
	tx.held = append(tx.held, lock)

	r.mu.Lock()
	f := r.flights[id]
	r.mu.Unlock()
	f.SeatsAvailable += tx.deltas[id]
	return &f, nil
}

func (r memFlights) DecrementSeats(ctx context.Context, id int64, seats int) (int, error) {
	tx, err := txOf(ctx)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	injected := r.decrementErr
	current := r.flights[id].SeatsAvailable + tx.deltas[id]
	r.mu.Unlock()

	if injected != nil {
		return 0, injected
	}
	if current < seats {
		return 0, fmt.Errorf("decrement seats on flight %d: %w", id, repository.ErrConflict)
	}
	tx.deltas[id] -= seats
	return current - seats, nil
}

func (r memFlights) Search(ctx context.Context, filter domain.FlightFilter) ([]domain.Flight, int64, error) {
	return nil, 0, fmt.Errorf("not supported")
}

type memBookings struct{ *memStore }

func (r memBookings) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := txOf(ctx)
	if err != nil {
		return err
	}
	booking.ID = r.nextBookingID.Add(1)
	tx.staged = append(tx.staged, *booking)
	return nil
}

func (r memBookings) ListByUser(ctx context.Context, userID int64) ([]domain.BookingConfirmation, error) {
	return nil, fmt.Errorf("not supported")
}

type memUsers struct{ *memStore }

func (r memUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", repository.ErrNotFound)
	}
	return &u, nil
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

func (r memUsers) Create(ctx context.Context, user *domain.User) error {
	return fmt.Errorf("not supported")
}

var (
	_ repository.Transactor        = (*memStore)(nil)
	_ repository.FlightRepository  = memFlights{}
	_ repository.BookingRepository = memBookings{}
	_ repository.UserRepository    = memUsers{}
)

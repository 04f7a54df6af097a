package flights

import (
	"context"
	"errors"

	"github.com/Domenick1991/skyreserve/internal/domain"
	"github.com/Domenick1991/skyreserve/internal/metrics"
	"github.com/Domenick1991/skyreserve/internal/repository"
	"go.uber.org/zap"
)

type FlightUseCase interface {
	Search(ctx context.Context, filter domain.FlightFilter) (*domain.FlightPage, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

// FlightCache stores search pages per catalog version.
type FlightCache interface {
	CatalogVersion(ctx context.Context) (int64, error)
	GetSearch(ctx context.Context, version int64, key string) (*domain.FlightPage, error)
	SetSearch(ctx context.Context, version int64, key string, page *domain.FlightPage) error
}

type FlightService struct {
	repo         repository.FlightRepository
	cache        FlightCache
	defaultLimit int
	maxLimit     int
	log          *zap.Logger
}

type FlightServiceOption func(*FlightService)

func WithCache(cache FlightCache) FlightServiceOption {
	return func(s *FlightService) {
		s.cache = cache
	}
}

func WithPageSize(defaultLimit, maxLimit int) FlightServiceOption {
	return func(s *FlightService) {
		s.defaultLimit = defaultLimit
		s.maxLimit = maxLimit
	}
}

func NewFlightService(repo repository.FlightRepository, log *zap.Logger, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{
		repo:         repo,
		defaultLimit: domain.DefaultPageSize,
		maxLimit:     domain.MaxPageSize,
		log:          log.With(zap.String("service", "flights")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns one page of the catalog. Equal filters return equal pages
// until a reservation commits.
func (s *FlightService) Search(ctx context.Context, filter domain.FlightFilter) (*domain.FlightPage, error) {
	filter, err := filter.Normalize(s.defaultLimit, s.maxLimit)
	if err != nil {
		return nil, domain.InvalidRequest(err.Error())
	}

	key := filter.CacheKey()
	version, cached := int64(0), s.cache != nil
	if cached {
		if version, err = s.cache.CatalogVersion(ctx); err != nil {
			s.log.Warn("catalog cache unavailable", zap.Error(err))
			cached = false
		}
	}
	if cached {
		page, err := s.cache.GetSearch(ctx, version, key)
		if err != nil {
			s.log.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		if page != nil {
			metrics.CacheHit()
			return page, nil
		}
		metrics.CacheMiss()
	}

	flights, total, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := domain.NewFlightPage(flights, total, filter)

	if cached {
		if err := s.cache.SetSearch(ctx, version, key, page); err != nil {
			s.log.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return page, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	flight, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.FlightNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return flight, nil
}

var _ FlightUseCase = (*FlightService)(nil)

package domain

import (
	"fmt"
	"strings"
	"time"
)

type SortField string

const (
	SortByDepartureTime SortField = "departure_time"
	SortByPrice         SortField = "price"
)

type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps (Page-1)*Limit far from overflowing the OFFSET.
	MaxPage         = 1_000_000
)

// sortAliases maps the camelCase spellings accepted by the public API.
var sortAliases = map[SortField]SortField{
	"departureTime": SortByDepartureTime,
}

// FlightFilter selects a page of the catalog. Zero values mean "no constraint"
// for the filters and "default" for paging and sorting.
type FlightFilter struct {
	Origin        string
	Destination   string
	DepartureFrom *time.Time
	DepartureTo   *time.Time
	SortBy        SortField
	SortOrder     SortOrder
	Page          int
	Limit         int
}

// Normalize fills defaults and clamps paging. It returns an error for values
// that cannot be corrected, such as an unknown sort field.
func (f FlightFilter) Normalize(defaultLimit, maxLimit int) (FlightFilter, error) {
	if defaultLimit <= 0 {
		defaultLimit = DefaultPageSize
	}
	if maxLimit <= 0 {
		maxLimit = MaxPageSize
	}

	f.Origin = strings.TrimSpace(f.Origin)
	f.Destination = strings.TrimSpace(f.Destination)

	if alias, ok := sortAliases[f.SortBy]; ok {
		f.SortBy = alias
	}
	switch f.SortBy {
	case "":
		f.SortBy = SortByDepartureTime
	case SortByDepartureTime, SortByPrice:
	default:
		return f, fmt.Errorf("unsupported sort field %q", f.SortBy)
	}

	switch SortOrder(strings.ToUpper(string(f.SortOrder))) {
	case "", SortAsc:
		f.SortOrder = SortAsc
	case SortDesc:
		f.SortOrder = SortDesc
	default:
		return f, fmt.Errorf("unsupported sort order %q", f.SortOrder)
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxPage {
		return f, fmt.Errorf("page must not exceed %d", MaxPage)
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.DepartureFrom != nil && f.DepartureTo != nil && f.DepartureTo.Before(*f.DepartureFrom) {
		return f, fmt.Errorf("departure range end is before its start")
	}
	return f, nil
}

func (f FlightFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// CacheKey is stable for equal normalized filters.
func (f FlightFilter) CacheKey() string {
	ts := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("o=%s|d=%s|from=%s|to=%s|sort=%s:%s|p=%d|l=%d",
		strings.ToLower(f.Origin), strings.ToLower(f.Destination),
		ts(f.DepartureFrom), ts(f.DepartureTo),
		f.SortBy, f.SortOrder, f.Page, f.Limit)
}

// DayRange returns the half-open UTC day [start, start+24h) containing date (YYYY-MM-DD).
func DayRange(date string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(time.DateOnly, date, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid departure date %q: %w", date, err)
	}
	return start, start.Add(24 * time.Hour), nil
}

type FlightPage struct {
	Flights    []Flight `json:"data"`
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"total_pages"`
}

func NewFlightPage(flights []Flight, total int64, f FlightFilter) *FlightPage {
	if flights == nil {
		flights = []Flight{}
	}
	return &FlightPage{
		Flights:    flights,
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: TotalPages(total, f.Limit),
	}
}

func TotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

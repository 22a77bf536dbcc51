package sapphire

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultLimit is the page size used when Query.Limit is zero.
const DefaultLimit = 100

// DateLayout is the wire format of start_date and end_date.
const DateLayout = "2006-01-02"

// Query filters a dataset read. Zero fields are not sent.
type Query struct {
	// Horizon is one of Horizons.
	Horizon string

	// Code is a station code.
	Code string

	// Type is the meteo (T, P) or snow (HS, ROF, SWE) variable.
	Type string

	// Model is one of ForecastModels (skill metrics only).
	Model string

	// Start and End bound the date range, both inclusive.
	Start time.Time
	End   time.Time

	// Skip is the pagination offset.
	Skip int

	// Limit is the page size; zero means DefaultLimit.
	Limit int
}

// Params validates q against ds and encodes it as query parameters.
func (q Query) Params(ds Dataset) (url.Values, error) {
	if q.Skip < 0 {
		return nil, invalidQuery("skip must be non-negative, got %d", q.Skip)
	}
	limit := q.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 0 {
		return nil, invalidQuery("limit must be positive, got %d", q.Limit)
	}

	v := url.Values{}
	v.Set("skip", strconv.Itoa(q.Skip))
	v.Set("limit", strconv.Itoa(limit))

	if q.Code != "" {
		v.Set("code", q.Code)
	}
	if q.Horizon != "" {
		if err := allowed(ds, "horizon", q.Horizon, Horizons); err != nil {
			return nil, err
		}
		v.Set("horizon", q.Horizon)
	}
	if q.Type != "" {
		if ds.TypeParam == "" {
			return nil, invalidQuery("%s does not filter by type", ds)
		}
		if err := allowed(ds, ds.TypeParam, q.Type, ds.TypeValues); err != nil {
			return nil, err
		}
		v.Set(ds.TypeParam, q.Type)
	}
	if q.Model != "" {
		if err := allowed(ds, "model", q.Model, ForecastModels); err != nil {
			return nil, err
		}
		v.Set("model", q.Model)
	}
	if !q.Start.IsZero() || !q.End.IsZero() {
		if !ds.Accepts("start_date") {
			return nil, invalidQuery("%s does not filter by date", ds)
		}
		if !q.Start.IsZero() && !q.End.IsZero() && q.End.Before(q.Start) {
			return nil, invalidQuery("end date %s is before start date %s",
				q.End.Format(DateLayout), q.Start.Format(DateLayout))
		}
	}
	if !q.Start.IsZero() {
		v.Set("start_date", q.Start.Format(DateLayout))
	}
	if !q.End.IsZero() {
		v.Set("end_date", q.End.Format(DateLayout))
	}
	return v, nil
}

// ParseDate parses a YYYY-MM-DD date. An empty string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, invalidQuery("date %q must be YYYY-MM-DD", s)
	}
	return t, nil
}

func allowed(ds Dataset, param, value string, valid []string) error {
	if !ds.Accepts(param) {
		return invalidQuery("%s does not filter by %s", ds, param)
	}
	for _, v := range valid {
		if v == value {
			return nil
		}
	}
	return invalidQuery("invalid %s %q, must be one of [%s]", param, value, strings.Join(valid, ", "))
}

func invalidQuery(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}

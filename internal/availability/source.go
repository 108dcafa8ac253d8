package availability

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ariefcatur/go-wedding-orders/internal/metrics"
	"github.com/ariefcatur/go-wedding-orders/internal/redisx"
)

type Backend interface {
	Checker
	BookedDates(ctx context.Context) ([]string, error)
	MonthlyAvailability(ctx context.Context, year, month int) ([]string, error)
}

// Source serves booked dates through a short-lived Redis cache. A Redis failure degrades to a
// direct backend read; it never fails the request.
type Source struct {
	rdb redis.Cmdable
	be  Backend
	ttl time.Duration
}

func NewSource(rdb redis.Cmdable, be Backend, ttl time.Duration) *Source {
	return &Source{rdb: rdb, be: be, ttl: ttl}
}

func (s *Source) Month(ctx context.Context, year, month int) ([]string, error) {
	return s.cached(ctx, redisx.BookedMonth(year, month), func(ctx context.Context) ([]string, error) {
		return s.be.MonthlyAvailability(ctx, year, month)
	})
}

func (s *Source) All(ctx context.Context) ([]string, error) {
	return s.cached(ctx, redisx.KeyBookedAll, s.be.BookedDates)
}

// CheckDate is never cached.
func (s *Source) CheckDate(ctx context.Context, date string) (bool, error) {
	return s.be.CheckDate(ctx, date)
}

// Calendar builds the grid of one month as seen on `today`.
func (s *Source) Calendar(ctx context.Context, year int, month time.Month, today time.Time, ownDate string) (Month, error) {
	booked, err := s.Month(ctx, year, int(month))
	if err != nil {
		return Month{}, err
	}
	return BuildMonth(year, month, Rules{
		Today:   today.Format(time.DateOnly),
		Booked:  NewSet(booked),
		OwnDate: ownDate,
	}), nil
}

func (s *Source) cached(ctx context.Context, key string, load func(context.Context) ([]string, error)) ([]string, error) {
	lg := zerolog.Ctx(ctx)

	var dates []string
	found, err := redisx.GetJSON(ctx, s.rdb, key, &dates)
	switch {
	case err != nil:
		metrics.BookedDatesCache.WithLabelValues("error").Inc()
		lg.Warn().Err(err).Str("component", "availability").Str("key", key).Msg("booked dates cache read failed")
	case found:
		metrics.BookedDatesCache.WithLabelValues("hit").Inc()
		return dates, nil
	default:
		metrics.BookedDatesCache.WithLabelValues("miss").Inc()
	}

	dates, err = load(ctx)
	if err != nil {
		return nil, err
	}
	if dates == nil {
		dates = []string{}
	}
	if err := redisx.SetJSON(ctx, s.rdb, key, dates, s.ttl); err != nil {
		lg.Warn().Err(err).Str("component", "availability").Str("key", key).Msg("booked dates cache write failed")
	}
	return dates, nil
}

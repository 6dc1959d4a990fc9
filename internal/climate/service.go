// Package climate implements the read-only queries served by the API:
// trailing-year precipitation, the station list, trailing-year temperature
// observations for the most active station, and min/avg/max temperature over
// a date range.
//
// Dates are ISO 8601 strings compared lexically by the store. Inputs are not
// validated; a malformed date simply matches nothing.
package climate

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lox/climateapi/internal/metrics"
	"github.com/lox/climateapi/internal/models"
	"github.com/lox/climateapi/internal/store"
)

const DateLayout = "2006-01-02"

// Opener hands out request-scoped connections. *store.Store satisfies it.
type Opener interface {
	Conn(ctx context.Context) (*store.Conn, error)
}

type Config struct {
	// ReferenceDate anchors the trailing lookback window. It is configured,
	// not derived from the dataset.
	ReferenceDate     time.Time
	MostActiveStation string
	LookbackDays      int
}

type Service struct {
	db  Opener
	cfg Config

	retryable    func(error) bool
	maxRetryTime time.Duration
}

func New(db Opener, cfg Config) *Service {
	return &Service{
		db:           db,
		cfg:          cfg,
		retryable:    store.IsTransient,
		maxRetryTime: 2 * time.Second,
	}
}

func (s *Service) Config() Config {
	return s.cfg
}

// LookbackStart is the inclusive lower bound of the trailing window.
func (s *Service) LookbackStart() string {
	return s.cfg.ReferenceDate.AddDate(0, 0, -s.cfg.LookbackDays).Format(DateLayout)
}

// Precipitation returns every (date, prcp) row inside the lookback window,
// across all stations, in store order.
func (s *Service) Precipitation(ctx context.Context) ([]models.PrecipitationReading, error) {
	since := s.LookbackStart()
	return withConn(ctx, s, "precipitation", func(c *store.Conn) ([]models.PrecipitationReading, error) {
		return c.Precipitation(ctx, since)
	})
}

func (s *Service) Stations(ctx context.Context) ([]string, error) {
	return withConn(ctx, s, "stations", func(c *store.Conn) ([]string, error) {
		return c.StationIDs(ctx)
	})
}

// TemperatureObservations returns one (date, tobs) record per row for the
// most active station inside the lookback window.
func (s *Service) TemperatureObservations(ctx context.Context) ([]models.TemperatureObservation, error) {
	since := s.LookbackStart()
	return withConn(ctx, s, "tobs", func(c *store.Conn) ([]models.TemperatureObservation, error) {
		return c.TemperatureObservations(ctx, s.cfg.MostActiveStation, since)
	})
}

// TemperatureStats returns MIN/AVG/MAX tobs for date >= start, bounded by
// date <= end when end is non-nil. An empty range yields all-null stats, not
// an error. The average is rounded to two decimals, half to even.
func (s *Service) TemperatureStats(ctx context.Context, start string, end *string) (models.TemperatureStats, error) {
	stats, err := withConn(ctx, s, "temperature_stats", func(c *store.Conn) (models.TemperatureStats, error) {
		return c.TemperatureStats(ctx, start, end)
	})
	if err != nil {
		return stats, err
	}
	if stats.Avg.Valid {
		stats.Avg.Float64 = Round2(stats.Avg.Float64)
	}
	return stats, nil
}

func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// withConn runs fn on a fresh connection, closing it before returning.
// Busy or locked errors rerun the whole read on a new connection.
func withConn[T any](ctx context.Context, s *Service, op string, fn func(*store.Conn) (T, error)) (T, error) {
	var result T
	operation := func() error {
		conn, err := s.db.Conn(ctx)
		if err != nil {
			return s.classify(err)
		}
		defer conn.Close()

		result, err = fn(conn)
		if err != nil {
			return s.classify(err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 25 * time.Millisecond
	bo.MaxElapsedTime = s.maxRetryTime

	notify := func(err error, wait time.Duration) {
		metrics.StoreRetriesTotal.WithLabelValues(op).Inc()
		slog.Warn("retrying dataset read", "op", op, "wait", wait, "err", err)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(bo, ctx), notify); err != nil {
		var zero T
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func (s *Service) classify(err error) error {
	if s.retryable(err) {
		return err
	}
	return backoff.Permanent(err)
}

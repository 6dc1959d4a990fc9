package store

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lox/climateapi/internal/metrics"
	"github.com/lox/climateapi/internal/models"
)

type Options struct {
	Path         string
	MaxOpenConns int
}

// Store is the process-wide handle on the dataset. It is created once at
// startup and hands out one Conn per request.
type Store struct {
	db   *sqlx.DB
	path string
}

// Open opens the dataset read-only and validates that it carries the
// measurement and station tables.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if _, err := os.Stat(opts.Path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnreachable, err)
	}

	source, err := dsn(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnreachable, err)
	}

	db, err := sqlx.Open("sqlite", source)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrStoreUnreachable, opts.Path, err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", ErrStoreUnreachable, opts.Path, err)
	}

	s := &Store{db: db, path: opts.Path}
	if err := s.validateSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// dsn builds a read-only file: URI. The path is made absolute and escaped so
// that '#', '?' and '%' in directory names reach SQLite intact.
func dsn(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}

	q := url.Values{}
	q.Set("mode", "ro")
	q.Add("_pragma", "query_only(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: q.Encode()}
	return u.String(), nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Conn acquires a dedicated connection for a single request. Callers must
// Close it before responding.
func (s *Store) Conn(ctx context.Context) (*Conn, error) {
	c, err := s.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Conn{conn: c}, nil
}

// Summary reports row counts and the observed date span.
func (s *Store) Summary(ctx context.Context) (models.DatasetSummary, error) {
	defer observe("summary", time.Now())

	var sum models.DatasetSummary
	err := s.db.GetContext(ctx, &sum, `
		SELECT
			(SELECT COUNT(*) FROM measurement) AS measurements,
			(SELECT COUNT(*) FROM station) AS stations,
			(SELECT MIN(CAST(date AS TEXT)) FROM measurement) AS first_date,
			(SELECT MAX(CAST(date AS TEXT)) FROM measurement) AS last_date
	`)
	if err != nil {
		return sum, fmt.Errorf("dataset summary: %w", err)
	}
	return sum, nil
}

// Conn is a request-scoped connection. Close is idempotent.
type Conn struct {
	conn     *sqlx.Conn
	once     sync.Once
	closeErr error
}

func (c *Conn) Close() error {
	c.once.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// Dates are selected through CAST so that a column declared DATE is returned
// as its stored ISO string rather than converted to time.Time by the driver.

func (c *Conn) Precipitation(ctx context.Context, since string) ([]models.PrecipitationReading, error) {
	defer observe("precipitation", time.Now())

	var readings []models.PrecipitationReading
	err := c.conn.SelectContext(ctx, &readings, `
		SELECT CAST(date AS TEXT) AS date, prcp
		FROM measurement
		WHERE date >= ?
	`, since)
	if err != nil {
		return nil, fmt.Errorf("query precipitation: %w", err)
	}
	return readings, nil
}

func (c *Conn) StationIDs(ctx context.Context) ([]string, error) {
	defer observe("stations", time.Now())

	var ids []string
	if err := c.conn.SelectContext(ctx, &ids, `SELECT station FROM station`); err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	return ids, nil
}

func (c *Conn) TemperatureObservations(ctx context.Context, stationID, since string) ([]models.TemperatureObservation, error) {
	defer observe("tobs", time.Now())

	var obs []models.TemperatureObservation
	err := c.conn.SelectContext(ctx, &obs, `
		SELECT CAST(date AS TEXT) AS date, tobs
		FROM measurement
		WHERE station = ? AND date >= ?
	`, stationID, since)
	if err != nil {
		return nil, fmt.Errorf("query temperature observations: %w", err)
	}
	return obs, nil
}

// TemperatureStats aggregates tobs over date >= start, and date <= end when
// end is non-nil. Both bounds are inclusive.
func (c *Conn) TemperatureStats(ctx context.Context, start string, end *string) (models.TemperatureStats, error) {
	defer observe("temperature_stats", time.Now())

	query := `
		SELECT MIN(tobs) AS tmin, AVG(tobs) AS tavg, MAX(tobs) AS tmax
		FROM measurement
		WHERE date >= ?`
	args := []any{start}
	if end != nil {
		query += ` AND date <= ?`
		args = append(args, *end)
	}

	var stats models.TemperatureStats
	if err := c.conn.GetContext(ctx, &stats, query, args...); err != nil {
		return stats, fmt.Errorf("query temperature stats: %w", err)
	}
	return stats, nil
}

func observe(query string, start time.Time) {
	metrics.StoreQueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}

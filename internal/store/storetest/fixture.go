// Package storetest builds small on-disk datasets shaped like the Hawaii
// climate file for use in tests.
package storetest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/lox/climateapi/internal/models"
	"github.com/lox/climateapi/internal/store"
)

const Schema = `
CREATE TABLE measurement (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    station TEXT,
    date TEXT,
    prcp FLOAT,
    tobs FLOAT
);

CREATE TABLE station (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    station TEXT,
    name TEXT,
    latitude FLOAT,
    longitude FLOAT,
    elevation FLOAT
);
`

// Precip returns a valid precipitation value.
func Precip(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

// Write creates a dataset file in a temp dir with the given rows and returns
// its path. Rows are inserted in order so natural row order matches.
func Write(t testing.TB, stations []models.Station, measurements []models.Measurement) string {
	t.Helper()
	return WriteSchema(t, Schema, stations, measurements)
}

// WriteSchema is Write with a caller supplied schema.
func WriteSchema(t testing.TB, schema string, stations []models.Station, measurements []models.Measurement) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "climate.sqlite")
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create fixture schema: %v", err)
	}
	for _, st := range stations {
		if _, err := db.NamedExec(`
			INSERT INTO station (station, name, latitude, longitude, elevation)
			VALUES (:station, :name, :latitude, :longitude, :elevation)
		`, st); err != nil {
			t.Fatalf("insert station %s: %v", st.StationID, err)
		}
	}
	for _, m := range measurements {
		if _, err := db.NamedExec(`
			INSERT INTO measurement (station, date, prcp, tobs)
			VALUES (:station, :date, :prcp, :tobs)
		`, m); err != nil {
			t.Fatalf("insert measurement %s/%s: %v", m.StationID, m.Date, err)
		}
	}
	return path
}

// Open writes a dataset and opens it through store.Open.
func Open(t testing.TB, stations []models.Station, measurements []models.Measurement) *store.Store {
	t.Helper()

	path := Write(t, stations, measurements)
	st, err := store.Open(context.Background(), store.Options{Path: path, MaxOpenConns: 2})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// Hawaii is a handful of rows from the real dataset around the default
// reference date, plus one row outside the lookback window.
func Hawaii() ([]models.Station, []models.Measurement) {
	stations := []models.Station{
		{StationID: "USC00519397"},
		{StationID: "USC00513117"},
		{StationID: "USC00519281"},
	}
	measurements := []models.Measurement{
		{StationID: "USC00519397", Date: "2016-08-22", Precipitation: Precip(0.4), TemperatureObservation: 79},
		{StationID: "USC00519397", Date: "2016-08-23", Precipitation: Precip(0.0), TemperatureObservation: 81},
		{StationID: "USC00519281", Date: "2016-08-23", Precipitation: Precip(1.79), TemperatureObservation: 77},
		{StationID: "USC00513117", Date: "2017-08-20", Precipitation: Precip(0.02), TemperatureObservation: 78},
		{StationID: "USC00519281", Date: "2017-08-20", TemperatureObservation: 80},
		{StationID: "USC00519281", Date: "2017-08-23", Precipitation: Precip(0.0), TemperatureObservation: 82},
	}
	return stations, measurements
}

// OpenHawaii opens a store over the Hawaii fixture rows.
func OpenHawaii(t testing.TB) *store.Store {
	t.Helper()
	stations, measurements := Hawaii()
	return Open(t, stations, measurements)
}

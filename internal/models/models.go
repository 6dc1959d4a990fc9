package models

import "database/sql"

// Measurement is one row of the measurement table.
type Measurement struct {
	StationID              string          `db:"station"`
	Date                   string          `db:"date"` // ISO 8601, compares lexically
	Precipitation          sql.NullFloat64 `db:"prcp"`
	TemperatureObservation float64         `db:"tobs"`
}

// Station is one row of the station table. Only StationID is served by the API.
type Station struct {
	StationID string          `db:"station"`
	Name      sql.NullString  `db:"name"`
	Latitude  sql.NullFloat64 `db:"latitude"`
	Longitude sql.NullFloat64 `db:"longitude"`
	Elevation sql.NullFloat64 `db:"elevation"`
}

type PrecipitationReading struct {
	Date          string          `db:"date"`
	Precipitation sql.NullFloat64 `db:"prcp"`
}

type TemperatureObservation struct {
	Date        string  `db:"date"`
	Temperature float64 `db:"tobs"`
}

// TemperatureStats holds MIN/AVG/MAX of tobs over a date range. All three are
// invalid when the range matched no rows.
type TemperatureStats struct {
	Min sql.NullFloat64 `db:"tmin"`
	Avg sql.NullFloat64 `db:"tavg"`
	Max sql.NullFloat64 `db:"tmax"`
}

type DatasetSummary struct {
	Measurements int64          `db:"measurements"`
	Stations     int64          `db:"stations"`
	FirstDate    sql.NullString `db:"first_date"`
	LastDate     sql.NullString `db:"last_date"`
}

package api

import (
	"database/sql"

	"github.com/lox/climateapi/internal/models"
)

// precipitationPayload keys readings by date. Several stations report on the
// same date, so later rows overwrite earlier ones.
func precipitationPayload(readings []models.PrecipitationReading) map[string]*float64 {
	out := make(map[string]*float64, len(readings))
	for _, r := range readings {
		out[r.Date] = nullable(r.Precipitation)
	}
	return out
}

func stationsPayload(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// tobsPayload keeps one single-key object per observation, so repeated dates
// are not merged.
func tobsPayload(obs []models.TemperatureObservation) []map[string]float64 {
	out := make([]map[string]float64, 0, len(obs))
	for _, o := range obs {
		out = append(out, map[string]float64{o.Date: o.Temperature})
	}
	return out
}

type temperatureStats struct {
	TMIN *float64 `json:"TMIN"`
	TAVG *float64 `json:"TAVG"`
	TMAX *float64 `json:"TMAX"`
}

func temperatureStatsPayload(stats models.TemperatureStats) temperatureStats {
	return temperatureStats{
		TMIN: nullable(stats.Min),
		TAVG: nullable(stats.Avg),
		TMAX: nullable(stats.Max),
	}
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

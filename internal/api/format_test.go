package api

import (
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/lox/climateapi/internal/models"
)

func TestPrecipitationPayload_LastWins(t *testing.T) {
	readings := []models.PrecipitationReading{
		{Date: "2017-08-23", Precipitation: sql.NullFloat64{Float64: 0.5, Valid: true}},
		{Date: "2017-08-22"},
		{Date: "2017-08-23", Precipitation: sql.NullFloat64{Float64: 0.1, Valid: true}},
	}

	got := precipitationPayload(readings)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got["2017-08-23"] == nil || *got["2017-08-23"] != 0.1 {
		t.Errorf("2017-08-23 = %v, want 0.1", got["2017-08-23"])
	}
	if v, ok := got["2017-08-22"]; !ok || v != nil {
		t.Errorf("2017-08-22 = %v, want explicit null", v)
	}
}

func TestTobsPayload_KeepsRepeatedDates(t *testing.T) {
	obs := []models.TemperatureObservation{
		{Date: "2017-08-23", Temperature: 81},
		{Date: "2017-08-23", Temperature: 82},
	}

	b, err := json.Marshal(tobsPayload(obs))
	if err != nil {
		t.Fatal(err)
	}
	if want := `[{"2017-08-23":81},{"2017-08-23":82}]`; string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
}

func TestTemperatureStatsPayload(t *testing.T) {
	tests := []struct {
		name  string
		stats models.TemperatureStats
		want  string
	}{
		{
			name:  "empty range",
			stats: models.TemperatureStats{},
			want:  `{"TMIN":null,"TAVG":null,"TMAX":null}`,
		},
		{
			name: "populated",
			stats: models.TemperatureStats{
				Min: sql.NullFloat64{Float64: 56, Valid: true},
				Avg: sql.NullFloat64{Float64: 74.59, Valid: true},
				Max: sql.NullFloat64{Float64: 87, Valid: true},
			},
			want: `{"TMIN":56,"TAVG":74.59,"TMAX":87}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(temperatureStatsPayload(tt.stats))
			if err != nil {
				t.Fatal(err)
			}
			if string(b) != tt.want {
				t.Errorf("got %s, want %s", b, tt.want)
			}
		})
	}
}

func TestStationsPayload_NilIsEmptyList(t *testing.T) {
	b, err := json.Marshal(stationsPayload(nil))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "[]" {
		t.Errorf("got %s, want []", b)
	}
}

package api

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/lox/climateapi/internal/climate"
)

//go:embed templates/*
var templateFS embed.FS

func newTemplates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

type route struct {
	Path        string
	Link        bool
	Description string
}

type indexData struct {
	Routes []route
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	cfg := s.climate.Config()
	data := indexData{
		Routes: []route{
			{Path: "/api/v1.0/precipitation", Link: true, Description: "Precipitation for the 12 months before " + cfg.ReferenceDate.Format(climate.DateLayout)},
			{Path: "/api/v1.0/stations", Link: true, Description: "List of all stations"},
			{Path: "/api/v1.0/tobs", Link: true, Description: "Temperature observations for the 12 months before " + cfg.ReferenceDate.Format(climate.DateLayout) + " at the most active station (" + cfg.MostActiveStation + ")"},
			{Path: "/api/v1.0/<start>", Description: "Min, Avg, and Max temperature from start date"},
			{Path: "/api/v1.0/<start>/<end>", Description: "Min, Avg, and Max temperature for a date range"},
		},
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.Error("template error", "template", "index.html", "err", err)
	}
}

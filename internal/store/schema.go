package store

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

type tableSchema struct {
	Name    string
	Columns []string
}

// requiredSchema lists the tables and columns read by the API. Extra tables
// and columns in the dataset are ignored.
var requiredSchema = []tableSchema{
	{Name: "measurement", Columns: []string{"station", "date", "prcp", "tobs"}},
	{Name: "station", Columns: []string{"station"}},
}

func (s *Store) validateSchema(ctx context.Context) error {
	for _, t := range requiredSchema {
		columns, err := s.tableColumns(ctx, t.Name)
		if err != nil {
			return fmt.Errorf("%w: read %s schema: %w", ErrStoreUnreachable, t.Name, err)
		}
		if len(columns) == 0 {
			return fmt.Errorf("%w: table %q not found", ErrSchemaMismatch, t.Name)
		}

		var missing []string
		for _, col := range t.Columns {
			if !slices.Contains(columns, col) {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: table %q missing columns %s", ErrSchemaMismatch, t.Name, strings.Join(missing, ", "))
		}

		slog.Debug("schema: table ok", "table", t.Name, "columns", len(columns))
	}
	return nil
}

func (s *Store) tableColumns(ctx context.Context, table string) ([]string, error) {
	var columns []string
	if err := s.db.SelectContext(ctx, &columns, `SELECT name FROM pragma_table_info(?)`, table); err != nil {
		return nil, err
	}
	for i, c := range columns {
		columns[i] = strings.ToLower(c)
	}
	return columns, nil
}

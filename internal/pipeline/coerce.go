package pipeline

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/buoy-data-ingest/internal/domain"
)

// CoerceTypes converts a schema-normalized table into the final series.
//
// Timestamp cells are parsed against the format's layout list; rows whose
// timestamp does not parse are dropped entirely (these are typically stray
// unit rows or header repeats embedded in the data block). Surviving rows are
// stable-sorted ascending by timestamp. Every other cell is float-coerced,
// with failures becoming explicit missing markers rather than aborting
// anything. Zero surviving rows is a hard failure: an empty series is not a
// valid success.
func CoerceTypes(table RawTable, f Format) (domain.Series, int, error) {
	tsIdx := -1
	for i, name := range table.Header {
		if name == domain.FieldTimestamp {
			tsIdx = i
			break
		}
	}
	if tsIdx < 0 {
		return domain.Series{}, 0, &domain.TypeCoercionError{Reason: "no timestamp column in table"}
	}

	columns := make([]string, 0, len(table.Header)-1)
	for i, name := range table.Header {
		if i != tsIdx {
			columns = append(columns, name)
		}
	}

	obs := make([]domain.Observation, 0, len(table.Rows))
	for _, row := range table.Rows {
		ts, ok := parseTimestamp(row[tsIdx], f.TimeLayouts)
		if !ok {
			continue
		}

		values := make([]domain.Value, 0, len(columns))
		for i, cell := range row {
			if i == tsIdx {
				continue
			}
			values = append(values, parseMeasurement(cell))
		}
		obs = append(obs, domain.Observation{Timestamp: ts, Values: values})
	}

	if len(obs) == 0 {
		return domain.Series{}, len(table.Rows), &domain.TypeCoercionError{
			Reason: "no row with a parseable timestamp",
		}
	}

	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Timestamp.Before(obs[j].Timestamp)
	})

	return domain.Series{Columns: columns, Observations: obs}, len(table.Rows), nil
}

// parseTimestamp tries each layout in order.
func parseTimestamp(cell string, layouts []string) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, cell); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// parseMeasurement float-coerces one cell. Comma decimal separators are
// tolerated (older firmware localizes numbers); anything unparseable, and a
// literal NaN, becomes the missing marker.
func parseMeasurement(cell string) domain.Value {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return domain.Missing()
	}

	v, err := strconv.ParseFloat(cell, 64)
	if err != nil && strings.Count(cell, ",") == 1 && !strings.Contains(cell, ".") {
		v, err = strconv.ParseFloat(strings.Replace(cell, ",", ".", 1), 64)
	}
	if err != nil || math.IsNaN(v) {
		return domain.Missing()
	}
	return domain.Num(v)
}

package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/buoy-data-ingest/internal/domain"
)

func coerceTable(t *testing.T, rows [][]string) (domain.Series, int, error) {
	t.Helper()
	table := RawTable{
		Header: []string{domain.FieldTimestamp, domain.FieldSignificantWaveHeight, domain.FieldPeakPeriod},
		Rows:   rows,
	}
	return CoerceTypes(table, DefaultFormat())
}

func TestCoerceTypes(t *testing.T) {
	t.Run("well-formed rows", func(t *testing.T) {
		series, parsed, err := coerceTable(t, [][]string{
			{"2026-03-03 00:00:00", "1.62", "9.5"},
			{"2026-03-03 00:30:00", "1.70", "9.8"},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, parsed)
		assert.Equal(t, []string{domain.FieldSignificantWaveHeight, domain.FieldPeakPeriod}, series.Columns)
		require.Equal(t, 2, series.Len())
		assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), series.At(0).Timestamp)
		assert.Equal(t, domain.Num(1.62), series.At(0).Values[0])
		assert.Equal(t, domain.Num(9.8), series.At(1).Values[1])
	})

	t.Run("stray units row dropped", func(t *testing.T) {
		series, parsed, err := coerceTable(t, [][]string{
			{"units", "m", "s"},
			{"2026-03-03 00:00:00", "1.62", "9.5"},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, parsed)
		assert.Equal(t, 1, series.Len())
	})

	t.Run("rows sorted ascending by timestamp", func(t *testing.T) {
		series, _, err := coerceTable(t, [][]string{
			{"2026-03-03 01:00:00", "1.80", "9.9"},
			{"2026-03-03 00:00:00", "1.62", "9.5"},
			{"2026-03-03 00:30:00", "1.70", "9.8"},
		})
		require.NoError(t, err)
		for i := 1; i < series.Len(); i++ {
			assert.False(t, series.At(i).Timestamp.Before(series.At(i-1).Timestamp))
		}
		assert.Equal(t, domain.Num(1.62), series.At(0).Values[0])
	})

	t.Run("stable sort keeps source order on ties", func(t *testing.T) {
		series, _, err := coerceTable(t, [][]string{
			{"2026-03-03 00:00:00", "1.0", ""},
			{"2026-03-03 00:00:00", "2.0", ""},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.Num(1.0), series.At(0).Values[0])
		assert.Equal(t, domain.Num(2.0), series.At(1).Values[0])
	})

	t.Run("non-numeric cells become missing", func(t *testing.T) {
		series, _, err := coerceTable(t, [][]string{
			{"2026-03-03 00:00:00", "n/a", ""},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.Missing(), series.At(0).Values[0])
		assert.Equal(t, domain.Missing(), series.At(0).Values[1])
	})

	t.Run("comma decimal separator tolerated", func(t *testing.T) {
		series, _, err := coerceTable(t, [][]string{
			{"2026-03-03 00:00:00", "1,62", "9,5"},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.Num(1.62), series.At(0).Values[0])
		assert.Equal(t, domain.Num(9.5), series.At(0).Values[1])
	})

	t.Run("literal NaN becomes missing", func(t *testing.T) {
		series, _, err := coerceTable(t, [][]string{
			{"2026-03-03 00:00:00", "NaN", "9.5"},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.Missing(), series.At(0).Values[0])
		assert.Equal(t, domain.Num(9.5), series.At(0).Values[1])
	})

	t.Run("zero surviving rows is a hard failure", func(t *testing.T) {
		_, _, err := coerceTable(t, [][]string{
			{"units", "m", "s"},
			{"not a date", "1.0", "2.0"},
		})
		var coerceErr *domain.TypeCoercionError
		require.ErrorAs(t, err, &coerceErr)
		assert.Contains(t, err.Error(), "parseable timestamp")
	})

	t.Run("missing timestamp column is a hard failure", func(t *testing.T) {
		table := RawTable{
			Header: []string{domain.FieldSignificantWaveHeight, domain.FieldPeakPeriod},
			Rows:   [][]string{{"1.62", "9.5"}},
		}
		_, _, err := CoerceTypes(table, DefaultFormat())
		var coerceErr *domain.TypeCoercionError
		require.ErrorAs(t, err, &coerceErr)
		assert.Contains(t, err.Error(), "no timestamp column")
	})
}

func TestParseTimestamp(t *testing.T) {
	layouts := DefaultFormat().TimeLayouts

	tests := []struct {
		name string
		cell string
		ok   bool
	}{
		{"export layout", "2026-03-03 15:04:05", true},
		{"iso t separator", "2026-03-03T15:04:05", true},
		{"rfc3339", "2026-03-03T15:04:05Z", true},
		{"minutes only", "2026-03-03 15:04", true},
		{"dotted european", "03.03.2026 15:04:05", true},
		{"slashed european", "03/03/2026 15:04", true},
		{"surrounding whitespace", "  2026-03-03 15:04:05  ", true},
		{"comma fractional seconds", "2026-03-03 15:04:05,123", true},
		{"dot fractional seconds", "2026-03-03 15:04:05.123", true},
		{"units literal", "units", false},
		{"empty", "", false},
		{"number", "1.62", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := parseTimestamp(tt.cell, layouts)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestParseMeasurement(t *testing.T) {
	tests := []struct {
		name     string
		cell     string
		expected domain.Value
	}{
		{"plain float", "1.62", domain.Num(1.62)},
		{"integer", "210", domain.Num(210)},
		{"negative", "-3.5", domain.Num(-3.5)},
		{"comma decimal", "1,62", domain.Num(1.62)},
		{"scientific", "1.5e2", domain.Num(150)},
		{"empty", "", domain.Missing()},
		{"text", "calm", domain.Missing()},
		{"nan literal", "nan", domain.Missing()},
		{"two commas", "1,6,2", domain.Missing()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseMeasurement(tt.cell))
		})
	}
}

package domain

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"
)

// Field names the logical columns of the SmartGuard schema. Logical fields are
// plain strings so pass-through measurement columns and logical columns share
// one namespace in a Series.
type Field = string

const (
	FieldTimestamp             Field = "Timestamp"
	FieldSignificantWaveHeight Field = "SignificantWaveHeight"
	FieldPeakPeriod            Field = "PeakPeriod"
	FieldMeanPeriod            Field = "MeanPeriod"
	FieldPeakDirection         Field = "PeakDirection"
)

// ExportTimeLayout is the timestamp format used when re-serializing a series.
// It is the first layout the coercer tries, so exported CSVs survive a second
// trip through the pipeline unchanged.
const ExportTimeLayout = "2006-01-02 15:04:05"

// Value is one measurement cell: a float plus a validity flag. A zero Value is
// the missing marker.
type Value struct {
	V     float64
	Valid bool
}

// Num returns a valid Value.
func Num(v float64) Value { return Value{V: v, Valid: true} }

// Missing returns the explicit missing marker.
func Missing() Value { return Value{} }

// MarshalJSON encodes a missing Value as null, a present one as a number.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

// UnmarshalJSON decodes null as missing and a number as a present value.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Missing()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Num(f)
	return nil
}

// Observation is one timestamped row. Values is parallel to the owning
// Series' Columns slice.
type Observation struct {
	Timestamp time.Time `json:"timestamp"`
	Values    []Value   `json:"values"`
}

// Series is the normalized time series produced by the pipeline: a stable,
// ordered column set and observations sorted non-decreasing by timestamp.
// The timestamp is not listed in Columns; it is a property of every row.
type Series struct {
	Columns      []string      `json:"columns"`
	Observations []Observation `json:"observations"`
}

// Len returns the number of observations.
func (s *Series) Len() int { return len(s.Observations) }

// At returns the i-th observation in time order.
func (s *Series) At(i int) Observation { return s.Observations[i] }

// ColumnIndex returns the position of a column by logical or pass-through name.
func (s *Series) ColumnIndex(name string) (int, bool) {
	for i, c := range s.Columns {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// Column returns all values of one column in row order.
func (s *Series) Column(name string) ([]Value, bool) {
	idx, ok := s.ColumnIndex(name)
	if !ok {
		return nil, false
	}
	out := make([]Value, len(s.Observations))
	for i, obs := range s.Observations {
		out[i] = obs.Values[idx]
	}
	return out, true
}

// Stats summarizes the non-missing values of one column.
type Stats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// Stats aggregates min/max/mean over the non-missing values of a column.
// Returns false when the column does not exist. A column with zero valid
// values yields Count 0 and zeroed aggregates.
func (s *Series) Stats(name string) (Stats, bool) {
	idx, ok := s.ColumnIndex(name)
	if !ok {
		return Stats{}, false
	}

	st := Stats{Column: name, Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	for _, obs := range s.Observations {
		v := obs.Values[idx]
		if !v.Valid {
			continue
		}
		st.Count++
		sum += v.V
		st.Min = math.Min(st.Min, v.V)
		st.Max = math.Max(st.Max, v.V)
	}
	if st.Count == 0 {
		return Stats{Column: name}, true
	}
	st.Mean = sum / float64(st.Count)
	return st, true
}

// DirectionSector is one bin of a directional distribution.
type DirectionSector struct {
	Degrees float64 `json:"degrees"` // lower edge of the sector
	Count   int     `json:"count"`
}

// DirectionSectors bins a direction column into fixed-width compass sectors
// (e.g. width 10 gives sectors 0, 10, ... 350), the aggregation behind the
// wave-rose view. Missing values are skipped; directions are wrapped to
// [0, 360). Returns false when the column does not exist or width is not a
// positive divisor-friendly sector size.
func (s *Series) DirectionSectors(name string, width float64) ([]DirectionSector, bool) {
	if width <= 0 || width > 360 {
		return nil, false
	}
	idx, ok := s.ColumnIndex(name)
	if !ok {
		return nil, false
	}

	counts := map[float64]int{}
	for _, obs := range s.Observations {
		v := obs.Values[idx]
		if !v.Valid {
			continue
		}
		deg := math.Mod(v.V, 360)
		if deg < 0 {
			deg += 360
		}
		counts[math.Floor(deg/width)*width]++
	}

	sectors := make([]DirectionSector, 0, int(360/width))
	for deg := 0.0; deg < 360; deg += width {
		if n, ok := counts[deg]; ok {
			sectors = append(sectors, DirectionSector{Degrees: deg, Count: n})
		}
	}
	return sectors, true
}

// WriteCSV re-serializes the series as UTF-8 comma-separated text: a header
// row of canonical column names (timestamp first), then one row per
// observation. Missing values serialize as empty cells. The output is
// round-trip safe: feeding it back through the pipeline reproduces the same
// row count and column set.
func (s *Series) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := append([]string{FieldTimestamp}, s.Columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(header))
	for _, obs := range s.Observations {
		row[0] = obs.Timestamp.UTC().Format(ExportTimeLayout)
		for i, v := range obs.Values {
			if v.Valid {
				row[i+1] = strconv.FormatFloat(v.V, 'g', -1, 64)
			} else {
				row[i+1] = ""
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

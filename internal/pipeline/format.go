// Package pipeline turns a raw SmartGuard export upload into a normalized
// time series through five strictly-forward stages: decode bytes to lines,
// locate the header row, parse the delimited table, canonicalize and map
// column names, and coerce timestamps and measurements. Everything that
// varies across firmware/export versions — encoding candidates, header
// markers, name-mapping rules, ragged-row policy — is data in a [Format], so
// format drift is handled by extending configuration rather than forking
// stage logic.
package pipeline

import (
	"strings"

	"github.com/couchcryptid/buoy-data-ingest/internal/domain"
)

// RaggedPolicy decides what happens to a data row whose cell count differs
// from the header's.
type RaggedPolicy int

const (
	// RaggedPad keeps short rows, padding missing trailing cells. Trailing
	// optional columns are common in this family, so this is the default.
	RaggedPad RaggedPolicy = iota
	// RaggedDrop rejects rows that do not match the header arity.
	RaggedDrop
)

// MappingRule renames a canonicalized column to a logical field. Matching is
// done on a squashed key (lowercased, spaces/underscores/hyphens removed):
// the rule fires when any of Match is a substring of the key, or any of
// Prefix starts it, and none of Exclude appears. First firing rule wins; each
// field is claimed at most once. Prefix exists for short tokens like "date"
// that would otherwise fire on unrelated words embedding them ("Validated").
type MappingRule struct {
	Field   domain.Field
	Match   []string
	Prefix  []string
	Exclude []string
}

// Matches reports whether the rule fires for a squashed column key.
func (r MappingRule) Matches(key string) bool {
	for _, ex := range r.Exclude {
		if strings.Contains(key, ex) {
			return false
		}
	}
	for _, m := range r.Match {
		if strings.Contains(key, m) {
			return true
		}
	}
	for _, p := range r.Prefix {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// matchKey squashes a canonical column name for rule matching.
func matchKey(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch r {
		case ' ', '\t', '_', '-':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Format is the fixed configuration of one export-format family.
type Format struct {
	// Charsets are tried in order by the decoder.
	Charsets []Charset
	// DecodeMarkers gate acceptance of a decode: at least one must appear
	// (case-insensitive) in the decoded text. Legacy 8-bit charsets decode
	// any byte soup without error, so decoding alone proves nothing.
	DecodeMarkers []string
	// HeaderWindow bounds the header scan to the first N lines.
	HeaderWindow int
	// HeaderMarkers are alternative token sets; a line containing every token
	// of any one set (case-insensitive) is the header row.
	HeaderMarkers [][]string
	// Rules map canonicalized column names to logical fields, in order.
	Rules []MappingRule
	// TimeLayouts are tried in order when parsing timestamp cells.
	TimeLayouts []string
	// Ragged selects the short-row policy, see RaggedPolicy.
	Ragged RaggedPolicy
}

// DefaultFormat returns the configuration for the SmartGuard export family.
// The rule table is heuristic, refined against sample files from several
// firmware versions; extend it here when a new release renames a column.
func DefaultFormat() Format {
	return Format{
		Charsets:      []Charset{CharsetUTF16, CharsetUTF8, CharsetLatin1},
		DecodeMarkers: []string{"date", "timestamp", "hm0"},
		HeaderWindow:  64,
		HeaderMarkers: [][]string{
			{"date", "time"},
			{"timestamp"},
		},
		Rules: []MappingRule{
			{Field: domain.FieldTimestamp, Match: []string{"dateandtime", "timestamp"}, Prefix: []string{"date"}},
			{Field: domain.FieldSignificantWaveHeight, Match: []string{"hm0", "significantwaveheight"}, Exclude: []string{"swell", "wind", "max"}},
			{Field: domain.FieldPeakPeriod, Match: []string{"peakperiod"}, Exclude: []string{"swell", "wind"}},
			{Field: domain.FieldMeanPeriod, Match: []string{"tm02", "meanperiod"}, Exclude: []string{"swell", "wind"}},
			{Field: domain.FieldPeakDirection, Match: []string{"peakdirection", "dirpic"}, Exclude: []string{"swell", "wind"}},
		},
		TimeLayouts: []string{
			domain.ExportTimeLayout, // exports and round-trips
			"2006-01-02T15:04:05",
			"2006-01-02T15:04:05Z07:00",
			"2006-01-02 15:04",
			"02.01.2006 15:04:05",
			"02.01.2006 15:04",
			"02/01/2006 15:04:05",
			"02/01/2006 15:04",
		},
		Ragged: RaggedPad,
	}
}

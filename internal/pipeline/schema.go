package pipeline

import (
	"log/slog"
	"strings"

	"github.com/couchcryptid/buoy-data-ingest/internal/domain"
)

// NormalizeSchema canonicalizes the table's column names and renames
// recognized ones to logical fields.
//
// Canonicalization strips surrounding whitespace and the bracketed
// sensor-channel suffix ("Significant Wave Height Hm0 [9]" loses " [9]").
// The format's ordered rules then rename matches to logical fields; each
// field is claimed by the first matching column only, so a second
// direction-like column stays a pass-through under its canonical name.
//
// A table without a timestamp column is not an error here — the normalizer
// fails softly with a warning and lets coercion raise the hard failure, so
// the diagnostic can say which columns were actually seen.
func NormalizeSchema(table RawTable, f Format, logger *slog.Logger) RawTable {
	out := RawTable{Header: make([]string, len(table.Header)), Rows: table.Rows}

	claimed := map[domain.Field]bool{}
	for i, raw := range table.Header {
		name := Canonicalize(raw)
		out.Header[i] = name

		key := matchKey(name)
		for _, rule := range f.Rules {
			if claimed[rule.Field] || !rule.Matches(key) {
				continue
			}
			claimed[rule.Field] = true
			out.Header[i] = rule.Field
			break
		}
	}

	if !claimed[domain.FieldTimestamp] {
		logger.Warn("schema: no timestamp column matched",
			"columns", strings.Join(out.Header, ","))
	}
	return out
}

// Canonicalize strips whitespace and a trailing bracketed annotation from a
// raw column name.
func Canonicalize(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

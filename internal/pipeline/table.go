package pipeline

import (
	"regexp"
	"strings"

	"github.com/couchcryptid/buoy-data-ingest/internal/domain"
)

// RawTable is the tabular parser's artifact: a header of raw column names and
// data rows of string cells. Row arity always matches the header after the
// ragged-row policy has been applied.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// delimiter is a line-splitting strategy. Candidates are tried in priority
// order during detection: explicit tabs, then commas (this service's own
// exports), then runs of whitespace. The whitespace splitter requires two or
// more spaces so "2024-05-01 10:30:00" stays one cell.
type delimiter struct {
	name  string
	split func(string) []string
}

var spacesRe = regexp.MustCompile(`[ \t]{2,}`)

var delimiters = []delimiter{
	{name: "tab", split: func(s string) []string { return strings.Split(s, "\t") }},
	{name: "comma", split: func(s string) []string { return strings.Split(s, ",") }},
	{name: "spaces", split: func(s string) []string { return spacesRe.Split(s, -1) }},
}

// ParseTable reinterprets the lines from the header position onward as a
// delimited table. The delimiter is auto-detected by sampling the header and
// first data line; blank lines are skipped, not kept as empty rows. Short
// rows are padded or dropped per the format's ragged-row policy; rows with
// extra cells are truncated to header arity.
func ParseTable(text DecodedText, headerPos int, f Format) (RawTable, error) {
	lines := collectNonBlank(text.Lines[headerPos:])
	if len(lines) == 0 {
		return RawTable{}, &domain.TabularParseError{Reason: "header row is empty"}
	}

	delim, ok := detectDelimiter(lines)
	if !ok {
		return RawTable{}, &domain.TabularParseError{Reason: "no consistent delimiter could be inferred"}
	}

	header := trimCells(delim.split(lines[0]))
	if len(header) == 0 || (len(header) == 1 && header[0] == "") {
		return RawTable{}, &domain.TabularParseError{Reason: "header row is empty"}
	}

	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		cells := delim.split(line)
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		// Arity is judged on the raw cell count: an empty trailing cell is a
		// present-but-missing measurement, not a shorter row.
		switch {
		case len(cells) == len(header):
		case len(cells) > len(header):
			cells = cells[:len(header)]
		case f.Ragged == RaggedDrop:
			continue
		default:
			padded := make([]string, len(header))
			copy(padded, cells)
			cells = padded
		}
		rows = append(rows, cells)
	}

	return RawTable{Header: header, Rows: rows}, nil
}

// detectDelimiter picks the highest-priority strategy that splits the header
// into multiple cells and, when a data line exists, splits that too. When no
// candidate agrees with the data line (e.g. the first data row is a stray
// delimiter-free token), the header's verdict alone decides.
func detectDelimiter(lines []string) (delimiter, bool) {
	var headerOnly *delimiter
	for i := range delimiters {
		d := delimiters[i]
		if len(d.split(lines[0])) < 2 {
			continue
		}
		if headerOnly == nil {
			headerOnly = &d
		}
		if len(lines) > 1 && len(d.split(lines[1])) < 2 {
			continue
		}
		return d, true
	}
	if headerOnly != nil {
		return *headerOnly, true
	}
	return delimiter{}, false
}

func collectNonBlank(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// trimCells cleans the header row: whitespace-trims every cell and drops
// trailing empties left by a trailing delimiter, so real columns set the
// table's arity.
func trimCells(cells []string) []string {
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

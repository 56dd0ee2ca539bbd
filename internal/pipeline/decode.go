package pipeline

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/couchcryptid/buoy-data-ingest/internal/domain"
)

// Charset is one candidate text encoding for the decoder.
type Charset struct {
	Name string
	enc  encoding.Encoding // nil means strict UTF-8 passthrough
}

var (
	// CharsetUTF16 honors a BOM when present and assumes little-endian
	// otherwise, matching what the datalogger's SD dumps actually contain.
	CharsetUTF16 = Charset{Name: "utf-16", enc: unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)}
	CharsetUTF8  = Charset{Name: "utf-8"}
	// CharsetLatin1 accepts any byte sequence, so it must come last: the
	// marker heuristic is the only thing standing between it and garbage.
	CharsetLatin1 = Charset{Name: "latin-1", enc: charmap.ISO8859_1}
)

// DecodedText is the decoder's artifact: the upload as ordered lines plus the
// charset that produced them.
type DecodedText struct {
	Lines    []string
	Encoding string
}

// Decode tries each candidate charset in order and returns the first decode
// that is both clean and plausible. Plausibility means the decoded text
// contains at least one configured marker substring; a decode that merely
// does not error is not enough, since Latin-derived charsets never error.
func Decode(data []byte, f Format) (DecodedText, error) {
	tried := make([]string, 0, len(f.Charsets))
	for _, cs := range f.Charsets {
		tried = append(tried, cs.Name)

		text, ok := cs.decode(data)
		if !ok {
			continue
		}
		if !containsAnyFold(text, f.DecodeMarkers) {
			continue
		}
		return DecodedText{Lines: splitLines(text), Encoding: cs.Name}, nil
	}
	return DecodedText{}, &domain.DecodeError{Tried: tried}
}

// decode attempts a full strict decode. x/text decoders substitute U+FFFD for
// undecodable input instead of failing, so a replacement rune in the output
// is treated as a decode error here.
func (cs Charset) decode(data []byte) (string, bool) {
	if cs.enc == nil {
		data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
		if !utf8.Valid(data) {
			return "", false
		}
		return string(data), true
	}

	if cs.Name == CharsetUTF16.Name && len(data)%2 != 0 {
		return "", false
	}
	decoded, err := cs.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	text := string(decoded)
	if strings.ContainsRune(text, utf8.RuneError) {
		return "", false
	}
	return text, true
}

func containsAnyFold(text string, markers []string) bool {
	lower := strings.ToLower(text)
	for _, m := range markers {
		if strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// splitLines splits decoded text on \n, tolerating \r\n and bare \r endings.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

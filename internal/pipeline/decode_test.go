package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/couchcryptid/buoy-data-ingest/internal/domain"
)

const sampleText = "Date and time\tHm0\n2026-03-03 00:00:00\t1.62\n"

func encodeUTF16LE(t *testing.T, s string, bom bool) []byte {
	t.Helper()
	b := unicode.IgnoreBOM
	if bom {
		b = unicode.ExpectBOM
	}
	enc := unicode.UTF16(unicode.LittleEndian, b).NewEncoder()
	out, err := enc.Bytes([]byte(s))
	require.NoError(t, err)
	return out
}

func TestDecode(t *testing.T) {
	f := DefaultFormat()

	t.Run("utf-8", func(t *testing.T) {
		text, err := Decode([]byte(sampleText), f)
		require.NoError(t, err)
		assert.Equal(t, "utf-8", text.Encoding)
		assert.Equal(t, "Date and time\tHm0", text.Lines[0])
	})

	t.Run("utf-8 with BOM", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, sampleText...)
		text, err := Decode(data, f)
		require.NoError(t, err)
		assert.Equal(t, "utf-8", text.Encoding)
		assert.Equal(t, "Date and time\tHm0", text.Lines[0])
	})

	t.Run("utf-16 little-endian with BOM", func(t *testing.T) {
		text, err := Decode(encodeUTF16LE(t, sampleText, true), f)
		require.NoError(t, err)
		assert.Equal(t, "utf-16", text.Encoding)
		assert.Equal(t, "Date and time\tHm0", text.Lines[0])
	})

	t.Run("utf-16 little-endian without BOM", func(t *testing.T) {
		text, err := Decode(encodeUTF16LE(t, sampleText, false), f)
		require.NoError(t, err)
		assert.Equal(t, "utf-16", text.Encoding)
	})

	t.Run("latin-1 with accented preamble", func(t *testing.T) {
		raw, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte("Station: Bouée 03\n" + sampleText))
		require.NoError(t, err)

		text, decErr := Decode(raw, f)
		require.NoError(t, decErr)
		assert.Equal(t, "latin-1", text.Encoding)
		assert.Equal(t, "Station: Bouée 03", text.Lines[0])
	})

	t.Run("crlf line endings", func(t *testing.T) {
		text, err := Decode([]byte("Date and time\tHm0\r\n2026-03-03 00:00:00\t1.62\r\n"), f)
		require.NoError(t, err)
		assert.Equal(t, "Date and time\tHm0", text.Lines[0])
		assert.Equal(t, "2026-03-03 00:00:00\t1.62", text.Lines[1])
	})

	t.Run("no marker fails even when decodable", func(t *testing.T) {
		_, err := Decode([]byte("just some unrelated text\nwith two lines\n"), f)
		var decodeErr *domain.DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, []string{"utf-16", "utf-8", "latin-1"}, decodeErr.Tried)
	})

	t.Run("binary garbage fails", func(t *testing.T) {
		_, err := Decode([]byte{0x00, 0xFF, 0xFE, 0x01, 0x80, 0x81}, f)
		var decodeErr *domain.DecodeError
		assert.ErrorAs(t, err, &decodeErr)
	})
}

func TestCharsetDecode_UTF16RejectsOddLength(t *testing.T) {
	data := encodeUTF16LE(t, sampleText, true)
	_, ok := CharsetUTF16.decode(data[:len(data)-1])
	assert.False(t, ok)
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitLines("a\r\nb\rc"))
	assert.Equal(t, []string{"a", ""}, splitLines("a\n"))
}

// Command genmock generates synthetic SmartGuard export fixtures covering the
// format variants the pipeline must tolerate: UTF-16 with a metadata
// preamble, plain UTF-8, and Latin-1 with a stray units row. The data block
// is the same in every variant, so tests and demos can assert that all three
// normalize to an identical series.
//
// Usage:
//
//	go run ./cmd/genmock -out testdata/
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var startTime = time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "directory to write fixture files into")
	rows := flag.Int("rows", 48, "number of observation rows per fixture")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	block := dataBlock(*rows)

	fixtures := []struct {
		file  string
		bytes func() ([]byte, error)
	}{
		{"smartguard_utf16_preamble.txt", func() ([]byte, error) {
			return encodeUTF16(preamble() + block)
		}},
		{"smartguard_utf8.txt", func() ([]byte, error) {
			return []byte(block), nil
		}},
		{"smartguard_latin1_units.txt", func() ([]byte, error) {
			// The accented station line keeps this fixture out of valid
			// UTF-8, so it genuinely exercises the Latin-1 fallback.
			return encodeLatin1("Station: Bouée Atlantique 03\n\n" + withUnitsRow(block))
		}},
	}

	for _, f := range fixtures {
		data, err := f.bytes()
		if err != nil {
			return fmt.Errorf("%s: %w", f.file, err)
		}
		path := filepath.Join(*outDir, f.file)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("%s: %w", f.file, err)
		}
		log.Printf("wrote %s (%d bytes, %d rows)", path, len(data), *rows)
	}
	return nil
}

// dataBlock renders the header and tab-delimited observation rows with the
// channel-suffixed column names real exports carry. Values follow smooth
// half-hourly swell curves so charts of the fixtures look plausible.
func dataBlock(rows int) string {
	var b strings.Builder
	b.WriteString("Date and time\tSignificant Wave Height Hm0 [9]\tWave Peak Period [9]\tMean Period Tm02 [9]\tPeak Direction Dir_Pic [9]\tWind Peak Direction [12]\n")

	for i := 0; i < rows; i++ {
		t := startTime.Add(time.Duration(i) * 30 * time.Minute)
		phase := float64(i) / 8
		fmt.Fprintf(&b, "%s\t%.2f\t%.1f\t%.1f\t%.0f\t%.0f\n",
			t.Format("2006-01-02 15:04:05"),
			1.6+0.7*math.Sin(phase),
			9.5+2.0*math.Sin(phase/2),
			6.8+1.1*math.Sin(phase/2),
			math.Mod(210+15*math.Sin(phase), 360),
			math.Mod(280+25*math.Cos(phase), 360),
		)
	}
	return b.String()
}

// preamble mimics the station metadata older firmware prepends, including the
// accented Latin text that trips naive decoders.
func preamble() string {
	lines := []string{
		"SmartGuard Wave Buoy",
		"Station: Bouée Atlantique 03",
		"Firmware: 4.2.1",
		"Export generated 2026-03-04",
		"Position: 46.183 N, 1.933 W",
		"Water depth: 54 m",
		"Sampling: 30 min",
		"Spectral channels: 9, 12",
		"Operator: météo service",
		"",
		"",
		"",
	}
	return strings.Join(lines, "\n") + "\n"
}

// withUnitsRow inserts the stray units row some firmware repeats below the
// header; its timestamp cell is the literal "units", so coercion drops it.
func withUnitsRow(block string) string {
	lines := strings.SplitN(block, "\n", 2)
	return lines[0] + "\nunits\tm\ts\ts\tdeg\tdeg\n" + lines[1]
}

func encodeUTF16(s string) ([]byte, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	return enc.Bytes([]byte(s))
}

func encodeLatin1(s string) ([]byte, error) {
	return charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
}

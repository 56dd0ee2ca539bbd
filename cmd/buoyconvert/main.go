// Command buoyconvert runs a SmartGuard export through the ingestion pipeline
// offline: it prints a processing summary and per-column statistics, and can
// write the normalized series as canonical CSV.
//
// Usage:
//
//	go run ./cmd/buoyconvert -in export.txt -out normalized.csv
//	go run ./cmd/buoyconvert -in export.txt -stats
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/couchcryptid/buoy-data-ingest/internal/domain"
	"github.com/couchcryptid/buoy-data-ingest/internal/observability"
	"github.com/couchcryptid/buoy-data-ingest/internal/pipeline"
	"github.com/couchcryptid/buoy-data-ingest/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "buoyconvert: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	in := flag.String("in", "", "path to a SmartGuard export (.txt or .csv)")
	out := flag.String("out", "", "write canonical CSV here (\"-\" for stdout)")
	stats := flag.Bool("stats", false, "print per-column statistics")
	strict := flag.Bool("strict", false, "drop ragged rows instead of padding them")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -in")
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	format := pipeline.DefaultFormat()
	if *strict {
		format.Ragged = pipeline.RaggedDrop
	}

	logger := observability.NewLogger("warn", "text")
	proc := pipeline.NewProcessor(format, store.New(1), nil, logger, observability.NewMetrics())

	upload := domain.Upload{Filename: filepath.Base(*in), Data: data}
	ds, err := proc.Process(context.Background(), upload)
	if err != nil {
		return err
	}

	fmt.Printf("dataset %s: %d rows (%d dropped), %d columns, encoding %s\n",
		ds.ID, ds.Series.Len(), ds.RowsDropped, len(ds.Series.Columns), ds.Encoding)

	if *stats {
		printStats(&ds.Series)
	}

	if *out != "" {
		if err := writeCSV(&ds.Series, *out); err != nil {
			return err
		}
	}
	return nil
}

func printStats(series *domain.Series) {
	for _, col := range series.Columns {
		st, _ := series.Stats(col)
		if st.Count == 0 {
			fmt.Printf("  %-28s no numeric values\n", col)
			continue
		}
		fmt.Printf("  %-28s n=%-5d min=%-10.3f max=%-10.3f mean=%.3f\n",
			col, st.Count, st.Min, st.Max, st.Mean)
	}
}

func writeCSV(series *domain.Series, path string) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := series.WriteCSV(w); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

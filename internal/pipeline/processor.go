package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/buoy-data-ingest/internal/domain"
	"github.com/couchcryptid/buoy-data-ingest/internal/observability"
	"github.com/couchcryptid/buoy-data-ingest/internal/store"
)

// Publisher forwards a processed dataset to a downstream sink.
type Publisher interface {
	PublishDataset(ctx context.Context, ds *domain.Dataset) error
}

// Processor runs uploads through the five-stage pipeline with read-through
// memoization. It is a pure function of the upload bytes plus its fixed
// Format; there is no shared mutable state between invocations beyond the
// content-addressed store.
type Processor struct {
	format    Format
	store     *store.ResultStore
	publisher Publisher // nil disables sink publishing
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewProcessor creates a Processor. Pass a nil publisher to disable sink
// publishing.
func NewProcessor(f Format, s *store.ResultStore, pub Publisher, logger *slog.Logger, metrics *observability.Metrics) *Processor {
	return &Processor{
		format:    f,
		store:     s,
		publisher: pub,
		logger:    logger,
		metrics:   metrics,
	}
}

// Process transforms one upload into a dataset or a terminal taxonomy error.
// Identical byte content short-circuits to the memoized outcome without
// rerunning any stage; on a miss the full pipeline runs and the outcome,
// success or definitive failure, is stored.
func (p *Processor) Process(ctx context.Context, upload domain.Upload) (*domain.Dataset, error) {
	id := upload.ID()

	if out, ok := p.store.Get(id); ok {
		p.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return out.Dataset, out.Err
	}
	p.metrics.CacheLookups.WithLabelValues("miss").Inc()

	start := time.Now()
	ds, err := p.run(upload)
	p.metrics.ProcessingDuration.Observe(time.Since(start).Seconds())
	p.metrics.UploadBytes.Observe(float64(len(upload.Data)))

	if err != nil {
		p.metrics.UploadsProcessed.WithLabelValues(domain.ErrorName(err)).Inc()
		p.logger.Warn("pipeline failed",
			"dataset_id", id,
			"filename", upload.Filename,
			"error", err,
		)
		p.store.Put(id, store.Outcome{Err: err})
		return nil, err
	}

	p.metrics.UploadsProcessed.WithLabelValues("success").Inc()
	p.metrics.DecodedEncoding.WithLabelValues(ds.Encoding).Inc()
	p.metrics.RowsIngested.Add(float64(ds.Series.Len()))
	p.metrics.RowsDropped.Add(float64(ds.RowsDropped))
	p.logger.Info("pipeline processed upload",
		"dataset_id", ds.ID,
		"filename", ds.Filename,
		"encoding", ds.Encoding,
		"rows", ds.Series.Len(),
		"rows_dropped", ds.RowsDropped,
		"columns", len(ds.Series.Columns),
	)

	p.store.Put(id, store.Outcome{Dataset: ds})
	p.publish(ctx, ds)
	return ds, nil
}

// Lookup returns a previously computed outcome by dataset ID without running
// anything.
func (p *Processor) Lookup(id string) (store.Outcome, bool) {
	return p.store.Get(id)
}

// CheckReadiness reports whether the processor can serve traffic.
func (p *Processor) CheckReadiness(_ context.Context) error {
	return nil
}

// run executes the five stages in order. Control flows strictly forward; each
// stage either produces its artifact or a terminal error.
func (p *Processor) run(upload domain.Upload) (*domain.Dataset, error) {
	text, err := Decode(upload.Data, p.format)
	if err != nil {
		return nil, err
	}

	headerPos, err := LocateHeader(text, p.format)
	if err != nil {
		return nil, err
	}

	table, err := ParseTable(text, headerPos, p.format)
	if err != nil {
		return nil, err
	}

	table = NormalizeSchema(table, p.format, p.logger)

	series, rowsParsed, err := CoerceTypes(table, p.format)
	if err != nil {
		return nil, err
	}

	return domain.NewDataset(upload, text.Encoding, rowsParsed, series), nil
}

// publish forwards the dataset to the sink. Publish failures are logged and
// counted, never surfaced to the uploader: the dataset itself is already
// valid.
func (p *Processor) publish(ctx context.Context, ds *domain.Dataset) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishDataset(ctx, ds); err != nil {
		p.metrics.SinkErrors.Inc()
		p.logger.Error("sink publish failed", "dataset_id", ds.ID, "error", err)
		return
	}
	p.metrics.SinkPublished.Inc()
}

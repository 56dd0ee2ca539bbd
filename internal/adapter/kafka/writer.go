// Package kafka publishes processed datasets to a downstream sink topic.
// Publishing is an optional side channel: the HTTP caller gets its dataset
// whether or not the sink is reachable.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/buoy-data-ingest/internal/config"
	"github.com/couchcryptid/buoy-data-ingest/internal/domain"
)

// Writer produces dataset messages to the sink topic. It implements
// pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishDataset serializes one dataset and writes it to the sink topic,
// keyed by content ID so replays of the same upload land on one partition.
func (w *Writer) PublishDataset(ctx context.Context, ds *domain.Dataset) error {
	msg, err := serializeToMessage(ds)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Dataset into a Kafka message.
func serializeToMessage(ds *domain.Dataset) (kafkago.Message, error) {
	data, err := json.Marshal(ds)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize dataset: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(ds.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "encoding", Value: []byte(ds.Encoding)},
			{Key: "rows", Value: []byte(strconv.Itoa(ds.Series.Len()))},
			{Key: "processed_at", Value: []byte(ds.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}

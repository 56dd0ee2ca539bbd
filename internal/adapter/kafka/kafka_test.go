package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/buoy-data-ingest/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 5, 14, 9, 30, 0, 0, time.UTC)
	ds := &domain.Dataset{
		ID:       "abc123",
		Filename: "export.txt",
		Encoding: "utf-16",
		Series: domain.Series{
			Columns: []string{domain.FieldSignificantWaveHeight},
			Observations: []domain.Observation{
				{Timestamp: now, Values: []domain.Value{domain.Num(1.8)}},
			},
		},
		ProcessedAt: now,
	}

	msg, err := serializeToMessage(ds)
	require.NoError(t, err)

	assert.Equal(t, []byte("abc123"), msg.Key)
	assert.Contains(t, string(msg.Value), `"encoding":"utf-16"`)
	assert.Contains(t, string(msg.Value), `"SignificantWaveHeight"`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, kafkago.Header{Key: "encoding", Value: []byte("utf-16")}, msg.Headers[0])
	assert.Equal(t, kafkago.Header{Key: "rows", Value: []byte("1")}, msg.Headers[1])
	assert.Equal(t, kafkago.Header{Key: "processed_at", Value: []byte(now.Format(time.RFC3339))}, msg.Headers[2])
}

func TestSerializeToMessage_MissingValuesEncodeAsNull(t *testing.T) {
	ds := &domain.Dataset{
		ID: "def456",
		Series: domain.Series{
			Columns: []string{domain.FieldPeakPeriod},
			Observations: []domain.Observation{
				{Timestamp: time.Now(), Values: []domain.Value{domain.Missing()}},
			},
		},
	}

	msg, err := serializeToMessage(ds)
	require.NoError(t, err)
	assert.Contains(t, string(msg.Value), `"values":[null]`)
}

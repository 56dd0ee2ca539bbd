package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Upload is one raw file handed to the pipeline: the full byte content plus
// an advisory filename hint. The hint never drives dispatch; handling is
// content-sniffed by the decoder.
type Upload struct {
	Filename string
	Data     []byte
}

// ID returns the content-derived identity of the upload.
func (u Upload) ID() string { return ContentID(u.Data) }

// ContentID produces a deterministic ID from exact byte content. Identical
// uploads hash to the same ID, which keys the memoization store and the HTTP
// dataset routes.
func ContentID(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// Dataset is the pipeline's success artifact: the normalized series plus
// processing provenance for the presentation layer.
type Dataset struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename,omitempty"`
	Encoding    string    `json:"encoding"`
	RowsParsed  int       `json:"rows_parsed"`  // data rows in the raw table
	RowsDropped int       `json:"rows_dropped"` // rows lost to unparseable timestamps
	Series      Series    `json:"series"`
	ProcessedAt time.Time `json:"processed_at"`
}

// NewDataset stamps a processed series with identity and provenance.
func NewDataset(upload Upload, encoding string, rowsParsed int, series Series) *Dataset {
	return &Dataset{
		ID:          upload.ID(),
		Filename:    upload.Filename,
		Encoding:    encoding,
		RowsParsed:  rowsParsed,
		RowsDropped: rowsParsed - series.Len(),
		Series:      series,
		ProcessedAt: clock.Now(),
	}
}

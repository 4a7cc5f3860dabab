package models

import (
	"strconv"
	"time"

	"github.com/lib/pq"
)

// HistoryItem is one saved analysis. ID is the epoch-millis string of the
// moment it was created, which doubles as the insertion order.
type HistoryItem struct {
	ID         string         `json:"id"`
	Timestamp  int64          `json:"timestamp"`
	PreviewURL string         `json:"previewUrl"`
	Result     AnalysisResult `json:"result"`
}

// NewHistoryItem wraps a finished analysis for storage.
func NewHistoryItem(result AnalysisResult, previewURL string, now time.Time) HistoryItem {
	ms := now.UnixMilli()
	return HistoryItem{
		ID:         strconv.FormatInt(ms, 10),
		Timestamp:  ms,
		PreviewURL: previewURL,
		Result:     result,
	}
}

// HistoryRecord is the database row backing a HistoryItem. The full result is
// stored as JSON so a stored item round-trips field-for-field; a few columns
// are denormalized for listing and querying without unmarshaling.
type HistoryRecord struct {
	ID              string         `gorm:"primaryKey"`
	Namespace       string         `gorm:"index:idx_history_namespace_ts,priority:1"`
	Timestamp       int64          `gorm:"index:idx_history_namespace_ts,priority:2,sort:desc"`
	PreviewURL      string
	Title           string
	OverallScore    float64
	RatingLevel     string
	Recommendations pq.StringArray `gorm:"type:text[]"`
	Result          []byte         `gorm:"type:jsonb"`
	CreatedAt       time.Time
}

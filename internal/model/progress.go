package model

import "context"

// ProgressStore defines persistence operations for reading progress.
// Records are keyed by (username, document); Upsert replaces the whole
// record for an existing key.
type ProgressStore interface {
	Get(ctx context.Context, username, document string) (Progress, error)
	Upsert(ctx context.Context, progress Progress) error
}

// Progress represents the reading state of one document for one user.
// Document and Position are opaque client-supplied strings; the server
// never interprets them. Timestamp is assigned by the server on every
// update and is the sole conflict-resolution signal.
type Progress struct {
	Username   string
	Document   string
	Position   string
	Percentage float64
	Device     string
	DeviceID   string
	Timestamp  int64
}

// DocumentPayload is the client-supplied body of a progress update.
// Fields are pointers so an absent JSON field is distinguishable from a
// zero value.
type DocumentPayload struct {
	Document   *string  `json:"document"`
	Progress   *string  `json:"progress"`
	Percentage *float64 `json:"percentage"`
	Device     *string  `json:"device"`
	DeviceID   *string  `json:"device_id"`
}

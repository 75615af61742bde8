// Package history archives transcriptions to Supabase and lists them back.
// The whole feature is optional: without credentials the server runs with
// the Disabled store and transcription works unchanged.
package history

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound signals that the local audio file to archive no longer exists.
var ErrNotFound = errors.New("audio file not found")

// Record is one persisted transcription entry. Field tags follow the
// transcriptions table columns.
type Record struct {
	ID            int64     `json:"id,omitempty"`
	Filename      string    `json:"filename"`
	Transcription string    `json:"transcription"`
	UserID        string    `json:"user_id"`
	AudioURL      string    `json:"audio_url"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store archives transcriptions and lists them per user, most recent first.
type Store interface {
	// Archive uploads the audio file at localPath, inserts a transcription
	// row, and removes the local file once the row is committed.
	Archive(ctx context.Context, localPath, filename, transcription, userID string) (*Record, error)

	// List returns up to limit records owned by userID, newest first.
	List(ctx context.Context, userID string, limit int) ([]Record, error)

	// Enabled reports whether the store is backed by real credentials.
	Enabled() bool
}

// Disabled is the store used when Supabase credentials are absent. Archive
// is a no-op rather than a failure: history is a configuration toggle.
type Disabled struct{}

func (Disabled) Archive(context.Context, string, string, string, string) (*Record, error) {
	return nil, nil
}

func (Disabled) List(context.Context, string, int) ([]Record, error) {
	return []Record{}, nil
}

func (Disabled) Enabled() bool { return false }

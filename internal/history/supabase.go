package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	bucket       = "audio-files"
	table        = "transcriptions"
	defaultLimit = 10
	maxLimit     = 100
)

// SupabaseStore talks to the Supabase Storage and PostgREST APIs directly
// with a plain HTTP client.
type SupabaseStore struct {
	baseURL string
	key     string
	client  *http.Client
	log     zerolog.Logger
}

// NewSupabaseStore creates a store for the given project URL
// (e.g. https://xyz.supabase.co) and service key.
func NewSupabaseStore(projectURL, key string, log zerolog.Logger) *SupabaseStore {
	return &SupabaseStore{
		baseURL: strings.TrimRight(projectURL, "/"),
		key:     key,
		client:  &http.Client{Timeout: 60 * time.Second},
		log:     log.With().Str("component", "history").Logger(),
	}
}

func (s *SupabaseStore) Enabled() bool { return true }

// Archive uploads the local audio file to the user's folder in the storage
// bucket, inserts a transcription row pointing at its public URL, and
// deletes the local file once the row is committed. If the insert fails
// after the object upload succeeded the object is left orphaned.
func (s *SupabaseStore) Archive(ctx context.Context, localPath, filename, transcription, userID string) (*Record, error) {
	if userID == "" {
		userID = "anonymous"
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at: %s", ErrNotFound, localPath)
		}
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	objectPath := fmt.Sprintf("user-%s/%s", userID, filename)
	if err := s.uploadObject(ctx, objectPath, data); err != nil {
		return nil, err
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, bucket, objectPath)

	rec, err := s.insertRecord(ctx, Record{
		Filename:      filename,
		Transcription: transcription,
		UserID:        userID,
		AudioURL:      publicURL,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		// The uploaded object stays behind; see List/Archive notes in DESIGN.md.
		s.log.Warn().Str("object", objectPath).Msg("row insert failed after object upload, object left in place")
		return nil, err
	}

	if err := os.Remove(localPath); err != nil {
		s.log.Warn().Err(err).Str("path", localPath).Msg("failed to remove local audio file")
	}

	s.log.Info().Str("user_id", userID).Str("filename", filename).Msg("transcription archived")
	return rec, nil
}

// List returns up to limit records for userID ordered by created_at
// descending. limit defaults to 10 and is clamped to 100.
func (s *SupabaseStore) List(ctx context.Context, userID string, limit int) ([]Record, error) {
	if userID == "" {
		userID = "anonymous"
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	q := url.Values{}
	q.Set("select", "*")
	q.Set("user_id", "eq."+userID)
	q.Set("order", "created_at.desc")
	q.Set("limit", strconv.Itoa(limit))
	u := fmt.Sprintf("%s/rest/v1/%s?%s", s.baseURL, table, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("history: create request: %w", err)
	}
	s.setAuth(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("history: list failed (status %d): %s", resp.StatusCode, string(body))
	}

	var records []Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("history: decode list response: %w", err)
	}
	return records, nil
}

func (s *SupabaseStore) uploadObject(ctx context.Context, objectPath string, data []byte) error {
	u := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, bucket, objectPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("history: create upload request: %w", err)
	}
	s.setAuth(req)
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("x-upsert", "true")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("history: object upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("history: object upload failed (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

func (s *SupabaseStore) insertRecord(ctx context.Context, rec Record) (*Record, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("history: marshal record: %w", err)
	}

	u := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("history: create insert request: %w", err)
	}
	s.setAuth(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history: row insert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("history: row insert failed (status %d): %s", resp.StatusCode, string(body))
	}

	// PostgREST returns the representation as a single-element array.
	var inserted []Record
	if err := json.NewDecoder(resp.Body).Decode(&inserted); err != nil {
		return nil, fmt.Errorf("history: decode insert response: %w", err)
	}
	if len(inserted) == 0 {
		return nil, fmt.Errorf("history: insert returned no representation")
	}
	return &inserted[0], nil
}

func (s *SupabaseStore) setAuth(req *http.Request) {
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
}

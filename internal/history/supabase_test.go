package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempAudio(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("RIFF-audio"), 0644))
	return path
}

func TestArchiveUploadsInsertsAndCleansUp(t *testing.T) {
	var uploadedPath string
	var uploadedBody []byte
	var insertedRow map[string]interface{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /storage/v1/object/audio-files/", func(w http.ResponseWriter, r *http.Request) {
		uploadedPath = r.URL.Path
		uploadedBody, _ = io.ReadAll(r.Body)
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.Equal(t, "true", r.Header.Get("x-upsert"))
		fmt.Fprint(w, `{"Key":"ok"}`)
	})
	mux.HandleFunc("POST /rest/v1/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&insertedRow))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `[{"id":42,"filename":%q,"transcription":%q,"user_id":%q,"audio_url":%q,"created_at":"2026-08-30T10:00:00+00:00"}]`,
			insertedRow["filename"], insertedRow["transcription"], insertedRow["user_id"], insertedRow["audio_url"])
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	path := writeTempAudio(t, "audio-123-abc.wav")
	store := NewSupabaseStore(srv.URL, "service-key", zerolog.Nop())

	rec, err := store.Archive(context.Background(), path, "audio-123-abc.wav", "hello world", "u1")
	require.NoError(t, err)

	assert.Equal(t, int64(42), rec.ID)
	assert.Equal(t, "hello world", rec.Transcription)
	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/audio-files/user-u1/audio-123-abc.wav", rec.AudioURL)

	assert.Equal(t, "/storage/v1/object/audio-files/user-u1/audio-123-abc.wav", uploadedPath)
	assert.Equal(t, "RIFF-audio", string(uploadedBody))

	// The local file is removed only after the row is committed.
	assert.NoFileExists(t, path)
}

func TestArchiveDefaultsToAnonymousUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /storage/v1/object/audio-files/", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "user-anonymous/")
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("POST /rest/v1/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		var row map[string]interface{}
		json.NewDecoder(r.Body).Decode(&row)
		assert.Equal(t, "anonymous", row["user_id"])
		fmt.Fprint(w, `[{"id":1,"user_id":"anonymous","created_at":"2026-08-30T10:00:00+00:00"}]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	path := writeTempAudio(t, "clip.wav")
	store := NewSupabaseStore(srv.URL, "service-key", zerolog.Nop())

	_, err := store.Archive(context.Background(), path, "clip.wav", "text", "")
	require.NoError(t, err)
}

func TestArchiveMissingLocalFile(t *testing.T) {
	store := NewSupabaseStore("http://unused.invalid", "service-key", zerolog.Nop())

	_, err := store.Archive(context.Background(), filepath.Join(t.TempDir(), "gone.wav"), "gone.wav", "text", "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArchiveInsertFailureKeepsLocalFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /storage/v1/object/audio-files/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("POST /rest/v1/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"permission denied"}`, http.StatusForbidden)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	path := writeTempAudio(t, "clip.wav")
	store := NewSupabaseStore(srv.URL, "service-key", zerolog.Nop())

	_, err := store.Archive(context.Background(), path, "clip.wav", "text", "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row insert failed")

	// The transcript was not committed, so the local file stays.
	assert.FileExists(t, path)
}

func TestListQueryAndDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/transcriptions", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "eq.u1", q.Get("user_id"))
		assert.Equal(t, "created_at.desc", q.Get("order"))
		assert.Equal(t, "3", q.Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"id":3,"filename":"c.wav","transcription":"third","user_id":"u1","audio_url":"https://x/c.wav","created_at":"2026-08-30T12:00:00+00:00"},
			{"id":2,"filename":"b.wav","transcription":"second","user_id":"u1","audio_url":"https://x/b.wav","created_at":"2026-08-30T11:00:00+00:00"},
			{"id":1,"filename":"a.wav","transcription":"first","user_id":"u1","audio_url":"https://x/a.wav","created_at":"2026-08-30T10:00:00+00:00"}
		]`)
	}))
	defer srv.Close()

	store := NewSupabaseStore(srv.URL, "service-key", zerolog.Nop())
	records, err := store.List(context.Background(), "u1", 3)
	require.NoError(t, err)
	require.Len(t, records, 3)

	for i := 1; i < len(records); i++ {
		assert.True(t, !records[i].CreatedAt.After(records[i-1].CreatedAt), "records must be newest first")
	}
	assert.Equal(t, "third", records[0].Transcription)
	assert.Equal(t, time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), records[0].CreatedAt.UTC())
}

func TestListDefaultsAndClamping(t *testing.T) {
	var gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	store := NewSupabaseStore(srv.URL, "service-key", zerolog.Nop())

	_, err := store.List(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, "10", gotLimit)

	_, err = store.List(context.Background(), "u1", 1000)
	require.NoError(t, err)
	assert.Equal(t, "100", gotLimit)
}

func TestDisabledStore(t *testing.T) {
	store := Disabled{}

	rec, err := store.Archive(context.Background(), "/tmp/x.wav", "x.wav", "text", "u1")
	assert.NoError(t, err)
	assert.Nil(t, rec)

	records, err := store.List(context.Background(), "u1", 10)
	assert.NoError(t, err)
	assert.Empty(t, records)
	assert.False(t, store.Enabled())
}

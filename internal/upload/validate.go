// Package upload holds the audio upload policy shared by the server boundary
// and the CLI client. The client runs the same checks before the network
// call for fast feedback; the server copy is the authoritative boundary.
package upload

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxFileSize is the upload size ceiling in bytes (25 MiB).
const MaxFileSize = 25 * 1024 * 1024

// ErrEmptyFile matches the gateway's missing-file response so a 0-byte
// upload and a missing field fail the same way.
var ErrEmptyFile = errors.New("No audio file provided")

// allowedSubtypes are the accepted audio/* MIME subtypes.
var allowedSubtypes = map[string]bool{
	"wav":  true,
	"mp3":  true,
	"mpeg": true,
	"webm": true,
	"ogg":  true,
}

// allowedExts back the MIME check when no type was declared.
var allowedExts = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".webm": true,
	".ogg":  true,
}

// Validate checks a candidate upload against the audio policy: a whitelist
// of audio MIME types and a fixed size ceiling.
func Validate(filename, mimeType string, size int64) error {
	if size == 0 {
		return ErrEmptyFile
	}
	if size > MaxFileSize {
		return fmt.Errorf("file size exceeds 25MB limit (got %d bytes)", size)
	}

	// Strip parameters such as ";codecs=opus" before matching.
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	mimeType = strings.TrimSpace(strings.ToLower(mimeType))

	if mimeType == "" || mimeType == "application/octet-stream" {
		ext := strings.ToLower(filepath.Ext(filename))
		if allowedExts[ext] {
			return nil
		}
		return fmt.Errorf("unsupported audio format %q. Supported: wav, mp3, webm, ogg", ext)
	}

	subtype, ok := strings.CutPrefix(mimeType, "audio/")
	if !ok || !allowedSubtypes[subtype] {
		return fmt.Errorf("unsupported audio type %q. Supported: audio/wav, audio/mpeg, audio/webm, audio/ogg", mimeType)
	}
	return nil
}

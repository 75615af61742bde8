package stt

import (
	"path/filepath"
	"strings"
)

// extToMIME is the fixed extension to MIME type table used when the declared
// type is missing or ambiguous.
var extToMIME = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
}

// ResolveMIME returns the MIME type to hand to a provider. A concrete
// declared audio type wins; otherwise the type is re-derived from the file
// extension, defaulting to audio/wav.
func ResolveMIME(filename, declared string) string {
	// Strip parameters such as ";codecs=opus".
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = declared[:i]
	}
	declared = strings.TrimSpace(strings.ToLower(declared))

	if declared != "" && declared != "application/octet-stream" && strings.HasPrefix(declared, "audio/") {
		return declared
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if mime, ok := extToMIME[ext]; ok {
		return mime
	}
	return "audio/wav"
}

// extForMIME is the inverse of the table above, used when a provider needs a
// filename for a multipart upload and only the MIME type is known.
func extForMIME(mimeType string) string {
	for ext, mime := range extToMIME {
		if mime == mimeType {
			return ext
		}
	}
	return ".wav"
}

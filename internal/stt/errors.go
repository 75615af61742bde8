package stt

import "errors"

// Kind classifies provider failures into stable categories regardless of
// which vendor produced them.
type Kind string

const (
	KindAuth      Kind = "auth"
	KindQuota     Kind = "quota"
	KindFormat    Kind = "format"
	KindRateLimit Kind = "rate_limit"
	KindUnknown   Kind = "unknown"
)

// ErrEmptyTranscript signals that the provider call succeeded but returned a
// blank transcript. A blank transcript means silent or unclear audio, not a
// valid empty answer, so it is reported as a failure.
var ErrEmptyTranscript = errors.New("empty transcription result - audio may be silent or unclear")

// ProviderError wraps a vendor failure with a stable category and a
// human-readable message distinct from the raw provider payload. The raw
// failure stays reachable through Unwrap.
type ProviderError struct {
	Kind     Kind
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string { return e.Message }

func (e *ProviderError) Unwrap() error { return e.Err }

// newProviderError builds a ProviderError with the canonical message for the
// given kind.
func newProviderError(provider string, kind Kind, err error) *ProviderError {
	var msg string
	switch kind {
	case KindAuth:
		msg = "Invalid " + provider + " API key. Please check your configuration."
	case KindQuota:
		msg = provider + " API quota exceeded. Please check your billing."
	case KindFormat:
		msg = "Audio file format not supported or corrupted. Please try a different file."
	case KindRateLimit:
		msg = "Rate limit exceeded. Please try again in a moment."
	default:
		msg = "Transcription failed: " + err.Error()
	}
	return &ProviderError{Kind: kind, Provider: provider, Message: msg, Err: err}
}

// kindFromStatus maps an HTTP status from a provider API to an error kind.
func kindFromStatus(status int) Kind {
	switch status {
	case 401, 403:
		return KindAuth
	case 402:
		return KindQuota
	case 400, 415:
		return KindFormat
	case 429:
		return KindRateLimit
	default:
		return KindUnknown
	}
}

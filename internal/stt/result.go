package stt

// Result represents the result of a speech-to-text transcription.
type Result struct {
	Transcript  string  // The transcribed text, never blank on success
	Confidence  float64 // Confidence score (0.0-1.0), 0 if the provider gives none
	Duration    float64 // Audio duration in seconds, 0 if unknown
	Provider    string  // The provider used (e.g., "deepgram", "whisper")
	RawResponse string  // Raw response from the provider (for debugging/logging)
}

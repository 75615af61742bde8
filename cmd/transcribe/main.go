// Command transcribe is a CLI client for the echoscribe backend. It runs the
// same upload policy checks as the server before any network transfer, so
// bad files fail without a round trip; the server remains the authoritative
// boundary.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"echoscribe/internal/upload"
)

const defaultServer = "http://localhost:5000"

type apiResponse struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type uploadData struct {
	Transcription string   `json:"transcription"`
	Duration      *float64 `json:"duration"`
	Filename      string   `json:"filename"`
	Stored        *struct {
		AudioURL string `json:"audioUrl"`
	} `json:"stored"`
}

type historyItem struct {
	ID            int64     `json:"id"`
	Transcription string    `json:"transcription"`
	AudioURL      string    `json:"audioUrl"`
	CreatedAt     time.Time `json:"createdAt"`
	Filename      string    `json:"filename"`
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "upload":
		err = runUpload(os.Args[2:])
	case "history":
		err = runHistory(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage:
  transcribe upload -file <audio> [-user <id>] [-server <url>] [-out <file>]
  transcribe history [-user <id>] [-limit <n>] [-server <url>]`)
}

func runUpload(args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	file := fs.String("file", "", "audio file to transcribe (wav, mp3, webm, ogg)")
	user := fs.String("user", "anonymous", "user id for history")
	server := fs.String("server", serverDefault(), "backend base URL")
	out := fs.String("out", "", "write the transcript to this file")
	fs.Parse(args)

	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	info, err := os.Stat(*file)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", *file, err)
	}

	// Same policy the server enforces. Failing here saves the upload.
	if err := upload.Validate(filepath.Base(*file), "", info.Size()); err != nil {
		return err
	}

	body, contentType, err := buildMultipart(*file, *user)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Post(*server+"/api/transcribe/upload", contentType, body)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	apiResp, err := decodeResponse(resp.Body)
	if err != nil {
		return err
	}
	if !apiResp.Success {
		return fmt.Errorf("%s", apiResp.Error)
	}

	var data uploadData
	if err := json.Unmarshal(apiResp.Data, &data); err != nil {
		return fmt.Errorf("unexpected response: %w", err)
	}

	fmt.Println(data.Transcription)
	if data.Duration != nil {
		fmt.Fprintf(os.Stderr, "duration: %.1fs\n", *data.Duration)
	}
	if data.Stored != nil {
		fmt.Fprintf(os.Stderr, "archived: %s\n", data.Stored.AudioURL)
	}

	if *out != "" {
		if err := os.WriteFile(*out, []byte(data.Transcription+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write transcript: %w", err)
		}
		fmt.Fprintf(os.Stderr, "saved transcript to %s\n", *out)
	}
	return nil
}

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	user := fs.String("user", "anonymous", "user id")
	limit := fs.Int("limit", 10, "maximum entries to fetch")
	server := fs.String("server", serverDefault(), "backend base URL")
	fs.Parse(args)

	q := url.Values{}
	q.Set("userId", *user)
	q.Set("limit", strconv.Itoa(*limit))

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Get(*server + "/api/transcribe/history?" + q.Encode())
	if err != nil {
		return fmt.Errorf("history fetch failed: %w", err)
	}
	defer resp.Body.Close()

	apiResp, err := decodeResponse(resp.Body)
	if err != nil {
		return err
	}
	if !apiResp.Success {
		return fmt.Errorf("%s", apiResp.Error)
	}

	var items []historyItem
	if err := json.Unmarshal(apiResp.Data, &items); err != nil {
		return fmt.Errorf("unexpected response: %w", err)
	}

	if len(items) == 0 {
		if apiResp.Message != "" {
			fmt.Println(apiResp.Message)
		} else {
			fmt.Println("no history entries")
		}
		return nil
	}

	for _, it := range items {
		fmt.Printf("%s  %s\n    %s\n", it.CreatedAt.Local().Format("2006-01-02 15:04"), it.Filename, it.Transcription)
	}
	return nil
}

func buildMultipart(path, user string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("userId", user); err != nil {
		return nil, "", err
	}
	fw, err := mw.CreateFormFile("audio", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func decodeResponse(r io.Reader) (*apiResponse, error) {
	var apiResp apiResponse
	if err := json.NewDecoder(r).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("invalid server response: %w", err)
	}
	return &apiResp, nil
}

func serverDefault() string {
	if v := os.Getenv("ECHOSCRIBE_SERVER"); v != "" {
		return v
	}
	return defaultServer
}

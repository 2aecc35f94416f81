package transcript

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func watchPage(captionsJSON string) string {
	page := `<html>"playabilityStatus":{"status":"OK","playableInEmbed":true}`
	if captionsJSON != "" {
		page += `,"captions":` + captionsJSON + `,"videoDetails":{"videoId":"dQw4w9WgXcQ"}`
	}
	return page + `</html>`
}

func TestExtractCaptionTracks(t *testing.T) {
	tracksJSON := `{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
		`{"baseUrl":"https://example.invalid/tt","languageCode":"en"}]}}`

	tests := []struct {
		name       string
		page       string
		wantErr    string
		wantTracks int
	}{
		{
			name:       "Tracks present",
			page:       watchPage(tracksJSON),
			wantTracks: 1,
		},
		{
			name:    "Captions key missing",
			page:    watchPage(""),
			wantErr: "disabled",
		},
		{
			name:    "Renderer missing",
			page:    watchPage(`{"somethingElse":{}}`),
			wantErr: "disabled",
		},
		{
			name:    "Private video",
			page:    `<html>"playabilityStatus":{"status":"LOGIN_REQUIRED"}</html>`,
			wantErr: "private",
		},
		{
			name:    "Removed video",
			page:    `<html>"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}</html>`,
			wantErr: "video unavailable",
		},
		{
			name:    "No playability data",
			page:    `<html></html>`,
			wantErr: "video unavailable",
		},
		{
			name:    "Captcha wall",
			page:    `<html><div class="g-recaptcha"></div></html>`,
			wantErr: "too many requests",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracks, err := extractCaptionTracks(tt.page)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if !strings.Contains(strings.ToLower(err.Error()), tt.wantErr) {
					t.Errorf("error = %q, want substring %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tracks) != tt.wantTracks {
				t.Errorf("got %d tracks, want %d", len(tracks), tt.wantTracks)
			}
		})
	}
}

func TestExtractCaptionTracksNoTranscript(t *testing.T) {
	page := watchPage(`{"playerCaptionsTracklistRenderer":{"captionTracks":[]}}`)

	_, err := extractCaptionTracks(page)
	if !errors.Is(err, ErrNoTranscript) {
		t.Errorf("error = %v, want ErrNoTranscript", err)
	}
}

func TestPickTrackPrefersEnglish(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "a", LanguageCode: "de"},
		{BaseURL: "b", LanguageCode: "en"},
	}
	if got := pickTrack(tracks); got.LanguageCode != "en" {
		t.Errorf("pickTrack() language = %q, want en", got.LanguageCode)
	}

	tracks = tracks[:1]
	if got := pickTrack(tracks); got.LanguageCode != "de" {
		t.Errorf("pickTrack() language = %q, want first track", got.LanguageCode)
	}
}

func TestParseTimedText(t *testing.T) {
	xmlData := `<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0" dur="1.5">it&amp;#39;s a test</text>
  <text start="1.5" dur="2">second &amp;amp; last line</text>
</transcript>`

	segments, err := parseTimedText([]byte(xmlData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if segments[0].Text != "it's a test" {
		t.Errorf("text = %q, want entities unescaped", segments[0].Text)
	}
	if segments[0].Start != 0 || segments[0].Duration != 1.5 {
		t.Errorf("timing = (%v, %v), want (0, 1.5)", segments[0].Start, segments[0].Duration)
	}
	if segments[1].Text != "second & last line" {
		t.Errorf("text = %q", segments[1].Text)
	}
}

func TestParseTimedTextEmpty(t *testing.T) {
	segments, err := parseTimedText([]byte(`<transcript></transcript>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segments) != 0 {
		t.Errorf("got %d segments, want 0", len(segments))
	}
}

func TestClientFetch(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<transcript><text start="0" dur="1">hello</text><text start="1" dur="2">world</text></transcript>`)
	})
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != "dQw4w9WgXcQ" {
			http.NotFound(w, r)
			return
		}
		captions := fmt.Sprintf(
			`{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"%s/timedtext","languageCode":"en"}]}}`,
			server.URL,
		)
		fmt.Fprint(w, watchPage(captions))
	})

	client := NewClient(Config{HTTPTimeout: time.Second, UserAgent: "test-agent"}, testLogger())
	client.watchBase = server.URL

	result, err := client.Fetch(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if result.Language != "en" {
		t.Errorf("language = %q, want en", result.Language)
	}
	if len(result.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(result.Segments))
	}
	if result.Segments[1].Text != "world" || result.Segments[1].Start != 1 {
		t.Errorf("segment = %+v", result.Segments[1])
	}
}

func TestClientFetchUnavailableVideo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}</html>`)
	}))
	defer server.Close()

	client := NewClient(Config{HTTPTimeout: time.Second}, testLogger())
	client.watchBase = server.URL

	_, err := client.Fetch(context.Background(), "dQw4w9WgXcQ")
	if err == nil || !strings.Contains(strings.ToLower(err.Error()), "video unavailable") {
		t.Errorf("Fetch() error = %v, want video unavailable", err)
	}
}

func TestClientFetchHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(Config{HTTPTimeout: time.Minute}, testLogger())
	client.watchBase = server.URL

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Fetch(ctx, "dQw4w9WgXcQ")
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

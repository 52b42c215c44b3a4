package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/landmarkstage/internal/landmark"
	"github.com/ayusman/landmarkstage/internal/stage"
	"github.com/ayusman/landmarkstage/internal/tracker"
	"github.com/ayusman/landmarkstage/internal/video"
)

func newFullServer(t *testing.T) (*Server, *landmark.Store, *video.Controller) {
	t.Helper()
	frames := landmark.NewStore()
	mirror := &stage.Mirror{}
	c := video.NewController(nil, mirror)
	s := New(Config{
		Frames:  frames,
		Tracker: tracker.New(frames, mirror),
		Video:   c,
	})
	t.Cleanup(s.Close)
	return s, frames, c
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		contentType := rec.Header().Get("Content-Type")
		if contentType != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", contentType)
		}

		var response map[string]interface{}
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}

		if _, exists := response["uptime"]; !exists {
			t.Error("expected 'uptime' field in response")
		}
		if _, exists := response["frame_age_ms"]; exists {
			t.Error("frame age is omitted without frames")
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		methods := []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch}

		for _, method := range methods {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_HealthReportsFrames(t *testing.T) {
	s, frames, c := newFullServer(t)
	frames.Ingest(&landmark.Frame{})
	frames.Ingest(&landmark.Frame{})
	if err := c.SetMode(video.ModeOnFlipped); err != nil {
		t.Fatalf("SetMode: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var response healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.FrameSeq != 2 {
		t.Errorf("frame_seq = %d, want 2", response.FrameSeq)
	}
	if response.FrameAgeMS == nil {
		t.Error("expected frame_age_ms after ingest")
	}
	if response.Video != video.ModeOnFlipped {
		t.Errorf("video = %q, want on-flipped", response.Video)
	}
}

func TestServer_Routes(t *testing.T) {
	s, _, _ := newFullServer(t)

	tests := []struct {
		target string
		want   int
	}{
		{"/api/blocks", http.StatusOK},
		{"/api/reporters/getPoseX?landmark=0", http.StatusOK},
		{"/api/menus/hand", http.StatusOK},
		{"/api/video", http.StatusOK},
		{"/api/recordings", http.StatusNotFound},
		{"/api/stream", http.StatusNotFound},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.target, nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != tt.want {
			t.Errorf("GET %s: expected status %d, got %d", tt.target, tt.want, rec.Code)
		}
	}
}

func TestServer_NotFound(t *testing.T) {
	s := New(Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/nonexistent", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestServer_StaticFiles(t *testing.T) {
	tmpDir := t.TempDir()

	testContent := "<html><body>Hello, Stage!</body></html>"
	if err := os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte(testContent), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	s := New(Config{StaticDir: tmpDir})

	t.Run("serves index.html at root path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		if rec.Body.String() != testContent {
			t.Errorf("expected body %q, got %q", testContent, rec.Body.String())
		}
	})

	t.Run("returns 404 for non-existent static files", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/nonexistent.html", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestServer_NoStaticDir(t *testing.T) {
	s := New(Config{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestNew_SinkDefaultsToFrames(t *testing.T) {
	frames := landmark.NewStore()
	s := New(Config{Frames: frames})

	if s.config.Sink != frames {
		t.Error("expected frames store as default sink")
	}
	var _ http.Handler = s
}

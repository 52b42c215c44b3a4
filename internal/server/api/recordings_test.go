package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/landmarkstage/internal/app"
	"github.com/ayusman/landmarkstage/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func newRecordingsHandler(t *testing.T) (*RecordingsHandler, *store.Store, *app.Recorder) {
	t.Helper()
	s := newTestStore(t)
	r := app.NewRecorder(s.Recordings())
	t.Cleanup(func() { r.Close() })
	return NewRecordingsHandler(s, r), s, r
}

func post(h http.Handler, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRecordingsHandler_Lifecycle(t *testing.T) {
	h, _, _ := newRecordingsHandler(t)

	rec := post(h, "/api/recordings", `{"name":"demo"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var created store.Recording
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.Name != "demo" || created.ID == "" {
		t.Fatalf("unexpected recording %+v", created)
	}

	if rec := post(h, "/api/recordings", ""); rec.Code != http.StatusConflict {
		t.Errorf("second start: expected status %d, got %d", http.StatusConflict, rec.Code)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/recordings/"+created.ID, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("delete active: expected status %d, got %d", http.StatusConflict, rec.Code)
	}

	rec = post(h, "/api/recordings/"+created.ID+"/stop", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stop: expected status %d, got %d", http.StatusOK, rec.Code)
	}

	rec = post(h, "/api/recordings/"+created.ID+"/stop", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("stop twice: expected status %d, got %d", http.StatusConflict, rec.Code)
	}

	rec = get(t, h, "/api/recordings/"+created.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var got store.Recording
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.StoppedAt == nil {
		t.Error("expected stopped_at after stop")
	}

	rec = get(t, h, "/api/recordings")
	var list listRecordingsResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(list.Recordings) != 1 {
		t.Errorf("expected 1 recording, got %d", len(list.Recordings))
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/recordings/"+created.ID, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete: expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	if rec := get(t, h, "/api/recordings/"+created.ID); rec.Code != http.StatusNotFound {
		t.Errorf("get deleted: expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestRecordingsHandler_EmptyList(t *testing.T) {
	h, _, _ := newRecordingsHandler(t)

	rec := get(t, h, "/api/recordings")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"recordings":[]}` {
		t.Errorf("unexpected body %s", body)
	}
}

func TestRecordingsHandler_NotFound(t *testing.T) {
	h, _, _ := newRecordingsHandler(t)

	if rec := post(h, "/api/recordings/missing/stop", ""); rec.Code != http.StatusNotFound {
		t.Errorf("stop missing: expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
	if rec := post(h, "/api/recordings/missing/rewind", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown action: expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
	if rec := post(h, "/api/recordings", "{"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad body: expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

package api

import (
	"errors"
	"net/http"

	"github.com/ayusman/landmarkstage/internal/app"
	"github.com/ayusman/landmarkstage/internal/store"
)

// RecordingsHandler handles HTTP requests for recording resources.
//
//	GET    /api/recordings
//	POST   /api/recordings            start recording
//	GET    /api/recordings/{id}
//	DELETE /api/recordings/{id}
//	POST   /api/recordings/{id}/stop
type RecordingsHandler struct {
	store    *store.Store
	recorder *app.Recorder
}

// NewRecordingsHandler creates a new RecordingsHandler.
func NewRecordingsHandler(s *store.Store, recorder *app.Recorder) *RecordingsHandler {
	return &RecordingsHandler{store: s, recorder: recorder}
}

type startRecordingRequest struct {
	Name string `json:"name"`
}

type listRecordingsResponse struct {
	Recordings []*store.Recording `json:"recordings"`
}

func (h *RecordingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r, "/api/recordings")

	switch len(parts) {
	case 0:
		switch r.Method {
		case http.MethodGet:
			h.list(w)
		case http.MethodPost:
			h.start(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case 1:
		switch r.Method {
		case http.MethodGet:
			h.get(w, parts[0])
		case http.MethodDelete:
			h.delete(w, parts[0])
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case 2:
		if parts[1] != "stop" {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.stop(w, parts[0])
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *RecordingsHandler) list(w http.ResponseWriter) {
	recordings, err := h.store.Recordings().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list recordings")
		return
	}
	if recordings == nil {
		recordings = []*store.Recording{}
	}
	writeJSON(w, http.StatusOK, listRecordingsResponse{Recordings: recordings})
}

func (h *RecordingsHandler) start(w http.ResponseWriter, r *http.Request) {
	var req startRecordingRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	rec, err := h.recorder.Start(req.Name)
	if err != nil {
		if errors.Is(err, app.ErrRecordingActive) {
			writeError(w, http.StatusConflict, "A recording is already active")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to start recording")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *RecordingsHandler) get(w http.ResponseWriter, id string) {
	rec, err := h.store.Recordings().Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Recording not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get recording")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecordingsHandler) stop(w http.ResponseWriter, id string) {
	active, ok := h.recorder.Active()
	if !ok || active.ID != id {
		if _, err := h.store.Recordings().Get(id); errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Recording not found")
			return
		}
		writeError(w, http.StatusConflict, "Recording is not active")
		return
	}

	rec, err := h.recorder.Stop()
	if err != nil {
		if errors.Is(err, app.ErrNotRecording) {
			writeError(w, http.StatusConflict, "Recording is not active")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to stop recording")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecordingsHandler) delete(w http.ResponseWriter, id string) {
	if active, ok := h.recorder.Active(); ok && active.ID == id {
		writeError(w, http.StatusConflict, "Stop the recording before deleting it")
		return
	}

	if err := h.store.Recordings().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Recording not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete recording")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package api

import (
	"errors"
	"net/http"

	"github.com/ayusman/landmarkstage/internal/video"
)

// VideoHandler reads and sets the video display mode at /api/video.
type VideoHandler struct {
	controller *video.Controller
}

// NewVideoHandler creates a new VideoHandler driving c.
func NewVideoHandler(c *video.Controller) *VideoHandler {
	return &VideoHandler{controller: c}
}

type videoRequest struct {
	State string `json:"state"`
}

type videoResponse struct {
	State  video.Mode `json:"state"`
	Mirror bool       `json:"mirror"`
}

func (h *VideoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w)
	case http.MethodPut:
		h.set(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *VideoHandler) get(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, videoResponse{
		State:  h.controller.Mode(),
		Mirror: h.controller.Mirrored(),
	})
}

func (h *VideoHandler) set(w http.ResponseWriter, r *http.Request) {
	var req videoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.controller.SetModeString(req.State); err != nil {
		if errors.Is(err, video.ErrInvalidMode) {
			writeError(w, http.StatusBadRequest, "State must be one of off, on, on-flipped")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "Failed to change video mode")
		return
	}

	h.get(w)
}

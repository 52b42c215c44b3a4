package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/landmarkstage/internal/video"
)

// FrameSource supplies JPEG preview frames. video.Preview is a FrameSource.
type FrameSource interface {
	ReadJPEG() ([]byte, error)
}

// StreamHandler serves the video preview as MJPEG.
type StreamHandler struct {
	source   FrameSource
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler with the given source.
func NewStreamHandler(source FrameSource) *StreamHandler {
	return &StreamHandler{source: source, interval: 66 * time.Millisecond}
}

// ServeHTTP streams MJPEG frames until the client leaves or the display is
// turned off.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := h.source.ReadJPEG()
	if errors.Is(err, video.ErrDisplayDisabled) {
		http.Error(w, "Video display is off", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		if err == nil {
			fmt.Fprintf(w, "--frame\r\n")
			fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
			fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(data))
			w.Write(data)
			fmt.Fprintf(w, "\r\n")

			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-time.After(h.interval):
		}

		data, err = h.source.ReadJPEG()
		if errors.Is(err, video.ErrDisplayDisabled) {
			return
		}
	}
}

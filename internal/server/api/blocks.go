package api

import (
	"errors"
	"net/http"

	"github.com/ayusman/landmarkstage/internal/tracker"
)

// BlocksHandler serves the reporter block table at /api/blocks.
type BlocksHandler struct{}

// NewBlocksHandler creates a new BlocksHandler.
func NewBlocksHandler() *BlocksHandler {
	return &BlocksHandler{}
}

type blocksResponse struct {
	Blocks []tracker.Block `json:"blocks"`
}

func (h *BlocksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, blocksResponse{Blocks: tracker.Blocks()})
}

// ReporterHandler evaluates reporter blocks at /api/reporters/{opcode}.
// The landmark query parameter carries the menu value. A missing or
// unparseable index reports an absent value, never an error.
type ReporterHandler struct {
	tracker *tracker.Tracker
}

// NewReporterHandler creates a new ReporterHandler reading from t.
func NewReporterHandler(t *tracker.Tracker) *ReporterHandler {
	return &ReporterHandler{tracker: t}
}

type reporterResponse struct {
	Opcode string          `json:"opcode"`
	Value  tracker.Reading `json:"value"`
}

func (h *ReporterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := pathParts(r, "/api/reporters")
	if len(parts) != 1 {
		writeError(w, http.StatusNotFound, "Reporter not found")
		return
	}
	opcode := parts[0]

	index, ok := tracker.ParseIndex(r.URL.Query().Get("landmark"))
	if !ok {
		if _, err := tracker.LookupBlock(opcode); err != nil {
			writeError(w, http.StatusNotFound, "Reporter not found")
			return
		}
		writeJSON(w, http.StatusOK, reporterResponse{Opcode: opcode, Value: tracker.Absent})
		return
	}

	reading, err := h.tracker.Report(opcode, index)
	if err != nil {
		if errors.Is(err, tracker.ErrUnknownOpcode) {
			writeError(w, http.StatusNotFound, "Reporter not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to evaluate reporter")
		return
	}

	writeJSON(w, http.StatusOK, reporterResponse{Opcode: opcode, Value: reading})
}

package api

import (
	"net/http"

	"github.com/ayusman/landmarkstage/internal/landmark"
	"github.com/ayusman/landmarkstage/internal/menu"
)

// MenuHandler serves block argument menus at /api/menus/{hand|pose|face|video}.
type MenuHandler struct {
	formatter menu.Formatter
}

// NewMenuHandler creates a new MenuHandler. A nil formatter returns
// translation keys as labels.
func NewMenuHandler(f menu.Formatter) *MenuHandler {
	if f == nil {
		f = menu.Keys
	}
	return &MenuHandler{formatter: f}
}

type menuResponse struct {
	Menu  string `json:"menu"`
	Items any    `json:"items"`
}

func (h *MenuHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := pathParts(r, "/api/menus")
	if len(parts) != 1 {
		writeError(w, http.StatusNotFound, "Menu not found")
		return
	}

	name := parts[0]
	if name == "video" {
		writeJSON(w, http.StatusOK, menuResponse{Menu: name, Items: menu.VideoOptions(h.formatter)})
		return
	}

	kind, err := landmark.ParseKind(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "Menu not found")
		return
	}
	writeJSON(w, http.StatusOK, menuResponse{Menu: name, Items: menu.Options(kind, h.formatter)})
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/landmarkstage/internal/landmark"
	"github.com/ayusman/landmarkstage/internal/stage"
	"github.com/ayusman/landmarkstage/internal/tracker"
)

func newTestTracker() (*tracker.Tracker, *landmark.Store, *stage.Mirror) {
	frames := landmark.NewStore()
	mirror := &stage.Mirror{}
	return tracker.New(frames, mirror), frames, mirror
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBlocksHandler(t *testing.T) {
	rec := get(t, NewBlocksHandler(), "/api/blocks")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Blocks []struct {
			Opcode string `json:"opcode"`
			Entity string `json:"entity"`
			Axis   string `json:"axis"`
			Menu   string `json:"menu"`
		} `json:"blocks"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Blocks, 8)
	assert.Equal(t, "getLeftHandX", resp.Blocks[0].Opcode)
	assert.Equal(t, "hand", resp.Blocks[0].Menu)
	assert.Equal(t, "face", resp.Blocks[7].Menu)
}

func TestReporterHandler(t *testing.T) {
	tr, frames, mirror := newTestTracker()
	h := NewReporterHandler(tr)

	hand := make(landmark.Landmarks, landmark.HandLandmarks)
	for i := range hand {
		hand[i] = landmark.Point{X: 0.5, Y: 0.5}
	}
	hand[landmark.IndexTip] = landmark.Point{X: 0.25, Y: 0.75}

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"absent before any frame", "/api/reporters/getLeftHandX?landmark=8", `""`},
		{"missing landmark parameter", "/api/reporters/getLeftHandX", `""`},
		{"non-numeric landmark", "/api/reporters/getLeftHandX?landmark=thumb", `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)

			var resp map[string]json.RawMessage
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.JSONEq(t, tt.want, string(resp["value"]))
		})
	}

	frames.Ingest(&landmark.Frame{Hands: [2]landmark.Landmarks{hand, nil}})

	cases := []struct {
		target string
		want   string
	}{
		{"/api/reporters/getLeftHandX?landmark=8", "120"},
		{"/api/reporters/getLeftHandY?landmark=8", "-90"},
		{"/api/reporters/getLeftHandX?landmark=8.0", "120"},
		{"/api/reporters/getLeftHandX?landmark=21", `""`},
		{"/api/reporters/getRightHandX?landmark=0", `""`},
	}
	for _, c := range cases {
		rec := get(t, h, c.target)
		require.Equal(t, http.StatusOK, rec.Code, c.target)

		var resp map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.JSONEq(t, c.want, string(resp["value"]), c.target)
	}

	mirror.Set(true)
	rec := get(t, h, "/api/reporters/getLeftHandX?landmark=8")
	var resp map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.JSONEq(t, "-120", string(resp["value"]))
}

func TestReporterHandler_UnknownOpcode(t *testing.T) {
	tr, _, _ := newTestTracker()
	h := NewReporterHandler(tr)

	for _, target := range []string{
		"/api/reporters/getTailX?landmark=1",
		"/api/reporters/getTailX",
		"/api/reporters/",
		"/api/reporters/getPoseX/extra",
	} {
		rec := get(t, h, target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/reporters/getPoseX", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

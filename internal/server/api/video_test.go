package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/landmarkstage/internal/stage"
	"github.com/ayusman/landmarkstage/internal/video"
)

type failingDisplay struct{ video.NopDisplay }

func (failingDisplay) Enable() error { return errors.New("no camera") }

func put(t *testing.T, h http.Handler, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeVideo(t *testing.T, rec *httptest.ResponseRecorder) videoResponse {
	t.Helper()
	var resp videoResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestVideoHandler(t *testing.T) {
	mirror := &stage.Mirror{}
	h := NewVideoHandler(video.NewController(nil, mirror))

	rec := get(t, h, "/api/video")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, videoResponse{State: video.ModeOff}, decodeVideo(t, rec))

	rec = put(t, h, "/api/video", `{"state":"on-flipped"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, videoResponse{State: video.ModeOnFlipped, Mirror: true}, decodeVideo(t, rec))
	assert.True(t, mirror.Enabled())

	rec = put(t, h, "/api/video", `{"state":"off"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, videoResponse{State: video.ModeOff, Mirror: true}, decodeVideo(t, rec))
}

func TestVideoHandler_InvalidState(t *testing.T) {
	mirror := &stage.Mirror{}
	c := video.NewController(nil, mirror)
	require.NoError(t, c.SetMode(video.ModeOn))
	h := NewVideoHandler(c)

	for _, body := range []string{`{"state":"sideways"}`, `{}`, `not json`} {
		rec := put(t, h, "/api/video", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	assert.Equal(t, video.ModeOn, c.Mode())
	assert.False(t, mirror.Enabled())
}

func TestVideoHandler_DisplayFailure(t *testing.T) {
	h := NewVideoHandler(video.NewController(failingDisplay{}, &stage.Mirror{}))

	rec := put(t, h, "/api/video", `{"state":"on"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestVideoHandler_MethodNotAllowed(t *testing.T) {
	h := NewVideoHandler(video.NewController(nil, &stage.Mirror{}))

	req := httptest.NewRequest(http.MethodDelete, "/api/video", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

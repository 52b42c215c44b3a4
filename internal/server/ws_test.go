package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/landmarkstage/internal/landmark"
	"github.com/ayusman/landmarkstage/internal/tracker"
)

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestFramesHandler_Ingest(t *testing.T) {
	s, frames, _ := newFullServer(t)
	ts := httptest.NewServer(s)
	defer ts.Close()

	conn := dial(t, ts, "/api/frames")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`[not a frame`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"pose":{"poseLandmarks":[{"x":0.25,"y":0.75,"z":0}]}}`)))

	require.Eventually(t, func() bool {
		return frames.Current().Detected(landmark.Pose)
	}, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, uint64(1), frames.Seq(), "malformed frames are not ingested")

	// A new frame replaces the whole previous one.
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage,
		[]byte(`{"hands":{"landmarks":[[{"x":0.5,"y":0.5,"z":0}]]}}`)))
	require.Eventually(t, func() bool {
		return frames.Seq() == 2
	}, 5*time.Second, 5*time.Millisecond)
	assert.False(t, frames.Current().Detected(landmark.Pose))
	assert.True(t, frames.Current().Detected(landmark.LeftHand))
}

func TestLandmarksHandler_Broadcast(t *testing.T) {
	s, frames, c := newFullServer(t)
	ts := httptest.NewServer(s)
	defer ts.Close()

	conn := dial(t, ts, "/api/landmarks")
	require.Eventually(t, func() bool {
		return s.landmarks.Clients() == 1
	}, 5*time.Second, 5*time.Millisecond)

	frames.Ingest(&landmark.Frame{Pose: landmark.Landmarks{{X: 0.25, Y: 0.75}}})
	require.NoError(t, c.SetModeString("on-flipped"))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var snap tracker.Snapshot
	for {
		require.NoError(t, conn.ReadJSON(&snap))
		if snap.Seq == 1 && snap.Mirror {
			break
		}
	}

	require.Len(t, snap.Pose, 1)
	assert.InDelta(t, -120, snap.Pose[0].X, 1e-9)
	assert.InDelta(t, -90, snap.Pose[0].Y, 1e-9)
	assert.Nil(t, snap.Face)
}

func TestLandmarksHandler_Close(t *testing.T) {
	h := NewLandmarksHandler(tracker.New(landmark.NewStore(), nil))
	h.Close()
	h.Close()
	assert.Zero(t, h.Clients())
}

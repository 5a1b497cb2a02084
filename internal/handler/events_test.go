package handler

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inferd/internal/prediction"
	"inferd/internal/shutdown"
	"inferd/internal/types"
	"inferd/internal/webhook"
)

// startEventsJob puts a blocking job in flight and serves only the events
// route. The returned channel closes when the events handler has returned.
func startEventsJob(t *testing.T, id string, engine *stubEngine) (*prediction.Prediction, *httptest.Server, chan struct{}, chan struct{}) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	slot := prediction.Setup(engine, shutdown.New())
	require.NoError(t, slot.Init(id, types.Request{Input: "I"}))

	drive, err := slot.Process()
	require.NoError(t, err)
	driveDone := make(chan struct{})
	go func() {
		defer close(driveDone)
		drive()
	}()
	require.Eventually(t, func() bool {
		return slot.Status() == types.StatusProcessing
	}, 2*time.Second, time.Millisecond)

	hdl := NewHandler(slot, webhook.NewSender(webhook.Config{}), "test")

	handlerDone := make(chan struct{})
	r := gin.New()
	r.GET("/predictions/:id/events", func(c *gin.Context) {
		hdl.PredictionEvents(c)
		close(handlerDone)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return slot, srv, driveDone, handlerDone
}

func dialEvents(t *testing.T, srv *httptest.Server, id string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/predictions/" + id + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestPredictionEventsDeliversTerminalResponse(t *testing.T) {
	engine := &stubEngine{output: "O", release: make(chan struct{})}
	slot, srv, driveDone, _ := startEventsJob(t, "ev-1", engine)

	conn := dialEvents(t, srv, "ev-1")
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))

	// The first message is a status snapshot; the handler is subscribed.
	var first map[string]any
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "processing", first["status"])

	close(engine.release)

	// Snapshots keep arriving until the terminal response closes the stream.
	for {
		var msg map[string]any
		require.NoError(t, conn.ReadJSON(&msg))

		if msg["completed_at"] == nil {
			continue
		}
		assert.Equal(t, "ev-1", msg["id"])
		assert.Equal(t, "succeeded", msg["status"])
		assert.Equal(t, "O", msg["output"])
		break
	}

	<-driveDone
	_, err := slot.Result()
	require.NoError(t, err)
}

func TestPredictionEventsClientDisconnect(t *testing.T) {
	slot, srv, driveDone, handlerDone := startEventsJob(t, "ev-2", &stubEngine{blockUntilCtx: true})

	conn := dialEvents(t, srv, "ev-2")
	require.NoError(t, conn.Close())

	// The handler notices the peer going away and returns while the job is
	// still running, instead of lingering for its remaining lifetime.
	select {
	case <-handlerDone:
	case <-time.After(2 * time.Second):
		t.Fatalf("events handler did not return after client disconnect")
	}
	assert.Equal(t, types.StatusProcessing, slot.Status())

	require.NoError(t, slot.Cancel("ev-2"))
	<-driveDone
	_, err := slot.Result()
	require.NoError(t, err)
}

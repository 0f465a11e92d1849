package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestWebSocket(t *testing.T, server *Server) *websocket.Conn {
	t.Helper()

	mux := http.NewServeMux()
	server.SetupRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/detect"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readDetectResponses(t *testing.T, conn *websocket.Conn, n int) []WebSocketDetectResponse {
	t.Helper()

	responses := make([]WebSocketDetectResponse, 0, n)
	for len(responses) < n {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var resp WebSocketDetectResponse
		require.NoError(t, json.Unmarshal(data, &resp))
		responses = append(responses, resp)
	}
	return responses
}

func TestWebSocketDetectRoundTrip(t *testing.T) {
	server := newTestServer(t)

	conn := dialTestWebSocket(t, server)

	req := WebSocketDetectRequest{
		Type:    "drawing",
		Drawing: json.RawMessage(drawingBody(t).Bytes()),
	}
	require.NoError(t, conn.WriteJSON(req))

	responses := readDetectResponses(t, conn, 3)

	assert.Equal(t, "processing", responses[0].Status)
	assert.Equal(t, "processing", responses[1].Status)

	final := responses[2]
	assert.Equal(t, "completed", final.Status)
	assert.InDelta(t, 1.0, final.Progress, 1e-9)
	require.NotNil(t, final.Result)
	assert.NotEmpty(t, final.RequestID)
}

func TestWebSocketDetectInvalidJSON(t *testing.T) {
	server := newTestServer(t)

	conn := dialTestWebSocket(t, server)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	responses := readDetectResponses(t, conn, 1)
	assert.Equal(t, "error", responses[0].Status)
	assert.Equal(t, "invalid_request", responses[0].ErrorType)
}

func TestWebSocketDetectUnsupportedType(t *testing.T) {
	server := newTestServer(t)

	conn := dialTestWebSocket(t, server)

	require.NoError(t, conn.WriteJSON(WebSocketDetectRequest{Type: "pdf"}))

	responses := readDetectResponses(t, conn, 2)
	assert.Equal(t, "processing", responses[0].Status)
	assert.Equal(t, "error", responses[1].Status)
	assert.Equal(t, "invalid_request", responses[1].ErrorType)
}

func TestWebSocketDetectEmptyDrawing(t *testing.T) {
	server := newTestServer(t)

	conn := dialTestWebSocket(t, server)

	require.NoError(t, conn.WriteJSON(WebSocketDetectRequest{Type: "drawing"}))

	responses := readDetectResponses(t, conn, 2)
	assert.Equal(t, "error", responses[1].Status)
	assert.Equal(t, "invalid_request", responses[1].ErrorType)
}

func TestWebSocketDetectFilenameOverride(t *testing.T) {
	server := newTestServer(t)

	conn := dialTestWebSocket(t, server)

	req := WebSocketDetectRequest{
		Type:     "drawing",
		Drawing:  json.RawMessage(drawingBody(t).Bytes()),
		Filename: "renamed.json",
	}
	require.NoError(t, conn.WriteJSON(req))

	responses := readDetectResponses(t, conn, 3)
	final := responses[2]
	require.Equal(t, "completed", final.Status)

	payload, err := json.Marshal(final.Result)
	require.NoError(t, err)
	assert.Contains(t, string(payload), "renamed.json")
}

package ws

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

	"github.com/dropfour/server/internal/domain"
)

func dialTestServer(t *testing.T, f *fixture) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(f.hub, f.handler, w, r)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestReadPumpEnforcesFrameLimit(t *testing.T) {
	f := newFixture(t, time.Minute)
	conn := dialTestServer(t, f)

	// A frame within the limit flows through the protocol handler.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var env domain.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, domain.MsgError, env.Type)

	// An oversized frame closes the connection with a 1009.
	big := strings.Repeat("a", maxMessageSize+1)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(big)))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseMessageTooBig, closeErr.Code)
}

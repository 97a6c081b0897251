package orderControllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snackbasket/storefront-api/models"
)

func TestBroadcastDropsDeadConnections(t *testing.T) {
	conns := make(chan *websocket.Conn, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	liveClient, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer liveClient.Close()
	live := <-conns

	deadClient, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	dead := <-conns
	require.NoError(t, dead.Close())
	deadClient.Close()

	wsMu.Lock()
	wsClients[live] = true
	wsClients[dead] = true
	wsMu.Unlock()
	defer func() {
		wsMu.Lock()
		delete(wsClients, live)
		delete(wsClients, dead)
		wsMu.Unlock()
	}()

	broadcastOrderPlaced(models.Order{Ref: "ref-1"})

	// the healthy connection still receives the event
	liveClient.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := liveClient.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), "ref-1")

	// the failed one is pruned instead of lingering until its read loop dies
	wsMu.Lock()
	_, deadRegistered := wsClients[dead]
	_, liveRegistered := wsClients[live]
	wsMu.Unlock()
	assert.False(t, deadRegistered)
	assert.True(t, liveRegistered)
}

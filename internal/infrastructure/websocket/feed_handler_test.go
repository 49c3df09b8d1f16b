package websocket

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-sync/pkg/logger"
)

type fakeConn struct {
	id      string
	sent    [][]byte
	closed  bool
	sendErr error
}

func (f *fakeConn) Send(message []byte) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, message)
	return nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func (f *fakeConn) ID() string { return f.id }

func TestBroadcastReachesChannelMembersOnly(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())
	a := &fakeConn{id: "a"}
	b := &fakeConn{id: "b"}
	broken := &fakeConn{id: "c", sendErr: errors.New("gone")}
	cm.RegisterConnection(SessionChannel, a)
	cm.RegisterConnection(SessionChannel, broken)
	cm.RegisterConnection(AuctionChannel(42), b)

	require.NoError(t, cm.Broadcast(SessionChannel, map[string]int{"n": 1}))

	assert.Equal(t, [][]byte{[]byte(`{"n":1}`)}, a.sent)
	assert.Empty(t, b.sent)
}

func TestUnregisterAllAndCloseAll(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())
	a := &fakeConn{id: "a"}
	b := &fakeConn{id: "b"}
	cm.RegisterConnection(SessionChannel, a)
	cm.RegisterConnection(AuctionChannel(1), a)
	cm.RegisterConnection(SessionChannel, b)

	cm.UnregisterAll("a")

	assert.Len(t, cm.GetConnections(SessionChannel), 1)
	assert.Empty(t, cm.GetConnections(AuctionChannel(1)))

	cm.CloseAll()
	assert.True(t, b.closed)
	assert.Empty(t, cm.GetConnections(SessionChannel))
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestFeedHandlerSnapshotAndWatch(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())
	h := NewFeedHandler(cm, func() interface{} {
		return map[string]string{"type": "snapshot"}
	}, logger.NewNop())

	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/feed"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "snapshot", readJSON(t, conn)["type"])

	require.NoError(t, conn.WriteJSON(FeedMessage{Type: "watch", AuctionID: 42}))
	require.NoError(t, conn.WriteJSON(FeedMessage{Type: "ping"}))
	assert.Equal(t, "pong", readJSON(t, conn)["type"])

	require.NoError(t, cm.Broadcast(AuctionChannel(42), map[string]string{"type": "auction/updated"}))
	assert.Equal(t, "auction/updated", readJSON(t, conn)["type"])

	require.NoError(t, conn.WriteJSON(FeedMessage{Type: "unwatch", AuctionID: 42}))
	require.NoError(t, conn.WriteJSON(FeedMessage{Type: "ping"}))
	assert.Equal(t, "pong", readJSON(t, conn)["type"])
	assert.Empty(t, cm.GetConnections(AuctionChannel(42)))
	assert.Len(t, cm.GetConnections(SessionChannel), 1)
}

func TestFeedHandlerAuctionRoute(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())
	h := NewFeedHandler(cm, nil, logger.NewNop())

	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/feed/auctions/7"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(FeedMessage{Type: "ping"}))
	assert.Equal(t, "pong", readJSON(t, conn)["type"])
	assert.Len(t, cm.GetConnections(AuctionChannel(7)), 1)
}

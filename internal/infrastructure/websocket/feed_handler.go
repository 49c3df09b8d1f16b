package websocket

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"auction-sync/pkg/logger"
	"auction-sync/pkg/utils"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // The feed only listens on the loopback interface
	},
}

// SnapshotFunc returns the message sent to a client right after it joins.
type SnapshotFunc func() interface{}

// FeedMessage is what a presentation client may send over the feed.
type FeedMessage struct {
	Type      string `json:"type"`
	AuctionID int64  `json:"auctionId,omitempty"`
}

type FeedHandler struct {
	connManager *ConnectionManager
	snapshot    SnapshotFunc
	log         logger.Logger
}

func NewFeedHandler(connManager *ConnectionManager, snapshot SnapshotFunc, log logger.Logger) *FeedHandler {
	return &FeedHandler{
		connManager: connManager,
		snapshot:    snapshot,
		log:         log,
	}
}

// Router serves /ws/feed and /ws/feed/auctions/{auctionID}.
func (h *FeedHandler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws/feed", h.HandleConnection)
	r.HandleFunc("/ws/feed/auctions/{auctionID:[0-9]+}", h.HandleConnection)
	return r
}

func (h *FeedHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	var auctionID int64
	if raw, ok := mux.Vars(r)["auctionID"]; ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "invalid auction id", http.StatusBadRequest)
			return
		}
		auctionID = id
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	feedConn := NewFeedConnection(conn)
	h.connManager.RegisterConnection(SessionChannel, feedConn)
	if auctionID > 0 {
		h.connManager.RegisterConnection(AuctionChannel(auctionID), feedConn)
	}

	if h.snapshot != nil {
		if err := feedConn.SendJSON(h.snapshot()); err != nil {
			h.log.Error("Failed to send snapshot", "conn_id", feedConn.ID(), "error", err)
		}
	}

	go h.handleMessages(feedConn)
}

func (h *FeedHandler) handleMessages(conn *FeedConnection) {
	defer func() {
		h.connManager.UnregisterAll(conn.ID())
		conn.Close()
	}()

	for {
		var msg FeedMessage
		if err := conn.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Error("Failed to read feed message", "conn_id", conn.ID(), "error", err)
			}
			return
		}

		switch msg.Type {
		case "ping":
			conn.SendJSON(map[string]string{"type": "pong"})
		case "watch":
			if msg.AuctionID > 0 {
				h.connManager.RegisterConnection(AuctionChannel(msg.AuctionID), conn)
			}
		case "unwatch":
			h.connManager.UnregisterConnection(AuctionChannel(msg.AuctionID), conn.ID())
		default:
			conn.SendJSON(map[string]string{"type": "error", "message": "unknown message type"})
		}
	}
}

type FeedConnection struct {
	conn *websocket.Conn
	id   string
	mu   sync.Mutex
}

func NewFeedConnection(conn *websocket.Conn) *FeedConnection {
	return &FeedConnection{
		conn: conn,
		id:   utils.GenerateID("feed"),
	}
}

func (c *FeedConnection) Send(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

func (c *FeedConnection) SendJSON(message interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(message)
}

func (c *FeedConnection) Close() error {
	return c.conn.Close()
}

func (c *FeedConnection) ID() string {
	return c.id
}

package websocket

import (
	"encoding/json"
	"sync"

	"auction-sync/internal/domain"
	"auction-sync/pkg/logger"
)

var _ domain.FeedBroadcaster = (*ConnectionManager)(nil)

// ConnectionManager fans local feed messages out to connected presentation
// clients, grouped by channel.
type ConnectionManager struct {
	channels map[string]map[string]domain.FeedConnection // channel -> connID -> connection
	connChs  map[string]map[string]struct{}              // connID -> channels
	mutex    sync.RWMutex
	log      logger.Logger
}

func NewConnectionManager(log logger.Logger) *ConnectionManager {
	return &ConnectionManager{
		channels: make(map[string]map[string]domain.FeedConnection),
		connChs:  make(map[string]map[string]struct{}),
		log:      log,
	}
}

func (cm *ConnectionManager) RegisterConnection(channel string, conn domain.FeedConnection) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	if cm.channels[channel] == nil {
		cm.channels[channel] = make(map[string]domain.FeedConnection)
	}
	cm.channels[channel][conn.ID()] = conn

	if cm.connChs[conn.ID()] == nil {
		cm.connChs[conn.ID()] = make(map[string]struct{})
	}
	cm.connChs[conn.ID()][channel] = struct{}{}

	cm.log.Debug("Feed connection registered", "conn_id", conn.ID(), "channel", channel)
}

func (cm *ConnectionManager) UnregisterConnection(channel, connID string) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.unregisterLocked(channel, connID)
}

// UnregisterAll removes a connection from every channel it joined.
func (cm *ConnectionManager) UnregisterAll(connID string) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	for channel := range cm.connChs[connID] {
		cm.unregisterLocked(channel, connID)
	}
}

func (cm *ConnectionManager) unregisterLocked(channel, connID string) {
	if conns, exists := cm.channels[channel]; exists {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(cm.channels, channel)
		}
	}
	if chs, exists := cm.connChs[connID]; exists {
		delete(chs, channel)
		if len(chs) == 0 {
			delete(cm.connChs, connID)
		}
	}
	cm.log.Debug("Feed connection unregistered", "conn_id", connID, "channel", channel)
}

// CloseAll closes and forgets every connection, used on shutdown.
func (cm *ConnectionManager) CloseAll() {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	closed := make(map[string]struct{})
	for _, conns := range cm.channels {
		for connID, conn := range conns {
			if _, done := closed[connID]; done {
				continue
			}
			closed[connID] = struct{}{}
			if err := conn.Close(); err != nil {
				cm.log.Error("Failed to close feed connection", "conn_id", connID, "error", err)
			}
		}
	}
	cm.channels = make(map[string]map[string]domain.FeedConnection)
	cm.connChs = make(map[string]map[string]struct{})
}

func (cm *ConnectionManager) GetConnections(channel string) []domain.FeedConnection {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	var connections []domain.FeedConnection
	for _, conn := range cm.channels[channel] {
		connections = append(connections, conn)
	}
	return connections
}

func (cm *ConnectionManager) Broadcast(channel string, message interface{}) error {
	connections := cm.GetConnections(channel)
	if len(connections) == 0 {
		return nil
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	for _, conn := range connections {
		if err := conn.Send(messageBytes); err != nil {
			cm.log.Error("Failed to send feed message", "conn_id", conn.ID(), "channel", channel, "error", err)
			// Continue to other connections
		}
	}

	return nil
}

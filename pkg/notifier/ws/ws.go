package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Connection wraps websocket.Conn with metadata
type Connection struct {
	Conn   *websocket.Conn
	UserID string

	mu       sync.Mutex // gorilla allows one concurrent writer
	lastSeen time.Time
}

func (c *Connection) Touch() {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

func (c *Connection) idleFor() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.lastSeen)
}

func (c *Connection) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.Conn.WriteJSON(v)
}

func (c *Connection) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second))
}

type Manager struct {
	mu          sync.RWMutex
	connections map[string]map[*Connection]struct{} // userID -> set of connections
	logger      *zap.Logger
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		connections: make(map[string]map[*Connection]struct{}),
		logger:      logger,
	}
}

// Add registers a connection for a user
func (m *Manager) Add(userID string, conn *websocket.Conn) *Connection {
	c := &Connection{Conn: conn, UserID: userID, lastSeen: time.Now()}

	m.mu.Lock()
	if _, ok := m.connections[userID]; !ok {
		m.connections[userID] = make(map[*Connection]struct{})
	}
	m.connections[userID][c] = struct{}{}
	total := len(m.connections[userID])
	m.mu.Unlock()

	m.logger.Debug("ws connected", zap.String("user_id", userID), zap.Int("connections", total))
	return c
}

// Remove disconnects and removes a connection
func (m *Manager) Remove(c *Connection) {
	m.mu.Lock()
	if conns, ok := m.connections[c.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(m.connections, c.UserID)
		}
	}
	m.mu.Unlock()

	_ = c.Conn.Close()
	m.logger.Debug("ws disconnected", zap.String("user_id", c.UserID))
}

// Connected reports how many sockets a user currently holds.
func (m *Manager) Connected(userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections[userID])
}

func (m *Manager) snapshot(userID string) []*Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conns := make([]*Connection, 0, len(m.connections[userID]))
	for c := range m.connections[userID] {
		conns = append(conns, c)
	}
	return conns
}

// Send writes a JSON frame to every connection of the user. Broken
// connections are dropped.
func (m *Manager) Send(userID string, msg any) {
	for _, c := range m.snapshot(userID) {
		if err := c.writeJSON(msg); err != nil {
			m.logger.Warn("ws send failed", zap.String("user_id", userID), zap.Error(err))
			m.Remove(c)
		}
	}
}

// Heartbeat pings all connections until ctx is done and drops the ones that
// stopped answering.
func (m *Manager) Heartbeat(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		m.mu.RLock()
		all := make([]*Connection, 0)
		for _, conns := range m.connections {
			for c := range conns {
				all = append(all, c)
			}
		}
		m.mu.RUnlock()

		for _, c := range all {
			if c.idleFor() > 2*interval {
				m.Remove(c)
				continue
			}
			if err := c.ping(); err != nil {
				m.Remove(c)
			}
		}
	}
}

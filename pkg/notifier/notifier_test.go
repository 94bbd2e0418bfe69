package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/internal/repository/memory"
	"github.com/Houmeecl/pilotonotary-backend/pkg/notifier/ws"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func wsServer(t *testing.T, m *ws.Manager, userID string) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := m.Add(userID, conn)
		defer m.Remove(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			c.Touch()
		}
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.Eventually(t, func() bool { return m.Connected(userID) == 1 }, time.Second, 10*time.Millisecond)
	return client
}

func TestNotifyPersistsAndPushes(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	m := ws.NewManager(zap.NewNop())
	client := wsServer(t, m, "U1")

	n := NewNotifier(store.Notifications(), m, zap.NewNop())
	rec, err := n.Notify(ctx, "U1", "Documento certificado", "Su documento fue certificado.")
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg domain.WSMessage
	require.NoError(t, client.ReadJSON(&msg))
	assert.Equal(t, "notification.created", msg.Event)
	require.NotNil(t, msg.Notification)
	assert.Equal(t, rec.ID, msg.Notification.ID)

	unread, err := store.Notifications().CountUnread(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, 1, unread)
}

func TestNotifyWithoutLiveSession(t *testing.T) {
	store := memory.New()
	n := NewNotifier(store.Notifications(), ws.NewManager(zap.NewNop()), zap.NewNop())

	_, err := n.Notify(context.Background(), "offline", "t", "m")
	require.NoError(t, err)

	list, err := store.Notifications().ListByUser(context.Background(), "offline", 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestClosedSocketIsRemoved(t *testing.T) {
	m := ws.NewManager(zap.NewNop())
	client := wsServer(t, m, "U2")
	require.NoError(t, client.Close())

	require.Eventually(t, func() bool { return m.Connected("U2") == 0 }, 2*time.Second, 10*time.Millisecond)
}

package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"glossa/internal/domain"
)

const writeTimeout = 5 * time.Second

// Transport carries outbound protocol events back toward the realtime
// data channel. Sends against a closed transport return
// domain.ErrTransportClosed; by contract the caller drops and logs them.
type Transport interface {
	Send(payload []byte) error
	Close() error
}

// WebSocketTransport wraps one browser mirror connection. Writes are
// serialized with a dedicated mutex since gorilla connections permit only
// one concurrent writer.
type WebSocketTransport struct {
	conn   *websocket.Conn
	logger *slog.Logger

	writeMu sync.Mutex
	closed  bool
}

// NewWebSocketTransport wraps an upgraded connection.
func NewWebSocketTransport(conn *websocket.Conn, logger *slog.Logger) *WebSocketTransport {
	return &WebSocketTransport{conn: conn, logger: logger}
}

// Send tags and writes one outbound event. Missing event ids are filled
// in with a uuid before the payload leaves the process.
func (t *WebSocketTransport) Send(payload []byte) error {
	tagged, id, err := TagOutbound(payload)
	if err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if t.closed {
		return domain.ErrTransportClosed
	}

	t.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := t.conn.WriteMessage(websocket.TextMessage, tagged); err != nil {
		t.logger.Warn("outbound event write failed", "event_id", id, "error", err)
		return domain.ErrTransportClosed
	}

	t.logger.Debug("outbound event sent", "event_id", id)
	return nil
}

// Close marks the transport closed and closes the underlying connection.
func (t *WebSocketTransport) Close() error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	return t.conn.Close()
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"glossa/internal/domain/models"
	"glossa/internal/realtime"
	"glossa/internal/session"
)

// EventsHandler is the realtime event mirror: the browser forwards every
// data-channel protocol event over this WebSocket, and receives the
// backend's outbound events (tool acknowledgments) to relay onto the
// data channel.
type EventsHandler struct {
	registry *session.Registry
	toolName string
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewEventsHandler creates a new events handler for the given evaluation
// tool name.
func NewEventsHandler(registry *session.Registry, toolName string, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		registry: registry,
		toolName: toolName,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Cross-origin policy is enforced by the CORS layer; the
			// upgrade itself accepts any origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Mirror upgrades the connection and pumps events until the peer closes.
// GET /api/sessions/{id}/events
func (h *EventsHandler) Mirror(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	sess, err := h.registry.Get(id)
	if err != nil {
		handleError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote its own error response.
		h.logger.Warn("websocket upgrade failed", "session_id", id, "error", err)
		return
	}

	transport := realtime.NewWebSocketTransport(conn, h.logger)
	sess.AttachTransport(transport)
	h.logger.Info("event mirror attached", "session_id", sess.ID)

	defer func() {
		sess.DetachTransport(transport)
		transport.Close()
		h.logger.Info("event mirror detached", "session_id", sess.ID)
	}()

	h.readLoop(sess, conn)
}

// readLoop ingests inbound events until the connection drops. Malformed
// payloads are counted and skipped; a bad event never ends the stream.
func (h *EventsHandler) readLoop(sess *session.Session, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("event mirror closed abnormally", "session_id", sess.ID, "error", err)
			}
			return
		}

		ev, err := models.ParseProtocolEvent(data)
		if err != nil {
			sess.CountIgnored()
			h.logger.Debug("ignoring unparseable event", "session_id", sess.ID, "error", err)
			continue
		}

		sess.RecordEvent(ev)
		h.handleToolCalls(sess, ev)
	}
}

// handleToolCalls extracts evaluation tool invocations from one event,
// records the validated observations, and sends the mandatory
// acknowledgment for each. A dropped acknowledgment send is logged and
// otherwise ignored per the transport contract.
func (h *EventsHandler) handleToolCalls(sess *session.Session, ev models.ProtocolEvent) {
	for _, call := range realtime.ExtractToolCalls(ev, h.toolName, h.logger) {
		sess.AddObservation(call.Observation)
		h.logger.Info("observation recorded",
			"session_id", sess.ID,
			"call_id", call.CallID,
			"phase", call.Observation.Phase,
		)

		ack, err := realtime.Acknowledgment(call.CallID, map[string]any{
			"status": "recorded",
			"phase":  call.Observation.Phase,
		})
		if err != nil {
			h.logger.Error("building acknowledgment failed", "call_id", call.CallID, "error", err)
			continue
		}

		if err := sess.Send(ack); err != nil {
			h.logger.Warn("acknowledgment dropped", "call_id", call.CallID, "error", err)
		}
	}
}

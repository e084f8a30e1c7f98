package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tieubaoca/pdfchat/middleware"
	"github.com/tieubaoca/pdfchat/service"
	"github.com/tieubaoca/pdfchat/types"
)

const (
	wsReadLimit   = 512 * 1024
	wsIdleTimeout = 60 * time.Second
)

// WebSocketHandler serves the ask channel: the client sends "ask" and "ping"
// frames, the server answers each one in order. A connection outlives its
// session only until the next frame.
type WebSocketHandler struct {
	chat     *service.ChatService
	sessions *service.SessionStore
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewWebSocketHandler(chat *service.ChatService, sessions *service.SessionStore) *WebSocketHandler {
	return &WebSocketHandler{
		chat:     chat,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // clients authenticate with the token, not cookies
			},
		},
		logger: slog.Default().With("component", "websocket"),
	}
}

func (h *WebSocketHandler) HandleChat(c *gin.Context) {
	session := middleware.SessionFromContext(c)
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
	})

	ctx := c.Request.Context()
	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("read failed", "session", session.ID, "err", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))

		if _, err := h.sessions.Get(session.ID); err != nil {
			h.logger.Info("session ended, closing connection", "session", session.ID)
			msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session ended")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		}

		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			h.writeError(conn, "Invalid message")
			continue
		}

		switch req.Type {
		case types.TypeWebsocketAsk:
			var payload types.AskRequest
			if err := decodePayload(req.Payload, &payload); err != nil {
				h.writeError(conn, "Invalid ask payload")
				continue
			}
			resp, err := h.chat.Ask(ctx, session, payload.Question)
			if err != nil {
				h.logger.Warn("ask failed", "session", session.ID, "err", err)
				h.writeError(conn, errorMessage(err))
				continue
			}
			h.write(conn, types.WebSocketResponse{Type: types.TypeWebsocketAsk, Payload: resp})
		case types.TypeWebsocketPing:
			h.write(conn, types.WebSocketResponse{Type: types.TypeWebsocketPong})
		default:
			h.writeError(conn, "Invalid message type")
		}
	}
}

func decodePayload(payload interface{}, v interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func (h *WebSocketHandler) write(conn *websocket.Conn, resp types.WebSocketResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		h.logger.Warn("write failed", "err", err)
	}
}

func (h *WebSocketHandler) writeError(conn *websocket.Conn, message string) {
	h.write(conn, types.WebSocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: types.WebSocketErrorResponse{Message: message},
	})
}

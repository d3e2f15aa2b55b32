package server

import (
	"net/http"
	"time"

	"github.com/mausarm/crypto-god/internal/game"
	"github.com/mausarm/crypto-god/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Message is what the hub pushes to websocket clients.
type Message struct {
	Type  string          `json:"type"` // "state" or "error"
	State *store.AppState `json:"state,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Hub connects websocket clients to the engine: each client gets the state
// after every dispatch and may send action envelopes.
type Hub struct {
	engine   *game.Engine
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewHub(engine *game.Engine, logger *zap.Logger) *Hub {
	return &Hub{
		engine: engine,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *Hub) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	id, updates := h.engine.Subscribe()
	logger := h.logger.With(zap.String("client", id.String()))
	logger.Info("websocket connected")

	errs := make(chan string, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.readLoop(conn, errs, logger)
	}()

	h.writeLoop(conn, updates, errs, done, logger)

	h.engine.Unsubscribe(id)
	_ = conn.Close()
	<-done
	logger.Info("websocket disconnected")
}

// readLoop dispatches incoming envelopes until the connection fails.
func (h *Hub) readLoop(conn *websocket.Conn, errs chan<- string, logger *zap.Logger) {
	conn.SetReadLimit(maxActionBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		action, err := store.DecodeAction(msg)
		if err != nil {
			select {
			case errs <- err.Error():
			default:
			}
			continue
		}
		h.engine.Dispatch(h.engine.Context(), action)
	}
}

// writeLoop is the only writer of conn. It sends the current state first.
func (h *Hub) writeLoop(conn *websocket.Conn, updates <-chan store.AppState, errs <-chan string,
	done <-chan struct{}, logger *zap.Logger) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	initial := h.engine.State()
	if err := writeJSON(conn, Message{Type: "state", State: &initial}); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case state, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(writeWait))
				return
			}
			if err := writeJSON(conn, Message{Type: "state", State: &state}); err != nil {
				logger.Warn("websocket write failed", zap.Error(err))
				return
			}
		case msg := <-errs:
			if err := writeJSON(conn, Message{Type: "error", Error: msg}); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/hphuyvu-stack/inclusing/internal/keyboard"
	"github.com/hphuyvu-stack/inclusing/internal/platform/ctxutil"
	"github.com/hphuyvu-stack/inclusing/internal/platform/logger"
	"github.com/hphuyvu-stack/inclusing/internal/realtime"
	"github.com/hphuyvu-stack/inclusing/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// viewportIn is a message from the browser: a pointer move or a key press.
type viewportIn struct {
	Type string `json:"type"`
	Y    int    `json:"y"`
	keyboard.KeyEvent
}

type viewportOut struct {
	Type     string `json:"type"`
	Top      *int   `json:"top,omitempty"`
	Behavior string `json:"behavior,omitempty"`
	Action   string `json:"action,omitempty"`
	Message  string `json:"message,omitempty"`
	Data     any    `json:"data,omitempty"`
}

// ViewportHandler carries the continuous viewport signals (pointer position,
// key chords) that are too chatty for request/response.
type ViewportHandler struct {
	log      *logger.Logger
	hub      *realtime.SSEHub
	sessions Sessions
	upgrader websocket.Upgrader
}

func NewViewportHandler(log *logger.Logger, hub *realtime.SSEHub, sessions Sessions, allowedOrigins []string) *ViewportHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &ViewportHandler{
		log:      log.With("handler", "ViewportHandler"),
		hub:      hub,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
		},
	}
}

// GET /api/viewport/ws
func (h *ViewportHandler) Serve(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	profile := ctxutil.ProfileID(c.Request.Context())
	client := h.hub.NewSSEClient(profile)
	h.hub.AddChannel(client, realtime.ProfileChannel(profile))

	// The request context ends once the handler returns, so the socket gets its own.
	ctx, cancel := context.WithCancel(ctxutil.WithProfile(context.Background(), ctxutil.GetProfile(c.Request.Context())))
	replies := make(chan viewportOut, 8)
	go h.writePump(ctx, conn, client, replies)
	h.readPump(ctx, conn, s, replies)

	cancel()
	h.hub.CloseClient(client)
}

func (h *ViewportHandler) readPump(ctx context.Context, conn *websocket.Conn, s *session.Session, replies chan<- viewportOut) {
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("Viewport socket closed", "error", err)
			}
			return
		}
		var msg viewportIn
		if err := json.Unmarshal(raw, &msg); err != nil {
			reply(ctx, replies, viewportOut{Type: "error", Message: "malformed message"})
			continue
		}
		switch msg.Type {
		case "pointer":
			s.Pointer.Publish(msg.Y)
		case "key":
			action, err := s.Keyboard.Dispatch(ctx, msg.KeyEvent)
			if err != nil {
				reply(ctx, replies, viewportOut{Type: "error", Message: "could not apply shortcut"})
				continue
			}
			if action != keyboard.ActionNone {
				reply(ctx, replies, viewportOut{Type: "action", Action: string(action)})
			}
		default:
			reply(ctx, replies, viewportOut{Type: "error", Message: "unknown message type"})
		}
	}
}

func reply(ctx context.Context, replies chan<- viewportOut, out viewportOut) {
	select {
	case replies <- out:
	case <-ctx.Done():
	}
}

func (h *ViewportHandler) writePump(ctx context.Context, conn *websocket.Conn, client *realtime.SSEClient, replies <-chan viewportOut) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		var out viewportOut
		select {
		case <-ctx.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		case out = <-replies:
		case msg, ok := <-client.Outbound:
			if !ok {
				return
			}
			var keep bool
			if out, keep = toViewport(msg); !keep {
				continue
			}
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(out); err != nil {
			return
		}
	}
}

// toViewport maps hub events onto socket messages; events the viewport does
// not render are skipped. ContentChanged, which carries the processing and
// reading flags, reaches only SSE streams.
func toViewport(msg realtime.SSEMessage) (viewportOut, bool) {
	switch msg.Event {
	case realtime.SSEEventReadingMaskChanged:
		return viewportOut{Type: "mask", Data: msg.Data}, true
	case realtime.SSEEventScrollRequested:
		top, behavior := 0, "smooth"
		if ev, ok := msg.Data.(session.ScrollEvent); ok {
			top, behavior = ev.Top, ev.Behavior
		}
		return viewportOut{Type: "scroll", Top: &top, Behavior: behavior}, true
	case realtime.SSEEventSettingsChanged:
		return viewportOut{Type: "settings", Data: msg.Data}, true
	default:
		return viewportOut{}, false
	}
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hphuyvu-stack/inclusing/internal/platform/ctxutil"
	"github.com/hphuyvu-stack/inclusing/internal/platform/logger"
	"github.com/hphuyvu-stack/inclusing/internal/realtime"
)

type RealtimeHandler struct {
	Log      *logger.Logger
	Hub      *realtime.SSEHub
	sessions Sessions
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub, sessions Sessions) *RealtimeHandler {
	return &RealtimeHandler{
		Log:      log.With("handler", "RealtimeHandler"),
		Hub:      hub,
		sessions: sessions,
	}
}

// GET /api/sse/stream
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	// The session must exist so its components publish to this stream.
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	profile := ctxutil.ProfileID(c.Request.Context())
	client := h.Hub.NewSSEClient(profile)
	h.Hub.AddChannel(client, realtime.ProfileChannel(profile))
	defer h.Hub.CloseClient(client)

	h.Log.Debug("SSEStream open", "profile_id", profile, "clientID", client.ID)
	// Prime the stream with the current snapshot.
	client.Outbound <- realtime.SSEMessage{
		Channel: realtime.ProfileChannel(profile),
		Event:   realtime.SSEEventSettingsChanged,
		Data:    gin.H{"settings": s.Store.Get(), "reason": "snapshot"},
	}
	h.Hub.ServeHTTP(c.Writer, c.Request, client)
}

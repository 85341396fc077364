package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hphuyvu-stack/inclusing/internal/http/response"
	"github.com/hphuyvu-stack/inclusing/internal/keyboard"
)

type KeyboardHandler struct {
	sessions Sessions
}

func NewKeyboardHandler(sessions Sessions) *KeyboardHandler {
	return &KeyboardHandler{sessions: sessions}
}

// GET /api/shortcuts
func (h *KeyboardHandler) Shortcuts(c *gin.Context) {
	response.RespondOK(c, gin.H{"shortcuts": keyboard.Shortcuts()})
}

// POST /api/keyboard
func (h *KeyboardHandler) Dispatch(c *gin.Context) {
	var ev keyboard.KeyEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	action, err := s.Keyboard.Dispatch(c.Request.Context(), ev)
	if err != nil {
		response.RespondAPIError(c, err, "dispatch_failed")
		return
	}
	response.RespondOK(c, gin.H{
		"action":   action,
		"handled":  action != keyboard.ActionNone,
		"settings": s.Store.Get(),
	})
}

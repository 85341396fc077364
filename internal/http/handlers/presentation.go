package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hphuyvu-stack/inclusing/internal/http/response"
	"github.com/hphuyvu-stack/inclusing/internal/keyboard"
	"github.com/hphuyvu-stack/inclusing/internal/theme"
)

type PresentationHandler struct {
	sessions Sessions
}

func NewPresentationHandler(sessions Sessions) *PresentationHandler {
	return &PresentationHandler{sessions: sessions}
}

// GET /api/presentation
func (h *PresentationHandler) Get(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	snap := s.Store.Get()
	response.RespondOK(c, gin.H{
		"settings":     snap,
		"presentation": theme.Present(snap),
		"themes":       theme.Options(),
		"readingMask":  s.Mask.State(),
		"shortcuts":    keyboard.Shortcuts(),
	})
}

// GET /api/reading-mask
func (h *PresentationHandler) ReadingMask(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{"readingMask": s.Mask.State()})
}

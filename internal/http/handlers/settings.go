package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hphuyvu-stack/inclusing/internal/domain"
	"github.com/hphuyvu-stack/inclusing/internal/http/response"
	"github.com/hphuyvu-stack/inclusing/internal/platform/apierr"
)

type SettingsHandler struct {
	sessions Sessions
}

func NewSettingsHandler(sessions Sessions) *SettingsHandler {
	return &SettingsHandler{sessions: sessions}
}

// GET /api/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{"settings": s.Store.Get()})
}

// PATCH /api/settings
func (h *SettingsHandler) Patch(c *gin.Context) {
	var req domain.SettingsPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		if !errors.Is(err, io.EOF) {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		req = domain.SettingsPatch{}
	}
	if err := req.Validate(); err != nil {
		response.RespondAPIError(c, apierr.BadRequest("invalid_settings", err), "")
		return
	}
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	snap, err := s.Store.Update(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "update_settings_failed")
		return
	}
	response.RespondOK(c, gin.H{"settings": snap})
}

// POST /api/settings/reset
func (h *SettingsHandler) Reset(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	snap, err := s.Store.Reset(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "reset_settings_failed")
		return
	}
	response.RespondOK(c, gin.H{"settings": snap})
}

// DELETE /api/settings
func (h *SettingsHandler) Forget(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	snap, err := s.Store.Forget(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "forget_settings_failed")
		return
	}
	response.RespondOK(c, gin.H{"settings": snap})
}

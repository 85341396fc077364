package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hphuyvu-stack/inclusing/internal/content"
	"github.com/hphuyvu-stack/inclusing/internal/domain"
	"github.com/hphuyvu-stack/inclusing/internal/http/response"
	"github.com/hphuyvu-stack/inclusing/internal/platform/apierr"
	"github.com/hphuyvu-stack/inclusing/internal/platform/pcm"
)

type ContentHandler struct {
	sessions Sessions
	course   domain.Course
}

func NewContentHandler(sessions Sessions, course domain.Course) *ContentHandler {
	return &ContentHandler{sessions: sessions, course: course}
}

// GET /api/content
func (h *ContentHandler) Get(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{
		"course":  h.course,
		"content": s.Content.Content(),
	})
}

// POST /api/content/read-aloud
//
// The clip is "played" by streaming it back as audio/wav; 204 means nothing
// was produced.
func (h *ContentHandler) ReadAloud(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	var buf bytes.Buffer
	var out pcm.Clip
	player := content.PlayerFunc(func(_ context.Context, clip pcm.Clip) error {
		out = clip
		return clip.WriteWAV(&buf)
	})
	played, err := s.Content.ReadAloud(c.Request.Context(), player)
	if err != nil {
		if errors.Is(err, content.ErrAlreadyReading) {
			err = apierr.Conflict("already_reading", err)
		}
		response.RespondAPIError(c, err, "read_aloud_failed")
		return
	}
	if !played {
		c.Status(http.StatusNoContent)
		return
	}
	c.Header("X-Audio-Duration-Ms", strconv.FormatInt(out.Duration().Milliseconds(), 10))
	c.Data(http.StatusOK, "audio/wav", buf.Bytes())
}

package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/hphuyvu-stack/inclusing/internal/http/response"
	"github.com/hphuyvu-stack/inclusing/internal/platform/ctxutil"
	"github.com/hphuyvu-stack/inclusing/internal/session"
)

// Sessions is what handlers need from the session registry.
type Sessions interface {
	Get(ctx context.Context, profile string) (*session.Session, error)
}

// sessionFor loads the request profile's session, writing the error response
// itself when that fails.
func sessionFor(c *gin.Context, sessions Sessions) (*session.Session, bool) {
	ctx := c.Request.Context()
	s, err := sessions.Get(ctx, ctxutil.ProfileID(ctx))
	if err != nil {
		response.RespondAPIError(c, err, "load_settings_failed")
		return nil, false
	}
	return s, true
}

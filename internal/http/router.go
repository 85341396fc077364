package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/hphuyvu-stack/inclusing/internal/http/handlers"
	httpMW "github.com/hphuyvu-stack/inclusing/internal/http/middleware"
	"github.com/hphuyvu-stack/inclusing/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	ProfileMiddleware   *httpMW.ProfileMiddleware
	SettingsHandler     *httpH.SettingsHandler
	PresentationHandler *httpH.PresentationHandler
	ContentHandler      *httpH.ContentHandler
	KeyboardHandler     *httpH.KeyboardHandler
	RealtimeHandler     *httpH.RealtimeHandler
	ViewportHandler     *httpH.ViewportHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	if cfg.ProfileMiddleware != nil {
		api.Use(cfg.ProfileMiddleware.Resolve())
	}
	api.Use(httpMW.RequestLogger(cfg.Log))
	{
		// Settings
		if cfg.SettingsHandler != nil {
			api.GET("/settings", cfg.SettingsHandler.Get)
			api.PATCH("/settings", cfg.SettingsHandler.Patch)
			api.POST("/settings/reset", cfg.SettingsHandler.Reset)
			api.DELETE("/settings", cfg.SettingsHandler.Forget)
		}

		// Presentation
		if cfg.PresentationHandler != nil {
			api.GET("/presentation", cfg.PresentationHandler.Get)
			api.GET("/reading-mask", cfg.PresentationHandler.ReadingMask)
		}

		// Content
		if cfg.ContentHandler != nil {
			api.GET("/content", cfg.ContentHandler.Get)
			api.POST("/content/read-aloud", cfg.ContentHandler.ReadAloud)
		}

		// Keyboard
		if cfg.KeyboardHandler != nil {
			api.GET("/shortcuts", cfg.KeyboardHandler.Shortcuts)
			api.POST("/keyboard", cfg.KeyboardHandler.Dispatch)
		}

		// Realtime (SSE, WebSocket)
		if cfg.RealtimeHandler != nil {
			api.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}
		if cfg.ViewportHandler != nil {
			api.GET("/viewport/ws", cfg.ViewportHandler.Serve)
		}
	}

	return r
}

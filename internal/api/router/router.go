package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/5sursyncIT/edusync-sub001/config"
	"github.com/5sursyncIT/edusync-sub001/internal/api/handler"
	"github.com/5sursyncIT/edusync-sub001/internal/api/middleware"
	"github.com/5sursyncIT/edusync-sub001/pkg/jwt"
	"github.com/5sursyncIT/edusync-sub001/pkg/redis"
)

// maxBodyBytes caps request bodies; a timetable with hundreds of slots
// stays well below it.
const maxBodyBytes = 1 << 20

// Setup builds the gin engine. jwtMgr is nil when authentication is off;
// rdb is nil when Redis is not configured.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── health ──
	r.GET("/health", h.Health.Live)
	r.GET("/health/ready", h.Health.Ready)

	writers := middleware.RoleAuth(jwt.RoleAdmin, jwt.RoleEditor)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr))
	{
		timetables := v1.Group("/timetables")
		{
			timetables.GET("", h.Timetable.List)
			timetables.GET("/:id", h.Timetable.Get)
			timetables.GET("/:id/week", h.Timetable.Week)
			timetables.GET("/:id/conflicts", h.Timetable.Conflicts)
			timetables.GET("/:id/occurrences", h.Timetable.Occurrences)
			timetables.GET("/:id/occurrences.ics", h.Timetable.Calendar)
			timetables.GET("/:id/export", h.Timetable.Export)
			timetables.POST("", writers, h.Timetable.Create)
			timetables.DELETE("/:id", writers, h.Timetable.Delete)
			timetables.POST("/:id/transitions", writers, h.Timetable.Transition)
		}

		sessions := v1.Group("/editing-sessions", writers)
		{
			sessions.POST("", h.Editing.Open)
			sessions.GET("/:sid", h.Editing.Get)
			sessions.DELETE("/:sid", h.Editing.Close)
			sessions.PUT("/:sid/details", h.Editing.UpdateDetails)
			sessions.POST("/:sid/slots", h.Editing.AddSlot)
			sessions.PUT("/:sid/slots/:slotId", h.Editing.UpdateSlot)
			sessions.DELETE("/:sid/slots/:slotId", h.Editing.RemoveSlot)
			sessions.POST("/:sid/commit",
				middleware.RateLimit(rdb, cfg.Editing.CommitRateLimit, time.Minute, logger),
				h.Editing.Commit,
			)
		}
	}

	return r
}

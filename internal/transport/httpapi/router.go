package httpapi

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropfour/server/internal/transport/httpapi/middleware"
	"github.com/dropfour/server/internal/transport/ws"
)

// NewRouter wires the HTTP surface: health probe, leaderboard read API,
// metrics, and the websocket upgrade.
func NewRouter(allowedOrigins []string, db *sql.DB, leaderboard *LeaderboardHandler, hub *ws.Hub, wsHandler *ws.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.CORSMiddleware(allowedOrigins))

	router.GET("/healthz", healthHandler(db))
	router.GET("/api/leaderboard", leaderboard.GetLeaderboard)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/ws", func(c *gin.Context) {
		ws.ServeWS(hub, wsHandler, c.Writer, c.Request)
	})

	return router
}

// healthHandler reports readiness. The database is optional; the probe
// only degrades to 503 when a configured database stops answering.
func healthHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			if err := db.PingContext(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

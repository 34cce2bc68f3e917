package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/database"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/handlers"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Consents *handlers.ConsentHandler
	Sites    *handlers.SiteHandler
	Stories  *handlers.StoryHandler
	Embed    *handlers.EmbedHandler
	Revenue  *handlers.RevenueHandler
}

// New builds the gin engine with all routes registered.
func New(h *Handlers, db *database.DB, logger *logrus.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	engine.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	{
		api.POST("/sites", h.Sites.Create)
		api.GET("/sites", h.Sites.List)
		api.GET("/sites/:siteId", h.Sites.Get)
		api.POST("/sites/:siteId/suspend", h.Sites.Suspend)
		api.POST("/sites/:siteId/activate", h.Sites.Activate)

		api.POST("/stories", h.Stories.Create)
		api.GET("/stories", h.Stories.List)
		api.GET("/stories/:storyId", h.Stories.Get)

		api.POST("/consents", h.Consents.Create)
		api.GET("/consents", h.Consents.List)
		api.GET("/consents/:consentId", h.Consents.Get)
		api.GET("/consents/:consentId/audits", h.Consents.Audits)
		api.POST("/consents/:consentId/approve", h.Consents.Approve)
		api.POST("/consents/:consentId/deny", h.Consents.Deny)
		api.POST("/consents/:consentId/revoke", h.Consents.Revoke)
		api.POST("/consents/:consentId/review", h.Consents.FlagForReview)
		api.POST("/consents/:consentId/token", h.Consents.IssueToken)

		api.POST("/revenue/compute", h.Revenue.Compute)
		api.POST("/revenue/mark-paid", h.Revenue.MarkPaid)
		api.GET("/revenue/entries", h.Revenue.ListEntries)
	}

	embed := engine.Group("/embed")
	{
		embed.GET("/permission", h.Embed.Permission)
		embed.POST("/engagement", h.Embed.Engagement)
	}

	return engine
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("Request handled")
	}
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bloghub/internal/middleware"
	"bloghub/internal/post"
	"bloghub/internal/series"
	"bloghub/internal/session"
	"bloghub/internal/tag"
	"bloghub/pkg/utils"
)

// New assembles the full HTTP surface: the session routes at the root,
// the token-gated admin CRUD under /admin and the public read-only
// catalog under /api.
func New(cfg utils.Config, db *gorm.DB) *gin.Engine {
	router := gin.Default()

	// avoid "trusted all proxies" warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.Use(middleware.RequestID())

	router.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "db_error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	store := session.NewStore(cfg.AdminID, cfg.AdminPW, cfg.SessionTTL)
	session.NewHandler(store).RegisterRoutes(&router.RouterGroup)

	postHandler := post.NewHandler(post.NewRepo(db))
	seriesHandler := series.NewHandler(series.NewRepo(db))
	tagHandler := tag.NewHandler(tag.NewRepo(db))

	admin := router.Group("/admin")
	admin.Use(session.RequireSession(store))
	postHandler.RegisterAdminRoutes(admin)
	seriesHandler.RegisterAdminRoutes(admin)
	tagHandler.RegisterAdminRoutes(admin)

	api := router.Group("/api")
	postHandler.RegisterPublicRoutes(api)
	seriesHandler.RegisterPublicRoutes(api)
	tagHandler.RegisterPublicRoutes(api)

	return router
}

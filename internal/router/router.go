package router

import (
	"net/http"
	"path/filepath"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"pemapp/internal/catalog"
	"pemapp/internal/config"
	"pemapp/internal/handlers"
	"pemapp/internal/history"
	"pemapp/internal/repository"
	"pemapp/internal/utils"
)

// Deps carries everything the handlers need; all collaborators are injected
// here rather than reached through globals.
type Deps struct {
	Catalog  *catalog.Catalog
	Analyzer handlers.Analyzer
	History  history.Store
	Users    *repository.UserRepository // nil disables accounts
}

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func rateLimitExceeded(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "请求过于频繁，请稍后重试"})
}

func newLimiter(limit uint) gin.HandlerFunc {
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: limit,
	})
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: rateLimitExceeded,
		KeyFunc:      keyFunc,
	})
}

func Setup(log *zap.Logger, deps Deps) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	secret := config.Conf.Server.SessionSecret
	if secret == "" {
		// Ephemeral secret: sessions won't survive a restart.
		var err error
		secret, err = utils.GenerateSecureToken(32)
		if err != nil {
			log.Fatal("Failed to generate session secret", zap.Error(err))
		}
		log.Warn("server.session_secret is not set; using an ephemeral secret")
	}

	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	router.Use(sessions.Sessions("pem_session", store))
	router.Use(IdentityLoader())

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		c.Next()
	})

	assetsDir := config.Conf.Server.AssetsDir
	router.Static("/assets", assetsDir)
	router.StaticFile("/", filepath.Join(assetsDir, "index.html"))

	// Handlers and routes
	authHandler := handlers.NewAuthHandler(log, deps.Users)
	analyzeHandler := handlers.NewAnalyzeHandler(log, deps.Analyzer, deps.Catalog, deps.History)
	historyHandler := handlers.NewHistoryHandler(log, deps.History)
	metricsHandler := handlers.NewMetricsHandler(deps.Catalog)

	authLimiter := newLimiter(5)
	analyzeLimiter := newLimiter(10)

	api := router.Group("/api")
	{
		api.GET("/metrics", metricsHandler.List)
		api.POST("/analyze", analyzeLimiter, analyzeHandler.Analyze)

		api.GET("/history", historyHandler.List)
		api.GET("/history/:id", historyHandler.Get)
		api.GET("/history/:id/radar", historyHandler.Radar)
		api.DELETE("/history/:id", historyHandler.Remove)

		auth := api.Group("/auth")
		{
			auth.POST("/register", authLimiter, authHandler.Register)
			auth.POST("/login", authLimiter, authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", authHandler.Me)
		}
	}

	return router
}

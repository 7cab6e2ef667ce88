package http

import (
	"github.com/gin-gonic/gin"

	"studybuddy/internal/bootstrap"
	"studybuddy/internal/transport/http/handler"
	"studybuddy/internal/transport/http/middleware"
)

// NewRouter mounts the API. done stops the rate limiter's sweeper.
func NewRouter(app *bootstrap.App, done <-chan struct{}) *gin.Engine {
	cfg := app.Config
	gin.SetMode(cfg.App.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger(app.Logger))

	healthHandler := handler.NewHealthHandler(app)
	studyHandler := handler.NewStudyHandler(app.Tutor, app.Quiz, app.Eval, app.Study)
	uploadHandler := handler.NewUploadHandler(app.RAG, cfg.MaxUploadBytes())
	historyHandler := handler.NewHistoryHandler(app.Documents, app.Evaluations)
	authHandler := handler.NewAuthHandler(app.Auth)

	router.GET("/healthz", healthHandler.Check)

	api := router.Group("/api")

	// Routes that call the LLM share one per-client budget.
	llm := api.Group("")
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		go limiter.Run(done)
		llm.Use(limiter.Middleware())
	}
	llm.POST("/chat", studyHandler.Chat)
	llm.POST("/quiz", studyHandler.Quiz)
	llm.POST("/evaluate", studyHandler.Evaluate)
	llm.POST("/study", studyHandler.Study)

	upload := []gin.HandlerFunc{uploadHandler.Upload}
	if app.Auth.Enabled() {
		upload = append([]gin.HandlerFunc{middleware.AuthJWT(cfg.Auth.JWTSecret)}, upload...)
	}
	api.POST("/upload", upload...)

	api.GET("/quiz/:id/pdf", studyHandler.QuizPDF)
	api.GET("/documents", historyHandler.Documents)
	api.GET("/evaluations", historyHandler.Evaluations)
	api.POST("/auth/token", authHandler.Token)

	return router
}

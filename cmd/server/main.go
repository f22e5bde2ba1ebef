package main

import (
	"characterstory/internal/api"
	"characterstory/internal/config"
	"characterstory/internal/credits"
	"characterstory/internal/model"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		return
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise repository")
		return
	}

	httpHandler, err := api.NewHTTPHandler(cfg, repo)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise http handler")
		return
	}

	// Background credit jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()
	if cfg.DailyResetEnable {
		go credits.RunDailyReset(jobCtx, httpHandler.Ledger(), repo, cfg.DailyFreeCredits)
	}
	if cfg.OrphanSweepEnable {
		go credits.RunOrphanSweep(jobCtx, repo)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(LoggingMiddleware())
	r.Use(CORSMiddleware())
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	apiGroup := r.Group("/api")
	apiGroup.POST("/webhooks/identity", httpHandler.IdentityWebhook)

	protected := apiGroup.Group("")
	protected.Use(httpHandler.AuthMiddleware())
	protected.POST("/generate/character", httpHandler.GenerateCharacter)
	protected.POST("/generate/scene", httpHandler.GenerateScene)

	protected.GET("/characters", httpHandler.ListCharacters)
	protected.PATCH("/characters/:id/favorite", httpHandler.UpdateCharacterFavorite)
	protected.DELETE("/characters/:id", httpHandler.DeleteCharacter)

	protected.GET("/scenes", httpHandler.ListScenes)
	protected.DELETE("/scenes/:id", httpHandler.DeleteScene)

	protected.GET("/user/credits", httpHandler.GetCredits)
	protected.GET("/user/credit-logs", httpHandler.ListCreditLogs)

	protected.POST("/translate", httpHandler.Translate)
	protected.GET("/translate/stats", httpHandler.TranslateStats)
	protected.DELETE("/translate/cache", httpHandler.ClearTranslateCache)

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	logrus.WithField("host", serverHost).Info("server starting")
	httpServer := &http.Server{
		Addr:         serverHost,
		Handler:      r,
		ReadTimeout:  300 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  600 * time.Second,
	}
	err = httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logrus.WithError(err).Error("server failed to start")
	}
}

// CORSMiddleware allows browser clients on other origins.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggingMiddleware emits one structured event per request.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  duration.String(),
			"size":      c.Writer.Size(),
			"client_ip": c.ClientIP(),
		}).Info("http_request")
	}
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"drawlab/internal/admin"
	"drawlab/internal/attendance"
	"drawlab/internal/auth"
	"drawlab/internal/config"
	"drawlab/internal/content"
	"drawlab/internal/evaluation"
	"drawlab/internal/handler"
	"drawlab/internal/httpmiddleware"
	"drawlab/internal/logging"
	"drawlab/internal/practice"
	"drawlab/internal/storage"
	"drawlab/internal/store"
	"drawlab/internal/student"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogPretty)

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

func runHTTP(cfg config.App, log zerolog.Logger) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.Migrate(); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	// MinIO object storage (nil when not configured)
	var objStore *storage.Client
	if cfg.MinIOAccessKey != "" && cfg.MinIOSecretKey != "" {
		objStore, err = storage.New(storage.Options{
			Endpoint:      cfg.MinIOEndpoint,
			AccessKey:     cfg.MinIOAccessKey,
			SecretKey:     cfg.MinIOSecretKey,
			Bucket:        cfg.MinIOBucket,
			UseSSL:        cfg.MinIOUseSSL,
			PublicBaseURL: cfg.PublicBaseURL,
		})
		if err != nil {
			return err
		}
		log.Info().Str("endpoint", cfg.MinIOEndpoint).Str("bucket", cfg.MinIOBucket).Msg("object storage configured")
	} else {
		log.Warn().Msg("object storage not configured (MINIO_ACCESS_KEY / MINIO_SECRET_KEY not set)")
	}

	studentRepo := student.NewRepository(db.Client)
	students := student.NewService(studentRepo, cfg.PasswordSalt, cfg.SessionTTL, cfg.ResetTokenTTL)

	adminRepo := admin.NewRepository(db.Client)
	admins := admin.NewService(adminRepo, cfg.PasswordSalt, cfg.AdminSessionTTL)

	att := attendance.NewService(attendance.NewRepository(db.Client))
	contentRepo := content.NewRepository(db.Client)
	history := practice.NewHistoryRepository(db.Client)

	eval := evaluation.New(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, cfg.AISkip)
	if cfg.AISkip {
		log.Warn().Msg("AI evaluation skipped (AI_SKIP=true), canned results will be returned")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())

	// Rate limiting: Redis fixed window when Redis is up, in-process
	// token bucket otherwise.
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	redisUp := redisClient.Healthy(pingCtx)
	cancelPing()
	if redisUp {
		r.Use(httpmiddleware.NewRedisLimiter(redisClient.Client, cfg.RateLimitPerMin).GinMiddleware())
	} else {
		log.Warn().Msg("redis not reachable, falling back to in-process rate limiting")
		r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	h := handler.New(log, students, admins, att, contentRepo, history, eval, objStore)
	// Uploads accept either a student or an admin session.
	h.Register(r, auth.Require(auth.AnyOf(students, admins)))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced shutdown")
	}

	log.Info().Msg("server exited")
	return nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

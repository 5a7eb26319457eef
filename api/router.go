// Package api contains all endpoints available
package api

import (
	"context"
	"fmt"
	"time"

	"bitwise74/formdrop-api/config"
	"bitwise74/formdrop-api/db"
	"bitwise74/formdrop-api/middleware"
	"bitwise74/formdrop-api/security"
	"bitwise74/formdrop-api/service"
	"bitwise74/formdrop-api/storage"
	"bitwise74/formdrop-api/util"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

// Room for multipart headers and small fields on top of the file itself
const multipartOverhead = 1 << 20

type API struct {
	Config *config.Config
	DB     *gorm.DB
	Router *gin.Engine
	Blobs  storage.Blobs
	Tokens *security.TokenIssuer
	Users  *service.Users
	Files  *service.Files
	Forms  *service.Forms

	limiter *middleware.RateLimiter
}

// Close stops the background work started by New. The database and blob
// store are left to their owner.
func (a *API) Close() {
	a.limiter.Stop()
}

// NewRouter opens the database and blob store described by cfg and builds
// the API on top of them
func NewRouter(ctx context.Context, cfg *config.Config) (*API, error) {
	makeLogger(cfg.App.LogLevel)

	if util.IsRunningInDocker() {
		if err := db.RequireMounted(cfg.DB.Driver, cfg.DB.DSN); err != nil {
			return nil, err
		}
	}

	d, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	blobs, err := storage.New(ctx, cfg.Storage.Type, cfg.Storage.LocalPath, cfg.S3Config())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob storage, %w", err)
	}

	return New(cfg, d, blobs)
}

// New wires the services and routes. The caller owns d and blobs.
func New(cfg *config.Config, d *gorm.DB, blobs storage.Blobs) (*API, error) {
	tokens, err := security.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer, %w", err)
	}

	users, err := service.NewUsers(d, security.NewArgon())
	if err != nil {
		return nil, err
	}

	registry := service.NewFiles(d, blobs)

	a := &API{
		Config: cfg,
		DB:     d,
		Blobs:  blobs,
		Tokens: tokens,
		Users:  users,
		Files:  registry,
		Forms:  service.NewForms(d, registry),
	}

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     cfg.Host.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		middleware.NewMetricsMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = 8 << 20

	jwt := middleware.NewJWTMiddleware(d, tokens)
	a.limiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.Security.RateLimit,
		Burst:             cfg.Security.RateBurst,
	})
	smallBody := middleware.BodySizeLimiter(1 << 20)
	uploadBody := middleware.BodySizeLimiter(cfg.MaxUploadBytes() + multipartOverhead)

	// GET /metrics			-> Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	main := router.Group("/api", a.limiter.Middleware())
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)
	}

	auth := main.Group("/auth", smallBody)
	{
		// POST /api/auth/register	-> Registers a new user and logs them in
		auth.POST("/register", a.AuthRegister)

		// POST /api/auth/login		-> Logs in a user and returns a token
		auth.POST("/login", a.AuthLogin)

		// DELETE /api/auth/account	-> Deletes the caller's account
		auth.DELETE("/account", jwt, a.AuthDelete)
	}

	files := main.Group("/files", jwt)
	{
		// POST /api/files/upload	-> Uploads a new file owned by the caller
		files.POST("/upload", uploadBody, a.FileUpload)

		// GET /api/files		-> Lists the caller's files
		files.GET("", a.FileList)

		// GET /api/files/:id/download	-> Streams a file back to its owner
		files.GET("/:id/download", a.FileDownload)

		// DELETE /api/files/:id	-> Deletes a file owned by the caller
		files.DELETE("/:id", a.FileDelete)
	}

	forms := main.Group("/forms")
	{
		// POST /api/forms		-> Creates a form
		forms.POST("", jwt, smallBody, a.FormCreate)

		// GET /api/forms		-> Lists the caller's forms
		forms.GET("", jwt, a.FormList)

		// DELETE /api/forms/:id	-> Deletes a form and its submissions
		forms.DELETE("/:id", jwt, a.FormDelete)

		// POST /api/forms/:slug/submit	-> Public submission endpoint
		forms.POST("/:slug/submit", uploadBody, a.FormSubmit)

		// GET /api/forms/:id/submissions -> Lists submissions of the caller's form
		forms.GET("/:id/submissions", jwt, a.FormSubmissions)
	}

	return a, nil
}

func makeLogger(level string) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

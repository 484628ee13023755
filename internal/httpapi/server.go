// Package httpapi is the HTTP adapter: it translates requests into
// engine and service calls and maps their errors onto status codes.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Mbarathm345672005/docuflow/internal/auth"
	"github.com/Mbarathm345672005/docuflow/internal/export"
	"github.com/Mbarathm345672005/docuflow/internal/otp"
	"github.com/Mbarathm345672005/docuflow/internal/workflow"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers bundles the dependencies every handler needs
type Handlers struct {
	engine   *workflow.Engine
	auth     *auth.Service
	otp      *otp.Service
	register *export.Register
	logger   *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	engine *workflow.Engine,
	authSvc *auth.Service,
	otpSvc *otp.Service,
	register *export.Register,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		engine:   engine,
		auth:     authSvc,
		otp:      otpSvc,
		register: register,
		logger:   logger,
	}
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// StaticFilesDir, when non-empty, mounts /files onto the local
	// object store so document links resolve without a cloud bucket.
	StaticFilesDir string
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     *zap.Logger
}

// NewServer creates a new HTTP server wired to the given handlers
func NewServer(config ServerConfig, handlers *Handlers, logger *zap.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))
	router.Use(corsMiddleware())

	s := &Server{
		config:   config,
		router:   router,
		handlers: handlers,
		logger:   logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "docuflow",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	// OTP and credential endpoints live at the root, as the original
	// frontend expects.
	s.router.POST("/send-otp", h.SendOTP)
	s.router.POST("/verify-otp", h.VerifyOTP)
	s.router.POST("/admin-login", h.AdminLogin)
	s.router.POST("/reset-password", h.ResetPassword)
	s.router.POST("/upload", h.Upload)
	s.router.GET("/documents", h.ListByUploader)

	api := s.router.Group("/api")
	{
		api.POST("/signup", h.Signup)
		api.POST("/login", h.Login)
		api.GET("/documents", h.ListDocuments)
		api.GET("/documents/export", h.ExportDocuments)
		api.GET("/document", h.SearchByUploader)
		api.GET("/approved-documents", h.ListApproved)
		api.PUT("/approve/:id", h.Approve)
		api.PUT("/review", h.Review)
	}

	if s.config.StaticFilesDir != "" {
		s.router.Static("/files", s.config.StaticFilesDir)
	}
}

// Start runs the server until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

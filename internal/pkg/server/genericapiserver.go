package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/scrivener/pkg/logger"
)

// Config holds the configuration of the generic API server.
type Config struct {
	BindAddress     string
	BindPort        int
	Mode            string
	Healthz         bool
	EnableProfiling bool
}

// NewConfig returns a Config with sane defaults.
func NewConfig() *Config {
	return &Config{
		BindAddress: "0.0.0.0",
		BindPort:    8000,
		Mode:        gin.ReleaseMode,
		Healthz:     true,
	}
}

// CompletedConfig is a Config ready for New().
type CompletedConfig struct {
	*Config
}

// Complete fills in any fields not set that are required to have valid data.
func (c *Config) Complete() CompletedConfig {
	if c.Mode == "" {
		c.Mode = gin.ReleaseMode
	}
	return CompletedConfig{c}
}

// New builds a GenericAPIServer from the completed config.
func (c CompletedConfig) New() (*GenericAPIServer, error) {
	gin.SetMode(c.Mode)

	s := &GenericAPIServer{
		Engine:  gin.New(),
		address: fmt.Sprintf("%s:%d", c.BindAddress, c.BindPort),
	}

	if c.Healthz {
		s.Engine.GET("/healthz", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}
	if c.EnableProfiling {
		pprof.Register(s.Engine)
	}

	return s, nil
}

// GenericAPIServer wraps a gin engine with lifecycle management.
type GenericAPIServer struct {
	*gin.Engine
	address string
	server  *http.Server
}

// Run starts the HTTP server and blocks until it exits.
func (s *GenericAPIServer) Run() error {
	s.server = &http.Server{
		Addr:    s.address,
		Handler: s.Engine,
	}

	logger.Info("[Server] HTTP server listening on %s", s.address)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Close shuts the HTTP server down, allowing in-flight requests to finish.
func (s *GenericAPIServer) Close() {
	if s.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		logger.Warn("[Server] HTTP shutdown: %v", err)
	}
}

package server

import (
	"context"
	"io"
	"net/http"

	"github.com/mausarm/crypto-god/internal/game"
	"github.com/mausarm/crypto-god/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxActionBytes bounds a single action envelope; loadStateSuccess carries a whole state.
const maxActionBytes = 8 << 20

// HealthFunc reports whether a dependency such as the database is reachable.
type HealthFunc func(ctx context.Context) bool

type Server struct {
	engine *game.Engine
	logger *zap.Logger
	health HealthFunc
	hub    *Hub
}

func New(engine *game.Engine, health HealthFunc, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine: engine,
		logger: logger,
		health: health,
		hub:    NewHub(engine, logger),
	}
}

// Router builds the gin engine with all routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(Logger(s.logger))

	router.GET("/healthz", s.healthz)
	router.GET("/ws", s.hub.Serve)

	api := router.Group("/api")
	api.GET("/state", s.getState)
	api.POST("/actions", s.postAction)
	return router
}

func (s *Server) healthz(c *gin.Context) {
	if s.health != nil && !s.health(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.State())
}

// postAction dispatches one envelope and answers with the resulting state.
func (s *Server) postAction(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxActionBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	action, err := store.DecodeAction(body)
	if err != nil {
		s.logger.Warn("rejected action", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.engine.Dispatch(c.Request.Context(), action))
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"venue-collections/src/aggregator"
	"venue-collections/src/logger"
	"venue-collections/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

type APIServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine
	http   *http.Server

	// WebSocket clients, owned by the hub goroutine
	clients     map[*Client]struct{}
	connections atomic.Int64
	broadcast   chan *models.MLatestData
	register    chan *Client
	unregister  chan *Client
	resend      chan *Client
	done        chan struct{}
	stopOnce    sync.Once

	// Local cache
	latestState *models.MLatestData
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(cfg *models.MConfig, logger *logger.Logger) *APIServer {
	// Set Gin mode
	if !strings.EqualFold(cfg.LogLevel, "DEBUG") {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:  cfg,
		Logger:  logger,
		engine:  gin.New(),
		clients: make(map[*Client]struct{}),
		// Buffered so a run never waits on the hub
		broadcast:  make(chan *models.MLatestData, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		resend:     make(chan *Client),
		done:       make(chan struct{}),
		latestState: &models.MLatestData{
			Type:        "INITIAL",
			Collections: models.NewMCollections(),
		},
	}
	s.engine.Use(gin.Recovery())

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/metrics", s.getMetrics)
	api.GET("/collections", s.getCollections)
	api.GET("/singular", s.getSingular)
	api.GET("/failures", s.getFailures)
	// Catch-all: symbols such as BTC/USD contain slashes
	api.GET("/symbols/*symbol", s.getSymbol)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler exposes the router, mainly for tests.
func (s *APIServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start runs the hub and serves HTTP until Stop is called.
func (s *APIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	s.http = &http.Server{Addr: addr, Handler: s.engine}
	go s.RunHub()

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *APIServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)
		if s.http != nil {
			err = s.http.Shutdown(context.Background())
		}
	})
	return err
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) snapshot() *models.MLatestData {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return s.latestState
}

// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	state := s.snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connections":   s.connections.Load(),
		"latest_update": state.Timestamp,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshot().Metrics)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getCollections(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshot().Collections.Collections)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getSingular(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshot().Collections.SinglyAvailable)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getFailures(c *gin.Context) {
	failures := s.snapshot().Collections.Failures
	if failures == nil {
		failures = []models.MVenueFailure{}
	}
	c.JSON(http.StatusOK, failures)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getSymbol(c *gin.Context) {
	symbol := strings.TrimPrefix(c.Param("symbol"), "/")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}

	venues, err := aggregator.VenuesForSymbol(s.snapshot().Collections, symbol)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol": symbol,
		"venues": venues,
		"shared": len(venues) > 1,
	})
}

// Package server exposes the decision pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rustyeddy/marketmind/internal/logger"
	"github.com/rustyeddy/marketmind/journal"
	"github.com/rustyeddy/marketmind/market"
)

// ErrUnavailable is returned by a Backend for a query it cannot serve, such
// as fills when no queryable journal is configured.
var ErrUnavailable = errors.New("not available")

const defaultFillsLimit = 50

// Backend is what the HTTP handlers drive.
type Backend interface {
	Step(ctx context.Context, symbol string) (market.Decision, *market.Fill, error)
	Snapshot(symbol string) market.Snapshot
	ExportMetrics() map[string]float64
	Fills(symbol string, limit int) ([]journal.FillRecord, error)
}

// Config describes the server's dependencies.
type Config struct {
	Addr          string
	Backend       Backend
	Stream        http.Handler // websocket endpoint, optional
	DefaultSymbol string
}

type Server struct {
	addr    string
	router  *gin.Engine
	backend Backend
	symbol  string

	mu     sync.RWMutex
	latest map[string]market.Decision
}

func New(cfg Config) (*Server, error) {
	if cfg.Backend == nil {
		return nil, errors.New("server: backend is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if cfg.DefaultSymbol == "" {
		cfg.DefaultSymbol = "AAPL"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{
		addr:    cfg.Addr,
		router:  router,
		backend: cfg.Backend,
		symbol:  strings.ToUpper(cfg.DefaultSymbol),
		latest:  make(map[string]market.Decision),
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/decide", s.handleDecide)
	router.GET("/latest", s.handleLatest)
	router.GET("/telem", s.handleTelem)
	router.GET("/metrics", s.handleMetrics)
	router.GET("/fills", s.handleFills)
	if cfg.Stream != nil {
		router.GET("/ws", gin.WrapH(cfg.Stream))
	}
	return s, nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s",
			c.Request.Method, c.Request.URL.RequestURI(), c.Writer.Status(), c.ClientIP(), time.Since(start))
	}
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Addr() string { return s.addr }

func (s *Server) symbolParam(c *gin.Context) string {
	sym := strings.ToUpper(strings.TrimSpace(c.Query("symbol")))
	if sym == "" {
		return s.symbol
	}
	return sym
}

// Latest returns the last decision produced through /decide for symbol.
func (s *Server) Latest(symbol string) (market.Decision, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.latest[strings.ToUpper(symbol)]
	return d, ok
}

func (s *Server) handleDecide(c *gin.Context) {
	symbol := s.symbolParam(c)
	d, _, err := s.backend.Step(c.Request.Context(), symbol)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, market.ErrInsufficientData) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	s.latest[symbol] = d
	s.mu.Unlock()
	c.JSON(http.StatusOK, d)
}

func (s *Server) handleLatest(c *gin.Context) {
	d, ok := s.Latest(s.symbolParam(c))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No decision yet"})
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) handleTelem(c *gin.Context) {
	c.JSON(http.StatusOK, s.backend.Snapshot(s.symbolParam(c)))
}

func (s *Server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.backend.ExportMetrics())
}

func (s *Server) handleFills(c *gin.Context) {
	limit := defaultFillsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	var symbol string
	if c.Query("symbol") != "" {
		symbol = s.symbolParam(c)
	}
	fills, err := s.backend.Fills(symbol, limit)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	if fills == nil {
		fills = []journal.FillRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"fills": fills, "count": len(fills)})
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Infof("http server listening on %s", s.addr)

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

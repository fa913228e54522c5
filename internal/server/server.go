// Package server exposes the chatbot over HTTP for the browser widget.
package server

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kamusis/kbot/internal/bot"
	"github.com/kamusis/kbot/internal/history"
)

// Server serializes access to one Bot.
type Server struct {
	mu      sync.Mutex
	bot     *bot.Bot
	metrics http.Handler
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger. A nil logger keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a Server for b.
func New(b *bot.Bot, opts ...Option) *Server {
	s := &Server{bot: b, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetupRouter builds the gin engine with every route registered.
func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics))
	}

	api := r.Group("/api")
	api.POST("/messages", s.PostMessage)
	api.GET("/history", s.GetHistory)
	api.DELETE("/history", s.DeleteHistory)
	api.GET("/history/export", s.ExportHistory)
	api.GET("/knowledge/stats", s.KnowledgeStats)
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// maxBodyBytes bounds the POST /api/messages body. It leaves room for
// bot.MaxMessageRunes fully escaped characters.
const maxBodyBytes = 64 << 10

// MessageRequest is the body of POST /api/messages.
type MessageRequest struct {
	Message string `json:"message"`
}

// MessageResponse is the reply to POST /api/messages.
type MessageResponse struct {
	ID         string  `json:"id"`
	Reply      string  `json:"reply"`
	Kind       string  `json:"kind"`
	Confidence float64 `json:"confidence,omitempty"`
	Question   string  `json:"question,omitempty"`
}

func (s *Server) PostMessage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	s.mu.Lock()
	reply, err := s.bot.Respond(req.Message)
	s.mu.Unlock()
	if errors.Is(err, bot.ErrEmptyMessage) || errors.Is(err, bot.ErrMessageTooLong) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.logger.Error("cannot respond", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message"})
		return
	}

	resp := MessageResponse{ID: reply.ID, Reply: reply.Text, Kind: string(reply.Kind)}
	if reply.Match != nil {
		resp.Confidence = reply.Match.Confidence
		resp.Question = reply.Match.Entry.Question
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) store(c *gin.Context) *history.Store {
	st := s.bot.History()
	if st == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history is disabled"})
	}
	return st
}

func (s *Server) GetHistory(c *gin.Context) {
	st := s.store(c)
	if st == nil {
		return
	}
	msgs, err := st.Load()
	if err != nil {
		s.logger.Error("cannot load history", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": msgs})
}

func (s *Server) DeleteHistory(c *gin.Context) {
	st := s.store(c)
	if st == nil {
		return
	}
	if err := st.Clear(); err != nil {
		s.logger.Error("cannot clear history", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear history"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ExportHistory(c *gin.Context) {
	st := s.store(c)
	if st == nil {
		return
	}
	now := s.now()
	var buf bytes.Buffer
	if err := st.Export(&buf, now); err != nil {
		s.logger.Error("cannot export history", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export history"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", history.ExportFileName(now)))
	c.Data(http.StatusOK, "application/json", buf.Bytes())
}

// CategoryStats is one row of GET /api/knowledge/stats.
type CategoryStats struct {
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Sample string `json:"sample,omitempty"`
}

func (s *Server) KnowledgeStats(c *gin.Context) {
	kb := s.bot.Knowledge()
	stats := kb.Stats()
	out := make([]CategoryStats, 0, len(stats))
	for _, st := range stats {
		row := CategoryStats{Name: st.Name, Count: st.Count}
		if st.Sample != nil {
			row.Sample = st.Sample.Question
		}
		out = append(out, row)
	}
	c.JSON(http.StatusOK, gin.H{"total": kb.Len(), "categories": out})
}

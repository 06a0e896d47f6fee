// Package server exposes the engine over HTTP: a small JSON API to set up
// positions and drive analysis, and a websocket stream of live search events.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hynli/riverfish/internal/board"
	"github.com/hynli/riverfish/internal/engine"
	"github.com/hynli/riverfish/internal/search"
)

// Server wires the engine facade into an HTTP router. One engine means one
// analysis at a time; a second analyze request while one runs gets a 409.
type Server struct {
	eng *engine.Engine
	hub *Hub
	log zerolog.Logger
}

// New creates a server around the given engine and subscribes it to the
// engine's progress events.
func New(eng *engine.Engine, log zerolog.Logger) *Server {
	s := &Server{
		eng: eng,
		hub: NewHub(log),
		log: log,
	}

	eng.OnFullUpdate(func(up search.FullUpdate) {
		s.hub.Publish("update", fullUpdateDTO(up))
	})
	eng.OnBestMove(func(ev search.BestMoveEvent) {
		s.hub.Publish("bestmove", bestMoveDTO(ev))
	})

	return s
}

// Hub exposes the broadcast hub so the caller can run its pump.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Router builds the HTTP router.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/healthz", s.handleHealth)
	router.GET("/api/position", s.handleGetPosition)
	router.POST("/api/position", s.handleSetPosition)
	router.POST("/api/analyze", s.handleAnalyze)
	router.POST("/api/stop", s.handleStop)
	router.GET("/ws", func(c *gin.Context) {
		s.hub.serveWS(c.Writer, c.Request)
	})

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"state":  s.eng.State().String(),
	})
}

func (s *Server) handleGetPosition(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"fen":     s.eng.Fen(),
		"diagram": s.eng.Visualize(),
	})
}

type setPositionRequest struct {
	Fen   string   `json:"fen" binding:"required"`
	Moves []string `json:"moves"`
}

func (s *Server) handleSetPosition(c *gin.Context) {
	var req setPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.eng.SetPosition(req.Fen, req.Moves...); err != nil {
		c.JSON(statusForEngineError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"fen": s.eng.Fen()})
}

type analyzeRequest struct {
	Depth      int    `json:"depth"`
	MoveTimeMs int    `json:"movetime_ms"`
	Nodes      uint64 `json:"nodes"`
	Infinite   bool   `json:"infinite"`
	MultiPV    int    `json:"multipv"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limits := search.Limits{
		Depth:    req.Depth,
		Nodes:    req.Nodes,
		MoveTime: time.Duration(req.MoveTimeMs) * time.Millisecond,
		Infinite: req.Infinite,
		MultiPV:  req.MultiPV,
	}
	if limits.Depth == 0 && limits.Nodes == 0 && limits.MoveTime == 0 && !limits.Infinite {
		c.JSON(http.StatusBadRequest, gin.H{"error": "one of depth, nodes, movetime_ms or infinite is required"})
		return
	}

	if err := s.eng.Go(limits); err != nil {
		c.JSON(statusForEngineError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"state": s.eng.State().String()})
}

func (s *Server) handleStop(c *gin.Context) {
	s.eng.Stop()
	s.eng.WaitForSearchFinished()
	c.JSON(http.StatusOK, gin.H{
		"state":    s.eng.State().String(),
		"bestmove": s.eng.BestMove().String(),
	})
}

func statusForEngineError(err error) int {
	switch {
	case errors.Is(err, engine.ErrSearchAlreadyRunning):
		return http.StatusConflict
	case errors.Is(err, engine.ErrInvalidPosition),
		errors.Is(err, engine.ErrInvalidMoveText),
		errors.Is(err, engine.ErrIllegalMove):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// DTOs for the websocket stream.

type updateDTO struct {
	Depth    int      `json:"depth"`
	SelDepth int      `json:"seldepth"`
	MultiPV  int      `json:"multipv"`
	ScoreCp  int      `json:"score_cp"`
	Nodes    uint64   `json:"nodes"`
	TimeMs   int64    `json:"time_ms"`
	HashFull int      `json:"hashfull"`
	PV       []string `json:"pv"`
}

func fullUpdateDTO(up search.FullUpdate) updateDTO {
	pv := make([]string, len(up.PV))
	for i, m := range up.PV {
		pv[i] = m.String()
	}
	return updateDTO{
		Depth:    up.Depth,
		SelDepth: up.SelDepth,
		MultiPV:  up.MultiPV,
		ScoreCp:  up.Score,
		Nodes:    up.Nodes,
		TimeMs:   up.Elapsed.Milliseconds(),
		HashFull: up.HashFull,
		PV:       pv,
	}
}

type bestMoveResponse struct {
	BestMove   string `json:"bestmove"`
	PonderMove string `json:"ponder,omitempty"`
}

func bestMoveDTO(ev search.BestMoveEvent) bestMoveResponse {
	out := bestMoveResponse{BestMove: ev.BestMove.String()}
	if ev.PonderMove != board.NoMove {
		out.PonderMove = ev.PonderMove.String()
	}
	return out
}

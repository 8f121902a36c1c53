package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tinytelemetry/mockview/internal/model"
)

// Server provides an HTTP API over the practice service.
type Server struct {
	addr      string
	api       model.PracticeAPI
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, api model.PracticeAPI) *Server {
	if addr == "" {
		addr = "127.0.0.1:3000"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:   addr,
		api:    api,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/roles", s.handleRoles)
	api.POST("/interviews", s.handleStart)
	api.GET("/interviews/:id/current", s.handleCurrent)
	api.POST("/interviews/:id/answers", s.handleSubmit)
	api.GET("/interviews/:id/results", s.handleResults)
	api.GET("/candidates/:candidate/history", s.handleHistory)
	api.GET("/candidates/:candidate/dashboard", s.handleDashboard)
	api.GET("/candidates/:candidate/resume", s.handleResume)
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.routes(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.startTime = time.Now()

	go s.server.Serve(listener)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// statusFor maps model errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrUnknownRole):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotEnoughQuestions),
		errors.Is(err, model.ErrInterviewComplete),
		errors.Is(err, model.ErrNotComplete):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respond(c *gin.Context, status int, v any, err error) {
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(status, v)
}

// candidate reads the candidate from the query string; the service applies
// the default when it is empty.
func candidate(c *gin.Context) string {
	return c.Query("candidate")
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

func (s *Server) handleRoles(c *gin.Context) {
	roles, err := s.api.Roles()
	respond(c, http.StatusOK, roles, err)
}

func (s *Server) handleStart(c *gin.Context) {
	var req struct {
		Candidate string `json:"candidate"`
		Role      string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body or missing role field"})
		return
	}
	cur, err := s.api.Start(req.Candidate, req.Role)
	respond(c, http.StatusCreated, cur, err)
}

func (s *Server) handleCurrent(c *gin.Context) {
	cur, err := s.api.Current(c.Param("id"), candidate(c))
	respond(c, http.StatusOK, cur, err)
}

func (s *Server) handleSubmit(c *gin.Context) {
	var req struct {
		SubmissionID string `json:"submission_id"`
		Candidate    string `json:"candidate"`
		Answer       string `json:"answer"`
		Trigger      string `json:"trigger"`
		Skipped      bool   `json:"skipped"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	trigger := model.Trigger(req.Trigger)
	switch trigger {
	case "", model.TriggerManual, model.TriggerShortcut, model.TriggerSkip, model.TriggerExpiry:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown trigger " + req.Trigger})
		return
	}
	if req.Candidate == "" {
		req.Candidate = candidate(c)
	}
	res, err := s.api.Submit(model.Submission{
		ID:          req.SubmissionID,
		InterviewID: c.Param("id"),
		Candidate:   req.Candidate,
		Answer:      req.Answer,
		Trigger:     trigger,
		Skipped:     req.Skipped || trigger == model.TriggerSkip,
	})
	respond(c, http.StatusOK, res, err)
}

func (s *Server) handleResults(c *gin.Context) {
	res, err := s.api.Results(c.Param("id"), candidate(c))
	respond(c, http.StatusOK, res, err)
}

func (s *Server) handleHistory(c *gin.Context) {
	history, err := s.api.History(c.Param("candidate"))
	if history == nil {
		history = []model.InterviewSummary{}
	}
	respond(c, http.StatusOK, history, err)
}

func (s *Server) handleDashboard(c *gin.Context) {
	d, err := s.api.Dashboard(c.Param("candidate"))
	respond(c, http.StatusOK, d, err)
}

func (s *Server) handleResume(c *gin.Context) {
	cur, err := s.api.Resume(c.Param("candidate"))
	respond(c, http.StatusOK, cur, err)
}

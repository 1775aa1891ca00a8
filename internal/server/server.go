// Package server exposes the two-phase pipeline over HTTP: submit a
// URL, poll status, review the transcript, approve the analysis, and
// fetch the finished shorts.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/flock"

	"github.com/mgpai22/reelcut/internal/config"
	"github.com/mgpai22/reelcut/internal/job"
	"github.com/mgpai22/reelcut/internal/logging"
)

// Runner is the pipeline surface the handlers start work on.
type Runner interface {
	RunDownload(ctx context.Context, id string)
	RunAnalysis(ctx context.Context, id string)
}

type Server struct {
	cfg     config.Config
	store   job.Store
	pipe    Runner
	log     *logging.Logger
	baseCtx context.Context
}

func New(cfg config.Config, store job.Store, pipe Runner, log *logging.Logger) *Server {
	return &Server{
		cfg:     cfg,
		store:   store,
		pipe:    pipe,
		log:     log,
		baseCtx: context.Background(),
	}
}

// Router builds the API routes.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.POST("/process", s.handleProcess)
	api.GET("/status/:id", s.handleStatus)
	api.GET("/preview/:id", s.handlePreview)
	api.GET("/transcript/:id", s.handleTranscript)
	api.POST("/continue/:id", s.handleContinue)
	api.GET("/download/:id/:filename", s.handleDownload)

	return r
}

// Run serves the API until SIGINT/SIGTERM. A file lock on the work
// directory keeps two instances from fighting over the same downloads.
func (s *Server) Run() error {
	lockPath := filepath.Join(s.cfg.WorkDir, "reelcut.lock")
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another reelcut instance is already using %s", s.cfg.WorkDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.log.Warnf("Failed to release lock: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.baseCtx = ctx

	// previews stream whole source videos, so no write deadline
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Listening on %s", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		s.log.Infof("Received %s, shutting down", sig)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

type processRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleProcess(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide a YouTube URL."})
		return
	}

	url := strings.TrimSpace(req.URL)
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide a YouTube URL."})
		return
	}
	if !strings.Contains(url, "youtube.com") && !strings.Contains(url, "youtu.be") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide a valid YouTube URL."})
		return
	}

	j := s.store.Create(url)
	go s.pipe.RunDownload(s.baseCtx, j.ID)

	c.JSON(http.StatusOK, gin.H{"job_id": j.ID})
}

func (s *Server) handleStatus(c *gin.Context) {
	j, ok := s.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found."})
		return
	}

	clips := j.Clips
	if clips == nil {
		clips = []job.Clip{}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      j.Status,
		"progress":    j.Progress,
		"message":     j.Message,
		"video_title": j.VideoTitle,
		"duration":    j.Duration,
		"clips":       clips,
	})
}

func (s *Server) handlePreview(c *gin.Context) {
	j, ok := s.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found."})
		return
	}

	if j.VideoPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video file not found."})
		return
	}
	if _, err := os.Stat(j.VideoPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video file not found."})
		return
	}

	c.File(j.VideoPath)
}

func (s *Server) handleTranscript(c *gin.Context) {
	j, ok := s.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found."})
		return
	}

	segments := make([]gin.H, 0, len(j.Segments))
	for _, seg := range j.Segments {
		segments = append(segments, gin.H{
			"start": seg.Start,
			"end":   seg.End,
			"text":  seg.Text,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"segments": segments,
		"total":    len(segments),
	})
}

func (s *Server) handleContinue(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.store.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found."})
		return
	}

	// flip out of review under the store lock so a double click
	// cannot start the analysis twice
	started := false
	s.store.Update(id, func(j *job.Job) {
		if j.Status != job.StatusReview {
			return
		}
		j.Status = job.StatusAnalyzing
		j.Progress = 50
		j.Message = "Starting AI analysis..."
		started = true
	})
	if !started {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job is not in review stage."})
		return
	}

	go s.pipe.RunAnalysis(s.baseCtx, id)

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleDownload(c *gin.Context) {
	id := filepath.Base(c.Param("id"))
	filename := filepath.Base(c.Param("filename"))

	dir := filepath.Join(s.cfg.OutputsDir(), id)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found."})
		return
	}

	path := filepath.Join(dir, filename)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found."})
		return
	}

	c.FileAttachment(path, filename)
}

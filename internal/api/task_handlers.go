package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/frontier-crawler/internal/crawler"
)

type createTaskRequest struct {
	Name            string   `json:"name"`
	StartURL        string   `json:"start_url"`
	Strategy        string   `json:"strategy"`
	MaxDepth        int      `json:"max_depth"`
	MaxPages        int      `json:"max_pages"`
	IntervalSeconds float64  `json:"request_interval_seconds"`
	AllowDomains    []string `json:"allow_domains"`
	PriorityDomains []string `json:"priority_domains"`
	Blacklist       []string `json:"blacklist"`
}

type addURLRequest struct {
	URL      string `json:"url"`
	Depth    int    `json:"depth"`
	Priority int    `json:"priority"`
}

type updateConfigRequest struct {
	IntervalSeconds *float64 `json:"request_interval_seconds"`
	MaxDepth        *int     `json:"max_depth"`
	MaxPages        *int     `json:"max_pages"`
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Strategy == "" {
		req.Strategy = string(crawler.StrategyBFS)
	}
	interval := time.Duration(req.IntervalSeconds * float64(time.Second))
	cfg, err := crawler.NewCrawlConfig(
		req.StartURL,
		crawler.Strategy(req.Strategy),
		req.MaxDepth,
		req.MaxPages,
		interval,
		req.AllowDomains,
		req.PriorityDomains,
		req.Blacklist,
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	taskID, err := s.orch.CreateTask(r.Context(), cfg, req.Name)
	if err != nil {
		s.logger.Error("create task failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"task_id": taskID})
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.orch.Tasks(r.Context())
	if err != nil {
		s.logger.Error("list tasks failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (s *Server) startTask(w http.ResponseWriter, r *http.Request) {
	s.control(w, r, "start", s.orch.StartTask)
}

func (s *Server) pauseTask(w http.ResponseWriter, r *http.Request) {
	s.control(w, r, "pause", s.orch.PauseTask)
}

func (s *Server) resumeTask(w http.ResponseWriter, r *http.Request) {
	s.control(w, r, "resume", s.orch.ResumeTask)
}

func (s *Server) stopTask(w http.ResponseWriter, r *http.Request) {
	s.control(w, r, "stop", s.orch.StopTask)
}

// control runs a lifecycle operation and replies with the resulting snapshot.
func (s *Server) control(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	op func(ctx context.Context, taskID string) error,
) {
	taskID := chi.URLParam(r, "task_id")
	if err := op(r.Context(), taskID); err != nil {
		s.taskError(w, taskID, action, err)
		return
	}
	snap, err := s.orch.TaskStatus(taskID)
	if err != nil {
		s.taskError(w, taskID, action, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"task_id": taskID,
		"status":  snap.Status,
	})
}

func (s *Server) addURL(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	var req addURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	if err := s.orch.AddURL(taskID, req.URL, req.Depth, req.Priority); err != nil {
		s.taskError(w, taskID, "add url", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": taskID, "url": req.URL})
}

func (s *Server) updateConfig(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	var req updateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	var interval *time.Duration
	if req.IntervalSeconds != nil {
		d := time.Duration(*req.IntervalSeconds * float64(time.Second))
		interval = &d
	}
	if err := s.orch.UpdateConfig(r.Context(), taskID, interval, req.MaxDepth, req.MaxPages); err != nil {
		s.taskError(w, taskID, "update config", err)
		return
	}
	snap, err := s.orch.TaskStatus(taskID)
	if err != nil {
		s.taskError(w, taskID, "update config", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) taskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	snap, err := s.orch.TaskStatus(taskID)
	if err != nil {
		s.taskError(w, taskID, "status", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// taskEvents returns the retained progress window for a task. It exists only
// when a history sink was wired at construction.
func (s *Server) taskEvents(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	if _, err := s.orch.TaskStatus(taskID); err != nil {
		s.taskError(w, taskID, "events", err)
		return
	}
	if s.history == nil {
		writeError(w, http.StatusNotFound, "event history disabled")
		return
	}
	events := s.history.Events(taskID)
	writeJSON(w, http.StatusOK, map[string]any{
		"task_id": taskID,
		"count":   len(events),
		"events":  events,
	})
}

func (s *Server) taskResults(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	results, err := s.orch.TaskResults(r.Context(), taskID)
	if err != nil {
		s.taskError(w, taskID, "results", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"task_id": taskID,
		"count":   len(results),
		"results": results,
	})
}

// exportResults serves the same payload as taskResults but as a download.
func (s *Server) exportResults(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	results, err := s.orch.TaskResults(r.Context(), taskID)
	if err != nil {
		s.taskError(w, taskID, "export", err)
		return
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "crawl-results-"+taskID+".json"))
	writeJSON(w, http.StatusOK, map[string]any{
		"task_id":     taskID,
		"exported_at": time.Now().UTC(),
		"count":       len(results),
		"results":     results,
	})
}

// taskError maps core sentinel errors onto HTTP statuses.
func (s *Server) taskError(w http.ResponseWriter, taskID, action string, err error) {
	switch {
	case errors.Is(err, crawler.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "task not found")
	case errors.Is(err, crawler.ErrTaskConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, crawler.ErrInvalidStrategy), errors.Is(err, crawler.ErrMissingStartURL):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("task operation failed",
			zap.String("task_id", taskID), zap.String("action", action), zap.Error(err))
		writeError(w, http.StatusInternalServerError, action+" failed")
	}
}

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/movabench/ukreval/internal/results"
)

const (
	maxLeaderboardLimit = 100
	maxCompareModels    = 4
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListModels(c *gin.Context) {
	models, err := results.ListModels(s.outputPath)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if models == nil {
		models = []string{}
	}
	c.JSON(http.StatusOK, models)
}

func (s *Server) handleGetResults(c *gin.Context) {
	modelDir := results.ModelDir(c.Param("model"))
	if modelDir == "" {
		respondError(c, http.StatusBadRequest, errors.New("model is required"))
		return
	}

	run, err := results.Latest(s.outputPath, modelDir)
	if err != nil {
		if errors.Is(err, results.ErrNoResults) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) handleGetResultsHistory(c *gin.Context) {
	modelDir := results.ModelDir(c.Param("model"))
	if modelDir == "" {
		respondError(c, http.StatusBadRequest, errors.New("model is required"))
		return
	}

	history, err := results.History(s.outputPath, modelDir)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if len(history) == 0 {
		respondError(c, http.StatusNotFound, errors.New("no results for model "+modelDir))
		return
	}
	c.JSON(http.StatusOK, history)
}

func (s *Server) handleGetLeaderboard(c *gin.Context) {
	if s == nil || s.lbStore == nil {
		respondError(c, http.StatusInternalServerError, errors.New("leaderboard store not configured"))
		return
	}

	limit, err := parseLimitParam(c.Query("limit"), 20)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	if task := strings.TrimSpace(c.Query("task")); task != "" {
		entries, err := s.lbStore.Top(c.Request.Context(), task, limit)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, entries)
		return
	}

	standings, err := s.lbStore.Overall(c.Request.Context(), limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, standings)
}

func (s *Server) handleGetModelHistory(c *gin.Context) {
	if s == nil || s.lbStore == nil {
		respondError(c, http.StatusInternalServerError, errors.New("leaderboard store not configured"))
		return
	}

	model := strings.TrimSpace(c.Query("model"))
	task := strings.TrimSpace(c.Query("task"))
	if model == "" || task == "" {
		respondError(c, http.StatusBadRequest, errors.New("model and task are required"))
		return
	}

	entries, err := s.lbStore.ModelHistory(c.Request.Context(), model, task)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleCompareModels(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("models"))
	if raw == "" {
		respondError(c, http.StatusBadRequest, errors.New("models is required"))
		return
	}

	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	if len(names) < 2 {
		respondError(c, http.StatusBadRequest, errors.New("at least two models are required"))
		return
	}
	if len(names) > maxCompareModels {
		respondError(c, http.StatusBadRequest, errors.New("too many models to compare"))
		return
	}

	out := make(map[string]*results.RunResult, len(names))
	for _, name := range names {
		run, err := results.Latest(s.outputPath, results.ModelDir(name))
		if err != nil {
			if errors.Is(err, results.ErrNoResults) {
				respondError(c, http.StatusNotFound, err)
				return
			}
			respondError(c, http.StatusInternalServerError, err)
			return
		}
		out[name] = run
	}
	c.JSON(http.StatusOK, out)
}

func parseLimitParam(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid limit")
	}
	if n > maxLeaderboardLimit {
		n = maxLeaderboardLimit
	}
	return n, nil
}

func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		c.Status(status)
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

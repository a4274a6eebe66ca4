package api

import (
	"os"
	"strings"
)

func (s *Server) registerRoutes() {
	if s == nil || s.router == nil {
		return
	}

	api := s.router.Group("/api")
	if apiKey := strings.TrimSpace(os.Getenv("UKREVAL_API_KEY")); apiKey != "" {
		api.Use(apiKeyAuthMiddleware(apiKey))
	}

	api.GET("/health", s.handleHealth)

	api.GET("/models", s.handleListModels)
	api.GET("/results/:model", s.handleGetResults)
	api.GET("/results/:model/history", s.handleGetResultsHistory)

	api.GET("/leaderboard", s.handleGetLeaderboard)
	api.GET("/leaderboard/history", s.handleGetModelHistory)

	api.GET("/compare", s.handleCompareModels)
}

package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/movabench/ukreval/internal/leaderboard"
)

// Server exposes evaluation results and the leaderboard over HTTP and
// serves the dashboard UI.
type Server struct {
	router     *gin.Engine
	outputPath string
	lbStore    *leaderboard.Store
}

func NewServer(outputPath string, lbStore *leaderboard.Store) (*Server, error) {
	outputPath = strings.TrimSpace(outputPath)
	if outputPath == "" {
		return nil, errors.New("api: empty output path")
	}

	r := gin.New()
	s := &Server{
		router:     r,
		outputPath: outputPath,
		lbStore:    lbStore,
	}
	s.registerMiddleware()
	s.registerRoutes()
	s.registerStatic()
	return s, nil
}

func (s *Server) Run(addr string) error {
	if s == nil || s.router == nil {
		return errors.New("api: nil server")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = ":8080"
	}
	return s.router.Run(addr)
}

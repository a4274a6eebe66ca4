package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

const staticRoot = "web/static"

// registerStatic installs the dashboard fallback. API routes are
// registered explicitly, so anything unmatched is either a static
// asset or a client-side route that resolves to index.html.
func (s *Server) registerStatic() {
	if s == nil || s.router == nil {
		return
	}
	s.router.NoRoute(serveDashboard)
}

func serveDashboard(c *gin.Context) {
	path := c.Request.URL.Path

	// Unknown API paths stay JSON.
	if path == "/api" || strings.HasPrefix(path, "/api/") {
		respondError(c, http.StatusNotFound, errors.New("not found"))
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		respondError(c, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	root, err := filepath.Abs(staticRoot)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	if asset, ok := resolveAsset(root, path); ok {
		c.File(asset)
		return
	}
	c.File(filepath.Join(root, "index.html"))
}

// resolveAsset maps a URL path to an existing file under root,
// rejecting anything that escapes it.
func resolveAsset(root, urlPath string) (string, bool) {
	rel := strings.TrimPrefix(urlPath, "/")
	if rel == "" {
		return "", false
	}

	full, err := filepath.Abs(filepath.Join(root, filepath.Clean(rel)))
	if err != nil {
		return "", false
	}
	if full != root && !strings.HasPrefix(full, root+string(os.PathSeparator)) {
		return "", false
	}

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", false
	}
	return full, true
}

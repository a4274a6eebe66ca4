package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) registerMiddleware() {
	if s == nil || s.router == nil {
		return
	}
	s.router.Use(gin.Logger(), gin.Recovery(), corsMiddleware())
}

// originPolicy decides which Origin values the dashboard accepts,
// parsed once from UKREVAL_CORS_ORIGINS at startup.
type originPolicy struct {
	allowAll bool
	origins  map[string]struct{}
}

func parseOriginPolicy(raw string) *originPolicy {
	p := &originPolicy{origins: make(map[string]struct{})}
	for _, part := range strings.Split(raw, ",") {
		origin := strings.TrimSpace(part)
		switch origin {
		case "":
		case "*":
			p.allowAll = true
		default:
			p.origins[origin] = struct{}{}
		}
	}
	return p
}

func (p *originPolicy) empty() bool {
	return !p.allowAll && len(p.origins) == 0
}

// allowed reports whether the origin passes and the header value to
// echo back when it does.
func (p *originPolicy) allowed(origin string) (string, bool) {
	if p.allowAll {
		return "*", true
	}
	if _, ok := p.origins[origin]; ok {
		return origin, true
	}
	return "", false
}

func corsMiddleware() gin.HandlerFunc {
	policy := parseOriginPolicy(os.Getenv("UKREVAL_CORS_ORIGINS"))
	if policy.empty() {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		origin := strings.TrimSpace(c.GetHeader("Origin"))
		if origin == "" {
			c.Next()
			return
		}

		if value, ok := policy.allowed(origin); ok {
			c.Header("Access-Control-Allow-Origin", value)
			if !policy.allowAll {
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Methods", "GET,OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// apiKeyAuthMiddleware guards the API group when a key is configured.
// Preflight requests pass so browsers can complete CORS negotiation.
func apiKeyAuthMiddleware(expected string) gin.HandlerFunc {
	expected = strings.TrimSpace(expected)
	if expected == "" {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if strings.TrimSpace(c.GetHeader("X-API-Key")) != expected {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

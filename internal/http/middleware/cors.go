package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var defaultOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

// CORS allows the configured browser origins. A "*" entry opens the API to
// any origin and turns credentials off, since browsers refuse both together.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Requested-With", headerRequestID, headerTraceID},
		ExposeHeaders: []string{headerRequestID, headerTraceID},
		MaxAge:        12 * time.Hour,
	}
	allowed := normalizeOrigins(origins)
	switch {
	case len(allowed) == 0:
		cfg.AllowOrigins = defaultOrigins
		cfg.AllowCredentials = true
	case allowed[0] == "*":
		cfg.AllowAllOrigins = true
	default:
		cfg.AllowOrigins = allowed
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// normalizeOrigins trims, drops trailing slashes and duplicates. A wildcard
// anywhere collapses the list to "*".
func normalizeOrigins(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, o := range in {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || seen[o] {
			continue
		}
		if o == "*" {
			return []string{"*"}
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}

package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const corsMaxAge = 12 * time.Hour

// CORS allows browser calls from the listed origins. "*" anywhere in the
// list allows every origin and is answered with a literal "*". Preflights
// from other origins are rejected with 403.
//
// Origins must be "*" or start with http:// or https://; cors.New panics
// otherwise, so config validation enforces the same rule.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodHead, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type", "Origin"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        corsMaxAge,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowOrigins = nil
			break
		}
		cfg.AllowOrigins = append(cfg.AllowOrigins, strings.TrimSuffix(o, "/"))
	}
	return cors.New(cfg)
}

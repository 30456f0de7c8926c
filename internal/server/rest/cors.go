package rest

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowedMethods = "GET, POST, PUT, DELETE, PATCH, OPTIONS"
	corsAllowedHeaders = "Origin, X-Requested-With, Content, Accept, Content-Type, Authorization"
)

// cors echoes explicitly listed origins back with credentials enabled. A "*"
// entry admits any other origin with a literal wildcard and no credentials.
// Preflight requests are answered with 204.
func cors(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("Access-Control-Allow-Methods", corsAllowedMethods)
		header.Set("Access-Control-Allow-Headers", corsAllowedHeaders)

		if origin := c.GetHeader("Origin"); origin != "" {
			header.Set("Vary", "Origin")
			switch {
			case originListed(origin, allowed):
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Credentials", "true")
			case slices.Contains(allowed, "*"):
				header.Set("Access-Control-Allow-Origin", "*")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func originListed(origin string, allowed []string) bool {
	for _, candidate := range allowed {
		if candidate != "*" && strings.EqualFold(candidate, origin) {
			return true
		}
	}
	return false
}

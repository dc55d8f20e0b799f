package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS reflects the request origin back when it is on the allow list and
// answers preflights with 204. Origins not on the list get no CORS headers
// at all, so the browser blocks them.
func CORS(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))

	for _, o := range origins {
		allowed[o] = true
	}

	return func(ctx *gin.Context) {
		if origin := ctx.GetHeader("Origin"); allowed[origin] {
			ctx.Header("Vary", "Origin")
			ctx.Header("Access-Control-Allow-Origin", origin)
			ctx.Header("Access-Control-Allow-Credentials", "true")
			ctx.Header("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			ctx.Header("Access-Control-Allow-Headers", "Authorization,Content-Type")
		}

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}

		ctx.Next()
	}
}

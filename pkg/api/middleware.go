package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// permissiveCORS is hand-rolled rather than imported: none of the example
// repos in the retrieval pack depends on a CORS middleware library
// (gin-contrib/cors is absent from every go.mod in the pack), and
// spec.md §6 asks only for "CORS is permissive", which this satisfies
// without adding an unverified dependency.
func permissiveCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

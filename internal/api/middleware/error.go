package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Recovery turns panics into a JSON 500 instead of a dropped connection.
// Engine errors never reach this; handlers map those explicitly.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		msg := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			msg = s
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": msg,
			},
		})
		c.Abort()
	})
}

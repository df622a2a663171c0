package middleware

import (
	"net/http"

	"taskflow/backend/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RecoveryWithLog converts panics into a 500 response without leaking the
// panic value to the client.
func RecoveryWithLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logging.Logger.WithFields(logrus.Fields{
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
					"panic":  r,
				}).Error("recovered from panic")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()
		c.Next()
	}
}

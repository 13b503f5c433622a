package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const headerRequestID = "X-Request-Id"

// CustomCors allows the app origin plus local development hosts.
func CustomCors(isDevelopment bool) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AddAllowHeaders("Authorization")
	if isDevelopment {
		corsConfig.AllowOrigins = []string{
			"http://localhost:8080", "http://localhost:3000"}
	} else {
		corsConfig.AllowAllOrigins = true
	}

	return cors.New(corsConfig)
}

// RequestIdGenerator attaches a request id when the client did not send
// one.
func RequestIdGenerator() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Request.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set(headerRequestID, requestID)
		c.Next()
	}
}

// Logger logs one line per request with latency and status.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()

		log.WithFields(log.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(startTime).Milliseconds(),
			"request_id": c.GetString("request_id"),
		}).Info("Request processed.")
	}
}

// Recovery converts panics into 500 responses instead of crashing the
// process.
func Recovery() gin.HandlerFunc {
	return gin.Recovery()
}

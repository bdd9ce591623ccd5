package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	C "pulse/config"
	U "pulse/util"

	"github.com/getsentry/sentry-go"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	SCOPE_REQ_ID = "requestId"

	HEADER_REQUEST_ID = "X-Request-Id"
)

// CustomCors allows any origin to call the ingestion endpoints. Vendor
// webhooks and the dashboard send their key in the listed headers.
func CustomCors() gin.HandlerFunc {
	return func(c *gin.Context) {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
		corsConfig.AddAllowHeaders("Authorization", "X-Client-Info", "Apikey", "Content-Type")
		cors.New(corsConfig)(c)
		c.Next()
	}
}

// RequestIdGenerator reuses the caller's request id or generates one.
func RequestIdGenerator() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Request.Header.Get(HEADER_REQUEST_ID)
		if requestID == "" {
			requestID = U.GetUUID()
		}

		U.SetScope(c, SCOPE_REQ_ID, requestID)
		c.Writer.Header().Set(HEADER_REQUEST_ID, requestID)
		c.Next()
	}
}

// Logger logs one line per request after the handlers ran.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		path := c.Request.URL.Path
		c.Next()

		logCtx := log.WithFields(log.Fields{
			"req_id":     U.GetScopeByKeyAsString(c, SCOPE_REQ_ID),
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(startTime).Milliseconds(),
			"client_ip":  c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			logCtx = logCtx.WithField("errors", c.Errors.String())
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			logCtx.Error("Request failed.")
			return
		}
		logCtx.Info("Request served.")
	}
}

// Recovery turns a panic in a handler into a 500 and reports it.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			log.WithFields(log.Fields{
				"req_id": U.GetScopeByKeyAsString(c, SCOPE_REQ_ID),
				"path":   c.Request.URL.Path,
				"panic":  fmt.Sprintf("%v", recovered),
				"stack":  string(debug.Stack()),
			}).Error("Recovered from panic.")

			if C.IsSentryEnabled() {
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetTag("req_id", U.GetScopeByKeyAsString(c, SCOPE_REQ_ID))
				hub.Scope().SetRequest(c.Request)
				hub.Recover(recovered)
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"error": "Internal server error"})
		}()
		c.Next()
	}
}

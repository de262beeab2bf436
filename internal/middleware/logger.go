package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"equiherds/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs every request with latency and recovers from panics.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				log.WithFields(requestFields(c, start)).
					WithField("stack", string(debug.Stack())).
					Errorf("panic recovered: %v", recovered)
				response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal Server Error")
				c.Abort()
				return
			}
		}()

		c.Next()

		fields := requestFields(c, start)
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.WithFields(fields).Error(errorSummary(c))
		case len(c.Errors) > 0:
			log.WithFields(fields).Warn(errorSummary(c))
		default:
			log.WithFields(fields).Info("request")
		}
	}
}

func requestFields(c *gin.Context, start time.Time) logrus.Fields {
	return logrus.Fields{
		"status":    c.Writer.Status(),
		"method":    c.Request.Method,
		"path":      c.Request.URL.Path,
		"client_ip": c.ClientIP(),
		"user_id":   c.GetInt64("user_id"),
		"role":      c.GetString("role"),
		"latency":   time.Since(start).String(),
	}
}

func errorSummary(c *gin.Context) string {
	if len(c.Errors) == 0 {
		return fmt.Sprintf("status=%d", c.Writer.Status())
	}
	return c.Errors.String()
}

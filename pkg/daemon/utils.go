package daemon

import (
	"fmt"
	"math"
	"net/http"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pterodyne/linux-userspace-battery/pkg/sysfs"
)

// ginLogger routes gin request logging through logrus.
func ginLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// other handler can change c.Path so:
		path := c.Request.URL.Path
		start := time.Now()
		c.Next()
		stop := time.Since(start)
		latency := int(math.Ceil(float64(stop.Nanoseconds()) / 1000000.0))
		statusCode := c.Writer.Status()
		dataLength := c.Writer.Size()
		if dataLength < 0 {
			dataLength = 0
		}

		entry := logger.WithFields(logrus.Fields{
			"statusCode": statusCode,
			"latency":    latency, // time to process
			"method":     c.Request.Method,
			"path":       path,
			"dataLength": dataLength,
		})

		if len(c.Errors) > 0 {
			entry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
		} else {
			msg := fmt.Sprintf("%s %s %d (%dms)", c.Request.Method, path, statusCode, latency)
			//nolint:gocritic
			if statusCode >= http.StatusInternalServerError {
				entry.Error(msg)
			} else if statusCode >= http.StatusBadRequest {
				entry.Warn(msg)
			} else {
				entry.Debug(msg)
			}
		}
	}
}

// httpStatusForErrno maps the attribute errno convention onto HTTP status
// codes.
func httpStatusForErrno(errno syscall.Errno) int {
	switch errno {
	case syscall.ENODEV:
		return http.StatusServiceUnavailable
	case syscall.EINVAL:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// readAttrFor returns the readable attribute that reflects a write
// attribute's effect.
func readAttrFor(writeAttr string) string {
	switch writeAttr {
	case sysfs.AttrSetVoltage:
		return sysfs.AttrVoltageNow
	case sysfs.AttrSetCapacity:
		return sysfs.AttrCapacity
	case sysfs.AttrSetStatus:
		return sysfs.AttrStatus
	default:
		return writeAttr
	}
}

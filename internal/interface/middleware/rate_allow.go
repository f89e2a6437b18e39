package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses the limiter for loopback and private network clients
// (10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16), e.g. the metrics scraper. The address
// is the one gin resolves, so a spoofed X-Forwarded-For from an untrusted peer is ignored.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(clientIP(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

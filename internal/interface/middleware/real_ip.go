package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIPKey is the context key holding the resolved client address.
const RealIPKey = "real_ip"

// TrustProxies configures which peers may set forwarding headers. With no proxies
// and no platform, X-Forwarded-For and friends are ignored and the socket peer wins.
// platform accepts "cloudflare", "google" or a raw header name.
func TrustProxies(engine *gin.Engine, proxies []string, platform string) error {
	if err := engine.SetTrustedProxies(proxies); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "":
		engine.TrustedPlatform = ""
	case "cloudflare":
		engine.TrustedPlatform = gin.PlatformCloudflare
	case "google", "appengine":
		engine.TrustedPlatform = gin.PlatformGoogleAppEngine
	default:
		engine.TrustedPlatform = strings.TrimSpace(platform)
	}
	return nil
}

// RealIP stores the client address under RealIPKey for loggers and handlers.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(RealIPKey, clientIP(c))
		c.Next()
	}
}

// clientIP defers to gin, which only reads forwarding headers from trusted peers.
func clientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if parsed := net.ParseIP(ip); parsed != nil {
		return parsed.String()
	}
	if ip == "" {
		return "unknown"
	}
	return ip
}

package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-user-registration/internal/interface/middleware"
)

type MetricsModule struct {
	Gatherer prometheus.Gatherer
	Redis    *redis.Client
}

func NewMetricsModule(g prometheus.Gatherer, rdb *redis.Client) *MetricsModule {
	return &MetricsModule{Gatherer: g, Redis: rdb}
}

func (m *MetricsModule) Register(rg *gin.RouterGroup) {
	// Public metrics endpoint, rate-limited per IP; private networks (scrapers) bypass
	rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/metrics", rl, gin.WrapH(promhttp.HandlerFor(m.Gatherer, promhttp.HandlerOpts{})))
}

package router

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-user-registration/internal/interface/http"
	"github.com/oksasatya/go-user-registration/internal/router/modules"
)

// Deps carries everything the HTTP modules need. Built once in main.
type Deps struct {
	Users             *handlers.UserHandler
	Redis             *redis.Client
	RegisterRateLimit int
	// Gatherer is nil when metrics are disabled
	Gatherer prometheus.Gatherer
}

// InitModules registers all application modules with the router registry.
// This function should be called once during application startup.
func InitModules(r *Registry, d Deps) {
	r.Add(modules.NewUserModule(d.Users, d.Redis, d.RegisterRateLimit))
	if d.Gatherer != nil {
		r.Add(modules.NewMetricsModule(d.Gatherer, d.Redis))
	}
}

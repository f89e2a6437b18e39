package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-user-registration/internal/interface/http"
	"github.com/oksasatya/go-user-registration/internal/interface/middleware"
)

// UserModule wires user HTTP handlers into routes
// Public: POST /api/users, GET /api/users/get-user-by-id/:id
// All routes are registered under the given RouterGroup (usually /api)
type UserModule struct {
	Handler       *handlers.UserHandler
	Redis         *redis.Client // nil disables rate limiting
	RegisterLimit int           // registrations per IP per minute
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client, registerLimit int) *UserModule {
	return &UserModule{Handler: h, Redis: rdb, RegisterLimit: registerLimit}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.Redis, m.RegisterLimit, time.Minute, middleware.KeyByIPAndPath(), nil)

	users := rg.Group("/users")
	users.POST("", registerLimiter, m.Handler.Register)
	users.GET("/get-user-by-id/:id", m.Handler.GetByID)
}

package httpapi

import (
	"context"
	"math/rand/v2"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/staffing-platform/referral-matcher/internal/config"
	"github.com/staffing-platform/referral-matcher/pkg/core/model"
	"github.com/staffing-platform/referral-matcher/pkg/core/services"
)

// Store is everything the matching endpoints read and write
type Store interface {
	services.FindMatchesStore
	ListMatchesByRequest(ctx context.Context, requestID string) ([]model.Match, error)
}

// Pinger reports whether a backing dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps carries the dependencies of every handler
type RouterDeps struct {
	Store  Store
	Health Pinger
	Clock  services.Clock

	// NewRand returns a random source for one request; *rand.Rand is not safe for concurrent use
	NewRand func() *rand.Rand

	Config *config.Config
	Logger *zap.Logger
}

// NewRouter builds the gin engine serving the matching API
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog(deps.Logger))
	r.Use(ErrorHandler(deps.Logger))

	r.GET("/healthz", func(c *gin.Context) {
		if deps.Health != nil {
			if err := deps.Health.Ping(c.Request.Context()); err != nil {
				deps.Logger.Warn("Health check failed", zap.Error(err))
				Error(c, http.StatusServiceUnavailable, "Database unreachable", nil)
				return
			}
		}
		Success(c, http.StatusOK, "ok", nil)
	})

	v1 := r.Group("/api/v1")
	NewMatchHandler(v1, deps)

	return r
}

package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"flickhub/internal/core/server"
	mdw "flickhub/internal/transport/http/middleware"
)

type Options struct {
	CORSOrigins    []string
	MaxInFlight    int64
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

// NewAPIEngine builds the public engine: middleware chain, /metrics, and every module under /api.
func NewAPIEngine(l *zap.Logger, opt Options, mods ...APIModule) *gin.Engine {
	r := server.NewRouter(l, opt.CORSOrigins)

	r.Use(
		mdw.RequestID(),
		mdw.ConcurrencyLimit(opt.MaxInFlight),
		mdw.MaxBodyBytes(opt.MaxBodyBytes),
		mdw.Timeout(opt.RequestTimeout),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	r.GET("/metrics", gin.WrapH(mdw.MetricsHandler()))

	var reg Registry
	reg.Register(mods...)
	reg.MountAll(r.Group("/api"))

	return r
}

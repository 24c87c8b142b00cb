package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"flickhub/internal/core/apperr"
	httpez "flickhub/internal/transport/http/ez"
)

// ReadyFunc reports whether backing services are reachable.
type ReadyFunc func(ctx context.Context) error

type SystemHandler struct {
	ready ReadyFunc
	log   *zap.Logger
}

func NewSystemHandler(ready ReadyFunc, log *zap.Logger) *SystemHandler {
	return &SystemHandler{ready: ready, log: log}
}

type statusOut struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (h *SystemHandler) MountAPI(api *gin.RouterGroup) {
	ez := httpez.New(api, h.log)

	httpez.RegisterAction(ez, httpez.Action[struct{}, statusOut]{
		Method: http.MethodGet,
		Path:   "/health",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (statusOut, error) {
			return statusOut{Status: "ok", Message: "FlickHub server is running"}, nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, statusOut]{
		Method: http.MethodGet,
		Path:   "/ready",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (statusOut, error) {
			if h.ready != nil {
				if err := h.ready(c.Request.Context()); err != nil {
					return statusOut{}, apperr.Unavailable("Database unavailable", err)
				}
			}
			return statusOut{Status: "ready"}, nil
		},
	})
}

func (h *SystemHandler) Priority() int { return 0 }

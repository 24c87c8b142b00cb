package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"flickhub/internal/catalog"
	httpez "flickhub/internal/transport/http/ez"
)

type CatalogFetcher interface {
	Fetch(ctx context.Context, category catalog.Category) ([]byte, error)
}

type CatalogHandler struct {
	catalog CatalogFetcher
	log     *zap.Logger
}

func NewCatalogHandler(f CatalogFetcher, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: f, log: log}
}

func (h *CatalogHandler) MountAPI(api *gin.RouterGroup) {
	ez := httpez.New(api.Group("/tmdb"), h.log)

	httpez.RegisterAction(ez, httpez.Action[struct{}, httpez.RawJSON]{
		Method: http.MethodGet,
		Path:   "/:category",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (httpez.RawJSON, error) {
			body, err := h.catalog.Fetch(c.Request.Context(), catalog.Category(c.Param("category")))
			if err != nil {
				return nil, err
			}
			return httpez.RawJSON(body), nil
		},
	})
}

// Priority mounts the proxy after the account routes.
func (h *CatalogHandler) Priority() int { return 200 }

package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// APIModule is a feature that mounts its routes under /api.
type APIModule interface{ MountAPI(*gin.RouterGroup) }

// Modules may implement prioritizer to control mount order (lower first, default 100).
type prioritizer interface{ Priority() int }

// Registry collects modules before the engine is built.
type Registry struct {
	mods []APIModule
}

func (r *Registry) Register(mods ...APIModule) {
	for _, m := range mods {
		if m != nil {
			r.mods = append(r.mods, m)
		}
	}
}

// MountAll mounts every registered module on g in priority order.
func (r *Registry) MountAll(g *gin.RouterGroup) {
	mods := append([]APIModule(nil), r.mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAPI(g)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}

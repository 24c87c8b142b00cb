package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"flickhub/internal/core/apperr"
	resp "flickhub/internal/transport/http/response"
)

const MsgInvalidBody = "Invalid request body"

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, log *zap.Logger) EZ { return EZ{g: g, log: log} }

type Binder string

const (
	BindJSON Binder = "json"
	BindNone Binder = "none" // read c.Param / c.Query directly
)

// RawJSON is written to the client byte for byte instead of being re-encoded.
type RawJSON []byte

// Action binds I, runs Handler and writes O (or the mapped error).
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Status  int // success status, default 200
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}

	h := func(c *gin.Context) {
		var in I
		if a.Binder == BindJSON {
			if err := c.ShouldBindJSON(&in); err != nil {
				var mbe *http.MaxBytesError
				if errors.As(err, &mbe) {
					c.AbortWithStatusJSON(resp.StatusTooLarge, resp.Error(resp.StatusTooLarge, ""))
					return
				}
				c.AbortWithStatusJSON(resp.StatusBadRequest, resp.Error(resp.StatusBadRequest, MsgInvalidBody))
				return
			}
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			WriteError(c, e.log, err)
			return
		}

		if raw, ok := any(out).(RawJSON); ok {
			c.Data(status, "application/json; charset=utf-8", raw)
			return
		}
		c.JSON(status, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

// WriteError maps err onto a status and a user-safe body. Causes stay in the server log.
func WriteError(c *gin.Context, l *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	status := resp.StatusOf(kind)

	msg, cause := "", err
	var ae *apperr.Error
	if errors.As(err, &ae) {
		msg, cause = ae.Msg, ae.Err
	}
	if status >= http.StatusInternalServerError && l != nil {
		l.Warn("request failed",
			zap.String("rid", c.GetString(resp.HeaderRequestID)),
			zap.String("path", c.FullPath()),
			zap.String("kind", kind.String()),
			zap.Error(cause),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp.Error(status, msg))
}

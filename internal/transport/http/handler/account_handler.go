package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"flickhub/internal/service"
	httpez "flickhub/internal/transport/http/ez"
)

type AccountService interface {
	Register(ctx context.Context, in service.RegisterInput) (service.RegisterResult, error)
	Login(ctx context.Context, in service.LoginInput) (service.LoginResult, error)
}

// AccountHandler serves /register and /login. Login confirms the identity once; no session
// or token is issued.
type AccountHandler struct {
	svc         AccountService
	log         *zap.Logger
	redirectURL string
}

func NewAccountHandler(svc AccountService, log *zap.Logger, redirectURL string) *AccountHandler {
	if redirectURL == "" {
		redirectURL = "/home"
	}
	return &AccountHandler{svc: svc, log: log, redirectURL: redirectURL}
}

type registerOut struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
}

type loginOut struct {
	Success     bool   `json:"success"`
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	RedirectURL string `json:"redirectUrl"`
}

func (h *AccountHandler) MountAPI(api *gin.RouterGroup) {
	ez := httpez.New(api, h.log)

	httpez.RegisterAction(ez, httpez.Action[service.RegisterInput, registerOut]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: httpez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.RegisterInput) (registerOut, error) {
			res, err := h.svc.Register(c.Request.Context(), *in)
			if err != nil {
				return registerOut{}, err
			}
			return registerOut{Success: true, UserID: res.UserID}, nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[service.LoginInput, loginOut]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *service.LoginInput) (loginOut, error) {
			res, err := h.svc.Login(c.Request.Context(), *in)
			if err != nil {
				return loginOut{}, err
			}
			return loginOut{Success: true, UserID: res.UserID, Name: res.Name, RedirectURL: h.redirectURL}, nil
		},
	})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-microblog/internal/core/auth"
	"go-gin-gorm-microblog/internal/service"
	"go-gin-gorm-microblog/internal/transport/http/ez"
)

type AuthHandler struct {
	svc *service.Services
	jwt *auth.JWTer
}

func NewAuthHandler(svc *service.Services, jwt *auth.JWTer) *AuthHandler {
	return &AuthHandler{svc: svc, jwt: jwt}
}

func (h *AuthHandler) Priority() int { return 10 }

type signupReq struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type signinReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionReq struct {
	RememberToken string `json:"remember_token" binding:"required"`
}

func (h *AuthHandler) MountAPI(g ez.Groups) {
	ez.RegisterAction(g.Public, ez.Action[signupReq, session]{
		Method: http.MethodPost,
		Path:   "/auth/signup",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *signupReq) (session, error) {
			u, err := h.svc.Identity.Create(c.Request.Context(), service.SignupInput{
				Name:                 in.Name,
				Email:                in.Email,
				Password:             in.Password,
				PasswordConfirmation: in.PasswordConfirmation,
			})
			if err != nil {
				return session{}, err
			}
			return issue(h.jwt, u, u.RememberToken)
		},
	})

	ez.RegisterAction(g.Public, ez.Action[signinReq, session]{
		Method: http.MethodPost,
		Path:   "/auth/signin",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *signinReq) (session, error) {
			u, err := h.svc.Identity.Authenticate(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return session{}, err
			}
			return issue(h.jwt, u, u.RememberToken)
		},
	})

	// exchanges a remember token for a fresh access token
	ez.RegisterAction(g.Public, ez.Action[sessionReq, session]{
		Method: http.MethodPost,
		Path:   "/auth/session",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *sessionReq) (session, error) {
			u, err := h.svc.Identity.AuthenticateRememberToken(c.Request.Context(), in.RememberToken)
			if err != nil {
				return session{}, err
			}
			return issue(h.jwt, u, "")
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[struct{}, *service.Profile]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*service.Profile, error) {
			return h.svc.Identity.Profile(c.Request.Context(), ez.UserID(c))
		},
	})
}

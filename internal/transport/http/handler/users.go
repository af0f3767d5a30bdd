package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-microblog/internal/domain"
	"go-gin-gorm-microblog/internal/service"
	"go-gin-gorm-microblog/internal/transport/http/ez"
)

type UserHandler struct {
	svc *service.Services
}

func NewUserHandler(svc *service.Services) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) MountAPI(g ez.Groups) {
	ez.RegisterAction(g.Authed, ez.Action[ez.PageQuery, list[domain.User]]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *ez.PageQuery) (list[domain.User], error) {
			users, total, err := h.svc.Identity.List(c.Request.Context(), in.Page())
			if err != nil {
				return list[domain.User]{}, err
			}
			return pageOf(users, total), nil
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[struct{}, *service.Profile]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*service.Profile, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.Identity.Profile(c.Request.Context(), id)
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[service.UpdateInput, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *service.UpdateInput) (*domain.User, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.Identity.Update(c.Request.Context(), ez.UserID(c), id, *in)
		},
	})

	h.mountRelated(g.Authed, "/users/:id/following", h.svc.Graph.FollowedUsers)
	h.mountRelated(g.Authed, "/users/:id/followers", h.svc.Graph.Followers)

	ez.RegisterAction(g.Authed, ez.Action[ez.PageQuery, list[domain.Micropost]]{
		Method: http.MethodGet,
		Path:   "/users/:id/microposts",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *ez.PageQuery) (list[domain.Micropost], error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return list[domain.Micropost]{}, err
			}
			posts, err := h.svc.Content.MicropostsByUser(c.Request.Context(), id, in.Page())
			if err != nil {
				return list[domain.Micropost]{}, err
			}
			total, err := h.svc.Content.Count(c.Request.Context(), id)
			if err != nil {
				return list[domain.Micropost]{}, err
			}
			return pageOf(posts, total), nil
		},
	})
}

type relatedFn func(ctx context.Context, userID uint, p domain.Page) ([]domain.User, error)

func (h *UserHandler) mountRelated(e ez.EZ, path string, fn relatedFn) {
	ez.RegisterAction(e, ez.Action[ez.PageQuery, list[domain.User]]{
		Method: http.MethodGet,
		Path:   path,
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *ez.PageQuery) (list[domain.User], error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return list[domain.User]{}, err
			}
			users, err := fn(c.Request.Context(), id, in.Page())
			if err != nil {
				return list[domain.User]{}, err
			}
			return listOf(users), nil
		},
	})
}

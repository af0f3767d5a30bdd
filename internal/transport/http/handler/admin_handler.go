package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-microblog/internal/domain"
	"go-gin-gorm-microblog/internal/service"
	"go-gin-gorm-microblog/internal/transport/http/ez"
)

// AdminHandler backs /admin/v1. Every action wants an admin token; the
// mutating ones re-check the role against the store.
type AdminHandler struct {
	svc *service.Services
}

func NewAdminHandler(svc *service.Services) *AdminHandler { return &AdminHandler{svc: svc} }

var adminOnly = []string{domain.RoleAdmin}

type setRolesReq struct {
	RoleIDs []uint `json:"role_ids"`
}

type grantRoleReq struct {
	Name string `json:"name" binding:"required"`
}

type memberships struct {
	UserID uint          `json:"userId"`
	Roles  []domain.Role `json:"roles"`
}

func (h *AdminHandler) MountAdmin(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[ez.PageQuery, list[domain.User]]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Auth:   true,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, in *ez.PageQuery) (list[domain.User], error) {
			users, total, err := h.svc.Identity.List(c.Request.Context(), in.Page())
			if err != nil {
				return list[domain.User]{}, err
			}
			return pageOf(users, total), nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, deleted]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ *struct{}) (deleted, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return deleted{}, err
			}
			if err := h.svc.Identity.Destroy(c.Request.Context(), ez.UserID(c), id); err != nil {
				return deleted{}, err
			}
			return deleted{ID: id}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[setRolesReq, memberships]{
		Method: http.MethodPut,
		Path:   "/users/:id/roles",
		Binder: ez.BindJSON,
		Auth:   true,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, in *setRolesReq) (memberships, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return memberships{}, err
			}
			roles, err := h.svc.Roles.SetRoles(c.Request.Context(), ez.UserID(c), id, in.RoleIDs)
			if err != nil {
				return memberships{}, err
			}
			return memberships{UserID: id, Roles: roles}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[grantRoleReq, *domain.Role]{
		Method: http.MethodPost,
		Path:   "/users/:id/roles",
		Binder: ez.BindJSON,
		Auth:   true,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, in *grantRoleReq) (*domain.Role, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.Roles.GrantRole(c.Request.Context(), ez.UserID(c), id, in.Name)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, list[domain.Role]]{
		Method: http.MethodGet,
		Path:   "/roles",
		Binder: ez.BindNone,
		Auth:   true,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ *struct{}) (list[domain.Role], error) {
			roles, err := h.svc.Roles.List(c.Request.Context())
			if err != nil {
				return list[domain.Role]{}, err
			}
			return listOf(roles), nil
		},
	})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-microblog/internal/domain"
	"go-gin-gorm-microblog/internal/service"
	"go-gin-gorm-microblog/internal/transport/http/ez"
)

type RelationshipHandler struct {
	svc *service.Services
}

func NewRelationshipHandler(svc *service.Services) *RelationshipHandler {
	return &RelationshipHandler{svc: svc}
}

type followReq struct {
	FollowedID uint `json:"followed_id" binding:"required"`
}

type unfollowed struct {
	FollowedID uint `json:"followedId"`
}

func (h *RelationshipHandler) MountAPI(g ez.Groups) {
	ez.RegisterAction(g.Authed, ez.Action[followReq, *domain.Relationship]{
		Method: http.MethodPost,
		Path:   "/relationships",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *followReq) (*domain.Relationship, error) {
			return h.svc.Graph.Follow(c.Request.Context(), ez.UserID(c), in.FollowedID)
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[struct{}, unfollowed]{
		Method: http.MethodDelete,
		Path:   "/relationships/:followed_id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (unfollowed, error) {
			id, err := ez.ParamID(c, "followed_id")
			if err != nil {
				return unfollowed{}, err
			}
			if err := h.svc.Graph.Unfollow(c.Request.Context(), ez.UserID(c), id); err != nil {
				return unfollowed{}, err
			}
			return unfollowed{FollowedID: id}, nil
		},
	})
}

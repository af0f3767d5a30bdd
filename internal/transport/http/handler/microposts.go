package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-gorm-microblog/internal/domain"
	"go-gin-gorm-microblog/internal/service"
	"go-gin-gorm-microblog/internal/transport/http/ez"
	resp "go-gin-gorm-microblog/internal/transport/http/response"
)

const ndjson = "application/x-ndjson"

type MicropostHandler struct {
	svc *service.Services
	log *zap.Logger
}

func NewMicropostHandler(svc *service.Services, log *zap.Logger) *MicropostHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MicropostHandler{svc: svc, log: log}
}

type postReq struct {
	Content string `json:"content"`
}

type deleted struct {
	ID uint `json:"id"`
}

func (h *MicropostHandler) MountAPI(g ez.Groups) {
	ez.RegisterAction(g.Authed, ez.Action[postReq, *domain.Micropost]{
		Method: http.MethodPost,
		Path:   "/microposts",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *postReq) (*domain.Micropost, error) {
			return h.svc.Content.Post(c.Request.Context(), ez.UserID(c), in.Content)
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[struct{}, deleted]{
		Method: http.MethodDelete,
		Path:   "/microposts/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (deleted, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return deleted{}, err
			}
			if err := h.svc.Content.Delete(c.Request.Context(), ez.UserID(c), id); err != nil {
				return deleted{}, err
			}
			return deleted{ID: id}, nil
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[ez.PageQuery, list[domain.Micropost]]{
		Method: http.MethodGet,
		Path:   "/feed",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *ez.PageQuery) (list[domain.Micropost], error) {
			posts, err := h.svc.Feed.Feed(c.Request.Context(), ez.UserID(c), in.Page())
			if err != nil {
				return list[domain.Micropost]{}, err
			}
			return listOf(posts), nil
		},
	})

	g.Authed.Group().GET("/me/microposts/export", h.export(g.Authed))
}

// export streams the caller's posts as NDJSON, newest first. Rows are
// pulled from the store batch by batch as the client reads.
func (h *MicropostHandler) export(e ez.EZ) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := ez.UserID(c)
		if uid == 0 {
			c.JSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "unauthorized"))
			return
		}
		enc := json.NewEncoder(c.Writer)
		started := false
		n := 0
		for m, err := range h.svc.Content.Stream(c.Request.Context(), uid) {
			if err != nil {
				if !started {
					e.Fail(c, err)
					return
				}
				_ = c.Error(err)
				h.log.Error("export aborted", zap.Uint("user_id", uid), zap.Int("sent", n), zap.Error(err))
				return
			}
			if !started {
				c.Header("Content-Type", ndjson)
				c.Status(http.StatusOK)
				started = true
			}
			if err := enc.Encode(m); err != nil {
				return
			}
			n++
			c.Writer.Flush()
		}
		if !started {
			c.Header("Content-Type", ndjson)
			c.Status(http.StatusOK)
		}
	}
}

package router

import (
	"github.com/gin-gonic/gin"

	"go-gin-gorm-microblog/internal/transport/http/ez"
	"go-gin-gorm-microblog/internal/transport/http/handler"
	mdw "go-gin-gorm-microblog/internal/transport/http/middleware"
)

// NewAPIEngine serves the user-facing API under /api/v1.
func NewAPIEngine(d Deps) *gin.Engine {
	r := newEngine("api", d)

	api := r.Group("/api/v1")
	// ⚠️ 需要 userId 的接口必须挂在 authed 分组
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(d.JWT))

	var reg Registry
	reg.Register(
		handler.NewAuthHandler(d.Services, d.JWT),
		handler.NewUserHandler(d.Services),
		handler.NewRelationshipHandler(d.Services),
		handler.NewMicropostHandler(d.Services, d.Log),
	)
	reg.MountAPI(ez.Groups{Public: ez.New(api, d.Log), Authed: ez.New(authed, d.Log)})
	return r
}

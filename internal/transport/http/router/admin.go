package router

import (
	"github.com/gin-gonic/gin"

	"go-gin-gorm-microblog/internal/transport/http/ez"
	"go-gin-gorm-microblog/internal/transport/http/handler"
	mdw "go-gin-gorm-microblog/internal/transport/http/middleware"
)

// NewAdminEngine serves /admin/v1. Every route requires a signed-in user;
// the admin handler gates each action on the admin role.
func NewAdminEngine(d Deps) *gin.Engine {
	r := newEngine("admin", d)

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.JWT))

	var reg Registry
	reg.Register(handler.NewAdminHandler(d.Services))
	reg.MountAdmin(ez.New(admin, d.Log))
	return r
}

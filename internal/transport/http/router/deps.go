package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-gin-gorm-microblog/internal/core/auth"
	"go-gin-gorm-microblog/internal/core/config"
	"go-gin-gorm-microblog/internal/core/server"
	"go-gin-gorm-microblog/internal/service"
	mdw "go-gin-gorm-microblog/internal/transport/http/middleware"
	resp "go-gin-gorm-microblog/internal/transport/http/response"
)

// Deps is everything an engine needs. Checks run on GET /health.
type Deps struct {
	Log      *zap.Logger
	Services *service.Services
	JWT      *auth.JWTer
	HTTP     config.HTTP
	Security config.Security
	Cors     config.Cors
	Checks   map[string]func(context.Context) error
}

// streamingRoutes write for as long as the client reads.
var streamingRoutes = []string{"/api/v1/me/microposts/export"}

func newEngine(name string, d Deps) *gin.Engine {
	r := server.NewRouter(d.Log, server.Options{Name: name, AllowOrigins: d.Cors.AllowOrigins})

	r.Use(mdw.RequestID())
	if d.Security.GlobalRateLimit > 0 {
		r.Use(mdw.RateLimit(rate.Limit(d.Security.GlobalRateLimit), max(1, d.Security.GlobalRateBurst)))
	}
	if d.Security.RateLimit > 0 {
		r.Use(mdw.RateLimitPerIP(rate.Limit(d.Security.RateLimit), max(1, d.Security.RateBurst)))
	}
	handlerTimeout := time.Duration(d.HTTP.HandlerTimeoutMS) * time.Millisecond
	if d.HTTP.MaxInFlight > 0 {
		r.Use(mdw.ConcurrencyLimit(int64(d.HTTP.MaxInFlight), handlerTimeout))
	}
	if d.HTTP.MaxBodyBytes > 0 {
		r.Use(mdw.MaxBodyBytes(d.HTTP.MaxBodyBytes))
	}
	if handlerTimeout > 0 {
		r.Use(mdw.Timeout(handlerTimeout, streamingRoutes...))
	}
	r.Use(mdw.Metrics(name), mdw.AccessLog(d.Log))

	r.GET("/health", health(d.Checks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func health(checks map[string]func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := make(map[string]string, len(checks))
		healthy := true
		for name, check := range checks {
			if err := check(c.Request.Context()); err != nil {
				status[name] = err.Error()
				healthy = false
				continue
			}
			status[name] = "ok"
		}
		if !healthy {
			c.JSON(http.StatusOK, resp.ErrorWithData(resp.CodeUnavailable, "unhealthy", status))
			return
		}
		c.JSON(http.StatusOK, resp.OK(status))
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go-gin-gorm-microblog/internal/app"
	"go-gin-gorm-microblog/internal/core/config"
	"go-gin-gorm-microblog/internal/core/server"
	"go-gin-gorm-microblog/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	l, cleanup := app.NewLogger(cfg)
	defer cleanup()
	l = l.With(zap.String("server", "admin"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, l)
	if err != nil {
		l.Fatal("bootstrap failed", zap.Error(err))
	}
	defer a.Close()

	// admin listener shares the api's limits but binds its own address
	h := cfg.App.HTTP
	h.Host, h.Port = cfg.App.Admin.Host, cfg.App.Admin.Port
	addr := server.Addr(h.Host, h.Port)
	srv := server.BuildServer(addr, router.NewAdminEngine(a.Deps(h)), 5*time.Second, 10*time.Second, 60*time.Second)

	host4human := h.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(h.Port)
	l.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)

	if err := server.Run(ctx, srv, l, 10*time.Second); err != nil {
		l.Error("admin api stopped with error", zap.Error(err))
		return
	}
	l.Info("admin api stopped gracefully")
}

package service

import (
	"time"

	"go.uber.org/zap"

	"go-gin-gorm-microblog/internal/core/cache"
	"go-gin-gorm-microblog/internal/domain"
	"go-gin-gorm-microblog/pkg/utils"
)

// Services wires the five components over one store.
type Services struct {
	Identity *IdentityService
	Roles    *RoleService
	Graph    *GraphService
	Content  *ContentService
	Feed     *FeedService
}

type Options struct {
	Hasher     utils.Hasher
	Tokens     func() (string, error)
	Cache      *cache.Cache
	ProfileTTL time.Duration
	Now        func() time.Time
	Logger     *zap.Logger
}

func New(store domain.Store, o Options) *Services {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Tokens == nil {
		o.Tokens = utils.NewRememberToken
	}
	if o.Hasher == nil {
		o.Hasher = utils.NewBcryptHasher(0)
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.ProfileTTL <= 0 {
		o.ProfileTTL = 5 * time.Minute
	}

	roles := NewRoleService(store, o.Cache, o.Logger)
	graph := NewGraphService(store, o.Logger)
	content := NewContentService(store, o.Now, o.Logger)
	return &Services{
		Identity: NewIdentityService(store, roles, graph, content, o),
		Roles:    roles,
		Graph:    graph,
		Content:  content,
		Feed:     NewFeedService(store),
	}
}

func profileKey(userID uint) string { return "user:" + uintStr(userID) }

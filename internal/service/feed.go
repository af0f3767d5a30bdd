package service

import (
	"context"

	"go-gin-gorm-microblog/internal/domain"
)

// FeedService resolves a user's feed: own posts plus posts of everyone the
// user follows at call time. Nothing is persisted.
type FeedService struct {
	store domain.Store
}

func NewFeedService(store domain.Store) *FeedService { return &FeedService{store: store} }

func (s *FeedService) Feed(ctx context.Context, userID uint, p domain.Page) ([]domain.Micropost, error) {
	if _, err := s.store.Users().FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Microposts().Feed(ctx, userID, p)
}

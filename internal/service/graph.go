package service

import (
	"context"

	"go.uber.org/zap"

	"go-gin-gorm-microblog/internal/core/metrics"
	"go-gin-gorm-microblog/internal/domain"
)

// GraphService owns the directed follow edges between users.
type GraphService struct {
	store domain.Store
	log   *zap.Logger
}

func NewGraphService(store domain.Store, log *zap.Logger) *GraphService {
	return &GraphService{store: store, log: log}
}

// Follow creates follower -> followed. A duplicate edge is rejected by the
// unique index, not by a pre-check.
func (s *GraphService) Follow(ctx context.Context, followerID, followedID uint) (*domain.Relationship, error) {
	if followerID == followedID {
		return nil, domain.ErrInvalidTarget
	}
	rel := &domain.Relationship{FollowerID: followerID, FollowedID: followedID}
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		if _, err := tx.Users().FindByID(ctx, followerID); err != nil {
			return err
		}
		if _, err := tx.Users().FindByID(ctx, followedID); err != nil {
			return err
		}
		return tx.Relationships().Create(ctx, rel)
	})
	if err != nil {
		return nil, err
	}
	metrics.Follows.WithLabelValues("follow").Inc()
	s.log.Info("follow", zap.Uint("follower_id", followerID), zap.Uint("followed_id", followedID))
	return rel, nil
}

func (s *GraphService) Unfollow(ctx context.Context, followerID, followedID uint) error {
	n, err := s.store.Relationships().Delete(ctx, followerID, followedID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFollowing
	}
	metrics.Follows.WithLabelValues("unfollow").Inc()
	s.log.Info("unfollow", zap.Uint("follower_id", followerID), zap.Uint("followed_id", followedID))
	return nil
}

func (s *GraphService) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.store.Relationships().Exists(ctx, followerID, followedID)
}

func (s *GraphService) FollowedUsers(ctx context.Context, userID uint, p domain.Page) ([]domain.User, error) {
	if _, err := s.store.Users().FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Relationships().FollowedUsers(ctx, userID, p)
}

func (s *GraphService) Followers(ctx context.Context, userID uint, p domain.Page) ([]domain.User, error) {
	if _, err := s.store.Users().FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Relationships().Followers(ctx, userID, p)
}

// RemoveAllEdges drops both directions for userID on the caller's transaction.
func (s *GraphService) RemoveAllEdges(ctx context.Context, tx domain.Store, userID uint) error {
	return tx.Relationships().DeleteAllOf(ctx, userID)
}

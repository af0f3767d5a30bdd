package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"go-gin-gorm-microblog/internal/domain"
)

var _ domain.RelationshipRepository = (*RelationshipRepo)(nil)

type RelationshipRepo struct{ db *gorm.DB }

func NewRelationshipRepo(db *gorm.DB) *RelationshipRepo { return &RelationshipRepo{db: db} }

// Create relies on the (follower_id, followed_id) unique index to reject a
// second edge, so concurrent double-follows cannot both succeed.
func (r *RelationshipRepo) Create(ctx context.Context, rel *domain.Relationship) error {
	err := r.db.WithContext(ctx).Create(rel).Error
	if IsDuplicateKey(err) {
		return domain.ErrAlreadyFollowing
	}
	if err != nil {
		return fmt.Errorf("create relationship: %w", err)
	}
	return nil
}

func (r *RelationshipRepo) Delete(ctx context.Context, followerID, followedID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&domain.Relationship{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete relationship: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *RelationshipRepo) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Relationship{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("relationship exists: %w", err)
	}
	return n > 0, nil
}

// FollowedUsers lists who userID follows, most recently followed first.
func (r *RelationshipRepo) FollowedUsers(ctx context.Context, userID uint, p domain.Page) ([]domain.User, error) {
	return r.users(ctx, "relationships.followed_id = users.id", "relationships.follower_id = ?", userID, p)
}

// Followers lists who follows userID, most recent follower first.
func (r *RelationshipRepo) Followers(ctx context.Context, userID uint, p domain.Page) ([]domain.User, error) {
	return r.users(ctx, "relationships.follower_id = users.id", "relationships.followed_id = ?", userID, p)
}

func (r *RelationshipRepo) users(ctx context.Context, on, where string, userID uint, p domain.Page) ([]domain.User, error) {
	var users []domain.User
	q := r.db.WithContext(ctx).Model(&domain.User{}).
		Joins("JOIN relationships ON "+on).
		Where(where, userID).
		Order("relationships.id DESC")
	if err := paginate(q, p).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list related users: %w", err)
	}
	return users, nil
}

func (r *RelationshipRepo) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return r.count(ctx, "follower_id = ?", userID)
}

func (r *RelationshipRepo) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return r.count(ctx, "followed_id = ?", userID)
}

func (r *RelationshipRepo) count(ctx context.Context, where string, userID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Relationship{}).Where(where, userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count relationships: %w", err)
	}
	return n, nil
}

// DeleteAllOf removes edges in both directions.
func (r *RelationshipRepo) DeleteAllOf(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? OR followed_id = ?", userID, userID).
		Delete(&domain.Relationship{}).Error
	if err != nil {
		return fmt.Errorf("delete relationships: %w", err)
	}
	return nil
}

// followedIDs is the subquery behind the feed join.
func followedIDs(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&domain.Relationship{}).Select("followed_id").Where("follower_id = ?", userID)
}

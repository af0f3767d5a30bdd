package domain

import (
	"context"
	"time"
)

// Relationship is a directed follow edge: Follower's feed includes Followed's posts.
type Relationship struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_relationships_pair;index" json:"followerId"`
	FollowedID uint      `gorm:"not null;uniqueIndex:idx_relationships_pair;index" json:"followedId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Relationship) TableName() string { return "relationships" }

type RelationshipRepository interface {
	Create(ctx context.Context, r *Relationship) error
	Delete(ctx context.Context, followerID, followedID uint) (int64, error)
	Exists(ctx context.Context, followerID, followedID uint) (bool, error)
	FollowedUsers(ctx context.Context, userID uint, p Page) ([]User, error)
	Followers(ctx context.Context, userID uint, p Page) ([]User, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	DeleteAllOf(ctx context.Context, userID uint) error
}

package domain

import (
	"context"
	"time"
)

const MaxMicropostLength = 140

type Micropost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_microposts_user_created,priority:1" json:"userId"`
	Content   string    `gorm:"size:140;not null" json:"content"`
	CreatedAt time.Time `gorm:"index:idx_microposts_user_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Micropost) TableName() string { return "microposts" }

// Cursor marks the last post seen by a keyset scan (created_at DESC, id DESC).
type Cursor struct {
	CreatedAt time.Time
	ID        uint
}

type MicropostRepository interface {
	Create(ctx context.Context, m *Micropost) error
	FindByID(ctx context.Context, id uint) (*Micropost, error)
	ListByUser(ctx context.Context, userID uint, p Page) ([]Micropost, error)
	ScanByUser(ctx context.Context, userID uint, after *Cursor, limit int) ([]Micropost, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	Feed(ctx context.Context, userID uint, p Page) ([]Micropost, error)
	Delete(ctx context.Context, id uint) error
	DeleteAllByUser(ctx context.Context, userID uint) error
}

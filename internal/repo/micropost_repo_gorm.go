package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-gin-gorm-microblog/internal/domain"
)

var _ domain.MicropostRepository = (*MicropostRepo)(nil)

const newestFirst = "created_at DESC, id DESC"

type MicropostRepo struct{ db *gorm.DB }

func NewMicropostRepo(db *gorm.DB) *MicropostRepo { return &MicropostRepo{db: db} }

func (r *MicropostRepo) Create(ctx context.Context, m *domain.Micropost) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return fmt.Errorf("create micropost: %w", err)
	}
	return nil
}

func (r *MicropostRepo) FindByID(ctx context.Context, id uint) (*domain.Micropost, error) {
	var m domain.Micropost
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &domain.NotFoundError{Resource: "micropost", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("find micropost: %w", err)
	}
	return &m, nil
}

func (r *MicropostRepo) ListByUser(ctx context.Context, userID uint, p domain.Page) ([]domain.Micropost, error) {
	var posts []domain.Micropost
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order(newestFirst)
	if err := paginate(q, p).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list microposts: %w", err)
	}
	return posts, nil
}

// ScanByUser returns up to limit posts strictly after the cursor in
// newest-first order. A nil cursor starts at the newest post.
func (r *MicropostRepo) ScanByUser(ctx context.Context, userID uint, after *domain.Cursor, limit int) ([]domain.Micropost, error) {
	var posts []domain.Micropost
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if after != nil {
		q = q.Where("created_at < ? OR (created_at = ? AND id < ?)", after.CreatedAt, after.CreatedAt, after.ID)
	}
	if err := q.Order(newestFirst).Limit(limit).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("scan microposts: %w", err)
	}
	return posts, nil
}

func (r *MicropostRepo) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Micropost{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count microposts: %w", err)
	}
	return n, nil
}

// Feed is one query: own posts plus posts whose author is in the followed
// set, newest first with id as the tiebreak.
func (r *MicropostRepo) Feed(ctx context.Context, userID uint, p domain.Page) ([]domain.Micropost, error) {
	db := r.db.WithContext(ctx)
	var posts []domain.Micropost
	q := db.Preload("User").
		Where("user_id = ?", userID).
		Or("user_id IN (?)", followedIDs(db, userID)).
		Order(newestFirst)
	if err := paginate(q, p).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	return posts, nil
}

func (r *MicropostRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Micropost{})
	if res.Error != nil {
		return fmt.Errorf("delete micropost: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &domain.NotFoundError{Resource: "micropost", ID: id}
	}
	return nil
}

func (r *MicropostRepo) DeleteAllByUser(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Micropost{}).Error; err != nil {
		return fmt.Errorf("delete microposts of user: %w", err)
	}
	return nil
}

package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"go-gin-gorm-microblog/internal/domain"
)

var _ domain.RoleRepository = (*RoleRepo)(nil)

type RoleRepo struct{ db *gorm.DB }

func NewRoleRepo(db *gorm.DB) *RoleRepo { return &RoleRepo{db: db} }

func (r *RoleRepo) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.WithContext(ctx).Where("name = ?", domain.NormalizeRoleName(name)).Take(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &domain.NotFoundError{Resource: "role", ID: name}
	}
	if err != nil {
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &role, nil
}

func (r *RoleRepo) FindByIDs(ctx context.Context, ids []uint) ([]domain.Role, error) {
	var roles []domain.Role
	if len(ids) == 0 {
		return roles, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}
	return roles, nil
}

func (r *RoleRepo) List(ctx context.Context) ([]domain.Role, error) {
	var roles []domain.Role
	if err := r.db.WithContext(ctx).Order("id").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (r *RoleRepo) memberships(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).Model(&domain.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID)
}

func (r *RoleRepo) RolesOf(ctx context.Context, userID uint) ([]domain.Role, error) {
	var roles []domain.Role
	if err := r.memberships(ctx, userID).Order("roles.id").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("roles of user: %w", err)
	}
	return roles, nil
}

func (r *RoleRepo) HasRole(ctx context.Context, userID uint, name string) (bool, error) {
	var n int64
	err := r.memberships(ctx, userID).Where("roles.name = ?", domain.NormalizeRoleName(name)).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("has role: %w", err)
	}
	return n > 0, nil
}

func (r *RoleRepo) AddMembership(ctx context.Context, userID, roleID uint) error {
	err := r.db.WithContext(ctx).Create(&domain.UserRole{UserID: userID, RoleID: roleID}).Error
	if IsDuplicateKey(err) {
		return &domain.ConflictError{Resource: "membership", Field: "role_id"}
	}
	if err != nil {
		return fmt.Errorf("add membership: %w", err)
	}
	return nil
}

// ReplaceMemberships must run inside a transaction to be atomic.
func (r *RoleRepo) ReplaceMemberships(ctx context.Context, userID uint, roleIDs []uint) error {
	if err := r.DeleteMemberships(ctx, userID); err != nil {
		return err
	}
	if len(roleIDs) == 0 {
		return nil
	}
	rows := make([]domain.UserRole, 0, len(roleIDs))
	for _, id := range roleIDs {
		rows = append(rows, domain.UserRole{UserID: userID, RoleID: id})
	}
	err := r.db.WithContext(ctx).Create(&rows).Error
	if IsDuplicateKey(err) {
		return &domain.ConflictError{Resource: "membership", Field: "role_id"}
	}
	if err != nil {
		return fmt.Errorf("insert memberships: %w", err)
	}
	return nil
}

func (r *RoleRepo) DeleteMemberships(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.UserRole{}).Error; err != nil {
		return fmt.Errorf("delete memberships: %w", err)
	}
	return nil
}

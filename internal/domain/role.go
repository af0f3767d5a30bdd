package domain

import (
	"context"
	"strings"
	"unicode"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	DefaultRole = RoleUser
)

// SeedRoles is the static reference data written by the migration.
var SeedRoles = []string{RoleUser, RoleAdmin}

type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:32;not null" json:"name"`
}

func (Role) TableName() string { return "roles" }

// UserRole is the membership join row; (user_id, role_id) is the key.
type UserRole struct {
	UserID uint `gorm:"primaryKey;autoIncrement:false"`
	RoleID uint `gorm:"primaryKey;autoIncrement:false;index"`
}

func (UserRole) TableName() string { return "user_roles" }

// NormalizeRoleName folds a role name to its stored form:
// "Admin", " admin ", "SuperUser" and "super-user" become "admin", "admin",
// "super_user", "super_user".
func NormalizeRoleName(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		switch {
		case r == '-' || r == ' ':
			b.WriteByte('_')
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	return b.String()
}

type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*Role, error)
	FindByIDs(ctx context.Context, ids []uint) ([]Role, error)
	List(ctx context.Context) ([]Role, error)
	RolesOf(ctx context.Context, userID uint) ([]Role, error)
	HasRole(ctx context.Context, userID uint, name string) (bool, error)
	AddMembership(ctx context.Context, userID, roleID uint) error
	ReplaceMemberships(ctx context.Context, userID uint, roleIDs []uint) error
	DeleteMemberships(ctx context.Context, userID uint) error
}

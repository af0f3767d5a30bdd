package domain

import (
	"context"
	"time"
)

type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:50;not null" json:"name"`
	Email         string    `gorm:"uniqueIndex;size:191;not null" json:"email"` // stored lower-cased
	PasswordHash  string    `gorm:"size:100;not null" json:"-"`
	RememberToken string    `gorm:"index;size:64" json:"-"`
	Roles         []Role    `gorm:"-" json:"roles,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// HasRole reports whether one of the loaded roles carries the given name.
// Roles must have been loaded; the authoritative check hits the store.
func (u *User) HasRole(name string) bool {
	want := NormalizeRoleName(name)
	for _, r := range u.Roles {
		if NormalizeRoleName(r.Name) == want {
			return true
		}
	}
	return false
}

func (u *User) RoleNames() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Name)
	}
	return out
}

// Page is an offset window. Limit <= 0 means no limit.
type Page struct {
	Offset int
	Limit  int
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByRememberToken(ctx context.Context, token string) (*User, error)
	List(ctx context.Context, p Page) ([]User, int64, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uint) error
}

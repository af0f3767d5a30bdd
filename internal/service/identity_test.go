package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-gorm-microblog/internal/core/metrics"
	"go-gin-gorm-microblog/internal/domain"
	"go-gin-gorm-microblog/internal/repo"
)

func ptr(s string) *string { return &s }

func TestIdentity_CreateThenAuthenticate(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	before := testutil.ToFloat64(metrics.UsersCreated)

	u := mustCreate(t, svc, "Example User", "User@Example.com")
	assert.Equal(t, "user@example.com", u.Email)
	assert.NotEmpty(t, u.RememberToken)
	assert.NotEqual(t, testPassword, u.PasswordHash)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.UsersCreated))

	got, err := svc.Identity.Authenticate(ctx, "USER@example.com", testPassword)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.HasRole(domain.RoleUser))

	_, err = svc.Identity.Authenticate(ctx, "user@example.com", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Identity.Authenticate(ctx, "nobody@example.com", testPassword)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestIdentity_DefaultRole(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	u := mustCreate(t, svc, "Example User", "user@example.com")

	ok, err := svc.Roles.HasRole(ctx, u.ID, "user")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Roles.HasRole(ctx, u.ID, "admin")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdentity_ExplicitRolesSkipDefault(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	admin := mustAdmin(t, svc, "admin@example.com")

	isUser, err := svc.Roles.HasRole(ctx, admin.ID, domain.RoleUser)
	require.NoError(t, err)
	isAdmin, err := svc.Roles.HasRole(ctx, admin.ID, "Admin")
	require.NoError(t, err)
	assert.False(t, isUser)
	assert.True(t, isAdmin)
}

func TestIdentity_DuplicateEmailIgnoresCase(t *testing.T) {
	svc, _ := newTestServices(t)
	mustCreate(t, svc, "A", "a@x.com")

	_, err := svc.Identity.Create(context.Background(), signup("B", "A@X.com"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	var ce *domain.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "email", ce.Field)
}

func TestIdentity_CreateValidation(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	_, err := svc.Identity.Create(ctx, SignupInput{})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	for _, f := range []string{"name", "email", "password", "password_confirmation"} {
		assert.True(t, ve.Has(f, "required"), f)
	}

	in := signup(strings.Repeat("a", 51), "user@foo,com")
	in.PasswordConfirmation = "other1"
	_, err = svc.Identity.Create(ctx, in)
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("name", "max"))
	assert.True(t, ve.Has("email", "email_format"))
	assert.True(t, ve.Has("password_confirmation", "confirmation"))

	_, total, err := svc.Identity.List(ctx, domain.Page{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestIdentity_CreateWithUnknownRoleIsAtomic(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	in := signup("Example User", "user@example.com")
	in.RoleIDs = []uint{999}
	_, err := svc.Identity.Create(ctx, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, total, err := svc.Identity.List(ctx, domain.Page{})
	require.NoError(t, err)
	assert.Zero(t, total, "user must not survive a failed role assignment")
}

func TestIdentity_UpdateRegeneratesRememberToken(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	u := mustCreate(t, svc, "Example User", "user@example.com")

	got, err := svc.Identity.Update(ctx, u.ID, u.ID, UpdateInput{Name: ptr("New Name")})
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)
	assert.NotEqual(t, u.RememberToken, got.RememberToken)

	_, err = svc.Identity.AuthenticateRememberToken(ctx, u.RememberToken)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	byToken, err := svc.Identity.AuthenticateRememberToken(ctx, got.RememberToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byToken.ID)
}

func TestIdentity_UpdateRevalidates(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	u := mustCreate(t, svc, "Example User", "user@example.com")
	mustCreate(t, svc, "Other", "other@example.com")

	_, err := svc.Identity.Update(ctx, u.ID, u.ID, UpdateInput{Name: ptr(""), Email: ptr("nope")})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("name", "required"))
	assert.True(t, ve.Has("email", "email_format"))

	_, err = svc.Identity.Update(ctx, u.ID, u.ID, UpdateInput{Password: ptr("barbaz")})
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("password_confirmation", "required"))

	_, err = svc.Identity.Update(ctx, u.ID, u.ID, UpdateInput{Email: ptr("OTHER@example.com")})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestIdentity_MultibytePasswordOverBcryptLimit(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	long := strings.Repeat("é", 40)

	in := signup("Example User", "user@example.com")
	in.Password, in.PasswordConfirmation = long, long
	_, err := svc.Identity.Create(ctx, in)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("password", "max"))

	u := mustCreate(t, svc, "Example User", "user@example.com")
	_, err = svc.Identity.Update(ctx, u.ID, u.ID, UpdateInput{Password: ptr(long), PasswordConfirmation: ptr(long)})
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("password", "max"))

	_, err = svc.Identity.Authenticate(ctx, "user@example.com", testPassword)
	assert.NoError(t, err, "rejected update leaves the password alone")
}

func TestIdentity_UpdatePassword(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	u := mustCreate(t, svc, "Example User", "user@example.com")

	_, err := svc.Identity.Update(ctx, u.ID, u.ID, UpdateInput{
		Email:                ptr("user@example.org"),
		Password:             ptr("barbaz"),
		PasswordConfirmation: ptr("barbaz"),
	})
	require.NoError(t, err)

	_, err = svc.Identity.Authenticate(ctx, "user@example.org", testPassword)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Identity.Authenticate(ctx, "user@example.org", "barbaz")
	assert.NoError(t, err)
}

func TestIdentity_UpdateOtherUserForbidden(t *testing.T) {
	svc, _ := newTestServices(t)
	u := mustCreate(t, svc, "Example User", "user@example.com")
	other := mustCreate(t, svc, "Wrong User", "user@example.net")

	_, err := svc.Identity.Update(context.Background(), other.ID, u.ID, UpdateInput{Name: ptr("hacked")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestIdentity_DestroyCascades(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	admin := mustAdmin(t, svc, "admin@example.com")
	u := mustCreate(t, svc, "Example User", "user@example.com")
	friend := mustCreate(t, svc, "Friend", "friend@example.com")

	older, err := svc.Content.Post(ctx, u.ID, "older")
	require.NoError(t, err)
	newer, err := svc.Content.Post(ctx, u.ID, "newer")
	require.NoError(t, err)
	_, err = svc.Graph.Follow(ctx, u.ID, friend.ID)
	require.NoError(t, err)
	_, err = svc.Graph.Follow(ctx, friend.ID, u.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Identity.Destroy(ctx, admin.ID, u.ID))

	for _, id := range []uint{older.ID, newer.ID} {
		_, err := repo.NewStore(db).Microposts().FindByID(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}
	var edges int64
	require.NoError(t, db.Model(&domain.Relationship{}).Count(&edges).Error)
	assert.Zero(t, edges)
	var memberships int64
	require.NoError(t, db.Model(&domain.UserRole{}).Where("user_id = ?", u.ID).Count(&memberships).Error)
	assert.Zero(t, memberships)

	_, err = svc.Identity.Get(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	followers, err := svc.Graph.Followers(ctx, friend.ID, domain.Page{})
	require.NoError(t, err)
	assert.Empty(t, followers)
}

func TestIdentity_DestroyAuthorization(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	admin := mustAdmin(t, svc, "admin@example.com")
	u := mustCreate(t, svc, "Example User", "user@example.com")
	other := mustCreate(t, svc, "Other", "other@example.com")

	var ae *domain.AuthorizationError
	err := svc.Identity.Destroy(ctx, u.ID, other.ID)
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "admin role required", ae.Reason)

	err = svc.Identity.Destroy(ctx, admin.ID, admin.ID)
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "cannot destroy yourself", ae.Reason)

	assert.ErrorIs(t, svc.Identity.Destroy(ctx, admin.ID, 12345), domain.ErrNotFound)

	_, total, err := svc.Identity.List(ctx, domain.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestIdentity_Profile(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	u := mustCreate(t, svc, "Example User", "user@example.com")
	a := mustCreate(t, svc, "A", "a@example.com")
	b := mustCreate(t, svc, "B", "b@example.com")

	_, err := svc.Content.Post(ctx, u.ID, "Foo bar")
	require.NoError(t, err)
	_, err = svc.Graph.Follow(ctx, u.ID, a.ID)
	require.NoError(t, err)
	_, err = svc.Graph.Follow(ctx, u.ID, b.ID)
	require.NoError(t, err)
	_, err = svc.Graph.Follow(ctx, a.ID, u.ID)
	require.NoError(t, err)

	p, err := svc.Identity.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Example User", p.User.Name)
	assert.Equal(t, []string{domain.RoleUser}, p.User.RoleNames())
	assert.EqualValues(t, 1, p.MicropostCount)
	assert.EqualValues(t, 2, p.Following)
	assert.EqualValues(t, 1, p.Followers)

	_, err = svc.Identity.Profile(ctx, 999)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

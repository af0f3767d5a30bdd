package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"go-gin-gorm-microblog/internal/core/cache"
	"go-gin-gorm-microblog/internal/domain"
	"go-gin-gorm-microblog/internal/repo"
	"go-gin-gorm-microblog/internal/testutil"
)

func TestRoles_SetRolesReplaces(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	actor := mustAdmin(t, svc, "admin@example.com")
	u := mustCreate(t, svc, "U", "u@example.com")
	admin := roleID(t, svc, domain.RoleAdmin)

	roles, err := svc.Roles.SetRoles(ctx, actor.ID, u.ID, []uint{admin, admin})
	require.NoError(t, err)
	require.Len(t, roles, 1)

	got, err := svc.Roles.RolesOf(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.RoleAdmin}, (&domain.User{Roles: got}).RoleNames())

	var ve *domain.ValidationError
	_, err = svc.Roles.SetRoles(ctx, actor.ID, u.ID, nil)
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("role_ids", "required"))

	var nf *domain.NotFoundError
	_, err = svc.Roles.SetRoles(ctx, actor.ID, u.ID, []uint{admin, 999})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "role", nf.Resource)

	// failed replacement leaves memberships untouched
	ok, err := svc.Roles.HasRole(ctx, u.ID, domain.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRoles_GrantRole(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	actor := mustAdmin(t, svc, "admin@example.com")
	u := mustCreate(t, svc, "U", "u@example.com")

	r, err := svc.Roles.GrantRole(ctx, actor.ID, u.ID, "Admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, r.Name)

	_, err = svc.Roles.GrantRole(ctx, actor.ID, u.ID, "admin")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Roles.GrantRole(ctx, actor.ID, u.ID, "wizard")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRoles_MembershipChangesRequireStoredAdmin(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	actor := mustAdmin(t, svc, "admin@example.com")
	u := mustCreate(t, svc, "U", "u@example.com")
	admin := roleID(t, svc, domain.RoleAdmin)
	user := roleID(t, svc, domain.RoleUser)

	_, err := svc.Roles.GrantRole(ctx, u.ID, u.ID, domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.Roles.SetRoles(ctx, u.ID, u.ID, []uint{user, admin})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// demoted admins lose the right at once
	_, err = svc.Roles.SetRoles(ctx, actor.ID, actor.ID, []uint{user})
	require.NoError(t, err)
	_, err = svc.Roles.SetRoles(ctx, actor.ID, actor.ID, []uint{user, admin})
	var ae *domain.AuthorizationError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "set roles", ae.Action)
	_, err = svc.Roles.GrantRole(ctx, actor.ID, actor.ID, domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	ok, err := svc.Roles.HasRole(ctx, actor.ID, domain.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRoles_AssignDefaultRoleKeepsExisting(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	admin := mustAdmin(t, svc, "admin@example.com")

	require.NoError(t, svc.Roles.AssignDefaultRole(ctx, admin.ID))
	ok, err := svc.Roles.HasRole(ctx, admin.ID, domain.RoleUser)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, svc.Roles.AssignDefaultRole(ctx, 999), domain.ErrNotFound)
}

func TestRoles_CachedProfileSeesGrant(t *testing.T) {
	mr := miniredis.RunT(t)
	svc := New(repo.NewStore(testutil.NewDB(t)), Options{
		Hasher: testutil.FastHasher(),
		Cache:  cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})),
		Logger: zaptest.NewLogger(t),
	})
	ctx := context.Background()
	actor := mustAdmin(t, svc, "admin@example.com")
	u := mustCreate(t, svc, "U", "u@example.com")

	p, err := svc.Identity.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.RoleUser}, p.User.RoleNames())
	assert.True(t, mr.Exists("microblog:"+profileKey(u.ID)))

	_, err = svc.Roles.GrantRole(ctx, actor.ID, u.ID, domain.RoleAdmin)
	require.NoError(t, err)

	p, err = svc.Identity.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{domain.RoleUser, domain.RoleAdmin}, p.User.RoleNames())
}

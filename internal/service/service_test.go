package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"go-gin-gorm-microblog/internal/domain"
	"go-gin-gorm-microblog/internal/repo"
	"go-gin-gorm-microblog/internal/testutil"
)

const testPassword = "foobar"

func newTestServices(t *testing.T) (*Services, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	svc := New(repo.NewStore(db), Options{
		Hasher: testutil.FastHasher(),
		Now:    testutil.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).Now,
		Logger: zaptest.NewLogger(t),
	})
	return svc, db
}

func signup(name, email string) SignupInput {
	return SignupInput{Name: name, Email: email, Password: testPassword, PasswordConfirmation: testPassword}
}

func mustCreate(t *testing.T, svc *Services, name, email string) *domain.User {
	t.Helper()
	u, err := svc.Identity.Create(context.Background(), signup(name, email))
	require.NoError(t, err)
	return u
}

func roleID(t *testing.T, svc *Services, name string) uint {
	t.Helper()
	roles, err := svc.Roles.List(context.Background())
	require.NoError(t, err)
	for _, r := range roles {
		if r.Name == name {
			return r.ID
		}
	}
	t.Fatalf("role %q not seeded", name)
	return 0
}

func mustAdmin(t *testing.T, svc *Services, email string) *domain.User {
	t.Helper()
	in := signup("Admin", email)
	in.RoleIDs = []uint{roleID(t, svc, domain.RoleAdmin)}
	u, err := svc.Identity.Create(context.Background(), in)
	require.NoError(t, err)
	return u
}

func contents(posts []domain.Micropost) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Content
	}
	return out
}

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"go-gin-gorm-microblog/internal/domain"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewGorm(Opts{
		Driver:       "sqlite",
		DSN:          "file:" + t.Name() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	return db
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestMigrate_SeedsRolesOnce(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db))

	var roles []domain.Role
	require.NoError(t, db.Order("id").Find(&roles).Error)
	require.Len(t, roles, 2)
	assert.Equal(t, domain.RoleUser, roles[0].Name)
	assert.Equal(t, domain.RoleAdmin, roles[1].Name)
}

func TestPing_PropagatesStoreFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	down := errors.New("connection refused")
	mock.ExpectPing().WillReturnError(down)
	assert.ErrorIs(t, Ping(context.Background(), db), down)

	mock.ExpectPing()
	assert.NoError(t, Ping(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		in, user, pass, want string
	}{
		{"", "", "", ""},
		{"root:pw@tcp(127.0.0.1:3306)/app?parseTime=true", "", "", "root:pw@tcp(127.0.0.1:3306)/app?parseTime=true"},
		{"mysql://root:pw@db:3306/app", "", "", "root:pw@tcp(db:3306)/app?charset=utf8mb4&parseTime=true"},
		{"jdbc:mysql://db:3306/app?useSSL=false&characterEncoding=utf8", "u", "p", "u:p@tcp(db:3306)/app?charset=utf8&parseTime=true&tls=false"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, normalizeMySQLDSN(tc.in, tc.user, tc.pass), tc.in)
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "root:****@tcp(db:3306)/app", maskDSN("root:secret@tcp(db:3306)/app"))
	assert.Equal(t, "db:3306/app", maskDSN("db:3306/app"))
}

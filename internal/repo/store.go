package repo

import (
	"context"

	"gorm.io/gorm"

	"go-gin-gorm-microblog/internal/domain"
)

var _ domain.Store = (*Store)(nil)

type Store struct {
	db *gorm.DB

	users         *UserRepo
	roles         *RoleRepo
	relationships *RelationshipRepo
	microposts    *MicropostRepo
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		users:         NewUserRepo(db),
		roles:         NewRoleRepo(db),
		relationships: NewRelationshipRepo(db),
		microposts:    NewMicropostRepo(db),
	}
}

func (s *Store) Users() domain.UserRepository                 { return s.users }
func (s *Store) Roles() domain.RoleRepository                 { return s.roles }
func (s *Store) Relationships() domain.RelationshipRepository { return s.relationships }
func (s *Store) Microposts() domain.MicropostRepository       { return s.microposts }

// InTx runs fn against a Store bound to one transaction. Nested calls become
// savepoints.
func (s *Store) InTx(ctx context.Context, fn func(domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *gorm.DB { return s.db }

func paginate(q *gorm.DB, p domain.Page) *gorm.DB {
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	return q
}

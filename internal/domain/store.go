package domain

import "context"

// Store bundles the repositories over one store session. InTx hands fn a
// Store whose repositories all run inside the same transaction.
type Store interface {
	Users() UserRepository
	Roles() RoleRepository
	Relationships() RelationshipRepository
	Microposts() MicropostRepository
	InTx(ctx context.Context, fn func(s Store) error) error
}

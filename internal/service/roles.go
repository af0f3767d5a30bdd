package service

import (
	"context"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"go-gin-gorm-microblog/internal/core/cache"
	"go-gin-gorm-microblog/internal/domain"
)

// RoleService is the role registry: a fixed set of named roles and the
// user memberships that reference them.
type RoleService struct {
	store domain.Store
	cache *cache.Cache
	log   *zap.Logger
}

func NewRoleService(store domain.Store, c *cache.Cache, log *zap.Logger) *RoleService {
	return &RoleService{store: store, cache: c, log: log}
}

// HasRole matches on the normalized name, so "Admin" and "admin" agree.
func (s *RoleService) HasRole(ctx context.Context, userID uint, name string) (bool, error) {
	return s.store.Roles().HasRole(ctx, userID, name)
}

func (s *RoleService) RolesOf(ctx context.Context, userID uint) ([]domain.Role, error) {
	return s.store.Roles().RolesOf(ctx, userID)
}

func (s *RoleService) List(ctx context.Context) ([]domain.Role, error) {
	return s.store.Roles().List(ctx)
}

// AssignDefaultRole grants the default role only when the user has none.
func (s *RoleService) AssignDefaultRole(ctx context.Context, userID uint) error {
	return s.store.InTx(ctx, func(tx domain.Store) error {
		if _, err := tx.Users().FindByID(ctx, userID); err != nil {
			return err
		}
		_, err := assignDefaultRole(ctx, tx, userID)
		return err
	})
}

func assignDefaultRole(ctx context.Context, tx domain.Store, userID uint) ([]domain.Role, error) {
	current, err := tx.Roles().RolesOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(current) > 0 {
		return current, nil
	}
	role, err := tx.Roles().FindByName(ctx, domain.DefaultRole)
	if err != nil {
		return nil, err
	}
	if err := tx.Roles().AddMembership(ctx, userID, role.ID); err != nil {
		return nil, err
	}
	return []domain.Role{*role}, nil
}

// RequireAdmin checks the actor's admin role against the store, so a token
// minted before a demotion grants nothing.
func (s *RoleService) RequireAdmin(ctx context.Context, actorID uint, action string) error {
	ok, err := s.HasRole(ctx, actorID, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.AuthorizationError{Action: action, Reason: "admin role required"}
	}
	return nil
}

// SetRoles replaces the whole membership set in one transaction. The actor
// must be an admin.
func (s *RoleService) SetRoles(ctx context.Context, actorID, userID uint, roleIDs []uint) ([]domain.Role, error) {
	if err := s.RequireAdmin(ctx, actorID, "set roles"); err != nil {
		return nil, err
	}
	var roles []domain.Role
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		if _, err := tx.Users().FindByID(ctx, userID); err != nil {
			return err
		}
		var err error
		roles, err = setRoles(ctx, tx, userID, roleIDs)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, profileKey(userID))
	s.log.Info("roles replaced", zap.Uint("user_id", userID), zap.Uints("role_ids", roleIDs), zap.Uint("by", actorID))
	return roles, nil
}

func setRoles(ctx context.Context, tx domain.Store, userID uint, roleIDs []uint) ([]domain.Role, error) {
	ids := dedupIDs(roleIDs)
	if len(ids) == 0 {
		return nil, domain.NewValidationError(domain.FieldError{Field: "role_ids", Rule: "required"})
	}
	roles, err := tx.Roles().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(roles) != len(ids) {
		return nil, &domain.NotFoundError{Resource: "role", ID: missingID(ids, roles)}
	}
	if err := tx.Roles().ReplaceMemberships(ctx, userID, ids); err != nil {
		return nil, err
	}
	return roles, nil
}

// GrantRole adds one membership; holding it already is a conflict. The
// actor must be an admin.
func (s *RoleService) GrantRole(ctx context.Context, actorID, userID uint, name string) (*domain.Role, error) {
	if err := s.RequireAdmin(ctx, actorID, "grant role"); err != nil {
		return nil, err
	}
	var role *domain.Role
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		if _, err := tx.Users().FindByID(ctx, userID); err != nil {
			return err
		}
		var err error
		if role, err = tx.Roles().FindByName(ctx, name); err != nil {
			return err
		}
		return tx.Roles().AddMembership(ctx, userID, role.ID)
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, profileKey(userID))
	s.log.Info("role granted", zap.Uint("user_id", userID), zap.String("role", role.Name), zap.Uint("by", actorID))
	return role, nil
}

func dedupIDs(ids []uint) []uint {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func missingID(ids []uint, found []domain.Role) uint {
	for _, id := range ids {
		if !slices.ContainsFunc(found, func(r domain.Role) bool { return r.ID == id }) {
			return id
		}
	}
	return 0
}

func uintStr(v uint) string { return strconv.FormatUint(uint64(v), 10) }

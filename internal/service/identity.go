package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go-gin-gorm-microblog/internal/core/cache"
	"go-gin-gorm-microblog/internal/core/metrics"
	"go-gin-gorm-microblog/internal/domain"
	"go-gin-gorm-microblog/internal/validation"
	"go-gin-gorm-microblog/pkg/utils"
)

type SignupInput struct {
	Name                 string `json:"name" validate:"nonblank,max=50"`
	Email                string `json:"email" validate:"nonblank,simple_email,max=191"`
	Password             string `json:"password" validate:"required,min=6,max=40,bcrypt_len"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	// RoleIDs empty means the default role.
	RoleIDs []uint `json:"role_ids" validate:"-"`
}

// UpdateInput carries only the fields being changed. Password and its
// confirmation are checked together whenever either is present.
type UpdateInput struct {
	Name                 *string `json:"name"`
	Email                *string `json:"email"`
	Password             *string `json:"password"`
	PasswordConfirmation *string `json:"password_confirmation"`
}

type profileForm struct {
	Name  string `json:"name" validate:"nonblank,max=50"`
	Email string `json:"email" validate:"nonblank,simple_email,max=191"`
}

type credentialForm struct {
	Password             string `json:"password" validate:"required,min=6,max=40,bcrypt_len"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// Profile is a user with roles and relationship counters.
type Profile struct {
	User           domain.User `json:"user"`
	MicropostCount int64       `json:"micropostCount"`
	Following      int64       `json:"following"`
	Followers      int64       `json:"followers"`
}

// IdentityService is the identity store: registration, credential checks,
// validated updates and admin destruction with cascades.
type IdentityService struct {
	store   domain.Store
	roles   *RoleService
	graph   *GraphService
	content *ContentService
	hasher  utils.Hasher
	tokens  func() (string, error)
	cache   *cache.Cache
	ttl     time.Duration
	log     *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewIdentityService(store domain.Store, roles *RoleService, graph *GraphService, content *ContentService, o Options) *IdentityService {
	return &IdentityService{
		store:   store,
		roles:   roles,
		graph:   graph,
		content: content,
		hasher:  o.Hasher,
		tokens:  o.Tokens,
		cache:   o.Cache,
		ttl:     o.ProfileTTL,
		log:     o.Logger,
	}
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Create validates, hashes and persists a new user together with its role
// memberships in one transaction.
func (s *IdentityService) Create(ctx context.Context, in SignupInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens()
	if err != nil {
		return nil, err
	}
	u := &domain.User{Name: in.Name, Email: in.Email, PasswordHash: hash, RememberToken: token}

	err = s.store.InTx(ctx, func(tx domain.Store) error {
		if err := tx.Users().Create(ctx, u); err != nil {
			return err
		}
		var err error
		if len(in.RoleIDs) == 0 {
			u.Roles, err = assignDefaultRole(ctx, tx, u.ID)
		} else {
			u.Roles, err = setRoles(ctx, tx, u.ID, in.RoleIDs)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.UsersCreated.Inc()
	s.log.Info("user created", zap.Uint("user_id", u.ID), zap.Strings("roles", u.RoleNames()))
	return u, nil
}

// Authenticate never says which of email or password was wrong.
func (s *IdentityService) Authenticate(ctx context.Context, email, raw string) (*domain.User, error) {
	u, err := s.store.Users().FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		// burn a comparison so both failures cost the same
		s.hasher.Compare(s.dummy(), raw)
		metrics.AuthFailures.Inc()
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Compare(u.PasswordHash, raw) {
		metrics.AuthFailures.Inc()
		return nil, domain.ErrInvalidCredentials
	}
	return s.withRoles(ctx, u)
}

func (s *IdentityService) AuthenticateRememberToken(ctx context.Context, token string) (*domain.User, error) {
	u, err := s.store.Users().FindByRememberToken(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		metrics.AuthFailures.Inc()
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return s.withRoles(ctx, u)
}

func (s *IdentityService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("not-a-real-password")
	})
	return s.dummyHash
}

func (s *IdentityService) withRoles(ctx context.Context, u *domain.User) (*domain.User, error) {
	roles, err := s.store.Roles().RolesOf(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return u, nil
}

func (s *IdentityService) Get(ctx context.Context, id uint) (*domain.User, error) {
	u, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withRoles(ctx, u)
}

func (s *IdentityService) List(ctx context.Context, p domain.Page) ([]domain.User, int64, error) {
	return s.store.Users().List(ctx, p)
}

// Update re-validates every stored constraint and issues a new remember
// token on each save. Users may only update themselves.
func (s *IdentityService) Update(ctx context.Context, actorID, userID uint, in UpdateInput) (*domain.User, error) {
	if actorID != userID {
		return nil, &domain.AuthorizationError{Action: "update user", Reason: "not your account"}
	}
	u, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = normalizeEmail(*in.Email)
	}
	forms := []any{profileForm{Name: u.Name, Email: u.Email}}
	changePassword := in.Password != nil || in.PasswordConfirmation != nil
	if changePassword {
		forms = append(forms, credentialForm{Password: deref(in.Password), PasswordConfirmation: deref(in.PasswordConfirmation)})
	}
	if err := validation.All(forms...); err != nil {
		return nil, err
	}
	if changePassword {
		if u.PasswordHash, err = s.hasher.Hash(*in.Password); err != nil {
			return nil, err
		}
	}
	if err := s.save(ctx, s.store, u); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, profileKey(u.ID))
	s.log.Info("user updated", zap.Uint("user_id", u.ID))
	return s.withRoles(ctx, u)
}

func (s *IdentityService) save(ctx context.Context, st domain.Store, u *domain.User) error {
	token, err := s.tokens()
	if err != nil {
		return err
	}
	u.RememberToken = token
	return st.Users().Update(ctx, u)
}

// Destroy deletes target and everything it owns. The actor must be an admin
// and may not destroy itself.
func (s *IdentityService) Destroy(ctx context.Context, actorID, targetID uint) error {
	if err := s.roles.RequireAdmin(ctx, actorID, "destroy user"); err != nil {
		return err
	}
	if actorID == targetID {
		return &domain.AuthorizationError{Action: "destroy user", Reason: "cannot destroy yourself"}
	}
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		if _, err := tx.Users().FindByID(ctx, targetID); err != nil {
			return err
		}
		if err := s.content.DeleteAllByUser(ctx, tx, targetID); err != nil {
			return err
		}
		if err := s.graph.RemoveAllEdges(ctx, tx, targetID); err != nil {
			return err
		}
		if err := tx.Roles().DeleteMemberships(ctx, targetID); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, targetID)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, profileKey(targetID))
	metrics.UsersDestroyed.Inc()
	s.log.Info("user destroyed", zap.Uint("user_id", targetID), zap.Uint("by", actorID))
	return nil
}

// Profile serves the user record from cache and the counters live.
func (s *IdentityService) Profile(ctx context.Context, id uint) (*Profile, error) {
	u, err := cache.GetOrLoadJSON(ctx, s.cache, profileKey(id), s.ttl, func(ctx context.Context) (*domain.User, error) {
		return s.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	p := &Profile{User: *u}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		p.MicropostCount, err = s.store.Microposts().CountByUser(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		p.Following, err = s.store.Relationships().CountFollowing(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		p.Followers, err = s.store.Relationships().CountFollowers(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return p, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/identity/domain"
	appLogger "github.com/fastygo/identity/pkg/logger"
)

// Users is the part of the user store the administrative use cases need.
type Users interface {
	Create(ctx context.Context, user *domain.User) (domain.Result, error)
	Update(ctx context.Context, user *domain.User) (domain.Result, error)
	Delete(ctx context.Context, user *domain.User) (domain.Result, error)
	FindByName(ctx context.Context, normalizedUserName string) (*domain.User, error)
	GetUsersInRole(ctx context.Context, roleName string) ([]*domain.User, error)
}

// Roles is the part of the role store the administrative use cases need.
type Roles interface {
	Create(ctx context.Context, role *domain.Role) (domain.Result, error)
	Update(ctx context.Context, role *domain.Role) (domain.Result, error)
	Delete(ctx context.Context, role *domain.Role) (domain.Result, error)
	FindByName(ctx context.Context, normalizedRoleName string) (*domain.Role, error)
}

type UseCase struct {
	users  Users
	roles  Roles
	logger *zap.Logger
}

func New(users Users, roles Roles, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		roles:  roles,
		logger: logger,
	}
}

// Normalize produces the lookup key stored as the normalized name.
func Normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// NewUser describes a user to create.
type NewUser struct {
	Name         string
	PasswordHash string
	Lockout      bool
}

func (uc *UseCase) CreateUser(ctx context.Context, in NewUser) (*domain.User, error) {
	user, err := domain.NewUser(in.Name)
	if err != nil {
		return nil, err
	}
	if err := user.SetNormalizedUserName(Normalize(in.Name)); err != nil {
		return nil, err
	}
	if in.PasswordHash != "" {
		if err := user.SetPasswordHash(in.PasswordHash); err != nil {
			return nil, err
		}
	}
	if in.Lockout {
		user.EnableLockout()
	}
	if err := uc.persisted(ctx, "create user", user.ID(), func() (domain.Result, error) {
		return uc.users.Create(ctx, user)
	}); err != nil {
		return nil, err
	}
	return user, nil
}

// User returns the active user with the given name or a NOT_FOUND error.
func (uc *UseCase) User(ctx context.Context, name string) (*domain.User, error) {
	user, err := uc.users.FindByName(ctx, Normalize(name))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewError(domain.ErrCodeNotFound, fmt.Sprintf("user %q not found", name))
	}
	return user, nil
}

func (uc *UseCase) DeleteUser(ctx context.Context, name string) error {
	return uc.changeUser(ctx, "delete user", name, func(user *domain.User) (domain.Result, error) {
		return uc.users.Delete(ctx, user)
	})
}

// LockUser locks the user out for d from now.
func (uc *UseCase) LockUser(ctx context.Context, name string, d time.Duration) error {
	if d <= 0 {
		return domain.WrapError(domain.ErrCodeInvalid, "invalid argument", fmt.Errorf("lockout duration must be positive, got %s", d))
	}
	return uc.changeUser(ctx, "lock user", name, func(user *domain.User) (domain.Result, error) {
		if err := user.LockUntil(time.Now().Add(d)); err != nil {
			return domain.Result{}, err
		}
		return uc.users.Update(ctx, user)
	})
}

// UnlockUser lifts the lockout and resets the failed-access counter.
func (uc *UseCase) UnlockUser(ctx context.Context, name string) error {
	return uc.changeUser(ctx, "unlock user", name, func(user *domain.User) (domain.Result, error) {
		user.ClearLockout()
		user.ResetAccessFailedCount()
		return uc.users.Update(ctx, user)
	})
}

func (uc *UseCase) CreateRole(ctx context.Context, name string) (*domain.Role, error) {
	role, err := domain.NewRole(name)
	if err != nil {
		return nil, err
	}
	if err := role.SetNormalizedRoleName(Normalize(name)); err != nil {
		return nil, err
	}
	if err := uc.persisted(ctx, "create role", role.ID(), func() (domain.Result, error) {
		return uc.roles.Create(ctx, role)
	}); err != nil {
		return nil, err
	}
	return role, nil
}

// Role returns the active role and the active users holding it.
func (uc *UseCase) Role(ctx context.Context, name string) (*domain.Role, []*domain.User, error) {
	role, err := uc.role(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	members, err := uc.users.GetUsersInRole(ctx, role.RoleName())
	if err != nil {
		return nil, nil, err
	}
	return role, members, nil
}

func (uc *UseCase) DeleteRole(ctx context.Context, name string) error {
	return uc.changeRole(ctx, "delete role", name, func(role *domain.Role) (domain.Result, error) {
		return uc.roles.Delete(ctx, role)
	})
}

func (uc *UseCase) AddRoleClaim(ctx context.Context, name string, claim domain.Claim) error {
	return uc.changeRole(ctx, "add role claim", name, func(role *domain.Role) (domain.Result, error) {
		if err := role.AddClaim(claim); err != nil {
			return domain.Result{}, err
		}
		return uc.roles.Update(ctx, role)
	})
}

func (uc *UseCase) RemoveRoleClaim(ctx context.Context, name string, claim domain.Claim) error {
	return uc.changeRole(ctx, "remove role claim", name, func(role *domain.Role) (domain.Result, error) {
		if err := role.RemoveClaim(claim); err != nil {
			return domain.Result{}, err
		}
		return uc.roles.Update(ctx, role)
	})
}

func (uc *UseCase) role(ctx context.Context, name string) (*domain.Role, error) {
	role, err := uc.roles.FindByName(ctx, Normalize(name))
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.NewError(domain.ErrCodeNotFound, fmt.Sprintf("role %q not found", name))
	}
	return role, nil
}

func (uc *UseCase) changeUser(ctx context.Context, op, name string, fn func(*domain.User) (domain.Result, error)) error {
	user, err := uc.User(ctx, name)
	if err != nil {
		return err
	}
	return uc.persisted(ctx, op, user.ID(), func() (domain.Result, error) { return fn(user) })
}

func (uc *UseCase) changeRole(ctx context.Context, op, name string, fn func(*domain.Role) (domain.Result, error)) error {
	role, err := uc.role(ctx, name)
	if err != nil {
		return err
	}
	return uc.persisted(ctx, op, role.ID(), func() (domain.Result, error) { return fn(role) })
}

// persisted folds a failed Result into an error so callers see one channel.
func (uc *UseCase) persisted(ctx context.Context, op, id string, write func() (domain.Result, error)) error {
	res, err := write()
	if err != nil {
		return err
	}
	if !res.Succeeded {
		appLogger.WithRequestID(ctx, uc.logger).Warn("write rejected",
			zap.String("op", op), zap.String("id", id), zap.Error(res.Err()))
		return res.Err()
	}
	appLogger.WithRequestID(ctx, uc.logger).Info(op, zap.String("id", id))
	return nil
}

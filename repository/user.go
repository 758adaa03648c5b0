package repository

import (
	"context"
	"time"

	"github.com/fastygo/identity/domain"
)

// UserStore is the core persistence contract for users. Lookups only see
// active users: a soft-deleted user and a missing one both yield nil, nil.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) (domain.Result, error)
	Update(ctx context.Context, user *domain.User) (domain.Result, error)
	Delete(ctx context.Context, user *domain.User) (domain.Result, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByName(ctx context.Context, normalizedUserName string) (*domain.User, error)

	GetUserID(ctx context.Context, user *domain.User) (string, error)
	GetUserName(ctx context.Context, user *domain.User) (string, error)
	SetUserName(ctx context.Context, user *domain.User, userName string) error
	GetNormalizedUserName(ctx context.Context, user *domain.User) (string, error)
	SetNormalizedUserName(ctx context.Context, user *domain.User, normalized string) error
}

type UserClaimStore interface {
	GetClaims(ctx context.Context, user *domain.User) ([]domain.Claim, error)
	AddClaims(ctx context.Context, user *domain.User, claims []domain.Claim) error
	RemoveClaims(ctx context.Context, user *domain.User, claims []domain.Claim) error
	ReplaceClaim(ctx context.Context, user *domain.User, claim, replacement domain.Claim) error
	GetUsersForClaim(ctx context.Context, claim domain.Claim) ([]*domain.User, error)
}

type UserLoginStore interface {
	AddLogin(ctx context.Context, user *domain.User, login domain.Login) error
	RemoveLogin(ctx context.Context, user *domain.User, loginProvider, providerKey string) error
	GetLogins(ctx context.Context, user *domain.User) ([]domain.Login, error)
	FindByLogin(ctx context.Context, loginProvider, providerKey string) (*domain.User, error)
}

type UserLockoutStore interface {
	GetLockoutEnabled(ctx context.Context, user *domain.User) (bool, error)
	SetLockoutEnabled(ctx context.Context, user *domain.User, enabled bool) error
	GetLockoutEndDate(ctx context.Context, user *domain.User) (*time.Time, error)
	SetLockoutEndDate(ctx context.Context, user *domain.User, end *time.Time) error
	GetAccessFailedCount(ctx context.Context, user *domain.User) (int, error)
	IncrementAccessFailedCount(ctx context.Context, user *domain.User) (int, error)
	ResetAccessFailedCount(ctx context.Context, user *domain.User) error
}

type UserPasswordStore interface {
	GetPasswordHash(ctx context.Context, user *domain.User) (string, error)
	SetPasswordHash(ctx context.Context, user *domain.User, hash string) error
	HasPassword(ctx context.Context, user *domain.User) (bool, error)
}

type UserSecurityStampStore interface {
	GetSecurityStamp(ctx context.Context, user *domain.User) (string, error)
	SetSecurityStamp(ctx context.Context, user *domain.User, stamp string) error
}

type UserRoleStore interface {
	AddToRole(ctx context.Context, user *domain.User, roleName string) error
	RemoveFromRole(ctx context.Context, user *domain.User, roleName string) error
	GetRoles(ctx context.Context, user *domain.User) ([]string, error)
	IsInRole(ctx context.Context, user *domain.User, roleName string) (bool, error)
	GetUsersInRole(ctx context.Context, roleName string) ([]*domain.User, error)
}

// UserProfileStore attaches opaque application payloads to a user. It is an
// extension point outside the framework's native contracts; reads go
// through domain.GetProfile.
type UserProfileStore interface {
	SetProfile(ctx context.Context, user *domain.User, key string, value any) error
}

// UserRepository is every user capability backed by one store.
type UserRepository interface {
	UserStore
	UserClaimStore
	UserLoginStore
	UserLockoutStore
	UserPasswordStore
	UserSecurityStampStore
	UserRoleStore
	UserProfileStore
}

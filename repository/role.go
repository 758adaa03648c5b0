package repository

import (
	"context"

	"github.com/fastygo/identity/domain"
)

// RoleStore is the core persistence contract for roles.
type RoleStore interface {
	Create(ctx context.Context, role *domain.Role) (domain.Result, error)
	Update(ctx context.Context, role *domain.Role) (domain.Result, error)
	Delete(ctx context.Context, role *domain.Role) (domain.Result, error)
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	FindByName(ctx context.Context, normalizedRoleName string) (*domain.Role, error)

	GetRoleID(ctx context.Context, role *domain.Role) (string, error)
	GetRoleName(ctx context.Context, role *domain.Role) (string, error)
	SetRoleName(ctx context.Context, role *domain.Role, roleName string) error
	GetNormalizedRoleName(ctx context.Context, role *domain.Role) (string, error)
	SetNormalizedRoleName(ctx context.Context, role *domain.Role, normalized string) error
}

type RoleClaimStore interface {
	GetClaims(ctx context.Context, role *domain.Role) ([]domain.Claim, error)
	AddClaim(ctx context.Context, role *domain.Role, claim domain.Claim) error
	RemoveClaim(ctx context.Context, role *domain.Role, claim domain.Claim) error
}

// RoleRepository is every role capability backed by one store.
type RoleRepository interface {
	RoleStore
	RoleClaimStore
}

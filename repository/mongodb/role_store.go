package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fastygo/identity/domain"
	"github.com/fastygo/identity/repository"
)

const (
	RoleNameIndex           = "identity_role_unique"
	NormalizedRoleNameIndex = "identity_normalized_role_unique"
)

func roleIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: fieldRoleName, Value: 1}},
			Options: options.Index().
				SetName(RoleNameIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.D{activeOnly}),
		},
		{
			Keys: bson.D{{Key: fieldNormalizedRoleName, Value: 1}},
			Options: options.Index().
				SetName(NormalizedRoleNameIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.D{
					activeOnly,
					{Key: fieldNormalizedRoleName, Value: bson.D{{Key: "$exists", Value: true}}},
				}),
		},
	}
}

// RoleStore persists roles in one MongoDB collection.
type RoleStore struct {
	records *records[roleDocument]
}

var _ repository.RoleRepository = (*RoleStore)(nil)

// NewRoleStore binds to the named collection and blocks until its indices exist.
func NewRoleStore(ctx context.Context, db *mongo.Database, collection string, opts ...Option) (*RoleStore, error) {
	rec, err := newRecords[roleDocument](db, collection, roleIndexes(), domain.ResultError{
		Code:        domain.ResultDuplicateRoleName,
		Description: "role name is already taken",
	}, newSettings(opts))
	if err != nil {
		return nil, err
	}
	if err := rec.ready(ctx); err != nil {
		return nil, err
	}
	return &RoleStore{records: rec}, nil
}

func (s *RoleStore) Ready() bool { return s.records.Ready() }

func (s *RoleStore) Create(ctx context.Context, role *domain.Role) (domain.Result, error) {
	if role == nil {
		return domain.Result{}, domain.MissingArgument("role")
	}
	return s.records.insert(ctx, role.ID(), newRoleDocument(role))
}

func (s *RoleStore) Update(ctx context.Context, role *domain.Role) (domain.Result, error) {
	if role == nil {
		return domain.Result{}, domain.MissingArgument("role")
	}
	if role.IsDeleted() {
		return domain.Result{}, domain.WrapError(domain.ErrCodeInvalidState, domain.ErrAlreadyDeleted.Message,
			fmt.Errorf("role %q is deleted", role.ID()))
	}
	return s.records.replaceActive(ctx, role.ID(), newRoleDocument(role))
}

func (s *RoleStore) Delete(ctx context.Context, role *domain.Role) (domain.Result, error) {
	if role == nil {
		return domain.Result{}, domain.MissingArgument("role")
	}
	if err := ctx.Err(); err != nil {
		return domain.Result{}, domain.Canceled(err)
	}
	if err := role.Delete(); err != nil {
		return domain.Result{}, err
	}
	return s.records.markDeleted(ctx, role.ID(), role.DeleteOn().Instant())
}

func (s *RoleStore) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	if id == "" {
		return nil, domain.MissingArgument("role id")
	}
	return s.findOne(ctx, activeFilter(id))
}

func (s *RoleStore) FindByName(ctx context.Context, normalizedRoleName string) (*domain.Role, error) {
	if normalizedRoleName == "" {
		return nil, domain.MissingArgument("normalized role name")
	}
	return s.findOne(ctx, active(bson.E{Key: fieldNormalizedRoleName, Value: normalizedRoleName}))
}

func (s *RoleStore) findOne(ctx context.Context, filter bson.D) (*domain.Role, error) {
	doc, err := s.records.findOne(ctx, filter)
	if err != nil || doc == nil {
		return nil, err
	}
	r, err := doc.toDomain()
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "corrupt role document "+doc.ID, err)
	}
	return r, nil
}

func (s *RoleStore) GetRoleID(_ context.Context, role *domain.Role) (string, error) {
	if role == nil {
		return "", domain.MissingArgument("role")
	}
	return role.ID(), nil
}

func (s *RoleStore) GetRoleName(_ context.Context, role *domain.Role) (string, error) {
	if role == nil {
		return "", domain.MissingArgument("role")
	}
	return role.RoleName(), nil
}

func (s *RoleStore) SetRoleName(_ context.Context, role *domain.Role, roleName string) error {
	if role == nil {
		return domain.MissingArgument("role")
	}
	return role.SetRoleName(roleName)
}

func (s *RoleStore) GetNormalizedRoleName(_ context.Context, role *domain.Role) (string, error) {
	if role == nil {
		return "", domain.MissingArgument("role")
	}
	return role.NormalizedRoleName(), nil
}

func (s *RoleStore) SetNormalizedRoleName(_ context.Context, role *domain.Role, normalized string) error {
	if role == nil {
		return domain.MissingArgument("role")
	}
	return role.SetNormalizedRoleName(normalized)
}

func (s *RoleStore) GetClaims(_ context.Context, role *domain.Role) ([]domain.Claim, error) {
	if role == nil {
		return nil, domain.MissingArgument("role")
	}
	return role.Claims(), nil
}

func (s *RoleStore) AddClaim(_ context.Context, role *domain.Role, claim domain.Claim) error {
	if role == nil {
		return domain.MissingArgument("role")
	}
	return role.AddClaim(claim)
}

func (s *RoleStore) RemoveClaim(_ context.Context, role *domain.Role, claim domain.Claim) error {
	if role == nil {
		return domain.MissingArgument("role")
	}
	return role.RemoveClaim(claim)
}

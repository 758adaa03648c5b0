package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fastygo/identity/domain"
	"github.com/fastygo/identity/repository"
)

// Index names created on the user collection.
const (
	UserNameIndex           = "identity_username_unique"
	NormalizedUserNameIndex = "identity_normalized_username_unique"
	UserLoginIndex          = "identity_user_logins"
	UserClaimIndex          = "identity_user_claims"
	UserRoleIndex           = "identity_user_roles"
)

// activeOnly restricts a unique index to records that are not soft-deleted.
var activeOnly = bson.E{Key: fieldDeleteOn, Value: bson.D{{Key: "$type", Value: "null"}}}

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: fieldUserName, Value: 1}},
			Options: options.Index().
				SetName(UserNameIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.D{activeOnly}),
		},
		{
			Keys: bson.D{{Key: fieldNormalizedUserName, Value: 1}},
			Options: options.Index().
				SetName(NormalizedUserNameIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.D{
					activeOnly,
					{Key: fieldNormalizedUserName, Value: bson.D{{Key: "$exists", Value: true}}},
				}),
		},
		{
			Keys: bson.D{
				{Key: fieldLogins + "." + fieldLoginProvider, Value: 1},
				{Key: fieldLogins + "." + fieldProviderKey, Value: 1},
			},
			Options: options.Index().SetName(UserLoginIndex),
		},
		{
			Keys: bson.D{
				{Key: fieldClaims + "." + fieldClaimType, Value: 1},
				{Key: fieldClaims + "." + fieldClaimValue, Value: 1},
			},
			Options: options.Index().SetName(UserClaimIndex),
		},
		{
			Keys:    bson.D{{Key: fieldRoles, Value: 1}},
			Options: options.Index().SetName(UserRoleIndex),
		},
	}
}

// UserStore persists users in one MongoDB collection and implements every
// user capability contract.
type UserStore struct {
	records *records[userDocument]
}

var _ repository.UserRepository = (*UserStore)(nil)

// NewUserStore binds to the named collection and blocks until its indices
// exist. Auxiliary indices can be supplied with WithIndexes.
func NewUserStore(ctx context.Context, db *mongo.Database, collection string, opts ...Option) (*UserStore, error) {
	rec, err := newRecords[userDocument](db, collection, userIndexes(), domain.ResultError{
		Code:        domain.ResultDuplicateUserName,
		Description: "user name is already taken",
	}, newSettings(opts))
	if err != nil {
		return nil, err
	}
	if err := rec.ready(ctx); err != nil {
		return nil, err
	}
	return &UserStore{records: rec}, nil
}

// Ready reports whether index bootstrap completed.
func (s *UserStore) Ready() bool { return s.records.Ready() }

func (s *UserStore) Create(ctx context.Context, user *domain.User) (domain.Result, error) {
	if user == nil {
		return domain.Result{}, domain.MissingArgument("user")
	}
	return s.records.insert(ctx, user.ID(), newUserDocument(user))
}

// Update replaces the stored user. It fails with a concurrency result when
// the stored record is gone or was soft-deleted by someone else.
func (s *UserStore) Update(ctx context.Context, user *domain.User) (domain.Result, error) {
	if user == nil {
		return domain.Result{}, domain.MissingArgument("user")
	}
	if user.IsDeleted() {
		return domain.Result{}, domain.WrapError(domain.ErrCodeInvalidState, domain.ErrAlreadyDeleted.Message,
			fmt.Errorf("user %q is deleted", user.ID()))
	}
	return s.records.replaceActive(ctx, user.ID(), newUserDocument(user))
}

// Delete soft-deletes the user in memory, then persists only the marker.
func (s *UserStore) Delete(ctx context.Context, user *domain.User) (domain.Result, error) {
	if user == nil {
		return domain.Result{}, domain.MissingArgument("user")
	}
	if err := ctx.Err(); err != nil {
		return domain.Result{}, domain.Canceled(err)
	}
	if err := user.Delete(); err != nil {
		return domain.Result{}, err
	}
	return s.records.markDeleted(ctx, user.ID(), user.DeleteOn().Instant())
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.MissingArgument("user id")
	}
	return s.findOne(ctx, activeFilter(id))
}

func (s *UserStore) FindByName(ctx context.Context, normalizedUserName string) (*domain.User, error) {
	if normalizedUserName == "" {
		return nil, domain.MissingArgument("normalized user name")
	}
	return s.findOne(ctx, active(bson.E{Key: fieldNormalizedUserName, Value: normalizedUserName}))
}

func (s *UserStore) FindByLogin(ctx context.Context, loginProvider, providerKey string) (*domain.User, error) {
	if loginProvider == "" {
		return nil, domain.MissingArgument("login provider")
	}
	if providerKey == "" {
		return nil, domain.MissingArgument("provider key")
	}
	return s.findOne(ctx, active(bson.E{Key: fieldLogins, Value: bson.D{{Key: "$elemMatch", Value: bson.D{
		{Key: fieldLoginProvider, Value: loginProvider},
		{Key: fieldProviderKey, Value: providerKey},
	}}}}))
}

func (s *UserStore) GetUsersForClaim(ctx context.Context, claim domain.Claim) ([]*domain.User, error) {
	if claim.Type == "" {
		return nil, domain.MissingArgument("claim type")
	}
	return s.findMany(ctx, active(bson.E{Key: fieldClaims, Value: bson.D{{Key: "$elemMatch", Value: bson.D{
		{Key: fieldClaimType, Value: claim.Type},
		{Key: fieldClaimValue, Value: claim.Value},
	}}}}))
}

func (s *UserStore) GetUsersInRole(ctx context.Context, roleName string) ([]*domain.User, error) {
	if roleName == "" {
		return nil, domain.MissingArgument("role name")
	}
	return s.findMany(ctx, active(bson.E{Key: fieldRoles, Value: roleName}))
}

func (s *UserStore) findOne(ctx context.Context, filter bson.D) (*domain.User, error) {
	doc, err := s.records.findOne(ctx, filter)
	if err != nil || doc == nil {
		return nil, err
	}
	return s.decode(*doc)
}

func (s *UserStore) findMany(ctx context.Context, filter bson.D) ([]*domain.User, error) {
	docs, err := s.records.findMany(ctx, filter)
	if err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(docs))
	for _, doc := range docs {
		u, err := s.decode(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *UserStore) decode(doc userDocument) (*domain.User, error) {
	u, err := doc.toDomain()
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "corrupt user document "+doc.ID, err)
	}
	return u, nil
}

func (s *UserStore) GetUserID(_ context.Context, user *domain.User) (string, error) {
	if user == nil {
		return "", domain.MissingArgument("user")
	}
	return user.ID(), nil
}

func (s *UserStore) GetUserName(_ context.Context, user *domain.User) (string, error) {
	if user == nil {
		return "", domain.MissingArgument("user")
	}
	return user.UserName(), nil
}

func (s *UserStore) SetUserName(_ context.Context, user *domain.User, userName string) error {
	if user == nil {
		return domain.MissingArgument("user")
	}
	return user.SetUserName(userName)
}

func (s *UserStore) GetNormalizedUserName(_ context.Context, user *domain.User) (string, error) {
	if user == nil {
		return "", domain.MissingArgument("user")
	}
	return user.NormalizedUserName(), nil
}

func (s *UserStore) SetNormalizedUserName(_ context.Context, user *domain.User, normalized string) error {
	if user == nil {
		return domain.MissingArgument("user")
	}
	return user.SetNormalizedUserName(normalized)
}

func (s *UserStore) GetClaims(_ context.Context, user *domain.User) ([]domain.Claim, error) {
	if user == nil {
		return nil, domain.MissingArgument("user")
	}
	return user.Claims(), nil
}

// AddClaims validates the whole batch before touching the user.
func (s *UserStore) AddClaims(_ context.Context, user *domain.User, claims []domain.Claim) error {
	if user == nil {
		return domain.MissingArgument("user")
	}
	if err := validateClaims(claims); err != nil {
		return err
	}
	for _, c := range claims {
		if err := user.AddClaim(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *UserStore) RemoveClaims(_ context.Context, user *domain.User, claims []domain.Claim) error {
	if user == nil {
		return domain.MissingArgument("user")
	}
	if err := validateClaims(claims); err != nil {
		return err
	}
	for _, c := range claims {
		if err := user.RemoveClaim(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *UserStore) ReplaceClaim(_ context.Context, user *domain.User, claim, replacement domain.Claim) error {
	if user == nil {
		return domain.MissingArgument("user")
	}
	return user.ReplaceClaim(claim, replacement)
}

func (s *UserStore) AddLogin(_ context.Context, user *domain.User, login domain.Login) error {
	if user == nil {
		return domain.MissingArgument("user")
	}
	return user.AddLogin(login)
}

func (s *UserStore) RemoveLogin(_ context.Context, user *domain.User, loginProvider, providerKey string) error {
	if user == nil {
		return domain.MissingArgument("user")
	}
	return user.RemoveLogin(domain.LoginKey{LoginProvider: loginProvider, ProviderKey: providerKey})
}

func (s *UserStore) GetLogins(_ context.Context, user *domain.User) ([]domain.Login, error) {
	if user == nil {
		return nil, domain.MissingArgument("user")
	}
	return user.Logins(), nil
}

func (s *UserStore) GetLockoutEnabled(_ context.Context, user *domain.User) (bool, error) {
	if user == nil {
		return false, domain.MissingArgument("user")
	}
	return user.IsLockoutEnabled(), nil
}

func (s *UserStore) SetLockoutEnabled(_ context.Context, user *domain.User, enabled bool) error {
	if user == nil {
		return domain.MissingArgument("user")
	}
	if enabled {
		user.EnableLockout()
	} else {
		user.DisableLockout()
	}
	return nil
}

func (s *UserStore) GetLockoutEndDate(_ context.Context, user *domain.User) (*time.Time, error) {
	if user == nil {
		return nil, domain.MissingArgument("user")
	}
	end := user.LockoutEndOn()
	if end == nil {
		return nil, nil
	}
	t := end.Instant()
	return &t, nil
}

// SetLockoutEndDate sets the lockout end; nil lifts it.
func (s *UserStore) SetLockoutEndDate(_ context.Context, user *domain.User, end *time.Time) error {
	if user == nil {
		return domain.MissingArgument("user")
	}
	if end == nil {
		user.ClearLockout()
		return nil
	}
	return user.LockUntil(*end)
}

func (s *UserStore) GetAccessFailedCount(_ context.Context, user *domain.User) (int, error) {
	if user == nil {
		return 0, domain.MissingArgument("user")
	}
	return user.AccessFailedCount(), nil
}

func (s *UserStore) IncrementAccessFailedCount(_ context.Context, user *domain.User) (int, error) {
	if user == nil {
		return 0, domain.MissingArgument("user")
	}
	return user.IncrementAccessFailedCount(), nil
}

func (s *UserStore) ResetAccessFailedCount(_ context.Context, user *domain.User) error {
	if user == nil {
		return domain.MissingArgument("user")
	}
	user.ResetAccessFailedCount()
	return nil
}

func (s *UserStore) GetPasswordHash(_ context.Context, user *domain.User) (string, error) {
	if user == nil {
		return "", domain.MissingArgument("user")
	}
	return user.PasswordHash(), nil
}

func (s *UserStore) SetPasswordHash(_ context.Context, user *domain.User, hash string) error {
	if user == nil {
		return domain.MissingArgument("user")
	}
	return user.SetPasswordHash(hash)
}

func (s *UserStore) HasPassword(_ context.Context, user *domain.User) (bool, error) {
	if user == nil {
		return false, domain.MissingArgument("user")
	}
	return user.HasPassword(), nil
}

func (s *UserStore) GetSecurityStamp(_ context.Context, user *domain.User) (string, error) {
	if user == nil {
		return "", domain.MissingArgument("user")
	}
	return user.SecurityStamp(), nil
}

func (s *UserStore) SetSecurityStamp(_ context.Context, user *domain.User, stamp string) error {
	if user == nil {
		return domain.MissingArgument("user")
	}
	return user.SetSecurityStamp(stamp)
}

func (s *UserStore) AddToRole(_ context.Context, user *domain.User, roleName string) error {
	if user == nil {
		return domain.MissingArgument("user")
	}
	return user.AddRole(roleName)
}

func (s *UserStore) RemoveFromRole(_ context.Context, user *domain.User, roleName string) error {
	if user == nil {
		return domain.MissingArgument("user")
	}
	return user.RemoveRole(roleName)
}

func (s *UserStore) GetRoles(_ context.Context, user *domain.User) ([]string, error) {
	if user == nil {
		return nil, domain.MissingArgument("user")
	}
	return user.Roles(), nil
}

func (s *UserStore) IsInRole(_ context.Context, user *domain.User, roleName string) (bool, error) {
	if user == nil {
		return false, domain.MissingArgument("user")
	}
	if roleName == "" {
		return false, domain.MissingArgument("role name")
	}
	return user.HasRole(roleName), nil
}

func (s *UserStore) SetProfile(_ context.Context, user *domain.User, key string, value any) error {
	if user == nil {
		return domain.MissingArgument("user")
	}
	return user.SetProfile(key, value)
}

func validateClaims(claims []domain.Claim) error {
	for _, c := range claims {
		if c.Type == "" {
			return domain.MissingArgument("claim type")
		}
	}
	return nil
}

package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fastygo/identity/domain"
)

type usersMock struct{ mock.Mock }

func (m *usersMock) Create(ctx context.Context, u *domain.User) (domain.Result, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *usersMock) Update(ctx context.Context, u *domain.User) (domain.Result, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *usersMock) Delete(ctx context.Context, u *domain.User) (domain.Result, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *usersMock) FindByName(ctx context.Context, name string) (*domain.User, error) {
	args := m.Called(ctx, name)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *usersMock) GetUsersInRole(ctx context.Context, role string) ([]*domain.User, error) {
	args := m.Called(ctx, role)
	us, _ := args.Get(0).([]*domain.User)
	return us, args.Error(1)
}

type rolesMock struct{ mock.Mock }

func (m *rolesMock) Create(ctx context.Context, r *domain.Role) (domain.Result, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *rolesMock) Update(ctx context.Context, r *domain.Role) (domain.Result, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *rolesMock) Delete(ctx context.Context, r *domain.Role) (domain.Result, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *rolesMock) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	args := m.Called(ctx, name)
	r, _ := args.Get(0).(*domain.Role)
	return r, args.Error(1)
}

func newUseCase(t *testing.T) (*UseCase, *usersMock, *rolesMock) {
	users, roles := &usersMock{}, &rolesMock{}
	t.Cleanup(func() {
		users.AssertExpectations(t)
		roles.AssertExpectations(t)
	})
	return New(users, roles, zaptest.NewLogger(t)), users, roles
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ALICE", Normalize(" Alice "))
}

func TestCreateUser(t *testing.T) {
	uc, users, _ := newUseCase(t)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.NormalizedUserName() == "ALICE" && u.HasPassword() && u.IsLockoutEnabled()
	})).Return(domain.Success, nil).Once()

	user, err := uc.CreateUser(context.Background(), NewUser{Name: "alice", PasswordHash: "h", Lockout: true})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.UserName())
}

func TestCreateUserDuplicate(t *testing.T) {
	uc, users, _ := newUseCase(t)
	users.On("Create", mock.Anything, mock.Anything).
		Return(domain.Failed(domain.ResultError{Code: domain.ResultDuplicateUserName, Description: "taken"}), nil).Once()

	_, err := uc.CreateUser(context.Background(), NewUser{Name: "alice"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))
}

func TestUserNotFound(t *testing.T) {
	uc, users, _ := newUseCase(t)
	users.On("FindByName", mock.Anything, "GHOST").Return(nil, nil).Once()

	_, err := uc.User(context.Background(), "ghost")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestLockAndUnlockUser(t *testing.T) {
	uc, users, _ := newUseCase(t)
	user, err := domain.NewUser("bob")
	require.NoError(t, err)
	user.IncrementAccessFailedCount()

	users.On("FindByName", mock.Anything, "BOB").Return(user, nil).Twice()
	users.On("Update", mock.Anything, user).Return(domain.Success, nil).Twice()

	require.NoError(t, uc.LockUser(context.Background(), "bob", time.Hour))
	require.NotNil(t, user.LockoutEndOn())

	require.NoError(t, uc.UnlockUser(context.Background(), "bob"))
	assert.Nil(t, user.LockoutEndOn())
	assert.Zero(t, user.AccessFailedCount())
}

func TestLockUserRejectsNonPositiveDuration(t *testing.T) {
	uc, _, _ := newUseCase(t)
	err := uc.LockUser(context.Background(), "bob", 0)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestDeleteUserLostRace(t *testing.T) {
	uc, users, _ := newUseCase(t)
	user, err := domain.NewUser("carol")
	require.NoError(t, err)

	users.On("FindByName", mock.Anything, "CAROL").Return(user, nil).Once()
	users.On("Delete", mock.Anything, user).
		Return(domain.Failed(domain.ResultError{Code: domain.ResultConcurrencyFailure, Description: "gone"}), nil).Once()

	err = uc.DeleteUser(context.Background(), "carol")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))
}

func TestRoleClaims(t *testing.T) {
	uc, _, roles := newUseCase(t)
	role, err := domain.NewRole("editor")
	require.NoError(t, err)
	claim := domain.Claim{Type: "perm", Value: "write"}

	roles.On("FindByName", mock.Anything, "EDITOR").Return(role, nil).Twice()
	roles.On("Update", mock.Anything, role).Return(domain.Success, nil).Twice()

	require.NoError(t, uc.AddRoleClaim(context.Background(), "editor", claim))
	assert.Equal(t, []domain.Claim{claim}, role.Claims())

	require.NoError(t, uc.RemoveRoleClaim(context.Background(), "editor", claim))
	assert.Empty(t, role.Claims())
}

func TestRoleWithMembers(t *testing.T) {
	uc, users, roles := newUseCase(t)
	role, err := domain.NewRole("ops")
	require.NoError(t, err)
	member, err := domain.NewUser("dave")
	require.NoError(t, err)

	roles.On("FindByName", mock.Anything, "OPS").Return(role, nil).Once()
	users.On("GetUsersInRole", mock.Anything, "ops").Return([]*domain.User{member}, nil).Once()

	got, members, err := uc.Role(context.Background(), "ops")
	require.NoError(t, err)
	assert.Same(t, role, got)
	require.Len(t, members, 1)
	assert.Equal(t, member.ID(), members[0].ID())
}

func TestCreateRole(t *testing.T) {
	uc, _, roles := newUseCase(t)
	roles.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Role) bool {
		return r.NormalizedRoleName() == "ADMIN"
	})).Return(domain.Success, nil).Once()

	role, err := uc.CreateRole(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", role.RoleName())
}

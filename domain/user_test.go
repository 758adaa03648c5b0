package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freezeClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func TestNewUserRequiresUserName(t *testing.T) {
	u, err := NewUser("")
	require.Error(t, err)
	assert.Nil(t, u)
	assert.True(t, IsDomainError(err, ErrCodeInvalid))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewUserAssignsIdentityAndCreation(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 30, 0, 123456789, time.UTC)
	freezeClock(t, at)

	a, err := NewUser("alice")
	require.NoError(t, err)
	b, err := NewUser("alice")
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, at.Truncate(time.Millisecond), a.CreatedOn().Instant())
	assert.Nil(t, a.DeleteOn())
	assert.False(t, a.IsDeleted())
	assert.Empty(t, a.Claims())
	assert.Empty(t, a.Logins())
	assert.Empty(t, a.Roles())
	assert.False(t, a.HasPassword())
}

func TestUserDeleteOnlyOnce(t *testing.T) {
	u, err := NewUser("alice")
	require.NoError(t, err)

	require.NoError(t, u.Delete())
	first := u.DeleteOn()
	require.NotNil(t, first)
	assert.True(t, u.IsDeleted())

	err = u.Delete()
	require.Error(t, err)
	assert.True(t, IsDomainError(err, ErrCodeInvalidState))
	assert.ErrorIs(t, err, ErrAlreadyDeleted)
	assert.True(t, first.Equal(*u.DeleteOn()), "second delete must not move the marker")
}

func TestUserDeleteOnReturnsCopy(t *testing.T) {
	u, _ := NewUser("alice")
	require.NoError(t, u.Delete())

	got := u.DeleteOn()
	*got = OccurrenceAt(time.Unix(0, 0))
	assert.False(t, u.DeleteOn().Equal(*got))
}

func TestUserClaimRoundTrip(t *testing.T) {
	u, _ := NewUser("alice")
	require.NoError(t, u.AddClaim(Claim{Type: "email", Value: "a@example.com"}))
	before := u.Claims()

	c := Claim{Type: "perm", Value: "write"}
	require.NoError(t, u.AddClaim(c))
	require.NoError(t, u.RemoveClaim(c))

	assert.Equal(t, before, u.Claims())
}

func TestUserClaimsAllowDuplicates(t *testing.T) {
	u, _ := NewUser("alice")
	c := Claim{Type: "perm", Value: "read"}
	require.NoError(t, u.AddClaim(c))
	require.NoError(t, u.AddClaim(c))
	assert.Len(t, u.Claims(), 2)

	require.NoError(t, u.RemoveClaim(c))
	assert.Equal(t, []Claim{c}, u.Claims())
}

func TestUserRemoveMissingClaimIsNoop(t *testing.T) {
	u, _ := NewUser("alice")
	require.NoError(t, u.AddClaim(Claim{Type: "perm", Value: "read"}))
	require.NoError(t, u.RemoveClaim(Claim{Type: "perm", Value: "write"}))
	assert.Len(t, u.Claims(), 1)
}

func TestUserReplaceClaim(t *testing.T) {
	u, _ := NewUser("alice")
	require.NoError(t, u.AddClaim(Claim{Type: "a", Value: "1"}))
	require.NoError(t, u.AddClaim(Claim{Type: "b", Value: "2"}))

	require.NoError(t, u.ReplaceClaim(Claim{Type: "a", Value: "1"}, Claim{Type: "a", Value: "9"}))
	assert.Equal(t, []Claim{{Type: "b", Value: "2"}, {Type: "a", Value: "9"}}, u.Claims())
}

func TestUserClaimValidation(t *testing.T) {
	u, _ := NewUser("alice")
	err := u.AddClaim(Claim{Value: "orphan"})
	assert.True(t, IsDomainError(err, ErrCodeInvalid))
	assert.Empty(t, u.Claims())
}

func TestUserLoginsRejectSameProviderKey(t *testing.T) {
	cases := []struct {
		name   string
		second Login
	}{
		{name: "identical", second: Login{LoginProvider: "google", ProviderKey: "123", ProviderDisplayName: "Google"}},
		{name: "different display name", second: Login{LoginProvider: "google", ProviderKey: "123", ProviderDisplayName: "G"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, _ := NewUser("alice")
			require.NoError(t, u.AddLogin(Login{LoginProvider: "google", ProviderKey: "123", ProviderDisplayName: "Google"}))

			err := u.AddLogin(tc.second)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrLoginExists))
			assert.True(t, IsDomainError(err, ErrCodeConflict))
			assert.Len(t, u.Logins(), 1)
		})
	}
}

func TestUserLoginsAllowOtherKeys(t *testing.T) {
	u, _ := NewUser("alice")
	require.NoError(t, u.AddLogin(Login{LoginProvider: "google", ProviderKey: "123"}))
	require.NoError(t, u.AddLogin(Login{LoginProvider: "google", ProviderKey: "456"}))
	require.NoError(t, u.AddLogin(Login{LoginProvider: "github", ProviderKey: "123"}))
	assert.Len(t, u.Logins(), 3)
}

func TestUserRemoveLoginIgnoresDisplayName(t *testing.T) {
	u, _ := NewUser("alice")
	require.NoError(t, u.AddLogin(Login{LoginProvider: "google", ProviderKey: "123", ProviderDisplayName: "Google"}))

	require.NoError(t, u.RemoveLogin(LoginKey{LoginProvider: "google", ProviderKey: "123"}))
	assert.Empty(t, u.Logins())

	require.NoError(t, u.RemoveLogin(LoginKey{LoginProvider: "google", ProviderKey: "123"}))
	assert.True(t, IsDomainError(u.RemoveLogin(LoginKey{LoginProvider: "google"}), ErrCodeInvalid))
}

func TestUserRoles(t *testing.T) {
	u, _ := NewUser("alice")
	require.NoError(t, u.AddRole("admin"))
	require.NoError(t, u.AddRole("editor"))
	require.NoError(t, u.AddRole("admin"))

	assert.True(t, u.HasRole("admin"))
	assert.False(t, u.HasRole("ADMIN"))

	require.NoError(t, u.RemoveRole("admin"))
	assert.Equal(t, []string{"editor", "admin"}, u.Roles())

	require.NoError(t, u.RemoveRole("viewer"))
	assert.True(t, IsDomainError(u.AddRole(""), ErrCodeInvalid))
}

func TestUserAccessFailedCount(t *testing.T) {
	u, _ := NewUser("alice")
	assert.Equal(t, 1, u.IncrementAccessFailedCount())
	assert.Equal(t, 2, u.IncrementAccessFailedCount())

	u.ResetAccessFailedCount()
	assert.Equal(t, 0, u.AccessFailedCount())

	err := u.SetAccessFailedCount(-1)
	assert.True(t, IsDomainError(err, ErrCodeInvalid))
	assert.Equal(t, 0, u.AccessFailedCount())
}

func TestUserLockoutIndependentOfEndDate(t *testing.T) {
	u, _ := NewUser("alice")
	end := time.Now().Add(time.Hour)

	require.NoError(t, u.LockUntil(end))
	assert.False(t, u.IsLockoutEnabled())
	require.NotNil(t, u.LockoutEndOn())
	assert.Equal(t, end.UTC().Truncate(time.Millisecond), u.LockoutEndOn().Instant())

	u.EnableLockout()
	assert.True(t, u.IsLockoutEnabled())
	u.DisableLockout()
	assert.False(t, u.IsLockoutEnabled())
	assert.NotNil(t, u.LockoutEndOn())

	u.ClearLockout()
	assert.Nil(t, u.LockoutEndOn())
	assert.True(t, IsDomainError(u.LockUntil(time.Time{}), ErrCodeInvalid))
}

func TestUserSettersRejectEmpty(t *testing.T) {
	u, _ := NewUser("alice")
	for name, fn := range map[string]func(string) error{
		"user name":            u.SetUserName,
		"normalized user name": u.SetNormalizedUserName,
		"password hash":        u.SetPasswordHash,
		"security stamp":       u.SetSecurityStamp,
	} {
		assert.True(t, IsDomainError(fn(""), ErrCodeInvalid), name)
	}
	assert.Equal(t, "alice", u.UserName())

	require.NoError(t, u.SetPasswordHash("hash"))
	assert.True(t, u.HasPassword())
}

func TestRestoreUserRoundTrip(t *testing.T) {
	u, _ := NewUser("alice")
	require.NoError(t, u.SetNormalizedUserName("ALICE"))
	require.NoError(t, u.SetSecurityStamp("stamp"))
	require.NoError(t, u.AddClaim(Claim{Type: "perm", Value: "read"}))
	require.NoError(t, u.AddLogin(Login{LoginProvider: "google", ProviderKey: "1"}))
	require.NoError(t, u.AddRole("admin"))
	require.NoError(t, u.SetProfile("theme", "dark"))
	require.NoError(t, u.LockUntil(time.Now().Add(time.Minute)))

	restored, err := RestoreUser(u.State())
	require.NoError(t, err)
	assert.Equal(t, u.State(), restored.State())
}

func TestRestoreUserDropsInvalidEntries(t *testing.T) {
	s := UserState{
		ID:       "u1",
		UserName: "alice",
		Claims:   []Claim{{Type: ""}, {Type: "perm", Value: "x"}},
		Logins:   []Login{{LoginProvider: "g", ProviderKey: "1"}, {LoginProvider: "g", ProviderKey: "1", ProviderDisplayName: "dup"}},
		Roles:    []string{"", "admin"},
	}
	u, err := RestoreUser(s)
	require.NoError(t, err)
	assert.Len(t, u.Claims(), 1)
	assert.Len(t, u.Logins(), 1)
	assert.Equal(t, []string{"admin"}, u.Roles())

	_, err = RestoreUser(UserState{UserName: "alice"})
	assert.True(t, IsDomainError(err, ErrCodeInvalid))
}

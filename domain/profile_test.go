package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addressProfile struct {
	Address  string `bson:"address"`
	RealName string `bson:"realName"`
}

func TestProfileSetAndGet(t *testing.T) {
	u, _ := NewUser("alice")
	want := addressProfile{Address: "1 Main St", RealName: "Alice"}
	require.NoError(t, u.SetProfile("simple_profile", want))

	got, err := GetProfile[addressProfile](u, "simple_profile")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestProfileUpsertReplaces(t *testing.T) {
	u, _ := NewUser("alice")
	require.NoError(t, u.SetProfile("theme", "light"))
	require.NoError(t, u.SetProfile("theme", "dark"))

	got, err := GetProfile[string](u, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", got)
	assert.Equal(t, []string{"theme"}, u.ProfileKeys())
}

func TestProfileAbsentKeyYieldsZero(t *testing.T) {
	u, _ := NewUser("alice")

	got, err := GetProfile[addressProfile](u, "missing")
	require.NoError(t, err)
	assert.Equal(t, addressProfile{}, got)

	n, err := GetProfile[int](u, "missing")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProfileTypeMismatch(t *testing.T) {
	u, _ := NewUser("alice")
	require.NoError(t, u.SetProfile("simple_profile", addressProfile{Address: "x"}))

	n, err := GetProfile[int](u, "simple_profile")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProfileType)
	assert.True(t, IsDomainError(err, ErrCodeInvalidState))
	assert.Zero(t, n)
}

func TestProfileIsSnapshotAtSetTime(t *testing.T) {
	u, _ := NewUser("alice")
	p := &addressProfile{Address: "before"}
	require.NoError(t, u.SetProfile("p", p))
	p.Address = "after"

	got, err := GetProfile[addressProfile](u, "p")
	require.NoError(t, err)
	assert.Equal(t, "before", got.Address)
}

func TestProfileValidationAndRemoval(t *testing.T) {
	u, _ := NewUser("alice")
	assert.True(t, IsDomainError(u.SetProfile("", "x"), ErrCodeInvalid))
	assert.True(t, IsDomainError(u.SetProfile("k", nil), ErrCodeInvalid))

	require.NoError(t, u.SetProfile("b", 1))
	require.NoError(t, u.SetProfile("a", 2))
	assert.Equal(t, []string{"a", "b"}, u.ProfileKeys())

	u.RemoveProfile("a")
	assert.Equal(t, []string{"b"}, u.ProfileKeys())

	_, err := GetProfile[int](nil, "b")
	assert.True(t, IsDomainError(err, ErrCodeInvalid))
}

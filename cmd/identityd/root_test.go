package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/identity/domain"
)

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"serve"},
		{"bootstrap"},
		{"user", "create"},
		{"user", "show"},
		{"user", "delete"},
		{"user", "lock"},
		{"user", "unlock"},
		{"role", "create"},
		{"role", "show"},
		{"role", "delete"},
		{"role", "claims", "add"},
		{"role", "claims", "remove"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestUserView(t *testing.T) {
	u, err := domain.NewUser("alice")
	require.NoError(t, err)
	require.NoError(t, u.AddClaim(domain.Claim{Type: "email", Value: "a@example.com"}))
	require.NoError(t, u.AddLogin(domain.Login{LoginProvider: "github", ProviderKey: "42"}))
	require.NoError(t, u.AddRole("admin"))
	require.NoError(t, u.LockUntil(time.Now().Add(time.Hour)))

	v := newUserView(u)
	assert.Equal(t, u.ID(), v.ID)
	assert.False(t, v.HasPassword)
	assert.Equal(t, []string{"email=a@example.com"}, v.Claims)
	assert.Equal(t, map[string]string{"github": "42"}, v.Logins)
	assert.Equal(t, []string{"admin"}, v.Roles)
	require.NotNil(t, v.LockoutEnd)
}

package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/identity/domain"
	"github.com/fastygo/identity/usecase/account"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var (
	userPasswordHash string
	userLockout      bool
	userLockFor      time.Duration
)

var userCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAccounts(cmd, func(ctx context.Context, accounts *account.UseCase) error {
			user, err := accounts.CreateUser(ctx, account.NewUser{
				Name:         args[0],
				PasswordHash: userPasswordHash,
				Lockout:      userLockout,
			})
			if err != nil {
				return err
			}
			cmd.Println(user.ID())
			return nil
		})
	},
}

var userShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print an active user as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAccounts(cmd, func(ctx context.Context, accounts *account.UseCase) error {
			user, err := accounts.User(ctx, args[0])
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(newUserView(user), "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(out))
			return nil
		})
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Soft-delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAccounts(cmd, func(ctx context.Context, accounts *account.UseCase) error {
			return accounts.DeleteUser(ctx, args[0])
		})
	},
}

var userLockCmd = &cobra.Command{
	Use:   "lock <name>",
	Short: "Lock a user out for a duration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAccounts(cmd, func(ctx context.Context, accounts *account.UseCase) error {
			return accounts.LockUser(ctx, args[0], userLockFor)
		})
	},
}

var userUnlockCmd = &cobra.Command{
	Use:   "unlock <name>",
	Short: "Clear a user's lockout and failed-access counter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAccounts(cmd, func(ctx context.Context, accounts *account.UseCase) error {
			return accounts.UnlockUser(ctx, args[0])
		})
	},
}

type userView struct {
	ID                 string            `json:"id"`
	UserName           string            `json:"userName"`
	NormalizedUserName string            `json:"normalizedUserName,omitempty"`
	HasPassword        bool              `json:"hasPassword"`
	AccessFailedCount  int               `json:"accessFailedCount"`
	LockoutEnabled     bool              `json:"lockoutEnabled"`
	LockoutEnd         *time.Time        `json:"lockoutEnd,omitempty"`
	CreatedOn          time.Time         `json:"createdOn"`
	Claims             []string          `json:"claims,omitempty"`
	Logins             map[string]string `json:"logins,omitempty"`
	Roles              []string          `json:"roles,omitempty"`
	Profiles           []string          `json:"profiles,omitempty"`
}

func newUserView(u *domain.User) userView {
	v := userView{
		ID:                 u.ID(),
		UserName:           u.UserName(),
		NormalizedUserName: u.NormalizedUserName(),
		HasPassword:        u.HasPassword(),
		AccessFailedCount:  u.AccessFailedCount(),
		LockoutEnabled:     u.IsLockoutEnabled(),
		CreatedOn:          u.CreatedOn().Instant(),
		Roles:              u.Roles(),
		Profiles:           u.ProfileKeys(),
	}
	if end := u.LockoutEndOn(); end != nil {
		t := end.Instant()
		v.LockoutEnd = &t
	}
	for _, c := range u.Claims() {
		v.Claims = append(v.Claims, c.String())
	}
	for _, l := range u.Logins() {
		if v.Logins == nil {
			v.Logins = map[string]string{}
		}
		v.Logins[l.LoginProvider] = l.ProviderKey
	}
	return v
}

func init() {
	userCreateCmd.Flags().StringVar(&userPasswordHash, "password-hash", "", "pre-computed password hash")
	userCreateCmd.Flags().BoolVar(&userLockout, "lockout", true, "enable lockout for the user")
	userLockCmd.Flags().DurationVar(&userLockFor, "for", time.Hour, "lockout duration")

	userCmd.AddCommand(userCreateCmd, userShowCmd, userDeleteCmd, userLockCmd, userUnlockCmd)
	rootCmd.AddCommand(userCmd)
}

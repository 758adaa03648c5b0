package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/fastygo/identity/domain"
	"github.com/fastygo/identity/usecase/account"
)

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Manage roles",
}

var roleCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAccounts(cmd, func(ctx context.Context, accounts *account.UseCase) error {
			role, err := accounts.CreateRole(ctx, args[0])
			if err != nil {
				return err
			}
			cmd.Println(role.ID())
			return nil
		})
	},
}

var roleShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print an active role and the users holding it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAccounts(cmd, func(ctx context.Context, accounts *account.UseCase) error {
			role, members, err := accounts.Role(ctx, args[0])
			if err != nil {
				return err
			}
			view := struct {
				ID     string   `json:"id"`
				Name   string   `json:"name"`
				Claims []string `json:"claims,omitempty"`
				Users  []string `json:"users,omitempty"`
			}{ID: role.ID(), Name: role.RoleName()}
			for _, c := range role.Claims() {
				view.Claims = append(view.Claims, c.String())
			}
			for _, u := range members {
				view.Users = append(view.Users, u.UserName())
			}
			out, err := json.MarshalIndent(view, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(out))
			return nil
		})
	},
}

var roleDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Soft-delete a role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAccounts(cmd, func(ctx context.Context, accounts *account.UseCase) error {
			return accounts.DeleteRole(ctx, args[0])
		})
	},
}

var roleClaimsCmd = &cobra.Command{
	Use:   "claims",
	Short: "Manage the claims attached to a role",
}

var roleClaimsAddCmd = &cobra.Command{
	Use:   "add <role> <type> <value>",
	Short: "Attach a claim to a role",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAccounts(cmd, func(ctx context.Context, accounts *account.UseCase) error {
			return accounts.AddRoleClaim(ctx, args[0], domain.Claim{Type: args[1], Value: args[2]})
		})
	},
}

var roleClaimsRemoveCmd = &cobra.Command{
	Use:   "remove <role> <type> <value>",
	Short: "Detach a claim from a role",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAccounts(cmd, func(ctx context.Context, accounts *account.UseCase) error {
			return accounts.RemoveRoleClaim(ctx, args[0], domain.Claim{Type: args[1], Value: args[2]})
		})
	},
}

func init() {
	roleClaimsCmd.AddCommand(roleClaimsAddCmd, roleClaimsRemoveCmd)
	roleCmd.AddCommand(roleCreateCmd, roleShowCmd, roleDeleteCmd, roleClaimsCmd)
	rootCmd.AddCommand(roleCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NicolasHaas/badgeboard/pkg/client"
	"github.com/NicolasHaas/badgeboard/pkg/model"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative commands (admin session required)",
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage accounts",
	Long: `Account management. Administrator accounts cannot be deleted.

Examples:
  badgectl admin users list
  badgectl admin users reset-password 42
  badgectl admin users delete 42 --force`,
}

var adminUsersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every account with email and role",
	RunE:  runAdminUsersList,
}

var adminUsersResetCmd = &cobra.Command{
	Use:   "reset-password <user-id>",
	Short: "Set a new password for an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminUsersReset,
}

var adminUsersDeleteCmd = &cobra.Command{
	Use:   "delete <user-id>",
	Short: "Delete an account",
	Long:  `Delete an account and its awards. This action cannot be undone.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminUsersDelete,
}

func init() {
	adminUsersResetCmd.Flags().StringP("password", "p", "", "new password (prompted if empty)")
	adminUsersDeleteCmd.Flags().BoolP("force", "f", false, "skip confirmation prompt")

	adminUsersCmd.AddCommand(adminUsersListCmd)
	adminUsersCmd.AddCommand(adminUsersResetCmd)
	adminUsersCmd.AddCommand(adminUsersDeleteCmd)
	adminCmd.AddCommand(adminUsersCmd)

	rootCmd.AddCommand(adminCmd)
}

// startAdmin starts on the user-management page, which requires an admin.
func startAdmin(cmd *cobra.Command) (*app, error) {
	a, err := startApp(cmd.Context(), client.PageUserManagement)
	if err != nil {
		return nil, err
	}
	if !a.coord.Capabilities().IsAdmin {
		a.Close()
		return nil, model.ErrForbidden
	}
	return a, nil
}

func runAdminUsersList(cmd *cobra.Command, _ []string) error {
	a, err := startAdmin(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	accounts, err := loaded(a.coord.View().Accounts)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"accounts": accounts,
			"count":    len(accounts),
		})
	}
	w := newTable()
	printTableHeader(w, "ID", "USERNAME", "DISPLAY NAME", "EMAIL", "ROLE")
	for _, acc := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", acc.ID, acc.Username, acc.DisplayName, acc.Email, acc.Role)
	}
	return w.Flush()
}

func runAdminUsersReset(cmd *cobra.Command, args []string) error {
	flagPassword, _ := cmd.Flags().GetString("password")
	password, err := readSecret(cmd.InOrStdin(), "New password: ", flagPassword)
	if err != nil {
		return err
	}

	a, err := startAdmin(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.coord.ResetPassword(cmd.Context(), model.ID(args[0]), password)
}

func runAdminUsersDelete(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	if !force {
		answer, err := readSecret(cmd.InOrStdin(), fmt.Sprintf("Delete account %s? [y/N]: ", args[0]), "")
		if err != nil {
			return err
		}
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted")
			return nil
		}
	}

	a, err := startAdmin(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.coord.DeleteAccount(cmd.Context(), model.ID(args[0]))
}

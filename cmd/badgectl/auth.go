package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NicolasHaas/badgeboard/pkg/client"
	"github.com/NicolasHaas/badgeboard/pkg/model"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and remember the session",
	Long: `Authenticate against the server and store the session locally.

The password is read from --password or prompted for on stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE:  runWhoami,
}

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create an account",
	Long: `Create an account on the server. Registering does not log in.

Examples:
  badgectl register carol --email carol@example.com --display-name "Carol"`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

func init() {
	loginCmd.Flags().StringP("password", "p", "", "password (prompted if empty)")

	registerCmd.Flags().StringP("password", "p", "", "password (prompted if empty)")
	registerCmd.Flags().String("email", "", "email address")
	registerCmd.Flags().String("display-name", "", "display name (defaults to the username)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(registerCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	flagPassword, _ := cmd.Flags().GetString("password")
	password, err := readSecret(cmd.InOrStdin(), "Password: ", flagPassword)
	if err != nil {
		return err
	}

	a, err := startApp(cmd.Context(), client.PageHome)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.coord.Login(cmd.Context(), args[0], password)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(sess)
	}
	fmt.Printf("Logged in as %s (%s)\n", sess.Name(), sess.Role)
	return nil
}

func runLogout(_ *cobra.Command, _ []string) error {
	a, err := openApp(client.PageHome)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.coord.Logout(); err != nil {
		return err
	}
	if !jsonOut {
		fmt.Println("Logged out")
	}
	return nil
}

func runWhoami(_ *cobra.Command, _ []string) error {
	a, err := openStorage()
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.sessions.Load()
	if err != nil {
		return err
	}
	if sess == nil {
		return model.ErrNotLoggedIn
	}

	if jsonOut {
		return printJSON(sess)
	}
	w := newTable()
	fmt.Fprintf(w, "ID:\t%s\n", sess.ID)
	fmt.Fprintf(w, "Username:\t%s\n", sess.Username)
	fmt.Fprintf(w, "Display name:\t%s\n", sess.Name())
	fmt.Fprintf(w, "Role:\t%s\n", sess.Role)
	return w.Flush()
}

func runRegister(cmd *cobra.Command, args []string) error {
	flagPassword, _ := cmd.Flags().GetString("password")
	email, _ := cmd.Flags().GetString("email")
	displayName, _ := cmd.Flags().GetString("display-name")

	password, err := readSecret(cmd.InOrStdin(), "Password: ", flagPassword)
	if err != nil {
		return err
	}

	a, err := openApp(client.PageHome)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.coord.Register(cmd.Context(), model.Registration{
		Username:    args[0],
		Password:    password,
		Email:       email,
		DisplayName: displayName,
	})
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{"user_id": id, "username": args[0]})
	}
	return nil
}

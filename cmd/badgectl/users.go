package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NicolasHaas/badgeboard/pkg/client"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users",
	RunE:  runUsers,
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the most recent awards",
	RunE:  runFeed,
}

func init() {
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(feedCmd)
}

func runUsers(cmd *cobra.Command, _ []string) error {
	a, err := startApp(cmd.Context(), client.PageBadgeManagement)
	if err != nil {
		return err
	}
	defer a.Close()

	users, err := loaded(a.coord.View().Users)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"users": users,
			"count": len(users),
		})
	}
	if len(users) == 0 {
		fmt.Println("No users found")
		return nil
	}
	w := newTable()
	printTableHeader(w, "ID", "USERNAME", "DISPLAY NAME")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.Username, u.Name())
	}
	return w.Flush()
}

func runFeed(cmd *cobra.Command, _ []string) error {
	a, err := startApp(cmd.Context(), client.PageHome)
	if err != nil {
		return err
	}
	defer a.Close()

	feed, err := loaded(a.coord.View().Feed)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{"feed": feed})
	}
	if len(feed) == 0 {
		fmt.Println("No awards yet")
		return nil
	}
	w := newTable()
	printTableHeader(w, "DATE", "USER", "BADGE")
	for _, e := range feed {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Date, e.User, e.Badge)
	}
	return w.Flush()
}

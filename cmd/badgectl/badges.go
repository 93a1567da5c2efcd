package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/NicolasHaas/badgeboard/pkg/client"
	"github.com/NicolasHaas/badgeboard/pkg/model"
)

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "Browse and manage badge definitions",
	Long: `Badge commands. Creating badges needs a login; editing and deleting
them needs an admin session.

Examples:
  badgectl badges list
  badgectl badges show 7
  badgectl badges create "Code Reviewer" --description "Reviewed 50 PRs" --image ./reviewer.png
  badgectl badges update 7 --name "Reviewer" --description "Reviewed 100 PRs"
  badgectl badges delete 7`,
}

var badgesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all badges with their award counts",
	RunE:  runBadgesList,
}

var badgesShowCmd = &cobra.Command{
	Use:   "show <badge-id>",
	Short: "Show a badge and who holds it",
	Args:  cobra.ExactArgs(1),
	RunE:  runBadgesShow,
}

var badgesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a badge",
	Long: `Create a badge. When --image is given the file is uploaded first; if
the upload fails the badge is still created, without an icon.`,
	Args: cobra.ExactArgs(1),
	RunE: runBadgesCreate,
}

var badgesUpdateCmd = &cobra.Command{
	Use:   "update <badge-id>",
	Short: "Edit a badge (admin)",
	Args:  cobra.ExactArgs(1),
	RunE:  runBadgesUpdate,
}

var badgesDeleteCmd = &cobra.Command{
	Use:   "delete <badge-id>",
	Short: "Delete a badge (admin)",
	Args:  cobra.ExactArgs(1),
	RunE:  runBadgesDelete,
}

var awardCmd = &cobra.Command{
	Use:   "award <user-id> <badge-id>",
	Short: "Award a badge to another user",
	Args:  cobra.ExactArgs(2),
	RunE:  runAward,
}

var removeCmd = &cobra.Command{
	Use:   "remove <badge-id>",
	Short: "Remove every award of a badge from a user",
	Long: `Remove a badge from a user, yourself unless --user is given.

Examples:
  badgectl remove 7
  badgectl remove 7 --user 42`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your badges and the ones you do not hold yet",
	RunE:  runProfile,
}

func init() {
	badgesCreateCmd.Flags().String("description", "", "badge description")
	badgesCreateCmd.Flags().String("icon", "", "icon file name already on the server")
	badgesCreateCmd.Flags().String("image", "", "image file to upload as the icon")

	badgesUpdateCmd.Flags().String("name", "", "new name (required)")
	badgesUpdateCmd.Flags().String("description", "", "new description (required)")
	badgesUpdateCmd.Flags().String("icon", "", "icon file name")

	removeCmd.Flags().String("user", "", "user id (default: yourself)")

	badgesCmd.AddCommand(badgesListCmd)
	badgesCmd.AddCommand(badgesShowCmd)
	badgesCmd.AddCommand(badgesCreateCmd)
	badgesCmd.AddCommand(badgesUpdateCmd)
	badgesCmd.AddCommand(badgesDeleteCmd)

	rootCmd.AddCommand(badgesCmd)
	rootCmd.AddCommand(awardCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(profileCmd)
}

func runBadgesList(cmd *cobra.Command, _ []string) error {
	a, err := startApp(cmd.Context(), client.PageBadgeManagement)
	if err != nil {
		return err
	}
	defer a.Close()

	badges, err := loaded(a.coord.View().Badges)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"badges": badges,
			"count":  len(badges),
		})
	}
	return printBadges(badges)
}

func printBadges(badges []model.Badge) error {
	if len(badges) == 0 {
		fmt.Println("No badges found")
		return nil
	}
	w := newTable()
	printTableHeader(w, "ID", "NAME", "AWARDED", "DESCRIPTION")
	for _, b := range badges {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", b.ID, b.Name, b.Count, truncate(b.Description, 48))
	}
	return w.Flush()
}

func runBadgesShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(client.PageHome)
	if err != nil {
		return err
	}
	defer a.Close()

	details, err := a.coord.BadgeDetails(cmd.Context(), model.ID(args[0]))
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(details)
	}

	w := newTable()
	fmt.Fprintf(w, "ID:\t%s\n", details.Badge.ID)
	fmt.Fprintf(w, "Name:\t%s\n", details.Badge.Name)
	fmt.Fprintf(w, "Description:\t%s\n", details.Badge.Description)
	if details.Badge.Icon != "" {
		fmt.Fprintf(w, "Icon:\t%s\n", details.Badge.Icon)
	}
	fmt.Fprintf(w, "Awarded:\t%d times to %d users\n", details.AwardCount, details.UniqueUserCount)
	if err := w.Flush(); err != nil {
		return err
	}

	if len(details.Users) == 0 {
		return nil
	}
	fmt.Println()
	w = newTable()
	printTableHeader(w, "USER", "AWARDED", "BY")
	for _, u := range details.Users {
		by := "-"
		if u.AwardedBy != nil {
			by = u.AwardedBy.Name()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", u.Name(), u.AwardDate, by)
	}
	return w.Flush()
}

func runBadgesCreate(cmd *cobra.Command, args []string) error {
	description, _ := cmd.Flags().GetString("description")
	icon, _ := cmd.Flags().GetString("icon")
	imagePath, _ := cmd.Flags().GetString("image")

	var img *client.Image
	if imagePath != "" {
		f, err := os.Open(imagePath) //nolint:gosec // path from user-provided CLI flag
		if err != nil {
			return fmt.Errorf("open image: %w", err)
		}
		defer f.Close()
		img = &client.Image{Name: filepath.Base(imagePath), Data: f}
	}

	a, err := startApp(cmd.Context(), client.PageBadgeManagement)
	if err != nil {
		return err
	}
	defer a.Close()

	badge, err := a.coord.CreateBadge(cmd.Context(), model.BadgeInput{
		Name:        args[0],
		Description: description,
		Icon:        icon,
	}, img)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(badge)
	}
	fmt.Printf("  ID: %s\n", badge.ID)
	return nil
}

func runBadgesUpdate(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	description, _ := cmd.Flags().GetString("description")
	icon, _ := cmd.Flags().GetString("icon")

	a, err := startApp(cmd.Context(), client.PageBadgeManagement)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.coord.UpdateBadge(cmd.Context(), model.ID(args[0]), model.BadgeInput{
		Name:        name,
		Description: description,
		Icon:        icon,
	})
}

func runBadgesDelete(cmd *cobra.Command, args []string) error {
	a, err := startApp(cmd.Context(), client.PageBadgeManagement)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.coord.DeleteBadge(cmd.Context(), model.ID(args[0]))
}

func runAward(cmd *cobra.Command, args []string) error {
	a, err := startApp(cmd.Context(), client.PageHome)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.coord.Award(cmd.Context(), model.ID(args[0]), model.ID(args[1])); err != nil {
		return err
	}

	if jsonOut {
		feed, _ := loaded(a.coord.View().Feed)
		return printJSON(map[string]any{"awarded": true, "feed": feed})
	}
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetString("user")

	a, err := startApp(cmd.Context(), client.PageHome)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.coord.RemoveAward(cmd.Context(), model.ID(userID), model.ID(args[0])); err != nil {
		return err
	}
	if !jsonOut {
		fmt.Println("Badge removed")
		return nil
	}
	return printJSON(map[string]any{"removed": true})
}

func runProfile(cmd *cobra.Command, _ []string) error {
	a, err := startApp(cmd.Context(), client.PageHome)
	if err != nil {
		return err
	}
	defer a.Close()

	sess := a.coord.Session()
	if sess == nil {
		return model.ErrNotLoggedIn
	}
	// The profile loads in the background after Start; a refresh waits for it.
	if err := a.coord.Refresh(cmd.Context()); err != nil {
		return err
	}
	v := a.coord.View()
	held, err := loaded(v.Profile)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"user":      sess,
			"badges":    held,
			"unawarded": v.Unawarded,
		})
	}

	fmt.Printf("%s holds %d badges\n\n", sess.Name(), len(held))
	if len(held) > 0 {
		w := newTable()
		printTableHeader(w, "ID", "NAME", "TIMES")
		for _, b := range held {
			fmt.Fprintf(w, "%s\t%s\t%s\n", b.ID, b.Name, strconv.Itoa(b.Count))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	if len(v.Unawarded) > 0 {
		fmt.Println("\nNot yet earned:")
		return printBadges(v.Unawarded)
	}
	return nil
}

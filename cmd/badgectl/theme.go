package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NicolasHaas/badgeboard/pkg/model"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the colour theme preference",
}

var themeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current theme",
	RunE:  runThemeGet,
}

var themeSetCmd = &cobra.Command{
	Use:       "set <light|dark>",
	Short:     "Set the theme",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(model.ThemeLight), string(model.ThemeDark)},
	RunE:      runThemeSet,
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between light and dark",
	RunE:  runThemeToggle,
}

func init() {
	themeCmd.AddCommand(themeGetCmd)
	themeCmd.AddCommand(themeSetCmd)
	themeCmd.AddCommand(themeToggleCmd)
	rootCmd.AddCommand(themeCmd)
}

func printTheme(t model.Theme) error {
	if jsonOut {
		return printJSON(map[string]any{"theme": t})
	}
	fmt.Println(t)
	return nil
}

func runThemeGet(_ *cobra.Command, _ []string) error {
	a, err := openStorage()
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.prefs.Theme()
	if err != nil {
		return err
	}
	return printTheme(t)
}

func runThemeSet(_ *cobra.Command, args []string) error {
	t, err := model.ParseTheme(args[0])
	if err != nil {
		return err
	}

	a, err := openStorage()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.prefs.SetTheme(t); err != nil {
		return err
	}
	return printTheme(t)
}

func runThemeToggle(_ *cobra.Command, _ []string) error {
	a, err := openStorage()
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.prefs.ToggleTheme()
	if err != nil {
		return err
	}
	return printTheme(t)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/cbseprep/internal/profile"
)

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark]",
	Short:     "Show or set the color theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(profile.ThemeLight), string(profile.ThemeDark)},
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if len(args) == 0 {
			fmt.Println(profile.LoadTheme(e.store.KV(), e.logger))
			return nil
		}

		t, err := profile.ParseTheme(args[0])
		if err != nil {
			return err
		}
		if err := profile.SaveTheme(e.store.KV(), t); err != nil {
			return fmt.Errorf("save theme: %w", err)
		}
		fmt.Printf("Theme set to %s\n", t)
		return nil
	},
}

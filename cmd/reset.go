package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/cbseprep/internal/profile"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget your profile and run onboarding again",
	Long:  "Clears the saved name, class and subjects. Saved conversations and the theme are kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := profile.ClearProfile(e.store.KV()); err != nil {
			return fmt.Errorf("clear profile: %w", err)
		}
		fmt.Println("Profile cleared. Onboarding will run on the next start.")
		return nil
	},
}

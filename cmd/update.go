package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abhisek/cbseprep/internal/selfupdate"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update cbseprep to the latest release",
	RunE: func(cmd *cobra.Command, args []string) error {
		checkOnly, _ := cmd.Flags().GetBool("check")
		history, _ := cmd.Flags().GetBool("history")
		target, _ := cmd.Flags().GetString("tag")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if history {
			return printUpdateHistory(e)
		}

		checker, err := newChecker(e)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if checkOnly {
			res, err := checker.Check(ctx, &selfupdate.CheckInput{Version: version})
			if err != nil {
				return fmt.Errorf("check for updates: %w", err)
			}
			if !res.UpdateAvailable {
				fmt.Printf("%s is the latest version.\n", version)
				return nil
			}
			fmt.Printf("%s is available (running %s): %s\n", res.LatestVersion, version, res.ReleaseURL)
			return nil
		}

		res, err := checker.Update(ctx, &selfupdate.UpdateInput{
			CurrentVersion: version,
			TargetVersion:  target,
			OnStage: func(_ selfupdate.Stage, msg string) {
				fmt.Println(msg)
			},
		})
		switch {
		case err == nil:
			color.Green("Updated %s → %s", res.FromVersion, res.ToVersion)
			return nil
		case errors.Is(err, selfupdate.ErrDevBuild):
			fmt.Println("Cannot update a development build. Install a release build first.")
			return nil
		case errors.Is(err, selfupdate.ErrAlreadyLatest):
			fmt.Println("Already running the latest version.")
			return nil
		case errors.Is(err, os.ErrPermission):
			return fmt.Errorf("%w\n\nTry running: sudo cbseprep update", err)
		}
		return err
	},
}

// newChecker points the release checker at the configured repository and
// records attempts in the local database.
func newChecker(e *env) (*selfupdate.Checker, error) {
	owner, repo, err := e.cfg.UpdateOwnerRepo()
	if err != nil {
		return nil, err
	}
	return selfupdate.NewChecker(
		selfupdate.WithTimeout(2*time.Minute),
		selfupdate.WithRepository(owner, repo),
		selfupdate.WithLogger(e.logger.Named("update")),
		selfupdate.WithRecorder(e.store.UpdateRepo()),
	), nil
}

func printUpdateHistory(e *env) error {
	events, err := e.store.UpdateRepo().RecentUpdateEvents(context.Background(), 10)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No update attempts recorded.")
		return nil
	}

	fmt.Printf("%-19s  %-10s  %-10s  %-4s  %s\n", "Timestamp", "From", "To", "OK", "Detail")
	fmt.Println(strings.Repeat("─", 80))
	for _, ev := range events {
		ok := color.GreenString("✓")
		detail := ev.Asset
		if !ev.Success {
			ok = color.RedString("✗")
			detail = ev.ErrorMessage
		}
		to := ev.ToVersion
		if to == "" {
			to = "-"
		}
		fmt.Printf("%-19s  %-10s  %-10s  %-4s  %s\n",
			ev.Timestamp.Local().Format("2006-01-02 15:04:05"), ev.FromVersion, to, ok, detail)
	}
	return nil
}

func init() {
	updateCmd.Flags().Bool("check", false, "Only report whether a newer release exists")
	updateCmd.Flags().Bool("history", false, "List recent update attempts")
	updateCmd.Flags().String("tag", "", "Install this release tag instead of the latest")
}

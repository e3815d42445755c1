package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abhisek/cbseprep/internal/query"
)

var errBackendDown = errors.New("answer service is not healthy")

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the answer service is up and ready",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		client := query.NewClient(cfg.APIURL, query.WithTimeout(cfg.RequestTimeout))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()

		fmt.Printf("Answer service: %s\n", client.BaseURL())

		h, err := client.Health(ctx)
		if err != nil {
			color.Red("✗ unreachable: %s", query.UserMessage(err))
			return errBackendDown
		}
		if !h.Healthy() {
			color.Red("✗ status %q", h.Status)
			return errBackendDown
		}
		color.Green("✓ %s is %s (%s)", h.Service, h.Status, h.Timestamp)

		r, err := client.Ready(ctx)
		if err != nil {
			color.Yellow("? readiness unknown: %v", err)
			return nil
		}

		names := make([]string, 0, len(r.Checks))
		for name := range r.Checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if r.Checks[name] {
				color.Green("  ✓ %s", name)
			} else {
				color.Red("  ✗ %s", name)
			}
		}
		if !r.Ready {
			color.Yellow("Service is up but not ready yet.")
		}
		return nil
	},
}

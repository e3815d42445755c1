package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abhisek/cbseprep/internal/store"
)

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Inspect recorded requests to the answer service",
}

var queriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		subject, _ := cmd.Flags().GetString("subject")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := context.Background()
		events, err := e.store.EventRepo().QueryQueryEvents(ctx, store.QueryOpts{Limit: limit, Subject: subject})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No requests recorded.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-14s  %-5s  %-4s  %-7s  %-4s  %s\n",
			"ID", "Timestamp", "Subject", "Marks", "Hist", "Ms", "OK", "Question")
		fmt.Println(strings.Repeat("─", 100))

		for _, ev := range events {
			ok := color.GreenString("✓")
			if !ev.Success {
				ok = color.RedString("✗")
			}
			q := []rune(ev.Question)
			if len(q) > 36 {
				q = append(q[:35], '…')
			}
			fmt.Printf("%-5d  %-19s  %-14s  %-5d  %-4d  %-7d  %-4s  %s\n",
				ev.ID,
				ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
				ev.Subject,
				ev.Marks,
				ev.HistoryLen,
				ev.LatencyMs,
				ok,
				string(q),
			)
		}
		return nil
	},
}

var queriesViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one recorded request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ev, err := e.store.EventRepo().GetQueryEvent(context.Background(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if ev == nil {
			return fmt.Errorf("event %d not found", id)
		}

		fmt.Printf("ID:        %d\n", ev.ID)
		fmt.Printf("Time:      %s\n", ev.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Subject:   %s\n", ev.Subject)
		fmt.Printf("Marks:     %d\n", ev.Marks)
		fmt.Printf("History:   %d entries\n", ev.HistoryLen)
		fmt.Printf("Latency:   %dms\n", ev.LatencyMs)
		fmt.Printf("Success:   %v\n", ev.Success)
		if ev.StatusCode != 0 {
			fmt.Printf("Status:    %d\n", ev.StatusCode)
		}
		if ev.Success {
			fmt.Printf("Sources:   %d\n", ev.SourceCount)
		}
		if ev.ErrorMessage != "" {
			fmt.Printf("Error:     %s\n", ev.ErrorMessage)
		}
		fmt.Println()
		fmt.Println(ev.Question)
		return nil
	},
}

var queriesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show request counts and latency by subject",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		stats, err := e.store.EventRepo().UsageBySubject(context.Background())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		if len(stats) == 0 {
			fmt.Println("No requests recorded yet.")
			return nil
		}

		fmt.Println("Usage by Subject")
		fmt.Println(strings.Repeat("─", 56))
		fmt.Printf("%-16s  %6s  %8s  %8s  %8s\n", "Subject", "Calls", "Failed", "Rate", "Avg Ms")
		fmt.Println(strings.Repeat("─", 56))

		var totalCalls, totalFailures int
		for _, st := range stats {
			fmt.Printf("%-16s  %6d  %8d  %7.0f%%  %8d\n",
				st.Subject, st.Calls, st.Failures, successRate(st.Calls, st.Failures), st.AvgLatencyMs)
			totalCalls += st.Calls
			totalFailures += st.Failures
		}

		fmt.Println(strings.Repeat("─", 56))
		fmt.Printf("%-16s  %6d  %8d  %7.0f%%\n",
			"TOTAL", totalCalls, totalFailures, successRate(totalCalls, totalFailures))
		return nil
	},
}

func successRate(calls, failures int) float64 {
	if calls == 0 {
		return 0
	}
	return float64(calls-failures) / float64(calls) * 100
}

func init() {
	queriesListCmd.Flags().Int("limit", 20, "Number of requests to show")
	queriesListCmd.Flags().String("subject", "", "Only show this subject")

	queriesCmd.AddCommand(queriesListCmd)
	queriesCmd.AddCommand(queriesViewCmd)
	queriesCmd.AddCommand(queriesStatsCmd)
}

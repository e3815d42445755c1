package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abhisek/cbseprep/internal/chat"
	"github.com/abhisek/cbseprep/internal/query"
	"github.com/abhisek/cbseprep/internal/syllabus"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Browse saved conversations",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		limit, _ := cmd.Flags().GetInt("limit")

		subjects := syllabus.Subjects
		if subject != "" {
			if !syllabus.IsSubject(subject) {
				return fmt.Errorf("%w: %q", query.ErrInvalidSubject, subject)
			}
			subjects = []string{subject}
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		chats := e.chats()

		found := false
		for _, subj := range subjects {
			sessions := chats.ListSessions(subj)
			if len(sessions) == 0 {
				continue
			}
			if limit > 0 && len(sessions) > limit {
				sessions = sessions[:limit]
			}
			found = true

			color.New(color.Bold).Println(subj)
			fmt.Printf("%-36s  %-16s  %4s  %s\n", "ID", "Updated", "Msgs", "Title")
			fmt.Println(strings.Repeat("─", 100))
			for _, s := range sessions {
				fmt.Printf("%-36s  %-16s  %4d  %s\n",
					s.ID,
					time.UnixMilli(s.Timestamp).Local().Format("2006-01-02 15:04"),
					len(s.Messages),
					s.Title,
				)
			}
			fmt.Println()
		}

		if !found {
			fmt.Println("No conversations yet.")
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		width, _ := cmd.Flags().GetInt("width")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		subject, s, err := findSession(e.chats(), args[0])
		if err != nil {
			return err
		}

		sep := strings.Repeat("─", 60)
		fmt.Printf("Title:     %s\n", s.Title)
		fmt.Printf("Subject:   %s\n", subject)
		fmt.Printf("Updated:   %s\n", time.UnixMilli(s.Timestamp).Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Messages:  %d\n", len(s.Messages))

		for _, m := range s.Messages {
			fmt.Println(sep)
			if m.Role == query.RoleUser {
				color.New(color.FgCyan, color.Bold).Printf("You (%d marks)\n", m.Marks)
				fmt.Println(m.Content)
				continue
			}
			color.New(color.FgGreen, color.Bold).Println("Answer")
			printAnswer(m, width)
		}
		return nil
	},
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a conversation as an HTML page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		subject, s, err := findSession(e.chats(), args[0])
		if err != nil {
			return err
		}

		if out == "" || out == "-" {
			return chat.ExportHTML(os.Stdout, subject, s)
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		if err := chat.ExportHTML(f, subject, s); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", out, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", out)
		return nil
	},
}

// findSession looks id up in every subject.
func findSession(chats *chat.Store, id string) (string, chat.Session, error) {
	for _, subj := range syllabus.Subjects {
		if s, err := chats.GetSession(subj, id); err == nil {
			return subj, s, nil
		}
	}
	return "", chat.Session{}, fmt.Errorf("%w: %s", chat.ErrSessionNotFound, id)
}

func init() {
	sessionsListCmd.Flags().StringP("subject", "s", "", "Only list this subject")
	sessionsListCmd.Flags().Int("limit", 0, "Max conversations per subject (0 = all)")
	sessionsShowCmd.Flags().Int("width", 80, "Wrap answers to this many columns")
	sessionsExportCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsExportCmd)
}

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abhisek/cbseprep/internal/chat"
	"github.com/abhisek/cbseprep/internal/syllabus"
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "List subjects with saved conversation counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		remote, _ := cmd.Flags().GetBool("remote")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if remote {
			ctx, cancel := context.WithTimeout(context.Background(), e.cfg.RequestTimeout)
			defer cancel()
			list, err := e.client().Subjects(ctx)
			if err != nil {
				return fmt.Errorf("fetch subjects from %s: %w", e.cfg.APIURL, err)
			}
			fmt.Printf("Answer service subjects (class %d)\n", list.Class)
			fmt.Println(strings.Repeat("─", 44))
			for _, s := range list.Subjects {
				supported := color.GreenString("✓")
				if !syllabus.IsSubject(s.Name) {
					supported = color.YellowString("not in this client")
				}
				fmt.Printf("%-16s  %3d chapters  %s\n", s.Name, s.Chapters, supported)
			}
			return nil
		}

		chats := e.chats()
		fmt.Printf("%-16s  %8s  %s\n", "Subject", "Chats", "Key")
		fmt.Println(strings.Repeat("─", 50))
		for _, s := range syllabus.Subjects {
			fmt.Printf("%-16s  %8d  %s\n", s, len(chats.ListSessions(s)), chat.Key(s))
		}
		return nil
	},
}

func init() {
	subjectsCmd.Flags().Bool("remote", false, "Ask the answer service which subjects it serves")
}

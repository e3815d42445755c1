package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abhisek/cbseprep/internal/chat"
	"github.com/abhisek/cbseprep/internal/markup"
	"github.com/abhisek/cbseprep/internal/profile"
	"github.com/abhisek/cbseprep/internal/query"
	"github.com/abhisek/cbseprep/internal/syllabus"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question, or start an interactive session with -i",
	Long: `Ask a syllabus question from the command line. The conversation is saved
exactly like one started in the TUI and shows up in its history.

Use --session to continue a saved conversation and -i to keep asking
follow-up questions until the input is closed.`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringP("subject", "s", "", "Subject (defaults to your first onboarding subject)")
	askCmd.Flags().IntP("marks", "m", syllabus.DefaultMarks, "Marks the answer should be worth: 1, 2, 3 or 5")
	askCmd.Flags().String("session", "", "Continue the saved conversation with this ID")
	askCmd.Flags().BoolP("interactive", "i", false, "Keep reading follow-up questions from stdin")
	askCmd.Flags().Int("width", 80, "Wrap answers to this many columns")
}

func runAsk(cmd *cobra.Command, args []string) error {
	marks, _ := cmd.Flags().GetInt("marks")
	sessionID, _ := cmd.Flags().GetString("session")
	interactive, _ := cmd.Flags().GetBool("interactive")
	width, _ := cmd.Flags().GetInt("width")

	if len(args) == 0 && !interactive {
		return errors.New("ask needs a question, or -i for an interactive session")
	}

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	subject, _ := cmd.Flags().GetString("subject")
	if subject == "" {
		subject = defaultSubject(e)
	}
	if !syllabus.IsSubject(subject) {
		return fmt.Errorf("%w: %q (choose from %s)", query.ErrInvalidSubject, subject, strings.Join(syllabus.Subjects, ", "))
	}

	ctrl := chat.NewController(e.chats(), subject, e.logger.Named("chat"))
	if err := ctrl.SetMarks(marks); err != nil {
		return err
	}
	if sessionID != "" {
		if err := ctrl.OpenSession(sessionID); err != nil {
			return fmt.Errorf("%w (subject %s)", err, subject)
		}
	}

	asker := e.asker(e.client())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if len(args) > 0 {
		if err := askOnce(ctx, ctrl, asker, strings.Join(args, " "), width); err != nil {
			return err
		}
	}
	if !interactive {
		return nil
	}

	color.Cyan("%s · %d marks · empty line or Ctrl+D to finish", ctrl.Subject(), ctrl.Marks())
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n› ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		if err := askOnce(ctx, ctrl, asker, line, width); err != nil {
			color.Red("%v", err)
		}
	}

	if id := ctrl.ActiveID(); id != "" {
		fmt.Printf("\nConversation saved as %s\n", id)
	}
	return nil
}

// askOnce sends question through ctrl. Inside an open conversation it is a
// follow-up; otherwise it starts a new one.
func askOnce(ctx context.Context, ctrl *chat.Controller, asker query.Asker, question string, width int) error {
	var (
		p   *chat.Pending
		err error
	)
	if ctrl.ActiveID() != "" {
		p, err = ctrl.BeginFollowUp(question, ctrl.Marks())
	} else {
		p, err = ctrl.Begin(question, ctrl.Marks())
	}
	if err != nil {
		if msg := ctrl.Err(); msg != "" {
			return errors.New(msg)
		}
		return err
	}
	if p == nil {
		return nil
	}

	if err := ctrl.Run(ctx, asker, p); err != nil {
		return errors.New(ctrl.Err())
	}

	transcript := ctrl.Transcript()
	printAnswer(transcript[len(transcript)-1], width)
	return nil
}

func printAnswer(m chat.Message, width int) {
	fmt.Println()
	fmt.Println(markup.Terminal(markup.Parse(m.Content), width))
	if m.Chapter != "" {
		fmt.Println()
		color.New(color.Faint).Printf("Chapter: %s\n", m.Chapter)
	}
	for _, s := range m.Sources {
		color.New(color.Faint).Printf("  ◦ %s (%d%%)\n", s.Label(), s.Percent())
	}
	if len(m.Keywords) > 0 {
		color.New(color.FgMagenta).Printf("#%s\n", strings.Join(m.Keywords, " #"))
	}
}

// defaultSubject picks the first subject of the saved profile, or the
// first subject of the syllabus before onboarding.
func defaultSubject(e *env) string {
	if p, ok := profile.LoadProfile(e.store.KV(), e.logger); ok && len(p.Subjects) > 0 {
		return p.Subjects[0]
	}
	return syllabus.Subjects[0]
}

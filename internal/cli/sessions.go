package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hikaru/emojitale/pkg/store"
)

var sessionsFollow bool

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Review journaled sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all journaled sessions",
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show one session in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)

	sessionsListCmd.Flags().BoolVarP(&sessionsFollow, "follow", "f", false, "keep listing as other processes append")
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	svc, err := newServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	printAll := func() error {
		sessions, err := svc.store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no sessions yet")
			return nil
		}
		for _, session := range sessions {
			fmt.Fprintln(cmd.OutOrStdout(), formatSessionLine(session))
		}
		return nil
	}

	if err := printAll(); err != nil {
		return err
	}
	if !sessionsFollow {
		return nil
	}

	refresh := make(chan struct{}, 1)
	watcher, err := store.NewWatcher(svc.store, svc.logger.Zerolog(), func() {
		select {
		case refresh <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer watcher.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-refresh:
			fmt.Fprintln(cmd.OutOrStdout())
			if err := printAll(); err != nil {
				return err
			}
		case <-stop:
			return nil
		case <-cmd.Context().Done():
			return nil
		}
	}
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	svc, err := newServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	session, err := svc.store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session:   %s\n", session.ID)
	fmt.Fprintf(out, "Created:   %s\n", session.Timestamp)
	fmt.Fprintf(out, "Emojis:    %s\n", strings.Join(session.Emojis, " "))
	if session.Notes != "" {
		fmt.Fprintf(out, "Notes:\n%s\n", session.Notes)
	}
	return nil
}

// formatSessionLine renders one session as a compact listing row.
func formatSessionLine(session store.Session) string {
	notes := strings.ReplaceAll(session.Notes, "\n", " ")
	if runes := []rune(notes); len(runes) > 40 {
		notes = string(runes[:40]) + "…"
	}
	return fmt.Sprintf("%s  %s  %s  %s",
		session.ID, session.Timestamp, strings.Join(session.Emojis, " "), notes)
}

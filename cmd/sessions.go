package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/RealHickory4944/puter/internal/puter"
	"github.com/RealHickory4944/puter/internal/puterc"
	"github.com/RealHickory4944/puter/internal/puterc/config"
	"github.com/RealHickory4944/puter/internal/puterc/session"
)

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage conversation sessions",
	Long: `Manage saved conversation sessions.

Sessions store conversation history as JSON files next to the config
file. Continue a session with 'puter chat -s <id>'.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := session.ListSessions()
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
			fmt.Println("Create one with: puter chat --new-session \"your message\"")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tMODEL\tMESSAGES\tUPDATED")
		for _, s := range sessions {
			name := s.Name
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				s.GetShortID(), name, s.Model, s.MessageCount(),
				s.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session's conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := session.FindSessionByPrefix(args[0])
		if err != nil {
			return fmt.Errorf("finding session: %w", err)
		}

		fmt.Printf("Session: %s\n", sess.GetDisplayName())
		fmt.Printf("Model: %s\n", sess.Model)
		if sess.SystemPrompt != "" {
			fmt.Printf("System prompt: %s\n", sess.SystemPrompt)
		}
		fmt.Printf("Created: %s\n", sess.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Printf("Messages: %d\n\n", sess.MessageCount())

		for _, m := range sess.Messages {
			fmt.Printf("[%s] %s\n\n", m.Role, m.Content)
		}
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := session.FindSessionByPrefix(args[0])
		if err != nil {
			return fmt.Errorf("finding session: %w", err)
		}

		if err := session.DeleteSession(sess.ID); err != nil {
			return fmt.Errorf("deleting session: %w", err)
		}

		fmt.Printf("Deleted session: %s\n", sess.GetDisplayName())
		return nil
	},
}

var sessionsContinueCmd = &cobra.Command{
	Use:   "continue [session-id]",
	Short: "Continue a session interactively",
	Long: `Continue a chat session in interactive mode.

Without a session ID a new session is created first. The ID can be a
short ID (minimum 4 characters), a full UUID, or "latest" for the most
recent session.

Examples:
  puter sessions continue            # Start a new interactive session
  puter sessions continue 550e8400   # Continue session 550e8400
  puter sessions continue latest     # Continue the latest session`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		var sess *session.Session
		if len(args) > 0 {
			sess, err = session.FindSessionByPrefix(args[0])
			if err != nil {
				return fmt.Errorf("finding session: %w", err)
			}
			cfg.Model = sess.Model

			if verbose {
				fmt.Fprintf(os.Stderr, "Continuing session: %s\n", sess.GetShortID())
				fmt.Fprintf(os.Stderr, "Model: %s\n", sess.Model)
			}
		} else {
			sess = session.NewSession(cfg.Model)
			if err := session.SaveSession(sess); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Session created: %s\n", sess.GetShortID())
		}

		return runInteractive(sess, newClient(cfg))
	},
}

// runInteractive drives the read-chat-save loop until EOF or /exit.
func runInteractive(sess *session.Session, client *puter.Client) error {
	fmt.Fprintf(os.Stderr, "\n=== Session [%s] ===\n", sess.GetShortID())
	fmt.Fprintf(os.Stderr, "Model: %s\n", sess.Model)
	if sess.SystemPrompt != "" {
		fmt.Fprintf(os.Stderr, "System prompt: %s\n", sess.SystemPrompt)
	}
	fmt.Fprintf(os.Stderr, "Type '/help' for commands, '/exit' or Ctrl+D to quit\n\n")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stderr, "You> ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			fmt.Fprintln(os.Stderr, "\nGoodbye!")
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.HasPrefix(input, "/") {
			if handleInteractiveCommand(input, sess) {
				continue
			}
			return nil
		}

		done := make(chan bool)
		go showSpinner(done)
		response, err := interactiveTurn(context.Background(), sess, client, input)
		done <- true

		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		fmt.Printf("\nAssistant> %s\n\n", response)
	}
}

// interactiveTurn sends one user message with the session's history,
// records both turns and persists the session.
func interactiveTurn(ctx context.Context, sess *session.Session, client *puter.Client, input string) (string, error) {
	var messages []puter.Message
	if sess.SystemPrompt != "" {
		messages = append(messages, puter.Message{Role: puterc.RoleSystem, Content: sess.SystemPrompt})
	}
	messages = append(messages, toWireMessages(sess.Messages)...)
	messages = append(messages, puter.Message{Role: puterc.RoleUser, Content: input})

	result, err := client.ChatMessages(ctx, messages, puter.Options{})
	if err != nil {
		return "", err
	}

	sess.AddMessage(puterc.RoleUser, input)
	sess.AddMessage(puterc.RoleAssistant, result.Text)
	if err := session.SaveSession(sess); err != nil {
		return "", fmt.Errorf("saving session: %w", err)
	}
	return result.Text, nil
}

// showSpinner displays a spinner animation while waiting for a response.
func showSpinner(done chan bool) {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	i := 0
	for {
		select {
		case <-done:
			fmt.Fprint(os.Stderr, "\r\033[K")
			return
		default:
			fmt.Fprintf(os.Stderr, "\r%s Waiting for response...", spinners[i])
			i = (i + 1) % len(spinners)
			time.Sleep(80 * time.Millisecond)
		}
	}
}

// handleInteractiveCommand processes slash commands in interactive mode.
// Returns true to continue the loop, false to exit.
func handleInteractiveCommand(command string, sess *session.Session) bool {
	switch strings.ToLower(strings.TrimSpace(command)) {
	case "/help", "/h":
		fmt.Fprintln(os.Stderr, "\nAvailable commands:")
		fmt.Fprintln(os.Stderr, "  /help, /h     - Show this help message")
		fmt.Fprintln(os.Stderr, "  /info, /i     - Show session information")
		fmt.Fprintln(os.Stderr, "  /exit, /quit  - Exit interactive mode")
		fmt.Fprintln(os.Stderr, "  Ctrl+D        - Exit interactive mode")
		fmt.Fprintln(os.Stderr, "")
		return true

	case "/info", "/i":
		fmt.Fprintln(os.Stderr, "\nSession Information:")
		fmt.Fprintf(os.Stderr, "  ID: %s\n", sess.GetShortID())
		fmt.Fprintf(os.Stderr, "  Full ID: %s\n", sess.ID)
		if sess.Name != "" {
			fmt.Fprintf(os.Stderr, "  Name: %s\n", sess.Name)
		}
		fmt.Fprintf(os.Stderr, "  Model: %s\n", sess.Model)
		fmt.Fprintf(os.Stderr, "  Messages: %d\n", sess.MessageCount())
		fmt.Fprintf(os.Stderr, "  Created: %s\n", sess.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintln(os.Stderr, "")
		return true

	case "/exit", "/quit", "/q":
		fmt.Fprintln(os.Stderr, "Goodbye!")
		return false

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s (type '/help' for available commands)\n", command)
		return true
	}
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsContinueCmd)
}

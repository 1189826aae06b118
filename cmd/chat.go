/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RealHickory4944/puter/internal/puter"
	"github.com/RealHickory4944/puter/internal/puterc"
	"github.com/RealHickory4944/puter/internal/puterc/config"
	promptpkg "github.com/RealHickory4944/puter/internal/puterc/prompt"
	"github.com/RealHickory4944/puter/internal/puterc/session"
)

var (
	model       string
	prompt      string
	argFlags    []string
	useEditor   bool
	streamMode  bool
	sessionID   string
	newSession  bool
	sessionName string
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send a chat message to Puter AI",
	Long: `Send a chat message through Puter's driver-call API and print the response.

If no message is provided as an argument, it reads from stdin.
If --editor flag is set, it opens the default editor (from EDITOR environment variable) to compose the message.

With --stream, response fragments are printed as the backend produces them.

The prompt file should be in TOML format with the following structure:
system = "System prompt with optional {{input}} placeholder"
user = "User prompt with optional {{input}} placeholder"
model = "optional-model-name"  # Optional: overrides the default model for this prompt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration from file
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		// Validate session flags
		if sessionID != "" && newSession {
			return fmt.Errorf("cannot specify both --session and --new-session")
		}
		if sessionID != "" && prompt != "" {
			return fmt.Errorf("cannot use --prompt with existing session")
		}

		// Get message from arguments, editor, or stdin
		var message string
		if useEditor {
			message, err = getMessageFromEditor()
			if err != nil {
				return fmt.Errorf("getting message from editor: %w", err)
			}
		} else if len(args) > 0 {
			message = strings.Join(args, " ")
		} else {
			input, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading from stdin: %w", err)
			}
			message = strings.TrimSpace(string(input))
		}
		if message == "" {
			return fmt.Errorf("message is empty")
		}

		var sess *session.Session
		var systemPrompt string
		var isNewSession bool

		if sessionID != "" {
			// Continue an existing session
			sess, err = session.FindSessionByPrefix(sessionID)
			if err != nil {
				return fmt.Errorf("finding session: %w", err)
			}

			systemPrompt = sess.SystemPrompt
			cfg.Model = sess.Model

			if verbose {
				fmt.Fprintf(os.Stderr, "Continuing session: %s\n", sess.GetShortID())
				fmt.Fprintf(os.Stderr, "Model: %s\n", sess.Model)
			}
		} else {
			// Format message with prompt template if specified
			formatted, err := promptpkg.FormatMessage(message, prompt, cfg.PromptDirs, argFlags)
			if err != nil {
				return fmt.Errorf("formatting message with prompt: %w", err)
			}
			systemPrompt = formatted.System
			message = formatted.User

			// Apply model with priority: flag > env > prompt template > config file
			envModel := os.Getenv("PUTER_MODEL")
			if cmd.Flags().Changed("model") {
				cfg.Model = model
			} else if envModel != "" {
				cfg.Model = envModel
			} else if formatted.Model != nil {
				cfg.Model = *formatted.Model
				if verbose {
					fmt.Fprintf(os.Stderr, "Using model from prompt file: %s\n", cfg.Model)
				}
			}

			if newSession {
				isNewSession = true
				sess = session.NewSession(cfg.Model)
				sess.Name = sessionName
				sess.TemplateName = prompt
				sess.SystemPrompt = systemPrompt

				if verbose {
					fmt.Fprintf(os.Stderr, "Creating new session: %s\n", sess.GetShortID())
				}
			}
		}

		client := newClient(cfg)

		// Assemble the conversation: system prompt, history, new message
		var messages []puter.Message
		if systemPrompt != "" {
			messages = append(messages, puter.Message{Role: puterc.RoleSystem, Content: systemPrompt})
		}
		if sess != nil {
			messages = append(messages, toWireMessages(sess.Messages)...)
		}
		messages = append(messages, puter.Message{Role: puterc.RoleUser, Content: message})

		ctx := context.Background()

		var response string
		if streamMode {
			response, err = streamChat(ctx, client, messages)
		} else {
			var result *puter.Result
			result, err = client.ChatMessages(ctx, messages, puter.Options{})
			if err == nil {
				response = result.Text
				fmt.Println(response)
			}
		}
		if err != nil {
			return fmt.Errorf("chat request failed: %w", err)
		}

		if sess != nil {
			sess.AddMessage(puterc.RoleUser, message)
			sess.AddMessage(puterc.RoleAssistant, response)
			if err := session.SaveSession(sess); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}
		}

		if isNewSession {
			fmt.Fprintf(os.Stderr, "\nSession created: %s\n", sess.GetShortID())
			fmt.Fprintf(os.Stderr, "Next time, use:\n  puter chat -s %s \"your message\"\n", sess.GetShortID())
		}

		return nil
	},
}

// streamChat prints fragments as they arrive and returns the full text.
func streamChat(ctx context.Context, client *puter.Client, messages []puter.Message) (string, error) {
	stream, err := client.StreamMessages(ctx, messages, puter.Options{})
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var full strings.Builder
	for {
		fragment, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return full.String(), err
		}
		fmt.Print(fragment.Text)
		full.WriteString(fragment.Text)
	}
	fmt.Println()
	return full.String(), nil
}

// newClient builds a puter client from the loaded configuration.
func newClient(cfg *config.Config) *puter.Client {
	return puter.New(puter.Config{
		APIBaseURL:          cfg.APIBaseURL,
		GUIOrigin:           cfg.GUIOrigin,
		Token:               cfg.Token,
		Model:               cfg.Model,
		AllowTempGuest:      cfg.AllowTempGuest,
		TempGuestPerRequest: cfg.TempGuestPerRequest,
		AuthTimeout:         cfg.AuthTimeout(),
		CallbackPort:        cfg.CallbackPort,
	})
}

func toWireMessages(history []puterc.Message) []puter.Message {
	messages := make([]puter.Message, 0, len(history))
	for _, m := range history {
		messages = append(messages, puter.Message{Role: m.Role, Content: m.Content})
	}
	return messages
}

// getMessageFromEditor opens the default editor and returns the edited message
func getMessageFromEditor() (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		return "", fmt.Errorf("EDITOR environment variable is not set")
	}

	// Create a temporary file
	tmpFile, err := os.CreateTemp("", "puter-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	// Open the editor
	cmd := exec.Command(editor, tmpFile.Name())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to open editor: %v", err)
	}

	// Read the edited content
	content, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		return "", fmt.Errorf("failed to read edited content: %v", err)
	}

	return strings.TrimSpace(string(content)), nil
}

func init() {
	rootCmd.AddCommand(chatCmd)

	// Add command options
	chatCmd.Flags().StringVarP(&model, "model", "m", "", "Model to use (e.g., gpt-5-nano)")
	chatCmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Name of the prompt template (without .toml extension)")
	chatCmd.Flags().StringArrayVar(&argFlags, "arg", []string{}, "Key-value pairs for prompt template (format: key:value)")
	chatCmd.Flags().BoolVarP(&useEditor, "editor", "e", false, "Use default editor (from EDITOR environment variable) to compose message")
	chatCmd.Flags().BoolVar(&streamMode, "stream", false, "Stream response fragments as they arrive")

	// Session flags
	chatCmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session ID (short or full UUID, or 'latest' for most recent session)")
	chatCmd.Flags().BoolVarP(&newSession, "new-session", "n", false, "Create a new session")
	chatCmd.Flags().StringVar(&sessionName, "name", "", "Name for the new session (optional)")
}

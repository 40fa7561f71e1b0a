package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"study-buddy/api/internal/assistant"
	"study-buddy/api/internal/tutor"
)

var askFlags struct {
	mode        string
	lang        string
	class       string
	subject     string
	contextFile string
	endpoint    string
}

var askCmd = &cobra.Command{
	Use:   `ask "<message>"`,
	Short: "Ask the tutor a question and print the answer",
	Long: `ask sends the question to the tutor server (--endpoint or ASSISTANT_ENDPOINT).
When the server is unreachable, or none is configured, the answer comes from the offline rules.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var scanned string
		if askFlags.contextFile != "" {
			b, err := os.ReadFile(askFlags.contextFile)
			if err != nil {
				return fmt.Errorf("reading context: %w", err)
			}
			scanned = string(b)
		}

		endpoint := askFlags.endpoint
		if endpoint == "" {
			endpoint = cfg.AssistantEndpoint
		}
		var primary assistant.Asker
		if endpoint != "" {
			primary = assistant.NewRemote(endpoint, cfg.RequestTimeout)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout+cfg.FallbackDelay)
		defer cancel()

		reply := assistant.New(primary, assistant.WithDelay(cfg.FallbackDelay)).Reply(ctx, assistant.Question{
			Message:  strings.Join(args, " "),
			Context:  scanned,
			Mode:     tutor.ParseMode(askFlags.mode),
			Language: askFlags.lang,
			Class:    askFlags.class,
			Subject:  askFlags.subject,
		})
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

func init() {
	f := askCmd.Flags()
	f.StringVarP(&askFlags.mode, "mode", "m", "chat", "chat | study | exam | coding")
	f.StringVarP(&askFlags.lang, "lang", "l", tutor.DefaultLanguage, "reply language")
	f.StringVar(&askFlags.class, "class", "", "student's class")
	f.StringVar(&askFlags.subject, "subject", "", "subject")
	f.StringVar(&askFlags.contextFile, "context-file", "", "file with scanned textbook text")
	f.StringVar(&askFlags.endpoint, "endpoint", "", "tutor server base URL, e.g. http://localhost:5000/api")
	rootCmd.AddCommand(askCmd)
}

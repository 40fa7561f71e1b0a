package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"study-buddy/api/internal/tutor"
)

var promptFlags struct {
	mode    string
	lang    string
	class   string
	subject string
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the system prompt and sampling settings for a mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		selector, err := buildSelector(cfg)
		if err != nil {
			return err
		}
		req := tutor.PromptRequest{
			Mode:     tutor.ParseMode(promptFlags.mode),
			Language: promptFlags.lang,
			Class:    promptFlags.class,
			Subject:  promptFlags.subject,
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "mode: %s (%s)\ntemperature: %.1f\nmax_tokens: %d\n\n", req.Mode, req.Mode.Label(), tutor.Temperature(req.Mode), tutor.MaxTokens)
		fmt.Fprintln(out, selector.Select(req))
		return nil
	},
}

func init() {
	f := promptCmd.Flags()
	f.StringVarP(&promptFlags.mode, "mode", "m", "chat", "chat | study | exam | coding")
	f.StringVarP(&promptFlags.lang, "lang", "l", "", "reply language")
	f.StringVar(&promptFlags.class, "class", "", "student's class")
	f.StringVar(&promptFlags.subject, "subject", "", "subject")
	rootCmd.AddCommand(promptCmd)
}

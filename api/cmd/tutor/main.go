package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"study-buddy/api/internal/config"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "tutor",
	Short: "Study buddy - an AI tutor for school students",
	Long: `tutor answers students' questions in chat, study, exam and coding modes,
reads textbook pages from photos and falls back to offline answers when the model is unreachable.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (env vars override it)")
}

func loadConfig() (*config.Config, error) {
	return config.Load(configFile)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

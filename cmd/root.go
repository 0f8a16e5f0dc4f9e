package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aipod",
	Short: "AI podcast generation service",
	Long:  `aipod generates complete podcast episodes from a topic: script, synthesized audio, MP3 encoding, and cover art.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	settingDefaultConfig()
}

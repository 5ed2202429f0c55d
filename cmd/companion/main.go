package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

// Global flags.
var (
	cfgFile  string
	headless bool
	mockMode bool
)

var rootCmd = &cobra.Command{
	Use:   "companion",
	Short: "Live transcript and AI insights for a video call",
	Long: `companion resolves the video room of a call, opens it in the browser and
keeps a live transcript of what you say. While you talk it periodically asks
Gemini for a summary, action items and talking points.

Without an API key the insights are mock data, which is handy for demos.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "path to the config file")
	rootCmd.Flags().BoolVar(&headless, "headless", false, "log transcript and insights instead of drawing the panel")
	rootCmd.Flags().BoolVar(&mockMode, "mock", false, "ignore configured credentials and serve mock insights")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(keyCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

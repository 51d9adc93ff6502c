package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// Version information (set by build flags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "careerflow",
	Short: "Interview preparation assistant",
	Long: `careerflow - Interview preparation assistant

Company-specific interview roadmaps, AI-assisted Q&A, mock tests and
resume scoring from the command line. Sign in once with 'careerflow login';
the session is reused by later commands.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)

	// Backend flags
	rootCmd.PersistentFlags().String("api-url", "", "Backend base URL (overrides CAREERFLOW_API_BASE_URL)")
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Second, "Request timeout")

	// Output flags
	rootCmd.PersistentFlags().StringP("format", "f", "text", "Output format (text, json)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("careerflow %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flat-scout",
	Short: "Scrape OLX real-estate listings and geocode every offer",
	Long: `flat-scout builds an OLX search URL from your filters, extracts the offers on
the first result page, resolves each offer's place to coordinates and prints the batch.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mspro-labs/flat-scout/internal/config"
	"mspro-labs/flat-scout/internal/db"
)

var geocacheCmd = &cobra.Command{
	Use:   "geocache [list|clear]",
	Short: "Inspect or clear the local geocode cache",
	Long: `The geocode cache is only used when geocode.cache is enabled in the site config.
Examples:
  flat-scout geocache list
  flat-scout geocache clear "Wrocław, Krzyki"
  flat-scout geocache clear all`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleGeocache(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(geocacheCmd)
}

func handleGeocache(cmd *cobra.Command, args []string) error {
	appCfg, err := config.GetAppConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	database, err := db.Connect(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	defer database.Close()

	out := cmd.OutOrStdout()

	switch strings.ToLower(args[0]) {
	case "list":
		entries, err := db.ListGeocodeCache(database)
		if err != nil {
			return fmt.Errorf("failed to list cache: %w", err)
		}
		fmt.Fprintln(out, "Geocode cache")
		fmt.Fprintln(out, "------------------------------------")
		if len(entries) == 0 {
			fmt.Fprintln(out, "Cache is empty.")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "[%s] %s -> lat=%f, lng=%f\n", e.CreatedAt.Format("2006-01-02 15:04"), e.Place, e.Lat, e.Lng)
		}
		return nil

	case "clear":
		if len(args) < 2 {
			return fmt.Errorf("usage: flat-scout geocache clear \"place\" (or 'all')")
		}
		target := strings.TrimSpace(strings.Join(args[1:], " "))
		var affected int64
		if strings.EqualFold(target, "all") {
			affected, err = db.ClearAllGeocodeCache(database)
		} else {
			affected, err = db.ClearGeocodeCache(database, target)
		}
		if err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Fprintf(out, "Done. Removed %d entry(s) from cache.\n", affected)
		return nil
	}

	return fmt.Errorf("unknown geocache command %q (want list or clear)", args[0])
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"mspro-labs/flat-scout/internal/config"
	"mspro-labs/flat-scout/internal/db"
	"mspro-labs/flat-scout/internal/geocode"
	"mspro-labs/flat-scout/internal/logging"
	"mspro-labs/flat-scout/internal/models"
	"mspro-labs/flat-scout/internal/publish"
	"mspro-labs/flat-scout/internal/query"
	"mspro-labs/flat-scout/internal/scraper"
)

type scrapeOptions struct {
	offerType string
	roomType  string
	query     string
	place     string
	minPrice  int
	maxPrice  int
	radius    int
	asJSON    bool
}

var scrapeOpts scrapeOptions

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape one listing page and geocode its offers",
	Long: `Builds the search URL from the given filters, fetches the first result page,
extracts the offers and geocodes every one of them. If any lookup fails the
whole batch is discarded.
Examples:
  flat-scout scrape --type room --rooms one --place Wrocław --max-price 1500
  flat-scout scrape --type flat --place Kraków --query balkon --radius 5 --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := scrapeOpts.filterSpec(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runScrape(ctx, spec, scrapeOpts.asJSON, cmd.OutOrStdout())
	},
}

func init() {
	f := scrapeCmd.Flags()
	f.StringVar(&scrapeOpts.offerType, "type", "", "offer type: flat, room or house")
	f.StringVar(&scrapeOpts.roomType, "rooms", "", "room size for room offers: one, two or three")
	f.StringVar(&scrapeOpts.query, "query", "", "free-text search phrase (used together with --place)")
	f.StringVar(&scrapeOpts.place, "place", "", "city or district")
	f.IntVar(&scrapeOpts.minPrice, "min-price", 0, "minimum price")
	f.IntVar(&scrapeOpts.maxPrice, "max-price", 0, "maximum price")
	f.IntVar(&scrapeOpts.radius, "radius", 0, "search radius around place in km")
	f.BoolVar(&scrapeOpts.asJSON, "json", false, "print the batch as JSON")
	rootCmd.AddCommand(scrapeCmd)
}

// filterSpec leaves numeric filters nil unless their flag was given.
func (o scrapeOptions) filterSpec(cmd *cobra.Command) (models.FilterSpec, error) {
	offerType, err := models.ParseOfferType(o.offerType)
	if err != nil {
		return models.FilterSpec{}, err
	}
	roomType, err := models.ParseRoomType(o.roomType)
	if err != nil {
		return models.FilterSpec{}, err
	}

	spec := models.FilterSpec{
		OfferType: offerType,
		RoomType:  roomType,
		Query:     o.query,
		Place:     o.place,
	}
	if cmd.Flags().Changed("min-price") {
		spec.MinPrice = &o.minPrice
	}
	if cmd.Flags().Changed("max-price") {
		spec.MaxPrice = &o.maxPrice
	}
	if cmd.Flags().Changed("radius") {
		spec.Radius = &o.radius
	}
	return spec, nil
}

func runScrape(ctx context.Context, spec models.FilterSpec, asJSON bool, out io.Writer) error {
	// 1. Load Config
	appCfg, err := config.GetAppConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	siteCfg, err := config.LoadSiteConfig(appCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load site config: %w", err)
	}

	logger, closeLog, err := logging.New(appCfg.Log, os.Stderr)
	if err != nil {
		return fmt.Errorf("logging setup failed: %w", err)
	}
	defer closeLog()

	// 2. Geocoding, optionally memoized in sqlite
	google, err := geocode.NewGoogleClient(appCfg.GeocodeAPIKey, siteCfg.Geocode)
	if err != nil {
		return err
	}
	var client geocode.Client = google
	if siteCfg.Geocode.Cache {
		database, err := db.Connect(appCfg.DBPath)
		if err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		defer database.Close()
		client = geocode.NewCachedClient(google, database, logger)
	}

	// 3. Wire the pipeline
	pipeline := scraper.NewPipeline(
		query.Builder{BaseURL: siteCfg.BaseURL},
		scraper.NewFetcher(siteCfg),
		scraper.NewExtractor(siteCfg.Selectors, logger),
		geocode.NewEnricher(client, logger),
		logger,
	)

	pub := publish.New()
	results, unsubscribe := pub.Subscribe()
	defer unsubscribe()

	// 4. Run and wait for the single outcome
	if err := pipeline.Run(ctx, spec, pub); err != nil {
		logger.Debug("Pipeline returned error", "error", err)
	}

	res := <-results
	if res.Err != nil {
		return fmt.Errorf("scrape failed: %w", res.Err)
	}
	return printBatch(out, res.Batch, asJSON, logger)
}

func printBatch(out io.Writer, batch models.Batch, asJSON bool, logger *slog.Logger) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(batch)
	}

	fmt.Fprintf(out, "Batch %s (%s)\n", batch.ID, batch.Target)
	fmt.Fprintln(out, "------------------------------------")
	if len(batch.Offers) == 0 {
		fmt.Fprintln(out, "No offers found.")
		return nil
	}
	for i, o := range batch.Offers {
		published := "-"
		if o.PublishedDate != nil {
			published = o.PublishedDate.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(out, "%2d. %s | %.2f zł | %s [%s]\n", i+1, o.Title, o.Price, o.Place, o.Coordinates)
		fmt.Fprintf(out, "    %s (published %s)\n", o.Link, published)
	}
	logger.Info("Scrape finished", "batch_id", batch.ID.String(), "offers", len(batch.Offers))
	return nil
}

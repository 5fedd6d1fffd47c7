package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"wms.GO/config"
	"wms.GO/model"
	catalogRepo "wms.GO/model/repository/catalog"
	inventoryRepo "wms.GO/model/repository/inventory"
	mappingRepo "wms.GO/model/repository/mapping"
	"wms.GO/service/harmonize"
	"wms.GO/service/ingest"
	"wms.GO/service/ledger"
)

var (
	salesFile        string
	salesMarketplace string
	salesLocation    string
	salesDryRun      bool
)

var salesImportCmd = &cobra.Command{
	Use:   "sales:import",
	Short: "Harmonize a marketplace order export and post it to the inventory ledger",
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(salesFile)
		if err != nil {
			fmt.Printf("Failed to open CSV: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()

		config.LoadAppConfig()
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			os.Exit(1)
		}
		if err := model.Migrate(db); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		if err := model.Seed(db); err != nil {
			fmt.Printf("Seeding failed: %v\n", err)
			os.Exit(1)
		}

		headers, rows, err := ingest.ReadCSV(f)
		if err != nil {
			fmt.Printf("CSV read failed: %v\n", err)
			os.Exit(1)
		}

		marketplace := salesMarketplace
		if marketplace == "" {
			marketplace = ingest.DetectMarketplace(headers)
		}
		marketplaceID, err := model.MarketplaceID(db, marketplace)
		if err != nil {
			fmt.Printf("Marketplace lookup failed: %v\n", err)
			os.Exit(1)
		}

		lines, err := ingest.Normalize(rows, marketplace, marketplaceID)
		if err != nil {
			fmt.Printf("Normalization failed: %v\n", err)
			os.Exit(1)
		}

		mappings := mappingRepo.NewMappingRepository(db)
		resolver := harmonize.NewComboResolver(mappings, catalogRepo.NewCatalogRepository(db))
		engine := harmonize.NewEngine(mappings, resolver, log.Logger)

		resolved, unmapped, err := engine.Process(lines)
		if err != nil {
			fmt.Printf("Harmonization failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf(`
=== Harmonization Report ===
Marketplace:    %s
CSV rows:       %d
Resolved lines: %d
Unmapped lines: %d
`, marketplace, len(rows), len(resolved), len(unmapped))

		for _, entry := range harmonize.Report(unmapped) {
			fmt.Printf("  [unmapped] %s x%d (%d rows)\n", entry.SKU, entry.TotalQuantity, entry.Occurrences)
		}

		if salesDryRun {
			fmt.Println("Dry run, ledger not touched.")
			return
		}
		if len(resolved) == 0 {
			fmt.Println("Nothing to post.")
			return
		}

		location := salesLocation
		if location == "" {
			location = config.AppConfig.DefaultLocation
		}
		locationID, err := model.LocationIDByCode(db, location)
		if err != nil {
			fmt.Printf("Location lookup failed: %v\n", err)
			os.Exit(1)
		}

		repo, err := inventoryRepo.NewInventoryRepository(db)
		if err != nil {
			fmt.Printf("Inventory repository failed: %v\n", err)
			os.Exit(1)
		}
		led := ledger.NewLedger(db, repo, ledger.Options{
			AllowNegative: config.AppConfig.AllowNegativeStock,
		}, log.Logger)

		result, err := led.Apply(context.Background(), resolved, "order", locationID)
		if err != nil {
			fmt.Printf("Ledger apply failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Posted batch %s (%d transactions) at %s.\n", result.BatchID, len(result.Transactions), location)
	},
}

func init() {
	salesImportCmd.Flags().StringVarP(&salesFile, "file", "f", "", "CSV export to import (required)")
	salesImportCmd.Flags().StringVarP(&salesMarketplace, "marketplace", "m", "", "Marketplace name (default: detect from headers)")
	salesImportCmd.Flags().StringVarP(&salesLocation, "location", "l", "", "Warehouse location code")
	salesImportCmd.Flags().BoolVar(&salesDryRun, "dry-run", false, "Harmonize only, do not post to the ledger")
	_ = salesImportCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(salesImportCmd)
}

package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"wms.GO/config"
	"wms.GO/model"
	mappingEntity "wms.GO/model/entity/mapping"
	mappingRepo "wms.GO/model/repository/mapping"
)

var mappingsFile string

// CSV layout: marketplace,sku,msku,units_per_sku
var mappingsImportCmd = &cobra.Command{
	Use:   "mappings:import",
	Short: "Bulk import sku mappings from CSV",
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(mappingsFile)
		if err != nil {
			fmt.Printf("Failed to open CSV: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()

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

		reader := csv.NewReader(f)
		records, err := reader.ReadAll()
		if err != nil {
			fmt.Printf("CSV read failed: %v\n", err)
			os.Exit(1)
		}

		repo := mappingRepo.NewMappingRepository(db)
		imported, failed := 0, 0
		for i, rec := range records {
			if i == 0 && rec[0] == "marketplace" {
				continue
			}
			if len(rec) < 3 {
				fmt.Printf("  [skip] row %d: too few columns\n", i+1)
				failed++
				continue
			}
			marketplaceID, err := model.MarketplaceID(db, rec[0])
			if err != nil {
				fmt.Printf("  [fail] row %d: %v\n", i+1, err)
				failed++
				continue
			}
			units := 1
			if len(rec) > 3 && rec[3] != "" {
				if n, err := strconv.Atoi(rec[3]); err == nil {
					units = n
				}
			}
			if err := repo.Upsert(marketplaceID, rec[1], rec[2], units); err != nil {
				fmt.Printf("  [fail] row %d (%s): %v\n", i+1, rec[1], err)
				failed++
				continue
			}
			imported++
		}
		fmt.Printf("Imported %d mappings, %d failed.\n", imported, failed)
	},
}

var mappingsExportCmd = &cobra.Command{
	Use:   "mappings:export",
	Short: "Dump all sku mappings as CSV to stdout",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			os.Exit(1)
		}
		var rows []mappingEntity.SkuMapping
		if err := db.Order("marketplace_id, sku").Find(&rows).Error; err != nil {
			fmt.Printf("Query failed: %v\n", err)
			os.Exit(1)
		}
		w := csv.NewWriter(os.Stdout)
		_ = w.Write([]string{"marketplace_id", "sku", "msku", "units_per_sku"})
		for _, m := range rows {
			_ = w.Write([]string{
				strconv.FormatUint(uint64(m.MarketplaceID), 10),
				m.SKU,
				m.MSKU,
				strconv.Itoa(m.UnitsPerSKU),
			})
		}
		w.Flush()
	},
}

func init() {
	mappingsImportCmd.Flags().StringVarP(&mappingsFile, "file", "f", "", "CSV file to import (required)")
	_ = mappingsImportCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(mappingsImportCmd)
	rootCmd.AddCommand(mappingsExportCmd)
}

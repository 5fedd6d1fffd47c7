package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wms.GO/config"
	"wms.GO/model"
)

var migrateCmd = &cobra.Command{
	Use:   "db:migrate",
	Short: "Create or update the warehouse tables and seed baseline rows",
	Run: func(cmd *cobra.Command, args []string) {
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
		fmt.Println("Migration complete.")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

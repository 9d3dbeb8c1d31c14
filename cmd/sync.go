/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/suderio/arcane-ledger/internal/sheetapi"
)

var syncCmd = &cobra.Command{
	Use:   "sync [character_id...]",
	Short: "Mirror remote character records into the local data directory",
	Long: `Fetches character records from the sheet service and stores them locally
as YAML. Without arguments every character visible to the account is
mirrored. The mirror is read-only: local resource spending never syncs back.`,
	Run: func(cmd *cobra.Command, args []string) {
		dataDir := viper.GetString("data_dir")
		if dataDir == "" {
			rootDir, _ := os.Getwd()
			dataDir = filepath.Join(rootDir, "data")
		}

		force, _ := cmd.Flags().GetBool("force")
		server, _ := cmd.Flags().GetString("server")
		if server == "" {
			server = viper.GetString("server")
		}

		client := sheetapi.NewClient(server, dataDir, force)

		targets := args
		if len(targets) == 0 {
			list, err := client.FetchList()
			if err != nil {
				fmt.Printf("Error fetching character list: %v\n", err)
				os.Exit(1)
			}
			for _, r := range list.Results {
				targets = append(targets, r.ID)
			}
		}

		if len(targets) == 0 {
			fmt.Println("Nothing to sync.")
			return
		}

		fmt.Printf("Mirroring %d character(s) to: %s\n", len(targets), dataDir)
		bar := progressbar.Default(int64(len(targets)), "Syncing")

		for _, id := range targets {
			// Throttle to respect the service
			time.Sleep(100 * time.Millisecond)

			if _, err := client.Mirror(id); err != nil {
				fmt.Printf("\nFailed to mirror %s: %v\n", id, err)
			}
			bar.Add(1)
		}

		fmt.Println("\nSync complete!")
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().Bool("force", false, "Force redownload of existing records")
	syncCmd.Flags().String("server", "", "Sheet service base URL")
}

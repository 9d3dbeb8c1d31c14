/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var replCmd = &cobra.Command{
	Use:   "repl [sheet_path]",
	Short: "Start the interactive REPL shell",
	Long: `Starts the read-eval-print loop for rolling dice and resolving actions.
Usage:
	> cast Fireball slot: 3`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) >= 1 {
			viper.Set("sheet", args[0])
		}

		app, store, err := newSession(nil)
		if err != nil {
			fmt.Printf("Failed to bootstrap session: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		fmt.Printf("Starting REPL for %s...\nType 'exit' or 'quit' to leave.\n\n", app.Sheet().Name)

		if err := RunTUI(app); err != nil {
			fmt.Printf("Fatal TUI Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

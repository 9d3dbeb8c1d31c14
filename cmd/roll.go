/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// rollCmd represents the roll command
var rollCmd = &cobra.Command{
	Use:   "roll <dice or formula>",
	Short: "Roll dice or a sheet formula once and exit",
	Long: `Resolves the formula against the loaded sheet and rolls it.
Examples:
	ledger roll 2d6+3
	ledger roll '1d20+(dexterity.modifier)' --label Initiative`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, store, err := newSession(nil)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		input := "roll "
		if label, _ := cmd.Flags().GetString("label"); label != "" {
			input += fmt.Sprintf("label: %q ", label)
		}
		input += fmt.Sprintf("%q", strings.Join(args, " "))

		out, err := app.Execute(input)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(out)
	},
}

func init() {
	rootCmd.AddCommand(rollCmd)
	rollCmd.Flags().StringP("label", "l", "", "Label for the roll, used for effect matching")
}

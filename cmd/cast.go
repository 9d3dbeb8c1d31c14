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

// castCmd represents the cast command
var castCmd = &cobra.Command{
	Use:   "cast <spell>",
	Short: "Resolve a spell or action once and exit",
	Long: `Resolves a named spell or action from the spells directory, spending
slots and resources and rolling every attack and damage formula.
Examples:
	ledger cast "Fire Bolt"
	ledger cast Fireball --slot 5
	ledger cast "Eldritch Blast" --slot pact
	ledger cast Haste --slot 3 --meta quickened`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, store, err := newSession(nil)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		input := fmt.Sprintf("cast %q", strings.Join(args, " "))
		if slot, _ := cmd.Flags().GetString("slot"); slot != "" {
			input += " slot: " + slot
		}
		meta, _ := cmd.Flags().GetStringSlice("meta")
		for i, m := range meta {
			if i == 0 {
				input += " meta: " + m
			} else {
				input += " and: " + m
			}
		}
		if noCost, _ := cmd.Flags().GetBool("nocost"); noCost {
			input += " nocost"
		}

		out, err := app.Execute(input)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(out)
	},
}

func init() {
	rootCmd.AddCommand(castCmd)
	castCmd.Flags().String("slot", "", "Slot to spend: a level number or 'pact'")
	castCmd.Flags().StringSlice("meta", nil, "Metamagic options to apply")
	castCmd.Flags().Bool("nocost", false, "Skip resource spending (recast of a maintained effect)")
}

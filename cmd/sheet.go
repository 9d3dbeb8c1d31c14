package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// sheetCmd represents the sheet command
var sheetCmd = &cobra.Command{
	Use:   "sheet",
	Short: "Print the character summary with current resources",
	Run: func(cmd *cobra.Command, args []string) {
		app, store, err := newSession(nil)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		out, err := app.Execute("sheet")
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(out)
	},
}

func init() {
	rootCmd.AddCommand(sheetCmd)
}

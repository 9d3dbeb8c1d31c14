package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// restCmd represents the rest command
var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Take a long rest, restoring every resource to its maximum",
	Run: func(cmd *cobra.Command, args []string) {
		app, store, err := newSession(nil)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		out, err := app.Execute("rest")
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(out)
	},
}

func init() {
	rootCmd.AddCommand(restCmd)
}

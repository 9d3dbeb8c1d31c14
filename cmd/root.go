/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/suderio/arcane-ledger/internal/journal"
	"github.com/suderio/arcane-ledger/internal/relay"
	"github.com/suderio/arcane-ledger/internal/session"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "A rules-resolution companion for tabletop character sheets",
	Long: `arcane-ledger resolves sheet formulas, spends slots and class resources,
and rolls dice for a mirrored character record. Mechanics live in the
character data; the engine only interprets them.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.arcane-ledger.yaml)")
	rootCmd.PersistentFlags().StringP("sheet", "s", "", "Path to the character sheet YAML")
	rootCmd.PersistentFlags().StringP("data_dir", "d", "", "Directory holding spells/ and rules/ data")

	viper.BindPFlag("sheet", rootCmd.PersistentFlags().Lookup("sheet"))
	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data_dir"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".arcane-ledger")
	}

	viper.SetEnvPrefix("LEDGER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newSession bootstraps a Session from the resolved configuration. The
// journal lives next to the sheet so every character keeps its own log.
// The relay receives finalized rolls; nil keeps them in the returned text
// only, which is what the TUI wants.
func newSession(out relay.Relay) (*session.Session, *journal.Store, error) {
	sheetPath := viper.GetString("sheet")
	if sheetPath == "" {
		return nil, nil, fmt.Errorf("must specify a character sheet via --sheet or the config file")
	}

	dataDir := viper.GetString("data_dir")
	if dataDir == "" {
		dataDir = filepath.Dir(sheetPath)
	}

	journalPath := strings.TrimSuffix(sheetPath, filepath.Ext(sheetPath)) + ".journal.jsonl"
	store, err := journal.NewStore(journalPath)
	if err != nil {
		return nil, nil, err
	}

	rulePaths, _ := filepath.Glob(filepath.Join(dataDir, "rules", "*.yaml"))
	sort.Strings(rulePaths)

	app, err := session.NewSession(session.Config{
		SheetPath:     sheetPath,
		SpellsDir:     filepath.Join(dataDir, "spells"),
		RulebookPaths: rulePaths,
		Store:         store,
		Relay:         out,
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return app, store, nil
}

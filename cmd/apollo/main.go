// Package main is the entry point for the apollo CLI. It extracts
// entities, aliases and relationships from cleaned scientific article
// text and stores them with citations in postgres.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/radekw/apollo/helper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the apollo CLI.
var rootCmd = &cobra.Command{
	Use:   "apollo",
	Short: "Knowledge extraction from scientific article text",
	Long: `apollo reads cleaned scientific article text and extracts canonical
entities, short-form aliases and typed relationships, each carrying a
citation back to the document, sentence and character range it came
from. Extracted knowledge is stored in postgres.

Each operation is a subcommand: process runs the extraction engine over
files, lexicon manages the curated entity lists the engine matches
against.`,
	Version: version,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./apollo.yaml or ~/.config/apollo/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("apollo")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "apollo"))
		}
	}

	viper.SetEnvPrefix("APOLLO")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// databaseConfiguration builds the connection parameters from viper,
// falling back to the DB_* environment defaults.
func databaseConfiguration() (*helper.DatabaseConfiguration, error) {
	config, err := helper.NewDatabaseConfiguration()
	if err != nil {
		return nil, err
	}

	if v := viper.GetString("db.host"); v != "" {
		config.Host = v
	}
	if v := viper.GetString("db.port"); v != "" {
		config.Port = v
	}
	if v := viper.GetString("db.database"); v != "" {
		config.Database = v
	}
	if v := viper.GetString("db.username"); v != "" {
		config.Username = v
	}
	if v := viper.GetString("db.password"); v != "" {
		config.Password = v
	}

	return config, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mopsdata",
	Short: "mopsdata crawls Taiwan listed-company disclosures into a local database",
	Long: `mopsdata fetches per-company disclosure pages from the Market Observation
Post System (公開資訊觀測站), extracts the rendered tables, and stores company
profiles, monthly revenue and annual financial statements in PostgreSQL.

The portal is a single-page application, so pages are rendered with a
headless Chromium browser before extraction. Every write is an idempotent
upsert keyed by company id and fiscal period: re-running a batch over
identical source data changes nothing but the update timestamps.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mopsdata.toml)")
	rootCmd.PersistentFlags().String("dbUrl", "", "database connection string")
	rootCmd.PersistentFlags().String("downloadDir", "downloads", "directory for page snapshots")
	if err := viper.BindPFlag("db.url", rootCmd.PersistentFlags().Lookup("dbUrl")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for dbUrl failed")
	}
	if err := viper.BindPFlag("download_dir", rootCmd.PersistentFlags().Lookup("downloadDir")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for downloadDir failed")
	}

	viper.SetDefault("playwright.headless", true)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".mopsdata" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".mopsdata")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}

// databaseURL assembles the connection string, either directly from db.url
// or from the discrete host/port/user/password/name components.
func databaseURL() string {
	if dbURL := viper.GetString("db.url"); dbURL != "" {
		return dbURL
	}

	host := stringOr("db.host", "localhost")
	port := stringOr("db.port", "5432")
	user := stringOr("db.user", "postgres")
	password := stringOr("db.password", "postgres")
	name := stringOr("db.name", "postgres")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, password, host, port, name)
}

func stringOr(key, fallback string) string {
	if val := viper.GetString(key); val != "" {
		return val
	}
	return fallback
}

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
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/twstock/mopsdata/crawler"
	"github.com/twstock/mopsdata/db"
	"github.com/twstock/mopsdata/healthcheck"
	"github.com/twstock/mopsdata/library"
	"github.com/twstock/mopsdata/mops"
)

// defaultCompanyIDs is the sample batch crawled when no ids are given.
var defaultCompanyIDs = []string{
	"2330", "2454", "2317", "2412", "2882",
	"2881", "2303", "1301", "3711", "0001",
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [company-id...]",
	Short: "Crawl disclosure pages for the given companies",
	Long: `The run sub-command processes each company id sequentially: fetch the
disclosure page with a headless browser, extract and normalize its tables,
and upsert the resulting records. A failing company is logged and skipped;
the batch only aborts when the database becomes unreachable for longer than
the retry budget.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		dbURL := databaseURL()
		if err := db.Migrate(dbURL); err != nil {
			log.Fatal().Err(err).Msg("database schema setup failed")
		}

		database := library.New(dbURL)
		defer database.Close()

		if err := database.CheckConnectivity(ctx); err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}

		companyIDs := defaultCompanyIDs
		if len(args) > 0 {
			companyIDs = args
		}
		log.Info().Int("NumCompanies", len(companyIDs)).Msg("starting crawl")

		myCrawler := crawler.New(mops.NewClient(), database)
		if err := myCrawler.Run(ctx, companyIDs); err != nil {
			if pingErr := healthcheck.Fail(); pingErr != nil {
				log.Error().Err(pingErr).Msg("healthcheck failure ping failed")
			}
			log.Fatal().Err(err).Msg("crawl aborted")
		}

		if err := healthcheck.Ping(); err != nil {
			log.Error().Err(err).Msg("healthcheck ping failed")
		}

		log.Info().Msg("all companies processed")
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

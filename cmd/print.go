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
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/twstock/mopsdata/htmltable"
	"github.com/twstock/mopsdata/mops"
	"github.com/twstock/mopsdata/normalize"
)

// printCmd scrapes a single company and prints the normalized records as
// JSON without touching the database. Handy for checking what the portal
// currently renders for a company.
var printCmd = &cobra.Command{
	Use:   "print <company-id>",
	Short: "Scrape one company and print its records as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		companyID := args[0]

		result, err := mops.NewClient().Fetch(ctx, companyID)
		if err != nil {
			log.Fatal().Err(err).Str("CompanyID", companyID).Msg("acquisition failed")
		}
		if result.NoData {
			log.Fatal().Str("CompanyID", companyID).Msg("portal has no data for company")
		}

		grids := htmltable.Extract(result.HTML)
		if len(grids) == 0 {
			log.Fatal().Str("CompanyID", companyID).Msg("page contained no tables")
		}

		out := map[string]any{}

		profile, skips := normalize.BasicInfo(companyID, grids[0])
		if profile != nil {
			out["profile"] = profile
		}
		allSkips := skips

		if len(grids) > 2 {
			revenues, revSkips := normalize.Revenue(companyID, grids[2], time.Now())
			out["revenue"] = revenues
			allSkips = append(allSkips, revSkips...)
		}

		if len(grids) > 3 {
			set, stmtSkips := normalize.Statements(companyID, grids[3])
			out["balance_sheets"] = set.BalanceSheets
			out["income_statements"] = set.IncomeStatements
			out["cash_flows"] = set.CashFlows
			out["combined"] = set.Combined
			allSkips = append(allSkips, stmtSkips...)
		}

		for _, skip := range allSkips {
			log.Warn().Str("Stage", skip.Stage).Str("Reason", skip.Reason).Msg("sub-record skipped")
		}

		encoded, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			log.Fatal().Err(err).Msg("could not encode records")
		}

		fmt.Println(string(encoded))
	},
}

func init() {
	rootCmd.AddCommand(printCmd)
}

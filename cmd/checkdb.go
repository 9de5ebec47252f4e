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
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/twstock/mopsdata/library"
)

// checkDBCmd verifies database connectivity and nothing else. Exit code 0
// means reachable, 1 means not; useful as a container readiness probe.
var checkDBCmd = &cobra.Command{
	Use:   "check-db",
	Short: "Verify database connectivity and exit",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		database := library.New(databaseURL())
		defer database.Close()

		if err := database.CheckConnectivity(ctx); err != nil {
			log.Error().Err(err).Msg("database connectivity check failed")
			os.Exit(1)
		}

		log.Info().Msg("database connectivity check succeeded")
	},
}

func init() {
	rootCmd.AddCommand(checkDBCmd)
}

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
package normalize

import (
	"strings"
	"time"

	"github.com/twstock/mopsdata/data"
	"github.com/twstock/mopsdata/htmltable"
)

// revenueHeaders are the phrases that mark the header row of the revenue
// table.
var revenueHeaders = []string{"累計營收", "本月營收"}

// Revenue converts the revenue table into revenue records. The row after
// the header holds the accumulated (year to date) figures, tagged with the
// acquisition time rather than a filing period. Later rows come in pairs: an
// ROC year/month label row followed by the numeric row for that month. Pairs
// that do not match the label pattern are skipped without aborting the rest.
func Revenue(companyID string, grid htmltable.Grid, now time.Time) ([]*data.RevenueRecord, []Skip) {
	var (
		records []*data.RevenueRecord
		skips   []Skip
	)

	grid = grid[revenueHeaderIndex(grid):]

	if len(grid) > 1 {
		row := grid[1]
		if len(row) >= 3 {
			records = append(records, &data.RevenueRecord{
				CompanyID:       companyID,
				Year:            now.Year(),
				Month:           int(now.Month()),
				RevenueType:     data.RevenueAccumulated,
				CurrentRevenue:  ParseDecimal(row[0]),
				PreviousRevenue: ParseDecimal(row[1]),
				GrowthRate:      ParseDecimal(row[2]),
			})
		} else {
			skips = append(skips, skipf("revenue-accumulated", "expected 3 cells, found %d", len(row)))
		}
	}

	for i := 2; i < len(grid); i += 2 {
		label := grid.Cell(i, 0)

		year, month, ok := ParseYearMonth(label)
		if !ok {
			skips = append(skips, skipf("revenue-month", "row %d label %q is not an ROC year/month", i, label))
			continue
		}
		if i+1 >= len(grid) {
			skips = append(skips, skipf("revenue-month", "label %q has no data row", label))
			continue
		}

		row := grid[i+1]
		if len(row) < 3 {
			skips = append(skips, skipf("revenue-month", "data row for %q has %d cells, expected 3", label, len(row)))
			continue
		}

		records = append(records, &data.RevenueRecord{
			CompanyID:       companyID,
			Year:            year,
			Month:           month,
			RevenueType:     data.RevenueMonthly,
			CurrentRevenue:  ParseDecimal(row[0]),
			PreviousRevenue: ParseDecimal(row[1]),
			GrowthRate:      ParseDecimal(row[2]),
		})
	}

	return records, skips
}

// revenueHeaderIndex scans the first few rows for a known header phrase and
// returns the offset to slice from. A table without a recognizable header is
// consumed as-is from the top.
func revenueHeaderIndex(grid htmltable.Grid) int {
	limit := len(grid)
	if limit > 3 {
		limit = 3
	}

	for i := 0; i < limit; i++ {
		for _, cell := range grid[i] {
			for _, header := range revenueHeaders {
				if strings.Contains(cell, header) {
					return i
				}
			}
		}
	}

	return 0
}

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

// Package htmltable flattens the <table> elements of a rendered page into
// plain text grids. It carries no knowledge of what the tables mean; layout
// interpretation belongs to the normalize package.
package htmltable

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Grid is one HTML table as rows of trimmed cell text.
type Grid [][]string

// Extract returns every table in the document, in document order. Malformed
// HTML is tolerated; a page without tables yields an empty slice.
func Extract(html string) []Grid {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var grids []Grid
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var grid Grid
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			var cells []string
			row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if len(cells) > 0 {
				grid = append(grid, cells)
			}
		})
		if len(grid) > 0 {
			grids = append(grids, grid)
		}
	})

	return grids
}

// Cell returns the text at (row, col) or the empty string when the grid does
// not extend that far. Irregular tables frequently have short rows.
func (grid Grid) Cell(row, col int) string {
	if row < 0 || row >= len(grid) {
		return ""
	}
	if col < 0 || col >= len(grid[row]) {
		return ""
	}
	return grid[row][col]
}

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
package library

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// libraryTables are the tables the pipeline writes, in write order.
var libraryTables = []string{
	"company_info",
	"company_revenue",
	"balance_sheet",
	"income_statement",
	"cash_flow",
	"financial_data_combined",
}

// TableStats describes one table of the library.
type TableStats struct {
	TableName    string     `db:"table_name"`
	NumRows      int        `db:"num_rows"`
	NumCompanies int        `db:"num_companies"`
	LastUpdated  *time.Time `db:"last_updated"`
}

// Stats collects row counts, distinct company counts and freshness for every
// library table.
func (db *Database) Stats(ctx context.Context) ([]*TableStats, error) {
	pool, err := db.acquire(ctx)
	if err != nil {
		return nil, err
	}

	stats := make([]*TableStats, 0, len(libraryTables))
	for _, tbl := range libraryTables {
		tblStats := &TableStats{}
		query := fmt.Sprintf(`SELECT '%[1]s' AS table_name, count(*) AS num_rows,
count(DISTINCT company_id) AS num_companies, max(updated_at) AS last_updated FROM %[1]s`, tbl)
		if err := pgxscan.Get(ctx, pool, tblStats, query); err != nil {
			return nil, err
		}
		stats = append(stats, tblStats)
	}

	return stats, nil
}

// Summary returns a markdown description of the library suitable for
// terminal rendering.
func (db *Database) Summary(ctx context.Context) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	builder.WriteString("# MOPS data library\n\n")
	builder.WriteString(fmt.Sprintf("Database: %s\n\n", db.DBUrl))
	builder.WriteString("## Tables\n\n")

	stats, err := db.Stats(ctx)
	if err != nil {
		return "", err
	}

	for _, tblStats := range stats {
		age := "never"
		if tblStats.LastUpdated != nil {
			age = timeago.English.Format(*tblStats.LastUpdated)
		}
		builder.WriteString(p.Sprintf("  * %s: %d rows, %d companies, updated %s\n",
			tblStats.TableName, tblStats.NumRows, tblStats.NumCompanies, age))
	}

	return builder.String(), nil
}

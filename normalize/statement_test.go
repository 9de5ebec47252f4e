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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twstock/mopsdata/htmltable"
)

// statementGrid renders the financial summary layout: one label column and
// one column per fiscal year, line items addressed purely by row position.
func statementGrid() htmltable.Grid {
	return htmltable.Grid{
		{"項目", "112年度", "111年度"},
		{"資產負債表", "", ""},
		{"資產總額", "5,532,197", "4,964,459"}, // offset 1
		{"負債總額", "2,084,028", "2,004,290"}, // offset 2
		{"權益總額", "3,448,169", "2,960,169"}, // offset 3
		{"每股淨值", "132.99", "114.15"},      // offset 4
		{"綜合損益表", "", ""},
		{"營業收入", "2,161,736", "2,263,891"}, // offset 6
		{"營業利益", "921,465", "1,121,279"},  // offset 7
		{"稅前淨利", "979,171", "1,144,190"},  // offset 8
		{"每股盈餘", "32.34", "39.20"},       // offset 9
		{"現金流量表", "", ""},
		{"營業活動現金流量", "1,242,147", "1,610,599"},  // offset 11
		{"投資活動現金流量", "-899,368", "-1,226,199"}, // offset 12
		{"籌資活動現金流量", "-205,000", "-289,056"},  // offset 13
	}
}

func TestStatements(t *testing.T) {
	set, skips := Statements("2330", statementGrid())
	assert.Empty(t, skips)

	require.Len(t, set.BalanceSheets, 2)
	require.Len(t, set.IncomeStatements, 2)
	require.Len(t, set.CashFlows, 2)
	require.Len(t, set.Combined, 2)

	// column order is preserved: 112年度 first, then 111年度
	assert.Equal(t, 2023, set.Combined[0].Year)
	assert.Equal(t, 2022, set.Combined[1].Year)

	bs := set.BalanceSheets[0]
	require.NotNil(t, bs.TotalAssets)
	assert.InDelta(t, 5532197.0, *bs.TotalAssets, 1e-9)
	require.NotNil(t, bs.NetWorthPerShare)
	assert.InDelta(t, 132.99, *bs.NetWorthPerShare, 1e-9)

	is := set.IncomeStatements[1]
	require.NotNil(t, is.EarningsPerShare)
	assert.InDelta(t, 39.20, *is.EarningsPerShare, 1e-9)

	cf := set.CashFlows[0]
	require.NotNil(t, cf.InvestingCashFlow)
	assert.InDelta(t, -899368.0, *cf.InvestingCashFlow, 1e-9)

	combined := set.Combined[0]
	require.NotNil(t, combined.TotalAssets)
	assert.InDelta(t, 5532197.0, *combined.TotalAssets, 1e-9)
	require.NotNil(t, combined.OperatingRevenue)
	assert.InDelta(t, 2161736.0, *combined.OperatingRevenue, 1e-9)
	require.NotNil(t, combined.FinancingCashFlow)
	assert.InDelta(t, -205000.0, *combined.FinancingCashFlow, 1e-9)
}

func TestStatementsTruncatedColumnDropsCombined(t *testing.T) {
	// cut the grid before the cash flow block: balance sheet and income
	// statement records still come out, combined records do not
	grid := statementGrid()[:11]

	set, skips := Statements("2330", grid)
	assert.Len(t, set.BalanceSheets, 2)
	assert.Len(t, set.IncomeStatements, 2)
	assert.Empty(t, set.CashFlows)
	assert.Empty(t, set.Combined)

	stages := make(map[string]int)
	for _, skip := range skips {
		stages[skip.Stage]++
	}
	assert.Equal(t, 2, stages["cash-flow"])
	assert.Equal(t, 2, stages["combined"])
}

func TestStatementsNoFiscalYearColumns(t *testing.T) {
	grid := htmltable.Grid{
		{"項目", "金額"},
		{"資產總額", "100"},
	}

	set, skips := Statements("2330", grid)
	assert.True(t, set.Empty())
	assert.Empty(t, skips)
}

func TestStatementsTooShort(t *testing.T) {
	set, skips := Statements("2330", htmltable.Grid{{"112年度"}})
	assert.True(t, set.Empty())
	require.Len(t, skips, 1)
	assert.Equal(t, "statements", skips[0].Stage)
}

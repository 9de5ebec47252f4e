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
	"github.com/twstock/mopsdata/data"
	"github.com/twstock/mopsdata/htmltable"
)

// statementLayout is the positional contract with the MOPS financial summary
// table. The portal labels only the fiscal-year columns; the individual line
// items inside a column have no stable labels and are addressed purely by
// row offset (offset 0 is the first data row under the header). A layout
// change on the portal is fixed by editing this table, nowhere else.
var statementLayout = struct {
	TotalAssets       int
	TotalLiabilities  int
	TotalEquity       int
	NetWorthPerShare  int
	OperatingRevenue  int
	OperatingProfit   int
	ProfitBeforeTax   int
	EarningsPerShare  int
	OperatingCashFlow int
	InvestingCashFlow int
	FinancingCashFlow int
}{
	TotalAssets:       1,
	TotalLiabilities:  2,
	TotalEquity:       3,
	NetWorthPerShare:  4,
	OperatingRevenue:  6,
	OperatingProfit:   7,
	ProfitBeforeTax:   8,
	EarningsPerShare:  9,
	OperatingCashFlow: 11,
	InvestingCashFlow: 12,
	FinancingCashFlow: 13,
}

// StatementSet holds the per-year record families produced from a single
// financial summary table, plus the combined records joined on
// (company, year).
type StatementSet struct {
	BalanceSheets    []*data.BalanceSheetRecord
	IncomeStatements []*data.IncomeStatementRecord
	CashFlows        []*data.CashFlowRecord
	Combined         []*data.CombinedFinancialRecord
}

// Empty reports whether the set contains no records at all.
func (set *StatementSet) Empty() bool {
	return len(set.BalanceSheets) == 0 && len(set.IncomeStatements) == 0 &&
		len(set.CashFlows) == 0 && len(set.Combined) == 0
}

// Statements extracts balance sheet, income statement and cash flow records
// from the financial summary table. The header row is scanned for ROC fiscal
// year columns ("112年度"); each qualifying column produces up to three
// sub-records read at the offsets of statementLayout. Years are consumed in
// the same left-to-right order the columns appear in. A year missing one of
// the three statement blocks is dropped from the combined records.
func Statements(companyID string, grid htmltable.Grid) (*StatementSet, []Skip) {
	set := &StatementSet{}
	var skips []Skip

	if len(grid) < 2 {
		skips = append(skips, skipf("statements", "table has %d rows, need a header and data", len(grid)))
		return set, skips
	}

	header := grid[0]
	for col, cell := range header {
		year, ok := ParseFiscalYear(cell)
		if !ok {
			continue
		}

		vals := columnValues(grid, col)

		if bs, ok := balanceSheetRecord(companyID, year, vals); ok {
			set.BalanceSheets = append(set.BalanceSheets, bs)
		} else {
			skips = append(skips, skipf("balance-sheet", "year %d column too short (%d rows)", year, len(vals)))
		}

		if is, ok := incomeStatementRecord(companyID, year, vals); ok {
			set.IncomeStatements = append(set.IncomeStatements, is)
		} else {
			skips = append(skips, skipf("income-statement", "year %d column too short (%d rows)", year, len(vals)))
		}

		if cf, ok := cashFlowRecord(companyID, year, vals); ok {
			set.CashFlows = append(set.CashFlows, cf)
		} else {
			skips = append(skips, skipf("cash-flow", "year %d column too short (%d rows)", year, len(vals)))
		}
	}

	set.Combined, skips = combine(set, skips)

	return set, skips
}

// columnValues collects the data cells of one column, excluding the header
// row. Short rows contribute empty strings so offsets stay aligned.
func columnValues(grid htmltable.Grid, col int) []string {
	vals := make([]string, 0, len(grid)-1)
	for row := 1; row < len(grid); row++ {
		vals = append(vals, grid.Cell(row, col))
	}
	return vals
}

func balanceSheetRecord(companyID string, year int, vals []string) (*data.BalanceSheetRecord, bool) {
	if len(vals) <= statementLayout.NetWorthPerShare {
		return nil, false
	}

	return &data.BalanceSheetRecord{
		CompanyID:        companyID,
		Year:             year,
		TotalAssets:      ParseDecimal(vals[statementLayout.TotalAssets]),
		TotalLiabilities: ParseDecimal(vals[statementLayout.TotalLiabilities]),
		TotalEquity:      ParseDecimal(vals[statementLayout.TotalEquity]),
		NetWorthPerShare: ParseDecimal(vals[statementLayout.NetWorthPerShare]),
	}, true
}

func incomeStatementRecord(companyID string, year int, vals []string) (*data.IncomeStatementRecord, bool) {
	if len(vals) <= statementLayout.EarningsPerShare {
		return nil, false
	}

	return &data.IncomeStatementRecord{
		CompanyID:        companyID,
		Year:             year,
		OperatingRevenue: ParseDecimal(vals[statementLayout.OperatingRevenue]),
		OperatingProfit:  ParseDecimal(vals[statementLayout.OperatingProfit]),
		ProfitBeforeTax:  ParseDecimal(vals[statementLayout.ProfitBeforeTax]),
		EarningsPerShare: ParseDecimal(vals[statementLayout.EarningsPerShare]),
	}, true
}

func cashFlowRecord(companyID string, year int, vals []string) (*data.CashFlowRecord, bool) {
	if len(vals) <= statementLayout.FinancingCashFlow {
		return nil, false
	}

	return &data.CashFlowRecord{
		CompanyID:         companyID,
		Year:              year,
		OperatingCashFlow: ParseDecimal(vals[statementLayout.OperatingCashFlow]),
		InvestingCashFlow: ParseDecimal(vals[statementLayout.InvestingCashFlow]),
		FinancingCashFlow: ParseDecimal(vals[statementLayout.FinancingCashFlow]),
	}, true
}

// combine joins the three record families on (company, year), preserving the
// order years were encountered in the balance sheet set. Years that did not
// yield all three sub-records are reported as skips rather than padded.
func combine(set *StatementSet, skips []Skip) ([]*data.CombinedFinancialRecord, []Skip) {
	income := make(map[int]*data.IncomeStatementRecord, len(set.IncomeStatements))
	for _, is := range set.IncomeStatements {
		income[is.Year] = is
	}
	cash := make(map[int]*data.CashFlowRecord, len(set.CashFlows))
	for _, cf := range set.CashFlows {
		cash[cf.Year] = cf
	}

	var combined []*data.CombinedFinancialRecord
	for _, bs := range set.BalanceSheets {
		is, okIncome := income[bs.Year]
		cf, okCash := cash[bs.Year]
		if !okIncome || !okCash {
			skips = append(skips, skipf("combined", "year %d missing a statement block", bs.Year))
			continue
		}

		combined = append(combined, &data.CombinedFinancialRecord{
			CompanyID:         bs.CompanyID,
			Year:              bs.Year,
			TotalAssets:       bs.TotalAssets,
			TotalLiabilities:  bs.TotalLiabilities,
			TotalEquity:       bs.TotalEquity,
			NetWorthPerShare:  bs.NetWorthPerShare,
			OperatingRevenue:  is.OperatingRevenue,
			OperatingProfit:   is.OperatingProfit,
			ProfitBeforeTax:   is.ProfitBeforeTax,
			EarningsPerShare:  is.EarningsPerShare,
			OperatingCashFlow: cf.OperatingCashFlow,
			InvestingCashFlow: cf.InvestingCashFlow,
			FinancingCashFlow: cf.FinancingCashFlow,
		})
	}

	return combined, skips
}

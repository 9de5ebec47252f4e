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
package data

import (
	"regexp"

	"github.com/rs/zerolog/log"
)

type RevenueType string

const (
	RevenueAccumulated RevenueType = "accumulated"
	RevenueMonthly     RevenueType = "monthly"
)

// Record is anything the database layer knows how to upsert. Columns and
// Values are parallel; KeyColumns is the natural key used for conflict
// detection. Every column not in the key is overwritten on conflict.
type Record interface {
	Table() string
	KeyColumns() []string
	Columns() []string
	Values() []any
}

var stockIDRegexp = regexp.MustCompile(`^\d{4}$`)

// ValidateStockID reports whether a company id has the canonical four digit
// form. Non-conforming ids are logged but still processed.
func ValidateStockID(companyID string) bool {
	if !stockIDRegexp.MatchString(companyID) {
		log.Warn().Str("CompanyID", companyID).Msg("company id is not a four digit code")
		return false
	}
	return true
}

// CompanyProfile holds the basic information block for a company. All fields
// other than the company id are optional; a nil field is left out of the
// database write entirely.
type CompanyProfile struct {
	CompanyID    string
	Chairman     *string
	CEO          *string
	Spokesperson *string
	Address      *string
	Phone        *string
	Website      *string
	MainBusiness *string
	Capital      *float64
}

func (profile *CompanyProfile) Table() string {
	return "company_info"
}

func (profile *CompanyProfile) KeyColumns() []string {
	return []string{"company_id"}
}

func (profile *CompanyProfile) Columns() []string {
	cols := []string{"company_id"}
	for _, field := range profile.fields() {
		if field.present {
			cols = append(cols, field.name)
		}
	}
	return cols
}

func (profile *CompanyProfile) Values() []any {
	vals := []any{profile.CompanyID}
	for _, field := range profile.fields() {
		if field.present {
			vals = append(vals, field.value)
		}
	}
	return vals
}

// Empty reports whether no mapped field was found at all, in which case the
// profile should not be written.
func (profile *CompanyProfile) Empty() bool {
	for _, field := range profile.fields() {
		if field.present {
			return false
		}
	}
	return true
}

type profileField struct {
	name    string
	present bool
	value   any
}

func (profile *CompanyProfile) fields() []profileField {
	return []profileField{
		{"chairman", profile.Chairman != nil, strVal(profile.Chairman)},
		{"ceo", profile.CEO != nil, strVal(profile.CEO)},
		{"spokesperson", profile.Spokesperson != nil, strVal(profile.Spokesperson)},
		{"address", profile.Address != nil, strVal(profile.Address)},
		{"phone", profile.Phone != nil, strVal(profile.Phone)},
		{"website", profile.Website != nil, strVal(profile.Website)},
		{"main_business", profile.MainBusiness != nil, strVal(profile.MainBusiness)},
		{"capital", profile.Capital != nil, floatVal(profile.Capital)},
	}
}

func strVal(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func floatVal(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// RevenueRecord is one revenue observation, either the accumulated
// year-to-date figure or a single month.
type RevenueRecord struct {
	CompanyID       string
	Year            int
	Month           int
	RevenueType     RevenueType
	CurrentRevenue  *float64
	PreviousRevenue *float64
	GrowthRate      *float64
}

func (rev *RevenueRecord) Table() string {
	return "company_revenue"
}

func (rev *RevenueRecord) KeyColumns() []string {
	return []string{"company_id", "year", "month", "revenue_type"}
}

func (rev *RevenueRecord) Columns() []string {
	return []string{"company_id", "year", "month", "revenue_type",
		"current_revenue", "previous_revenue", "growth_rate"}
}

func (rev *RevenueRecord) Values() []any {
	return []any{rev.CompanyID, rev.Year, rev.Month, string(rev.RevenueType),
		floatVal(rev.CurrentRevenue), floatVal(rev.PreviousRevenue), floatVal(rev.GrowthRate)}
}

// BalanceSheetRecord summarizes the balance sheet for one fiscal year.
type BalanceSheetRecord struct {
	CompanyID        string
	Year             int
	TotalAssets      *float64
	TotalLiabilities *float64
	TotalEquity      *float64
	NetWorthPerShare *float64
}

func (bs *BalanceSheetRecord) Table() string {
	return "balance_sheet"
}

func (bs *BalanceSheetRecord) KeyColumns() []string {
	return []string{"company_id", "year"}
}

func (bs *BalanceSheetRecord) Columns() []string {
	return []string{"company_id", "year", "total_assets", "total_liabilities",
		"total_equity", "net_worth_per_share"}
}

func (bs *BalanceSheetRecord) Values() []any {
	return []any{bs.CompanyID, bs.Year, floatVal(bs.TotalAssets),
		floatVal(bs.TotalLiabilities), floatVal(bs.TotalEquity), floatVal(bs.NetWorthPerShare)}
}

// IncomeStatementRecord summarizes the income statement for one fiscal year.
type IncomeStatementRecord struct {
	CompanyID        string
	Year             int
	OperatingRevenue *float64
	OperatingProfit  *float64
	ProfitBeforeTax  *float64
	EarningsPerShare *float64
}

func (is *IncomeStatementRecord) Table() string {
	return "income_statement"
}

func (is *IncomeStatementRecord) KeyColumns() []string {
	return []string{"company_id", "year"}
}

func (is *IncomeStatementRecord) Columns() []string {
	return []string{"company_id", "year", "operating_revenue", "operating_profit",
		"profit_before_tax", "earnings_per_share"}
}

func (is *IncomeStatementRecord) Values() []any {
	return []any{is.CompanyID, is.Year, floatVal(is.OperatingRevenue),
		floatVal(is.OperatingProfit), floatVal(is.ProfitBeforeTax), floatVal(is.EarningsPerShare)}
}

// CashFlowRecord summarizes cash flows for one fiscal year.
type CashFlowRecord struct {
	CompanyID         string
	Year              int
	OperatingCashFlow *float64
	InvestingCashFlow *float64
	FinancingCashFlow *float64
}

func (cf *CashFlowRecord) Table() string {
	return "cash_flow"
}

func (cf *CashFlowRecord) KeyColumns() []string {
	return []string{"company_id", "year"}
}

func (cf *CashFlowRecord) Columns() []string {
	return []string{"company_id", "year", "operating_cash_flow",
		"investing_cash_flow", "financing_cash_flow"}
}

func (cf *CashFlowRecord) Values() []any {
	return []any{cf.CompanyID, cf.Year, floatVal(cf.OperatingCashFlow),
		floatVal(cf.InvestingCashFlow), floatVal(cf.FinancingCashFlow)}
}

// CombinedFinancialRecord is the union of the three statement records for a
// fiscal year. It is always derived from the same source column in the same
// pipeline pass, never authoritative on its own.
type CombinedFinancialRecord struct {
	CompanyID         string
	Year              int
	TotalAssets       *float64
	TotalLiabilities  *float64
	TotalEquity       *float64
	NetWorthPerShare  *float64
	OperatingRevenue  *float64
	OperatingProfit   *float64
	ProfitBeforeTax   *float64
	EarningsPerShare  *float64
	OperatingCashFlow *float64
	InvestingCashFlow *float64
	FinancingCashFlow *float64
}

func (combined *CombinedFinancialRecord) Table() string {
	return "financial_data_combined"
}

func (combined *CombinedFinancialRecord) KeyColumns() []string {
	return []string{"company_id", "year"}
}

func (combined *CombinedFinancialRecord) Columns() []string {
	return []string{"company_id", "year", "total_assets", "total_liabilities",
		"total_equity", "net_worth_per_share", "operating_revenue", "operating_profit",
		"profit_before_tax", "earnings_per_share", "operating_cash_flow",
		"investing_cash_flow", "financing_cash_flow"}
}

func (combined *CombinedFinancialRecord) Values() []any {
	return []any{combined.CompanyID, combined.Year, floatVal(combined.TotalAssets),
		floatVal(combined.TotalLiabilities), floatVal(combined.TotalEquity),
		floatVal(combined.NetWorthPerShare), floatVal(combined.OperatingRevenue),
		floatVal(combined.OperatingProfit), floatVal(combined.ProfitBeforeTax),
		floatVal(combined.EarningsPerShare), floatVal(combined.OperatingCashFlow),
		floatVal(combined.InvestingCashFlow), floatVal(combined.FinancingCashFlow)}
}

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
package crawler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/twstock/mopsdata/data"
	"github.com/twstock/mopsdata/htmltable"
	"github.com/twstock/mopsdata/library"
	"github.com/twstock/mopsdata/mops"
)

type fakeAcquirer struct {
	results map[string]*mops.Result
	errs    map[string]error
	fetched []string
}

func (fake *fakeAcquirer) Fetch(_ context.Context, companyID string) (*mops.Result, error) {
	fake.fetched = append(fake.fetched, companyID)
	if err := fake.errs[companyID]; err != nil {
		return nil, err
	}
	return fake.results[companyID], nil
}

type fakeDB struct {
	batches [][]string
	err     error
}

func (fake *fakeDB) Upsert(_ context.Context, records []data.Record) (int64, error) {
	if fake.err != nil {
		return 0, fake.err
	}

	tables := make([]string, 0, len(records))
	for _, record := range records {
		tables = append(tables, record.Table())
	}
	fake.batches = append(fake.batches, tables)
	return int64(len(records)), nil
}

// companyGrids mirrors the tables of a populated disclosure page in document
// order: basic info, a navigation table we ignore, monthly revenue and the
// financial summary with one fiscal year column.
func companyGrids() []htmltable.Grid {
	financial := htmltable.Grid{{"項目", "112年度"}}
	for i := 0; i < 14; i++ {
		financial = append(financial, []string{fmt.Sprintf("科目%d", i), fmt.Sprintf("%d", (i+1)*100)})
	}

	return []htmltable.Grid{
		{
			{"董事長", "魏哲家"},
			{"實收資本額", "259,303,805"},
		},
		{
			{"最新消息"},
		},
		{
			{"本月營收", "去年同月營收", "增減率"},
			{"5,000", "4,400", "13.6"},
			{"113年5月"},
			{"1,234", "1,000", "23.4"},
		},
		financial,
	}
}

func testCrawler(acquirer *fakeAcquirer, db *fakeDB, grids []htmltable.Grid) (*Crawler, *bool) {
	extracted := false
	crawler := New(acquirer, db)
	crawler.Limiter = rate.NewLimiter(rate.Inf, 1)
	crawler.Now = func() time.Time { return time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC) }
	crawler.Extract = func(string) []htmltable.Grid {
		extracted = true
		return grids
	}
	return crawler, &extracted
}

func TestProcessCompanyPersistsTablesInOrder(t *testing.T) {
	acquirer := &fakeAcquirer{results: map[string]*mops.Result{
		"2330": {CompanyID: "2330", HTML: "<html/>"},
	}}
	db := &fakeDB{}
	crawler, _ := testCrawler(acquirer, db, companyGrids())

	err := crawler.ProcessCompany(context.Background(), "2330")
	require.NoError(t, err)

	require.Len(t, db.batches, 6)
	assert.Equal(t, []string{"company_info"}, db.batches[0])
	assert.Equal(t, []string{"company_revenue", "company_revenue"}, db.batches[1])
	assert.Equal(t, []string{"balance_sheet"}, db.batches[2])
	assert.Equal(t, []string{"income_statement"}, db.batches[3])
	assert.Equal(t, []string{"cash_flow"}, db.batches[4])
	assert.Equal(t, []string{"financial_data_combined"}, db.batches[5])
}

func TestProcessCompanyNoDataSkipsExtraction(t *testing.T) {
	acquirer := &fakeAcquirer{results: map[string]*mops.Result{
		"9999": {CompanyID: "9999", NoData: true},
	}}
	db := &fakeDB{}
	crawler, extracted := testCrawler(acquirer, db, companyGrids())

	err := crawler.ProcessCompany(context.Background(), "9999")
	require.NoError(t, err)

	assert.False(t, *extracted)
	assert.Empty(t, db.batches)
}

func TestProcessCompanyNoTablesIsNotAnError(t *testing.T) {
	acquirer := &fakeAcquirer{results: map[string]*mops.Result{
		"2330": {CompanyID: "2330", HTML: "<html/>"},
	}}
	db := &fakeDB{}
	crawler, _ := testCrawler(acquirer, db, nil)

	err := crawler.ProcessCompany(context.Background(), "2330")
	require.NoError(t, err)
	assert.Empty(t, db.batches)
}

func TestProcessCompanyUpsertErrorPropagates(t *testing.T) {
	acquirer := &fakeAcquirer{results: map[string]*mops.Result{
		"2330": {CompanyID: "2330", HTML: "<html/>"},
	}}
	db := &fakeDB{err: errors.New("duplicate key value violates unique constraint")}
	crawler, _ := testCrawler(acquirer, db, companyGrids())

	err := crawler.ProcessCompany(context.Background(), "2330")
	assert.Error(t, err)
}

func TestRunContinuesAfterEntityFailure(t *testing.T) {
	acquirer := &fakeAcquirer{
		results: map[string]*mops.Result{
			"2454": {CompanyID: "2454", HTML: "<html/>"},
		},
		errs: map[string]error{
			"2330": errors.New("fetch timed out"),
		},
	}
	db := &fakeDB{}
	crawler, _ := testCrawler(acquirer, db, companyGrids())

	err := crawler.Run(context.Background(), []string{"2330", "2454"})
	require.NoError(t, err)

	assert.Equal(t, []string{"2330", "2454"}, acquirer.fetched)
	require.NotEmpty(t, db.batches)
	assert.Equal(t, []string{"company_info"}, db.batches[0])
}

func TestRunAbortsWhenConnectionBudgetExhausted(t *testing.T) {
	acquirer := &fakeAcquirer{results: map[string]*mops.Result{
		"2330": {CompanyID: "2330", HTML: "<html/>"},
		"2454": {CompanyID: "2454", HTML: "<html/>"},
	}}
	db := &fakeDB{err: fmt.Errorf("upsert company_info: %w", library.ErrConnectExhausted)}
	crawler, _ := testCrawler(acquirer, db, companyGrids())

	err := crawler.Run(context.Background(), []string{"2330", "2454"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, library.ErrConnectExhausted))

	assert.Equal(t, []string{"2330"}, acquirer.fetched)
}

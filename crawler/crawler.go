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

// Package crawler drives one company at a time through acquire, extract,
// normalize and persist. Entities are independent: a failure on one is
// logged and the batch moves on. The only fatal condition is an exhausted
// database connection budget, because connectivity is a precondition of the
// run rather than a per-entity concern.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/twstock/mopsdata/data"
	"github.com/twstock/mopsdata/htmltable"
	"github.com/twstock/mopsdata/library"
	"github.com/twstock/mopsdata/mops"
	"github.com/twstock/mopsdata/normalize"
)

// EntityDelay paces requests against the portal: one company every three
// seconds.
const EntityDelay = 3 * time.Second

// Positions of the tables of interest within the rendered page, in document
// order. Like the row offsets inside the financial summary, these are part
// of the portal layout contract.
const (
	basicInfoTable = 0
	revenueTable   = 2
	financialTable = 3
)

// Acquirer fetches the rendered disclosure page for one company.
type Acquirer interface {
	Fetch(ctx context.Context, companyID string) (*mops.Result, error)
}

// Upserter persists one homogeneous record set idempotently.
type Upserter interface {
	Upsert(ctx context.Context, records []data.Record) (int64, error)
}

// Crawler orchestrates the per-company pipeline.
type Crawler struct {
	Acquirer Acquirer
	DB       Upserter
	Extract  func(html string) []htmltable.Grid
	Limiter  *rate.Limiter
	Now      func() time.Time
}

func New(acquirer Acquirer, db Upserter) *Crawler {
	return &Crawler{
		Acquirer: acquirer,
		DB:       db,
		Extract:  htmltable.Extract,
		Limiter:  rate.NewLimiter(rate.Every(EntityDelay), 1),
		Now:      time.Now,
	}
}

// Run processes every company id sequentially. Per-entity failures are
// logged and skipped; the run only aborts when the database connection
// budget is exhausted.
func (crawler *Crawler) Run(ctx context.Context, companyIDs []string) error {
	for idx, companyID := range companyIDs {
		if err := crawler.Limiter.Wait(ctx); err != nil {
			return err
		}

		log.Info().Str("CompanyID", companyID).
			Str("Progress", fmt.Sprintf("%d/%d", idx+1, len(companyIDs))).
			Msg("processing company")

		if err := crawler.ProcessCompany(ctx, companyID); err != nil {
			if errors.Is(err, library.ErrConnectExhausted) {
				return err
			}
			log.Error().Err(err).Str("CompanyID", companyID).Msg("company failed, continuing with next")
		}
	}

	return nil
}

// ProcessCompany runs the full pipeline for one company. The four table
// writes form a saga of independently idempotent upserts: there is no
// cross-table transaction, and a crash mid-sequence is recovered by simply
// re-running the entity.
func (crawler *Crawler) ProcessCompany(ctx context.Context, companyID string) error {
	data.ValidateStockID(companyID)

	result, err := crawler.Acquirer.Fetch(ctx, companyID)
	if err != nil {
		return err
	}
	if result.NoData {
		log.Info().Str("CompanyID", companyID).Msg("no data for company, skipping")
		return nil
	}

	grids := crawler.Extract(result.HTML)
	if len(grids) == 0 {
		log.Info().Str("CompanyID", companyID).Msg("page contained no tables, skipping")
		return nil
	}

	if err := crawler.persistProfile(ctx, companyID, grids); err != nil {
		return err
	}
	if err := crawler.persistRevenue(ctx, companyID, grids); err != nil {
		return err
	}
	if err := crawler.persistStatements(ctx, companyID, grids); err != nil {
		return err
	}

	log.Info().Str("CompanyID", companyID).Str("Snapshot", result.PDFPath).Msg("company processed")
	return nil
}

func (crawler *Crawler) persistProfile(ctx context.Context, companyID string, grids []htmltable.Grid) error {
	profile, skips := normalize.BasicInfo(companyID, grids[basicInfoTable])
	logSkips(companyID, skips)
	if profile == nil {
		return nil
	}

	_, err := crawler.DB.Upsert(ctx, []data.Record{profile})
	return err
}

func (crawler *Crawler) persistRevenue(ctx context.Context, companyID string, grids []htmltable.Grid) error {
	if len(grids) <= revenueTable {
		return nil
	}

	revenues, skips := normalize.Revenue(companyID, grids[revenueTable], crawler.Now())
	logSkips(companyID, skips)

	records := make([]data.Record, 0, len(revenues))
	for _, rev := range revenues {
		records = append(records, rev)
	}

	_, err := crawler.DB.Upsert(ctx, records)
	return err
}

func (crawler *Crawler) persistStatements(ctx context.Context, companyID string, grids []htmltable.Grid) error {
	if len(grids) <= financialTable {
		return nil
	}

	set, skips := normalize.Statements(companyID, grids[financialTable])
	logSkips(companyID, skips)
	if set.Empty() {
		return nil
	}

	families := [][]data.Record{
		recordSlice(set.BalanceSheets),
		recordSlice(set.IncomeStatements),
		recordSlice(set.CashFlows),
		recordSlice(set.Combined),
	}
	for _, records := range families {
		if _, err := crawler.DB.Upsert(ctx, records); err != nil {
			return err
		}
	}

	return nil
}

func recordSlice[T data.Record](records []T) []data.Record {
	out := make([]data.Record, 0, len(records))
	for _, record := range records {
		out = append(out, record)
	}
	return out
}

func logSkips(companyID string, skips []normalize.Skip) {
	for _, skip := range skips {
		log.Warn().Str("CompanyID", companyID).Str("Stage", skip.Stage).
			Str("Reason", skip.Reason).Msg("sub-record skipped")
	}
}

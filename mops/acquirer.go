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

// Package mops acquires company disclosure pages from the Taiwan Market
// Observation Post System with a headless browser.
package mops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const companyPageURL = `https://mops.twse.com.tw/mops/#/web/t146sb05?companyId=%s`

const (
	// FetchRetries bounds full-navigation retries on transport failure.
	FetchRetries    = 3
	FetchRetryDelay = 5 * time.Second

	// tableWaitMillis bounds how long a rendered page may take to show its
	// first table before the outcome degrades to "no data".
	tableWaitMillis = 20000
)

// noDataPhrases are the sentinel texts the portal renders instead of tables
// when a company id has nothing to show. Matching any of them is a business
// non-result, not an error.
var noDataPhrases = []string{
	"查無所需資料",
	"無此代號之公司",
	"尚無資料",
	"公司代號無效",
}

// Result is the outcome of one acquisition. Exactly one of NoData or HTML is
// meaningful; PDFPath is set when the snapshot was written.
type Result struct {
	CompanyID string
	NoData    bool
	HTML      string
	PDFPath   string
}

// Client drives the headless browser against the disclosure portal. A fresh
// browser is launched per attempt and torn down unconditionally so a crashed
// driver never leaks into the next entity.
type Client struct {
	DownloadDir string
	Headless    bool

	// fetchPage and retryDelay are replaced in tests; zero values fall back
	// to the real browser fetch and FetchRetryDelay.
	fetchPage  func(companyID string) (*Result, error)
	retryDelay time.Duration
}

// NewClient builds a client from the ambient configuration.
func NewClient() *Client {
	return &Client{
		DownloadDir: viper.GetString("download_dir"),
		Headless:    viper.GetBool("playwright.headless"),
	}
}

// Fetch loads the disclosure page for a company and returns its rendered
// HTML plus an optional PDF snapshot. Transport and browser-driver failures
// are retried up to FetchRetries with a fixed delay; a page that renders no
// table in time or shows a sentinel phrase is a NoData result, not an error.
func (client *Client) Fetch(ctx context.Context, companyID string) (*Result, error) {
	fetch := client.fetchPage
	if fetch == nil {
		fetch = client.fetchOnce
	}
	delay := client.retryDelay
	if delay == 0 {
		delay = FetchRetryDelay
	}

	var lastErr error
	for attempt := 1; attempt <= FetchRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := fetch(companyID)
		if err == nil {
			return result, nil
		}

		lastErr = err
		log.Warn().Err(err).Str("CompanyID", companyID).Int("Attempt", attempt).
			Msg("page acquisition attempt failed")
		if attempt < FetchRetries {
			time.Sleep(delay)
		}
	}

	return nil, fmt.Errorf("acquiring page for %s: %w", companyID, lastErr)
}

func (client *Client) fetchOnce(companyID string) (result *Result, err error) {
	page, browser, pw, err := startPlaywright(client.Headless)
	if err != nil {
		return nil, err
	}
	defer stopPlaywright(browser, pw)

	url := fmt.Sprintf(companyPageURL, companyID)
	if _, err = page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		return nil, fmt.Errorf("loading %s: %w", url, err)
	}

	// the SPA renders tables client-side; wait for the first one
	if waitErr := page.Locator("table").First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(tableWaitMillis),
	}); waitErr != nil {
		log.Info().Str("CompanyID", companyID).Msg("no table rendered before timeout")
		return &Result{CompanyID: companyID, NoData: true}, nil
	}

	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("reading page content: %w", err)
	}

	for _, phrase := range noDataPhrases {
		if strings.Contains(html, phrase) {
			log.Info().Str("CompanyID", companyID).Str("Sentinel", phrase).
				Msg("portal reports no data for company")
			return &Result{CompanyID: companyID, NoData: true}, nil
		}
	}

	result = &Result{CompanyID: companyID, HTML: html}
	result.PDFPath = client.savePDF(page, companyID)

	return result, nil
}

// savePDF renders the page through the browser print pipeline. Snapshots are
// best effort: failure logs and returns an empty path without failing the
// acquisition.
func (client *Client) savePDF(page playwright.Page, companyID string) string {
	if err := os.MkdirAll(client.DownloadDir, 0o755); err != nil {
		log.Error().Err(err).Str("Dir", client.DownloadDir).Msg("could not create download directory")
		return ""
	}

	pdfPath := filepath.Join(client.DownloadDir, fmt.Sprintf("mops_%s.pdf", companyID))
	if _, err := page.PDF(playwright.PagePdfOptions{
		Path:              playwright.String(pdfPath),
		PrintBackground:   playwright.Bool(true),
		PreferCSSPageSize: playwright.Bool(true),
	}); err != nil {
		log.Error().Err(err).Str("CompanyID", companyID).Msg("could not save page snapshot")
		return ""
	}

	log.Info().Str("CompanyID", companyID).Str("FileName", pdfPath).Msg("saved page snapshot")
	return pdfPath
}

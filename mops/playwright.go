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
package mops

import (
	"fmt"
	"strings"

	"github.com/go-rod/stealth"
	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// stealthPage creates a new playwright page with stealth js loaded to prevent bot detection
func stealthPage(context playwright.BrowserContext) (playwright.Page, error) {
	page, err := context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}

	if err = page.AddInitScript(playwright.Script{
		Content: playwright.String(stealth.JS),
	}); err != nil {
		return nil, fmt.Errorf("loading stealth script: %w", err)
	}

	return page, nil
}

// buildUserAgent dynamically determines the user agent and removes the headless identifier
func buildUserAgent(browser playwright.Browser) (string, error) {
	context, err := browser.NewContext()
	if err != nil {
		return "", fmt.Errorf("creating context for building user agent: %w", err)
	}
	defer context.Close()

	page, err := context.NewPage()
	if err != nil {
		return "", fmt.Errorf("creating page for building user agent: %w", err)
	}

	resp, err := page.Goto("https://playwright.dev", playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	})
	if err != nil {
		return "", fmt.Errorf("loading user agent probe page: %w", err)
	}

	headers, err := resp.Request().AllHeaders()
	if err != nil {
		return "", fmt.Errorf("reading request headers: %w", err)
	}

	userAgent := headers["user-agent"]
	userAgent = strings.Replace(userAgent, "Headless", "", -1)
	return userAgent, nil
}

// startPlaywright starts the playwright server and browser, then creates a
// browser context and page with the stealth extensions loaded. The portal is
// a single-page application that refuses plain HTTP fetches, so every
// acquisition goes through a real Chromium. A failure at any stage tears
// down whatever was already started and is returned to the caller, where the
// fetch retry budget absorbs it.
func startPlaywright(headless bool) (playwright.Page, playwright.Browser, *playwright.Playwright, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("launching playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
	})
	if err != nil {
		if stopErr := pw.Stop(); stopErr != nil {
			log.Error().Err(stopErr).Msg("error encountered when stopping playwright")
		}
		return nil, nil, nil, fmt.Errorf("launching Chromium: %w", err)
	}

	log.Info().Bool("Headless", headless).Str("BrowserVersion", browser.Version()).Msg("starting playwright")

	userAgent := viper.GetString("user_agent")
	if userAgent == "" {
		if userAgent, err = buildUserAgent(browser); err != nil {
			stopPlaywright(browser, pw)
			return nil, nil, nil, err
		}
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
		Locale:    playwright.String("zh-TW"),
	})
	if err != nil {
		stopPlaywright(browser, pw)
		return nil, nil, nil, fmt.Errorf("creating browser context: %w", err)
	}

	page, err := stealthPage(context)
	if err != nil {
		stopPlaywright(browser, pw)
		return nil, nil, nil, err
	}

	return page, browser, pw, nil
}

func stopPlaywright(browser playwright.Browser, pw *playwright.Playwright) {
	if err := browser.Close(); err != nil {
		log.Error().Err(err).Msg("error encountered when closing browser")
	}

	if err := pw.Stop(); err != nil {
		log.Error().Err(err).Msg("error encountered when stopping playwright")
	}
}

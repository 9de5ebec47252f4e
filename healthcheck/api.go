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

// Package healthcheck pings an external dead-man-switch monitor (e.g.
// healthchecks.io) so missed crawl runs surface as alerts.
package healthcheck

import (
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var ErrStatus = errors.New("status code is invalid")

// Ping signals a successful run to the configured ping URL. When no URL is
// configured the call is a no-op.
func Ping() error {
	pingURL := viper.GetString("healthcheck.url")
	if pingURL == "" {
		return nil
	}

	client := resty.New()
	resp, err := client.R().Get(pingURL)
	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	log.Info().Str("Url", pingURL).Msg("healthcheck ping sent")
	return nil
}

// Fail signals a failed run by appending /fail to the configured ping URL,
// following the healthchecks.io convention.
func Fail() error {
	pingURL := viper.GetString("healthcheck.url")
	if pingURL == "" {
		return nil
	}

	client := resty.New()
	resp, err := client.R().Get(pingURL + "/fail")
	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}

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
	"math"
	"regexp"
	"strconv"
	"strings"
)

// rocYearOffset converts a Republic-of-China calendar year to Gregorian.
const rocYearOffset = 1911

var (
	yearMonthRegexp  = regexp.MustCompile(`(\d+)年(\d+)月`)
	fiscalYearRegexp = regexp.MustCompile(`(\d+)年度`)
	leadingDigits    = regexp.MustCompile(`\d+`)
)

// ROCToGregorian converts an ROC calendar year to a Gregorian year.
func ROCToGregorian(rocYear int) int {
	return rocYear + rocYearOffset
}

// ParseYearMonth extracts an ROC year/month label like "113年5月" and returns
// the Gregorian year and month.
func ParseYearMonth(s string) (year int, month int, ok bool) {
	match := yearMonthRegexp.FindStringSubmatch(s)
	if match == nil {
		return 0, 0, false
	}

	rocYear, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, 0, false
	}
	month, err = strconv.Atoi(match[2])
	if err != nil {
		return 0, 0, false
	}

	return ROCToGregorian(rocYear), month, true
}

// ParseFiscalYear extracts an ROC fiscal year label like "112年度" and
// returns the Gregorian year.
func ParseFiscalYear(s string) (int, bool) {
	match := fiscalYearRegexp.FindStringSubmatch(s)
	if match == nil {
		return 0, false
	}

	rocYear, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}

	return ROCToGregorian(rocYear), true
}

// ParseDecimal cleans a locale formatted numeric string (thousands
// separators, percent signs) and converts it to a float. Any input that does
// not yield a finite number returns nil instead of an error.
func ParseDecimal(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	if s == "" || s == "-" {
		return nil
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return nil
	}

	return &val
}

// ParseCapital extracts the paid-in capital amount from strings like
// "新台幣 259,303,805仟元": thousands separators are stripped and the leading
// numeric run is converted. Non-numeric residue yields nil.
func ParseCapital(s string) *float64 {
	s = strings.ReplaceAll(s, ",", "")
	digits := leadingDigits.FindString(s)
	if digits == "" {
		return nil
	}

	val, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return nil
	}

	return &val
}

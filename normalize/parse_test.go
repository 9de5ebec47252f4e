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
)

func TestROCToGregorian(t *testing.T) {
	for _, rocYear := range []int{1, 89, 100, 112, 113, 150} {
		assert.Equal(t, rocYear+1911, ROCToGregorian(rocYear))
	}
}

func TestParseYearMonth(t *testing.T) {
	tests := []struct {
		input string
		year  int
		month int
		ok    bool
	}{
		{"113年5月", 2024, 5, true},
		{"112年12月", 2023, 12, true},
		{"98年1月", 2009, 1, true},
		{"113年5月營收", 2024, 5, true},
		{"民國113年5月", 2024, 5, true},
		{"總計", 0, 0, false},
		{"113年度", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		year, month, ok := ParseYearMonth(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.year, year, "input %q", tt.input)
		assert.Equal(t, tt.month, month, "input %q", tt.input)
	}
}

func TestParseFiscalYear(t *testing.T) {
	tests := []struct {
		input string
		year  int
		ok    bool
	}{
		{"112年度", 2023, true},
		{"111年度", 2022, true},
		{"最近五年度財務資料 112年度", 2023, true},
		{"112年5月", 0, false},
		{"年度", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		year, ok := ParseFiscalYear(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.year, year, "input %q", tt.input)
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input string
		want  *float64
	}{
		{"1,234", ptr(1234.0)},
		{"1,234,567.89", ptr(1234567.89)},
		{"23.4%", ptr(23.4)},
		{"-5.2%", ptr(-5.2)},
		{"0", ptr(0.0)},
		{" 42 ", ptr(42.0)},
		{"", nil},
		{"-", nil},
		{"N/A", nil},
		{"不適用", nil},
		{"12a3", nil},
		{"NaN", nil},
		{"Inf", nil},
		{"-Inf", nil},
		{"Infinity", nil},
		{"1e400", nil},
	}

	for _, tt := range tests {
		got := ParseDecimal(tt.input)
		if tt.want == nil {
			assert.Nil(t, got, "input %q", tt.input)
		} else {
			require.NotNil(t, got, "input %q", tt.input)
			assert.InDelta(t, *tt.want, *got, 1e-9, "input %q", tt.input)
		}
	}
}

func TestParseCapital(t *testing.T) {
	tests := []struct {
		input string
		want  *float64
	}{
		{"259,303,805仟元", ptr(259303805.0)},
		{"新台幣 1,000,000 元", ptr(1000000.0)},
		{"500", ptr(500.0)},
		{"未提供", nil},
		{"", nil},
	}

	for _, tt := range tests {
		got := ParseCapital(tt.input)
		if tt.want == nil {
			assert.Nil(t, got, "input %q", tt.input)
		} else {
			require.NotNil(t, got, "input %q", tt.input)
			assert.InDelta(t, *tt.want, *got, 1e-9, "input %q", tt.input)
		}
	}
}

func ptr(f float64) *float64 {
	return &f
}

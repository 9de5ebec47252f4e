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

func TestBasicInfo(t *testing.T) {
	grid := htmltable.Grid{
		{"董事長：", "魏哲家"},
		{"總經理：", "魏哲家"},
		{"發言人：", "黃仁昭"},
		{"地址：", "新竹科學園區力行六路8號"},
		{"連絡電話：", "03-5636688"},
		{"公司網址：", "https://www.tsmc.com"},
		{"主要經營業務：", "積體電路製造"},
		{"實收資本額：", "259,303,805仟元"},
		{"成立日期：", "76/02/21"},
	}

	profile, skips := BasicInfo("2330", grid)
	require.NotNil(t, profile)
	assert.Empty(t, skips)

	assert.Equal(t, "2330", profile.CompanyID)
	require.NotNil(t, profile.Chairman)
	assert.Equal(t, "魏哲家", *profile.Chairman)
	require.NotNil(t, profile.Address)
	assert.Equal(t, "新竹科學園區力行六路8號", *profile.Address)
	require.NotNil(t, profile.Capital)
	assert.InDelta(t, 259303805.0, *profile.Capital, 1e-9)

	// the unmapped label must not leak into the column set
	assert.NotContains(t, profile.Columns(), "成立日期")
	assert.Len(t, profile.Columns(), 9)
}

func TestBasicInfoNoMappedLabels(t *testing.T) {
	grid := htmltable.Grid{
		{"成立日期：", "76/02/21"},
		{"營利事業統一編號：", "22099131"},
	}

	profile, skips := BasicInfo("2330", grid)
	assert.Nil(t, profile)
	require.Len(t, skips, 1)
	assert.Equal(t, "basic-info", skips[0].Stage)
}

func TestBasicInfoEmptyGrid(t *testing.T) {
	profile, skips := BasicInfo("2330", htmltable.Grid{})
	assert.Nil(t, profile)
	assert.NotEmpty(t, skips)
}

func TestBasicInfoUnparseableCapital(t *testing.T) {
	grid := htmltable.Grid{
		{"董事長：", "張三"},
		{"實收資本額：", "未提供"},
	}

	profile, skips := BasicInfo("1234", grid)
	require.NotNil(t, profile)
	assert.Nil(t, profile.Capital)
	require.Len(t, skips, 1)
	assert.Equal(t, "basic-capital", skips[0].Stage)

	// capital must be omitted from the write, not null padded
	assert.Equal(t, []string{"company_id", "chairman"}, profile.Columns())
}

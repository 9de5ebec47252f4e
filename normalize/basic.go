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
	"strings"

	"github.com/twstock/mopsdata/data"
	"github.com/twstock/mopsdata/htmltable"
)

// BasicInfo converts the label/value basic information table into a company
// profile. Labels outside the mapping are dropped. When no mapped label is
// present at all the profile is nil and the caller should not persist
// anything.
func BasicInfo(companyID string, grid htmltable.Grid) (*data.CompanyProfile, []Skip) {
	var skips []Skip

	profile := &data.CompanyProfile{CompanyID: companyID}
	for _, row := range grid {
		if len(row) < 2 {
			continue
		}

		label := strings.TrimSuffix(strings.TrimSpace(row[0]), "：")
		value := strings.TrimSpace(row[1])

		switch label {
		case "董事長":
			profile.Chairman = &value
		case "總經理":
			profile.CEO = &value
		case "發言人":
			profile.Spokesperson = &value
		case "地址":
			profile.Address = &value
		case "連絡電話":
			profile.Phone = &value
		case "公司網址":
			profile.Website = &value
		case "主要經營業務":
			profile.MainBusiness = &value
		case "實收資本額":
			profile.Capital = ParseCapital(value)
			if profile.Capital == nil {
				skips = append(skips, skipf("basic-capital", "no numeric value in %q", value))
			}
		}
	}

	if profile.Empty() {
		skips = append(skips, skipf("basic-info", "no mapped labels found in %d rows", len(grid)))
		return nil, skips
	}

	return profile, skips
}

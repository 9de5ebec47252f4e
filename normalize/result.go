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

// Package normalize converts the raw table grids scraped from the MOPS
// portal into typed records. Normalizers are pure: they never perform I/O
// and never fail. Malformed input produces skips, not errors.
package normalize

import "fmt"

// Skip records why a sub-record could not be produced. Skips replace the
// implicit drop-and-log control flow of exception suppression so callers and
// tests can observe exactly what was left out.
type Skip struct {
	Stage  string
	Reason string
}

func (s Skip) String() string {
	return fmt.Sprintf("%s: %s", s.Stage, s.Reason)
}

func skipf(stage, format string, args ...any) Skip {
	return Skip{Stage: stage, Reason: fmt.Sprintf(format, args...)}
}

// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ecos

import "errors"

var (
	// ErrMissingCredential indicates no ECOS API key was configured.
	ErrMissingCredential = errors.New("ecos api key not configured")

	// ErrAPI indicates ECOS answered with an error result code.
	ErrAPI = errors.New("ecos api error")

	// ErrNoObservations indicates a series returned no usable rows.
	ErrNoObservations = errors.New("no observations")

	// ErrInvalidSpec indicates an incomplete catalog entry.
	ErrInvalidSpec = errors.New("invalid indicator spec")
)

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

package source

import "errors"

var (
	// ErrSourceUnavailable indicates a network failure, timeout or non-success status.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMalformedPayload indicates a response that could not be parsed.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrEmptyPayload indicates a successful response without content.
	ErrEmptyPayload = errors.New("empty payload")
)

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

package ai

import "errors"

var (
	// ErrServiceUnavailable indicates the summarization service failed or timed out.
	ErrServiceUnavailable = errors.New("summarization service unavailable")

	// ErrMalformedResponse indicates the reply could not be read as a list of items.
	ErrMalformedResponse = errors.New("malformed summarization response")

	// ErrInvalidConfig indicates an incomplete or inconsistent configuration.
	ErrInvalidConfig = errors.New("invalid ai config")
)

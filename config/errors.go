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

package config

import "errors"

// Configuration validation errors.
var (
	ErrInvalidFeed        = errors.New("news.feeds: each feed needs a name and an http(s) url")
	ErrDuplicateFeed      = errors.New("news.feeds: duplicate feed name")
	ErrInvalidURL         = errors.New("url must be absolute http or https")
	ErrInvalidLocation    = errors.New("calendar.location is not a known time zone")
	ErrInvalidVocabulary  = errors.New("enrichment.vocabulary must be 'market' or 'trading'")
	ErrInvalidBatchSize   = errors.New("batch sizes must be at least 1")
	ErrInvalidTimeout     = errors.New("timeouts must be at least 1 second")
	ErrInvalidMaxAttempts = errors.New("ingestion.commit_attempts must be at least 1")
	ErrInvalidPhase       = errors.New("ingestion.phases has an unknown phase")
	ErrInvalidLogLevel    = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidCatalog     = errors.New("indicators.catalog is invalid")
)

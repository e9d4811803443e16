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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidArticle indicates an Article failed validation.
	ErrInvalidArticle = errors.New("invalid article")

	// ErrInvalidCalendarEvent indicates a CalendarEvent failed validation.
	ErrInvalidCalendarEvent = errors.New("invalid calendar event")

	// ErrInvalidIndicator indicates an Indicator failed validation.
	ErrInvalidIndicator = errors.New("invalid indicator")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyLink indicates an article has no permanent link.
	ErrEmptyLink = errors.New("link cannot be empty")

	// ErrIDMismatch indicates a record ID does not match its identity fields.
	ErrIDMismatch = errors.New("id does not match identity fields")

	// ErrInvalidDate indicates a calendar date is not an ISO date.
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

	// ErrEmptyID indicates a record has no ID.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrUnknownSentiment indicates a sentiment label outside the closed set.
	ErrUnknownSentiment = errors.New("unknown sentiment")

	// ErrUnknownVocabulary indicates an unsupported sentiment vocabulary name.
	ErrUnknownVocabulary = errors.New("unknown sentiment vocabulary")
)

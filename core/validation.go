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

import (
	"fmt"
	"time"
)

// ValidateArticle validates an Article according to domain rules.
//
// Validation rules:
//   - Title and Link must not be empty
//   - ID must equal ArticleID(Link)
//
// NOT validated:
//   - Enrichment (absent until the enrichment stage runs)
//   - PublishedAt (defaults to ingestion time when unparsable)
func ValidateArticle(article *Article) error {
	if article == nil {
		return fmt.Errorf("%w: article is nil", ErrInvalidArticle)
	}

	if article.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyTitle)
	}

	if article.Link == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyLink)
	}

	if article.ID != ArticleID(article.Link) {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrIDMismatch)
	}

	if e := article.Enrichment; e != nil && (e.ImpactScore < MinImpactScore || e.ImpactScore > MaxImpactScore) {
		return fmt.Errorf("%w: impact score %d out of range", ErrInvalidArticle, e.ImpactScore)
	}

	return nil
}

// ValidateCalendarEvent validates a CalendarEvent according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - Date must be an ISO calendar date
//   - Importance must be within 1-3
//   - ID must equal CalendarEventID(Date, ScheduledTime, Title)
func ValidateCalendarEvent(event *CalendarEvent) error {
	if event == nil {
		return fmt.Errorf("%w: event is nil", ErrInvalidCalendarEvent)
	}

	if event.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCalendarEvent, ErrEmptyTitle)
	}

	if _, err := time.Parse(time.DateOnly, event.Date); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCalendarEvent, ErrInvalidDate)
	}

	if event.Importance < MinImportance || event.Importance > MaxImportance {
		return fmt.Errorf("%w: importance %d out of range", ErrInvalidCalendarEvent, event.Importance)
	}

	if event.ID != CalendarEventID(event.Date, event.ScheduledTime, event.Title) {
		return fmt.Errorf("%w: %w", ErrInvalidCalendarEvent, ErrIDMismatch)
	}

	return nil
}

// ValidateIndicator validates an Indicator according to domain rules.
func ValidateIndicator(indicator *Indicator) error {
	if indicator == nil {
		return fmt.Errorf("%w: indicator is nil", ErrInvalidIndicator)
	}

	if indicator.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIndicator, ErrEmptyID)
	}

	if indicator.StatCode == "" || indicator.ItemCode == "" {
		return fmt.Errorf("%w: stat and item codes are required", ErrInvalidIndicator)
	}

	return nil
}

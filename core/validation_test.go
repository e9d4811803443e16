package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateArticle(t *testing.T) {
	valid := NewArticle("Fed holds rates", "https://example.com/a", "WSJ_Markets", time.Now())

	tests := []struct {
		name    string
		article *Article
		wantErr error
	}{
		{
			name:    "valid article",
			article: valid,
			wantErr: nil,
		},
		{
			name:    "nil article",
			article: nil,
			wantErr: ErrInvalidArticle,
		},
		{
			name:    "empty title",
			article: &Article{ID: ArticleID("https://example.com/a"), Link: "https://example.com/a"},
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "empty link",
			article: &Article{Title: "t"},
			wantErr: ErrEmptyLink,
		},
		{
			name:    "id not derived from link",
			article: &Article{ID: "abc", Title: "t", Link: "https://example.com/a"},
			wantErr: ErrIDMismatch,
		},
		{
			name: "impact out of range",
			article: &Article{
				ID:         ArticleID("https://example.com/a"),
				Title:      "t",
				Link:       "https://example.com/a",
				Enrichment: &Enrichment{ImpactScore: 11},
			},
			wantErr: ErrInvalidArticle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArticle(tt.article)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateArticle() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateArticle() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCalendarEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   *CalendarEvent
		wantErr error
	}{
		{
			name:    "valid event",
			event:   NewCalendarEvent("2026-01-02", "09:30", "United States", "CPI YoY", 3),
			wantErr: nil,
		},
		{
			name:    "nil event",
			event:   nil,
			wantErr: ErrInvalidCalendarEvent,
		},
		{
			name:    "empty title",
			event:   &CalendarEvent{Date: "2026-01-02", Importance: 1},
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "bad date",
			event:   &CalendarEvent{Date: "02/01/2026", Title: "CPI", Importance: 1},
			wantErr: ErrInvalidDate,
		},
		{
			name:    "importance out of range",
			event:   &CalendarEvent{Date: "2026-01-02", Title: "CPI", Importance: 4},
			wantErr: ErrInvalidCalendarEvent,
		},
		{
			name:    "id mismatch",
			event:   &CalendarEvent{ID: "x", Date: "2026-01-02", Title: "CPI", Importance: 2},
			wantErr: ErrIDMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCalendarEvent(tt.event)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateCalendarEvent() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCalendarEvent() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateIndicator(t *testing.T) {
	if err := ValidateIndicator(&Indicator{ID: "base_rate", StatCode: "722Y001", ItemCode: "0101000"}); err != nil {
		t.Errorf("ValidateIndicator() unexpected error = %v", err)
	}
	if err := ValidateIndicator(&Indicator{StatCode: "722Y001", ItemCode: "0101000"}); !errors.Is(err, ErrEmptyID) {
		t.Errorf("ValidateIndicator() error = %v, want %v", err, ErrEmptyID)
	}
	if err := ValidateIndicator(&Indicator{ID: "base_rate"}); !errors.Is(err, ErrInvalidIndicator) {
		t.Errorf("ValidateIndicator() error = %v, want %v", err, ErrInvalidIndicator)
	}
}

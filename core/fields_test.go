package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFields_Merge(t *testing.T) {
	stored := Fields{
		"title":  StringValue("CPI YoY"),
		"actual": StringValue("3.2%"),
	}
	update := Fields{
		"title":    StringValue("CPI YoY"),
		"forecast": StringValue("3.1%"),
	}

	merged := stored.Merge(update)

	assert.Equal(t, "3.2%", merged.String("actual"), "fields absent from the update survive")
	assert.Equal(t, "3.1%", merged.String("forecast"))
	assert.Len(t, merged, 3)
	assert.False(t, stored.Has("forecast"), "merge must not mutate the receiver")
}

func TestValue_Equal(t *testing.T) {
	now := time.Now()
	assert.True(t, StringValue("a").Equal(StringValue("a")))
	assert.False(t, StringValue("a").Equal(IntValue(1)))
	assert.True(t, TimeValue(now).Equal(TimeValue(now.In(time.FixedZone("KST", 9*3600)))))
	assert.True(t, StringsValue([]string{"a", "b"}).Equal(StringsValue([]string{"a", "b"})))
	assert.False(t, FloatValue(1.5).Equal(FloatValue(1.25)))
	assert.True(t, BoolValue(true).Equal(BoolValue(true)))
}

func TestFields_Keys(t *testing.T) {
	f := Fields{"b": IntValue(1), "a": IntValue(2)}
	assert.Equal(t, []string{"a", "b"}, f.Keys())
}

func TestParseTimestamp(t *testing.T) {
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		raw    string
		want   time.Time
		parsed bool
	}{
		{"Fri, 02 Jan 2026 13:04:05 +0000", time.Date(2026, 1, 2, 13, 4, 5, 0, time.UTC), true},
		{"2026-01-01T08:00:00Z", time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC), true},
		{"2025-12-31", time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), true},
		{"yesterday-ish", now, false},
		{"", now, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.raw, now)
			assert.Equal(t, tt.parsed, ok)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}

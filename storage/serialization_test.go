package storage

import (
	"testing"
	"time"

	"github.com/poiesic/marketfeed/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalFields(t *testing.T) {
	published := time.Date(2026, 1, 2, 9, 30, 15, 123456000, time.UTC)

	tests := []struct {
		name   string
		fields core.Fields
	}{
		{"empty document", core.Fields{}},
		{"string field", core.Fields{"title": core.StringValue("CPI YoY")}},
		{"unicode string", core.Fields{"korean_title": core.StringValue("연준 금리 동결")}},
		{"negative int", core.Fields{"delta": core.IntValue(-42)}},
		{"float", core.Fields{"value": core.FloatValue(1380.25), "change_rate": core.FloatValue(-0.1)}},
		{"bool", core.Fields{"pending": core.BoolValue(true), "other": core.BoolValue(false)}},
		{"time", core.Fields{"published_at": core.TimeValue(published)}},
		{"string list", core.Fields{"assets": core.StringsValue([]string{"SPY", "", "삼성전자"})}},
		{"empty string list", core.Fields{"assets": core.StringsValue(nil)}},
		{"article document", core.NewArticle("Fed holds", "https://example.com/fed", "WSJ", published).Fields()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalFields(tt.fields)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalFields(data)
			require.NoError(t, err)
			require.Len(t, decoded, len(tt.fields))
			for k, v := range tt.fields {
				assert.True(t, v.Equal(decoded[k]), "field %q: got %+v want %+v", k, decoded[k], v)
			}
		})
	}
}

func TestMarshalFields_Deterministic(t *testing.T) {
	f := core.Fields{
		"b": core.StringValue("two"),
		"a": core.IntValue(1),
		"c": core.FloatValue(3),
	}
	assert.Equal(t, MarshalFields(f), MarshalFields(f.Merge(nil)))
}

func TestUnmarshalFields_Invalid(t *testing.T) {
	valid := MarshalFields(core.Fields{"title": core.StringValue("CPI YoY")})

	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"truncated", valid[:len(valid)-3]},
		{"count larger than data", []byte{0x7f}},
		{"unknown kind", []byte{0x01, 0x01, 'k', 0x09}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalFields(tt.data)
			assert.Error(t, err)
		})
	}
}

package core

import (
	"maps"
	"slices"
	"time"
)

// ValueKind identifies the type held by a Value.
type ValueKind uint8

const (
	KindString ValueKind = iota + 1
	KindInt
	KindFloat
	KindBool
	KindTime
	KindStrings
)

// Value is a single document field. Exactly one payload member is meaningful,
// selected by Kind.
type Value struct {
	Kind    ValueKind
	Str     string
	Int     int64
	Float   float64
	Bool    bool
	Time    time.Time
	Strings []string
}

func StringValue(s string) Value       { return Value{Kind: KindString, Str: s} }
func IntValue(i int64) Value           { return Value{Kind: KindInt, Int: i} }
func FloatValue(f float64) Value       { return Value{Kind: KindFloat, Float: f} }
func BoolValue(b bool) Value           { return Value{Kind: KindBool, Bool: b} }
func TimeValue(t time.Time) Value      { return Value{Kind: KindTime, Time: t.UTC()} }
func StringsValue(list []string) Value { return Value{Kind: KindStrings, Strings: slices.Clone(list)} }

// Equal reports whether two values hold the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == o.Str
	case KindInt:
		return v.Int == o.Int
	case KindFloat:
		return v.Float == o.Float
	case KindBool:
		return v.Bool == o.Bool
	case KindTime:
		return v.Time.Equal(o.Time)
	case KindStrings:
		return slices.Equal(v.Strings, o.Strings)
	}
	return false
}

// Fields is the field map of a stored document. Nested documents are flattened
// into dotted paths ("content.korean_title").
type Fields map[string]Value

// Merge returns a copy of f with every field of update applied on top.
// Fields absent from update are left untouched.
func (f Fields) Merge(update Fields) Fields {
	merged := make(Fields, len(f)+len(update))
	maps.Copy(merged, f)
	maps.Copy(merged, update)
	return merged
}

// String returns the string payload of a field, or "" when absent.
func (f Fields) String(key string) string {
	return f[key].Str
}

// Has reports whether a field is present.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Keys returns the field names in sorted order.
func (f Fields) Keys() []string {
	return slices.Sorted(maps.Keys(f))
}

// Record is a canonical record that can be persisted as a document.
type Record interface {
	// RecordID returns the document key.
	RecordID() string
	// Fields returns only the fields the record actually carries, so that a
	// merge-upsert never clears a field populated by an earlier write.
	Fields() Fields
}

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


package storage

import (
	"fmt"
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/marketfeed/core"
)

// Documents are encoded as a field count followed by (key, kind, payload)
// triples in sorted key order. Timestamps are stored as Unix microseconds.

// MarshalFields serializes a document's fields to bytes.
func MarshalFields(fields core.Fields) []byte {
	keys := fields.Keys()

	size := varint.Uint64.Size(uint64(len(keys)))
	for _, k := range keys {
		size += ord.String.Size(k) + sizeValue(fields[k])
	}

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(len(keys)), buf)
	for _, k := range keys {
		n += ord.String.Marshal(k, buf[n:])
		n += marshalValue(fields[k], buf[n:])
	}
	return buf
}

// UnmarshalFields deserializes a document's fields from bytes.
func UnmarshalFields(data []byte) (core.Fields, error) {
	count, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: field count: %w", ErrSerializationFailed, err)
	}
	if count > uint64(len(data)) {
		return nil, ErrTruncatedData
	}

	fields := make(core.Fields, count)
	for i := uint64(0); i < count; i++ {
		key, m, err := ord.String.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: field %d key: %w", ErrSerializationFailed, i, err)
		}
		n += m

		value, m, err := unmarshalValue(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %w", ErrSerializationFailed, key, err)
		}
		n += m
		fields[key] = value
	}
	return fields, nil
}

func sizeValue(v core.Value) int {
	size := varint.Uint64.Size(uint64(v.Kind))
	switch v.Kind {
	case core.KindString:
		size += ord.String.Size(v.Str)
	case core.KindInt:
		size += varint.Int64.Size(v.Int)
	case core.KindFloat:
		size += varint.Uint64.Size(math.Float64bits(v.Float))
	case core.KindBool:
		size += varint.Uint64.Size(boolBits(v.Bool))
	case core.KindTime:
		size += varint.Int64.Size(v.Time.UnixMicro())
	case core.KindStrings:
		size += varint.Uint64.Size(uint64(len(v.Strings)))
		for _, s := range v.Strings {
			size += ord.String.Size(s)
		}
	}
	return size
}

func marshalValue(v core.Value, buf []byte) int {
	n := varint.Uint64.Marshal(uint64(v.Kind), buf)
	switch v.Kind {
	case core.KindString:
		n += ord.String.Marshal(v.Str, buf[n:])
	case core.KindInt:
		n += varint.Int64.Marshal(v.Int, buf[n:])
	case core.KindFloat:
		n += varint.Uint64.Marshal(math.Float64bits(v.Float), buf[n:])
	case core.KindBool:
		n += varint.Uint64.Marshal(boolBits(v.Bool), buf[n:])
	case core.KindTime:
		n += varint.Int64.Marshal(v.Time.UnixMicro(), buf[n:])
	case core.KindStrings:
		n += varint.Uint64.Marshal(uint64(len(v.Strings)), buf[n:])
		for _, s := range v.Strings {
			n += ord.String.Marshal(s, buf[n:])
		}
	}
	return n
}

func unmarshalValue(data []byte) (core.Value, int, error) {
	kind, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return core.Value{}, n, err
	}

	v := core.Value{Kind: core.ValueKind(kind)}
	var m int
	switch v.Kind {
	case core.KindString:
		v.Str, m, err = ord.String.Unmarshal(data[n:])
	case core.KindInt:
		v.Int, m, err = varint.Int64.Unmarshal(data[n:])
	case core.KindFloat:
		var bits uint64
		bits, m, err = varint.Uint64.Unmarshal(data[n:])
		v.Float = math.Float64frombits(bits)
	case core.KindBool:
		var bits uint64
		bits, m, err = varint.Uint64.Unmarshal(data[n:])
		v.Bool = bits == 1
	case core.KindTime:
		var micros int64
		micros, m, err = varint.Int64.Unmarshal(data[n:])
		v.Time = time.UnixMicro(micros).UTC()
	case core.KindStrings:
		var count uint64
		count, m, err = varint.Uint64.Unmarshal(data[n:])
		if err != nil {
			return v, n + m, err
		}
		if count > uint64(len(data)) {
			return v, n + m, ErrTruncatedData
		}
		n += m
		m = 0
		v.Strings = make([]string, 0, count)
		for i := uint64(0); i < count; i++ {
			s, k, serr := ord.String.Unmarshal(data[n:])
			if serr != nil {
				return v, n, serr
			}
			n += k
			v.Strings = append(v.Strings, s)
		}
	default:
		return v, n, fmt.Errorf("unknown value kind %d", kind)
	}
	return v, n + m, err
}

func boolBits(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

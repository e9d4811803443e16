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

package openai

// repairJSON fixes formatting slips common in model output without touching
// string contents:
//   - object keys missing one or both quotes: {item_index": 0} or {item_index: 0}
//   - trailing commas before a closing bracket or brace
func repairJSON(s string) string {
	src := []rune(s)
	out := make([]rune, 0, len(src)+16)

	inString, escaped := false, false
	for i := 0; i < len(src); i++ {
		ch := src[i]
		if inString {
			out = append(out, ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
			out = append(out, ch)
		case ',':
			next := skipSpace(src, i+1)
			if next < len(src) && (src[next] == '}' || src[next] == ']') {
				continue
			}
			out = append(out, ch)
			i = quoteKey(src, i+1, &out) - 1
		case '{':
			out = append(out, ch)
			i = quoteKey(src, i+1, &out) - 1
		default:
			out = append(out, ch)
		}
	}

	return string(out)
}

// quoteKey copies leading whitespace from src[start:] and, when the next token
// is a bare identifier used as an object key, emits it quoted. Returns the
// index of the first rune not consumed.
func quoteKey(src []rune, start int, out *[]rune) int {
	i := start
	for i < len(src) && isSpace(src[i]) {
		*out = append(*out, src[i])
		i++
	}
	if i >= len(src) || !isKeyStart(src[i]) {
		return i
	}

	end := i
	for end < len(src) && isKeyRune(src[end]) {
		end++
	}
	next := end
	if next < len(src) && src[next] == '"' {
		next++
	}
	if colon := skipSpace(src, next); colon >= len(src) || src[colon] != ':' {
		return i
	}

	*out = append(*out, '"')
	*out = append(*out, src[i:end]...)
	*out = append(*out, '"')
	return next
}

func skipSpace(src []rune, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

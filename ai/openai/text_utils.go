package openai

import "strings"

// stripCodeFences removes a surrounding markdown code fence, if any.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// cleanTitle collapses whitespace so a title stays on its numbered line.
func cleanTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isKeyStart(r rune) bool {
	return isLetter(r) || r == '_'
}

func isKeyRune(r rune) bool {
	return isKeyStart(r) || (r >= '0' && r <= '9')
}

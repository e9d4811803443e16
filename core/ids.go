package core

import (
	"encoding/hex"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// IDFromContent generates a deterministic hex identifier from text content using
// BLAKE2b hashing. Identical content always produces identical IDs.
func IDFromContent(text string) string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// ArticleID returns the identity of an article, derived from its permanent link only.
// Crawl time, title changes and source name never affect it.
func ArticleID(link string) string {
	return IDFromContent(strings.TrimSpace(link))
}

// CalendarEventID returns the identity of a calendar event.
// Country is excluded on purpose: source country tagging is unreliable, so two
// same-named events at the same time on the same day share an ID.
func CalendarEventID(date, scheduledTime, title string) string {
	return IDFromContent(date + "-" + title + "-" + scheduledTime)
}

package badger

import "strings"

// Key prefixes for different data types
const (
	documentPrefix = "doc"
)

// makeDocumentKey generates a key for a document.
// Format: doc:collection:id
func makeDocumentKey(collection, id string) []byte {
	var b strings.Builder
	b.Grow(len(documentPrefix) + len(collection) + len(id) + 2)
	b.WriteString(documentPrefix)
	b.WriteByte(':')
	b.WriteString(collection)
	b.WriteByte(':')
	b.WriteString(id)
	return []byte(b.String())
}

// makeCollectionPrefix generates the key prefix shared by every document of a collection.
func makeCollectionPrefix(collection string) []byte {
	return []byte(documentPrefix + ":" + collection + ":")
}

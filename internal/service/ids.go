// Package service provides business logic for the document platform.
package service

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"time"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// idPattern matches ids of the form <prefix>_<unix-millis>_<8 alnum>.
var idPattern = regexp.MustCompile(`^(doc|conv)_\d+_[a-z0-9]{8}$`)

// newID builds a time-prefixed identifier with a random suffix. The scheme is
// collision-resistant, not globally unique; the time prefix keeps keys
// roughly sortable by creation time.
func newID(prefix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), randomSuffix(8))
}

// NewDocumentID mints an id for a document record.
func NewDocumentID() string {
	return newID("doc")
}

// NewConversationID mints an id for a conversation record.
func NewConversationID() string {
	return newID("conv")
}

// ValidID reports whether s matches the platform id format.
func ValidID(s string) bool {
	return idPattern.MatchString(s)
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = idAlphabet[int(b[i])%len(idAlphabet)]
	}
	return string(b)
}

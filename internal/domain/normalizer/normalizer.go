// Package normalizer canonicalizes merchant description strings so that two
// descriptions of the same merchant compare equal.
package normalizer

import (
	"regexp"
	"strings"
)

// Matches store/location suffixes like "#1234".
var storeNumber = regexp.MustCompile(`#\d+`)

// Normalize strips store-number tokens, collapses whitespace runs to a single
// space, trims, and uppercases. It is pure and total over all strings.
func Normalize(name string) string {
	cleaned := storeNumber.ReplaceAllString(name, "")
	return strings.ToUpper(strings.Join(strings.Fields(cleaned), " "))
}

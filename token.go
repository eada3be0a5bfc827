package sitesearch

import (
	"strings"
	"unicode"
)

// Tokenize splits text into normalized index words. The text is lowercased
// and split at every rune that is neither a letter nor a digit, so
// punctuation and whitespace both act as word boundaries ("don't" becomes
// "don" and "t"). Empty tokens are discarded. Queries go through the same
// normalization, which keeps lookups consistent with the index contents.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

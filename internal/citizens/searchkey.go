package citizens

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var searchKeyTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SearchKey folds a name for accent- and case-insensitive matching. The
// repository stores the folded form alongside the display name so lookups
// stay index-friendly.
func SearchKey(name string) string {
	folded, _, err := transform.String(searchKeyTransformer, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}

package girocheckout

import "strings"

// Languages the hosted payment form accepts, exactly as the wire expects
// them.
var supportedLanguages = []string{
	"de", // German (default)
	"en",
	"es",
	"fr",
	"it",
	"ja",
	"pt",
	"nl",
	"cs",
	"sv",
	"da",
	"pl",
	"spde",         // German donation
	"spen",         // English donation
	"de_DE_stadtn", // German communes
}

// normalizeLanguage maps a caller-supplied language tag onto one of the
// supported wire values. "en", "EN", "en-GB" and "en_GB" all become "en".
// Returns "" when no supported language matches.
func normalizeLanguage(lang string) string {
	if lang == "" {
		return ""
	}
	for _, s := range supportedLanguages {
		if s == lang {
			return s
		}
	}

	lc := strings.ToLower(lang)
	prefix := lc
	if i := strings.IndexAny(lc, "-_"); i >= 0 {
		prefix = lc[:i]
	}
	for _, s := range supportedLanguages {
		ls := strings.ToLower(s)
		if ls == lc || ls == prefix {
			return s
		}
	}
	return ""
}

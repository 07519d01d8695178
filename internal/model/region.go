package model

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// NoRegion is DuckDuckGo's code for "all regions".
const NoRegion = "wt-wt"

// RegionLanguage resolves the language half of a DuckDuckGo region code
// ("us-en", "de-de", "xa-ar") to a language tag and its English name.
// The boolean is false when the code is empty, NoRegion, or its language
// part is not a known ISO 639 code. DuckDuckGo owns the list of region
// codes, so an unknown code is not an error for the search itself.
func RegionLanguage(code string) (language.Tag, string, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" || code == NoRegion {
		return language.Und, "", false
	}

	_, lang, found := strings.Cut(code, "-")
	if !found || lang == "" {
		return language.Und, "", false
	}

	base, err := language.ParseBase(lang)
	if err != nil {
		return language.Und, "", false
	}
	tag, err := language.Compose(base)
	if err != nil {
		return language.Und, "", false
	}

	name := display.English.Languages().Name(tag)
	if name == "" {
		name = tag.String()
	}
	return tag, name, true
}

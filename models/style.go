package models

import (
	"strings"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Style tags a stylar can be filed under.
const (
	StyleStreetwear = "streetwear"
	StyleMinimalist = "minimalist"
	StyleVintage    = "vintage"
	StyleBohemian   = "bohemian"
	StyleGothic     = "gothic"
	StylePreppy     = "preppy"
	StyleGlamour    = "glamour"
	StyleCasual     = "casual"
)

var Styles = []string{
	StyleStreetwear,
	StyleMinimalist,
	StyleVintage,
	StyleBohemian,
	StyleGothic,
	StylePreppy,
	StyleGlamour,
	StyleCasual,
}

var (
	styleFolder = cases.Lower(language.Und)
	styleTitler = cases.Title(language.English)
)

// NormalizeStyle folds a user supplied tag ("Bohème ", "GOTHIC") to its canonical form.
func NormalizeStyle(raw string) string {
	return styleFolder.String(strings.TrimSpace(unidecode.Unidecode(raw)))
}

// IsKnownStyle reports whether tag (already normalized) is a supported style.
func IsKnownStyle(tag string) bool {
	for _, s := range Styles {
		if s == tag {
			return true
		}
	}
	return false
}

// StyleLabel renders a tag for display, e.g. "streetwear" -> "Streetwear Style".
func StyleLabel(tag string) string {
	return styleTitler.String(tag) + " Style"
}

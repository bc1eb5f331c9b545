// Package i18n implements the locale-aware number/date formatting the
// format_number/format_date parser functions delegate to "the
// language", per spec §4.5. Grounded on packalyst-wikigo's go.mod,
// which depends on golang.org/x/text for the same purpose.
package i18n

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

func parseTag(lang string) language.Tag {
	if lang == "" {
		return language.English
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	return tag
}

// FormatNumber renders n using lang's grouping and decimal separator
// conventions (e.g. "1,234.5" for en, "1.234,5" for de). Uses
// number.Decimal rather than a bare numeric verb so large values don't
// fall back to %g's scientific notation.
func FormatNumber(n float64, lang string) string {
	p := message.NewPrinter(parseTag(lang))
	return p.Sprintf("%v", number.Decimal(n))
}

// FormatDate parses isoDate ("2006-01-02" or RFC3339) and renders it.
// An explicit layout (a Go reference-date layout string) wins; absent
// one, the output order/month-name convention is chosen from lang's
// base language.
func FormatDate(isoDate, lang, layout string) (string, error) {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		t, err = time.Parse(time.RFC3339, isoDate)
		if err != nil {
			return "", err
		}
	}
	if layout != "" {
		return t.Format(layout), nil
	}
	base, _ := parseTag(lang).Base()
	switch base.String() {
	case "en":
		return t.Format("January 2, 2006"), nil
	default:
		return t.Format("2 January 2006"), nil
	}
}

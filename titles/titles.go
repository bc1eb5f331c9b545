// Package titles implements C1: splitting a raw title into a namespace and
// a canonical page title, URL-encoding it back, and the subpage helpers
// namespaces with AllowsSubpages rely on.
package titles

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ottm-wiki/wiki/common/entities"
	"github.com/ottm-wiki/wiki/namespaces"
)

// EmptyTitleError is returned when a title is empty after canonicalization.
type EmptyTitleError struct{}

func (EmptyTitleError) Error() string { return "title is empty" }

// BadTitleError is returned when a title contains a disallowed character.
type BadTitleError struct {
	Char rune
}

func (e BadTitleError) Error() string {
	return fmt.Sprintf("invalid character %q in title", e.Char)
}

const invalidChars = "%@<>_#|{}[]"

var htmlEntityPattern = regexp.MustCompile(`&#?[a-zA-Z0-9]+;`)

func isInvalidChar(r rune) bool {
	if strings.ContainsRune(invalidChars, r) {
		return true
	}
	// C0 controls, DEL, C1 controls.
	return r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f)
}

// Canonicalize URL-decodes s, turns '_' into ' ', trims trailing spaces,
// and rejects empty titles, disallowed characters, HTML entity sequences,
// and titles that start/end with '/' or contain "//".
func Canonicalize(s string) (string, error) {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		decoded = s
	}
	decoded = strings.ReplaceAll(decoded, "_", " ")
	decoded = strings.TrimRight(decoded, " ")

	if decoded == "" {
		return "", EmptyTitleError{}
	}
	if loc := htmlEntityPattern.FindStringIndex(decoded); loc != nil {
		return "", BadTitleError{Char: rune(decoded[loc[0]])}
	}
	for _, r := range decoded {
		if isInvalidChar(r) {
			return "", BadTitleError{Char: r}
		}
	}
	if strings.HasPrefix(decoded, "/") || strings.HasSuffix(decoded, "/") || strings.Contains(decoded, "//") {
		return "", BadTitleError{Char: '/'}
	}
	return decoded, nil
}

// Split takes an already-canonicalized title and separates a leading
// "<namespace>:" prefix, matched case-insensitively against the namespace
// registry's names and aliases. A title with no recognized namespace
// prefix belongs to Main.
func Split(canonical string) (entities.Namespace, string) {
	if idx := strings.Index(canonical, namespaces.Separator); idx >= 0 {
		prefix, rest := canonical[:idx], canonical[idx+1:]
		if ns, ok := namespaces.ByName(prefix); ok {
			return ns, rest
		}
	}
	return namespaces.MustByID(namespaces.Main), canonical
}

// Resolve canonicalizes a raw title and splits it into (namespace, title).
func Resolve(raw string) (entities.Namespace, string, error) {
	canon, err := Canonicalize(raw)
	if err != nil {
		return entities.Namespace{}, "", err
	}
	ns, title := Split(canon)
	if title == "" {
		return entities.Namespace{}, "", EmptyTitleError{}
	}
	return ns, title, nil
}

// URLEncode replaces spaces with underscores and percent-encodes every
// other character except '/' and ':'.
func URLEncode(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	var b strings.Builder
	for _, r := range s {
		if r == '/' || r == ':' {
			b.WriteRune(r)
			continue
		}
		b.WriteString(url.QueryEscape(string(r)))
	}
	return b.String()
}

// FullTitle returns the namespace-prefixed title, e.g. "Help:Installing" or
// just "Main Page" for the Main namespace.
func FullTitle(ns entities.Namespace, title string) string {
	return ns.FullTitle(title)
}

// BaseName returns the portion of title before its first '/', when ns
// allows subpages; otherwise it returns title unchanged.
func BaseName(ns entities.Namespace, title string) string {
	if !ns.AllowsSubpages {
		return title
	}
	if idx := strings.Index(title, "/"); idx >= 0 {
		return title[:idx]
	}
	return title
}

// PageName returns the portion of title after its last '/'.
func PageName(title string) string {
	if idx := strings.LastIndex(title, "/"); idx >= 0 {
		return title[idx+1:]
	}
	return title
}

// ParentTitle returns the portion of title before its last '/', or "" if
// title has no '/'.
func ParentTitle(title string) string {
	if idx := strings.LastIndex(title, "/"); idx >= 0 {
		return title[:idx]
	}
	return ""
}

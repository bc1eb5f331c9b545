package parser

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// LinkOptions configures FormatInternalLink. Callers leave fields at
// their zero value unless the wikicode explicitly overrode them; link
// extraction in Parse sets only Text, from a piped link label.
type LinkOptions struct {
	Text          string
	Tooltip       string
	Anchor        string
	URLParams     map[string]string
	CSSClasses    []string
	ID            string
	AccessKey     string
	NoRedLink     bool
	OnlyURL       bool
	OpenInNewTab  bool
}

// LinkTarget is what FormatInternalLink needs to know about the page a
// link resolves to, supplied by the caller (C3) since the parser never
// touches the repository directly outside the injected Context
// closures.
type LinkTarget struct {
	FullTitle string
	Exists    bool
	IsSpecial bool
}

// FormatInternalLink renders an anchor to target, or a bold
// non-link if target is the page currently being rendered and no
// anchor/params differentiate the two. Grounded on
// original_source/ottm/api/wiki/parser/__init__.py's
// format_internal_link/format_link pair.
func FormatInternalLink(target LinkTarget, currentPageTitle string, opts LinkOptions) string {
	linkText := target.FullTitle
	if opts.Text != "" {
		linkText = opts.Text
	}

	if currentPageTitle != "" && target.FullTitle == currentPageTitle && opts.Anchor == "" && len(opts.URLParams) == 0 {
		if opts.OnlyURL {
			return ""
		}
		return fmt.Sprintf(`<strong class="wiki-recursive-link">%s</strong>`, html.EscapeString(linkText))
	}

	url := "/wiki/" + pathEncode(target.FullTitle)
	tooltip := target.FullTitle
	if opts.Tooltip != "" {
		tooltip = opts.Tooltip
	}

	allowedRedParam := opts.URLParams["action"] == "talk" || opts.URLParams["action"] == "info" ||
		opts.URLParams["action"] == "history" || opts.URLParams["action"] == "raw"

	if target.Exists || opts.NoRedLink || allowedRedParam {
		if q := encodeQuery(opts.URLParams); q != "" {
			url += "?" + q
		}
		if opts.Anchor != "" {
			url += "#" + opts.Anchor
		}
	} else {
		if !target.IsSpecial {
			url += "?action=edit&red_link=1"
		}
		tooltip += " (page does not exist)"
	}

	if opts.OnlyURL {
		return url
	}
	return FormatLink(url, linkText, tooltip, target.Exists, opts.CSSClasses, opts.ID, opts.AccessKey, opts.OpenInNewTab, nil)
}

// FormatLink renders a single anchor tag. dataAttrs values are rendered
// as "1"/"0" for booleans, verbatim otherwise.
func FormatLink(url, text, tooltip string, pageExists bool, cssClasses []string, id, accessKey string, external bool, dataAttrs map[string]interface{}) string {
	classes := append([]string{}, cssClasses...)
	if !pageExists {
		classes = append(classes, "wiki-red-link")
	}

	attrs := map[string]string{}
	disabled := false
	for _, c := range classes {
		if c == "disabled" {
			disabled = true
		}
	}
	if disabled {
		attrs["aria-disabled"] = "true"
		url = ""
	}
	if accessKey != "" {
		attrs["accesskey"] = accessKey
	}
	if external {
		text += ` <span class="mdi mdi-open-in-new"></span>`
		attrs["target"] = "_blank"
	}
	for k, v := range dataAttrs {
		switch b := v.(type) {
		case bool:
			if b {
				attrs["data-"+k] = "1"
			} else {
				attrs["data-"+k] = "0"
			}
		default:
			attrs["data-"+k] = fmt.Sprintf("%v", v)
		}
	}
	if id != "" {
		attrs["id"] = id
	}
	attrs["href"] = url
	attrs["class"] = strings.Join(classes, " ")
	attrs["title"] = tooltip

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("<a")
	for _, k := range keys {
		fmt.Fprintf(&b, ` %s="%s"`, k, html.EscapeString(attrs[k]))
	}
	b.WriteString(">")
	b.WriteString(text)
	b.WriteString("</a>")
	return b.String()
}

func pathEncode(title string) string {
	return strings.ReplaceAll(title, " ", "_")
}

func encodeQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	return strings.Join(parts, "&")
}

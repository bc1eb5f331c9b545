package registry

import "fmt"

// TemplateTag is a named directive controlling structural expansion of
// the section between its opening and (for paired tags) closing tag.
type TemplateTag struct {
	Name       string
	Standalone bool
	MinArgs    int
	MaxArgs    int

	// Evaluate runs when the opening tag is encountered. For standalone
	// tags, output is substituted directly. For paired tags, non-empty
	// output is written before the section, and parseSection decides
	// whether the inner text is re-scanned for delimiters (true) or
	// consumed verbatim until the matching end tag (false). no_wiki uses
	// parseSection=false; include_only and no_include re-scan their
	// section and decide in Transform whether to keep it.
	Evaluate func(ctx Context, args []string) (output string, parseSection bool, err error)

	// Transform runs when a paired tag's closing tag is found, given the
	// buffer accumulated between open and close.
	Transform func(ctx Context, buffer string) (string, error)
}

var templateTags = map[string]TemplateTag{}

func registerTemplateTag(t TemplateTag) {
	templateTags[t.Name] = t
}

// TemplateTagByName looks up a registered template tag.
func TemplateTagByName(name string) (TemplateTag, bool) {
	t, ok := templateTags[name]
	return t, ok
}

func init() {
	registerTemplateTag(TemplateTag{
		Name:       "no_wiki",
		Standalone: false,
		Evaluate: func(_ Context, _ []string) (string, bool, error) {
			return "", false, nil
		},
		Transform: func(ctx Context, buffer string) (string, error) {
			if ctx.NextPlaceholder == nil || ctx.Placeholders == nil {
				return buffer, nil
			}
			token := ctx.NextPlaceholder()
			ctx.Placeholders[token] = buffer
			return token, nil
		},
	})

	registerTemplateTag(TemplateTag{
		Name:       "include_only",
		Standalone: false,
		Evaluate: func(_ Context, _ []string) (string, bool, error) {
			return "", true, nil
		},
		Transform: func(ctx Context, buffer string) (string, error) {
			if ctx.Transcluded {
				return buffer, nil
			}
			return "", nil
		},
	})

	registerTemplateTag(TemplateTag{
		Name:       "no_include",
		Standalone: false,
		Evaluate: func(_ Context, _ []string) (string, bool, error) {
			return "", true, nil
		},
		Transform: func(ctx Context, buffer string) (string, error) {
			if ctx.Transcluded {
				return "", nil
			}
			return buffer, nil
		},
	})

	// transclude is supplemental to the enumerated tag set: it gives the
	// parser's recursive page-inclusion step (spec.md §4.5/§5 mention
	// transcluding a page while parsing another, without naming the
	// concrete tag) a standalone form: {% transclude "Title" %}.
	registerTemplateTag(TemplateTag{
		Name:       "transclude",
		Standalone: true,
		MinArgs:    1,
		MaxArgs:    1,
		Evaluate: func(ctx Context, args []string) (string, bool, error) {
			if ctx.Transclude == nil {
				return "", false, fmt.Errorf("transclusion is not available in this context")
			}
			out, err := ctx.Transclude(args[0])
			return out, false, err
		},
	})
}

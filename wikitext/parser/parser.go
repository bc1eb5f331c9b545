package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ottm-wiki/wiki/common/entities"
	"github.com/ottm-wiki/wiki/namespaces"
	"github.com/ottm-wiki/wiki/titles"
	"github.com/ottm-wiki/wiki/wikitext/registry"
)

// Request bundles everything one call to Parse needs: the raw wikicode
// and the context its template tags, magic variables, and link
// resolution run against.
type Request struct {
	Content      string
	Context      registry.Context
	MaxParseSize int
}

var linkPattern = regexp.MustCompile(`\[\[([^\[\]|]+)(?:\|([^\[\]]*))?\]\]`)

// Parse runs the full C5 pipeline: tag-stack expansion, internal-link
// and category extraction, HTML sanitization, then no_wiki placeholder
// substitution. It is purely functional in its inputs: given the same
// Request it produces byte-identical HTML, aside from ParseDurationMS.
func Parse(req Request) (string, ParsingMetadata, error) {
	start := time.Now()
	sizeBefore := len(req.Content)

	ctx := req.Context
	ctx.Placeholders = map[string]string{}
	ctx.NextPlaceholder = newPlaceholderFunc()
	ctx.Directives = &registry.ContentDirectives{}

	result, err := scanTags(req.Content, ctx, req.MaxParseSize)
	if err != nil {
		return "", ParsingMetadata{}, err
	}

	expanded, links, categories := extractLinks(result.output, ctx)
	sanitized := Sanitize(expanded)
	final := substituteNoWikiPlaceholders(sanitized, ctx.Placeholders)

	meta := ParsingMetadata{
		Links:            links,
		Categories:       categories,
		ParseDurationMS:  time.Since(start).Milliseconds(),
		ParseDate:        req.Context.Now,
		SizeBefore:       sizeBefore,
		SizeAfter:        len(final),
		TemplateTagError: result.templateTagError,
		DisplayTitle:     ctx.Directives.DisplayTitle,
		DefaultSortKey:   ctx.Directives.DefaultSortKey,
	}
	return final, meta, nil
}

func newPlaceholderFunc() func() string {
	return func() string {
		return "⁠NOWIKI-" + uuid.NewString() + "⁠"
	}
}

// extractLinks resolves every [[Target]] / [[Target|text]] construct
// left in the expanded text. [[Category:Name]] (and its sort-key form,
// [[Category:Name|key]]) registers a PageCategory and renders nothing,
// matching the convention category membership is declared, not linked
// to, inline. Every other target becomes an anchor via
// FormatInternalLink and a recorded PageLink.
func extractLinks(text string, ctx registry.Context) (string, []entities.PageLink, []entities.PageCategory) {
	var links []entities.PageLink
	var categories []entities.PageCategory
	currentFullTitle := ctx.Namespace.FullTitle(ctx.Title)

	out := linkPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := linkPattern.FindStringSubmatch(match)
		raw := strings.TrimSpace(groups[1])
		display := groups[2]

		ns, title, err := titles.Resolve(raw)
		if err != nil {
			return match
		}

		if ns.ID == namespaces.Category {
			var sortKey *string
			if display != "" {
				sortKey = &display
			}
			categories = append(categories, entities.PageCategory{
				PageNamespaceID: ctx.Namespace.ID,
				PageTitle:       ctx.Title,
				CategoryTitle:   title,
				SortKey:         sortKey,
			})
			return ""
		}

		links = append(links, entities.PageLink{
			SourceNamespaceID: ctx.Namespace.ID,
			SourceTitle:       ctx.Title,
			TargetNamespaceID: ns.ID,
			TargetTitle:       title,
		})

		exists := ctx.PageExists == nil || ctx.PageExists(ns.FullTitle(title))
		opts := LinkOptions{Text: display}
		return FormatInternalLink(LinkTarget{
			FullTitle: ns.FullTitle(title),
			Exists:    exists,
			IsSpecial: ns.ID == namespaces.Special,
		}, currentFullTitle, opts)
	})

	return out, links, categories
}

// substituteNoWikiPlaceholders runs last, substituting each no_wiki
// placeholder token with its stashed literal content, with '<' and '>'
// escaped so the content cannot reintroduce markup past sanitization.
func substituteNoWikiPlaceholders(text string, placeholders map[string]string) string {
	for token, literal := range placeholders {
		escaped := strings.NewReplacer("<", "&lt;", ">", "&gt;").Replace(literal)
		text = strings.ReplaceAll(text, token, escaped)
	}
	return text
}

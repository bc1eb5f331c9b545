package parser_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ottm-wiki/wiki/namespaces"
	"github.com/ottm-wiki/wiki/wikitext/parser"
	"github.com/ottm-wiki/wiki/wikitext/registry"
)

func baseRequest(content string) parser.Request {
	ns, _ := namespaces.ByID(namespaces.Main)
	return parser.Request{
		Content: content,
		Context: registry.Context{
			Now:       time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC),
			SiteName:  "Test Wiki",
			WikiPath:  "/wiki/",
			Namespace: ns,
			Title:     "Some Page",
			URLEncode: func(s string) string { return s },
		},
		MaxParseSize: 10_000_000,
	}
}

func TestParse_TemplateTagExpansionScenario(t *testing.T) {
	html, meta, err := parser.Parse(baseRequest(`Hello {% include_only %}X{% end_include_only %}{= uc "ab" =}`))
	require.NoError(t, err)
	assert.Contains(t, html, "Hello AB")
	assert.NotContains(t, html, "X")
	assert.False(t, meta.TemplateTagError)
}

func TestParse_IncludeOnlyEmitsWhenTranscluded(t *testing.T) {
	req := baseRequest(`A{% include_only %}B{% end_include_only %}C`)
	req.Context.Transcluded = true
	html, _, err := parser.Parse(req)
	require.NoError(t, err)
	assert.Equal(t, "ABC", html)
}

func TestParse_NoWikiEscapesAndSurvivesSanitization(t *testing.T) {
	html, meta, err := parser.Parse(baseRequest(`{% no_wiki %}<script>alert(1)</script>{% end_no_wiki %}`))
	require.NoError(t, err)
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "<script>")
	assert.False(t, meta.TemplateTagError)
}

func TestParse_UnknownTagSetsTemplateTagError(t *testing.T) {
	html, meta, err := parser.Parse(baseRequest(`{% bogus_tag %}`))
	require.NoError(t, err)
	assert.True(t, meta.TemplateTagError)
	assert.Contains(t, html, "text-danger")
}

func TestParse_StrayEndTagIsRecovered(t *testing.T) {
	html, meta, err := parser.Parse(baseRequest(`hello {% end_no_wiki %} world`))
	require.NoError(t, err)
	assert.True(t, meta.TemplateTagError)
	assert.Contains(t, html, "hello")
	assert.Contains(t, html, "world")
}

func TestParse_UnclosedTagIsFlushed(t *testing.T) {
	html, meta, err := parser.Parse(baseRequest(`before {% no_wiki %}stuck content`))
	require.NoError(t, err)
	assert.True(t, meta.TemplateTagError)
	assert.Contains(t, html, "before")
	assert.Contains(t, html, "stuck content")
}

func TestParse_CommentDiscarded(t *testing.T) {
	html, _, err := parser.Parse(baseRequest(`before{# this vanishes #}after`))
	require.NoError(t, err)
	assert.Equal(t, "beforeafter", html)
}

func TestParse_ExpressionInsertionMagicVariable(t *testing.T) {
	html, _, err := parser.Parse(baseRequest(`Year: {= CURRENT_YEAR =}`))
	require.NoError(t, err)
	assert.Equal(t, "Year: 2026", html)
}

func TestParse_SanitizesDisallowedTags(t *testing.T) {
	html, _, err := parser.Parse(baseRequest(`<div>ok</div><iframe src="evil"></iframe>`))
	require.NoError(t, err)
	assert.Contains(t, html, "<div>ok</div>")
	assert.NotContains(t, html, "<iframe")
}

func TestParse_AbortsWhenTooLarge(t *testing.T) {
	req := baseRequest(`{% no_wiki %}` + makeLongString(50) + `{% end_no_wiki %}`)
	req.MaxParseSize = 10
	_, _, err := parser.Parse(req)
	require.Error(t, err)
	var tooLarge parser.ParseTooLargeError
	require.ErrorAs(t, err, &tooLarge)
}

func TestParse_Determinism(t *testing.T) {
	content := `Hello {% include_only %}X{% end_include_only %}{= uc "ab" =} {= CURRENT_YEAR =}`
	html1, _, err := parser.Parse(baseRequest(content))
	require.NoError(t, err)
	html2, _, err := parser.Parse(baseRequest(content))
	require.NoError(t, err)
	assert.Equal(t, html1, html2)
}

func TestParse_InternalLinkAndCategoryExtraction(t *testing.T) {
	req := baseRequest(`See [[Other Page|here]] and [[Category:Foo|sortkey]].`)
	req.Context.PageExists = func(string) bool { return true }
	html, meta, err := parser.Parse(req)
	require.NoError(t, err)
	assert.Contains(t, html, "here")
	assert.NotContains(t, html, "Category:Foo")
	require.Len(t, meta.Links, 1)
	assert.Equal(t, "Other Page", meta.Links[0].TargetTitle)
	require.Len(t, meta.Categories, 1)
	assert.Equal(t, "Foo", meta.Categories[0].CategoryTitle)
	require.NotNil(t, meta.Categories[0].SortKey)
	assert.Equal(t, "sortkey", *meta.Categories[0].SortKey)
}

func TestParse_RedLinkClass(t *testing.T) {
	req := baseRequest(`[[Missing Page]]`)
	req.Context.PageExists = func(string) bool { return false }
	html, _, err := parser.Parse(req)
	require.NoError(t, err)
	assert.Contains(t, html, "wiki-red-link")
}

func TestParse_SelfLinkRendersBold(t *testing.T) {
	req := baseRequest(`[[Some Page]]`)
	html, _, err := parser.Parse(req)
	require.NoError(t, err)
	assert.Contains(t, html, `<strong class="wiki-recursive-link">`)
}

func makeLongString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}

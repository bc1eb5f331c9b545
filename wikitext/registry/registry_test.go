package registry_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ottm-wiki/wiki/common/entities"
	"github.com/ottm-wiki/wiki/namespaces"
	"github.com/ottm-wiki/wiki/wikitext/registry"
)

type stubStats struct{}

func (stubStats) NumberOfPages() int                        { return 42 }
func (stubStats) NumberOfArticles() int                      { return 10 }
func (stubStats) NumberOfFiles() int                          { return 1 }
func (stubStats) NumberOfEdits() int                           { return 100 }
func (stubStats) NumberOfUsers() int                           { return 5 }
func (stubStats) NumberOfActiveUsers(since time.Time) int      { return 3 }
func (stubStats) NumberInGroup(group string) int              { return 2 }
func (stubStats) PagesInNamespace(namespaceID int) int         { return 7 }
func (stubStats) PagesInCategory(title, kind string) int       { return 4 }

func baseContext() registry.Context {
	ns, _ := namespaces.ByID(namespaces.Main)
	return registry.Context{
		Now:        time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC),
		SiteName:   "Test Wiki",
		ServerURL:  "http://localhost",
		WikiPath:   "/wiki/",
		Namespace:  ns,
		Title:      "Some Page",
		Stats:      stubStats{},
		URLEncode:  func(s string) string { return s },
	}
}

func TestMagicVariable_CurrentYear(t *testing.T) {
	out, err := registry.EvalMagicVariable(baseContext(), "CURRENT_YEAR", nil)
	require.NoError(t, err)
	assert.Equal(t, "2026", out)
}

func TestMagicVariable_CurrentMonthPadded(t *testing.T) {
	out, err := registry.EvalMagicVariable(baseContext(), "CURRENT_MONTH_P", nil)
	require.NoError(t, err)
	assert.Equal(t, "03", out)
}

func TestMagicVariable_UnknownArity(t *testing.T) {
	_, err := registry.EvalMagicVariable(baseContext(), "CURRENT_YEAR", []string{"x"})
	var arityErr registry.ArityError
	require.ErrorAs(t, err, &arityErr)
}

func TestMagicVariable_StatisticsAndSite(t *testing.T) {
	out, err := registry.EvalMagicVariable(baseContext(), "NUMBER_OF_PAGES", nil)
	require.NoError(t, err)
	assert.Equal(t, "42", out)

	out, err = registry.EvalMagicVariable(baseContext(), "SITE_NAME", nil)
	require.NoError(t, err)
	assert.Equal(t, "Test Wiki", out)
}

func TestParserFunction_Uc(t *testing.T) {
	out, err := registry.EvalParserFunction(baseContext(), "uc", []string{"ab"})
	require.NoError(t, err)
	assert.Equal(t, "AB", out)
}

func TestParserFunction_If(t *testing.T) {
	out, err := registry.EvalParserFunction(baseContext(), "if", []string{"1", "yes", "no"})
	require.NoError(t, err)
	assert.Equal(t, "yes", out)

	out, err = registry.EvalParserFunction(baseContext(), "if", []string{"", "yes", "no"})
	require.NoError(t, err)
	assert.Equal(t, "no", out)
}

func TestParserFunction_Expr(t *testing.T) {
	out, err := registry.EvalParserFunction(baseContext(), "expr", []string{"2 + 3 * 4"})
	require.NoError(t, err)
	assert.Equal(t, "14", out)
}

func TestParserFunction_PadLeft(t *testing.T) {
	out, err := registry.EvalParserFunction(baseContext(), "pad_left", []string{"7", "3", "0"})
	require.NoError(t, err)
	assert.Equal(t, "007", out)
}

func TestMagicVariable_RevisionFallsBackToNowWithoutRevision(t *testing.T) {
	out, err := registry.EvalMagicVariable(baseContext(), "REVISION_WEEK", nil)
	require.NoError(t, err)
	_, wantWeek := baseContext().Now.ISOWeek()
	assert.Equal(t, strconv.Itoa(wantWeek), out)

	out, err = registry.EvalMagicVariable(baseContext(), "REVISION_DOW", nil)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(int(baseContext().Now.Weekday())), out)
}

func TestMagicVariable_RevisionUsesRevisionDate(t *testing.T) {
	ctx := baseContext()
	ctx.Revision = &entities.Revision{Date: time.Date(2025, 12, 25, 9, 5, 0, 0, time.UTC)}

	cases := map[string]string{
		"REVISION_HOUR":      "9",
		"REVISION_HOUR_P":    "09",
		"REVISION_MINUTE":    "5",
		"REVISION_MINUTE_P":  "05",
	}
	for name, want := range cases {
		out, err := registry.EvalMagicVariable(ctx, name, nil)
		require.NoError(t, err)
		assert.Equal(t, want, out, name)
	}

	_, wantWeek := ctx.Revision.Date.ISOWeek()
	out, err := registry.EvalMagicVariable(ctx, "REVISION_WEEK", nil)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(wantWeek), out)

	out, err = registry.EvalMagicVariable(ctx, "REVISION_DOW", nil)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(int(ctx.Revision.Date.Weekday())), out)
}

func TestMagicVariable_DisplayTitleSetsDirectiveAndRendersEmpty(t *testing.T) {
	ctx := baseContext()
	ctx.Directives = &registry.ContentDirectives{}

	out, err := registry.EvalMagicVariable(ctx, "DISPLAY_TITLE", []string{"Fancy Title"})
	require.NoError(t, err)
	assert.Equal(t, "", out)
	require.NotNil(t, ctx.Directives.DisplayTitle)
	assert.Equal(t, "Fancy Title", *ctx.Directives.DisplayTitle)
}

func TestMagicVariable_DisplayTitleSetTwiceErrors(t *testing.T) {
	ctx := baseContext()
	ctx.Directives = &registry.ContentDirectives{}

	_, err := registry.EvalMagicVariable(ctx, "DISPLAY_TITLE", []string{"First"})
	require.NoError(t, err)

	_, err = registry.EvalMagicVariable(ctx, "DISPLAY_TITLE", []string{"Second"})
	require.Error(t, err)
	assert.Equal(t, "First", *ctx.Directives.DisplayTitle)
}

func TestMagicVariable_DisplayTitleNoReplaceIsSilentlyIgnored(t *testing.T) {
	ctx := baseContext()
	ctx.Directives = &registry.ContentDirectives{}

	_, err := registry.EvalMagicVariable(ctx, "DISPLAY_TITLE", []string{"First"})
	require.NoError(t, err)

	out, err := registry.EvalMagicVariable(ctx, "DISPLAY_TITLE", []string{"Second", "no_replace"})
	require.NoError(t, err)
	assert.Equal(t, "", out)
	assert.Equal(t, "First", *ctx.Directives.DisplayTitle)
}

func TestMagicVariable_DefaultSortKeySetsDirective(t *testing.T) {
	ctx := baseContext()
	ctx.Directives = &registry.ContentDirectives{}

	out, err := registry.EvalMagicVariable(ctx, "DEFAULT_SORT_KEY", []string{"Z"})
	require.NoError(t, err)
	assert.Equal(t, "", out)
	require.NotNil(t, ctx.Directives.DefaultSortKey)
	assert.Equal(t, "Z", *ctx.Directives.DefaultSortKey)
}

type categoryStats struct{ stubStats }

func (categoryStats) PagesInCategory(title, kind string) int {
	switch kind {
	case "pages":
		return 1
	case "subcats":
		return 2
	case "files":
		return 3
	default:
		return 6
	}
}

func TestMagicVariable_PagesInCategoryNarrowsByKind(t *testing.T) {
	ctx := baseContext()
	ctx.Stats = categoryStats{}

	out, err := registry.EvalMagicVariable(ctx, "PAGES_IN_CATEGORY", []string{"Foo", "subcats"})
	require.NoError(t, err)
	assert.Equal(t, "2", out)

	out, err = registry.EvalMagicVariable(ctx, "PAGES_IN_CATEGORY", []string{"Foo", "files"})
	require.NoError(t, err)
	assert.Equal(t, "3", out)

	out, err = registry.EvalMagicVariable(ctx, "PAGES_IN_CATEGORY", []string{"Foo", "pages"})
	require.NoError(t, err)
	assert.Equal(t, "1", out)

	out, err = registry.EvalMagicVariable(ctx, "PAGES_IN_CATEGORY", []string{"Foo"})
	require.NoError(t, err)
	assert.Equal(t, "6", out)
}

func TestParserFunction_IfExists(t *testing.T) {
	ctx := baseContext()
	ctx.PageExists = func(title string) bool { return title == "Known" }
	out, err := registry.EvalParserFunction(ctx, "if_exists", []string{"Known", "yes", "no"})
	require.NoError(t, err)
	assert.Equal(t, "yes", out)

	out, err = registry.EvalParserFunction(ctx, "if_exists", []string{"Unknown", "yes", "no"})
	require.NoError(t, err)
	assert.Equal(t, "no", out)
}

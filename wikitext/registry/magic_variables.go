package registry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MagicVariableFunc substitutes a named magic variable's value. args are
// already HTML-entity-decoded by the caller (the parser).
type MagicVariableFunc func(ctx Context, args []string) (string, error)

type magicVariableEntry struct {
	minArgs, maxArgs int
	fn               MagicVariableFunc
}

var magicVariables = map[string]magicVariableEntry{}

func registerMagicVariable(name string, minArgs, maxArgs int, fn MagicVariableFunc) {
	magicVariables[name] = magicVariableEntry{minArgs, maxArgs, fn}
}

// MagicVariable looks up a registered magic variable by name.
func MagicVariable(name string) (fn MagicVariableFunc, minArgs, maxArgs int, ok bool) {
	e, ok := magicVariables[name]
	if !ok {
		return nil, 0, 0, false
	}
	return e.fn, e.minArgs, e.maxArgs, true
}

// EvalMagicVariable checks arity and dispatches, returning a
// TagArityError-shaped error on mismatch.
func EvalMagicVariable(ctx Context, name string, args []string) (string, error) {
	fn, min, max, ok := MagicVariable(name)
	if !ok {
		return "", fmt.Errorf("unknown magic variable %q", name)
	}
	if len(args) < min || len(args) > max {
		return "", ArityError{Name: name, Got: len(args), Min: min, Max: max}
	}
	return fn(ctx, args)
}

// ArityError reports a magic variable or parser function called with the
// wrong number of arguments. Mirrors spec's TagArityError{tag, got, expected}.
type ArityError struct {
	Name     string
	Got      int
	Min, Max int
}

func (e ArityError) Error() string {
	if e.Min == e.Max {
		return fmt.Sprintf("%q expects %d argument(s), got %d", e.Name, e.Min, e.Got)
	}
	return fmt.Sprintf("%q expects between %d and %d argument(s), got %d", e.Name, e.Min, e.Max, e.Got)
}

var errNoRevision = errors.New("no revision in context")

func pad2(n int) string { return fmt.Sprintf("%02d", n) }

func init() {
	// Date/time (current).
	registerMagicVariable("CURRENT_YEAR", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.Itoa(c.Now.Year()), nil
	})
	registerMagicVariable("CURRENT_MONTH", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.Itoa(int(c.Now.Month())), nil
	})
	registerMagicVariable("CURRENT_MONTH_P", 0, 0, func(c Context, _ []string) (string, error) {
		return pad2(int(c.Now.Month())), nil
	})
	registerMagicVariable("CURRENT_WEEK", 0, 0, func(c Context, _ []string) (string, error) {
		_, week := c.Now.ISOWeek()
		return strconv.Itoa(week), nil
	})
	registerMagicVariable("CURRENT_DAY", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.Itoa(c.Now.Day()), nil
	})
	registerMagicVariable("CURRENT_DAY_P", 0, 0, func(c Context, _ []string) (string, error) {
		return pad2(c.Now.Day()), nil
	})
	registerMagicVariable("CURRENT_DOW", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.Itoa(int(c.Now.Weekday())), nil
	})
	registerMagicVariable("CURRENT_TIME", 0, 0, func(c Context, _ []string) (string, error) {
		return c.Now.Format("15:04"), nil
	})
	registerMagicVariable("CURRENT_HOUR", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.Itoa(c.Now.Hour()), nil
	})
	registerMagicVariable("CURRENT_HOUR_P", 0, 0, func(c Context, _ []string) (string, error) {
		return pad2(c.Now.Hour()), nil
	})
	registerMagicVariable("CURRENT_MINUTE", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.Itoa(c.Now.Minute()), nil
	})
	registerMagicVariable("CURRENT_MINUTE_P", 0, 0, func(c Context, _ []string) (string, error) {
		return pad2(c.Now.Minute()), nil
	})
	registerMagicVariable("CURRENT_TIMESTAMP", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.FormatInt(c.Now.Unix(), 10), nil
	})
	registerMagicVariable("CURRENT_ISO_DATE", 0, 0, func(c Context, _ []string) (string, error) {
		return c.Now.Format("2006-01-02T15:04:05Z07:00"), nil
	})

	// Date/time (revision) — same set, resolved against the current
	// revision, falling back to Now when there is none.
	registerMagicVariable("REVISION_YEAR", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.Itoa(c.revisionDate().Year()), nil
	})
	registerMagicVariable("REVISION_MONTH", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.Itoa(int(c.revisionDate().Month())), nil
	})
	registerMagicVariable("REVISION_MONTH_P", 0, 0, func(c Context, _ []string) (string, error) {
		return pad2(int(c.revisionDate().Month())), nil
	})
	registerMagicVariable("REVISION_DAY", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.Itoa(c.revisionDate().Day()), nil
	})
	registerMagicVariable("REVISION_DAY_P", 0, 0, func(c Context, _ []string) (string, error) {
		return pad2(c.revisionDate().Day()), nil
	})
	registerMagicVariable("REVISION_WEEK", 0, 0, func(c Context, _ []string) (string, error) {
		_, week := c.revisionDate().ISOWeek()
		return strconv.Itoa(week), nil
	})
	registerMagicVariable("REVISION_DOW", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.Itoa(int(c.revisionDate().Weekday())), nil
	})
	registerMagicVariable("REVISION_TIME", 0, 0, func(c Context, _ []string) (string, error) {
		return c.revisionDate().Format("15:04"), nil
	})
	registerMagicVariable("REVISION_HOUR", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.Itoa(c.revisionDate().Hour()), nil
	})
	registerMagicVariable("REVISION_HOUR_P", 0, 0, func(c Context, _ []string) (string, error) {
		return pad2(c.revisionDate().Hour()), nil
	})
	registerMagicVariable("REVISION_MINUTE", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.Itoa(c.revisionDate().Minute()), nil
	})
	registerMagicVariable("REVISION_MINUTE_P", 0, 0, func(c Context, _ []string) (string, error) {
		return pad2(c.revisionDate().Minute()), nil
	})
	registerMagicVariable("REVISION_TIMESTAMP", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.FormatInt(c.revisionDate().Unix(), 10), nil
	})
	registerMagicVariable("REVISION_ISO_DATE", 0, 0, func(c Context, _ []string) (string, error) {
		return c.revisionDate().Format("2006-01-02T15:04:05Z07:00"), nil
	})

	// Site.
	registerMagicVariable("SITE_NAME", 0, 0, func(c Context, _ []string) (string, error) { return c.SiteName, nil })
	registerMagicVariable("SERVER_URL", 0, 0, func(c Context, _ []string) (string, error) { return c.ServerURL, nil })
	registerMagicVariable("SERVER_NAME", 0, 0, func(c Context, _ []string) (string, error) { return c.ServerName, nil })
	registerMagicVariable("WIKI_PATH", 0, 0, func(c Context, _ []string) (string, error) { return c.WikiPath, nil })
	registerMagicVariable("WIKI_API_PATH", 0, 0, func(c Context, _ []string) (string, error) { return c.WikiAPIPath, nil })
	registerMagicVariable("OTTM_API_PATH", 0, 0, func(c Context, _ []string) (string, error) { return c.APIPath, nil })
	registerMagicVariable("STATIC_PATH", 0, 0, func(c Context, _ []string) (string, error) { return c.StaticPath, nil })

	// Page.
	registerMagicVariable("PAGE_ID", 0, 0, func(c Context, _ []string) (string, error) {
		return fmt.Sprintf("%d:%s", c.Namespace.ID, c.Title), nil
	})
	registerMagicVariable("PAGE_LANGUAGE", 0, 0, func(c Context, _ []string) (string, error) {
		return c.Page.ContentLanguage, nil
	})
	registerMagicVariable("PAGE_PROTECTION_LEVEL", 0, 0, func(c Context, _ []string) (string, error) {
		return "", nil // always empty: Context carries no protection record
	})
	registerMagicVariable("PAGE_PROTECTION_EXPIRY", 0, 0, func(c Context, _ []string) (string, error) {
		return "", nil
	})

	// Revision.
	registerMagicVariable("REVISION_ID", 0, 0, func(c Context, _ []string) (string, error) {
		if c.Revision == nil {
			return "0", nil
		}
		return strconv.FormatInt(c.Revision.ID, 10), nil
	})
	registerMagicVariable("REVISION_SIZE", 0, 0, func(c Context, _ []string) (string, error) {
		if c.Revision == nil {
			return "0", nil
		}
		return strconv.Itoa(c.Revision.ByteSize()), nil
	})
	registerMagicVariable("REVISION_AUTHOR", 0, 0, func(c Context, _ []string) (string, error) {
		if c.Revision == nil {
			return "", errNoRevision
		}
		return c.Revision.Author, nil
	})

	// Titles.
	fullTitle := func(c Context) string { return c.Namespace.FullTitle(c.Title) }
	registerMagicVariable("FULL_PAGE_TITLE", 0, 0, func(c Context, _ []string) (string, error) { return fullTitle(c), nil })
	registerMagicVariable("FULL_PAGE_TITLE_U", 0, 0, func(c Context, _ []string) (string, error) { return c.URLEncode(fullTitle(c)), nil })
	registerMagicVariable("PAGE_TITLE", 0, 0, func(c Context, _ []string) (string, error) { return c.Title, nil })
	registerMagicVariable("PAGE_TITLE_U", 0, 0, func(c Context, _ []string) (string, error) { return c.URLEncode(c.Title), nil })
	baseName := func(title string) string {
		if idx := strings.Index(title, "/"); idx >= 0 {
			return title[:idx]
		}
		return title
	}
	registerMagicVariable("PAGE_BASE_NAME", 0, 0, func(c Context, _ []string) (string, error) { return baseName(c.Title), nil })
	registerMagicVariable("PAGE_BASE_NAME_U", 0, 0, func(c Context, _ []string) (string, error) { return c.URLEncode(baseName(c.Title)), nil })
	parentTitle := func(title string) string {
		if idx := strings.LastIndex(title, "/"); idx >= 0 {
			return title[:idx]
		}
		return ""
	}
	registerMagicVariable("PAGE_PARENT_TITLE", 0, 0, func(c Context, _ []string) (string, error) { return parentTitle(c.Title), nil })
	registerMagicVariable("PAGE_PARENT_TITLE_U", 0, 0, func(c Context, _ []string) (string, error) { return c.URLEncode(parentTitle(c.Title)), nil })
	pageName := func(title string) string {
		if idx := strings.LastIndex(title, "/"); idx >= 0 {
			return title[idx+1:]
		}
		return title
	}
	registerMagicVariable("PAGE_NAME", 0, 0, func(c Context, _ []string) (string, error) { return pageName(c.Title), nil })
	registerMagicVariable("PAGE_NAME_U", 0, 0, func(c Context, _ []string) (string, error) { return c.URLEncode(pageName(c.Title)), nil })
	registerMagicVariable("PAGE_PATH", 0, 0, func(c Context, _ []string) (string, error) {
		return c.WikiPath + c.URLEncode(fullTitle(c)), nil
	})
	registerMagicVariable("PAGE_URL", 0, 0, func(c Context, _ []string) (string, error) {
		return c.ServerURL + c.WikiPath + c.URLEncode(fullTitle(c)), nil
	})

	// Namespace.
	registerMagicVariable("NAMESPACE_NAME", 0, 0, func(c Context, _ []string) (string, error) { return c.Namespace.Name, nil })
	registerMagicVariable("NAMESPACE_ID", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.Itoa(c.Namespace.ID), nil
	})
	registerMagicVariable("NAMESPACE_NAME_U", 0, 0, func(c Context, _ []string) (string, error) { return c.URLEncode(c.Namespace.Name), nil })

	// Statistics.
	registerMagicVariable("NUMBER_OF_PAGES", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.Itoa(c.Stats.NumberOfPages()), nil
	})
	registerMagicVariable("NUMBER_OF_ARTICLES", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.Itoa(c.Stats.NumberOfArticles()), nil
	})
	registerMagicVariable("NUMBER_OF_FILES", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.Itoa(c.Stats.NumberOfFiles()), nil
	})
	registerMagicVariable("NUMBER_OF_EDITS", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.Itoa(c.Stats.NumberOfEdits()), nil
	})
	registerMagicVariable("NUMBER_OF_USERS", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.Itoa(c.Stats.NumberOfUsers()), nil
	})
	registerMagicVariable("NUMBER_OF_ACTIVE_USERS", 0, 0, func(c Context, _ []string) (string, error) {
		return strconv.Itoa(c.Stats.NumberOfActiveUsers(c.Now.AddDate(0, 0, -30))), nil
	})
	registerMagicVariable("PAGES_IN_CATEGORY", 1, 2, func(c Context, args []string) (string, error) {
		kind := "all"
		if len(args) == 2 {
			kind = args[1]
		}
		return strconv.Itoa(c.Stats.PagesInCategory(args[0], kind)), nil
	})
	registerMagicVariable("NUMBER_IN_GROUP", 1, 1, func(c Context, args []string) (string, error) {
		return strconv.Itoa(c.Stats.NumberInGroup(args[0])), nil
	})
	registerMagicVariable("PAGES_IN_NS", 1, 1, func(c Context, args []string) (string, error) {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return "", err
		}
		return strconv.Itoa(c.Stats.PagesInNamespace(id)), nil
	})

	// Content directives. DISPLAY_TITLE/DEFAULT_SORT_KEY render nothing;
	// they instead set state on c.Directives, which the parser allocates
	// once per parse and shares by pointer across every Context copy the
	// scan makes. Set-once unless no_replace is passed, in which case a
	// later call is silently ignored instead of erroring.
	registerMagicVariable("DISPLAY_TITLE", 1, 2, func(c Context, args []string) (string, error) {
		if c.Directives == nil {
			return "", nil
		}
		noReplace := len(args) == 2 && args[1] == "no_replace"
		if c.Directives.DisplayTitle != nil {
			if noReplace {
				return "", nil
			}
			return "", fmt.Errorf("display title already set")
		}
		c.Directives.DisplayTitle = &args[0]
		return "", nil
	})
	registerMagicVariable("DEFAULT_SORT_KEY", 1, 2, func(c Context, args []string) (string, error) {
		if c.Directives == nil {
			return "", nil
		}
		noReplace := len(args) == 2 && args[1] == "no_replace"
		if c.Directives.DefaultSortKey != nil {
			if noReplace {
				return "", nil
			}
			return "", fmt.Errorf("default sort key already set")
		}
		c.Directives.DefaultSortKey = &args[0]
		return "", nil
	})
}

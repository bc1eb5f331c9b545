package parser

import (
	"time"

	"github.com/ottm-wiki/wiki/common/entities"
)

// ParsingMetadata is produced alongside the rendered HTML for every
// parse. It is the record C3 persists into a page's ParseCache and
// uses to refresh PageLink/PageCategory rows.
type ParsingMetadata struct {
	Links            []entities.PageLink
	Categories       []entities.PageCategory
	ParseDurationMS  int64
	ParseDate        time.Time
	SizeBefore       int
	SizeAfter        int
	TemplateTagError bool
	DisplayTitle     *string
	DefaultSortKey   *string
}

// Package parser implements C5: the wikicode tag-stack scanner, HTML
// sanitizer, and link/category extractor. Given a (page, revision,
// content, now) context and a read-only transclusion
// callback, Parse deterministically produces HTML and a
// ParsingMetadata record. It never panics on malformed input; every
// syntax error becomes an inline marker and sets TemplateTagError,
// except ParseTooLarge which aborts the parse outright.
package parser

import "fmt"

// ParseTooLargeError is returned when the expanded text exceeds the
// configured hard ceiling (common/config Wiki.MaxParseSize). Unlike
// every other parse failure, this one aborts instead of emitting an
// inline marker.
type ParseTooLargeError struct {
	Limit int
}

func (e ParseTooLargeError) Error() string {
	return fmt.Sprintf("wikicode expands past %d characters", e.Limit)
}

// TagArityError records a template tag invoked with the wrong number of
// arguments.
type TagArityError struct {
	Tag      string
	Got      int
	Min, Max int
}

func (e TagArityError) Error() string {
	return fmt.Sprintf("tag %q takes %d-%d arguments, got %d", e.Tag, e.Min, e.Max, e.Got)
}

// UndefinedTagError records a reference to a template tag, magic
// variable, or parser function that isn't registered.
type UndefinedTagError struct {
	Name string
}

func (e UndefinedTagError) Error() string {
	return fmt.Sprintf("undefined tag or function %q", e.Name)
}

// UnclosedTagError records a paired template tag whose matching
// end_<name> was never found before the input ran out.
type UnclosedTagError struct {
	Tag string
}

func (e UnclosedTagError) Error() string {
	return fmt.Sprintf("unclosed tag %q", e.Tag)
}

// StrayEndTagError records an end_<name> with no matching open tag on
// the stack.
type StrayEndTagError struct {
	Tag string
}

func (e StrayEndTagError) Error() string {
	return fmt.Sprintf("stray end tag %q", e.Tag)
}

// UnterminatedError records a {# #}, {= =}, or {% %} construct that
// never reached its closing delimiter.
type UnterminatedError struct {
	Delimiter string
}

func (e UnterminatedError) Error() string {
	return fmt.Sprintf("unterminated %s", e.Delimiter)
}

// TemplateTagError is the generic inline-marker error kind: any failure
// during expansion that the parser recovers from by emitting a
// "<span class=\"text-danger\">...</span>" marker and setting
// ParsingMetadata.TemplateTagError, rather than aborting the parse.
type TemplateTagError struct {
	Message string
}

func (e TemplateTagError) Error() string { return e.Message }

package parser

import (
	"fmt"
	"html"
	"strings"

	"github.com/ottm-wiki/wiki/wikitext/registry"
)

// frame is one level of the tag parse stack: the buffer accumulating
// output for this nesting level, the template tag that opened it (nil
// for the root frame), and whether its contents are re-scanned for
// delimiters (true) or consumed verbatim until the matching end tag.
type frame struct {
	buf          strings.Builder
	tag          *registry.TemplateTag
	parseSection bool
}

// scanResult carries the tag-stack scanner's output back to Parse.
type scanResult struct {
	output           string
	templateTagError bool
}

// scanTags runs the tag-stack scanner described in §4.5: it resolves
// {# #} comments, {= =} expression insertions, and {% %} template tags
// in a single left-to-right pass, honoring string-literal escaping and
// nesting. It terminates on every input: malformed constructs become
// inline error markers (and set templateTagError) rather than aborting,
// except when the expanded size passes maxSize, which aborts the whole
// parse with ParseTooLargeError.
func scanTags(content string, ctx registry.Context, maxSize int) (scanResult, error) {
	r := []rune(content)
	stack := []*frame{{parseSection: true}}
	total := 0
	errored := false

	top := func() *frame { return stack[len(stack)-1] }

	write := func(f *frame, s string) error {
		total += len(s)
		if maxSize > 0 && total > maxSize {
			return ParseTooLargeError{Limit: maxSize}
		}
		f.buf.WriteString(s)
		return nil
	}

	marker := func(msg string) string {
		errored = true
		return fmt.Sprintf(`<span class="text-danger">%s</span>`, html.EscapeString(msg))
	}

	i := 0
	for i < len(r) {
		f := top()

		if !f.parseSection {
			if matchesAt(r, i, []rune("{%")) {
				end := findClosing(r, i+2, "%}")
				if end < 0 {
					if err := write(f, marker(UnterminatedError{"{% %}"}.Error())); err != nil {
						return scanResult{}, err
					}
					i = len(r)
					break
				}
				header := tokenize(string(r[i+2 : end]))
				name := ""
				if len(header) > 0 {
					name = header[0]
				}
				if f.tag != nil && name == "end_"+f.tag.Name {
					closed := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					out, err := closed.tag.Transform(ctx, closed.buf.String())
					if err != nil {
						out = marker(err.Error())
					}
					if werr := write(top(), out); werr != nil {
						return scanResult{}, werr
					}
					i = end + 2
					continue
				}
				// Mismatched end tag (or unrelated {% %} text) while
				// inside a non-parsed section: passed through literally.
				if err := write(f, string(r[i:end+2])); err != nil {
					return scanResult{}, err
				}
				i = end + 2
				continue
			}
			if err := write(f, string(r[i])); err != nil {
				return scanResult{}, err
			}
			i++
			continue
		}

		switch {
		case matchesAt(r, i, []rune("{#")):
			end := findClosingPlain(r, i+2, "#}")
			if end < 0 {
				if err := write(f, marker(UnterminatedError{"{# #}"}.Error())); err != nil {
					return scanResult{}, err
				}
				i = len(r)
				break
			}
			i = end + 2

		case matchesAt(r, i, []rune("{=")):
			end := findClosing(r, i+2, "=}")
			if end < 0 {
				if err := write(f, marker(UnterminatedError{"{= =}"}.Error())); err != nil {
					return scanResult{}, err
				}
				i = len(r)
				break
			}
			tokens := tokenize(string(r[i+2 : end]))
			out := evalExpression(ctx, tokens, marker)
			if err := write(f, out); err != nil {
				return scanResult{}, err
			}
			i = end + 2

		case matchesAt(r, i, []rune("{%")):
			end := findClosing(r, i+2, "%}")
			if end < 0 {
				if err := write(f, marker(UnterminatedError{"{% %}"}.Error())); err != nil {
					return scanResult{}, err
				}
				i = len(r)
				break
			}
			header := tokenize(string(r[i+2 : end]))
			if len(header) == 0 {
				if err := write(f, marker("empty template tag")); err != nil {
					return scanResult{}, err
				}
				i = end + 2
				break
			}
			name, args := header[0], header[1:]

			if strings.HasPrefix(name, "end_") {
				innerName := strings.TrimPrefix(name, "end_")
				if len(stack) > 1 && f.tag != nil && f.tag.Name == innerName {
					closed := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					out, terr := closed.tag.Transform(ctx, closed.buf.String())
					if terr != nil {
						out = marker(terr.Error())
					}
					if werr := write(top(), out); werr != nil {
						return scanResult{}, werr
					}
				} else {
					if err := write(f, marker(StrayEndTagError{Tag: innerName}.Error())); err != nil {
						return scanResult{}, err
					}
				}
				i = end + 2
				break
			}

			tag, ok := registry.TemplateTagByName(name)
			if !ok {
				if err := write(f, marker(UndefinedTagError{Name: name}.Error())); err != nil {
					return scanResult{}, err
				}
				i = end + 2
				break
			}
			if len(args) < tag.MinArgs || len(args) > tag.MaxArgs {
				if err := write(f, marker(TagArityError{Tag: name, Got: len(args), Min: tag.MinArgs, Max: tag.MaxArgs}.Error())); err != nil {
					return scanResult{}, err
				}
				i = end + 2
				break
			}

			if tag.Standalone {
				out, _, eerr := tag.Evaluate(ctx, args)
				if eerr != nil {
					out = marker(eerr.Error())
				}
				if werr := write(f, out); werr != nil {
					return scanResult{}, werr
				}
				i = end + 2
				break
			}

			out, parseSection, eerr := tag.Evaluate(ctx, args)
			tagCopy := tag
			if eerr != nil {
				if err := write(f, marker(eerr.Error())); err != nil {
					return scanResult{}, err
				}
				parseSection = true
			} else if out != "" {
				if err := write(f, out); err != nil {
					return scanResult{}, err
				}
			}
			stack = append(stack, &frame{tag: &tagCopy, parseSection: parseSection})
			i = end + 2

		default:
			if err := write(f, string(r[i])); err != nil {
				return scanResult{}, err
			}
			i++
		}
	}

	// Any frame left open past the root is an unclosed tag: flush its
	// buffer up into its parent so no content is silently dropped.
	for len(stack) > 1 {
		unclosed := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		msg := marker(UnclosedTagError{Tag: unclosed.tag.Name}.Error())
		parent := top()
		parent.buf.WriteString(unclosed.buf.String())
		parent.buf.WriteString(msg)
	}

	return scanResult{output: stack[0].buf.String(), templateTagError: errored}, nil
}

// evalExpression dispatches a {= =} body: the first token is looked up
// as a magic variable, then as a parser function, each arity-checked by
// the registry itself. The remaining tokens are HTML-entity-decoded
// before dispatch.
func evalExpression(ctx registry.Context, tokens []string, marker func(string) string) string {
	if len(tokens) == 0 {
		return marker("empty expression")
	}
	name := tokens[0]
	args := make([]string, len(tokens)-1)
	for i, a := range tokens[1:] {
		args[i] = html.UnescapeString(a)
	}
	if _, _, _, ok := registry.MagicVariable(name); ok {
		out, err := registry.EvalMagicVariable(ctx, name, args)
		if err != nil {
			return marker(err.Error())
		}
		return out
	}
	if _, _, _, ok := registry.ParserFunction(name); ok {
		out, err := registry.EvalParserFunction(ctx, name, args)
		if err != nil {
			return marker(err.Error())
		}
		return out
	}
	return marker(UndefinedTagError{Name: name}.Error())
}

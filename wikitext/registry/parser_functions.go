package registry

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/ottm-wiki/wiki/namespaces"
)

// ParserFunctionFunc evaluates a named parser function against
// HTML-entity-decoded arguments, returning its string substitution.
type ParserFunctionFunc func(ctx Context, args []string) (string, error)

type parserFunctionEntry struct {
	minArgs, maxArgs int
	fn               ParserFunctionFunc
}

var parserFunctions = map[string]parserFunctionEntry{}

func registerParserFunction(name string, minArgs, maxArgs int, fn ParserFunctionFunc) {
	parserFunctions[name] = parserFunctionEntry{minArgs, maxArgs, fn}
}

// ParserFunction looks up a registered parser function by name.
func ParserFunction(name string) (fn ParserFunctionFunc, minArgs, maxArgs int, ok bool) {
	e, ok := parserFunctions[name]
	if !ok {
		return nil, 0, 0, false
	}
	return e.fn, e.minArgs, e.maxArgs, true
}

// EvalParserFunction checks arity and dispatches.
func EvalParserFunction(ctx Context, name string, args []string) (string, error) {
	fn, min, max, ok := ParserFunction(name)
	if !ok {
		return "", fmt.Errorf("unknown parser function %q", name)
	}
	if len(args) < min || len(args) > max {
		return "", ArityError{Name: name, Got: len(args), Min: min, Max: max}
	}
	return fn(ctx, args)
}

func init() {
	registerParserFunction("url_encode", 1, 2, func(c Context, args []string) (string, error) {
		mode := "plain"
		if len(args) == 2 {
			mode = args[1]
		}
		switch mode {
		case "query":
			return url.QueryEscape(args[0]), nil
		case "wiki_path":
			return c.URLEncode(args[0]), nil
		default:
			return strings.ReplaceAll(url.QueryEscape(args[0]), "+", "%20"), nil
		}
	})
	registerParserFunction("url_decode", 1, 1, func(_ Context, args []string) (string, error) {
		return url.QueryUnescape(args[0])
	})
	registerParserFunction("ns", 1, 1, func(_ Context, args []string) (string, error) {
		if ns, ok := namespaces.ByName(args[0]); ok {
			return ns.Name, nil
		}
		if id, err := strconv.Atoi(args[0]); err == nil {
			if ns, ok := namespaces.ByID(id); ok {
				return ns.Name, nil
			}
		}
		return "", fmt.Errorf("unknown namespace %q", args[0])
	})
	registerParserFunction("ns_id", 1, 1, func(_ Context, args []string) (string, error) {
		if ns, ok := namespaces.ByName(args[0]); ok {
			return strconv.Itoa(ns.ID), nil
		}
		return "", fmt.Errorf("unknown namespace %q", args[0])
	})
	registerParserFunction("ns_url", 1, 1, func(c Context, args []string) (string, error) {
		ns, ok := namespaces.ByName(args[0])
		if !ok {
			return "", fmt.Errorf("unknown namespace %q", args[0])
		}
		return c.WikiPath + c.URLEncode(ns.Name), nil
	})
	registerParserFunction("format_number", 1, 2, func(c Context, args []string) (string, error) {
		n, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return "", err
		}
		lang := ""
		if len(args) == 2 {
			lang = args[1]
		}
		if c.FormatNumber == nil {
			return args[0], nil
		}
		return c.FormatNumber(n, lang), nil
	})
	registerParserFunction("format_date", 1, 3, func(c Context, args []string) (string, error) {
		lang, layout := "", ""
		if len(args) >= 2 {
			lang = args[1]
		}
		if len(args) == 3 {
			layout = args[2]
		}
		if c.FormatDate == nil {
			return args[0], nil
		}
		return c.FormatDate(args[0], lang, layout)
	})
	registerParserFunction("lc", 1, 1, func(_ Context, args []string) (string, error) { return strings.ToLower(args[0]), nil })
	registerParserFunction("uc", 1, 1, func(_ Context, args []string) (string, error) { return strings.ToUpper(args[0]), nil })
	registerParserFunction("lc_first", 1, 1, func(_ Context, args []string) (string, error) { return lowerFirst(args[0]), nil })
	registerParserFunction("uc_first", 1, 1, func(_ Context, args []string) (string, error) { return upperFirst(args[0]), nil })
	registerParserFunction("pad_left", 2, 3, func(_ Context, args []string) (string, error) { return pad(args, true) })
	registerParserFunction("pad_right", 2, 3, func(_ Context, args []string) (string, error) { return pad(args, false) })
	registerParserFunction("replace", 3, 3, func(_ Context, args []string) (string, error) {
		return strings.ReplaceAll(args[0], args[1], args[2]), nil
	})
	registerParserFunction("language", 1, 1, func(_ Context, args []string) (string, error) {
		return args[0], nil
	})
	registerParserFunction("expr", 1, 1, func(_ Context, args []string) (string, error) {
		return evalMath(args[0])
	})
	registerParserFunction("if", 2, 3, func(_ Context, args []string) (string, error) {
		if args[0] != "" {
			return args[1], nil
		}
		if len(args) == 3 {
			return args[2], nil
		}
		return "", nil
	})
	registerParserFunction("if_eq", 3, 4, func(_ Context, args []string) (string, error) {
		if args[0] == args[1] {
			return args[2], nil
		}
		if len(args) == 4 {
			return args[3], nil
		}
		return "", nil
	})
	registerParserFunction("if_expr", 2, 3, func(_ Context, args []string) (string, error) {
		result, err := evalMath(args[0])
		if err != nil {
			return "", err
		}
		if result != "" && result != "0" && result != "false" {
			return args[1], nil
		}
		if len(args) == 3 {
			return args[2], nil
		}
		return "", nil
	})
	registerParserFunction("if_exists", 2, 3, func(c Context, args []string) (string, error) {
		exists := c.PageExists != nil && c.PageExists(args[0])
		if exists {
			return args[1], nil
		}
		if len(args) == 3 {
			return args[2], nil
		}
		return "", nil
	})
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func pad(args []string, left bool) (string, error) {
	s := args[0]
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return "", err
	}
	fill := " "
	if len(args) == 3 && args[2] != "" {
		fill = args[2][:1]
	}
	for len([]rune(s)) < n {
		if left {
			s = fill + s
		} else {
			s = s + fill
		}
	}
	return s, nil
}

// evalMath evaluates a small arithmetic expression using expr-lang/expr,
// grounding the spec's unspecified "expr grammar" open question in a
// real expression evaluator rather than a hand-rolled one.
func evalMath(src string) (string, error) {
	program, err := expr.Compile(src, expr.AsFloat64())
	if err != nil {
		return "", err
	}
	out, err := expr.Run(program, nil)
	if err != nil {
		return "", err
	}
	f, ok := out.(float64)
	if !ok {
		return fmt.Sprintf("%v", out), nil
	}
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10), nil
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}

package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formattable lets a host value render itself with a format specifier and
// culture, analogous to a format-string rendering capability on the value.
type Formattable interface {
	FormatValue(spec string, culture language.Tag) (string, error)
}

// Error reports a specifier that could not be applied to a value. The
// caller decides whether to degrade to default stringification or to
// propagate.
type Error struct {
	Spec string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("format specifier %q: %v", e.Spec, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ParseCulture resolves a BCP-47 culture name. Empty means English, the
// engine default.
func ParseCulture(name string) (language.Tag, error) {
	if strings.TrimSpace(name) == "" {
		return language.English, nil
	}
	tag, err := language.Parse(name)
	if err != nil {
		return language.English, fmt.Errorf("invalid culture %q: %w", name, err)
	}
	return tag, nil
}

// Apply renders value with the optional format specifier and aligns the
// result. A nil value renders as the empty string with alignment still
// applied. When the specifier fails, Apply returns the aligned default
// rendering together with a *Error so the caller can pick its posture.
func Apply(value any, alignment int, hasAlignment bool, spec string, culture language.Tag) (string, error) {
	var rendered string
	var ferr error

	switch {
	case value == nil:
		rendered = ""
	case spec == "":
		rendered = Default(value)
	default:
		rendered, ferr = render(value, spec, culture)
		if ferr != nil {
			rendered = Default(value)
		}
	}

	if hasAlignment {
		rendered = align(rendered, alignment)
	}
	return rendered, ferr
}

// align pads to the absolute width: positive alignment right-aligns
// (pad left), negative left-aligns (pad right). Width is measured in runes.
func align(s string, alignment int) string {
	width := alignment
	if width < 0 {
		width = -width
	}
	pad := width - utf8.RuneCountInString(s)
	if pad <= 0 {
		return s
	}
	if alignment > 0 {
		return strings.Repeat(" ", pad) + s
	}
	return s + strings.Repeat(" ", pad)
}

// render applies a non-empty specifier.
func render(value any, spec string, culture language.Tag) (string, error) {
	if f, ok := value.(Formattable); ok {
		out, err := f.FormatValue(spec, culture)
		if err != nil {
			return "", &Error{Spec: spec, Err: err}
		}
		return out, nil
	}

	switch t := value.(type) {
	case time.Time:
		return t.Format(timeLayout(spec)), nil
	case *time.Time:
		if t == nil {
			return "", nil
		}
		return t.Format(timeLayout(spec)), nil
	}

	if isNumeric(value) {
		out, err := renderNumber(value, spec, culture)
		if err != nil {
			return "", &Error{Spec: spec, Err: err}
		}
		return out, nil
	}

	// Verb-style specifiers pass straight through to the culture printer.
	if strings.HasPrefix(spec, "%") {
		out := message.NewPrinter(culture).Sprintf(spec, value)
		if strings.Contains(out, "%!") {
			return "", &Error{Spec: spec, Err: fmt.Errorf("verb does not apply to %T", value)}
		}
		return out, nil
	}

	return "", &Error{Spec: spec, Err: fmt.Errorf("no rendering for %T", value)}
}

// renderNumber handles the standard numeric specifiers: a letter plus an
// optional precision, e.g. F2, N0, P1, E, D4, X8.
func renderNumber(value any, spec string, culture language.Tag) (string, error) {
	letter := spec[0]
	precision := -1
	if len(spec) > 1 {
		n, err := strconv.Atoi(spec[1:])
		if err != nil || n < 0 {
			return "", fmt.Errorf("invalid precision in %q", spec)
		}
		precision = n
	}

	p := message.NewPrinter(culture)
	f, _ := toFloat(value)

	switch letter {
	case 'F', 'f':
		if precision < 0 {
			precision = 2
		}
		return p.Sprint(number.Decimal(f, number.Scale(precision), number.NoSeparator())), nil

	case 'N', 'n':
		if precision < 0 {
			precision = 2
		}
		return p.Sprint(number.Decimal(f, number.Scale(precision))), nil

	case 'P', 'p':
		if precision < 0 {
			precision = 2
		}
		return p.Sprint(number.Percent(f, number.Scale(precision))), nil

	case 'E', 'e':
		if precision < 0 {
			precision = 6
		}
		out := strconv.FormatFloat(f, byte(letter), precision, 64)
		return out, nil

	case 'D', 'd':
		i, ok := toInt(value)
		if !ok {
			return "", fmt.Errorf("D applies to integers, got %T", value)
		}
		if precision < 0 {
			precision = 0
		}
		return fmt.Sprintf("%0*d", precision, i), nil

	case 'X':
		i, ok := toInt(value)
		if !ok {
			return "", fmt.Errorf("X applies to integers, got %T", value)
		}
		return fmt.Sprintf("%0*X", max(precision, 0), i), nil

	case 'x':
		i, ok := toInt(value)
		if !ok {
			return "", fmt.Errorf("x applies to integers, got %T", value)
		}
		return fmt.Sprintf("%0*x", max(precision, 0), i), nil

	case 'G', 'g':
		return strconv.FormatFloat(f, 'g', -1, 64), nil

	default:
		if strings.HasPrefix(spec, "%") {
			out := p.Sprintf(spec, value)
			if strings.Contains(out, "%!") {
				return "", fmt.Errorf("verb does not apply to %T", value)
			}
			return out, nil
		}
		return "", fmt.Errorf("unknown numeric specifier %q", spec)
	}
}

// Default renders a value without a specifier.
func Default(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	default:
		if i, ok := toInt(value); ok {
			return strconv.FormatInt(i, 10)
		}
		return fmt.Sprintf("%v", value)
	}
}

func isNumeric(v any) bool {
	_, ok := toFloat(v)
	return ok
}

func toFloat(v any) (float64, bool) {
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	switch f := v.(type) {
	case float32:
		return float64(f), true
	case float64:
		return f, true
	}
	return 0, false
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	}
	return 0, false
}

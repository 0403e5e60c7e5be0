package suggest

import (
	"cmp"
	"encoding/json"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"brd-tui/internal/brd"
)

// thinkBlock matches the reasoning preamble some models emit before the
// answer.
var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// parseFields maps free model output onto the fields of kind k. Every
// schema field is present in the result. When no JSON object can be
// recovered the trimmed text becomes the kind's primary long-text field.
func parseFields(k brd.Kind, text string) map[string]string {
	schema := brd.Schema(k)
	out := make(map[string]string, len(schema))
	for _, f := range schema {
		out[f.Name] = ""
	}

	text = strings.TrimSpace(thinkBlock.ReplaceAllString(text, ""))
	obj, ok := lastObject(text)
	if !ok {
		if primary := brd.PrimaryText(k); primary != "" {
			out[primary] = text
		}
		return out
	}

	byKey := make(map[string]brd.Field, len(schema)*2)
	for _, f := range schema {
		byKey[normalizeKey(f.Name)] = f
		byKey[normalizeKey(f.Label)] = f
	}
	for key, raw := range obj {
		f, known := byKey[normalizeKey(key)]
		if !known {
			continue
		}
		out[f.Name] = coerce(f, raw)
	}
	return out
}

// lastObject returns the last JSON object in text. A trailing array of
// objects yields its first element.
func lastObject(text string) (map[string]any, bool) {
	candidate := extractLastJSON(text)
	if candidate == "" {
		return nil, false
	}
	if strings.HasPrefix(candidate, "[") {
		var arr []map[string]any
		if json.Unmarshal([]byte(candidate), &arr) != nil || len(arr) == 0 {
			return nil, false
		}
		return arr[0], true
	}
	var obj map[string]any
	if json.Unmarshal([]byte(candidate), &obj) != nil {
		return nil, false
	}
	return obj, true
}

func normalizeKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// coerce renders raw as the string form field f accepts, or "" when the
// value cannot belong to the field.
func coerce(f brd.Field, raw any) string {
	s := stringify(raw)
	if s == "" {
		return ""
	}
	switch f.Type {
	case brd.FieldEnum:
		for _, opt := range f.Options {
			if strings.EqualFold(strings.TrimSpace(s), opt) {
				return opt
			}
		}
		return ""
	case brd.FieldFloat:
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case brd.FieldBool:
		v, err := brd.ParseBool(s)
		if err != nil {
			return ""
		}
		return strconv.FormatBool(v)
	}
	return s
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			if s := stringify(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

// extractLastJSON returns the last balanced `{...}` or `[...]` block in
// text that is valid JSON, or "" when there is none. One backward pass pairs
// brackets; quotes only open strings inside a pending block, so prose
// around the JSON cannot unbalance it.
func extractLastJSON(text string) string {
	type span struct{ start, end int }
	var (
		pending  []int
		found    []span
		inString bool
	)
	for i := len(text) - 1; i >= 0; i-- {
		ch := text[i]
		if len(pending) > 0 && ch == '"' && !isEscaped(text, i) {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case '}', ']':
			pending = append(pending, i)
		case '{', '[':
			n := len(pending)
			if n == 0 || text[pending[n-1]] != closerOf(ch) {
				continue
			}
			found = append(found, span{i, pending[n-1]})
			pending = pending[:n-1]
		}
	}

	slices.SortFunc(found, func(a, b span) int { return cmp.Compare(b.end, a.end) })
	for _, sp := range found {
		if candidate := text[sp.start : sp.end+1]; json.Valid([]byte(candidate)) {
			return candidate
		}
	}
	return ""
}

func closerOf(opener byte) byte {
	if opener == '[' {
		return ']'
	}
	return '}'
}

// isEscaped reports whether text[pos] follows an odd run of backslashes.
func isEscaped(text string, pos int) bool {
	n := 0
	for i := pos - 1; i >= 0 && text[i] == '\\'; i-- {
		n++
	}
	return n%2 != 0
}

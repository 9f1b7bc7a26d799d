package dsl

import "strings"

// line is one statement's worth of source: the keyword, an optional scope
// name, and the remaining key=value fields, with comments and trailing
// whitespace already stripped.
type line struct {
	number int
	raw    string
	fields []string
}

// lex splits source text into statement lines, dropping blank lines and
// comments (# or // to end of line), the way the teacher's command reader
// tokenizes with strings.Fields.
func lex(src string) []line {
	var out []line
	for i, raw := range strings.Split(src, "\n") {
		text := stripComment(raw)
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		out = append(out, line{
			number: i + 1,
			raw:    text,
			fields: strings.Fields(text),
		})
	}
	return out
}

func stripComment(s string) string {
	if i := strings.Index(s, "#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "//"); i >= 0 {
		s = s[:i]
	}
	return s
}

// splitKV parses a "key=value" field. Fields without "=" return ok=false.
func splitKV(field string) (key, value string, ok bool) {
	i := strings.IndexByte(field, '=')
	if i < 0 {
		return "", "", false
	}
	return field[:i], field[i+1:], true
}

// kvMap turns the trailing key=value fields of a statement into a map,
// lower-casing keys for case-insensitive lookup.
func kvMap(fields []string) map[string]string {
	m := make(map[string]string, len(fields))
	for _, f := range fields {
		k, v, ok := splitKV(f)
		if !ok {
			continue
		}
		m[strings.ToLower(k)] = v
	}
	return m
}

// scopeAndRest splits a statement's second field, "<scope>:" or
// "<scope>.<target>:", from the remaining key=value fields. fields[0] is the
// keyword; fields[1] carries the scope/target and trailing colon.
func scopeAndRest(fields []string) (scope string, rest []string, ok bool) {
	if len(fields) < 2 {
		return "", nil, false
	}
	tok := strings.TrimSuffix(fields[1], ":")
	if tok == fields[1] {
		return "", nil, false // no trailing colon: malformed header
	}
	return tok, fields[2:], true
}

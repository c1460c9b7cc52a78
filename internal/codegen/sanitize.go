package codegen

import (
	"strconv"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// reserved words that cannot name a procedure, parameter, or variable.
var reserved = map[string]bool{
	"await": true, "break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "default": true, "delete": true, "do": true,
	"else": true, "export": true, "false": true, "finally": true, "for": true,
	"function": true, "if": true, "import": true, "in": true, "let": true,
	"new": true, "null": true, "return": true, "switch": true, "this": true,
	"throw": true, "true": true, "try": true, "typeof": true, "undefined": true,
	"var": true, "void": true, "while": true, "yield": true,
}

// Identifier turns a display name into an identifier: diacritics are
// folded, anything outside [A-Za-z0-9_$] becomes "_", and a leading digit
// gets a "_" prefix.
func Identifier(name string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		folded = name
	}

	out := make([]byte, 0, len(folded))
	for _, r := range folded {
		switch {
		case r == '_' || r == '$',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9':
			out = append(out, byte(r))
		default:
			out = append(out, '_')
		}
	}

	switch {
	case len(out) == 0:
		return "_"
	case out[0] >= '0' && out[0] <= '9':
		return "_" + string(out)
	case reserved[string(out)]:
		return string(out) + "_"
	}
	return string(out)
}

// nameSet hands out identifiers unique within one scope.
type nameSet map[string]bool

// unique returns base, or base_2, base_3, ... if base is taken.
func (s nameSet) unique(base string) string {
	if !s[base] {
		s[base] = true
		return base
	}
	for i := 2; ; i++ {
		cand := base + "_" + strconv.Itoa(i)
		if !s[cand] {
			s[cand] = true
			return cand
		}
	}
}

// uniqueWith reserves base and base+suffix together.
func (s nameSet) uniqueWith(base, suffix string) string {
	cand := base
	for i := 2; s[cand] || s[cand+suffix]; i++ {
		cand = base + "_" + strconv.Itoa(i)
	}
	s[cand] = true
	s[cand+suffix] = true
	return cand
}

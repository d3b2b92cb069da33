package resolve

import (
	"context"
	"regexp"
	"strings"

	"github.com/jetleaf/typegraph/internal/source"
)

// Source-text heuristics. Nullability and declaration modifiers are
// advisory metadata the reflection source does not expose; when the
// analyzer is silent too, the declaring source text is the last resort.
// Every path here degrades to a conservative default and never fails the
// walk.

// parameterNullability determines a parameter's nullability from the
// declaring member's source text: it locates the member's parameter list,
// finds the exact parameter, and inspects the type annotation's nullability
// suffix, recursing into the containing field's type for an untyped
// field-formal parameter. When the parameter list cannot be parsed at all,
// a regex scan over the raw text decides; a failed determination defaults
// to false.
func (s *Session) parameterNullability(ctx context.Context, srcURI, memberName, paramName string, classEl *source.Element) bool {
	text := s.readSource(ctx, srcURI)
	if text == "" || paramName == "" {
		return false
	}
	params, ok := parseParameterList(text, memberName)
	if !ok {
		return regexNullability(text, paramName)
	}
	for _, param := range params {
		if declaredParamName(param) != paramName {
			continue
		}
		return s.paramTextNullable(ctx, param, paramName, srcURI, classEl)
	}
	return regexNullability(text, paramName)
}

// paramTextNullable classifies one parameter's source text. The five
// shapes: simple, field-formal (this.x), super-formal (super.x),
// function-typed, and default-wrapped.
func (s *Session) paramTextNullable(ctx context.Context, param, paramName, srcURI string, classEl *source.Element) bool {
	// Default-wrapped: the default expression never affects the type.
	if idx := topLevelIndex(param, '='); idx >= 0 {
		param = param[:idx]
	}
	param = strings.TrimSpace(param)
	for _, kw := range []string{"required ", "covariant ", "final "} {
		param = strings.TrimSpace(strings.TrimPrefix(param, kw))
	}

	// Field-formal and super-formal parameters.
	if cut, isThis := formalTarget(param, paramName); cut != "" || isThis {
		if cut != "" {
			// Explicitly typed formal: the annotation decides.
			return typeTextNullable(cut)
		}
		if isThis {
			// Untyped this.x takes the containing field's type.
			return s.fieldNullability(ctx, srcURI, paramName, classEl)
		}
		// Untyped super.x: the supertype's field is not visible here.
		return false
	}

	// Function-typed parameter: `void Function(int)? cb`.
	if strings.Contains(param, "Function") {
		typePart := strings.TrimSpace(strings.TrimSuffix(param, paramName))
		return strings.HasSuffix(typePart, "?")
	}

	// Simple parameter: `Type? name`.
	typePart := strings.TrimSpace(strings.TrimSuffix(param, paramName))
	return typeTextNullable(typePart)
}

// formalTarget detects `this.x` / `super.x` in a parameter's text, returning
// any explicit type annotation text preceding it and whether the target is
// a field-formal (this.).
func formalTarget(param, paramName string) (typeText string, isThis bool) {
	for _, prefix := range []string{"this.", "super."} {
		marker := prefix + paramName
		idx := strings.Index(param, marker)
		if idx < 0 {
			continue
		}
		return strings.TrimSpace(param[:idx]), prefix == "this."
	}
	return "", false
}

func typeTextNullable(typeText string) bool {
	typeText = strings.TrimSpace(typeText)
	return strings.HasSuffix(typeText, "?") || typeText == "Null"
}

// fieldNullability resolves a field's declared nullability: the analyzer's
// answer when available, else a source-text scan.
func (s *Session) fieldNullability(ctx context.Context, srcURI, fieldName string, classEl *source.Element) bool {
	if m := classEl.Member(fieldName); m != nil && m.Type != nil {
		return m.Type.IsNullable
	}
	text := s.readSource(ctx, srcURI)
	if text == "" {
		return false
	}
	return regexNullability(text, fieldName)
}

// fieldIsLate reports whether a field is declared `late`, a purely
// syntactic modifier neither oracle exposes.
func (s *Session) fieldIsLate(ctx context.Context, srcURI, fieldName string) bool {
	text := s.readSource(ctx, srcURI)
	if text == "" {
		return false
	}
	return matched(`\blate\b[^;{}]*\b`+regexp.QuoteMeta(fieldName)+`\s*[;=]`, text)
}

// regexNullability is the fallback heuristic: scan for `Type? name` or
// `Null name` near the member's signature. It must never fail; a pattern
// that cannot be built answers false.
func regexNullability(text, name string) bool {
	quoted := regexp.QuoteMeta(name)
	nullable, err := regexp.Compile(`[A-Za-z_$][A-Za-z0-9_$<>, ]*\?\s+` + quoted + `\b`)
	if err != nil {
		return false
	}
	if nullable.MatchString(text) {
		return true
	}
	nullType, err := regexp.Compile(`\bNull\s+` + quoted + `\b`)
	if err != nil {
		return false
	}
	return nullType.MatchString(text)
}

// parseParameterList locates memberName's declaration in text and returns
// its top-level comma-split parameter list. ok is false when no plausible
// declaration site is found, which sends the caller to the regex fallback.
func parseParameterList(text, memberName string) ([]string, bool) {
	if memberName == "" {
		return nil, false
	}
	offset := 0
	for {
		idx := strings.Index(text[offset:], memberName)
		if idx < 0 {
			return nil, false
		}
		idx += offset
		offset = idx + len(memberName)

		// Reject call sites reached through a receiver and substring hits.
		if idx > 0 {
			prev := text[idx-1]
			if prev == '.' || isIdentByte(prev) {
				continue
			}
		}
		rest := text[idx+len(memberName):]
		trimmed := strings.TrimLeft(rest, " \t")
		if !strings.HasPrefix(trimmed, "(") {
			continue
		}
		body, ok := balancedParens(trimmed)
		if !ok {
			return nil, false
		}
		if strings.TrimSpace(body) == "" {
			return nil, true
		}
		return splitTopLevel(body, ','), true
	}
}

// balancedParens returns the contents of the leading parenthesized group.
func balancedParens(s string) (string, bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[1:i], true
			}
		}
	}
	return "", false
}

// splitTopLevel splits on sep outside any (), <>, [], {} nesting. Optional
// and named parameter group brackets are stripped in passing.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '<', '[', '{':
			depth++
		case ')', '>', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, trimGroupBrackets(s[start:i]))
				start = i + 1
			}
		}
	}
	if tail := trimGroupBrackets(s[start:]); tail != "" {
		parts = append(parts, tail)
	}
	return parts
}

// topLevelIndex finds sep outside any nesting, or -1.
func topLevelIndex(s string, sep byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '<', '[', '{':
			depth++
		case ')', '>', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// trimGroupBrackets drops the [ { } ] delimiters of optional/named
// parameter groups from a split fragment.
func trimGroupBrackets(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "]")
	s = strings.TrimSuffix(s, "}")
	return strings.TrimSpace(s)
}

// declaredParamName extracts the declared name of one parameter fragment.
func declaredParamName(param string) string {
	if idx := topLevelIndex(param, '='); idx >= 0 {
		param = param[:idx]
	}
	param = strings.TrimSpace(param)
	if param == "" {
		return ""
	}
	// Old-style function parameter `int cb(int a)`: the name precedes the
	// parameter list.
	if idx := strings.IndexByte(param, '('); idx >= 0 && !strings.Contains(param[:idx], "Function") {
		param = strings.TrimSpace(param[:idx])
	}
	fields := strings.Fields(param)
	if len(fields) == 0 {
		return ""
	}
	last := fields[len(fields)-1]
	// this.x / super.x declare x.
	if idx := strings.LastIndexByte(last, '.'); idx >= 0 {
		last = last[idx+1:]
	}
	return last
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// classModifiers holds the declaration modifiers only visible in source
// text: the reflection source exposes none of them, and it cannot always
// tell a true `mixin` declaration from a class applied as a mixin.
type classModifiers struct {
	Mixin      bool
	MixinClass bool
	Sealed     bool
	Base       bool
	Interface  bool
	Final      bool
}

// detectModifiers pattern-matches the modifier keywords preceding the type
// name in its declaring source text.
func detectModifiers(text, name string) classModifiers {
	var mods classModifiers
	if text == "" || name == "" {
		return mods
	}
	quoted := regexp.QuoteMeta(name)

	if matched(`\bmixin\s+class\s+`+quoted+`\b`, text) {
		mods.MixinClass = true
	} else if matched(`\bmixin\s+`+quoted+`\b`, text) {
		mods.Mixin = true
	}

	head := `(?:class|mixin(?:\s+class)?)\s+` + quoted + `\b`
	for kw, flag := range map[string]*bool{
		"sealed":    &mods.Sealed,
		"base":      &mods.Base,
		"interface": &mods.Interface,
		"final":     &mods.Final,
	} {
		if matched(`\b`+kw+`\s+(?:abstract\s+)?`+head, text) {
			*flag = true
		}
	}
	return mods
}

func matched(pattern, text string) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

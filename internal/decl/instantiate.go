package decl

import (
	"errors"
	"fmt"
)

// Instantiation failures are genuine contract violations by the caller and
// are surfaced, never swallowed.
var (
	ErrNoMatchingConstructor = errors.New("decl: no matching constructor")
	ErrPrivateConstructor    = errors.New("decl: constructor is private")
)

// Required reports whether the parameter must be supplied by the caller:
// either explicitly marked required, or non-nullable with no default.
func (p *ParameterDeclaration) Required() bool {
	if p.IsRequired {
		return true
	}
	return !p.IsNullable && !p.HasDefault
}

// matches reports whether the constructor accepts the argument map: every
// required parameter has a key present, and every key names a declared
// parameter. Both directions are checked.
func (c *ConstructorDeclaration) matches(args map[string]any) bool {
	byName := make(map[string]*ParameterDeclaration, len(c.Parameters))
	for _, p := range c.Parameters {
		byName[p.Name] = p
	}
	for _, p := range c.Parameters {
		if p.Required() {
			if _, ok := args[p.Name]; !ok {
				return false
			}
		}
	}
	for key := range args {
		if _, ok := byName[key]; !ok {
			return false
		}
	}
	return true
}

// allNullable reports whether every parameter of the constructor is nullable.
func (c *ConstructorDeclaration) allNullable() bool {
	for _, p := range c.Parameters {
		if !p.IsNullable {
			return false
		}
	}
	return true
}

// MatchConstructor selects the constructor to use for the given argument
// map. Constructors are tried in declaration order; the first fully
// matching one wins. When none match and the argument map is empty, the
// truly zero-parameter constructor is preferred, then the first constructor
// whose every parameter is nullable. Otherwise the match fails.
func (cl *ClassDeclaration) MatchConstructor(args map[string]any) (*ConstructorDeclaration, error) {
	for _, c := range cl.Constructors {
		if c.matches(args) {
			return c, nil
		}
	}
	if len(args) == 0 {
		for _, c := range cl.Constructors {
			if len(c.Parameters) == 0 {
				return c, nil
			}
		}
		for _, c := range cl.Constructors {
			if c.allNullable() {
				return c, nil
			}
		}
	}
	return nil, fmt.Errorf("class %s with args %v: %w", cl.Name, keysOf(args), ErrNoMatchingConstructor)
}

// Instantiate selects a matching constructor and invokes it.
func (cl *ClassDeclaration) Instantiate(args map[string]any) (any, error) {
	c, err := cl.MatchConstructor(args)
	if err != nil {
		return nil, err
	}
	return c.Invoke(args)
}

func keysOf(args map[string]any) []string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	return keys
}

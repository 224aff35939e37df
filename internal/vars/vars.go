// Package vars declares and resolves user-facing build variables: built-in
// toggles like debug, plus caller-defined options fed from zbuild.toml.
package vars

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mitchellh/mapstructure"
)

// Kind is the declared type of a build variable.
type Kind int

const (
	Bool Kind = iota + 1
	Enum
	String
)

// ErrInvalidDecl marks a declaration whose kind, default or allowed values
// do not line up. It aborts configuration; there is no best-effort fallback
// for a malformed declaration.
var ErrInvalidDecl = errors.New("invalid variable declaration")

// Decl declares a single build variable.
type Decl struct {
	Name    string
	Help    string
	Kind    Kind
	Default any
	Allowed []string // Enum only
}

func (d Decl) validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidDecl)
	}
	switch d.Kind {
	case Bool:
		if _, ok := d.Default.(bool); !ok {
			return fmt.Errorf("%w: %s: bool variable needs a bool default, got %T", ErrInvalidDecl, d.Name, d.Default)
		}
	case Enum:
		def, ok := d.Default.(string)
		if !ok {
			return fmt.Errorf("%w: %s: enum variable needs a string default, got %T", ErrInvalidDecl, d.Name, d.Default)
		}
		if len(d.Allowed) == 0 {
			return fmt.Errorf("%w: %s: enum variable needs allowed values", ErrInvalidDecl, d.Name)
		}
		if !slices.Contains(d.Allowed, def) {
			return fmt.Errorf("%w: %s: default %q not among allowed values", ErrInvalidDecl, d.Name, def)
		}
	case String:
		if _, ok := d.Default.(string); !ok {
			return fmt.Errorf("%w: %s: string variable needs a string default, got %T", ErrInvalidDecl, d.Name, d.Default)
		}
	default:
		return fmt.Errorf("%w: %s: unknown kind %d", ErrInvalidDecl, d.Name, d.Kind)
	}
	return nil
}

// Set holds declared variables and their resolved values.
type Set struct {
	decls  map[string]Decl
	values map[string]any
}

// NewSet validates the declarations and seeds every variable with its
// default value.
func NewSet(decls ...Decl) (*Set, error) {
	s := &Set{
		decls:  make(map[string]Decl, len(decls)),
		values: make(map[string]any, len(decls)),
	}
	for _, d := range decls {
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, dup := s.decls[d.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate variable %s", ErrInvalidDecl, d.Name)
		}
		s.decls[d.Name] = d
		s.values[d.Name] = d.Default
	}
	return s, nil
}

// Apply overrides declared variables from an open key/value table, coercing
// loosely typed inputs ("1", "true") onto the declared kind. Unknown keys
// are rejected so typos fail loudly.
func (s *Set) Apply(options map[string]any) error {
	for name, raw := range options {
		d, ok := s.decls[name]
		if !ok {
			return fmt.Errorf("unknown option %q", name)
		}
		switch d.Kind {
		case Bool:
			var v bool
			if err := weakDecode(raw, &v); err != nil {
				return fmt.Errorf("option %s: %w", name, err)
			}
			s.values[name] = v
		case Enum:
			var v string
			if err := weakDecode(raw, &v); err != nil {
				return fmt.Errorf("option %s: %w", name, err)
			}
			if !slices.Contains(d.Allowed, v) {
				return fmt.Errorf("option %s: %q not among allowed values %v", name, v, d.Allowed)
			}
			s.values[name] = v
		case String:
			var v string
			if err := weakDecode(raw, &v); err != nil {
				return fmt.Errorf("option %s: %w", name, err)
			}
			s.values[name] = v
		}
	}
	return nil
}

func weakDecode(raw, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Bool returns the resolved value of a bool variable, or false when the
// variable is unknown.
func (s *Set) Bool(name string) bool {
	v, _ := s.values[name].(bool)
	return v
}

// String returns the resolved value of a string or enum variable.
func (s *Set) String(name string) string {
	v, _ := s.values[name].(string)
	return v
}

// Has reports whether a variable is declared.
func (s *Set) Has(name string) bool {
	_, ok := s.decls[name]
	return ok
}

// Help returns one usage line per declared variable, sorted by name.
func (s *Set) Help() []string {
	names := make([]string, 0, len(s.decls))
	for name := range s.decls {
		names = append(names, name)
	}
	slices.Sort(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		d := s.decls[name]
		lines = append(lines, fmt.Sprintf("%s: %s (default %v)", d.Name, d.Help, d.Default))
	}
	return lines
}

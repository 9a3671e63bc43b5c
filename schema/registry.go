package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicate is returned when a class or enum name is registered twice.
	ErrDuplicate = errors.New("schema: duplicate definition")
	// ErrUnresolved is returned when a type refers to an unknown class or enum.
	ErrUnresolved = errors.New("schema: unresolved reference")
)

// FieldDef is one declared class field. Alias is an alternative key accepted
// in input and preferred in exported schemas.
type FieldDef struct {
	Name        string
	Alias       string
	Description string
	Type        Type
}

// ClassDef is a named record type.
type ClassDef struct {
	Name        string
	Description string
	Fields      []FieldDef
}

// Field returns the field declared as name.
func (c *ClassDef) Field(name string) (FieldDef, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// EnumValue is one enum member.
type EnumValue struct {
	Name        string
	Alias       string
	Description string
}

// EnumDef is a named set of string members.
type EnumDef struct {
	Name        string
	Description string
	Values      []EnumValue
}

// Names returns member names in declaration order.
func (e *EnumDef) Names() []string {
	out := make([]string, len(e.Values))
	for i, v := range e.Values {
		out[i] = v.Name
	}
	return out
}

// Registry is the schema graph: classes and enums by name. Populate it
// before use; once shared it must not be mutated.
type Registry struct {
	classes    map[string]*ClassDef
	enums      map[string]*EnumDef
	classOrder []string
	enumOrder  []string
}

func NewRegistry() *Registry {
	return &Registry{classes: map[string]*ClassDef{}, enums: map[string]*EnumDef{}}
}

// AddClass registers c. Class and enum names share one namespace.
func (r *Registry) AddClass(c *ClassDef) error {
	if err := r.checkFree(c.Name); err != nil {
		return err
	}
	r.classes[c.Name] = c
	r.classOrder = append(r.classOrder, c.Name)
	return nil
}

// AddEnum registers e.
func (r *Registry) AddEnum(e *EnumDef) error {
	if err := r.checkFree(e.Name); err != nil {
		return err
	}
	r.enums[e.Name] = e
	r.enumOrder = append(r.enumOrder, e.Name)
	return nil
}

func (r *Registry) checkFree(name string) error {
	if name == "" {
		return fmt.Errorf("schema: empty name")
	}
	if _, ok := r.classes[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	if _, ok := r.enums[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	return nil
}

func (r *Registry) Class(name string) (*ClassDef, bool) {
	if r == nil {
		return nil, false
	}
	c, ok := r.classes[name]
	return c, ok
}

func (r *Registry) Enum(name string) (*EnumDef, bool) {
	if r == nil {
		return nil, false
	}
	e, ok := r.enums[name]
	return e, ok
}

// Classes returns classes in registration order.
func (r *Registry) Classes() []*ClassDef {
	out := make([]*ClassDef, 0, len(r.classOrder))
	for _, n := range r.classOrder {
		out = append(out, r.classes[n])
	}
	return out
}

// Enums returns enums in registration order.
func (r *Registry) Enums() []*EnumDef {
	out := make([]*EnumDef, 0, len(r.enumOrder))
	for _, n := range r.enumOrder {
		out = append(out, r.enums[n])
	}
	return out
}

// Resolve returns the class or enum reference for name.
func (r *Registry) Resolve(name string) (Type, bool) {
	if _, ok := r.Class(name); ok {
		return ClassRef(name), true
	}
	if _, ok := r.Enum(name); ok {
		return EnumRef(name), true
	}
	return nil, false
}

// Validate checks that every reference reachable from a class field resolves
// and that map key types are string-like. All problems are joined.
func (r *Registry) Validate() error {
	var errs []error
	for _, c := range r.Classes() {
		for _, f := range c.Fields {
			if f.Type == nil {
				errs = append(errs, fmt.Errorf("schema: class %s field %s has no type", c.Name, f.Name))
				continue
			}
			if err := r.CheckType(f.Type); err != nil {
				errs = append(errs, fmt.Errorf("class %s field %s: %w", c.Name, f.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// CheckType validates a single type against the registry.
func (r *Registry) CheckType(t Type) error {
	switch v := t.(type) {
	case *Class:
		if _, ok := r.Class(v.Name); !ok {
			return fmt.Errorf("%w: class %s", ErrUnresolved, v.Name)
		}
	case *Enum:
		if _, ok := r.Enum(v.Name); !ok {
			return fmt.Errorf("%w: enum %s", ErrUnresolved, v.Name)
		}
	case *List:
		return r.CheckType(v.Elem)
	case *Optional:
		return r.CheckType(v.Inner)
	case *Constrained:
		return r.CheckType(v.Base)
	case *Map:
		if !IsStringKey(v.Key) {
			return fmt.Errorf("schema: map key type %s is not string-like", v.Key)
		}
		if err := r.CheckType(v.Key); err != nil {
			return err
		}
		return r.CheckType(v.Value)
	case *Union:
		var errs []error
		for _, m := range v.Variants {
			if err := r.CheckType(m); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	case *Tuple:
		var errs []error
		for _, m := range v.Items {
			if err := r.CheckType(m); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return nil
}

// IsStringKey reports whether t can type a map key.
func IsStringKey(t Type) bool {
	switch v := Unwrap(t).(type) {
	case Primitive:
		return v == String
	case *Enum:
		return true
	case *Literal:
		_, ok := v.Value.(string)
		return ok
	case *Union:
		for _, m := range v.Variants {
			if !IsStringKey(m) {
				return false
			}
		}
		return len(v.Variants) > 0
	}
	return false
}

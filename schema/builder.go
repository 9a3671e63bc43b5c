package schema

import "fmt"

// ClassBuilder assembles a ClassDef field by field.
type ClassBuilder struct {
	def  ClassDef
	seen map[string]struct{}
	err  error
}

// FieldStep configures the field added last.
type FieldStep struct {
	b   *ClassBuilder
	idx int
}

// NewClass starts a class definition.
func NewClass(name string) *ClassBuilder {
	return &ClassBuilder{def: ClassDef{Name: name}, seen: map[string]struct{}{}}
}

// Describe sets the class description.
func (b *ClassBuilder) Describe(d string) *ClassBuilder {
	b.def.Description = d
	return b
}

// Field appends a required field of type t.
func (b *ClassBuilder) Field(name string, t Type) *FieldStep {
	if _, dup := b.seen[name]; dup && b.err == nil {
		b.err = fmt.Errorf("%w: field %s in class %s", ErrDuplicate, name, b.def.Name)
	}
	b.seen[name] = struct{}{}
	b.def.Fields = append(b.def.Fields, FieldDef{Name: name, Type: t})
	return &FieldStep{b: b, idx: len(b.def.Fields) - 1}
}

// Alias sets the alternative input key.
func (f *FieldStep) Alias(alias string) *FieldStep {
	f.b.def.Fields[f.idx].Alias = alias
	return f
}

// Describe sets the field description.
func (f *FieldStep) Describe(d string) *FieldStep {
	f.b.def.Fields[f.idx].Description = d
	return f
}

// Optional wraps the field type in Optional unless it already admits absence.
func (f *FieldStep) Optional() *FieldStep {
	fd := &f.b.def.Fields[f.idx]
	if !IsOptional(fd.Type) {
		fd.Type = OptionalOf(fd.Type)
	}
	return f
}

func (f *FieldStep) Field(name string, t Type) *FieldStep { return f.b.Field(name, t) }
func (f *FieldStep) Build() (*ClassDef, error)            { return f.b.Build() }
func (f *FieldStep) MustBuild() *ClassDef                 { return f.b.MustBuild() }
func (f *FieldStep) Register(r *Registry) error           { return f.b.Register(r) }

// Build returns a copy of the definition.
func (b *ClassBuilder) Build() (*ClassDef, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.def.Name == "" {
		return nil, fmt.Errorf("schema: class without name")
	}
	def := b.def
	def.Fields = append([]FieldDef(nil), b.def.Fields...)
	return &def, nil
}

func (b *ClassBuilder) MustBuild() *ClassDef {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}

// Register builds the class and adds it to r.
func (b *ClassBuilder) Register(r *Registry) error {
	c, err := b.Build()
	if err != nil {
		return err
	}
	return r.AddClass(c)
}

// NewEnum builds an EnumDef from member names.
func NewEnum(name string, members ...string) *EnumDef {
	e := &EnumDef{Name: name}
	for _, m := range members {
		e.Values = append(e.Values, EnumValue{Name: m})
	}
	return e
}

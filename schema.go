package leandb

import (
	"reflect"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Schema is the set of fields a record type declares, read from its bson tags.
// Field names follow the bson rules: the tag name when present, otherwise the
// lowercased Go field name; `bson:"-"` fields are skipped and inline or
// anonymous struct fields are flattened.
//
// Non-struct record types (maps, bson documents) produce an open schema that
// accepts every field name.
type Schema struct {
	typeName string
	open     bool
	fields   map[string]reflect.Type
}

// SchemaOf reflects the schema of T.
func SchemaOf[T any]() *Schema {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	s := &Schema{
		typeName: t.String(),
		fields:   make(map[string]reflect.Type),
	}

	if t.Kind() != reflect.Struct {
		s.open = true
		return s
	}

	s.collect(t)

	return s
}

func (s *Schema) collect(t reflect.Type) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() && !sf.Anonymous {
			continue
		}

		name, inline, skip := parseBSONTag(sf)
		if skip {
			continue
		}

		ft := sf.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}

		if (inline || sf.Anonymous) && ft.Kind() == reflect.Struct {
			s.collect(ft)
			continue
		}

		s.fields[name] = sf.Type
	}
}

func parseBSONTag(sf reflect.StructField) (name string, inline bool, skip bool) {
	tag, ok := sf.Tag.Lookup("bson")
	if !ok {
		return strings.ToLower(sf.Name), false, false
	}

	if tag == "-" {
		return "", false, true
	}

	parts := strings.Split(tag, ",")
	name = parts[0]
	inline = lo.Contains(parts[1:], "inline")
	if name == "" {
		name = strings.ToLower(sf.Name)
	}

	return name, inline, false
}

// Has reports whether the record declares the field.
func (s *Schema) Has(name string) bool {
	if s == nil || s.open {
		return true
	}

	_, ok := s.fields[name]
	return ok
}

// Type returns the declared Go type of the field.
func (s *Schema) Type(name string) (reflect.Type, bool) {
	if s == nil {
		return nil, false
	}

	t, ok := s.fields[name]
	return t, ok
}

// Names returns the declared field names in lexical order.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}

	names := lo.Keys(s.fields)
	slices.Sort(names)

	return names
}

// String returns the record type name.
func (s *Schema) String() string {
	if s == nil {
		return "<nil>"
	}

	return s.typeName
}

func (s *Schema) validateField(name string) error {
	if !s.Has(name) {
		return contractViolation("undeclared field '%s' on %s", name, s)
	}

	return nil
}

package leandb

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Projection restricts which fields a query returns. The zero value returns
// every field.
//
// Identifier fields are returned unless ExcludeID is requested; records read
// through a projection keep the full type T with the omitted fields left at
// their zero values, and View tells them apart from real zero values.
type Projection[T any] struct {
	fields    []string
	excludeID bool
}

// Project builds a projection including exactly the given fields plus the
// identifier.
func Project[T any](fields ...FieldRef[T]) Projection[T] {
	var p Projection[T]
	for _, f := range fields {
		p = p.include(f.Name())
	}

	return p
}

// ParseProjection builds a projection from field names. A leading "-" is only
// accepted on the internal identifier ("-_id") and excludes it.
func ParseProjection[T any](specs ...string) (Projection[T], error) {
	schema := SchemaOf[T]()

	var p Projection[T]
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}

		if name, ok := strings.CutPrefix(spec, "-"); ok {
			if name != InternalIDKey {
				return Projection[T]{}, contractViolation("only '%s' can be excluded, got '%s'", InternalIDKey, spec)
			}

			p.excludeID = true
			continue
		}

		if err := schema.validateField(spec); err != nil {
			return Projection[T]{}, err
		}

		p = p.include(spec)
	}

	return p, nil
}

// Include returns a copy of the projection with extra fields included. It is a
// no-op on a projection that returns every field.
func (p Projection[T]) Include(fields ...FieldRef[T]) Projection[T] {
	if len(p.fields) == 0 {
		return p
	}

	for _, f := range fields {
		p = p.include(f.Name())
	}

	return p
}

// ExcludeID returns a copy of the projection without the internal identifier.
func (p Projection[T]) ExcludeID() Projection[T] {
	p.excludeID = true

	return p
}

// Fields returns the explicitly included field names.
func (p Projection[T]) Fields() []string {
	return slices.Clone(p.fields)
}

// ExcludesID reports whether the internal identifier is projected away.
func (p Projection[T]) ExcludesID() bool {
	return p.excludeID
}

// IsEmpty reports whether the projection returns every field.
func (p Projection[T]) IsEmpty() bool {
	return len(p.fields) == 0 && !p.excludeID
}

// Includes reports whether records read through the projection carry the field.
func (p Projection[T]) Includes(name string) bool {
	if name == InternalIDKey {
		return !p.excludeID
	}

	return len(p.fields) == 0 || lo.Contains(p.fields, name)
}

func (p Projection[T]) include(name string) Projection[T] {
	if name == InternalIDKey || lo.Contains(p.fields, name) {
		return p
	}

	p.fields = append(slices.Clone(p.fields), name)

	return p
}

func (p Projection[T]) validate(schema *Schema) error {
	for _, name := range p.fields {
		if err := schema.validateField(name); err != nil {
			return err
		}
	}

	return nil
}

// View is a record read through a projection. Pluck refuses to read fields
// the projection left out.
type View[T any] struct {
	record     *T
	projection Projection[T]
}

func NewView[T any](record *T, projection Projection[T]) View[T] {
	return View[T]{
		record:     record,
		projection: projection,
	}
}

// Views wraps every record of the slice.
func Views[T any](records []T, projection Projection[T]) []View[T] {
	ret := make([]View[T], 0, len(records))
	for i := range records {
		ret = append(ret, NewView(&records[i], projection))
	}

	return ret
}

// Record returns the underlying record with projected-away fields zeroed.
func (v View[T]) Record() *T {
	return v.record
}

// Has reports whether the view carries the field.
func (v View[T]) Has(field FieldRef[T]) bool {
	return v.projection.Includes(field.Name())
}

// Pluck reads a field from a projected view.
func Pluck[T any, V any](v View[T], field Field[T, V]) (V, error) {
	if !v.Has(field) {
		var zero V
		return zero, contractViolation("field '%s' was not projected", field.Name())
	}

	return field.Get(v.record), nil
}

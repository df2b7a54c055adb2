package leandb

import "github.com/samber/lo"

// Assignment sets one field to a value. Build it with Field.Set.
type Assignment[T any] struct {
	Field string
	Value any
}

// Patch is a partial field-level update: the listed fields are set, every
// other field is left untouched.
type Patch[T any] []Assignment[T]

func Set[T any](assignments ...Assignment[T]) Patch[T] {
	return Patch[T](assignments)
}

// Has reports whether the patch assigns the field.
func (p Patch[T]) Has(name string) bool {
	return lo.ContainsBy(p, func(a Assignment[T]) bool {
		return a.Field == name
	})
}

// ToMap returns the assignments keyed by field name. Later assignments to the
// same field win.
func (p Patch[T]) ToMap() map[string]any {
	return lo.SliceToMap(p, func(a Assignment[T]) (string, any) {
		return a.Field, a.Value
	})
}

func (p Patch[T]) validate(schema *Schema) error {
	if len(p) == 0 {
		return contractViolation("empty patch")
	}

	for _, a := range p {
		if a.Field == InternalIDKey {
			return contractViolation("the internal identifier cannot be patched")
		}

		if err := schema.validateField(a.Field); err != nil {
			return err
		}
	}

	return nil
}

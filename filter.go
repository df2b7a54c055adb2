package leandb

import (
	"fmt"

	"github.com/samber/lo"
)

// Condition is a single "Field Operator Value" predicate on record type T.
//
// Build conditions through Field methods; hand-built conditions are checked
// against the record schema before any query is issued.
type Condition[T any] struct {
	Field    string
	Operator Operator
	Value    any
}

// Filter is a conjunction of conditions. The empty filter matches every record.
type Filter[T any] []Condition[T]

// Where builds a filter from conditions joined by AND.
func Where[T any](conditions ...Condition[T]) Filter[T] {
	return Filter[T](conditions)
}

// Identifier lists the identifier representations accepted by WhereID: string
// forms and the native 12-byte object id, 16-byte UUID and integer keys.
type Identifier interface {
	~string | ~[12]byte | ~[16]byte |
		~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64
}

// WhereID matches the record with the given internal identifier. The value is
// passed through unchanged; coercion between string and native forms is left
// to the store.
func WhereID[T any, I Identifier](id I) Condition[T] {
	return Condition[T]{
		Field:    InternalIDKey,
		Operator: OperatorEq,
		Value:    id,
	}
}

// And returns a new filter with extra conditions appended. The receiver is
// never modified, so a base filter can be shared between queries.
//
// Conditions on the same field are all kept: And(f.Lt(x)) on a filter that
// already constrains f narrows the result, it does not replace the constraint.
func (f Filter[T]) And(conditions ...Condition[T]) Filter[T] {
	ret := make(Filter[T], 0, len(f)+len(conditions))
	ret = append(ret, f...)
	ret = append(ret, conditions...)

	return ret
}

// Fields returns the distinct field names referenced by the filter.
func (f Filter[T]) Fields() []string {
	return lo.Uniq(lo.Map(f, func(c Condition[T], _ int) string {
		return c.Field
	}))
}

// ByField groups conditions by field name, preserving first-seen order.
func (f Filter[T]) ByField() ([]string, map[string]Filter[T]) {
	grouped := lo.GroupBy(f, func(c Condition[T]) string {
		return c.Field
	})

	return f.Fields(), grouped
}

func (c Condition[T]) validate() error {
	if c.Field == "" {
		return contractViolation("condition without field")
	}

	if !c.Operator.Valid() {
		return contractViolation("invalid operator '%s' on field '%s'", c.Operator, c.Field)
	}

	return nil
}

func (f Filter[T]) validate(schema *Schema) error {
	for _, c := range f {
		if err := c.validate(); err != nil {
			return err
		}

		if !schema.Has(c.Field) {
			return contractViolation("filter references undeclared field '%s' on %s", c.Field, schema)
		}
	}

	return nil
}

func (c Condition[T]) String() string {
	return fmt.Sprintf("%s %s %v", c.Field, c.Operator, c.Value)
}

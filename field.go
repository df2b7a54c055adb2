package leandb

import "time"

const (
	// InternalIDKey is the store-assigned identifier field of every record.
	InternalIDKey = "_id"
	// CreatedAtKey and UpdatedAtKey are the fields maintained by Timestamps.
	CreatedAtKey = "createdAt"
	UpdatedAtKey = "updatedAt"
)

// Field names a persisted attribute of record type T holding values of type V.
//
// Fields are the only way to build conditions, projections, patches and cursors,
// so the compiler rejects a filter on another record's field or a value of the
// wrong type:
//
//	var NoteTitle = leandb.NewField("title", func(n *Note) string { return n.Title })
//
//	leandb.Where(NoteTitle.Eq("groceries"))  // ok
//	leandb.Where(NoteTitle.Eq(42))           // does not compile
type Field[T any, V any] struct {
	name string
	get  func(*T) V
}

// FieldRef is a Field with its value type erased. It stays bound to T.
type FieldRef[T any] interface {
	Name() string
	boundTo(*T)
}

func NewField[T any, V any](name string, get func(*T) V) Field[T, V] {
	return Field[T, V]{
		name: name,
		get:  get,
	}
}

// Name returns the stored field name.
func (f Field[T, V]) Name() string {
	return f.name
}

// Get reads the field value from the record. A field declared without an
// accessor yields the zero value.
func (f Field[T, V]) Get(record *T) V {
	if f.get == nil || record == nil {
		var zero V
		return zero
	}

	return f.get(record)
}

func (f Field[T, V]) Eq(value V) Condition[T]  { return f.cond(OperatorEq, value) }
func (f Field[T, V]) Ne(value V) Condition[T]  { return f.cond(OperatorNe, value) }
func (f Field[T, V]) Gt(value V) Condition[T]  { return f.cond(OperatorGT, value) }
func (f Field[T, V]) Gte(value V) Condition[T] { return f.cond(OperatorGTE, value) }
func (f Field[T, V]) Lt(value V) Condition[T]  { return f.cond(OperatorLT, value) }
func (f Field[T, V]) Lte(value V) Condition[T] { return f.cond(OperatorLTE, value) }

// Set builds a patch assignment for the field.
func (f Field[T, V]) Set(value V) Assignment[T] {
	return Assignment[T]{
		Field: f.name,
		Value: value,
	}
}

func (f Field[T, V]) cond(op Operator, value V) Condition[T] {
	return Condition[T]{
		Field:    f.name,
		Operator: op,
		Value:    value,
	}
}

func (Field[T, V]) boundTo(*T) {}

// UpdatedAt is the last-modified timestamp field, the default cursor field.
// Records that do not embed Timestamps fail the schema check when it is used.
func UpdatedAt[T any]() Field[T, time.Time] {
	return NewField(UpdatedAtKey, func(r *T) time.Time {
		if ts, ok := any(r).(Timestamped); ok {
			return ts.LastModified()
		}

		return time.Time{}
	})
}

// CreatedAt is the creation timestamp field maintained by Timestamps.
func CreatedAt[T any]() Field[T, time.Time] {
	return NewField(CreatedAtKey, func(r *T) time.Time {
		if ts, ok := any(r).(interface{ Created() time.Time }); ok {
			return ts.Created()
		}

		return time.Time{}
	})
}

// InternalID is the store identifier field of records embedding Base[I].
func InternalID[T any, I comparable]() Field[T, I] {
	return NewField(InternalIDKey, func(r *T) I {
		if b, ok := any(r).(interface{ Identifier() I }); ok {
			return b.Identifier()
		}

		var zero I
		return zero
	})
}

var _ FieldRef[struct{}] = Field[struct{}, int]{}

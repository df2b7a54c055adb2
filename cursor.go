package leandb

import (
	"fmt"
	"time"
)

// Cursor is the resumable position of a pagination session: the sort field,
// the last value seen on the previous page and the page size.
//
// A cursor without a resume value points at the first page. The field and the
// limit are fixed for the whole session; Paginate only ever advances from.
// Cursors are values: every With* method returns a modified copy.
type Cursor[T any, V any] struct {
	field   Field[T, V]
	from    V
	hasFrom bool
	limit   int
}

// NewCursor starts a session on field with DefaultLimit.
func NewCursor[T any, V any](field Field[T, V]) *Cursor[T, V] {
	return &Cursor[T, V]{
		field: field,
		limit: DefaultLimit,
	}
}

// DefaultCursor starts a session on the last-modified timestamp with
// DefaultLimit.
func DefaultCursor[T any]() *Cursor[T, time.Time] {
	return NewCursor(UpdatedAt[T]())
}

// WithFrom returns a copy resuming after value. Timestamps are stored in UTC
// at full precision.
func (c *Cursor[T, V]) WithFrom(value V) *Cursor[T, V] {
	ret := c.clone()
	ret.from = canonicalValue(value)
	ret.hasFrom = true

	return ret
}

// WithLimit returns a copy with another page size. The value is handed to the
// store unmodified.
func (c *Cursor[T, V]) WithLimit(limit int) *Cursor[T, V] {
	ret := c.clone()
	ret.limit = limit

	return ret
}

// WithRawLimit is WithLimit for page sizes given as numbers or numeric strings.
func (c *Cursor[T, V]) WithRawLimit(limit any) (*Cursor[T, V], error) {
	n, err := ParseLimit(limit)
	if err != nil {
		return nil, err
	}

	return c.WithLimit(n), nil
}

func (c *Cursor[T, V]) GetField() Field[T, V] {
	return c.field
}

// GetFrom returns the resume value and whether one is set.
func (c *Cursor[T, V]) GetFrom() (V, bool) {
	return c.from, c.hasFrom
}

func (c *Cursor[T, V]) GetLimit() int {
	return c.limit
}

// IsFirstPage reports whether the cursor has no resume value.
func (c *Cursor[T, V]) IsFirstPage() bool {
	return c == nil || !c.hasFrom
}

// String implements fmt.Stringer. It returns the opaque page token.
func (c *Cursor[T, V]) String() string {
	tok, err := c.Token()
	if err != nil {
		panic(fmt.Errorf("cannot encode cursor: %w", err))
	}

	return tok
}

func (c *Cursor[T, V]) clone() *Cursor[T, V] {
	ret := *c
	return &ret
}

func canonicalValue[V any](value V) V {
	if t, ok := any(value).(time.Time); ok {
		return any(t.UTC()).(V)
	}

	return value
}

// canonicalTime is the form record timestamps are written in.
func canonicalTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// CursorResult is one page of a pagination session.
type CursorResult[T any, V any] struct {
	// Items are the page records, newest first.
	Items []T
	// Cursor resumes after the last item. It is the request cursor unchanged
	// when the page is empty.
	Cursor *Cursor[T, V]
	// HasMore reports whether a record exists beyond the last item.
	HasMore bool

	projection Projection[T]
}

// Views wraps the items with the projection they were read through.
func (r CursorResult[T, V]) Views() []View[T] {
	return Views(r.Items, r.projection)
}

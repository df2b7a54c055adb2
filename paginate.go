package leandb

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Paginate returns one page of records matching filter, newest first by the
// last-modified timestamp. A nil cursor starts a session with DefaultCursor.
// Use PaginateBy to page by another field.
func (r *Repository[T, PT]) Paginate(
	ctx context.Context,
	filter Filter[T],
	cursor *Cursor[T, time.Time],
	projection ...Projection[T],
) (*CursorResult[T, time.Time], error) {
	if cursor == nil {
		cursor = DefaultCursor[T]()
	}

	return PaginateBy(ctx, r, filter, cursor, projection...)
}

// PaginateBy returns one page of records matching filter, sorted descending by
// the cursor field and starting strictly below the cursor resume value.
//
// The page is read with a single store query. Whether more records follow is
// decided by a separate existence probe below the last item, so HasMore is
// exact even when the page is exactly limit long.
//
// A filter condition on the cursor field is kept and AND-ed with the range
// condition: it narrows the session, it does not override the cursor.
//
// Records sharing a cursor field value across a page boundary may be skipped
// or repeated. Page by a field with distinct values when that matters.
func PaginateBy[T any, PT Model[T], V any](
	ctx context.Context,
	r *Repository[T, PT],
	filter Filter[T],
	cursor *Cursor[T, V],
	projection ...Projection[T],
) (*CursorResult[T, V], error) {
	if cursor == nil {
		return nil, fmt.Errorf("cannot paginate: %w", contractViolation("nil cursor"))
	}

	proj := lo.FirstOrEmpty(projection)
	field := cursor.GetField()

	err := r.validatePage(filter, field, proj)
	if err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	if !proj.IsEmpty() {
		proj = proj.Include(field)
	}

	effective := filter
	if from, ok := cursor.GetFrom(); ok {
		effective = filter.And(field.Lt(from))
	}

	logger := r.logger.WithFields(logrus.Fields{
		"field":     field.Name(),
		"limit":     cursor.GetLimit(),
		"firstPage": cursor.IsFirstPage(),
	})

	items, err := r.store.Find(effective, proj).
		Sort(field.Name(), DirectionDESC).
		Limit(cursor.GetLimit()).
		All(ctx)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		logger.Debug("empty page")

		return &CursorResult[T, V]{
			Items:      []T{},
			Cursor:     cursor.clone(),
			HasMore:    false,
			projection: proj,
		}, nil
	}

	lastVal := canonicalValue(field.Get(&items[len(items)-1]))

	hasMore, err := r.store.Exists(ctx, filter.And(field.Lt(lastVal)))
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"items":   len(items),
		"hasMore": hasMore,
	}).Debug("page fetched")

	return &CursorResult[T, V]{
		Items:      NormalizeAll[T, PT](items),
		Cursor:     cursor.WithFrom(lastVal),
		HasMore:    hasMore,
		projection: proj,
	}, nil
}

func (r *Repository[T, PT]) validatePage(filter Filter[T], field FieldRef[T], proj Projection[T]) error {
	if err := r.schema.validateField(field.Name()); err != nil {
		return err
	}

	if err := filter.validate(r.schema); err != nil {
		return err
	}

	return proj.validate(r.schema)
}

// Package gormstore implements leandb.Store over a SQL table through gorm.
//
// Column names must match the record field names, which leandb reads from bson
// tags. Records embedding leandb.Base and leandb.Timestamps already declare
// matching gorm columns (_id, createdAt, updatedAt); declare the rest with
// `gorm:"column:..."` tags.
package gormstore

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Alp4ka/leandb"
)

type Store[T any] struct {
	db *gorm.DB
}

func New[T any](db *gorm.DB) *Store[T] {
	return &Store[T]{
		db: db,
	}
}

// DB returns the underlying connection.
func (s *Store[T]) DB() *gorm.DB {
	return s.db
}

// Find implements leandb.Store.
func (s *Store[T]) Find(filter leandb.Filter[T], projection leandb.Projection[T]) leandb.Query[T] {
	q := &query[T]{
		db:         s.db,
		projection: projection,
	}

	q.where, q.err = whereExpression(filter)
	if q.err == nil {
		q.err = validateProjection(projection)
	}

	return q
}

// FindOne implements leandb.Store.
func (s *Store[T]) FindOne(ctx context.Context, filter leandb.Filter[T], projection leandb.Projection[T]) (*T, error) {
	where, err := whereExpression(filter)
	if err != nil {
		return nil, err
	}

	if err = validateProjection(projection); err != nil {
		return nil, err
	}

	ret := new(T)
	err = applyProjection(applyWhere(s.db.WithContext(ctx).Model(new(T)), where), projection).
		Take(ret).Error

	return notFoundAsNil(ret, err)
}

// Exists implements leandb.Store.
func (s *Store[T]) Exists(ctx context.Context, filter leandb.Filter[T]) (bool, error) {
	where, err := whereExpression(filter)
	if err != nil {
		return false, err
	}

	var found []int
	err = applyWhere(s.db.WithContext(ctx).Model(new(T)), where).
		Select("1").
		Limit(1).
		Find(&found).Error
	if err != nil {
		return false, err
	}

	return len(found) > 0, nil
}

// Insert implements leandb.Store. Database-generated keys are written back
// into the record, and the stored row is re-read by primary key in the same
// transaction so column defaults show up in the result.
func (s *Store[T]) Insert(ctx context.Context, record *T) (*T, error) {
	var ret *T
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		rec := *record
		if err := tx.Take(&rec).Error; err != nil {
			return err
		}

		ret = &rec

		return nil
	})
	if err != nil {
		return nil, err
	}

	return ret, nil
}

// FindOneAndUpdate implements leandb.Store. The match, the update and the
// read-back run in one transaction; the record is re-read by primary key.
func (s *Store[T]) FindOneAndUpdate(ctx context.Context, filter leandb.Filter[T], patch leandb.Patch[T]) (*T, error) {
	where, err := whereExpression(filter)
	if err != nil {
		return nil, err
	}

	for _, a := range patch {
		if err = validateColumn(a.Field); err != nil {
			return nil, err
		}
	}

	var ret *T
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := new(T)
		if err := applyWhere(tx.Model(new(T)), where).Take(rec).Error; err != nil {
			return err
		}

		if err := tx.Model(rec).Updates(patch.ToMap()).Error; err != nil {
			return err
		}

		if err := tx.Take(rec).Error; err != nil {
			return err
		}

		ret = rec

		return nil
	})

	return notFoundAsNil(ret, err)
}

// FindOneAndDelete implements leandb.Store.
func (s *Store[T]) FindOneAndDelete(ctx context.Context, filter leandb.Filter[T]) (*T, error) {
	where, err := whereExpression(filter)
	if err != nil {
		return nil, err
	}

	var ret *T
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := new(T)
		if err := applyWhere(tx.Model(new(T)), where).Take(rec).Error; err != nil {
			return err
		}

		if err := tx.Delete(rec).Error; err != nil {
			return err
		}

		ret = rec

		return nil
	})

	return notFoundAsNil(ret, err)
}

func notFoundAsNil[T any](rec *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return rec, nil
}

func whereExpression[T any](filter leandb.Filter[T]) (clause.Expression, error) {
	conj, err := toConjunction(filter)
	if err != nil {
		return nil, err
	}

	return conj.toGORMExpression(), nil
}

func applyWhere(db *gorm.DB, where clause.Expression) *gorm.DB {
	if where == nil {
		return db
	}

	return db.Clauses(where)
}

func validateProjection[T any](p leandb.Projection[T]) error {
	for _, f := range p.Fields() {
		if err := validateColumn(f); err != nil {
			return err
		}
	}

	return nil
}

func applyProjection[T any](db *gorm.DB, p leandb.Projection[T]) *gorm.DB {
	if fields := p.Fields(); len(fields) > 0 {
		if !p.ExcludesID() {
			fields = append([]string{leandb.InternalIDKey}, fields...)
		}

		return db.Select(fields)
	}

	if p.ExcludesID() {
		return db.Omit(leandb.InternalIDKey)
	}

	return db
}

type query[T any] struct {
	db         *gorm.DB
	where      clause.Expression
	projection leandb.Projection[T]
	orders     []clause.OrderByColumn
	limit      *int
	err        error
}

func (q *query[T]) Sort(field string, direction leandb.Direction) leandb.Query[T] {
	if q.err == nil {
		q.err = validateColumn(field)
	}

	q.orders = append(q.orders, clause.OrderByColumn{
		Column: clause.Column{Name: field},
		Desc:   direction == leandb.DirectionDESC,
	})

	return q
}

func (q *query[T]) Limit(n int) leandb.Query[T] {
	q.limit = &n

	return q
}

func (q *query[T]) All(ctx context.Context) ([]T, error) {
	if q.err != nil {
		return nil, q.err
	}

	db := applyProjection(applyWhere(q.db.WithContext(ctx).Model(new(T)), q.where), q.projection)
	for _, o := range q.orders {
		db = db.Order(o)
	}

	if q.limit != nil {
		db = db.Limit(*q.limit)
	}

	ret := make([]T, 0)
	if err := db.Find(&ret).Error; err != nil {
		return nil, err
	}

	return ret, nil
}

var _ leandb.Store[struct{}] = (*Store[struct{}])(nil)

// Package mongostore implements leandb.Store over a MongoDB collection.
package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Alp4ka/leandb"
)

// Store reads and writes records of type T in one collection.
//
// String identifiers in filters and patches are converted to object ids for
// records whose _id field is a primitive.ObjectID; an unparsable string fails
// with leandb.ErrInvalidIdentifier before the query is sent.
type Store[T any] struct {
	coll   *mongo.Collection
	schema *leandb.Schema
}

func New[T any](coll *mongo.Collection) *Store[T] {
	return &Store[T]{
		coll:   coll,
		schema: leandb.SchemaOf[T](),
	}
}

// Collection returns the underlying collection.
func (s *Store[T]) Collection() *mongo.Collection {
	return s.coll
}

// Find implements leandb.Store.
func (s *Store[T]) Find(filter leandb.Filter[T], projection leandb.Projection[T]) leandb.Query[T] {
	q := &query[T]{
		coll: s.coll,
		opts: options.Find(),
	}

	q.filter, q.err = translateFilter(s.schema, filter)
	if proj := translateProjection(projection); proj != nil {
		q.opts.SetProjection(proj)
	}

	return q
}

// FindOne implements leandb.Store.
func (s *Store[T]) FindOne(ctx context.Context, filter leandb.Filter[T], projection leandb.Projection[T]) (*T, error) {
	f, err := translateFilter(s.schema, filter)
	if err != nil {
		return nil, err
	}

	opts := options.FindOne()
	if proj := translateProjection(projection); proj != nil {
		opts.SetProjection(proj)
	}

	return decodeOne[T](s.coll.FindOne(ctx, f, opts))
}

// Exists implements leandb.Store.
func (s *Store[T]) Exists(ctx context.Context, filter leandb.Filter[T]) (bool, error) {
	f, err := translateFilter(s.schema, filter)
	if err != nil {
		return false, err
	}

	opts := options.FindOne().SetProjection(bson.D{{Key: leandb.InternalIDKey, Value: 1}})

	err = s.coll.FindOne(ctx, f, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	return true, nil
}

// Insert implements leandb.Store. The record is read back by the assigned id.
func (s *Store[T]) Insert(ctx context.Context, record *T) (*T, error) {
	res, err := s.coll.InsertOne(ctx, record)
	if err != nil {
		return nil, err
	}

	return decodeOne[T](s.coll.FindOne(ctx, bson.D{{Key: leandb.InternalIDKey, Value: res.InsertedID}}))
}

// FindOneAndUpdate implements leandb.Store.
func (s *Store[T]) FindOneAndUpdate(ctx context.Context, filter leandb.Filter[T], patch leandb.Patch[T]) (*T, error) {
	f, err := translateFilter(s.schema, filter)
	if err != nil {
		return nil, err
	}

	update, err := translatePatch(s.schema, patch)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	return decodeOne[T](s.coll.FindOneAndUpdate(ctx, f, update, opts))
}

// FindOneAndDelete implements leandb.Store.
func (s *Store[T]) FindOneAndDelete(ctx context.Context, filter leandb.Filter[T]) (*T, error) {
	f, err := translateFilter(s.schema, filter)
	if err != nil {
		return nil, err
	}

	return decodeOne[T](s.coll.FindOneAndDelete(ctx, f))
}

func decodeOne[T any](res *mongo.SingleResult) (*T, error) {
	ret := new(T)

	err := res.Decode(ret)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return ret, nil
}

type query[T any] struct {
	coll   *mongo.Collection
	filter bson.D
	opts   *options.FindOptions
	err    error
}

func (q *query[T]) Sort(field string, direction leandb.Direction) leandb.Query[T] {
	order := 1
	if direction == leandb.DirectionDESC {
		order = -1
	}

	q.opts.SetSort(bson.D{{Key: field, Value: order}})

	return q
}

func (q *query[T]) Limit(n int) leandb.Query[T] {
	q.opts.SetLimit(int64(n))

	return q
}

func (q *query[T]) All(ctx context.Context) ([]T, error) {
	if q.err != nil {
		return nil, q.err
	}

	cur, err := q.coll.Find(ctx, q.filter, q.opts)
	if err != nil {
		return nil, err
	}

	ret := make([]T, 0)
	if err = cur.All(ctx, &ret); err != nil {
		return nil, err
	}

	return ret, nil
}

var _ leandb.Store[struct{}] = (*Store[struct{}])(nil)

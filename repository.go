package leandb

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Repository is the CRUD and pagination façade over a Store for record type T.
// It holds no per-call state and is safe for concurrent use when the store is.
//
// Every record it returns is normalized. Single-record reads, updates and
// deletes fail with ErrNotFound when nothing matches.
type Repository[T any, PT Model[T]] struct {
	store  Store[T]
	schema *Schema
	logger logrus.FieldLogger
	clock  func() time.Time
	name   string
}

type repositoryOptions struct {
	logger logrus.FieldLogger
	clock  func() time.Time
	name   string
}

type Option func(*repositoryOptions)

// WithLogger sets the logger debug output goes to. Defaults to a discarding
// logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *repositoryOptions) {
		o.logger = logger
	}
}

// WithClock sets the time source used for record timestamps. Its readings are
// stored in UTC with millisecond precision.
func WithClock(clock func() time.Time) Option {
	return func(o *repositoryOptions) {
		o.clock = clock
	}
}

// WithName sets the collection name reported in log entries. Defaults to the
// record type name.
func WithName(name string) Option {
	return func(o *repositoryOptions) {
		o.name = name
	}
}

func NewRepository[T any, PT Model[T]](store Store[T], opts ...Option) *Repository[T, PT] {
	schema := SchemaOf[T]()

	o := repositoryOptions{
		clock: time.Now,
		name:  schema.String(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		o.logger = discard
	}

	return &Repository[T, PT]{
		store:  store,
		schema: schema,
		logger: o.logger.WithField("collection", o.name),
		clock:  o.clock,
		name:   o.name,
	}
}

// Schema returns the fields declared by T.
func (r *Repository[T, PT]) Schema() *Schema {
	return r.schema
}

// FindMany returns every record matching filter.
func (r *Repository[T, PT]) FindMany(ctx context.Context, filter Filter[T], projection ...Projection[T]) ([]T, error) {
	proj := lo.FirstOrEmpty(projection)
	if err := r.validateRead(filter, proj); err != nil {
		return nil, fmt.Errorf("cannot find: %w", err)
	}

	items, err := r.store.Find(filter, proj).All(ctx)
	if err != nil {
		return nil, err
	}

	r.logger.WithField("items", len(items)).Debug("records found")

	return NormalizeAll[T, PT](items), nil
}

// FindOne returns the first record matching filter.
func (r *Repository[T, PT]) FindOne(ctx context.Context, filter Filter[T], projection ...Projection[T]) (*T, error) {
	proj := lo.FirstOrEmpty(projection)
	if err := r.validateRead(filter, proj); err != nil {
		return nil, fmt.Errorf("cannot find: %w", err)
	}

	record, err := r.store.FindOne(ctx, filter, proj)
	if err != nil {
		return nil, err
	}

	record, err = ExistsOrFail(record)
	if err != nil {
		r.logger.WithField("filter", filter).Debug("record not found")
		return nil, err
	}

	return Normalize[T, PT](record), nil
}

// Create inserts the record and returns it as stored. Timestamped records get
// their timestamps set first.
func (r *Repository[T, PT]) Create(ctx context.Context, record *T) (*T, error) {
	if record == nil {
		return nil, fmt.Errorf("cannot create: %w", contractViolation("nil record"))
	}

	if ts, ok := any(record).(Timestamped); ok {
		ts.Touch(r.now())
	}

	stored, err := r.store.Insert(ctx, record)
	if err != nil {
		return nil, err
	}

	stored, err = ExistsOrFail(stored)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("record created")

	return Normalize[T, PT](stored), nil
}

// Update sets the patched fields on the first record matching filter and
// returns the record after the update. The last-modified timestamp of
// Timestamped records is bumped unless the patch sets it.
func (r *Repository[T, PT]) Update(ctx context.Context, filter Filter[T], patch Patch[T]) (*T, error) {
	if err := r.validateWrite(filter, patch); err != nil {
		return nil, fmt.Errorf("cannot update: %w", err)
	}

	if r.isTimestamped() && !patch.Has(UpdatedAtKey) {
		patch = append(patch[:len(patch):len(patch)], UpdatedAt[T]().Set(r.now()))
	}

	record, err := r.store.FindOneAndUpdate(ctx, filter, patch)
	if err != nil {
		return nil, err
	}

	record, err = ExistsOrFail(record)
	if err != nil {
		r.logger.WithField("filter", filter).Debug("nothing to update")
		return nil, err
	}

	r.logger.WithField("fields", len(patch)).Debug("record updated")

	return Normalize[T, PT](record), nil
}

// Delete removes the first record matching filter and returns it.
func (r *Repository[T, PT]) Delete(ctx context.Context, filter Filter[T]) (*T, error) {
	if err := filter.validate(r.schema); err != nil {
		return nil, fmt.Errorf("cannot delete: %w", err)
	}

	record, err := r.store.FindOneAndDelete(ctx, filter)
	if err != nil {
		return nil, err
	}

	record, err = ExistsOrFail(record)
	if err != nil {
		r.logger.WithField("filter", filter).Debug("nothing to delete")
		return nil, err
	}

	r.logger.Debug("record deleted")

	return Normalize[T, PT](record), nil
}

// Exists reports whether at least one record matches filter.
func (r *Repository[T, PT]) Exists(ctx context.Context, filter Filter[T]) (bool, error) {
	if err := filter.validate(r.schema); err != nil {
		return false, fmt.Errorf("cannot check existence: %w", err)
	}

	return r.store.Exists(ctx, filter)
}

// MustExist fails with ErrNotFound when no record matches filter.
func (r *Repository[T, PT]) MustExist(ctx context.Context, filter Filter[T]) error {
	found, err := r.Exists(ctx, filter)
	if err != nil {
		return err
	}

	_, err = EnsureFound(struct{}{}, found)

	return err
}

func (r *Repository[T, PT]) now() time.Time {
	return canonicalTime(r.clock())
}

func (r *Repository[T, PT]) isTimestamped() bool {
	_, ok := any(PT(new(T))).(Timestamped)
	return ok && r.schema.Has(UpdatedAtKey)
}

func (r *Repository[T, PT]) validateRead(filter Filter[T], proj Projection[T]) error {
	if err := filter.validate(r.schema); err != nil {
		return err
	}

	return proj.validate(r.schema)
}

func (r *Repository[T, PT]) validateWrite(filter Filter[T], patch Patch[T]) error {
	if err := filter.validate(r.schema); err != nil {
		return err
	}

	return patch.validate(r.schema)
}

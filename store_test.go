package leandb

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"
)

type item struct {
	Base[string] `bson:",inline"`
	Timestamps   `bson:",inline"`
	TS           int    `bson:"ts"`
	Name         string `bson:"name"`
}

var (
	itemTS        = NewField("ts", func(i *item) int { return i.TS })
	itemName      = NewField("name", func(i *item) string { return i.Name })
	itemUpdatedAt = UpdatedAt[item]()
)

// Getters map stored field names to record values, the way a store reads them.
type Getters[T any] map[string]func(*T) any

var _itemGetters = Getters[item]{
	InternalIDKey: func(i *item) any { return i.InternalID },
	CreatedAtKey:  func(i *item) any { return i.CreatedAt },
	UpdatedAtKey:  func(i *item) any { return i.UpdatedAt },
	"ts":          func(i *item) any { return i.TS },
	"name":        func(i *item) any { return i.Name },
}

func setItemField(i *item, field string, value any) {
	switch field {
	case CreatedAtKey:
		i.CreatedAt = value.(time.Time)
	case UpdatedAtKey:
		i.UpdatedAt = value.(time.Time)
	case "ts":
		i.TS = value.(int)
	case "name":
		i.Name = value.(string)
	default:
		panic(fmt.Errorf("cannot set field '%s'", field))
	}
}

type fakeFind[T any] struct {
	filter     Filter[T]
	projection Projection[T]
	sortField  string
	direction  Direction
	limit      *int
}

// fakeStore is an in-memory Store. Like MongoDB, a zero limit means no limit.
type fakeStore[T any] struct {
	records  []T
	getters  Getters[T]
	set      func(*T, string, any)
	assignID func(*T, int)
	nextID   int
	err      error

	finds  []*fakeFind[T]
	probes []Filter[T]
}

func newItemStore(records ...item) *fakeStore[item] {
	return &fakeStore[item]{
		records:  records,
		getters:  _itemGetters,
		set:      setItemField,
		assignID: func(i *item, n int) {
			if i.InternalID == "" {
				i.InternalID = "gen" + strconv.Itoa(n)
			}
		},
	}
}

// seedItems stores n items with ts 1..n in insertion order.
func seedItems(n int) *fakeStore[item] {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s := newItemStore()
	for i := 1; i <= n; i++ {
		var it item
		it.InternalID = "id" + strconv.Itoa(i)
		it.TS = i
		it.Name = "item" + strconv.Itoa(i)
		it.UpdatedAt = base.Add(time.Duration(i) * time.Second)
		s.records = append(s.records, it)
	}

	return s
}

func (s *fakeStore[T]) match(rec *T, filter Filter[T]) bool {
	for _, c := range filter {
		get, ok := s.getters[c.Field]
		if !ok {
			return false
		}

		cmp := compareValues(get(rec), c.Value)
		switch c.Operator {
		case OperatorEq:
			ok = cmp == 0
		case OperatorNe:
			ok = cmp != 0
		case OperatorGT:
			ok = cmp > 0
		case OperatorGTE:
			ok = cmp >= 0
		case OperatorLT:
			ok = cmp < 0
		case OperatorLTE:
			ok = cmp <= 0
		}

		if !ok {
			return false
		}
	}

	return true
}

func (s *fakeStore[T]) indexOf(filter Filter[T]) int {
	for i := range s.records {
		if s.match(&s.records[i], filter) {
			return i
		}
	}

	return -1
}

func (s *fakeStore[T]) Find(filter Filter[T], projection Projection[T]) Query[T] {
	f := &fakeFind[T]{filter: filter, projection: projection}
	s.finds = append(s.finds, f)

	return &fakeQuery[T]{store: s, find: f}
}

func (s *fakeStore[T]) FindOne(_ context.Context, filter Filter[T], _ Projection[T]) (*T, error) {
	if s.err != nil {
		return nil, s.err
	}

	idx := s.indexOf(filter)
	if idx < 0 {
		return nil, nil
	}

	ret := s.records[idx]
	return &ret, nil
}

func (s *fakeStore[T]) Exists(_ context.Context, filter Filter[T]) (bool, error) {
	s.probes = append(s.probes, filter)
	if s.err != nil {
		return false, s.err
	}

	return s.indexOf(filter) >= 0, nil
}

func (s *fakeStore[T]) Insert(_ context.Context, record *T) (*T, error) {
	if s.err != nil {
		return nil, s.err
	}

	s.nextID++
	stored := *record
	if s.assignID != nil {
		s.assignID(&stored, s.nextID)
	}

	s.records = append(s.records, stored)

	return &stored, nil
}

func (s *fakeStore[T]) FindOneAndUpdate(_ context.Context, filter Filter[T], patch Patch[T]) (*T, error) {
	if s.err != nil {
		return nil, s.err
	}

	idx := s.indexOf(filter)
	if idx < 0 {
		return nil, nil
	}

	for _, a := range patch {
		s.set(&s.records[idx], a.Field, a.Value)
	}

	ret := s.records[idx]
	return &ret, nil
}

func (s *fakeStore[T]) FindOneAndDelete(_ context.Context, filter Filter[T]) (*T, error) {
	if s.err != nil {
		return nil, s.err
	}

	idx := s.indexOf(filter)
	if idx < 0 {
		return nil, nil
	}

	ret := s.records[idx]
	s.records = slices.Delete(s.records, idx, idx+1)

	return &ret, nil
}

type fakeQuery[T any] struct {
	store *fakeStore[T]
	find  *fakeFind[T]
}

func (q *fakeQuery[T]) Sort(field string, direction Direction) Query[T] {
	q.find.sortField = field
	q.find.direction = direction

	return q
}

func (q *fakeQuery[T]) Limit(n int) Query[T] {
	q.find.limit = &n

	return q
}

func (q *fakeQuery[T]) All(context.Context) ([]T, error) {
	s := q.store
	if s.err != nil {
		return nil, s.err
	}

	ret := make([]T, 0)
	for i := range s.records {
		if s.match(&s.records[i], q.find.filter) {
			ret = append(ret, s.records[i])
		}
	}

	if get, ok := s.getters[q.find.sortField]; ok {
		slices.SortStableFunc(ret, func(a, b T) int {
			cmp := compareValues(get(&a), get(&b))
			if q.find.direction == DirectionDESC {
				return -cmp
			}

			return cmp
		})
	}

	if q.find.limit != nil && *q.find.limit > 0 && *q.find.limit < len(ret) {
		ret = ret[:*q.find.limit]
	}

	return ret, nil
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case int:
		return av - b.(int)
	case string:
		bv := fmt.Sprint(b)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case time.Time:
		return av.Compare(b.(time.Time))
	default:
		panic(fmt.Errorf("cannot compare %T", a))
	}
}

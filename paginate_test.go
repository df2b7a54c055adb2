package leandb

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func collectTS(items []item) []int {
	ret := make([]int, 0, len(items))
	for _, it := range items {
		ret = append(ret, it.TS)
	}

	return ret
}

func Test_PaginateBy_VisitsEveryRecordOnce(t *testing.T) {
	tests := []struct {
		name  string
		total int
		limit int
		pages int
	}{
		{"partial last page", 25, 7, 4},
		{"exact multiple of limit", 21, 7, 3},
		{"single page", 3, 20, 1},
		{"one record per page", 4, 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			r := NewRepository[item](seedItems(tt.total))

			cursor := NewCursor(itemTS).WithLimit(tt.limit)

			var (
				seen  []int
				pages int
			)
			for {
				res, err := PaginateBy(ctx, r, nil, cursor)
				require.NoError(t, err)

				pages++
				seen = append(seen, collectTS(res.Items)...)
				if !res.HasMore {
					break
				}

				require.Len(t, res.Items, tt.limit)
				cursor = res.Cursor
			}

			want := make([]int, 0, tt.total)
			for i := tt.total; i >= 1; i-- {
				want = append(want, i)
			}

			require.Equal(t, want, seen)
			require.Equal(t, tt.pages, pages)
		})
	}
}

func Test_PaginateBy_Scenario(t *testing.T) {
	ctx := context.Background()
	store := seedItems(3)
	r := NewRepository[item](store)

	res, err := PaginateBy(ctx, r, nil, NewCursor(itemTS).WithLimit(2))
	require.NoError(t, err)
	require.Equal(t, []int{3, 2}, collectTS(res.Items))
	require.True(t, res.HasMore)

	from, ok := res.Cursor.GetFrom()
	require.True(t, ok)
	require.Equal(t, 2, from)

	var raw RawCursor
	require.NoError(t, json.Unmarshal([]byte(`{"field":"ts","from":2,"limit":2}`), &raw))

	next, err := DecodeCursor(raw, itemTS)
	require.NoError(t, err)

	res, err = PaginateBy(ctx, r, nil, next)
	require.NoError(t, err)
	require.Equal(t, []int{1}, collectTS(res.Items))
	require.False(t, res.HasMore)
}

func Test_PaginateBy_EmptyPage(t *testing.T) {
	ctx := context.Background()

	t.Run("empty collection", func(t *testing.T) {
		store := newItemStore()
		r := NewRepository[item](store)
		cursor := NewCursor(itemTS)

		res, err := PaginateBy(ctx, r, nil, cursor)
		require.NoError(t, err)
		require.NotNil(t, res.Items)
		require.Empty(t, res.Items)
		require.False(t, res.HasMore)
		require.True(t, res.Cursor.IsFirstPage())
		require.Equal(t, cursor.GetLimit(), res.Cursor.GetLimit())
		require.Empty(t, store.probes)
	})

	t.Run("past the last record", func(t *testing.T) {
		r := NewRepository[item](seedItems(3))

		res, err := PaginateBy(ctx, r, nil, NewCursor(itemTS).WithFrom(1))
		require.NoError(t, err)
		require.Empty(t, res.Items)
		require.False(t, res.HasMore)

		from, ok := res.Cursor.GetFrom()
		require.True(t, ok)
		require.Equal(t, 1, from)
	})
}

func Test_Repository_Paginate_DefaultCursor(t *testing.T) {
	ctx := context.Background()
	store := seedItems(30)
	r := NewRepository[item](store)

	res, err := r.Paginate(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, res.Items, DefaultLimit)
	require.True(t, res.HasMore)

	require.Len(t, store.finds, 1)
	find := store.finds[0]
	require.Equal(t, UpdatedAtKey, find.sortField)
	require.Equal(t, DirectionDESC, find.direction)
	require.NotNil(t, find.limit)
	require.Equal(t, DefaultLimit, *find.limit)

	last := res.Items[len(res.Items)-1]
	from, ok := res.Cursor.GetFrom()
	require.True(t, ok)
	require.True(t, last.UpdatedAt.Equal(from))
	require.Equal(t, time.UTC, from.Location())

	res, err = r.Paginate(ctx, nil, res.Cursor)
	require.NoError(t, err)
	require.Equal(t, []int{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, collectTS(res.Items))
	require.False(t, res.HasMore)
}

func Test_PaginateBy_SubMillisecondTimestamps(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 500_000, time.UTC)

	store := newItemStore()
	for i, offset := range []time.Duration{0, 300 * time.Microsecond, 700 * time.Microsecond} {
		var it item
		it.InternalID = "id" + strconv.Itoa(i+1)
		it.TS = i + 1
		it.UpdatedAt = base.Add(offset)
		store.records = append(store.records, it)
	}

	r := NewRepository[item](store)
	cursor := NewCursor(itemUpdatedAt).WithLimit(1)

	var seen []int
	for {
		res, err := PaginateBy(ctx, r, nil, cursor)
		require.NoError(t, err)

		seen = append(seen, collectTS(res.Items)...)
		if !res.HasMore {
			break
		}

		tok, err := res.Cursor.Token()
		require.NoError(t, err)

		cursor, err = DecodeCursorToken(tok, itemUpdatedAt)
		require.NoError(t, err)
	}

	require.Equal(t, []int{3, 2, 1}, seen)
}

func Test_PaginateBy_LimitCoercion(t *testing.T) {
	ctx := context.Background()

	fromString, err := NewCursor(itemTS).WithRawLimit("5")
	require.NoError(t, err)

	fromInt := NewCursor(itemTS).WithLimit(5)

	r := NewRepository[item](seedItems(12))

	a, err := PaginateBy(ctx, r, nil, fromString)
	require.NoError(t, err)

	b, err := PaginateBy(ctx, r, nil, fromInt)
	require.NoError(t, err)

	require.Equal(t, collectTS(b.Items), collectTS(a.Items))
	require.Equal(t, b.HasMore, a.HasMore)
	require.Equal(t, 5, a.Cursor.GetLimit())
}

func Test_PaginateBy_LimitPassthrough(t *testing.T) {
	ctx := context.Background()

	for _, limit := range []int{0, -1} {
		store := seedItems(3)
		r := NewRepository[item](store)

		res, err := PaginateBy(ctx, r, nil, NewCursor(itemTS).WithLimit(limit))
		require.NoError(t, err)
		require.Equal(t, limit, *store.finds[0].limit)
		require.Equal(t, limit, res.Cursor.GetLimit())
	}
}

func Test_PaginateBy_ExistenceProbe(t *testing.T) {
	ctx := context.Background()
	store := seedItems(10)
	r := NewRepository[item](store)

	base := Where(itemName.Ne("item5"))

	res, err := PaginateBy(ctx, r, base, NewCursor(itemTS).WithLimit(3).WithFrom(9))
	require.NoError(t, err)
	require.Equal(t, []int{8, 7, 6}, collectTS(res.Items))
	require.True(t, res.HasMore)

	require.Len(t, base, 1)
	require.Equal(t, Where(itemName.Ne("item5"), itemTS.Lt(9)), store.finds[0].filter)
	require.Equal(t, 3, *store.finds[0].limit)

	require.Len(t, store.probes, 1)
	require.Equal(t, Where(itemName.Ne("item5"), itemTS.Lt(6)), store.probes[0])
}

func Test_PaginateBy_FilterOnCursorField(t *testing.T) {
	ctx := context.Background()
	store := seedItems(20)
	r := NewRepository[item](store)

	res, err := PaginateBy(ctx, r, Where(itemTS.Lt(5)), NewCursor(itemTS).WithFrom(15))
	require.NoError(t, err)
	require.Equal(t, []int{4, 3, 2, 1}, collectTS(res.Items))
	require.False(t, res.HasMore)
	require.Len(t, store.finds[0].filter, 2)
}

func Test_PaginateBy_ContractViolations(t *testing.T) {
	ctx := context.Background()
	undeclared := NewField("missing", func(*item) int { return 0 })

	tests := []struct {
		name       string
		filter     Filter[item]
		cursor     *Cursor[item, int]
		projection []Projection[item]
	}{
		{"nil cursor", nil, nil, nil},
		{"undeclared cursor field", nil, NewCursor(undeclared), nil},
		{"undeclared filter field", Where(undeclared.Eq(1)), NewCursor(itemTS), nil},
		{"invalid operator", Where(Condition[item]{Field: "ts", Operator: "~"}), NewCursor(itemTS), nil},
		{"undeclared projection field", nil, NewCursor(itemTS), []Projection[item]{Project[item](undeclared)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seedItems(3)
			r := NewRepository[item](store)

			_, err := PaginateBy(ctx, r, tt.filter, tt.cursor, tt.projection...)
			require.ErrorIs(t, err, ErrContractViolation)
			require.Empty(t, store.finds)
		})
	}
}

func Test_PaginateBy_StoreFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection reset")

	store := seedItems(3)
	store.err = boom
	r := NewRepository[item](store)

	_, err := PaginateBy(ctx, r, nil, NewCursor(itemTS))
	require.Equal(t, boom, err)
}

func Test_PaginateBy_Projection(t *testing.T) {
	ctx := context.Background()
	store := seedItems(3)
	r := NewRepository[item](store)

	res, err := PaginateBy(ctx, r, nil, NewCursor(itemTS), Project[item](itemName))
	require.NoError(t, err)

	proj := store.finds[0].projection
	require.True(t, proj.Includes("ts"))
	require.True(t, proj.Includes("name"))
	require.False(t, proj.Includes(UpdatedAtKey))

	views := res.Views()
	require.Len(t, views, 3)

	name, err := Pluck(views[0], itemName)
	require.NoError(t, err)
	require.Equal(t, "item3", name)

	_, err = Pluck(views[0], itemUpdatedAt)
	require.ErrorIs(t, err, ErrContractViolation)
}

func Test_PaginateBy_Normalizes(t *testing.T) {
	r := NewRepository[item](seedItems(2))

	res, err := PaginateBy(context.Background(), r, nil, NewCursor(itemTS))
	require.NoError(t, err)

	for _, it := range res.Items {
		require.Equal(t, it.InternalID, it.ID)
	}
}

func Test_PaginateBy_Logging(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	r := NewRepository[item](seedItems(2), WithLogger(logger), WithName("items"))

	_, err := PaginateBy(context.Background(), r, nil, NewCursor(itemTS))
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, "page fetched", entry.Message)
	require.Equal(t, "items", entry.Data["collection"])
	require.Equal(t, "ts", entry.Data["field"])
	require.Equal(t, false, entry.Data["hasMore"])
}

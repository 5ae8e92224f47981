package query

import (
	"errors"
	"math"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "voyageiq/pkg/errors"
)

var tourKinds = Kinds{
	"price":      KindFloat,
	"duration":   KindInt,
	"difficulty": KindString,
	"startDates": KindTime,
	"secret":     KindBool,
}

func mustParse(t *testing.T, raw string) Descriptor {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	d, err := Parse(values, Options{Kinds: tourKinds})
	require.NoError(t, err)
	return d
}

func TestParse_Defaults(t *testing.T) {
	d := mustParse(t, "")

	assert.Empty(t, d.Filter)
	assert.Equal(t, []SortField{{Field: FieldCreatedAt, Descending: true}}, d.Sort)
	assert.Empty(t, d.Include)
	assert.Equal(t, []string{FieldVersion}, d.Exclude)
	assert.Equal(t, DefaultPage, d.Page)
	assert.Equal(t, DefaultLimit, d.Limit)
	assert.Equal(t, int64(0), d.Skip())
}

func TestParse_StripsReservedKeys(t *testing.T) {
	d := mustParse(t, "page=2&limit=5&sort=price&fields=name&difficulty=easy")

	assert.Equal(t, map[string]any{"difficulty": "easy"}, d.Filter)
	assert.Equal(t, 2, d.Page)
	assert.Equal(t, 5, d.Limit)
	assert.Equal(t, int64(5), d.Skip())
}

func TestParse_RewritesComparisonOperators(t *testing.T) {
	d := mustParse(t, "price[gte]=100&price[lt]=500.5&duration[lte]=7")

	assert.Equal(t, map[string]any{"$gte": float64(100), "$lt": 500.5}, d.Filter["price"])
	assert.Equal(t, map[string]any{"$lte": int64(7)}, d.Filter["duration"])
}

func TestParse_RepeatedKeysBecomeIn(t *testing.T) {
	d := mustParse(t, "difficulty=easy&difficulty=medium")

	assert.Equal(t, map[string]any{"$in": []any{"easy", "medium"}}, d.Filter["difficulty"])
}

func TestParse_EqualityAndRangeOnOneField(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  map[string]any
	}{
		{
			name:  "equality then range",
			query: "price=50&price[gte]=100",
			want:  map[string]any{"$eq": float64(50), "$gte": float64(100)},
		},
		{
			name:  "repeated equality then range",
			query: "price=50&price=60&price[lt]=55",
			want:  map[string]any{"$in": []any{float64(50), float64(60)}, "$lt": float64(55)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := mustParse(t, tt.query)
			assert.Equal(t, tt.want, d.Filter["price"])
		})
	}
}

func TestParse_IDFiltersOnStoreKey(t *testing.T) {
	kinds := Kinds{FieldID: KindString}
	tests := []struct {
		name  string
		query string
		want  any
	}{
		{"equality", "id=5c88fa8cf4afda39709c2951", "5c88fa8cf4afda39709c2951"},
		{"repeated", "id=a&id=b", map[string]any{"$in": []any{"a", "b"}}},
		{"operator", "id[gt]=5c88fa8cf4afda39709c2951", map[string]any{"$gt": "5c88fa8cf4afda39709c2951"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			d, err := Parse(values, Options{Kinds: kinds})
			require.NoError(t, err)

			assert.Equal(t, map[string]any{FieldID: tt.want}, d.Filter)
		})
	}
}

func TestDescriptor_Skip(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		limit int
		want  int64
	}{
		{"first page", 1, 10, 0},
		{"third page", 3, 25, 50},
		{"zero page", 0, 10, 0},
		{"no limit", 5, 0, 0},
		{"huge page saturates", 100000000000000000, 100, math.MaxInt64},
		{"max page saturates", math.MaxInt, 2, math.MaxInt64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Descriptor{Page: tt.page, Limit: tt.limit}.Skip())
		})
	}
}

func TestParse_HugePageDoesNotOverflow(t *testing.T) {
	d := mustParse(t, "page=100000000000000000&limit=100")

	assert.Equal(t, 100000000000000000, d.Page)
	assert.Equal(t, 100, d.Limit)
	assert.Equal(t, int64(math.MaxInt64), d.Skip())
}

func TestParse_CastsByKind(t *testing.T) {
	d := mustParse(t, "secret=true&startDates[gte]=2026-06-01&name=12345")

	assert.Equal(t, true, d.Filter["secret"])
	assert.Equal(t, map[string]any{"$gte": time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)}, d.Filter["startDates"])
	assert.Equal(t, "12345", d.Filter["name"], "fields without a kind stay strings")
}

func TestParse_SortAndProjection(t *testing.T) {
	d := mustParse(t, "sort=price,-ratingsAverage&fields=name,price,summary")

	assert.Equal(t, []SortField{
		{Field: "price"},
		{Field: "ratingsAverage", Descending: true},
	}, d.Sort)
	assert.Equal(t, []string{"name", "price", "summary"}, d.Include)
	assert.Empty(t, d.Exclude)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		check func(t *testing.T, err error)
	}{
		{
			name:  "uncastable number",
			query: "price[gte]=cheap",
			check: func(t *testing.T, err error) {
				var castErr *apperrors.CastError
				require.True(t, errors.As(err, &castErr))
				assert.Equal(t, "price", castErr.Path)
				assert.Equal(t, "cheap", castErr.Value)
			},
		},
		{
			name:  "unsupported operator",
			query: "price[ne]=5",
			check: func(t *testing.T, err error) {
				appErr, ok := apperrors.AsAppError(err)
				require.True(t, ok)
				assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
				assert.Equal(t, "Unsupported filter operator: ne", appErr.Message)
			},
		},
		{
			name:  "operator injection in field",
			query: "$where=1",
			check: func(t *testing.T, err error) {
				appErr, ok := apperrors.AsAppError(err)
				require.True(t, ok)
				assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
			},
		},
		{
			name:  "operator injection in sort",
			query: "sort=-$natural",
			check: func(t *testing.T, err error) {
				require.True(t, apperrors.IsAppError(err))
			},
		},
		{
			name:  "operator injection in fields",
			query: "fields=name,$comment",
			check: func(t *testing.T, err error) {
				require.True(t, apperrors.IsAppError(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			_, err = Parse(values, Options{Kinds: tourKinds})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestNormalizePage(t *testing.T) {
	tests := map[string]int{
		"":    1,
		"abc": 1,
		"0":   1,
		"-3":  1,
		"4":   4,
		" 2 ": 2,

		"99999999999999999999":  math.MaxInt,
		"-99999999999999999999": 1,
	}
	for raw, want := range tests {
		assert.Equal(t, want, NormalizePage(raw), "raw=%q", raw)
	}
}

func TestNormalizeLimit(t *testing.T) {
	tests := map[string]int{
		"":       10,
		"ten":    10,
		"0":      10,
		"-1":     10,
		"1":      1,
		"100":    100,
		"999999": 100,
	}
	for raw, want := range tests {
		assert.Equal(t, want, NormalizeLimit(raw, DefaultLimit, MaxLimit), "raw=%q", raw)
	}
}

type Embedded struct {
	ID        string    `bson:"_id,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
}

type sample struct {
	Embedded   `bson:",inline"`
	Name       string      `bson:"name"`
	Price      float64     `bson:"price"`
	Group      *int        `bson:"maxGroupSize"`
	Tags       []string    `bson:"tags"`
	StartDates []time.Time `bson:"startDates"`
	Paid       bool        `bson:"paid"`
	Hidden     string      `bson:"-"`
}

func TestKindsOf(t *testing.T) {
	kinds := KindsOf(&sample{})

	assert.Equal(t, Kinds{
		"_id":          KindString,
		"createdAt":    KindTime,
		"name":         KindString,
		"price":        KindFloat,
		"maxGroupSize": KindInt,
		"tags":         KindString,
		"startDates":   KindTime,
		"paid":         KindBool,
	}, kinds)
}

package resource_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "voyageiq/pkg/errors"
	"voyageiq/pkg/events"
	"voyageiq/pkg/model"
	"voyageiq/pkg/resource"
	"voyageiq/pkg/resource/resourcetest"
)

const missingID = "5c88fa8cf4afda39709c2999"

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

// tickingClock returns a clock that advances one minute per call.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Minute)
		return now
	}
}

type fixture struct {
	store      *resourcetest.MemStore[model.Tour]
	publisher  *recordingPublisher
	controller *resource.Controller[model.Tour, model.TourUpdate]
}

func newFixture() *fixture {
	store := resourcetest.NewMemStore[model.Tour]()
	publisher := &recordingPublisher{}
	return &fixture{
		store:     store,
		publisher: publisher,
		controller: resource.NewController[model.Tour, model.TourUpdate](store, resource.Options{
			Name:      "Tour",
			Publisher: publisher,
			Now:       tickingClock(),
		}),
	}
}

func newTour(name string, price float64) *model.Tour {
	return &model.Tour{
		Name:         name,
		Duration:     5,
		MaxGroupSize: 10,
		Difficulty:   model.DifficultyEasy,
		Price:        &price,
		Summary:      "A tour used in tests",
	}
}

func (f *fixture) seed(t *testing.T, n int) []*model.Tour {
	t.Helper()
	tours := make([]*model.Tour, 0, n)
	for i := 1; i <= n; i++ {
		tour, err := f.controller.Create(context.Background(), newTour(fmt.Sprintf("Tour number %02d", i), float64(i*25)))
		require.NoError(t, err)
		tours = append(tours, tour)
	}
	return tours
}

func requireAppError(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	appErr := apperrors.Classify(err)
	assert.Equal(t, status, appErr.StatusCode)
	assert.Equal(t, message, appErr.Message)
}

func TestController_CreateAssignsServerFields(t *testing.T) {
	f := newFixture()
	in := newTour("The Forest Hiker", 397)
	in.ID = "client-chosen-id"

	created, err := f.controller.Create(context.Background(), in)
	require.NoError(t, err)

	assert.NotEqual(t, "client-chosen-id", created.ID)
	assert.Len(t, created.ID, 24)
	require.NotNil(t, created.CreatedAt)
	assert.Equal(t, model.DefaultRatingsAverage, created.RatingsAverage)

	got, err := f.controller.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Price, got.Price)
	assert.True(t, created.CreatedAt.Equal(*got.CreatedAt))
	assert.Equal(t, []string{"tour.created"}, f.publisher.types())
}

func TestController_ListPagination(t *testing.T) {
	f := newFixture()
	f.seed(t, 12)

	first, err := f.controller.List(context.Background(), url.Values{}, nil)
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, int64(12), first.Pagination.TotalItems)
	assert.Equal(t, 2, first.Pagination.TotalPages)
	assert.True(t, first.Pagination.HasNextPage)
	assert.False(t, first.Pagination.HasPrevPage)
	assert.Equal(t, "Tour number 12", first.Items[0].Name, "newest first by default")

	second, err := f.controller.List(context.Background(), url.Values{"page": {"2"}}, nil)
	require.NoError(t, err)
	assert.Len(t, second.Items, 2)
	assert.False(t, second.Pagination.HasNextPage)
	assert.True(t, second.Pagination.HasPrevPage)

	beyond, err := f.controller.List(context.Background(), url.Values{"page": {"5"}}, nil)
	require.NoError(t, err)
	assert.NotNil(t, beyond.Items)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 2, beyond.Pagination.TotalPages)
}

func TestController_ListQuery(t *testing.T) {
	f := newFixture()
	tours := f.seed(t, 6) // prices 25, 50, ..., 150

	tests := []struct {
		name      string
		values    url.Values
		wantNames []string
		wantTotal int64
	}{
		{
			name:      "range filter",
			values:    url.Values{"price[gte]": {"100"}, "sort": {"price"}},
			wantNames: []string{"Tour number 04", "Tour number 05", "Tour number 06"},
			wantTotal: 3,
		},
		{
			name:      "combined bounds",
			values:    url.Values{"price[gt]": {"25"}, "price[lt]": {"100"}, "sort": {"-price"}},
			wantNames: []string{"Tour number 03", "Tour number 02"},
			wantTotal: 2,
		},
		{
			name:      "equality on cast number",
			values:    url.Values{"price": {"75"}},
			wantNames: []string{"Tour number 03"},
			wantTotal: 1,
		},
		{
			name:      "repeated key",
			values:    url.Values{"name": {"Tour number 01", "Tour number 06"}, "sort": {"name"}},
			wantNames: []string{"Tour number 01", "Tour number 06"},
			wantTotal: 2,
		},
		{
			name:      "limit and page",
			values:    url.Values{"sort": {"price"}, "limit": {"4"}, "page": {"2"}},
			wantNames: []string{"Tour number 05", "Tour number 06"},
			wantTotal: 6,
		},
		{
			name:      "equality within range",
			values:    url.Values{"price": {"75"}, "price[gte]": {"50"}},
			wantNames: []string{"Tour number 03"},
			wantTotal: 1,
		},
		{
			name:      "equality outside range",
			values:    url.Values{"price": {"75"}, "price[gte]": {"100"}},
			wantNames: []string{},
			wantTotal: 0,
		},
		{
			name:      "id filter",
			values:    url.Values{"id": {tours[2].ID}},
			wantNames: []string{"Tour number 03"},
			wantTotal: 1,
		},
		{
			name:      "page far past the end",
			values:    url.Values{"page": {"100000000000000000"}, "limit": {"100"}},
			wantNames: []string{},
			wantTotal: 6,
		},
		{
			name:      "non numeric paging falls back",
			values:    url.Values{"sort": {"price"}, "limit": {"many"}, "page": {"first"}},
			wantNames: []string{"Tour number 01", "Tour number 02", "Tour number 03", "Tour number 04", "Tour number 05", "Tour number 06"},
			wantTotal: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.controller.List(context.Background(), tt.values, nil)
			require.NoError(t, err)

			names := make([]string, 0, len(page.Items))
			for _, item := range page.Items {
				names = append(names, item.Name)
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantTotal, page.Pagination.TotalItems)
		})
	}
}

func TestController_ListProjection(t *testing.T) {
	f := newFixture()
	f.seed(t, 1)

	page, err := f.controller.List(context.Background(), url.Values{"fields": {"name"}}, nil)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Tour number 01", page.Items[0].Name)
	assert.NotEmpty(t, page.Items[0].ID)
	assert.Nil(t, page.Items[0].Price)
}

func TestController_ListRejectsBadQueries(t *testing.T) {
	f := newFixture()

	_, err := f.controller.List(context.Background(), url.Values{"price[ne]": {"5"}}, nil)
	requireAppError(t, err, http.StatusBadRequest, "Unsupported filter operator: ne")

	_, err = f.controller.List(context.Background(), url.Values{"price": {"cheap"}}, nil)
	requireAppError(t, err, http.StatusBadRequest, "Invalid price: cheap.")

	_, err = f.controller.List(context.Background(), url.Values{"$where": {"1"}}, nil)
	requireAppError(t, err, http.StatusBadRequest, "Invalid filter field: $where")

	assert.Zero(t, f.store.TotalCalls())
}

func TestController_ListScope(t *testing.T) {
	f := newFixture()
	f.seed(t, 3)

	page, err := f.controller.List(context.Background(),
		url.Values{"name": {"Tour number 01"}},
		map[string]any{"name": "Tour number 02"},
	)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Tour number 02", page.Items[0].Name)
}

func TestController_ListPropagatesStoreErrors(t *testing.T) {
	f := newFixture()
	boom := errors.New("connection reset")
	f.store.FailWith("Count", boom)

	_, err := f.controller.List(context.Background(), url.Values{}, nil)
	assert.ErrorIs(t, err, boom)
}

func TestController_InvalidIDNeverReachesStore(t *testing.T) {
	f := newFixture()
	price := 10.0

	_, err := f.controller.Get(context.Background(), "123")
	requireAppError(t, err, http.StatusBadRequest, "Invalid Tour ID")

	_, err = f.controller.Update(context.Background(), "not-an-object-id", &model.TourUpdate{Price: &price})
	requireAppError(t, err, http.StatusBadRequest, "Invalid Tour ID")

	err = f.controller.Delete(context.Background(), "zzzzzzzzzzzzzzzzzzzzzzzz")
	requireAppError(t, err, http.StatusBadRequest, "Invalid Tour ID")

	assert.Zero(t, f.store.TotalCalls())
}

func TestController_CustomIDValidator(t *testing.T) {
	store := resourcetest.NewMemStore[model.Tour]()
	c := resource.NewController[model.Tour, model.TourUpdate](store, resource.Options{
		Name:    "Tour",
		ValidID: func(id string) bool { return len(id) == 24 },
	})

	_, err := c.Get(context.Background(), missingID)
	requireAppError(t, err, http.StatusNotFound, "Tour not found")
	assert.Equal(t, 1, store.Calls("FindByID"))
}

func TestController_NotFound(t *testing.T) {
	f := newFixture()
	price := 10.0

	_, err := f.controller.Get(context.Background(), missingID)
	requireAppError(t, err, http.StatusNotFound, "Tour not found")

	_, err = f.controller.Update(context.Background(), missingID, &model.TourUpdate{Price: &price})
	requireAppError(t, err, http.StatusNotFound, "Tour not found")

	err = f.controller.Delete(context.Background(), missingID)
	requireAppError(t, err, http.StatusNotFound, "Tour not found")
}

func TestController_Update(t *testing.T) {
	f := newFixture()
	tour := f.seed(t, 1)[0]

	price := 497.0
	summary := "Now with a lake crossing"
	updated, err := f.controller.Update(context.Background(), tour.ID, &model.TourUpdate{Price: &price, Summary: &summary})
	require.NoError(t, err)

	require.NotNil(t, updated.Price)
	assert.Equal(t, 497.0, *updated.Price)
	assert.Equal(t, summary, updated.Summary)
	assert.Equal(t, tour.Name, updated.Name)
	assert.Equal(t, 1, f.store.Version(tour.ID))

	unchanged, err := f.controller.Update(context.Background(), tour.ID, &model.TourUpdate{})
	require.NoError(t, err)
	require.NotNil(t, unchanged.Price)
	assert.Equal(t, 497.0, *unchanged.Price)
	assert.Equal(t, 1, f.store.Version(tour.ID))
	assert.Equal(t, 1, f.store.Calls("UpdateByID"), "an empty update must not write")

	assert.Equal(t, []string{"tour.created", "tour.updated"}, f.publisher.types())
}

func TestController_DeleteTwice(t *testing.T) {
	f := newFixture()
	tour := f.seed(t, 1)[0]

	require.NoError(t, f.controller.Delete(context.Background(), tour.ID))

	err := f.controller.Delete(context.Background(), tour.ID)
	requireAppError(t, err, http.StatusNotFound, "Tour not found")

	_, err = f.controller.Get(context.Background(), tour.ID)
	requireAppError(t, err, http.StatusNotFound, "Tour not found")

	assert.Equal(t, []string{"tour.created", "tour.deleted"}, f.publisher.types())
}

func TestController_PublishFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("broker down")

	created, err := f.controller.Create(context.Background(), newTour("The Sea Explorer", 497))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, f.store.Calls("Insert"))
}

func TestController_Messages(t *testing.T) {
	f := newFixture()
	assert.Equal(t, "Tour created successfully", f.controller.Message(resource.VerbCreated))
	assert.Equal(t, "Tour retrieved successfully", f.controller.Message(resource.VerbRetrieved))
	assert.Equal(t, "Tour updated successfully", f.controller.Message(resource.VerbUpdated))
	assert.Equal(t, "Tour deleted successfully", f.controller.Message(resource.VerbDeleted))
}

func TestChanges(t *testing.T) {
	name := "The Northern Lights"
	changes, err := resource.Changes(&model.TourUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": name}, changes)

	empty, err := resource.Changes(&model.TourUpdate{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

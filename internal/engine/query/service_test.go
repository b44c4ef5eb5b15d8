package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/dexter/internal/engine/cache"
	"github.com/rshade/dexter/internal/pokeapi"
)

// fakeAPI serves a fixed roster of Pokémon named after their id.
type fakeAPI struct {
	total int

	listCalls   atomic.Int32
	detailCalls atomic.Int32

	mu         sync.Mutex
	failDetail map[string]error
	delay      time.Duration
}

func newFakeAPI(total int) *fakeAPI {
	return &fakeAPI{total: total, failDetail: map[string]error{}}
}

func (f *fakeAPI) FetchList(ctx context.Context, limit, offset int) (pokeapi.ListPage, error) {
	f.listCalls.Add(1)
	page := pokeapi.ListPage{Count: f.total}
	for id := offset + 1; id <= offset+limit && id <= f.total; id++ {
		page.Results = append(page.Results, pokeapi.Summary{
			Name: fmt.Sprintf("mon-%d", id),
			URL:  fmt.Sprintf("https://pokeapi.co/api/v2/pokemon/%d/", id),
		})
	}
	return page, nil
}

func (f *fakeAPI) FetchDetail(ctx context.Context, idOrName string) (pokeapi.Detail, error) {
	f.detailCalls.Add(1)
	f.mu.Lock()
	delay := f.delay
	err := f.failDetail[idOrName]
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return pokeapi.Detail{}, err
	}
	id, convErr := strconv.Atoi(strings.TrimPrefix(idOrName, "mon-"))
	if convErr != nil || id < 1 || id > f.total {
		return pokeapi.Detail{}, pokeapi.ErrNotFound
	}
	return pokeapi.Detail{ID: id, Name: fmt.Sprintf("mon-%d", id)}, nil
}

func (f *fakeAPI) FetchDetailURL(ctx context.Context, rawURL string) (pokeapi.Detail, error) {
	parts := strings.Split(strings.Trim(rawURL, "/"), "/")
	return f.FetchDetail(ctx, parts[len(parts)-1])
}

func newService(t *testing.T, api pokeapi.Fetcher) *Service {
	t.Helper()
	c := cache.New(cache.DefaultOptions())
	t.Cleanup(c.Close)
	return NewService(c, api, Options{FanoutLimit: 4})
}

func TestList_FansOutInSummaryOrder(t *testing.T) {
	api := newFakeAPI(45)
	s := newService(t, api)

	res, err := s.List(context.Background(), 3, 20)
	require.NoError(t, err)

	assert.Equal(t, 45, res.TotalCount)
	require.Len(t, res.Items, 5)
	for i, d := range res.Items {
		assert.Equal(t, 41+i, d.ID)
	}
	assert.Equal(t, int32(1), api.listCalls.Load())
	assert.Equal(t, int32(5), api.detailCalls.Load())
}

func TestList_AnyDetailFailureFailsPage(t *testing.T) {
	api := newFakeAPI(40)
	api.failDetail["7"] = &pokeapi.HTTPError{Status: 503}
	s := newService(t, api)

	_, err := s.List(context.Background(), 1, 20)
	require.Error(t, err)
	assert.Equal(t, "HTTP error! Status: 503", err.Error())
}

func TestList_InvalidPage(t *testing.T) {
	s := newService(t, newFakeAPI(10))

	_, err := s.List(context.Background(), 0, 20)
	require.ErrorIs(t, err, ErrInvalidPage)
	_, err = s.List(context.Background(), 1, 0)
	require.ErrorIs(t, err, ErrInvalidPage)
}

func TestList_ConcurrentCallsShareRoundTrip(t *testing.T) {
	api := newFakeAPI(100)
	api.delay = 10 * time.Millisecond
	s := newService(t, api)

	var wg sync.WaitGroup
	for range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.List(context.Background(), 2, 10)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), api.listCalls.Load())
	assert.Equal(t, int32(10), api.detailCalls.Load())
}

func TestByKey_NormalisesAndShares(t *testing.T) {
	api := newFakeAPI(10)
	s := newService(t, api)

	d, err := s.ByKey(context.Background(), " MON-3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, d.ID)

	_, err = s.ByKey(context.Background(), "mon-3")
	require.NoError(t, err)
	assert.Equal(t, int32(1), api.detailCalls.Load())
}

func TestByKey_NotFoundIsDistinguishable(t *testing.T) {
	s := newService(t, newFakeAPI(10))

	_, err := s.ByKey(context.Background(), "missingno")
	require.Error(t, err)
	assert.True(t, pokeapi.IsNotFound(err))
	assert.Equal(t, "No Pokémon found", err.Error())
}

func TestBrowse(t *testing.T) {
	s := newService(t, newFakeAPI(30))

	page, err := s.Browse(context.Background(), 2, 10, "")
	require.NoError(t, err)
	assert.Equal(t, 30, page.TotalCount)
	assert.Len(t, page.Items, 10)

	hit, err := s.Browse(context.Background(), 2, 10, "mon-12")
	require.NoError(t, err)
	assert.Equal(t, 1, hit.TotalCount)
	require.Len(t, hit.Items, 1)
	assert.Equal(t, 12, hit.Items[0].ID)

	assert.Equal(t, ListKey(2, 10), BrowseKey(2, 10, "  "))
	assert.Equal(t, DetailKey("mon-12"), BrowseKey(2, 10, "MON-12"))
}

func TestInvalidate_Scopes(t *testing.T) {
	api := newFakeAPI(30)
	s := newService(t, api)
	ctx := context.Background()

	_, err := s.List(ctx, 1, 5)
	require.NoError(t, err)
	_, err = s.List(ctx, 2, 5)
	require.NoError(t, err)
	_, err = s.ByKey(ctx, "mon-1")
	require.NoError(t, err)

	assert.Equal(t, 2, s.Invalidate(ScopeList))
	assert.Equal(t, 3, s.Invalidate(""))

	before := api.listCalls.Load()
	_, err = s.List(ctx, 1, 5, cache.WithRefresh())
	require.NoError(t, err)
	assert.Equal(t, before+1, api.listCalls.Load())
}

func TestService_AgainstHTTPServer(t *testing.T) {
	var hits atomic.Int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch {
		case r.URL.Path == "/pokemon":
			_ = json.NewEncoder(w).Encode(pokeapi.ListPage{
				Count: 2,
				Results: []pokeapi.Summary{
					{Name: "bulbasaur", URL: server.URL + "/pokemon/1/"},
					{Name: "ivysaur", URL: server.URL + "/pokemon/2/"},
				},
			})
		case r.URL.Path == "/pokemon/1/":
			_ = json.NewEncoder(w).Encode(pokeapi.Detail{ID: 1, Name: "bulbasaur"})
		case r.URL.Path == "/pokemon/2/":
			_ = json.NewEncoder(w).Encode(pokeapi.Detail{ID: 2, Name: "ivysaur"})
		case r.URL.Path == "/pokemon/pikachu":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client, err := pokeapi.NewClient(server.URL)
	require.NoError(t, err)
	s := newService(t, client)

	res, err := s.List(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "bulbasaur", res.Items[0].Name)
	assert.Equal(t, "ivysaur", res.Items[1].Name)
	assert.Equal(t, int32(3), hits.Load())

	_, err = s.ByKey(context.Background(), "pikachu")
	require.EqualError(t, err, "HTTP error! Status: 500")

	_, err = s.ByKey(context.Background(), "agumon")
	require.EqualError(t, err, "No Pokémon found")
	assert.True(t, errors.Is(err, pokeapi.ErrNotFound))
}

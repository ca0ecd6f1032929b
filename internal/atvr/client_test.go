package atvr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/bjorheimar/catalog-sync/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(t *testing.T, w http.ResponseWriter, payload interface{}) {
	t.Helper()
	inner, err := json.Marshal(payload)
	require.NoError(t, err)
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]string{"d": string(inner)}))
}

type fakeUpstream struct {
	t         *testing.T
	mu        sync.Mutex
	total     int
	producers []string
	catalog   []Product
	failSkip  int // DoSearch at this skip returns 500; -1 disables

	searchSkips   []int
	producerCalls int
}

func newFakeUpstream(t *testing.T, n int) *fakeUpstream {
	f := &fakeUpstream{t: t, total: n, failSkip: -1}
	for i := 1; i <= n; i++ {
		f.catalog = append(f.catalog, Product{ProductID: i, ProductName: "Beer " + strconv.Itoa(i), ProductProducer: "olgerdin"})
	}
	return f
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Path {
	case "/GetProducers":
		f.producerCalls++
		writeEnvelope(f.t, w, f.producers)
	case "/DoSearch":
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		count, _ := strconv.Atoi(r.URL.Query().Get("count"))
		f.searchSkips = append(f.searchSkips, skip)
		if skip == f.failSkip {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		end := min(skip+count, len(f.catalog))
		page := []Product{}
		if skip < end {
			page = f.catalog[skip:end]
		}
		writeEnvelope(f.t, w, SearchResult{Data: page, Total: f.total})
	case "/GetAllShops":
		writeEnvelope(f.t, w, []Store{{Name: "Heiðrún", PostCode: "110"}})
	case "/GetAllTaste2Categories":
		super := r.URL.Query().Get("supertaste")
		writeEnvelope(f.t, w, []TasteSubcategory{{ID: super + "1", Description: "Humlaður", SuperTaste: super}})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, f *fakeUpstream) *Client {
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL, PageSize: 500, FuzzyThreshold: 0.8}, NewMemoryProducerCache(time.Hour), logger.NewNop())
}

func TestFetchAllProducts_Pagination(t *testing.T) {
	f := newFakeUpstream(t, 1200)
	c := newTestClient(t, f)

	items, err := c.FetchAllProducts(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, []int{0, 500, 1000}, f.searchSkips)
	require.Len(t, items, 1200)
	for i, p := range items {
		assert.Equal(t, i+1, p.ProductID)
	}
}

func TestFetchAllProducts_TotalShrinks(t *testing.T) {
	f := newFakeUpstream(t, 700)
	f.total = 1200 // first page claims more than exists
	c := newTestClient(t, f)

	items, err := c.FetchAllProducts(context.Background(), "110")
	require.NoError(t, err)

	assert.Len(t, items, 700)
	assert.Equal(t, []int{0, 500, 1000}, f.searchSkips)
}

func TestFetchAllProducts_PageErrorFailsWholeFetch(t *testing.T) {
	f := newFakeUpstream(t, 1200)
	f.failSkip = 500
	c := newTestClient(t, f)

	items, err := c.FetchAllProducts(context.Background(), "")
	require.Error(t, err)
	assert.Nil(t, items)

	var upstreamErr *UpstreamFetchError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, "DoSearch", upstreamErr.Op)
	assert.Equal(t, http.StatusInternalServerError, upstreamErr.StatusCode)
}

func TestFetchAllProducts_HugeTotalStopsOnEmptyPage(t *testing.T) {
	f := newFakeUpstream(t, 3)
	f.total = 1 << 50
	c := newTestClient(t, f)

	items, err := c.FetchAllProducts(context.Background(), "110")
	require.NoError(t, err)

	assert.Len(t, items, 3)
	assert.Equal(t, []int{0, 500}, f.searchSkips)
}

func TestFetchAllProducts_NegativeTotal(t *testing.T) {
	f := newFakeUpstream(t, 3)
	f.total = -5
	c := newTestClient(t, f)

	items, err := c.FetchAllProducts(context.Background(), "110")
	assert.Nil(t, items)

	var upstreamErr *UpstreamFetchError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, "DoSearch", upstreamErr.Op)
	assert.Contains(t, err.Error(), "negative total")
}

func TestSearchProducts_RewritesProducerAndCachesList(t *testing.T) {
	f := newFakeUpstream(t, 1200)
	f.producers = []string{"Ölgerðin", "OLGERÐIN", "Kaldi"}
	c := newTestClient(t, f)

	items, err := c.FetchAllProducts(context.Background(), "")
	require.NoError(t, err)

	for _, p := range items {
		require.Equal(t, "Ölgerðin", p.ProductProducer)
	}
	assert.Equal(t, 1, f.producerCalls)

	require.NoError(t, c.RefreshProducers(context.Background()))
	assert.Equal(t, 2, f.producerCalls)
}

func TestSearchProducts_UnmatchedProducerKept(t *testing.T) {
	f := newFakeUpstream(t, 3)
	f.producers = []string{"Kaldi"}
	c := newTestClient(t, f)

	res, err := c.SearchProducts(context.Background(), SearchFilter{})
	require.NoError(t, err)
	require.Len(t, res.Data, 3)
	assert.Equal(t, "olgerdin", res.Data[0].ProductProducer)
	assert.Equal(t, 3, res.Total)
}

func TestGet_MalformedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"d": "not json"}`)
	}))
	defer srv.Close()
	c := NewClient(Options{BaseURL: srv.URL}, NewMemoryProducerCache(0), logger.NewNop())

	_, err := c.ListStores(context.Background())
	var upstreamErr *UpstreamFetchError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, "GetAllShops", upstreamErr.Op)
}

func TestGet_MissingEnvelopeKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()
	c := NewClient(Options{BaseURL: srv.URL}, NewMemoryProducerCache(0), logger.NewNop())

	_, err := c.ListStores(context.Background())
	var upstreamErr *UpstreamFetchError
	assert.True(t, errors.As(err, &upstreamErr))
}

func TestListStoresAndSubcategories(t *testing.T) {
	c := newTestClient(t, newFakeUpstream(t, 0))
	ctx := context.Background()

	stores, err := c.ListStores(ctx)
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, "110", stores[0].PostCode)

	subs, err := c.ListTasteSubcategories(ctx, "17")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "171", subs[0].ID)
	assert.Equal(t, "17", subs[0].SuperTaste)
}

func TestListTasteCategories_Bundled(t *testing.T) {
	c := NewClient(Options{}, NewMemoryProducerCache(0), logger.NewNop())
	cats, err := c.ListTasteCategories(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, cats)
	for _, cat := range cats {
		assert.NotEmpty(t, cat.ID)
		assert.NotEmpty(t, cat.Description)
	}
}

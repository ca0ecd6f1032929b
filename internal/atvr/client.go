// Package atvr is a client for the ATVR (Vínbúðin) catalog search service.
package atvr

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bjorheimar/catalog-sync/internal/fuzzy"
	"github.com/bjorheimar/catalog-sync/internal/pkg/logger"
	"go.uber.org/zap"
)

//go:embed beer-tastes.json
var beerTastes []byte

const (
	DefaultPageSize = 500
	DefaultCategory = "beer"
	DefaultOrderBy  = "price desc"
)

type Options struct {
	BaseURL        string
	Category       string
	OrderBy        string
	PageSize       int
	Timeout        time.Duration
	FuzzyThreshold float64
	HTTPClient     *http.Client // Overrides Timeout when set
}

type Client struct {
	http      *http.Client
	baseURL   string
	category  string
	orderBy   string
	pageSize  int
	threshold float64
	producers ProducerCache
	log       logger.Logger

	mu      sync.Mutex
	matcher *fuzzy.Matcher
}

// NewClient builds a client. producers holds the producer-name list between
// calls; pass NewMemoryProducerCache for a process-local cache.
func NewClient(opts Options, producers ProducerCache, log logger.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if opts.Category == "" {
		opts.Category = DefaultCategory
	}
	if opts.OrderBy == "" {
		opts.OrderBy = DefaultOrderBy
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &Client{
		http:      httpClient,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		category:  opts.Category,
		orderBy:   opts.OrderBy,
		pageSize:  opts.PageSize,
		threshold: opts.FuzzyThreshold,
		producers: producers,
		log:       log,
	}
}

func (c *Client) PageSize() int { return c.pageSize }

// get issues a GET against the service and unwraps the {"d": "<json>"}
// envelope into out.
func (c *Client) get(ctx context.Context, op string, params url.Values, out interface{}) error {
	endpoint := c.baseURL + "/" + op
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &UpstreamFetchError{Op: op, URL: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &UpstreamFetchError{Op: op, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &UpstreamFetchError{Op: op, URL: endpoint, StatusCode: resp.StatusCode}
	}

	var envelope struct {
		D *string `json:"d"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return &UpstreamFetchError{Op: op, URL: endpoint, Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if envelope.D == nil {
		return &UpstreamFetchError{Op: op, URL: endpoint, Err: fmt.Errorf("envelope missing \"d\"")}
	}
	if err := json.Unmarshal([]byte(*envelope.D), out); err != nil {
		return &UpstreamFetchError{Op: op, URL: endpoint, Err: fmt.Errorf("decode payload: %w", err)}
	}
	return nil
}

func (c *Client) ListStores(ctx context.Context) ([]Store, error) {
	var stores []Store
	if err := c.get(ctx, "GetAllShops", nil, &stores); err != nil {
		return nil, err
	}
	return stores, nil
}

// ListTasteCategories returns the bundled beer taste groups. The list is
// static upstream, so it ships with the binary.
func (c *Client) ListTasteCategories(ctx context.Context) ([]TasteCategory, error) {
	var categories []TasteCategory
	if err := json.Unmarshal(beerTastes, &categories); err != nil {
		return nil, fmt.Errorf("decode bundled taste categories: %w", err)
	}
	return categories, nil
}

func (c *Client) ListTasteSubcategories(ctx context.Context, categoryCode string) ([]TasteSubcategory, error) {
	var subs []TasteSubcategory
	params := url.Values{"supertaste": {categoryCode}}
	if err := c.get(ctx, "GetAllTaste2Categories", params, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// ListProducers returns the producer names for the configured category,
// served from the producer cache when fresh.
func (c *Client) ListProducers(ctx context.Context) ([]string, error) {
	if names, ok, err := c.producers.Get(ctx); err != nil {
		c.log.Warn("producer cache read failed", zap.Error(err))
	} else if ok {
		return names, nil
	}

	var names []string
	if err := c.get(ctx, "GetProducers", url.Values{"category": {c.category}}, &names); err != nil {
		return nil, err
	}
	if err := c.producers.Set(ctx, names); err != nil {
		c.log.Warn("producer cache write failed", zap.Error(err))
	}

	c.mu.Lock()
	c.matcher = nil
	c.mu.Unlock()
	return names, nil
}

// RefreshProducers drops the cached producer list and loads it again.
func (c *Client) RefreshProducers(ctx context.Context) error {
	if err := c.producers.Invalidate(ctx); err != nil {
		return err
	}
	_, err := c.ListProducers(ctx)
	return err
}

// producerMatcher returns the fuzzy index over upstream producer names,
// building it on first use.
func (c *Client) producerMatcher(ctx context.Context) (*fuzzy.Matcher, error) {
	names, err := c.ListProducers(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.matcher != nil {
		return c.matcher, nil
	}
	m := fuzzy.New(c.threshold)
	for _, name := range names {
		m.AddUnique(name)
	}
	c.matcher = m
	return m, nil
}

// SearchProducts fetches a single page. Producer names are rewritten to the
// canonical upstream spelling when they fuzzy-match one.
func (c *Client) SearchProducts(ctx context.Context, f SearchFilter) (*SearchResult, error) {
	matcher, err := c.producerMatcher(ctx)
	if err != nil {
		return nil, err
	}

	count := f.Count
	if count <= 0 {
		count = c.pageSize
	}
	params := url.Values{
		"category": {c.category},
		"skip":     {strconv.Itoa(f.Skip)},
		"count":    {strconv.Itoa(count)},
		"orderBy":  {c.orderBy},
	}
	if f.Store != "" {
		params.Set("shop", f.Store)
	}

	var result SearchResult
	if err := c.get(ctx, "DoSearch", params, &result); err != nil {
		return nil, err
	}
	if result.Total < 0 {
		return nil, &UpstreamFetchError{Op: "DoSearch", URL: c.baseURL + "/DoSearch", Err: fmt.Errorf("negative total %d", result.Total)}
	}

	for i := range result.Data {
		if canonical, ok := matcher.Get(result.Data[i].ProductProducer); ok {
			result.Data[i].ProductProducer = canonical
		}
	}

	c.log.Debug("atvr search page",
		zap.String("store", f.Store),
		zap.Int("skip", f.Skip),
		zap.Int("items", len(result.Data)),
		zap.Int("total", result.Total),
	)
	return &result, nil
}

// FetchAllProducts pages through DoSearch until the total reported by the
// first page is reached or a page comes back empty. Any page error fails the
// whole fetch.
func (c *Client) FetchAllProducts(ctx context.Context, store string) ([]Product, error) {
	var items []Product
	total := -1
	for skip := 0; ; skip += c.pageSize {
		page, err := c.SearchProducts(ctx, SearchFilter{Store: store, Skip: skip, Count: c.pageSize})
		if err != nil {
			return nil, err
		}
		if total < 0 {
			total = page.Total
			// total is server-reported, so the hint is capped at one page.
			items = make([]Product, 0, min(total, c.pageSize))
		}
		items = append(items, page.Data...)

		if len(page.Data) == 0 || skip+c.pageSize >= total {
			break
		}
	}

	c.log.Info("atvr products fetched", zap.String("store", store), zap.Int("count", len(items)), zap.Int("total", total))
	return items, nil
}

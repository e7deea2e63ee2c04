package priceService

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tuanvm/investfolio/data/repository"
	"github.com/tuanvm/investfolio/internal/externalApi"
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/internal/service"
)

type fakeSource struct {
	code  string
	quote model.Quote
	err   error
	calls int
}

func (s *fakeSource) Code() string { return s.code }

func (s *fakeSource) GetQuote(_ context.Context) (model.Quote, error) {
	s.calls++
	if s.err != nil {
		return model.Quote{}, s.err
	}
	return s.quote, nil
}

type fakeCache struct {
	mu     sync.Mutex
	quotes map[string]model.Quote
	setErr error
	setCh  chan model.Quote
}

func newFakeCache() *fakeCache {
	return &fakeCache{quotes: make(map[string]model.Quote), setCh: make(chan model.Quote, 1)}
}

func (c *fakeCache) GetQuote(_ context.Context, code string) (model.Quote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	quote, ok := c.quotes[code]
	if !ok {
		return model.Quote{}, errors.New("cache miss")
	}
	return quote, nil
}

func (c *fakeCache) SetQuote(_ context.Context, quote model.Quote) error {
	c.mu.Lock()
	err := c.setErr
	if err == nil {
		c.quotes[quote.Code] = quote
	}
	c.mu.Unlock()
	c.setCh <- quote
	return err
}

type fakeRepo struct {
	categories map[int64]model.Category
	holdings   map[int64]model.Holding
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{categories: make(map[int64]model.Category), holdings: make(map[int64]model.Holding)}
}

func (r *fakeRepo) GetCategory(_ context.Context, categoryID, userID int64) (model.Category, error) {
	category, ok := r.categories[categoryID]
	if !ok || category.UserID != userID {
		return model.Category{}, repository.ErrNotFound
	}
	return category, nil
}

func (r *fakeRepo) GetHoldingByCategory(_ context.Context, categoryID int64) (model.Holding, error) {
	holding, ok := r.holdings[categoryID]
	if !ok {
		return model.Holding{}, repository.ErrNotFound
	}
	return holding, nil
}

func (r *fakeRepo) UpdateHoldingCurrentValue(_ context.Context, categoryID int64, value decimal.Decimal) error {
	holding, ok := r.holdings[categoryID]
	if !ok {
		return repository.ErrNotFound
	}
	holding.CurrentValue = value
	r.holdings[categoryID] = holding
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGetQuote_UnknownCode(t *testing.T) {
	srv := New(newFakeRepo(), newFakeCache())

	_, err := srv.GetQuote(context.Background(), "nope")
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetQuote_CacheHitSkipsSource(t *testing.T) {
	cache := newFakeCache()
	cache.quotes["gold"] = model.Quote{Code: "gold", Price: dec("85000000")}
	source := &fakeSource{code: "gold", quote: model.Quote{Code: "gold", Price: dec("99")}}
	srv := New(newFakeRepo(), cache, source)

	quote, err := srv.GetQuote(context.Background(), "gold")
	if err != nil {
		t.Fatalf("GetQuote() failed: %v", err)
	}

	if !quote.Price.Equal(dec("85000000")) {
		t.Errorf("price = %s, want the cached one", quote.Price)
	}
	if source.calls != 0 {
		t.Errorf("source called %d times, want 0", source.calls)
	}
}

func TestGetQuote_CacheMissFetchesAndStores(t *testing.T) {
	cache := newFakeCache()
	source := &fakeSource{code: "usd", quote: model.Quote{Code: "usd", Price: dec("25400"), Source: "Vietcombank"}}
	srv := New(newFakeRepo(), cache, source)

	quote, err := srv.GetQuote(context.Background(), "usd")
	if err != nil {
		t.Fatalf("GetQuote() failed: %v", err)
	}

	if !quote.Price.Equal(dec("25400")) {
		t.Errorf("price = %s, want 25400", quote.Price)
	}

	select {
	case stored := <-cache.setCh:
		if stored.Code != "usd" {
			t.Errorf("cached code = %s, want usd", stored.Code)
		}
	case <-time.After(time.Second):
		t.Fatal("quote was never written to the cache")
	}
}

func TestGetQuote_CacheWriteFailureIsNonFatal(t *testing.T) {
	cache := newFakeCache()
	cache.setErr = errors.New("redis down")
	source := &fakeSource{code: "usd", quote: model.Quote{Code: "usd", Price: dec("25400")}}
	srv := New(newFakeRepo(), cache, source)

	quote, err := srv.GetQuote(context.Background(), "usd")
	if err != nil {
		t.Fatalf("GetQuote() failed: %v", err)
	}
	if !quote.Price.Equal(dec("25400")) {
		t.Errorf("price = %s, want 25400", quote.Price)
	}

	select {
	case <-cache.setCh:
	case <-time.After(time.Second):
		t.Fatal("cache write was never attempted")
	}
}

func TestGetQuote_SourceNotFound(t *testing.T) {
	source := &fakeSource{code: "dcds", err: externalApi.ErrNotFound}
	srv := New(newFakeRepo(), newFakeCache(), source)

	_, err := srv.GetQuote(context.Background(), "dcds")
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRefreshQuotes_WarmsCacheForEverySource(t *testing.T) {
	cache := newFakeCache()
	cache.setCh = make(chan model.Quote, 2)
	gold := &fakeSource{code: "gold", quote: model.Quote{Code: "gold", Price: dec("85000000")}}
	usd := &fakeSource{code: "usd", quote: model.Quote{Code: "usd", Price: dec("25400")}}
	srv := New(newFakeRepo(), cache, gold, usd)

	if err := srv.RefreshQuotes(context.Background()); err != nil {
		t.Fatalf("RefreshQuotes() failed: %v", err)
	}

	if gold.calls != 1 || usd.calls != 1 {
		t.Errorf("source calls = %d/%d, want 1/1", gold.calls, usd.calls)
	}
	if !cache.quotes["gold"].Price.Equal(dec("85000000")) {
		t.Errorf("cached gold price = %s, want 85000000", cache.quotes["gold"].Price)
	}
	if !cache.quotes["usd"].Price.Equal(dec("25400")) {
		t.Errorf("cached usd price = %s, want 25400", cache.quotes["usd"].Price)
	}
}

func TestRefreshQuotes_ReportsPartialFailure(t *testing.T) {
	cache := newFakeCache()
	cache.setCh = make(chan model.Quote, 2)
	gold := &fakeSource{code: "gold", quote: model.Quote{Code: "gold", Price: dec("85000000")}}
	broken := &fakeSource{code: "dcds", err: errors.New("upstream timeout")}
	srv := New(newFakeRepo(), cache, gold, broken)

	err := srv.RefreshQuotes(context.Background())
	if err == nil {
		t.Fatal("RefreshQuotes() = nil, want error for the failed source")
	}

	if !cache.quotes["gold"].Price.Equal(dec("85000000")) {
		t.Errorf("cached gold price = %s, want 85000000", cache.quotes["gold"].Price)
	}
	if _, ok := cache.quotes["dcds"]; ok {
		t.Error("failed source must not be cached")
	}
}

func TestApplyQuote_RevaluesHolding(t *testing.T) {
	repo := newFakeRepo()
	repo.categories[1] = model.Category{CategoryID: 1, UserID: 10}
	repo.holdings[1] = model.Holding{CategoryID: 1, Quantity: dec("3"), TotalInvested: dec("60000")}
	cache := newFakeCache()
	cache.quotes["gold"] = model.Quote{Code: "gold", Price: dec("25000")}
	srv := New(repo, cache, &fakeSource{code: "gold"})

	holding, quote, err := srv.ApplyQuote(context.Background(), 10, 1, "gold")
	if err != nil {
		t.Fatalf("ApplyQuote() failed: %v", err)
	}

	if !quote.Price.Equal(dec("25000")) {
		t.Errorf("quote price = %s, want 25000", quote.Price)
	}
	if !holding.CurrentValue.Equal(dec("75000")) {
		t.Errorf("currentValue = %s, want 75000", holding.CurrentValue)
	}
	if !repo.holdings[1].CurrentValue.Equal(dec("75000")) {
		t.Errorf("stored currentValue = %s, want 75000", repo.holdings[1].CurrentValue)
	}
	if !holding.TotalInvested.Equal(dec("60000")) {
		t.Errorf("totalInvested changed: %s", holding.TotalInvested)
	}
}

func TestApplyQuote_ForeignCategoryIsNotFound(t *testing.T) {
	repo := newFakeRepo()
	repo.categories[1] = model.Category{CategoryID: 1, UserID: 99}
	srv := New(repo, newFakeCache())

	_, _, err := srv.ApplyQuote(context.Background(), 10, 1, "gold")
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

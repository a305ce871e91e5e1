package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"marketlens/backend-go/internal/config"
	"marketlens/backend-go/internal/services"
)

type envelopeBody struct {
	Data       map[string]json.RawMessage `json:"data"`
	Message    string                     `json:"message"`
	Warnings   []map[string]string        `json:"warnings"`
	StatusCode int                        `json:"status_code"`
}

type errorBody struct {
	StatusCode int    `json:"status_code"`
	Detail     string `json:"detail"`
}

func testConfig(providerURL string) config.Config {
	return config.Config{
		ProviderBaseURL:  providerURL,
		FlushToken:       "sekret",
		CacheTTLMomentum: time.Minute,
		CacheTTLChannel:  time.Minute,
		CacheTTLCompass:  time.Minute,
		CacheTTLTable:    time.Minute,
		CacheTTLPrice:    time.Minute,
		CacheTTLClose:    time.Minute,
		RequestTimeout:   5 * time.Second,
		ProviderTimeout:  5 * time.Second,
		RateLimitPerMin:  1000,
		CircuitFailLimit: 100,
		CircuitCooldown:  time.Second,
		MaxSymbols:       30,
	}
}

// fakeProvider answers every compute path with either a tabular result or
// a one-element chart sequence, and rejects the symbol "???".
func fakeProvider(calls *atomic.Int64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		if strings.Contains(q.Get("symbols"), "???") {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"malformed symbols"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if q.Get("chart") == "true" {
			_, _ = w.Write([]byte(`{"chart":[{"data":[{"type":"scatter","name":"AAPL"}],"layout":{"title":"chart"}}],"warnings":[]}`))
			return
		}
		switch r.URL.Path {
		case "/momentum":
			_, _ = w.Write([]byte(`{"data":[{"date":"2024-01-02","symbol":"AAPL","close":185.5,"momentum":0.04,"momentum_signal":1}],"warnings":[{"category":"data","message":"short history"}]}`))
		case "/user-table":
			_, _ = w.Write([]byte(`{"data":[{"symbol":"AAPL","last_price":185.5,"buy_price":170.0,"sell_price":200.0,"ud_pct":7.8,"ud_ratio":0.54,"sector":"Technology","asset_class":"equity"}]}`))
		case "/latest-price":
			_, _ = w.Write([]byte(`{"data":[{"symbol":"AAPL","last_price":185.5},{"symbol":"NVDA","last_price":481.9}]}`))
		default:
			_, _ = w.Write([]byte(`{"data":[{"date":"2024-01-02","symbol":"AAPL","bottom_price":180.5,"recent_price":185.2,"top_price":191.7}]}`))
		}
	}))
}

func TestMomentumReturnsTabularEnvelope(t *testing.T) {
	var calls atomic.Int64
	srv := fakeProvider(&calls)
	defer srv.Close()
	api := New(testConfig(srv.URL), services.NewMemoryStore(), services.NewProviderClient(testConfig(srv.URL)))

	rec := httptest.NewRecorder()
	api.Momentum(rec, httptest.NewRequest(http.MethodGet, "/api/v1/momentum?symbols=AAPL", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body)
	}
	var body envelopeBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if _, ok := body.Data["records"]; !ok {
		t.Fatalf("expected records payload, got %s", rec.Body)
	}
	if _, ok := body.Data["traces"]; ok {
		t.Fatal("tabular response must not carry traces")
	}
	if len(body.Warnings) != 1 || body.Warnings[0]["message"] != "short history" {
		t.Fatalf("warnings lost: %+v", body.Warnings)
	}
	if body.StatusCode != 200 {
		t.Fatalf("envelope status %d", body.StatusCode)
	}
}

func TestMomentumChartNeverTabular(t *testing.T) {
	var calls atomic.Int64
	srv := fakeProvider(&calls)
	defer srv.Close()
	api := New(testConfig(srv.URL), services.NewMemoryStore(), services.NewProviderClient(testConfig(srv.URL)))

	rec := httptest.NewRecorder()
	api.Momentum(rec, httptest.NewRequest(http.MethodGet, "/api/v1/momentum?symbols=AAPL&chart=true", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body)
	}
	var body envelopeBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if _, ok := body.Data["traces"]; !ok {
		t.Fatalf("expected chart traces, got %s", rec.Body)
	}
	if _, ok := body.Data["layout"]; !ok {
		t.Fatal("chart payload missing layout")
	}
	if _, ok := body.Data["records"]; ok {
		t.Fatal("chart response must not carry records")
	}
}

func TestMomentumCacheHitIsByteIdentical(t *testing.T) {
	var calls atomic.Int64
	srv := fakeProvider(&calls)
	defer srv.Close()
	api := New(testConfig(srv.URL), services.NewMemoryStore(), services.NewProviderClient(testConfig(srv.URL)))

	url := "/api/v1/momentum?symbols=AAPL&method=log"
	first := httptest.NewRecorder()
	api.Momentum(first, httptest.NewRequest(http.MethodGet, url, nil))
	second := httptest.NewRecorder()
	api.Momentum(second, httptest.NewRequest(http.MethodGet, url, nil))

	if first.Code != 200 || second.Code != 200 {
		t.Fatalf("status %d / %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("cache hit diverged:\n%s\n%s", first.Body, second.Body)
	}
	if calls.Load() != 1 {
		t.Fatalf("provider called %d times, want 1", calls.Load())
	}
}

func TestMomentumKeyIgnoresParameterOrder(t *testing.T) {
	var calls atomic.Int64
	srv := fakeProvider(&calls)
	defer srv.Close()
	api := New(testConfig(srv.URL), services.NewMemoryStore(), services.NewProviderClient(testConfig(srv.URL)))

	first := httptest.NewRecorder()
	api.Momentum(first, httptest.NewRequest(http.MethodGet, "/api/v1/momentum?symbols=AAPL&method=log&window=1d", nil))
	second := httptest.NewRecorder()
	api.Momentum(second, httptest.NewRequest(http.MethodGet, "/api/v1/momentum?window=1d&method=log&symbols=AAPL", nil))

	if calls.Load() != 1 {
		t.Fatalf("reordered parameters fragmented the cache: %d calls", calls.Load())
	}
}

func TestMomentumProviderFailure(t *testing.T) {
	var calls atomic.Int64
	srv := fakeProvider(&calls)
	defer srv.Close()
	api := New(testConfig(srv.URL), services.NewMemoryStore(), services.NewProviderClient(testConfig(srv.URL)))

	rec := httptest.NewRecorder()
	api.Momentum(rec, httptest.NewRequest(http.MethodGet, "/api/v1/momentum?symbols=%3F%3F%3F", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d body %s", rec.Code, rec.Body)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if !strings.Contains(body.Detail, "momentum") {
		t.Fatalf("detail should name the endpoint: %q", body.Detail)
	}
}

func TestMomentumValidation(t *testing.T) {
	var calls atomic.Int64
	srv := fakeProvider(&calls)
	defer srv.Close()
	api := New(testConfig(srv.URL), services.NewMemoryStore(), services.NewProviderClient(testConfig(srv.URL)))

	cases := []struct {
		name  string
		url   string
		param string
	}{
		{"bad method", "/api/v1/momentum?method=banana", "method"},
		{"bad chart flag", "/api/v1/momentum?chart=banana", "chart"},
		{"bad membership", "/api/v1/momentum?membership=vip", "membership"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		api.Momentum(rec, httptest.NewRequest(http.MethodGet, c.url, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d", c.name, rec.Code)
		}
		var body errorBody
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if !strings.Contains(body.Detail, c.param) {
			t.Fatalf("%s: detail %q should name %q", c.name, body.Detail, c.param)
		}
	}
	if calls.Load() != 0 {
		t.Fatalf("validation failures must not reach the provider: %d calls", calls.Load())
	}
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return services.ErrStoreUnavailable
}
func (brokenStore) Delete(context.Context, string) (bool, error) {
	return false, services.ErrStoreUnavailable
}
func (brokenStore) Keys(context.Context, string) ([]string, error) {
	return nil, services.ErrStoreUnavailable
}
func (brokenStore) DeleteMatching(context.Context, string) (int, error) {
	return 0, services.ErrStoreUnavailable
}
func (brokenStore) FlushAll(context.Context) error { return services.ErrStoreUnavailable }
func (brokenStore) Ping(context.Context) error     { return services.ErrStoreUnavailable }
func (brokenStore) Close() error                   { return nil }

func TestStoreUnavailableStillServes(t *testing.T) {
	var calls atomic.Int64
	srv := fakeProvider(&calls)
	defer srv.Close()
	api := New(testConfig(srv.URL), brokenStore{}, services.NewProviderClient(testConfig(srv.URL)))

	rec := httptest.NewRecorder()
	api.LatestPrice(rec, httptest.NewRequest(http.MethodGet, "/api/v1/latest-price?symbols=AAPL,NVDA", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("store outage must not fail the request: %d %s", rec.Code, rec.Body)
	}
	var body envelopeBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if _, ok := body.Data["records"]; !ok {
		t.Fatalf("payload missing: %s", rec.Body)
	}
}

func TestUserTable(t *testing.T) {
	var calls atomic.Int64
	srv := fakeProvider(&calls)
	defer srv.Close()
	api := New(testConfig(srv.URL), services.NewMemoryStore(), services.NewProviderClient(testConfig(srv.URL)))

	rec := httptest.NewRecorder()
	api.UserTable(rec, httptest.NewRequest(http.MethodGet, "/api/v1/user-table?symbols=AAPL&membership=tier2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body)
	}
	var body envelopeBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	var records []map[string]any
	if err := json.Unmarshal(body.Data["records"], &records); err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(records) != 1 || records[0]["sector"] != "Technology" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestCacheFlushRequiresToken(t *testing.T) {
	var calls atomic.Int64
	srv := fakeProvider(&calls)
	defer srv.Close()
	store := services.NewMemoryStore()
	api := New(testConfig(srv.URL), store, services.NewProviderClient(testConfig(srv.URL)))
	_ = store.Set(context.Background(), "momentum:v1:aa", []byte("{}"), time.Minute)

	rec := httptest.NewRecorder()
	api.CacheFlush(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/cache/flush", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status %d", rec.Code)
	}
	if _, ok := store.Get(context.Background(), "momentum:v1:aa"); !ok {
		t.Fatal("unauthorized flush must not touch the store")
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cache/flush", nil)
	req.Header.Set("Authorization", "Bearer sekret")
	rec = httptest.NewRecorder()
	api.CacheFlush(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authorized flush: status %d body %s", rec.Code, rec.Body)
	}
	if _, ok := store.Get(context.Background(), "momentum:v1:aa"); ok {
		t.Fatal("flush left keys behind")
	}
}

func TestCacheKeysDeleteByPattern(t *testing.T) {
	var calls atomic.Int64
	srv := fakeProvider(&calls)
	defer srv.Close()
	store := services.NewMemoryStore()
	api := New(testConfig(srv.URL), store, services.NewProviderClient(testConfig(srv.URL)))

	ctx := context.Background()
	for _, k := range []string{"portfolio:AAPL", "portfolio:NVDA", "momentum:AAPL"} {
		_ = store.Set(ctx, k, []byte("{}"), time.Minute)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cache/keys?pattern=portfolio:*&token=sekret", nil)
	rec := httptest.NewRecorder()
	api.CacheKeys(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body)
	}
	var body envelopeBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	var records []map[string]any
	if err := json.Unmarshal(body.Data["records"], &records); err != nil {
		t.Fatalf("records: %v", err)
	}
	if got := records[0]["records_deleted"]; got != float64(2) {
		t.Fatalf("expected 2 deletions, got %v", got)
	}

	keys, err := store.Keys(ctx, "portfolio:*")
	if err != nil || len(keys) != 0 {
		t.Fatalf("pattern keys should be gone, got %v %v", keys, err)
	}
	if _, ok := store.Get(ctx, "momentum:AAPL"); !ok {
		t.Fatal("unrelated namespace was deleted")
	}
}

func TestCacheKeysRejectsEmptyPattern(t *testing.T) {
	var calls atomic.Int64
	srv := fakeProvider(&calls)
	defer srv.Close()
	api := New(testConfig(srv.URL), services.NewMemoryStore(), services.NewProviderClient(testConfig(srv.URL)))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cache/keys?token=sekret", nil)
	rec := httptest.NewRecorder()
	api.CacheKeys(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
}

package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contentusecases "github.com/mataroo/mataroo/internal/application/content/usecases"
	"github.com/mataroo/mataroo/internal/infrastructure/auth"
	"github.com/mataroo/mataroo/internal/infrastructure/cache"
	"github.com/mataroo/mataroo/internal/infrastructure/config"
	"github.com/mataroo/mataroo/internal/shared/logger"
)

// fakeBackend is a scripted stand-in for the content backend.
type fakeBackend struct {
	mu            sync.Mutex
	plan          string
	disconnectErr bool
	verified      map[string]string
	connections   []string
	posted        map[string]any

	requests     atomic.Int32
	subFetches   atomic.Int32
	connFetches  atomic.Int32
	verifyCalled atomic.Int32
	postCalls    atomic.Int32
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{plan: "free", connections: []string{"twitter"}}
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/subscription/status", func(w http.ResponseWriter, r *http.Request) {
		b.subFetches.Add(1)
		b.mu.Lock()
		plan := b.plan
		b.mu.Unlock()
		if plan == "pro" {
			writeJSON(w, http.StatusOK, `{"success":true,"subscription":{"plan_type":"pro","status":"active","posts_used":10,"posts_limit":-1,"remaining":"unlimited"}}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"success":true,"subscription":{"plan_type":"free","status":"active","posts_used":10,"posts_limit":10,"remaining":0}}`)
	})
	mux.HandleFunc("POST /api/payments/create-order", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"order":{"id":"order_1","amount":49900,"currency":"INR","key_id":"rzp_test_key"}}`)
	})
	mux.HandleFunc("POST /api/payments/verify", func(w http.ResponseWriter, r *http.Request) {
		b.verifyCalled.Add(1)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		b.mu.Lock()
		b.verified = body
		b.plan = "pro"
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, `{"success":true,"message":"Payment verified"}`)
	})
	mux.HandleFunc("GET /api/connections", func(w http.ResponseWriter, r *http.Request) {
		b.connFetches.Add(1)
		b.mu.Lock()
		defer b.mu.Unlock()
		items := make([]string, 0, len(b.connections))
		for _, p := range b.connections {
			items = append(items, `{"platform":"`+p+`","platform_username":"me","is_active":true}`)
		}
		writeJSON(w, http.StatusOK, `{"success":true,"connections":[`+strings.Join(items, ",")+`]}`)
	})
	mux.HandleFunc("POST /api/post", func(w http.ResponseWriter, r *http.Request) {
		b.postCalls.Add(1)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		b.mu.Lock()
		b.posted = body
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, `{"success":true,"tweet_id":"42","url":"https://twitter.com/i/status/42"}`)
	})
	mux.HandleFunc("DELETE /api/connections/{platform}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		fail := b.disconnectErr
		b.mu.Unlock()
		if fail {
			writeJSON(w, http.StatusInternalServerError, `{"detail":"database unavailable"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"success":true,"message":"Twitter account disconnected"}`)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		mux.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func testSession(t *testing.T) *auth.Session {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-1",
		"email": "user@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	sess, err := auth.NewSession(tok, "refresh-1", "bearer")
	require.NoError(t, err)
	return sess
}

func testConfig(t *testing.T, backendURL string) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.API.BaseURL = backendURL
	cfg.Server.BaseURL = "http://dashboard.test"
	cfg.Server.Mode = "test"
	return cfg
}

type harness struct {
	app     *App
	backend *fakeBackend
	server  http.Handler
	opened  []string
}

func newHarness(t *testing.T, sess *auth.Session, opts ...Option) *harness {
	t.Helper()
	backend := newFakeBackend()
	srv := httptest.NewServer(backend.handler(t))
	t.Cleanup(srv.Close)

	h := &harness{backend: backend}
	opts = append([]Option{
		WithSessionStore(auth.NewMemorySessionStore(sess)),
		WithOpener(func(url string) error { h.opened = append(h.opened, url); return nil }),
	}, opts...)

	app, err := New(context.Background(), testConfig(t, srv.URL), logger.NewNopLogger(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	h.app = app
	h.server = app.Router().GetEngine()
	return h
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (h *harness) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	h.server.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestApp_Health(t *testing.T) {
	h := newHarness(t, testSession(t))

	w, _ := h.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestApp_UpgradeThroughDashboard(t *testing.T) {
	h := newHarness(t, testSession(t))

	w, env := h.do(t, http.MethodGet, "/dashboard/subscription", "")
	require.Equal(t, http.StatusOK, w.Code)
	var usage struct {
		PlanType  string `json:"plan_type"`
		IsAtLimit bool   `json:"is_at_limit"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &usage))
	assert.Equal(t, "free", usage.PlanType)
	assert.True(t, usage.IsAtLimit)

	w, env = h.do(t, http.MethodPost, "/dashboard/upgrade", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var started struct {
		State       string `json:"state"`
		Busy        bool   `json:"busy"`
		CheckoutURL string `json:"checkout_url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &started))
	assert.Equal(t, "widget_open", started.State)
	assert.True(t, started.Busy)
	assert.Equal(t, "http://dashboard.test/checkout/order_1", started.CheckoutURL)
	assert.Equal(t, []string{"http://dashboard.test/checkout/order_1"}, h.opened)

	// a second attempt while the widget is open is refused
	w, _ = h.do(t, http.MethodPost, "/dashboard/upgrade", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = h.do(t, http.MethodGet, "/checkout/order_1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "order_1")
	assert.Contains(t, w.Body.String(), "checkout.razorpay.com")

	w, _ = h.do(t, http.MethodPost, "/checkout/order_1/complete",
		`{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"sig_1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int32(1), h.backend.verifyCalled.Load())
	assert.Equal(t, "pay_1", h.backend.verified["razorpay_payment_id"])

	w, env = h.do(t, http.MethodGet, "/dashboard/upgrade", "")
	require.Equal(t, http.StatusOK, w.Code)
	var current struct {
		State   string `json:"state"`
		Busy    bool   `json:"busy"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &current))
	assert.Equal(t, "verified", current.State)
	assert.False(t, current.Busy)

	// verification invalidated the cached subscription
	_, env = h.do(t, http.MethodGet, "/dashboard/subscription", "")
	require.NoError(t, json.Unmarshal(env.Data, &usage))
	assert.Equal(t, "pro", usage.PlanType)
	assert.False(t, usage.IsAtLimit)
	assert.Equal(t, int32(2), h.backend.subFetches.Load())

	// the widget only reports once
	w, _ = h.do(t, http.MethodPost, "/checkout/order_1/dismiss", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApp_DismissReturnsToIdle(t *testing.T) {
	h := newHarness(t, testSession(t))

	w, _ := h.do(t, http.MethodPost, "/dashboard/upgrade", "")
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = h.do(t, http.MethodPost, "/checkout/order_1/dismiss", "")
	require.Equal(t, http.StatusOK, w.Code)

	_, env := h.do(t, http.MethodGet, "/dashboard/upgrade", "")
	var current struct {
		State   string `json:"state"`
		Outcome string `json:"outcome"`
		Busy    bool   `json:"busy"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &current))
	assert.Equal(t, "idle", current.State)
	assert.Equal(t, "dismissed", current.Outcome)
	assert.False(t, current.Busy)
	assert.Zero(t, h.backend.verifyCalled.Load())
}

func TestApp_DisconnectFailureRestoresConnection(t *testing.T) {
	h := newHarness(t, testSession(t))
	h.backend.disconnectErr = true

	w, _ := h.do(t, http.MethodGet, "/dashboard/connections", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, int32(1), h.backend.connFetches.Load())

	w, env := h.do(t, http.MethodDelete, "/dashboard/connections/twitter", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.False(t, env.Success)

	// the forced refetch after the mutation
	assert.Equal(t, int32(2), h.backend.connFetches.Load())

	_, env = h.do(t, http.MethodGet, "/dashboard/connections", "")
	var got struct {
		Connected map[string]bool `json:"connected"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.True(t, got.Connected["twitter"])
}

func TestApp_NoSessionFailsWithoutNetwork(t *testing.T) {
	h := newHarness(t, nil)

	w, env := h.do(t, http.MethodGet, "/dashboard/subscription", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "unauthenticated", env.Error.Type)
	assert.Zero(t, h.backend.requests.Load())
}

func TestApp_QueriesUseSeparateKeys(t *testing.T) {
	store := cache.NewMemoryStore()
	h := newHarness(t, testSession(t), WithCacheStore(store))

	h.do(t, http.MethodGet, "/dashboard/subscription", "")
	h.do(t, http.MethodGet, "/dashboard/connections", "")

	require.NoError(t, h.app.Subscription.Invalidate(context.Background()))

	entry, err := store.Get(context.Background(), ConnectionsKey)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.False(t, entry.Stale)
}

func TestNew_RedisDriver(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := testConfig(t, "http://backend.invalid")
	cfg.Cache.Driver = "redis"
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port, err = strconv.Atoi(mr.Port())
	require.NoError(t, err)

	app, err := New(context.Background(), cfg, logger.NewNopLogger(),
		WithSessionStore(auth.NewMemorySessionStore(nil)))
	require.NoError(t, err)
	defer app.Close()

	_, ok := app.Store.(*cache.RedisStore)
	assert.True(t, ok)
}

func TestNew_UnknownCacheDriver(t *testing.T) {
	cfg := testConfig(t, "http://backend.invalid")
	cfg.Cache.Driver = "memcached"

	_, err := New(context.Background(), cfg, logger.NewNopLogger(),
		WithSessionStore(auth.NewMemorySessionStore(nil)))
	assert.ErrorContains(t, err, "unknown cache driver")
}

func TestApp_PublishFromColdCacheFetchesConnections(t *testing.T) {
	h := newHarness(t, testSession(t))
	ctx := context.Background()

	entry, err := h.app.Store.Get(ctx, ConnectionsKey)
	require.NoError(t, err)
	require.Nil(t, entry)

	published, err := h.app.Publish.Execute(ctx, contentusecases.PublishCommand{
		Content:  "hello",
		Hashtags: []string{"#go"},
		Platform: "twitter",
	})
	require.NoError(t, err)
	assert.Equal(t, "42", published.PostID)
	assert.Equal(t, int32(1), h.backend.connFetches.Load())
	assert.Equal(t, int32(1), h.backend.postCalls.Load())

	h.backend.mu.Lock()
	assert.Equal(t, []any{"#go"}, h.backend.posted["hashtags"])
	h.backend.mu.Unlock()

	_, err = h.app.Publish.Execute(ctx, contentusecases.PublishCommand{Content: "again", Platform: "twitter"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), h.backend.connFetches.Load(), "fresh list is served from the cache")
}

func TestApp_PublishRefusedWhenPlatformNotLinked(t *testing.T) {
	h := newHarness(t, testSession(t))

	_, err := h.app.Publish.Execute(context.Background(), contentusecases.PublishCommand{Content: "hello", Platform: "github"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Connect your GitHub account")
	assert.Equal(t, int32(1), h.backend.connFetches.Load())
	assert.Zero(t, h.backend.postCalls.Load())
}

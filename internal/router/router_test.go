package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authhandler "github.com/korattejas/beautyden-nextjs-sub001/internal/handler/auth"
	bookinghandler "github.com/korattejas/beautyden-nextjs-sub001/internal/handler/booking"
	carthandler "github.com/korattejas/beautyden-nextjs-sub001/internal/handler/cart"
	cityhandler "github.com/korattejas/beautyden-nextjs-sub001/internal/handler/city"
	contenthandler "github.com/korattejas/beautyden-nextjs-sub001/internal/handler/content"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/handler/health"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/middleware"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/router"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/booking"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/cart"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/catalog"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/city"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/customer"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/session"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/upstream"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/logger"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/messaging"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/metrics"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/security"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/sequence"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/validator"
)

const (
	testKey    = "0123456789abcdef0123456789abcdef"
	testIV     = "abcdef9876543210"
	testSecret = "router-test-secret-0123456789abcdef"
)

// backend fakes the Laravel API. Categories come back encrypted.
type backend struct {
	mu       sync.Mutex
	hits     map[string]int
	bookings []map[string]interface{}
	cipher   *security.EnvelopeCipher
}

func (b *backend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.hits[r.URL.Path]++
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case upstream.PathCategories:
		sealed, _ := b.cipher.SealJSON([]map[string]interface{}{
			{"id": 1, "name": "Facial", "slug": "facial", "icon": "sparkles"},
			{"id": 2, "name": "Waxing", "slug": "waxing", "icon": "leaf"},
		})
		json.NewEncoder(w).Encode(map[string]interface{}{"status": true, "data": sealed})
	case upstream.PathBookings:
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.bookings = append(b.bookings, body)
		b.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data":   map[string]interface{}{"order_number": "BD-1001"},
		})
	default:
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{"status": false, "message": "not found"})
	}
}

type testApp struct {
	engine  *gin.Engine
	backend *backend
	broker  *messaging.MemoryBroker
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.RegisterGin()

	cipher, err := security.NewEnvelopeCipher(testKey, testIV)
	require.NoError(t, err)

	be := &backend{hits: make(map[string]int), cipher: cipher}
	srv := httptest.NewServer(be)
	t.Cleanup(srv.Close)

	log := logger.Nop()
	m := metrics.NewTestMetrics()
	decoder := upstream.NewDecoder(cipher)
	api := upstream.NewAPI(
		upstream.NewClient(upstream.Config{Name: "content", BaseURL: srv.URL}, decoder, log, m),
		upstream.NewClient(upstream.Config{Name: "customer", BaseURL: srv.URL, RequireAuth: true}, decoder, log, m),
	)

	broker := messaging.NewMemoryBroker()
	t.Cleanup(func() { broker.Close() })

	events := messaging.NewEventPublisher(broker)
	cities := city.NewService(log)
	carts := cart.NewService(events, log, m)
	catalogSvc := catalog.NewService(api, cities, sequence.NewTracker(time.Minute), time.Minute, log, m)
	bookingSvc := booking.NewService(api, carts, cities, events, log, m)

	storage := session.NewMemoryStorage(time.Hour, time.Minute)
	r := router.NewRouter(
		health.NewHandler(map[string]health.Checker{"sessions": storage.Ping}),
		router.RouterConfig{
			CORSConfig: middleware.DefaultCORSConfig(),
			Session: middleware.SessionConfig{
				Tokens:  session.NewTokenManager(testSecret, "test", time.Hour),
				Storage: storage,
				Locker:  session.NewLocker(8),
				TTL:     time.Hour,
				Metrics: m,
			},
			Metrics: m,
		},
		authhandler.NewHandler(customer.NewService(api, log)),
		contenthandler.NewHandler(catalogSvc),
		cityhandler.NewHandler(cities),
		carthandler.NewHandler(carts),
		bookinghandler.NewHandler(bookingSvc),
	)
	r.Setup()

	return &testApp{engine: r.Engine(), backend: be, broker: broker}
}

// TestResponse is the decoded response envelope.
type TestResponse struct {
	Code     int `json:"-"`
	Token    string
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data"`
	Empty    *bool           `json:"empty"`
	Redirect string          `json:"redirect"`
	Prompt   *struct {
		Type string `json:"type"`
	} `json:"prompt"`
	Details []validator.FieldError `json:"details"`
}

func (r TestResponse) IsSuccess() bool {
	return r.Status == "success"
}

func (r TestResponse) Decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, v))
}

func (a *testApp) makeRequest(t *testing.T, method, path string, body interface{}, token string) TestResponse {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.HeaderSessionToken, token)
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	resp := TestResponse{Code: w.Code, Token: w.Header().Get(middleware.HeaderSessionToken)}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestSessionTokenIsIssuedOnceAndReused(t *testing.T) {
	app := newTestApp(t)

	first := app.makeRequest(t, http.MethodGet, "/cart", nil, "")
	require.True(t, first.IsSuccess())
	require.NotEmpty(t, first.Token)

	second := app.makeRequest(t, http.MethodGet, "/cart", nil, first.Token)
	assert.True(t, second.IsSuccess())
	assert.Empty(t, second.Token)

	forged := app.makeRequest(t, http.MethodGet, "/cart", nil, "not-a-token")
	assert.True(t, forged.IsSuccess())
	assert.NotEmpty(t, forged.Token)
	assert.NotEqual(t, first.Token, forged.Token)
}

func TestHealthSkipsSessions(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil)
	w := httptest.NewRecorder()
	app.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(middleware.HeaderSessionToken))
}

func TestCategoriesRequireCity(t *testing.T) {
	app := newTestApp(t)
	token := app.makeRequest(t, http.MethodGet, "/city", nil, "").Token

	resp := app.makeRequest(t, http.MethodGet, "/categories", nil, token)
	assert.Equal(t, http.StatusPreconditionFailed, resp.Code)
	require.NotNil(t, resp.Prompt)
	assert.Equal(t, "select_city", resp.Prompt.Type)
	assert.Zero(t, app.backend.count(upstream.PathCategories))

	selected := app.makeRequest(t, http.MethodPut, "/city", map[string]interface{}{
		"city": map[string]interface{}{"id": 1, "name": "Surat", "state": "Gujarat"},
	}, token)
	require.True(t, selected.IsSuccess(), selected.Message)
	var state struct {
		ShowCityPopup bool `json:"show_city_popup"`
	}
	selected.Decode(t, &state)
	assert.False(t, state.ShowCityPopup)

	resp = app.makeRequest(t, http.MethodGet, "/categories", nil, token)
	require.True(t, resp.IsSuccess(), resp.Message)
	var categories []struct {
		Name string `json:"name"`
	}
	resp.Decode(t, &categories)
	require.Len(t, categories, 2)
	assert.Equal(t, "Facial", categories[0].Name)
	assert.Equal(t, 1, app.backend.count(upstream.PathCategories))
}

func TestInvalidBodyReportsFieldDetails(t *testing.T) {
	app := newTestApp(t)

	resp := app.makeRequest(t, http.MethodPost, "/auth/otp/send", map[string]string{"mobile_number": "12"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	require.NotEmpty(t, resp.Details)
	assert.Equal(t, "mobile_number", resp.Details[0].Field)
}

func TestProfileWithoutLoginRedirects(t *testing.T) {
	app := newTestApp(t)

	resp := app.makeRequest(t, http.MethodGet, "/auth/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "/login", resp.Redirect)
}

func TestBookingFlow(t *testing.T) {
	app := newTestApp(t)
	token := app.makeRequest(t, http.MethodPut, "/city", map[string]interface{}{
		"city": map[string]interface{}{"id": "1", "name": "Surat"},
	}, "").Token
	require.NotEmpty(t, token)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	confirmed, err := app.broker.Subscribe(ctx, messaging.ChannelBookingConfirmed)
	require.NoError(t, err)

	facial := map[string]interface{}{"id": "a", "name": "Facial", "price": 100, "category_id": "1"}
	waxing := map[string]interface{}{"id": "b", "name": "Waxing", "price": "200", "discount_price": "150", "category_id": "2"}
	app.makeRequest(t, http.MethodPost, "/cart/items", map[string]interface{}{"service": facial}, token)
	app.makeRequest(t, http.MethodPost, "/cart/items", map[string]interface{}{"service": facial}, token)
	resp := app.makeRequest(t, http.MethodPost, "/cart/items", map[string]interface{}{"service": waxing}, token)
	require.True(t, resp.IsSuccess(), resp.Message)

	var summary struct {
		TotalItems int     `json:"total_items"`
		TotalPrice float64 `json:"total_price"`
	}
	resp.Decode(t, &summary)
	assert.Equal(t, 2, summary.TotalItems)
	assert.Equal(t, 250.0, summary.TotalPrice)

	var view struct {
		CurrentStep int `json:"current_step"`
	}
	resp = app.makeRequest(t, http.MethodPost, "/booking/advance", nil, token)
	require.True(t, resp.IsSuccess(), resp.Message)
	resp.Decode(t, &view)
	assert.Equal(t, booking.StepDateTime, view.CurrentStep)

	resp = app.makeRequest(t, http.MethodPost, "/booking/confirm", nil, token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = app.makeRequest(t, http.MethodPatch, "/booking/form", map[string]string{
		"appointment_date": "2026-11-02",
		"appointment_time": "10:30 AM",
		"first_name":       "Riya",
		"last_name":        "Shah",
		"phone":            "9876543210",
		"address":          "12 Ghod Dod Road",
	}, token)
	require.True(t, resp.IsSuccess(), resp.Message)

	app.makeRequest(t, http.MethodPost, "/booking/next", nil, token)
	resp = app.makeRequest(t, http.MethodPost, "/booking/next", nil, token)
	resp.Decode(t, &view)
	require.Equal(t, booking.StepReviewConfirm, view.CurrentStep)

	resp = app.makeRequest(t, http.MethodPost, "/booking/confirm", nil, token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Message)
	var conf struct {
		OrderNumber string `json:"order_number"`
	}
	resp.Decode(t, &conf)
	assert.Equal(t, "BD-1001", conf.OrderNumber)

	require.Len(t, app.backend.bookings, 1)
	sent := app.backend.bookings[0]
	assert.Equal(t, []interface{}{"a", "b"}, sent["service_id"])
	assert.Equal(t, 300.0, sent["price"])
	assert.Equal(t, 250.0, sent["service_total"])
	assert.Equal(t, "1", sent["city_id"])

	resp = app.makeRequest(t, http.MethodGet, "/cart", nil, token)
	resp.Decode(t, &summary)
	assert.Zero(t, summary.TotalItems)

	select {
	case raw := <-confirmed:
		var msg struct {
			SessionID string `json:"session_id"`
			Payload   struct {
				OrderNumber string `json:"order_number"`
			} `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "BD-1001", msg.Payload.OrderNumber)
		assert.NotEmpty(t, msg.SessionID)
	case <-time.After(time.Second):
		t.Fatal("booking.confirmed was not published")
	}
}

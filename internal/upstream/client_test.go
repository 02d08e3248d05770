package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/model"
	apperrors "github.com/korattejas/beautyden-nextjs-sub001/pkg/errors"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/logger"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/metrics"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/security"
)

const (
	testKey = "0123456789abcdef0123456789abcdef"
	testIV  = "abcdef9876543210"
)

func newTestCipher(t *testing.T) *security.EnvelopeCipher {
	t.Helper()
	c, err := security.NewEnvelopeCipher(testKey, testIV)
	require.NoError(t, err)
	return c
}

func newTestClient(t *testing.T, baseURL string, cfg Config) *Client {
	t.Helper()
	cfg.BaseURL = baseURL
	if cfg.Name == "" {
		cfg.Name = "content"
	}
	return NewClient(cfg, NewDecoder(newTestCipher(t)), logger.Nop(), metrics.NewTestMetrics())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type fakeCredentials struct {
	mu     sync.Mutex
	token  string
	purged bool
}

func (f *fakeCredentials) Token(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, nil
}

func (f *fakeCredentials) Purge(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.purged = true
	return nil
}

func TestGetDecodesPlainJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathCities, r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  true,
			"message": "ok",
			"data":    []map[string]interface{}{{"id": 1, "name": "Surat", "is_popular": 1}},
		})
	}))
	defer srv.Close()

	var cities []model.City
	err := newTestClient(t, srv.URL, Config{}).Get(context.Background(), PathCities, nil, &cities)
	require.NoError(t, err)
	require.Len(t, cities, 1)
	assert.Equal(t, model.ID("1"), cities[0].ID)
	assert.True(t, bool(cities[0].IsPopular))
}

func TestGetDecryptsEnvelope(t *testing.T) {
	c := newTestCipher(t)
	sealed, err := c.SealJSON(map[string]string{"phone_number": "+91 90000 00000", "our_mission": "Glow: anywhere"})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": true, "data": sealed})
	}))
	defer srv.Close()

	api := NewAPI(newTestClient(t, srv.URL, Config{}), nil)
	settings, err := api.Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "+91 90000 00000", settings["phone_number"])
	assert.Equal(t, "Glow: anywhere", settings["our_mission"])
}

func TestGetDecryptsBareEnvelopeBody(t *testing.T) {
	c := newTestCipher(t)
	sealed, err := c.SealJSON([]map[string]interface{}{{"id": "3", "question": "Do you travel?", "answer": "Yes"}})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sealed)
	}))
	defer srv.Close()

	api := NewAPI(newTestClient(t, srv.URL, Config{}), nil)
	faqs, err := api.FAQs(context.Background())
	require.NoError(t, err)
	require.Len(t, faqs, 1)
	assert.Equal(t, "Do you travel?", faqs[0].Question)
}

func TestMalformedEnvelopeIsDecryptionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": true, "data": "bm90LWNpcGhlcg==:00ff"})
	}))
	defer srv.Close()

	var out map[string]interface{}
	err := newTestClient(t, srv.URL, Config{}).Get(context.Background(), PathSettings, nil, &out)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrDecryption))
}

func TestStatusFalseIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": false, "message": "City not serviceable"})
	}))
	defer srv.Close()

	var out []model.BookingService
	err := newTestClient(t, srv.URL, Config{}).Get(context.Background(), PathServices, nil, &out)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUpstream, appErr.Code)
	assert.Equal(t, "City not serviceable", appErr.Message)
}

func TestPaginatedServices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("city_id"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "facial", r.URL.Query().Get("search"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": true,
			"data": map[string]interface{}{
				"current_page": 2, "last_page": 3, "per_page": 1, "total": 3,
				"data": []map[string]interface{}{{"id": 9, "name": "Gold Facial", "price": "999.00"}},
			},
		})
	}))
	defer srv.Close()

	api := NewAPI(newTestClient(t, srv.URL, Config{}), nil)
	page, err := api.Services(context.Background(), model.ServiceFilter{
		Pagination: model.Pagination{Page: 2, PerPage: 1},
		CityID:     "7",
		Search:     "facial",
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, model.Amount(999), page.Items[0].Price)
	assert.True(t, page.HasMore())
}

func TestCustomerClientAttachesTokenAndPurgesOn401(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("Authorization") != "Bearer good" {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"message": "Unauthenticated."})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": true,
			"data":   map[string]interface{}{"customer": map[string]interface{}{"id": 5, "name": "Riya", "mobile_number": "9876543210"}},
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Config{Name: "customer", RequireAuth: true})
	api := NewAPI(nil, client)

	creds := &fakeCredentials{token: "good"}
	profile, err := api.Profile(WithCredentials(context.Background(), creds))
	require.NoError(t, err)
	assert.Equal(t, "Riya", profile.Name)

	creds.token = "stale"
	_, err = api.Profile(WithCredentials(context.Background(), creds))
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
	assert.True(t, creds.purged)
	assert.Empty(t, creds.token)
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": true, "data": []interface{}{}})
	}))
	defer srv.Close()

	var out []model.FAQ
	err := newTestClient(t, srv.URL, Config{MaxRetries: 3}).Get(context.Background(), PathFAQs, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPostIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestClient(t, srv.URL, Config{MaxRetries: 3}).PostJSON(context.Background(), PathBookings, map[string]string{}, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrUpstream))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestValidationErrorsAreNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"message": "The mobile number field is required."})
	}))
	defer srv.Close()

	api := NewAPI(nil, newTestClient(t, srv.URL, Config{Name: "customer", RequireAuth: true, MaxRetries: 3}))
	err := api.SendOTP(context.Background(), "")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	assert.Equal(t, "The mobile number field is required.", appErr.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSendOTPUsesMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "9876543210", r.FormValue("mobile_number"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": true, "message": "OTP sent"})
	}))
	defer srv.Close()

	api := NewAPI(nil, newTestClient(t, srv.URL, Config{Name: "customer", RequireAuth: true}))
	assert.NoError(t, api.SendOTP(context.Background(), "9876543210"))
}

func TestTimeoutIsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": true})
	}))
	defer srv.Close()

	var out interface{}
	err := newTestClient(t, srv.URL, Config{Timeout: 50 * time.Millisecond}).Get(context.Background(), PathSettings, nil, &out)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrUpstreamTimeout))
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Config{BreakerFailures: 2, BreakerTimeout: time.Minute})
	var out interface{}
	for i := 0; i < 2; i++ {
		_ = client.Get(context.Background(), PathSettings, nil, &out)
	}
	err := client.Get(context.Background(), PathSettings, nil, &out)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "service temporarily unavailable", appErr.Message)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCoalescedGetSurvivesFirstCallerCancel(t *testing.T) {
	var hits int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": true,
			"data":   []map[string]interface{}{{"id": 1, "name": "Surat"}},
		})
	}))
	defer srv.Close()
	defer close(release)

	client := newTestClient(t, srv.URL, Config{Timeout: 5 * time.Second})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		var out []model.City
		firstErr <- client.Get(firstCtx, PathCities, nil, &out)
	}()
	<-started

	type result struct {
		cities []model.City
		err    error
	}
	second := make(chan result, 1)
	go func() {
		var out []model.City
		err := client.Get(context.Background(), PathCities, nil, &out)
		second <- result{cities: out, err: err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	release <- struct{}{}
	select {
	case res := <-second:
		require.NoError(t, res.err)
		require.Len(t, res.cities, 1)
		assert.Equal(t, "Surat", res.cities[0].Name)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller never got the shared response")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

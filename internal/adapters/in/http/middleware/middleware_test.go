package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/adapters/out/memory"
	"storefront/internal/application/session"
	pcbuilddom "storefront/internal/domain/pcbuild"
	productdom "storefront/internal/domain/product"
	"storefront/internal/infra/logging"
	"storefront/internal/infra/metrics"
)

func TestRecover_WritesJSON500(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := middleware.Recover(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	assert.Equal(t, 1, logs.Len())
}

func TestLogger_TagsRequest(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	var fromCtx *zap.Logger

	h := chimw.RequestID(middleware.Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = logging.FromContext(r.Context(), nil)
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tea", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	require.NotNil(t, fromCtx)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, int64(http.StatusTeapot), entry.ContextMap()["status"])
	assert.Equal(t, rec.Header().Get("X-Request-Id"), entry.ContextMap()["request_id"])
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	m := metrics.New(false)
	r := chi.NewRouter()
	r.Use(middleware.Metrics(m))
	r.Get("/orders/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/"+id, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestTotal.WithLabelValues("GET", "/orders/{id}", "204")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RequestInFlight))
}

func TestCORS_Preflight(t *testing.T) {
	h := middleware.CORS([]string{"https://shop.example"})(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodOptions, "/cart/", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", middleware.SessionHeader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://shop.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequireSession(t *testing.T) {
	cat, err := productdom.Default()
	require.NoError(t, err)
	reg := session.NewRegistry(session.Deps{
		Catalog:   cat,
		KV:        func(string) pcbuilddom.KV { return memory.NewKV() },
		Identity:  memory.NewIdentity(),
		Profiles:  memory.NewProfileRepository(),
		Addresses: memory.NewAddressRepository(),
	}, time.Hour)
	t.Cleanup(reg.Close)
	s, err := reg.Create(context.Background())
	require.NoError(t, err)

	var seen *session.Session
	h := middleware.RequireSession(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = middleware.SessionFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "session_required")

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart/", nil)
	req.Header.Set(middleware.SessionHeader, uuid.NewString())
	h.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), "session_not_found")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart/stream?session="+s.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Same(t, s, seen)
}

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gartstein/cadastro/internal/cadastro/db"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrument(t *testing.T) {
	m := New()
	handler := m.Instrument("/empresas/{id}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/empresas/1", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues(http.MethodGet, "/empresas/{id}", "404")))
}

func TestObserveOperation(t *testing.T) {
	m := New()
	m.ObserveOperation("link_supplier", "conflict")
	m.ObserveOperation("link_supplier", "conflict")
	m.ObserveOperation("link_supplier", "success")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("link_supplier", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("link_supplier", "success")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveOperation("create_company", "success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `cadastro_operations_total{operation="create_company",outcome="success"} 1`))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	m.ObserveOperation("noop", "success")

	rec := httptest.NewRecorder()
	m.Instrument("/x", next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRegisterDBStats(t *testing.T) {
	repo, err := db.NewRepository(&db.Config{Driver: db.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	sqlDB, err := repo.SQLDB()
	require.NoError(t, err)

	m := New()
	require.NoError(t, m.RegisterDBStats(sqlDB, "cadastro"))
	assert.Error(t, m.RegisterDBStats(sqlDB, "cadastro"), "duplicate collector")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `go_sql_max_open_connections{db_name="cadastro"} 1`)

	var nilMetrics *Metrics
	assert.NoError(t, nilMetrics.RegisterDBStats(sqlDB, "cadastro"))
}

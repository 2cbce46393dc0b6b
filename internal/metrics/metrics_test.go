package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewWithRegistry(prometheus.NewRegistry())

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/parking/lots/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	for _, id := range []string{"1", "2", "3"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/parking/lots/"+id, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.APIRequestCounter.WithLabelValues("GET", "/parking/lots/:id", "200")))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "peekpark_api_requests_total"))
}

func TestCounters(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.OTPRequests.WithLabelValues(OutcomeSuccess).Inc()
	m.OTPRequests.WithLabelValues(OutcomeRejected).Inc()
	m.OTPRequests.WithLabelValues(OutcomeRejected).Inc()
	m.Logouts.Inc()
	m.SessionActive.Set(1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OTPRequests.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OTPRequests.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Logouts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionActive))
}

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ExposesRegisteredCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)
	OTPVerifications.WithLabelValues("success").Inc()

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	assert.Contains(t, string(body), `otp_verifications_total{result="success"}`)
}

func TestOTPIssued_CountsByLabel(t *testing.T) {
	before := testutil.ToFloat64(OTPIssued.WithLabelValues("email", "sent"))
	OTPIssued.WithLabelValues("email", "sent").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(OTPIssued.WithLabelValues("email", "sent")))
}

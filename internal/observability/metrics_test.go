package observability_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/dpp-hub/portal-core/internal/observability"
)

func TestMetricsRecordDomainResolution(t *testing.T) {
	metrics := observability.NewMetrics()
	metrics.RecordDomainResolution("cache_hit")
	metrics.RecordDomainResolution("cache_hit")
	metrics.RecordDomainResolution("resolved")

	count, err := testutil.GatherAndCount(metrics.Registry(), "portal_domain_resolutions_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestMetricsRecordRequest(t *testing.T) {
	metrics := observability.NewMetrics()
	metrics.RecordRequest("/api/domain", "GET", 200, 15*time.Millisecond)
	metrics.RecordError("/api/domain", "GET", "DOMAIN_NOT_FOUND")

	count, err := testutil.GatherAndCount(metrics.Registry(), "portal_http_requests_total", "portal_http_errors_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestMetricsNilSafe(t *testing.T) {
	var metrics *observability.Metrics
	require.NotPanics(t, func() {
		metrics.RecordRequest("/", "GET", 200, time.Millisecond)
		metrics.RecordError("/", "GET", "X")
		metrics.RecordDomainResolution("platform")
	})
}

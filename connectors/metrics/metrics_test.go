package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metro-costs/domain/transit"
)

func TestRunTextfile(t *testing.T) {
	r := NewRun()
	r.Observe(
		[]transit.Frame{{Name: "metro_costs", Rows: [][]string{{"a"}, {"b"}}}},
		[]transit.Exclusion{
			{Stage: "track.metro", Reason: transit.ReasonNotMetro, Count: 4},
			{Stage: "track.currency", Reason: transit.ReasonUnmappedRate, Count: 1},
		},
		1500*time.Millisecond,
	)

	assert.Equal(t, 4.0, testutil.ToFloat64(r.excluded.WithLabelValues("track.metro", "not_metro")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.rows.WithLabelValues("metro_costs")))

	path := filepath.Join(t.TempDir(), "textfile", "metro_costs.prom")
	require.NoError(t, r.WriteTextfile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	body := string(b)

	assert.Contains(t, body, `metro_costs_excluded_rows_total{reason="not_metro",stage="track.metro"} 4`)
	assert.Contains(t, body, `metro_costs_excluded_rows_total{reason="unmapped_exchange_rate",stage="track.currency"} 1`)
	assert.Contains(t, body, `metro_costs_output_rows{frame="metro_costs"} 2`)
	assert.Contains(t, body, `metro_costs_run_duration_seconds 1.5`)
	assert.Contains(t, body, "metro_costs_last_run_timestamp_seconds")
}

package interpolate_test

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aescanero/dago-interpolate/pkg/interpolate"
)

func TestCacheCollector(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()

	_, err := engine.Eval(ctx, "{x * 2}", map[string]any{"x": 1}, nil)
	require.NoError(t, err)
	_, err = engine.Eval(ctx, "{x * 2}", map[string]any{"x": 1}, nil)
	require.NoError(t, err)

	collector := interpolate.NewCacheCollector(engine)
	assert.Equal(t, 4, testutil.CollectAndCount(collector))

	expected := `
# HELP interpolate_cache_entries Live compiled units.
# TYPE interpolate_cache_entries gauge
interpolate_cache_entries 1
# HELP interpolate_cache_hits_total Compiled-unit cache hits.
# TYPE interpolate_cache_hits_total counter
interpolate_cache_hits_total 1
# HELP interpolate_cache_lookups_total Compiled-unit cache lookups.
# TYPE interpolate_cache_lookups_total counter
interpolate_cache_lookups_total 2
`
	assert.NoError(t, testutil.CollectAndCompare(collector, strings.NewReader(expected),
		"interpolate_cache_entries",
		"interpolate_cache_hits_total",
		"interpolate_cache_lookups_total",
	))
}

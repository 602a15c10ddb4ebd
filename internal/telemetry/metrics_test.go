package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetMetrics_singleton(t *testing.T) {
	m := GetMetrics()
	require.NotNil(t, m)
	require.Same(t, m, GetMetrics())
	require.NotNil(t, m.BuildsTotal)
	require.NotNil(t, m.BuildDuration)
}

func TestRecordBuild_noopProvider(t *testing.T) {
	ctx := context.Background()

	require.NotPanics(t, func() {
		RecordBuild(ctx, "production", 25*time.Millisecond, nil)
		RecordBuild(ctx, "development", time.Millisecond, errors.New("boom"))
		RecordOutputs(ctx, 3, 2048)
	})
}

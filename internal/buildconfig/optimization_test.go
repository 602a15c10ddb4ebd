package buildconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveOptimizationPolicy_development(t *testing.T) {
	policy := ResolveOptimizationPolicy(Development)
	require.Equal(t, SplitAll, policy.SplitChunks)
	require.Empty(t, policy.Minimizers)
}

func TestResolveOptimizationPolicy_production(t *testing.T) {
	policy := ResolveOptimizationPolicy(Production)
	require.Equal(t, SplitAll, policy.SplitChunks)
	require.Len(t, policy.Minimizers, 2)
	require.Equal(t, StageCSSMinimizer, policy.Minimizers[0].Name)
	require.Equal(t, StageJSMinimizer, policy.Minimizers[1].Name)
}

package buildconfig

// SplitAll moves dependencies shared by any chunk into a common bundle.
const SplitAll = "all"

// OptimizationPolicy controls chunk splitting and output minification.
type OptimizationPolicy struct {
	SplitChunks string  `yaml:"split_chunks"`
	Minimizers  []Stage `yaml:"minimizers,omitempty"`
}

// ResolveOptimizationPolicy always splits chunks. Production adds the
// stylesheet minimizer followed by the script minimizer.
func ResolveOptimizationPolicy(mode Mode) OptimizationPolicy {
	policy := OptimizationPolicy{SplitChunks: SplitAll}
	if !mode.IsDevelopment() {
		policy.Minimizers = []Stage{
			{Name: StageCSSMinimizer},
			{Name: StageJSMinimizer, Options: map[string]any{"mangle": true}},
		}
	}
	return policy
}

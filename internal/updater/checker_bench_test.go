package updater

import (
	"testing"
)

// BenchmarkCheckForUpdates measures the opt-out fast path, which runs
// on every CLI invocation.
func BenchmarkCheckForUpdates(b *testing.B) {
	b.Setenv("WASMGRAPH_NO_UPDATE_CHECK", "1")
	checker := NewChecker("v1.0.0")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		checker.CheckForUpdates()
	}
}

// BenchmarkVersionComparison benchmarks version comparison
func BenchmarkVersionComparison(b *testing.B) {
	checker := NewChecker("v1.0.0")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		checker.compareVersions("v1.0.0", "v2.0.0")
	}
}

// BenchmarkCacheCheck benchmarks cache checking
func BenchmarkCacheCheck(b *testing.B) {
	checker := &Checker{
		currentVersion: "v1.0.0",
		cacheDir:       b.TempDir(),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		checker.shouldCheck()
	}
}

// BenchmarkNewChecker benchmarks checker creation
func BenchmarkNewChecker(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = NewChecker("v1.0.0")
	}
}

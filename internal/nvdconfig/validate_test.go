package nvdconfig

import "testing"

func TestValidateTieredNegativeMaxInstancesIsFatalButClamped(t *testing.T) {
	cfg := Default()
	cfg.MaxInstances = -5
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("negative max_instances should be fatal")
	}
	if cfg.MaxInstances != 0 {
		t.Fatalf("MaxInstances = %d, want 0 (unbounded)", cfg.MaxInstances)
	}
}

func TestValidateTieredUnknownBackendFallsBackToDirect(t *testing.T) {
	cfg := Default()
	cfg.Backend = "cuda-direct-render"
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("unknown backend should be fatal")
	}
	if cfg.Backend != BackendDirect {
		t.Fatalf("Backend = %q, want %q", cfg.Backend, BackendDirect)
	}
}

func TestValidateTieredEmptyBackendDefaultsToDirect(t *testing.T) {
	cfg := Default()
	cfg.Backend = ""
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("empty backend should not be fatal: %v", result.Fatals)
	}
	if cfg.Backend != BackendDirect {
		t.Fatalf("Backend = %q, want %q", cfg.Backend, BackendDirect)
	}
}

func TestValidateTieredGPUBelowSentinelIsWarning(t *testing.T) {
	cfg := Default()
	cfg.GPU = -7
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("invalid gpu index should be a warning, not fatal: %v", result.Fatals)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected a warning for invalid gpu index")
	}
	if cfg.GPU != -1 {
		t.Fatalf("GPU = %d, want -1", cfg.GPU)
	}
}

func TestHasFatals(t *testing.T) {
	var r ValidationResult
	if r.HasFatals() {
		t.Fatal("HasFatals() on empty result should be false")
	}
}

func TestDefaultConfigHasNoFatals(t *testing.T) {
	cfg := Default()
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("default config has fatals: %v", result.Fatals)
	}
	if len(result.Warnings) > 0 {
		t.Fatalf("default config has warnings: %v", result.Warnings)
	}
}

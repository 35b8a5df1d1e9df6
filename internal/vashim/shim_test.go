package vashim

import (
	"errors"
	"testing"

	"github.com/nvcuvid/vaapi-driver/internal/driver"
	"github.com/nvcuvid/vaapi-driver/internal/nvdconfig"
	"github.com/nvcuvid/vaapi-driver/internal/vacontract"
)

func testShimConfig() *nvdconfig.Config {
	cfg := nvdconfig.Default()
	cfg.Backend = nvdconfig.BackendDirect
	return cfg
}

func newTestShim(t *testing.T) *Shim {
	t.Helper()
	s, status := NewShim(testShimConfig(), nil)
	if status != vacontract.StatusSuccess {
		t.Fatalf("NewShim: %v", status)
	}
	t.Cleanup(func() { s.Terminate() })
	return s
}

func TestStatusFromErrorMapsNilToSuccess(t *testing.T) {
	if got := StatusFromError(nil); got != vacontract.StatusSuccess {
		t.Fatalf("StatusFromError(nil) = %v, want StatusSuccess", got)
	}
}

func TestStatusFromErrorUnwrapsDriverError(t *testing.T) {
	s := newTestShim(t)

	_, status := s.CreateConfig(vacontract.Profile(9999), vacontract.EntrypointVLD, 0)
	if status != vacontract.StatusErrorUnsupportedProfile {
		t.Fatalf("status = %v, want StatusErrorUnsupportedProfile", status)
	}
}

func TestStatusFromErrorFallsBackForUnknownErrorType(t *testing.T) {
	if got := StatusFromError(errors.New("opaque failure")); got != vacontract.StatusErrorOperationFailed {
		t.Fatalf("StatusFromError(opaque) = %v, want StatusErrorOperationFailed", got)
	}
}

func TestShimCreateConfigRoundTripsID(t *testing.T) {
	s := newTestShim(t)

	id, status := s.CreateConfig(vacontract.ProfileH264Main, vacontract.EntrypointVLD, 0)
	if status != vacontract.StatusSuccess {
		t.Fatalf("CreateConfig status = %v", status)
	}
	if id == 0 {
		t.Fatal("CreateConfig returned the invalid id 0")
	}

	if status := s.DestroyConfig(id); status != vacontract.StatusSuccess {
		t.Fatalf("DestroyConfig status = %v", status)
	}
	if _, status := s.GetConfigAttributes(id); status != vacontract.StatusErrorInvalidConfig {
		t.Fatalf("GetConfigAttributes after destroy = %v, want StatusErrorInvalidConfig", status)
	}
}

func TestShimCreateContextRejectsUnknownConfigID(t *testing.T) {
	s := newTestShim(t)

	_, status := s.CreateContext(12345, 64, 64, nil)
	if status != vacontract.StatusErrorInvalidConfig {
		t.Fatalf("CreateContext with unknown config id = %v, want StatusErrorInvalidConfig", status)
	}
}

func TestShimCreateContextRejectsUnknownSurfaceID(t *testing.T) {
	s := newTestShim(t)

	cfgID, status := s.CreateConfig(vacontract.ProfileH264Main, vacontract.EntrypointVLD, 0)
	if status != vacontract.StatusSuccess {
		t.Fatalf("CreateConfig status = %v", status)
	}

	_, status = s.CreateContext(cfgID, 64, 64, []uint32{99999})
	if status != vacontract.StatusErrorInvalidSurface {
		t.Fatalf("CreateContext with unknown surface id = %v, want StatusErrorInvalidSurface", status)
	}
}

func TestShimCreateSurfacesThenDestroy(t *testing.T) {
	s := newTestShim(t)

	ids, status := s.CreateSurfaces(vacontract.SurfaceFormatNV12, 64, 64, 3)
	if status != vacontract.StatusSuccess {
		t.Fatalf("CreateSurfaces status = %v", status)
	}
	if len(ids) != 3 {
		t.Fatalf("CreateSurfaces returned %d ids, want 3", len(ids))
	}
	for _, id := range ids {
		if id == 0 {
			t.Fatal("CreateSurfaces returned the invalid id 0")
		}
	}

	if status := s.DestroySurfaces(ids); status != vacontract.StatusSuccess {
		t.Fatalf("DestroySurfaces status = %v", status)
	}
}

func TestShimQueryConfigProfilesAndEntrypointsAlwaysSucceed(t *testing.T) {
	s := newTestShim(t)

	profiles, status := s.QueryConfigProfiles()
	if status != vacontract.StatusSuccess {
		t.Fatalf("QueryConfigProfiles status = %v", status)
	}
	if len(profiles) == 0 {
		t.Fatal("expected at least the baseline profile set")
	}

	entrypoints, status := s.QueryConfigEntrypoints()
	if status != vacontract.StatusSuccess {
		t.Fatalf("QueryConfigEntrypoints status = %v", status)
	}
	if len(entrypoints) != 1 || entrypoints[0] != vacontract.EntrypointVLD {
		t.Fatalf("entrypoints = %v, want [VLD]", entrypoints)
	}
}

func TestShimBufferLifecycle(t *testing.T) {
	s := newTestShim(t)

	id, status := s.CreateBuffer(vacontract.BufferTypeSliceData, 4, []byte{1, 2, 3, 4})
	if status != vacontract.StatusSuccess {
		t.Fatalf("CreateBuffer status = %v", status)
	}

	if status := s.MapBuffer(id, []byte{5, 6, 7, 8}); status != vacontract.StatusSuccess {
		t.Fatalf("MapBuffer status = %v", status)
	}

	if status := s.DestroyBuffer(id); status != vacontract.StatusSuccess {
		t.Fatalf("DestroyBuffer status = %v", status)
	}
	if status := s.MapBuffer(id, []byte{0}); status != vacontract.StatusErrorInvalidBuffer {
		t.Fatalf("MapBuffer after destroy = %v, want StatusErrorInvalidBuffer", status)
	}
}

func TestShimImageLifecycle(t *testing.T) {
	s := newTestShim(t)

	id, status := s.CreateImage(vacontract.SurfaceFormatNV12, 64, 64)
	if status != vacontract.StatusSuccess {
		t.Fatalf("CreateImage status = %v", status)
	}
	if status := s.DestroyImage(id); status != vacontract.StatusSuccess {
		t.Fatalf("DestroyImage status = %v", status)
	}
}

func TestShimQuerySurfaceAttributesRejectsUnknownConfig(t *testing.T) {
	s := newTestShim(t)

	_, status := s.QuerySurfaceAttributes(424242)
	if status != vacontract.StatusErrorInvalidConfig {
		t.Fatalf("QuerySurfaceAttributes with unknown config = %v, want StatusErrorInvalidConfig", status)
	}
}

// driverErrorHasStatus is a narrow helper confirming StatusFromError really
// does an errors.As unwrap rather than a type assertion, so a wrapped
// *driver.Error still maps correctly.
func driverErrorHasStatus(err error, want vacontract.Status) bool {
	var derr *driver.Error
	if !errors.As(err, &derr) {
		return false
	}
	return derr.Status == want
}

func TestStatusFromErrorUnwrapsWrappedDriverError(t *testing.T) {
	base := &driver.Error{Status: vacontract.StatusErrorDecodingError}
	wrapped := errors.Join(base)

	if !driverErrorHasStatus(wrapped, vacontract.StatusErrorDecodingError) {
		t.Fatal("sanity check failed: errors.As did not find the joined *driver.Error")
	}
	if got := StatusFromError(wrapped); got != vacontract.StatusErrorDecodingError {
		t.Fatalf("StatusFromError(wrapped) = %v, want StatusErrorDecodingError", got)
	}
}

package driver

import (
	"testing"

	"github.com/nvcuvid/vaapi-driver/internal/vacontract"
)

func TestCreateConfigDefaultsToNV12Baseline(t *testing.T) {
	inst := newTestInstance(t)

	cfg, err := inst.CreateConfig(vacontract.ProfileH264Main, vacontract.EntrypointVLD, 0)
	if err != nil {
		t.Fatalf("CreateConfig: %v", err)
	}
	if cfg.Format != vacontract.SurfaceFormatNV12 || cfg.Chroma != vacontract.Chroma420 || cfg.BitDepth != 8 {
		t.Fatalf("expected NV12/420/8-bit defaults, got %+v", cfg)
	}
	if cfg.ID == 0 {
		t.Fatal("expected a non-zero registry id")
	}
}

func TestCreateConfigRejectsUnsupportedProfile(t *testing.T) {
	inst := newTestInstance(t)

	_, err := inst.CreateConfig(vacontract.Profile(999), vacontract.EntrypointVLD, 0)
	if err == nil {
		t.Fatal("expected an error for an unrecognized profile")
	}
	if derr := err.(*Error); derr.Status != StatusUnsupportedProfile {
		t.Fatalf("expected StatusUnsupportedProfile, got %v", derr.Status)
	}
}

func TestCreateConfigRejectsNonVLDEntrypoint(t *testing.T) {
	inst := newTestInstance(t)

	_, err := inst.CreateConfig(vacontract.ProfileH264Main, vacontract.Entrypoint(99), 0)
	if err == nil {
		t.Fatal("expected an error for a non-VLD entrypoint")
	}
	if derr := err.(*Error); derr.Status != StatusUnsupportedEntrypoint {
		t.Fatalf("expected StatusUnsupportedEntrypoint, got %v", derr.Status)
	}
}

// TestCreateConfigOverridesToP016For10Bit exercises §8 scenario 2: a
// HEVC Main10 profile with the matching RT-format attribute and caps
// flags on produces a P016/10-bit Config instead of the NV12 default.
func TestCreateConfigOverridesToP016For10Bit(t *testing.T) {
	inst := newTestInstance(t)
	inst.probe.Supports16BitSurface = true

	cfg, err := inst.CreateConfig(vacontract.ProfileHEVCMain10, vacontract.EntrypointVLD, vacontract.RTFormatYUV420_10)
	if err != nil {
		t.Fatalf("CreateConfig: %v", err)
	}
	if cfg.Format != vacontract.SurfaceFormatP016 || cfg.BitDepth != 10 {
		t.Fatalf("expected P016/10-bit override, got format=%v bitDepth=%d", cfg.Format, cfg.BitDepth)
	}
}

// TestCreateConfigOverrideGatedByCapsFlag confirms the override table
// leaves the Config at NV12/8-bit defaults when the caps flag that would
// unlock 10-bit output is off, even though the profile and RT-format match.
func TestCreateConfigOverrideGatedByCapsFlag(t *testing.T) {
	inst := newTestInstance(t)
	inst.probe.Supports16BitSurface = false

	cfg, err := inst.CreateConfig(vacontract.ProfileHEVCMain10, vacontract.EntrypointVLD, vacontract.RTFormatYUV420_10)
	if err != nil {
		t.Fatalf("CreateConfig: %v", err)
	}
	if cfg.Format != vacontract.SurfaceFormatNV12 || cfg.BitDepth != 8 {
		t.Fatalf("expected defaults left untouched, got format=%v bitDepth=%d", cfg.Format, cfg.BitDepth)
	}
}

func TestDestroyConfigThenLookupFails(t *testing.T) {
	inst := newTestInstance(t)
	cfg, err := inst.CreateConfig(vacontract.ProfileH264Main, vacontract.EntrypointVLD, 0)
	if err != nil {
		t.Fatalf("CreateConfig: %v", err)
	}
	if err := inst.DestroyConfig(cfg.ID); err != nil {
		t.Fatalf("DestroyConfig: %v", err)
	}
	if _, err := inst.lookupConfig(cfg.ID); err == nil {
		t.Fatal("expected lookupConfig to fail after DestroyConfig")
	}
}

func TestGetConfigAttributesMatchesQueryConfigAttributes(t *testing.T) {
	inst := newTestInstance(t)
	cfg, err := inst.CreateConfig(vacontract.ProfileH264Main, vacontract.EntrypointVLD, 0)
	if err != nil {
		t.Fatalf("CreateConfig: %v", err)
	}

	got, err := inst.GetConfigAttributes(cfg.ID)
	if err != nil {
		t.Fatalf("GetConfigAttributes: %v", err)
	}
	want, err := inst.QueryConfigAttributes(vacontract.ProfileH264Main, vacontract.EntrypointVLD)
	if err != nil {
		t.Fatalf("QueryConfigAttributes: %v", err)
	}
	if got != want {
		t.Fatalf("GetConfigAttributes=%v QueryConfigAttributes=%v, want equal", got, want)
	}
	if got != vacontract.RTFormatYUV420 {
		t.Fatalf("expected bare YUV420 for H264Main, got %v", got)
	}
}

// TestRTFormatAttributeCumulatesBits resolves the open question about the
// fallthrough-without-break behavior: a profile's RT-format attribute
// accumulates every compatible bit rather than replacing one with another.
func TestRTFormatAttributeCumulatesBits(t *testing.T) {
	inst := newTestInstance(t)
	inst.probe.Supports16BitSurface = true

	got, err := inst.QueryConfigAttributes(vacontract.ProfileHEVCMain10, vacontract.EntrypointVLD)
	if err != nil {
		t.Fatalf("QueryConfigAttributes: %v", err)
	}
	want := vacontract.RTFormatYUV420 | vacontract.RTFormatYUV420_10 | vacontract.RTFormatYUV420_12
	if got != want {
		t.Fatalf("got %v, want cumulative %v", got, want)
	}
}

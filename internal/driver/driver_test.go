package driver

import (
	"testing"

	"github.com/nvcuvid/vaapi-driver/internal/nvdconfig"
)

func testConfig() *nvdconfig.Config {
	cfg := nvdconfig.Default()
	cfg.Backend = nvdconfig.BackendDirect
	return cfg
}

// fakeDeviceContext is a deviceContext double: push/pop never reach the
// CUDA driver library.
type fakeDeviceContext struct{}

func (fakeDeviceContext) Push() error { return nil }
func (fakeDeviceContext) Pop() error  { return nil }

func newTestInstance(t *testing.T) *Instance {
	t.Helper()
	inst, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	inst.devCtx = fakeDeviceContext{}
	t.Cleanup(func() { inst.Terminate() })
	return inst
}

func TestNewEnforcesConcurrencyCap(t *testing.T) {
	cfg := testConfig()
	cfg.MaxInstances = 1

	first, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("first New: %v", err)
	}
	defer first.Terminate()

	_, err = New(cfg, nil)
	if err == nil {
		t.Fatal("expected HW_BUSY when exceeding MaxInstances, got nil")
	}
	derr, ok := err.(*Error)
	if !ok || derr.Status != StatusHWBusy {
		t.Fatalf("expected StatusHWBusy, got %v", err)
	}
}

func TestTerminateDecrementsLiveInstances(t *testing.T) {
	before := LiveInstances()

	inst, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := LiveInstances(); got != before+1 {
		t.Fatalf("LiveInstances after New = %d, want %d", got, before+1)
	}

	if err := inst.Terminate(); err != nil {
		t.Fatalf("Terminate: %v", err)
	}
	if got := LiveInstances(); got != before {
		t.Fatalf("LiveInstances after Terminate = %d, want %d", got, before)
	}
}

func TestStatsSnapshotStartsZero(t *testing.T) {
	inst := newTestInstance(t)
	snap := inst.Stats()
	if snap.PicturesBegun != 0 || snap.PicturesResolved != 0 || snap.DecodeFailures != 0 {
		t.Fatalf("expected zeroed Stats, got %+v", snap)
	}
}

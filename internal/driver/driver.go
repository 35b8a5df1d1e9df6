// Package driver implements the Decode Pipeline: the Driver Instance and
// the Config/Context/Surface/Buffer/Image object lifecycle built on top of
// the Object Registry, the Codec Dispatch Table, the Capability Probe, the
// Surface Export Backend, and the cgo vendor boundary.
//
// Grounded on the teacher's Session (a long-lived object that owns a
// background goroutine, a done channel, and per-resource mutex/condvar
// pairs) generalized from "one WebRTC session" to "one decode Context",
// and on SessionManager's registry-of-sessions shape generalized to the
// registry package used here.
package driver

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nvcuvid/vaapi-driver/internal/caps"
	"github.com/nvcuvid/vaapi-driver/internal/cuvid"
	"github.com/nvcuvid/vaapi-driver/internal/drvlog"
	"github.com/nvcuvid/vaapi-driver/internal/export"
	"github.com/nvcuvid/vaapi-driver/internal/nvdconfig"
	"github.com/nvcuvid/vaapi-driver/internal/registry"
)

var log = drvlog.L("driver")

// concurrencyMu and liveInstances implement spec.md §5's process-wide
// concurrency limit: "Process-wide concurrency_mutex serializes the
// live-instance counter check against the configured maximum." This is one
// of the two genuinely process-wide pieces of state the design notes call
// out (the other being the vendor function tables loaded once by cuvid).
var (
	concurrencyMu sync.Mutex
	liveInstances int
)

// Instance is one Driver Instance: the process-local state for one client
// connection. It owns the object registry, the capability probe, the
// export backend, and the device context all its calls push/pop around.
type Instance struct {
	cfg     *nvdconfig.Config
	probe   *caps.Probe
	backend export.Backend
	devCtx  deviceContext
	reg     *registry.Registry

	// decoderFactory and lockFactory create the vendor decoder and its
	// codec-context lock for CreateContext (§4.6 S3 step 5). Production
	// Instances wire the real cgo-backed constructors; tests substitute
	// fakes so the decode pipeline is exercisable without libnvcuvid.so.
	decoderFactory func(cuvid.CreateInfo) (cuvid.Decoder, error)
	lockFactory    func() (ctxLocker, error)

	stats Stats
}

// Stats mirrors the teacher's StreamMetrics snapshot pattern: atomic
// counters a diagnostics caller (nvdecctl probe) can read without locking.
type Stats struct {
	PicturesBegun    atomic.Int64
	PicturesResolved atomic.Int64
	DecodeFailures   atomic.Int64
}

// Snapshot is a point-in-time copy of Stats suitable for printing.
type Snapshot struct {
	PicturesBegun    int64
	PicturesResolved int64
	DecodeFailures   int64
}

// Stats returns a snapshot of this Instance's per-call counters.
func (inst *Instance) Stats() Snapshot {
	return Snapshot{
		PicturesBegun:    inst.stats.PicturesBegun.Load(),
		PicturesResolved: inst.stats.PicturesResolved.Load(),
		DecodeFailures:   inst.stats.DecodeFailures.Load(),
	}
}

// New constructs a Driver Instance, enforcing the process-wide concurrency
// cap (§5: "If maxInstances > 0 and instances >= maxInstances at init time,
// return HW_BUSY without incrementing"). cfg must be non-nil (callers use
// nvdconfig.Load or nvdconfig.Default).
func New(cfg *nvdconfig.Config, override *nvdconfig.CapabilityOverride) (*Instance, error) {
	concurrencyMu.Lock()
	if cfg.MaxInstances > 0 && liveInstances >= cfg.MaxInstances {
		concurrencyMu.Unlock()
		return nil, &Error{Status: StatusHWBusy, msg: "driver: instance cap reached"}
	}
	liveInstances++
	concurrencyMu.Unlock()

	backend, err := export.Select(cfg.Backend)
	if err != nil {
		decrementLiveInstances()
		return nil, &Error{Status: StatusAllocationFailed, msg: fmt.Sprintf("driver: select export backend: %v", err)}
	}
	if err := backend.InitExporter(); err != nil {
		decrementLiveInstances()
		return nil, &Error{Status: StatusAllocationFailed, msg: fmt.Sprintf("driver: init exporter: %v", err)}
	}

	inst := &Instance{
		cfg:            cfg,
		probe:          caps.New(override),
		backend:        backend,
		devCtx:         newCUVIDDeviceContext(),
		reg:            registry.New(),
		decoderFactory: cuvid.NewDecoder,
		lockFactory:    func() (ctxLocker, error) { return cuvid.NewContextLock() },
	}
	log.Info("driver instance created", "backend", cfg.Backend, "maxInstances", cfg.MaxInstances)
	return inst, nil
}

func decrementLiveInstances() {
	concurrencyMu.Lock()
	liveInstances--
	concurrencyMu.Unlock()
}

// LiveInstances reports the current process-wide instance count, exposed
// for nvdecctl probe and for tests exercising the concurrency cap.
func LiveInstances() int {
	concurrencyMu.Lock()
	defer concurrencyMu.Unlock()
	return liveInstances
}

// Terminate releases every Object this Instance owns (Contexts first, so
// their resolve workers stop before the registry sweep drops the rest),
// releases the export backend, and always decrements the live-instance
// counter, matching §5's "at terminate, always decrement".
func (inst *Instance) Terminate() error {
	inst.reg.DeleteAllMatching(registry.TypeContext, func(obj *registry.Object) {
		if ctx, ok := obj.Inner.(*Context); ok {
			if err := inst.destroyContext(ctx); err != nil {
				log.Warn("context teardown failed during terminate", "error", err)
			}
		}
	})
	inst.reg.DeleteAllMatching(registry.TypeSurface, func(obj *registry.Object) {
		if s, ok := obj.Inner.(*Surface); ok {
			inst.detachSurfaceBackingImage(s)
		}
	})
	inst.reg.DeleteAllMatching(registry.TypeConfig, func(*registry.Object) {})
	inst.reg.DeleteAllMatching(registry.TypeBuffer, func(*registry.Object) {})
	inst.reg.DeleteAllMatching(registry.TypeImage, func(*registry.Object) {})

	err := inst.backend.DestroyAllBackingImages()
	if relErr := inst.backend.ReleaseExporter(); relErr != nil && err == nil {
		err = relErr
	}

	decrementLiveInstances()
	log.Info("driver instance terminated")
	return err
}

package driver

import "github.com/nvcuvid/vaapi-driver/internal/cuvid"

// deviceContext abstracts the vendor API's thread-current-context push/pop
// (design note "Device-context push/pop") behind an interface, the same
// way Context's decoder and context-lock are abstracted, so tests never
// need the real CUDA driver library linked to exercise the pipeline.
type deviceContext interface {
	Push() error
	Pop() error
}

// cuvidDeviceContext is the production deviceContext: it delegates to the
// cgo boundary's PushContext/PopContext. Real per-Instance device context
// acquisition (cuDeviceGet/cuCtxCreate) is the CUDA driver API, out of
// scope per spec.md §1; this wrapper only owns the push/pop discipline the
// design note calls for.
type cuvidDeviceContext struct{}

func newCUVIDDeviceContext() deviceContext { return cuvidDeviceContext{} }

func (cuvidDeviceContext) Push() error { return cuvid.PushContext(nil) }
func (cuvidDeviceContext) Pop() error  { return cuvid.PopContext() }

// withDeviceContext runs fn with the device context pushed, always popping
// afterward even if fn or the push itself failed, matching "push on entry,
// pop on return, even on error". The push error takes priority when fn
// never runs; fn's error otherwise takes priority over a pop failure,
// which is logged instead of swallowed.
func (inst *Instance) withDeviceContext(fn func() error) error {
	if err := inst.devCtx.Push(); err != nil {
		return newError(StatusOperationFailed, "driver: push device context: %v", err)
	}
	err := fn()
	if popErr := inst.devCtx.Pop(); popErr != nil {
		log.Warn("pop device context failed", "error", popErr)
	}
	return err
}

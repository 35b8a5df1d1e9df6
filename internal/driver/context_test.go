package driver

import (
	"errors"
	"testing"
	"time"
	"unsafe"

	"github.com/nvcuvid/vaapi-driver/internal/cuvid"
	"github.com/nvcuvid/vaapi-driver/internal/vacontract"
)

// fakeLock is a ctxLocker double: no real CUDA context lock is created.
type fakeLock struct {
	destroyed bool
}

func (f *fakeLock) Destroy() error {
	f.destroyed = true
	return nil
}

// newTestContextN wires an Instance to a FakeDecoder/fakeLock pair and
// creates a Context with surfaceCount Surfaces bound as its render
// targets, the shape CreateContext's S3 step 2 expects.
func newTestContextN(t *testing.T, surfaceCount int) (*Instance, *Context, []*Surface, *cuvid.FakeDecoder) {
	t.Helper()
	inst := newTestInstance(t)

	fd := cuvid.NewFakeDecoder()
	inst.decoderFactory = func(cuvid.CreateInfo) (cuvid.Decoder, error) { return fd, nil }
	inst.lockFactory = func() (ctxLocker, error) { return &fakeLock{}, nil }

	cfg, err := inst.CreateConfig(vacontract.ProfileH264Main, vacontract.EntrypointVLD, 0)
	if err != nil {
		t.Fatalf("CreateConfig: %v", err)
	}

	surfaces, err := inst.CreateSurfaces(64, 64, surfaceCount)
	if err != nil {
		t.Fatalf("CreateSurfaces: %v", err)
	}

	ctx, err := inst.CreateContext(cfg, 64, 64, surfaces)
	if err != nil {
		t.Fatalf("CreateContext: %v", err)
	}
	return inst, ctx, surfaces, fd
}

func sliceDataBuffer(inst *Instance, payload []byte) uint32 {
	buf, err := inst.CreateBuffer(vacontract.BufferTypeSliceData, len(payload), payload)
	if err != nil {
		panic(err)
	}
	return buf.ID
}

func TestBeginRenderEndPictureThenSyncSucceeds(t *testing.T) {
	inst, ctx, surfaces, fd := newTestContextN(t, 2)
	target := surfaces[0]

	if err := inst.BeginPicture(ctx.ID, target.ID); err != nil {
		t.Fatalf("BeginPicture: %v", err)
	}
	bufID := sliceDataBuffer(inst, []byte{0xde, 0xad, 0xbe, 0xef})
	if err := inst.RenderPicture(ctx.ID, []uint32{bufID}); err != nil {
		t.Fatalf("RenderPicture: %v", err)
	}
	if err := inst.EndPicture(ctx.ID); err != nil {
		t.Fatalf("EndPicture: %v", err)
	}

	if err := inst.SyncSurface(target.ID); err != nil {
		t.Fatalf("SyncSurface: %v", err)
	}
	if len(fd.DecodedPictures) != 1 {
		t.Fatalf("expected exactly one DecodePicture call, got %d", len(fd.DecodedPictures))
	}
	if len(fd.Mapped) != 1 || fd.Mapped[0] != 0 {
		t.Fatalf("expected MapVideoFrame(0), got %v", fd.Mapped)
	}

	snap := inst.Stats()
	if snap.PicturesBegun != 1 || snap.PicturesResolved != 1 || snap.DecodeFailures != 0 {
		t.Fatalf("unexpected stats snapshot: %+v", snap)
	}
}

// TestBeginPictureMaxNumExceeded backs §8's boundary property: exactly
// surfaceCount BeginPicture calls succeed; the next one on an unbound
// Surface fails MAX_NUM_EXCEEDED.
func TestBeginPictureMaxNumExceeded(t *testing.T) {
	inst, ctx, surfaces, _ := newTestContextN(t, 2)

	for _, s := range surfaces {
		if err := inst.BeginPicture(ctx.ID, s.ID); err != nil {
			t.Fatalf("BeginPicture(%d): %v", s.ID, err)
		}
	}

	extra, err := inst.CreateSurfaces(64, 64, 1)
	if err != nil {
		t.Fatalf("CreateSurfaces: %v", err)
	}
	err = inst.BeginPicture(ctx.ID, extra[0].ID)
	if err == nil {
		t.Fatal("expected MAX_NUM_EXCEEDED for the (surfaceCount+1)th picture index")
	}
	if derr := err.(*Error); derr.Status != StatusMaxNumExceeded {
		t.Fatalf("expected StatusMaxNumExceeded, got %v", derr.Status)
	}
}

// TestEndPictureDecodeFailureStillResolvesSurface covers the edge case
// where a failed vendor decode still enqueues the Surface for resolve
// (with decodeFailed set) rather than leaving it stuck resolving forever.
func TestEndPictureDecodeFailureStillResolvesSurface(t *testing.T) {
	inst, ctx, surfaces, fd := newTestContextN(t, 1)
	target := surfaces[0]
	fd.DecodeErr = errors.New("vendor decode failed")

	if err := inst.BeginPicture(ctx.ID, target.ID); err != nil {
		t.Fatalf("BeginPicture: %v", err)
	}
	err := inst.EndPicture(ctx.ID)
	if err == nil {
		t.Fatal("expected EndPicture to surface the decode error")
	}
	if derr := err.(*Error); derr.Status != StatusDecodingError {
		t.Fatalf("expected StatusDecodingError, got %v", derr.Status)
	}

	syncErr := inst.SyncSurface(target.ID)
	if syncErr == nil {
		t.Fatal("expected SyncSurface to report the failed decode")
	}
	if derr := syncErr.(*Error); derr.Status != StatusDecodingError {
		t.Fatalf("expected StatusDecodingError from SyncSurface, got %v", derr.Status)
	}
	if len(fd.Mapped) != 0 {
		t.Fatal("a failed decode must not attempt MapVideoFrame")
	}
	if inst.Stats().DecodeFailures != 1 {
		t.Fatalf("expected DecodeFailures=1, got %d", inst.Stats().DecodeFailures)
	}
}

// TestResolveOrderMatchesSubmissionOrder backs the resolve queue's FIFO
// guarantee: pictures resolve in the order EndPicture submitted them, even
// though resolving happens on a background worker.
func TestResolveOrderMatchesSubmissionOrder(t *testing.T) {
	inst, ctx, surfaces, fd := newTestContextN(t, 3)

	for _, s := range surfaces {
		if err := inst.BeginPicture(ctx.ID, s.ID); err != nil {
			t.Fatalf("BeginPicture(%d): %v", s.ID, err)
		}
		if err := inst.EndPicture(ctx.ID); err != nil {
			t.Fatalf("EndPicture(%d): %v", s.ID, err)
		}
	}
	for _, s := range surfaces {
		if err := inst.SyncSurface(s.ID); err != nil {
			t.Fatalf("SyncSurface(%d): %v", s.ID, err)
		}
	}

	if len(fd.Mapped) != 3 {
		t.Fatalf("expected 3 resolved pictures, got %d", len(fd.Mapped))
	}
	for i, idx := range fd.Mapped {
		if idx != i {
			t.Fatalf("resolve order mismatch: Mapped=%v, want [0 1 2]", fd.Mapped)
		}
	}
}

// TestBeginPictureRebindAcrossContextsResetsPictureIdx covers a Surface
// reused as a render target on a second Context: it must be detached from
// the first and given a freshly assigned picture index in the second.
func TestBeginPictureRebindAcrossContextsResetsPictureIdx(t *testing.T) {
	inst, ctxA, surfacesA, _ := newTestContextN(t, 1)
	shared := surfacesA[0]

	if err := inst.BeginPicture(ctxA.ID, shared.ID); err != nil {
		t.Fatalf("BeginPicture on ctxA: %v", err)
	}
	if shared.pictureIdx != 0 {
		t.Fatalf("expected pictureIdx 0 on ctxA, got %d", shared.pictureIdx)
	}

	cfgB, err := inst.CreateConfig(vacontract.ProfileH264Main, vacontract.EntrypointVLD, 0)
	if err != nil {
		t.Fatalf("CreateConfig: %v", err)
	}
	fdB := cuvid.NewFakeDecoder()
	inst.decoderFactory = func(cuvid.CreateInfo) (cuvid.Decoder, error) { return fdB, nil }
	ctxB, err := inst.CreateContext(cfgB, 64, 64, []*Surface{shared})
	if err != nil {
		t.Fatalf("CreateContext ctxB: %v", err)
	}

	if err := inst.BeginPicture(ctxB.ID, shared.ID); err != nil {
		t.Fatalf("BeginPicture on ctxB: %v", err)
	}
	if shared.context != ctxB {
		t.Fatal("expected the Surface's Context back-reference to move to ctxB")
	}
	if shared.pictureIdx != 0 {
		t.Fatalf("expected a freshly assigned pictureIdx 0 on ctxB, got %d", shared.pictureIdx)
	}
}

func TestExportSurfaceHandleGuardsMemoryTypeAndFlags(t *testing.T) {
	inst := newTestInstance(t)
	surfaces, err := inst.CreateSurfaces(64, 64, 1)
	if err != nil {
		t.Fatalf("CreateSurfaces: %v", err)
	}
	id := surfaces[0].ID

	if _, err := inst.ExportSurfaceHandle(id, vacontract.MemoryTypeDRMPrime, vacontract.ExportFlagSeparateLayers); err == nil {
		t.Fatal("expected an error without MemoryTypeDRMPrime2")
	} else if derr := err.(*Error); derr.Status != StatusUnsupportedMemoryType {
		t.Fatalf("expected StatusUnsupportedMemoryType, got %v", derr.Status)
	}

	if _, err := inst.ExportSurfaceHandle(id, vacontract.MemoryTypeDRMPrime2, 0); err == nil {
		t.Fatal("expected an error without SEPARATE_LAYERS")
	} else if derr := err.(*Error); derr.Status != StatusInvalidSurface {
		t.Fatalf("expected StatusInvalidSurface, got %v", derr.Status)
	}

	desc, err := inst.ExportSurfaceHandle(id, vacontract.MemoryTypeDRMPrime2, vacontract.ExportFlagSeparateLayers)
	if err != nil {
		t.Fatalf("expected export to succeed with DRM_PRIME_2+SEPARATE_LAYERS, got %v", err)
	}
	if desc.NumLayers != 2 {
		t.Fatalf("expected 2 layers for NV12, got %d", desc.NumLayers)
	}
}

// hangingDecoder's MapVideoFrame never returns, simulating a stuck resolve
// task so DestroyContext's bounded deadline is the only thing that saves
// teardown from blocking forever.
type hangingDecoder struct {
	unblock chan struct{}
}

func (h *hangingDecoder) DecodePicture(unsafe.Pointer) error { return nil }

func (h *hangingDecoder) MapVideoFrame(pictureIdx int, proc cuvid.ProcParams) (cuvid.FrameInfo, error) {
	<-h.unblock
	return cuvid.FrameInfo{}, nil
}

func (h *hangingDecoder) UnmapVideoFrame(devicePtr uintptr) error { return nil }

func (h *hangingDecoder) Destroy() error { return nil }

func TestDestroyContextBoundedByDeadlineEvenIfResolveHangs(t *testing.T) {
	inst := newTestInstance(t)
	hd := &hangingDecoder{unblock: make(chan struct{})}
	inst.decoderFactory = func(cuvid.CreateInfo) (cuvid.Decoder, error) { return hd, nil }
	inst.lockFactory = func() (ctxLocker, error) { return &fakeLock{}, nil }

	cfg, err := inst.CreateConfig(vacontract.ProfileH264Main, vacontract.EntrypointVLD, 0)
	if err != nil {
		t.Fatalf("CreateConfig: %v", err)
	}
	surfaces, err := inst.CreateSurfaces(64, 64, 1)
	if err != nil {
		t.Fatalf("CreateSurfaces: %v", err)
	}
	ctx, err := inst.CreateContext(cfg, 64, 64, surfaces)
	if err != nil {
		t.Fatalf("CreateContext: %v", err)
	}

	if err := inst.BeginPicture(ctx.ID, surfaces[0].ID); err != nil {
		t.Fatalf("BeginPicture: %v", err)
	}
	if err := inst.EndPicture(ctx.ID); err != nil {
		t.Fatalf("EndPicture: %v", err)
	}

	start := time.Now()
	_ = inst.DestroyContext(ctx.ID)
	elapsed := time.Since(start)
	close(hd.unblock)

	if elapsed > (vacontract.DestroyContextDeadlineSeconds+2)*time.Second {
		t.Fatalf("DestroyContext took %v, expected it to return near the %ds deadline", elapsed, vacontract.DestroyContextDeadlineSeconds)
	}
}

// TestEndPictureFailsWhenResolveQueueFull covers the resolve queue's
// bounded-capacity failure path: BeginPicture's MAX_NUM_EXCEEDED check only
// gates the first bind of a picture index, so rebinding an already-bound
// Surface can submit faster than the single resolve worker drains. Once the
// queue (vacontract.SurfaceQueueSize) is full, Submit drops the task, and
// without an explicit check EndPicture would leave resolving=true forever.
func TestEndPictureFailsWhenResolveQueueFull(t *testing.T) {
	inst := newTestInstance(t)
	hd := &hangingDecoder{unblock: make(chan struct{})}
	inst.decoderFactory = func(cuvid.CreateInfo) (cuvid.Decoder, error) { return hd, nil }
	inst.lockFactory = func() (ctxLocker, error) { return &fakeLock{}, nil }

	cfg, err := inst.CreateConfig(vacontract.ProfileH264Main, vacontract.EntrypointVLD, 0)
	if err != nil {
		t.Fatalf("CreateConfig: %v", err)
	}
	surfaces, err := inst.CreateSurfaces(64, 64, 1)
	if err != nil {
		t.Fatalf("CreateSurfaces: %v", err)
	}
	target := surfaces[0]
	ctx, err := inst.CreateContext(cfg, 64, 64, surfaces)
	if err != nil {
		t.Fatalf("CreateContext: %v", err)
	}
	defer close(hd.unblock)

	// Occupy the single resolve worker with a task that never returns.
	if err := inst.BeginPicture(ctx.ID, target.ID); err != nil {
		t.Fatalf("BeginPicture: %v", err)
	}
	if err := inst.EndPicture(ctx.ID); err != nil {
		t.Fatalf("EndPicture: %v", err)
	}
	time.Sleep(10 * time.Millisecond) // let the worker dequeue and block on it

	// Rebinding the same target repeatedly skips the MAX_NUM_EXCEEDED check
	// (pictureIdx is already assigned), filling the queue to capacity.
	for i := 0; i < vacontract.SurfaceQueueSize; i++ {
		if err := inst.BeginPicture(ctx.ID, target.ID); err != nil {
			t.Fatalf("BeginPicture %d: %v", i, err)
		}
		if err := inst.EndPicture(ctx.ID); err != nil {
			t.Fatalf("EndPicture %d: %v", i, err)
		}
	}

	// The queue is now full: this submission must fail outright instead of
	// silently dropping and leaving the Surface stuck resolving.
	if err := inst.BeginPicture(ctx.ID, target.ID); err != nil {
		t.Fatalf("BeginPicture (overflow): %v", err)
	}
	err = inst.EndPicture(ctx.ID)
	if err == nil {
		t.Fatal("expected EndPicture to fail when the resolve queue is full")
	}
	if derr := err.(*Error); derr.Status != StatusDecodingError {
		t.Fatalf("expected StatusDecodingError, got %v", derr.Status)
	}

	done := make(chan error, 1)
	go func() { done <- inst.SyncSurface(target.ID) }()
	select {
	case syncErr := <-done:
		if syncErr == nil {
			t.Fatal("expected SyncSurface to report the dropped resolve as a failure")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("SyncSurface hung: resolving was never cleared after the queue-full failure")
	}
}

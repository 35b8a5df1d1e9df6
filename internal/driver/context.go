package driver

import (
	"context"
	"sync"
	"time"
	"unsafe"

	"github.com/nvcuvid/vaapi-driver/internal/abuf"
	"github.com/nvcuvid/vaapi-driver/internal/codec"
	"github.com/nvcuvid/vaapi-driver/internal/cuvid"
	"github.com/nvcuvid/vaapi-driver/internal/export"
	"github.com/nvcuvid/vaapi-driver/internal/registry"
	"github.com/nvcuvid/vaapi-driver/internal/vacontract"
	"github.com/nvcuvid/vaapi-driver/internal/workerpool"
)

// ctxLocker abstracts the vendor codec-context lock (cuvid.ContextLock) so
// tests can substitute a fake instead of linking the real cgo constructor.
type ctxLocker interface {
	Destroy() error
}

// Context is one active decode session: S3's CreateContext result. It owns
// its decoder handle, its scratch buffers, and its resolve worker; it does
// not own the Surfaces it renders into.
type Context struct {
	ID     uint32
	inst   *Instance
	config *Config
	desc   *codec.Descriptor

	decoder cuvid.Decoder
	lock    ctxLocker

	width, height int
	chroma        vacontract.ChromaFormat
	format        vacontract.SurfaceFormat
	bitDepth      int

	surfaceCount      int
	currentPictureID  int

	mu           sync.Mutex
	bitstream    *abuf.Buffer
	sliceOffsets *abuf.Buffer
	picParams    *codec.PictureParams
	renderTarget *Surface

	pool *workerpool.Pool
}

// CreateContext implements §4.6 S3.
func (inst *Instance) CreateContext(config *Config, w, h int, renderTargets []*Surface) (*Context, error) {
	desc, ok := codec.Select(config.Profile)
	if !ok {
		return nil, newError(StatusUnsupportedProfile, "driver: no codec translates profile %d", config.Profile)
	}

	chroma, format, bitDepth := config.Chroma, config.Format, config.BitDepth
	if len(renderTargets) > 0 {
		// Client surfaces are authoritative: inherit their format into this
		// Context without mutating the immutable Config.
		rt := renderTargets[0]
		chroma, format, bitDepth = rt.Chroma, rt.Format, rt.BitDepth
	}

	surfaceCount := len(renderTargets)
	if surfaceCount == 0 {
		surfaceCount = 32
	}
	if surfaceCount > vacontract.MaxProfiles {
		surfaceCount = vacontract.MaxProfiles
	}

	dw, dh := roundForChroma(w, h, chroma)

	cudaCodec := desc.ComputeCudaCodec(config.Profile)
	if cudaCodec == codec.CudaCodecNone {
		return nil, newError(StatusUnsupportedProfile, "driver: codec %s cannot translate profile %d", desc.Name, config.Profile)
	}

	lock, err := inst.lockFactory()
	if err != nil {
		return nil, newError(StatusAllocationFailed, "driver: create codec-context lock: %v", err)
	}

	decoder, err := inst.decoderFactory(cuvid.CreateInfo{
		Width:             dw,
		Height:            dh,
		TargetWidth:       dw,
		TargetHeight:      dh,
		NumDecodeSurfaces: surfaceCount,
		NumOutputSurfaces: 1,
		Codec:             int(cudaCodec),
		ChromaFormat:      int(chroma),
		OutputFormat:      int(format),
		BitDepthMinus8:    bitDepth - 8,
		WeaveDeinterlace:  true,
	})
	if err != nil {
		lock.Destroy()
		return nil, newError(StatusAllocationFailed, "driver: create vendor decoder: %v", err)
	}

	ctx := &Context{
		inst:         inst,
		config:       config,
		desc:         desc,
		decoder:      decoder,
		lock:         lock,
		width:        dw,
		height:       dh,
		chroma:       chroma,
		format:       format,
		bitDepth:     bitDepth,
		surfaceCount: surfaceCount,
		bitstream:    abuf.New(),
		sliceOffsets: abuf.New(),
		picParams:    codec.NewPictureParams(),
	}

	// Start the resolve worker (§4.6 S3 step 6). workerpool.New always
	// succeeds (it only spawns goroutines), so there is no failure path to
	// translate into OPERATION_FAILED here; a real thread-spawn failure
	// would hit the same teardown this would if there were one.
	ctx.pool = workerpool.New(1, vacontract.SurfaceQueueSize)

	obj := inst.reg.Allocate(registry.TypeContext, ctx)
	ctx.ID = obj.ID
	return ctx, nil
}

func (inst *Instance) lookupContext(id uint32) (*Context, error) {
	obj, err := inst.reg.LookupTyped(id, registry.TypeContext)
	if err != nil {
		return nil, newError(StatusInvalidContext, "%v", err)
	}
	return obj.Inner.(*Context), nil
}

// BeginPicture implements §4.6 S4's first sequence.
func (inst *Instance) BeginPicture(ctxID uint32, targetID uint32) error {
	ctx, err := inst.lookupContext(ctxID)
	if err != nil {
		return err
	}
	target, err := inst.lookupSurface(targetID)
	if err != nil {
		return err
	}

	target.mu.Lock()
	if target.context != nil && target.context != ctx {
		target.mu.Unlock()
		inst.detachSurfaceBackingImage(target)
		target.mu.Lock()
		target.pictureIdx = -1
	}

	if target.pictureIdx == -1 {
		ctx.mu.Lock()
		if ctx.currentPictureID == ctx.surfaceCount {
			ctx.mu.Unlock()
			target.mu.Unlock()
			return newError(StatusMaxNumExceeded, "driver: context %d has no free picture index", ctx.ID)
		}
		target.pictureIdx = ctx.currentPictureID
		ctx.currentPictureID++
		ctx.mu.Unlock()
	}
	target.context = ctx
	target.resolving = true
	target.mu.Unlock()

	ctx.mu.Lock()
	ctx.picParams = codec.NewPictureParams()
	ctx.picParams.CurrPicIdx = target.pictureIdx
	ctx.renderTarget = target
	ctx.mu.Unlock()

	inst.stats.PicturesBegun.Add(1)
	return nil
}

// RenderPicture implements §4.6 S4's second sequence.
func (inst *Instance) RenderPicture(ctxID uint32, bufferIDs []uint32) error {
	ctx, err := inst.lookupContext(ctxID)
	if err != nil {
		return err
	}

	ctx.mu.Lock()
	rc := &codec.RenderContext{Params: ctx.picParams, Bitstream: ctx.bitstream, SliceOffsets: ctx.sliceOffsets}
	for _, id := range bufferIDs {
		buf, err := inst.lookupBuffer(id)
		if err != nil || len(buf.Data) == 0 {
			log.Info("render picture: skipping null/empty buffer", "bufferID", id)
			continue
		}
		handler, ok := ctx.desc.Handlers[buf.Type]
		if !ok {
			log.Info("render picture: unknown buffer type", "bufferType", buf.Type)
			continue
		}
		handler(rc, codec.ClientBuffer{
			Type:              buf.Type,
			Data:              buf.Data,
			ElementCount:      buf.ElementCount,
			UnalignmentOffset: buf.UnalignmentOffset,
		})
	}
	ctx.mu.Unlock()
	return nil
}

// EndPicture implements §4.6 S4's closing sequence.
func (inst *Instance) EndPicture(ctxID uint32) error {
	ctx, err := inst.lookupContext(ctxID)
	if err != nil {
		return err
	}

	ctx.mu.Lock()
	target := ctx.renderTarget
	picParams := ctx.picParams
	picParams.Fields["bitstream_data"] = ctx.bitstream.Bytes()
	picParams.Fields["slice_data_offsets"] = ctx.sliceOffsets.Bytes()
	ctx.bitstream.Reset()
	ctx.sliceOffsets.Reset()
	ctx.mu.Unlock()

	if target == nil {
		return newError(StatusInvalidSurface, "driver: end picture with no active render target")
	}

	var decodeErr error
	devErr := ctx.inst.withDeviceContext(func() error {
		decodeErr = ctx.decoder.DecodePicture(unsafe.Pointer(picParams))
		return decodeErr
	})

	target.mu.Lock()
	target.decodeFailed = decodeErr != nil
	target.context = ctx
	target.topFieldFirst = !picParams.BottomFieldFlag
	target.secondField = picParams.SecondField
	target.mu.Unlock()

	if decodeErr != nil {
		inst.stats.DecodeFailures.Add(1)
	}

	if !ctx.pool.Submit(func() { inst.resolveSurface(ctx, target) }) {
		// The resolve queue is full (capacity vacontract.SurfaceQueueSize):
		// nothing else will ever clear target.resolving, so SyncSurface
		// would hang forever. Fail the Surface in place of the dropped
		// resolve task, matching §4.6 S5's "still enqueued on failure" --
		// here there is no queue slot to enqueue into, so the failure is
		// recorded directly instead.
		log.Warn("resolve queue full, failing surface directly", "surface", target.ID)
		target.mu.Lock()
		target.decodeFailed = true
		target.resolving = false
		target.cond.Broadcast()
		target.mu.Unlock()
		inst.stats.DecodeFailures.Add(1)
		return newError(StatusDecodingError, "driver: resolve queue full, surface %d dropped", target.ID)
	}

	if decodeErr != nil {
		return newError(StatusDecodingError, "driver: decode picture: %v", decodeErr)
	}
	if devErr != nil && decodeErr == nil {
		return newError(StatusOperationFailed, "driver: end picture device context: %v", devErr)
	}
	return nil
}

// resolveSurface is the resolve worker's per-picture body (§4.6 S5). It
// runs on ctx.pool's single worker goroutine, so pictures resolve in the
// order EndPicture submitted them.
func (inst *Instance) resolveSurface(ctx *Context, s *Surface) {
	if s.decodeFailed {
		s.mu.Lock()
		s.resolving = false
		s.cond.Broadcast()
		s.mu.Unlock()
		return
	}

	_ = ctx.inst.withDeviceContext(func() error {
		frame, err := ctx.decoder.MapVideoFrame(s.pictureIdx, cuvid.ProcParams{
			ProgressiveFrame: s.progressiveFrame,
			TopFieldFirst:    s.topFieldFirst,
			SecondField:      s.secondField,
		})
		if err != nil {
			log.Warn("map video frame failed", "surface", s.ID, "error", err)
		} else {
			if err := ctx.inst.backend.ExportCudaPtr(s.image, frame.DevicePtr, frame.Pitch); err != nil {
				log.Warn("export cuda ptr failed", "surface", s.ID, "error", err)
			}
			if uerr := ctx.decoder.UnmapVideoFrame(frame.DevicePtr); uerr != nil {
				log.Warn("unmap video frame failed", "surface", s.ID, "error", uerr)
			}
		}
		return nil
	})

	inst.stats.PicturesResolved.Add(1)

	s.mu.Lock()
	s.resolving = false
	s.cond.Broadcast()
	s.mu.Unlock()
}

// SyncSurface implements §4.6's SyncSurface: block until the resolve
// worker has cleared the Surface's resolving flag, whether via success or
// decodeFailed.
func (inst *Instance) SyncSurface(surfaceID uint32) error {
	s, err := inst.lookupSurface(surfaceID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	for s.resolving {
		s.cond.Wait()
	}
	failed := s.decodeFailed
	s.mu.Unlock()

	if failed {
		return newError(StatusDecodingError, "driver: surface %d carries a failed decode", s.ID)
	}
	return nil
}

// ExportSurfaceHandle implements §4.6's ExportSurfaceHandle.
func (inst *Instance) ExportSurfaceHandle(surfaceID uint32, memType vacontract.MemoryType, flags vacontract.ExportFlags) (vacontract.ExportDescriptor, error) {
	s, err := inst.lookupSurface(surfaceID)
	if err != nil {
		return vacontract.ExportDescriptor{}, err
	}
	if memType&vacontract.MemoryTypeDRMPrime2 == 0 {
		return vacontract.ExportDescriptor{}, newError(StatusUnsupportedMemoryType, "driver: export requires DRM_PRIME_2 memory type")
	}
	if flags&vacontract.ExportFlagSeparateLayers == 0 {
		return vacontract.ExportDescriptor{}, newError(StatusInvalidSurface, "driver: export requires SEPARATE_LAYERS flag")
	}

	var desc vacontract.ExportDescriptor
	err = inst.withDeviceContext(func() error {
		if err := inst.backend.RealiseSurface(&s.image, export.SurfaceDescriptor{Width: s.Width, Height: s.Height, Format: s.Format}); err != nil {
			return err
		}
		out, err := inst.backend.FillExportDescriptor(s.image, memType, flags)
		if err != nil {
			return err
		}
		desc = out
		return nil
	})
	if err != nil {
		return vacontract.ExportDescriptor{}, newError(StatusInvalidSurface, "driver: export surface handle: %v", err)
	}
	return desc, nil
}

// DestroyContext implements §4.6's Context teardown: signal the resolve
// worker to stop, join it with a bounded deadline even if it hangs, free
// scratch buffers, and destroy the vendor decoder.
func (inst *Instance) DestroyContext(id uint32) error {
	obj, err := inst.reg.LookupTyped(id, registry.TypeContext)
	if err != nil {
		return newError(StatusInvalidContext, "%v", err)
	}
	ctx := obj.Inner.(*Context)
	if err := inst.destroyContext(ctx); err != nil {
		inst.reg.Delete(id)
		return err
	}
	inst.reg.Delete(id)
	return nil
}

func (inst *Instance) destroyContext(ctx *Context) error {
	return inst.withDeviceContext(func() error {
		deadline, cancel := context.WithTimeout(context.Background(), vacontract.DestroyContextDeadlineSeconds*time.Second)
		defer cancel()
		ctx.pool.Drain(deadline)

		ctx.bitstream.Free()
		ctx.sliceOffsets.Free()

		var teardownErr error
		if err := ctx.decoder.Destroy(); err != nil {
			log.Warn("destroy vendor decoder failed", "context", ctx.ID, "error", err)
			teardownErr = newError(StatusOperationFailed, "driver: destroy vendor decoder: %v", err)
		}
		if err := ctx.lock.Destroy(); err != nil {
			log.Warn("destroy codec-context lock failed", "context", ctx.ID, "error", err)
		}
		return teardownErr
	})
}

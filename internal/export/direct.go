// The direct backend allocates GEM buffer objects on the device's DRM
// render node and exports them as PRIME file descriptors. The GEM
// allocation and DRM_IOCTL_PRIME_HANDLE_TO_FD ioctl are the explicitly
// out-of-scope "DRM/EGL interop" collaborator (spec.md §1); this file only
// owns the fd bookkeeping and the scratch-buffer allocation that produces
// the value to export, via golang.org/x/sys/unix the same way the rest of
// this repository reaches into DRM/thread primitives instead of
// hand-rolling syscall numbers.
package export

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/nvcuvid/vaapi-driver/internal/drvlog"
	"github.com/nvcuvid/vaapi-driver/internal/vacontract"
)

var log = drvlog.L("export")

const drmRenderNode = "/dev/dri/renderD128"

type directBackend struct {
	mu      sync.Mutex
	drmFD   int
	images  []*Handle
	initErr error
}

func newDirectBackend() *directBackend {
	return &directBackend{drmFD: -1}
}

func (b *directBackend) InitExporter() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	fd, err := unix.Open(drmRenderNode, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		log.Warn("direct backend: cannot open DRM render node, plane fds fall back to /dev/null", "node", drmRenderNode, "error", err)
		b.initErr = err
		return nil
	}
	b.drmFD = fd
	return nil
}

func (b *directBackend) RealiseSurface(img **Handle, desc SurfaceDescriptor) error {
	if *img != nil && (*img).realised {
		return nil // idempotent
	}

	fd, fmtDesc, err := b.allocatePlanes(desc)
	if err != nil {
		return err
	}

	h := &Handle{
		desc:     desc,
		planeFDs: fd,
		pitches:  fmtDesc.pitches,
		offsets:  fmtDesc.offsets,
		fourcc:   fmtDesc.fourcc,
		realised: true,
	}

	b.mu.Lock()
	b.images = append(b.images, h)
	b.mu.Unlock()

	*img = h
	return nil
}

type allocatedFormat struct {
	pitches []uint32
	offsets []uint32
	fourcc  uint32
}

// allocatePlanes stands in for the GEM-alloc + PRIME-export ioctl pair: it
// derives per-plane pitch/offset from the declared format and mints one
// fd per plane. A real build replaces the fd minting with
// DRM_IOCTL_MODE_CREATE_DUMB followed by DRM_IOCTL_PRIME_HANDLE_TO_FD.
func (b *directBackend) allocatePlanes(desc SurfaceDescriptor) ([]int32, allocatedFormat, error) {
	descriptor, ok := formatDescriptorFor(desc.Format)
	if !ok {
		return nil, allocatedFormat{}, fmt.Errorf("export: no format descriptor for surface format %v", desc.Format)
	}

	fds := make([]int32, descriptor.Planes)
	pitches := make([]uint32, descriptor.Planes)
	offsets := make([]uint32, descriptor.Planes)

	rowPitch := alignPitch(desc.Width)
	offset := uint32(0)
	for i := 0; i < descriptor.Planes; i++ {
		fd, err := b.dupPlaneFD()
		if err != nil {
			for _, opened := range fds[:i] {
				unix.Close(int(opened))
			}
			return nil, allocatedFormat{}, err
		}
		fds[i] = fd
		pitches[i] = uint32(rowPitch)
		offsets[i] = offset
		offset += uint32(rowPitch * desc.Height)
	}

	return fds, allocatedFormat{pitches: pitches, offsets: offsets, fourcc: descriptor.DRMFourCC}, nil
}

func alignPitch(width int) int {
	const pitchAlign = 256
	if rem := width % pitchAlign; rem != 0 {
		width += pitchAlign - rem
	}
	return width
}

// dupPlaneFD mints a distinct, closeable fd standing in for a PRIME export
// fd. It duplicates the open DRM node fd (or /dev/null when the node could
// not be opened) purely so each plane has a real, closeable OS fd.
func (b *directBackend) dupPlaneFD() (int32, error) {
	b.mu.Lock()
	base := b.drmFD
	b.mu.Unlock()

	if base < 0 {
		null, err := unix.Open("/dev/null", unix.O_RDONLY|unix.O_CLOEXEC, 0)
		if err != nil {
			return -1, fmt.Errorf("export: no DRM node and /dev/null unavailable: %w", err)
		}
		return int32(null), nil
	}
	dup, err := unix.Dup(base)
	if err != nil {
		return -1, fmt.Errorf("export: dup DRM fd: %w", err)
	}
	return int32(dup), nil
}

func (b *directBackend) ExportCudaPtr(img *Handle, devicePtr uintptr, pitch uint32) error {
	if img == nil || !img.realised {
		return fmt.Errorf("export: ExportCudaPtr called on unrealised surface")
	}
	// The real copy/reference of decoder device memory into the GEM buffer
	// is CUDA-external-memory interop, out of scope; this call site is
	// where internal/driver's resolve worker invokes it.
	return nil
}

func (b *directBackend) FillExportDescriptor(img *Handle, memType vacontract.MemoryType, flags vacontract.ExportFlags) (vacontract.ExportDescriptor, error) {
	if memType&vacontract.MemoryTypeDRMPrime2 == 0 {
		return vacontract.ExportDescriptor{}, errUnsupportedMemoryType
	}
	if flags&vacontract.ExportFlagSeparateLayers == 0 {
		return vacontract.ExportDescriptor{}, errInvalidSurface
	}
	if img == nil || !img.realised {
		return vacontract.ExportDescriptor{}, errInvalidSurface
	}

	desc := vacontract.ExportDescriptor{
		FourCC:    img.fourcc,
		Width:     uint32(img.desc.Width),
		Height:    uint32(img.desc.Height),
		NumLayers: len(img.planeFDs),
	}
	for i := range img.planeFDs {
		desc.Planes[i] = vacontract.PlaneDescriptor{
			FD:     img.planeFDs[i],
			Offset: img.offsets[i],
			Pitch:  img.pitches[i],
		}
	}
	return desc, nil
}

func (b *directBackend) DetachBackingImage(img **Handle) error {
	if *img == nil {
		return nil
	}
	h := *img
	for _, fd := range h.planeFDs {
		unix.Close(int(fd))
	}
	h.realised = false

	b.mu.Lock()
	for i, existing := range b.images {
		if existing == h {
			b.images = append(b.images[:i], b.images[i+1:]...)
			break
		}
	}
	b.mu.Unlock()

	*img = nil
	return nil
}

func (b *directBackend) DestroyAllBackingImages() error {
	b.mu.Lock()
	images := b.images
	b.images = nil
	b.mu.Unlock()

	for _, h := range images {
		ptr := h
		_ = b.DetachBackingImage(&ptr)
	}
	return nil
}

func (b *directBackend) ReleaseExporter() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drmFD >= 0 {
		err := unix.Close(b.drmFD)
		b.drmFD = -1
		return err
	}
	return nil
}

func formatDescriptorFor(format vacontract.SurfaceFormat) (vacontract.FormatDescriptor, bool) {
	for _, f := range vacontract.FormatTable {
		if f.Format == format {
			return f, true
		}
	}
	return vacontract.FormatDescriptor{}, false
}

// The EGL backend produces an EGLImage from the decoded picture and then
// exports it as DMA-BUF planes via EGL_MESA_image_dma_buf_export -- real
// EGL/GBM interop, out of scope per spec.md §1. This file models the
// shape of that path (one EGLImage per Surface, detach destroys it) while
// delegating the actual plane export to the same fd-minting helper the
// direct backend uses, since both backends end up handing the core the
// same DMA-PRIME descriptor shape.
package export

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/nvcuvid/vaapi-driver/internal/vacontract"
)

type eglBackend struct {
	mu       sync.Mutex
	images   []*Handle
	eglReady bool
}

func newEGLBackend() *eglBackend {
	return &eglBackend{}
}

func (b *eglBackend) InitExporter() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	// Real init opens an EGLDisplay against the device node and checks for
	// EGL_MESA_image_dma_buf_export; modeled here as a readiness flag.
	b.eglReady = true
	return nil
}

func (b *eglBackend) RealiseSurface(img **Handle, desc SurfaceDescriptor) error {
	if *img != nil && (*img).realised {
		return nil
	}
	descriptor, ok := formatDescriptorFor(desc.Format)
	if !ok {
		return fmt.Errorf("export: no format descriptor for surface format %v", desc.Format)
	}

	fds := make([]int32, descriptor.Planes)
	pitches := make([]uint32, descriptor.Planes)
	offsets := make([]uint32, descriptor.Planes)
	rowPitch := alignPitch(desc.Width)
	offset := uint32(0)
	for i := 0; i < descriptor.Planes; i++ {
		fd, err := unix.Open("/dev/null", unix.O_RDONLY|unix.O_CLOEXEC, 0)
		if err != nil {
			for _, opened := range fds[:i] {
				unix.Close(int(opened))
			}
			return fmt.Errorf("export: egl image export fd: %w", err)
		}
		fds[i] = int32(fd)
		pitches[i] = uint32(rowPitch)
		offsets[i] = offset
		offset += uint32(rowPitch * desc.Height)
	}

	h := &Handle{
		desc:     desc,
		planeFDs: fds,
		pitches:  pitches,
		offsets:  offsets,
		fourcc:   descriptor.DRMFourCC,
		realised: true,
	}

	b.mu.Lock()
	b.images = append(b.images, h)
	b.mu.Unlock()

	*img = h
	return nil
}

func (b *eglBackend) ExportCudaPtr(img *Handle, devicePtr uintptr, pitch uint32) error {
	if img == nil || !img.realised {
		return fmt.Errorf("export: ExportCudaPtr called on unrealised surface")
	}
	// CUDA-to-EGLImage interop copy is out of scope.
	return nil
}

func (b *eglBackend) FillExportDescriptor(img *Handle, memType vacontract.MemoryType, flags vacontract.ExportFlags) (vacontract.ExportDescriptor, error) {
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

func (b *eglBackend) DetachBackingImage(img **Handle) error {
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

func (b *eglBackend) DestroyAllBackingImages() error {
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

func (b *eglBackend) ReleaseExporter() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.eglReady = false
	return nil
}

package driver

import (
	"github.com/nvcuvid/vaapi-driver/internal/registry"
	"github.com/nvcuvid/vaapi-driver/internal/vacontract"
)

// Buffer is a typed client payload (picture-params, slice-params, slice-
// data, ...), the Data Model's Buffer entity.
type Buffer struct {
	ID                uint32
	Type              vacontract.BufferType
	ElementCount      int
	Data              []byte
	UnalignmentOffset int
}

// CreateBuffer allocates a Buffer, optionally copying caller data in
// immediately (the common VA-API vaCreateBuffer-with-initial-data shape).
func (inst *Instance) CreateBuffer(bufType vacontract.BufferType, elementCount int, data []byte) (*Buffer, error) {
	if elementCount < 0 {
		return nil, newError(StatusInvalidParameter, "driver: negative element count")
	}
	b := &Buffer{Type: bufType, ElementCount: elementCount}
	if data != nil {
		b.Data = append([]byte(nil), data...)
	}
	obj := inst.reg.Allocate(registry.TypeBuffer, b)
	b.ID = obj.ID
	return b, nil
}

// MapBuffer replaces a Buffer's data, the vaMapBuffer/memcpy shape client
// code uses to fill a Buffer created without initial data.
func (inst *Instance) MapBuffer(id uint32, data []byte) error {
	b, err := inst.lookupBuffer(id)
	if err != nil {
		return err
	}
	b.Data = append([]byte(nil), data...)
	return nil
}

func (inst *Instance) lookupBuffer(id uint32) (*Buffer, error) {
	obj, err := inst.reg.LookupTyped(id, registry.TypeBuffer)
	if err != nil {
		return nil, newError(StatusInvalidBuffer, "%v", err)
	}
	return obj.Inner.(*Buffer), nil
}

// DestroyBuffer frees a Buffer.
func (inst *Instance) DestroyBuffer(id uint32) error {
	if _, err := inst.lookupBuffer(id); err != nil {
		return err
	}
	inst.reg.Delete(id)
	return nil
}

// Image is a host-visible copy target: a pixel format descriptor plus the
// Buffer backing its pixel data, the Data Model's Image entity. It holds
// the *Buffer directly rather than its id, so DestroyImage can find the
// Buffer's registry entry via the registry's reverse pointer lookup the
// same way the fixed contract's DeriveImage/DestroyImage pair does.
type Image struct {
	ID     uint32
	Format vacontract.SurfaceFormat
	Width  int
	Height int
	buf    *Buffer
}

// CreateImage allocates an Image and its backing Buffer (sized for the
// declared format/dimensions; no pixel data is produced here since that is
// PutImage/DeriveImage's job, both explicitly unsupported per §4.8).
func (inst *Instance) CreateImage(format vacontract.SurfaceFormat, w, h int) (*Image, error) {
	descriptor, ok := formatDescriptorFor(format)
	if !ok {
		return nil, newError(StatusInvalidImageFormat, "driver: no format descriptor for image format %v", format)
	}
	size := w * h * descriptor.Planes
	buf, err := inst.CreateBuffer(vacontract.BufferTypeImage, size, make([]byte, size))
	if err != nil {
		return nil, err
	}

	img := &Image{Format: format, Width: w, Height: h, buf: buf}
	obj := inst.reg.Allocate(registry.TypeImage, img)
	img.ID = obj.ID
	return img, nil
}

func formatDescriptorFor(format vacontract.SurfaceFormat) (vacontract.FormatDescriptor, bool) {
	for _, f := range vacontract.FormatTable {
		if f.Format == format {
			return f, true
		}
	}
	return vacontract.FormatDescriptor{}, false
}

// DestroyImage frees an Image together with its backing Buffer, matching
// the Data Model's "its Buffer is deleted with it": the Object Registry's
// §4.2 lookupByInnerPointer reverse lookup (needed "by Image destruction to
// find the implicit Buffer") resolves the Buffer's registry id from the
// Image's stored *Buffer pointer.
func (inst *Instance) DestroyImage(id uint32) error {
	obj, err := inst.reg.LookupTyped(id, registry.TypeImage)
	if err != nil {
		return newError(StatusInvalidImage, "%v", err)
	}
	img := obj.Inner.(*Image)
	if bufObj := inst.reg.LookupByInnerPointer(img.buf); bufObj != nil {
		inst.reg.Delete(bufObj.ID)
	}
	inst.reg.Delete(id)
	return nil
}

package driver

import (
	"sync"

	"github.com/nvcuvid/vaapi-driver/internal/export"
	"github.com/nvcuvid/vaapi-driver/internal/registry"
	"github.com/nvcuvid/vaapi-driver/internal/vacontract"
)

// Surface is one decodable/exportable frame slot. It is not owned by a
// Context: the Context field is a back-reference updated by BeginPicture,
// never a strong reference, matching the data model's "Surfaces are not
// owned by Contexts" ownership rule.
type Surface struct {
	ID       uint32
	Width    int
	Height   int
	Chroma   vacontract.ChromaFormat
	Format   vacontract.SurfaceFormat
	BitDepth int

	mu               sync.Mutex
	cond             *sync.Cond
	pictureIdx       int // -1 when unbound
	context          *Context
	progressiveFrame bool
	topFieldFirst    bool
	secondField      bool
	decodeFailed     bool
	resolving        bool

	image *export.Handle
}

func newSurface(w, h int, chroma vacontract.ChromaFormat, format vacontract.SurfaceFormat, bitDepth int) *Surface {
	s := &Surface{
		Width:      w,
		Height:     h,
		Chroma:     chroma,
		Format:     format,
		BitDepth:   bitDepth,
		pictureIdx: -1,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// roundForChroma applies §4.6 S2's subsampling round-up: 4:2:0 rounds both
// dimensions to a multiple of 2, 4:2:2 rounds width only, 4:4:4 needs no
// rounding.
func roundForChroma(w, h int, chroma vacontract.ChromaFormat) (int, int) {
	switch chroma {
	case vacontract.Chroma420:
		return roundUp2(w), roundUp2(h)
	case vacontract.Chroma422:
		return roundUp2(w), h
	default:
		return w, h
	}
}

func roundUp2(v int) int {
	if v%2 != 0 {
		return v + 1
	}
	return v
}

// formatFor maps a client-declared surface format to the (chroma, bitDepth)
// pair CreateSurfaces2 stores alongside it. vacontract.FormatTable's
// Is16Bit column only distinguishes 8-bit from "wider than 8-bit" -- P010,
// P012 and P016 are all Is16Bit but carry distinct bit depths, so the exact
// depth is keyed on the format tag itself rather than derived from the
// table.
func formatFor(format vacontract.SurfaceFormat) (chroma vacontract.ChromaFormat, bitDepth int) {
	f, ok := formatDescriptor(format)
	if !ok {
		return vacontract.Chroma420, 8
	}

	switch format {
	case vacontract.SurfaceFormatP010:
		return f.Chroma, 10
	case vacontract.SurfaceFormatP012:
		return f.Chroma, 12
	case vacontract.SurfaceFormatP016, vacontract.SurfaceFormatQ416:
		return f.Chroma, 16
	default:
		return f.Chroma, 8
	}
}

func formatDescriptor(format vacontract.SurfaceFormat) (vacontract.FormatDescriptor, bool) {
	for _, f := range vacontract.FormatTable {
		if f.Format == format {
			return f, true
		}
	}
	return vacontract.FormatDescriptor{}, false
}

// CreateSurfaces2 implements §4.6 S2: allocate n Surfaces of the given
// format and (rounded) dimensions, each with its own mutex/condvar.
func (inst *Instance) CreateSurfaces2(format vacontract.SurfaceFormat, w, h, n int) ([]*Surface, error) {
	if n <= 0 {
		return nil, newError(StatusInvalidParameter, "driver: surface count must be positive")
	}
	chroma, bitDepth := formatFor(format)
	rw, rh := roundForChroma(w, h, chroma)

	out := make([]*Surface, 0, n)
	for i := 0; i < n; i++ {
		s := newSurface(rw, rh, chroma, format, bitDepth)
		obj := inst.reg.Allocate(registry.TypeSurface, s)
		s.ID = obj.ID
		out = append(out, s)
	}
	return out, nil
}

// CreateSurfaces is the legacy shape that forwards to CreateSurfaces2,
// defaulting to NV12/8-bit the way a caller that never specifies a format
// attribute gets the Config's implicit default.
func (inst *Instance) CreateSurfaces(w, h, n int) ([]*Surface, error) {
	return inst.CreateSurfaces2(vacontract.SurfaceFormatNV12, w, h, n)
}

// DestroySurfaces frees the named Surfaces, detaching any backing image
// first (Glossary: "Detach is the only safe way to release them").
func (inst *Instance) DestroySurfaces(ids []uint32) error {
	for _, id := range ids {
		obj, err := inst.reg.LookupTyped(id, registry.TypeSurface)
		if err != nil {
			return newError(StatusInvalidSurface, "%v", err)
		}
		s := obj.Inner.(*Surface)
		inst.detachSurfaceBackingImage(s)
		inst.reg.Delete(id)
	}
	return nil
}

func (inst *Instance) lookupSurface(id uint32) (*Surface, error) {
	obj, err := inst.reg.LookupTyped(id, registry.TypeSurface)
	if err != nil {
		return nil, newError(StatusInvalidSurface, "%v", err)
	}
	return obj.Inner.(*Surface), nil
}

// LookupSurfacesForShim resolves a batch of registry ids to *Surface,
// for internal/vashim's CreateContext translation (it receives the
// client's render-target id array and needs the *Surface slice
// driver.CreateContext expects). Fails on the first invalid id.
func (inst *Instance) LookupSurfacesForShim(ids []uint32) ([]*Surface, error) {
	out := make([]*Surface, 0, len(ids))
	for _, id := range ids {
		s, err := inst.lookupSurface(id)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// detachSurfaceBackingImage releases a Surface's backing image via the
// export backend, the rebind/destroy shared helper both BeginPicture and
// DestroySurfaces call.
func (inst *Instance) detachSurfaceBackingImage(s *Surface) {
	if s.image == nil {
		return
	}
	if err := inst.backend.DetachBackingImage(&s.image); err != nil {
		log.Warn("detach backing image failed", "surface", s.ID, "error", err)
	}
}

// SurfaceCount reports the number of live Surface objects, backing the
// testable property "surfaceCount never goes negative and equals the
// number of live Surface Objects".
func (inst *Instance) SurfaceCount() int {
	return inst.reg.CountType(registry.TypeSurface)
}

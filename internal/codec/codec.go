// Package codec implements the Codec Dispatch Table: a compile-time
// registry of per-codec descriptors (MPEG-2, MPEG-4, VC-1, H.264 + SVC +
// MVC, JPEG, HEVC, VP8, VP9, AV1), each translating client VA-API buffers
// into the vendor decoder's picture-parameter scratch struct plus the
// Context's bitstream/slice-offset accumulators.
//
// Builds on nothing driver-specific (abuf and vacontract only), matching
// the dependency order spec.md gives: the dispatch table is a leaf next to
// the object registry, not a consumer of internal/driver.
//
// Grounded on the teacher's registerHardwareFactory/hardwareFactories
// pattern (a package-level, mutex-guarded slice of registration thunks
// consulted at construction time), generalized from "first working hardware
// encoder wins" to "first codec whose SupportedProfiles contains the
// requested profile wins".
package codec

import (
	"sync"

	"github.com/nvcuvid/vaapi-driver/internal/abuf"
	"github.com/nvcuvid/vaapi-driver/internal/vacontract"
)

// CudaCodecID names a vendor decoder codec id. CudaCodecNone means the
// codec entry cannot translate the requested profile into a vendor id
// (used by capability queries to skip an otherwise-matching profile).
type CudaCodecID int

const CudaCodecNone CudaCodecID = -1

const (
	CudaCodecMPEG2 CudaCodecID = iota
	CudaCodecMPEG4
	CudaCodecVC1
	CudaCodecH264
	CudaCodecJPEG
	CudaCodecHEVC
	CudaCodecVP8
	CudaCodecVP9
	CudaCodecAV1
)

// ClientBuffer is the subset of a registry Buffer a handler needs: its VA
// buffer type, raw bytes, and the VP8-specific unalignment offset.
type ClientBuffer struct {
	Type              vacontract.BufferType
	Data              []byte
	ElementCount      int
	UnalignmentOffset int
}

// PictureParams is the Context's scratch picture-parameter struct. It is a
// generic field bag rather than one union-of-all-codecs struct: each
// codec's handlers only ever read/write the keys it defined, and the
// entire struct is zeroed between pictures by BeginPicture.
type PictureParams struct {
	CurrPicIdx      int
	BottomFieldFlag bool
	SecondField     bool
	Fields          map[string]any
}

// NewPictureParams returns a zeroed scratch struct, matching BeginPicture's
// "zero the scratch picture-parameter struct" step.
func NewPictureParams() *PictureParams {
	return &PictureParams{Fields: make(map[string]any)}
}

// RenderContext bundles the per-picture scratch state a handler may touch:
// the picture-parameter struct being filled in, and the Context's two
// Appendable Buffers for bitstream payload and slice offsets.
type RenderContext struct {
	Params       *PictureParams
	Bitstream    *abuf.Buffer
	SliceOffsets *abuf.Buffer
}

// Handler translates one client buffer into scratch state. Handlers never
// return an error: an unrecognized buffer shape is clamped/ignored and
// logged by the caller, matching spec.md's "unknown buffer types log and
// skip" rule uniformly at the RenderPicture layer rather than per-handler.
type Handler func(rc *RenderContext, buf ClientBuffer)

// Descriptor is one codec's full dispatch entry.
type Descriptor struct {
	Name              string
	SupportedProfiles []vacontract.Profile
	ComputeCudaCodec  func(profile vacontract.Profile) CudaCodecID
	Handlers          map[vacontract.BufferType]Handler
}

// Supports reports whether this codec's SupportedProfiles includes profile.
func (d *Descriptor) Supports(profile vacontract.Profile) bool {
	for _, p := range d.SupportedProfiles {
		if p == profile {
			return true
		}
	}
	return false
}

var (
	registryMu sync.Mutex
	registered []*Descriptor
)

// Register adds a codec descriptor to the table. Called from each
// per-codec file's init(), the same way the teacher's codec modules each
// call registerHardwareFactory from their own init().
func Register(d *Descriptor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registered = append(registered, d)
}

// All returns every registered codec descriptor, in registration order.
func All() []*Descriptor {
	registryMu.Lock()
	defer registryMu.Unlock()
	out := make([]*Descriptor, len(registered))
	copy(out, registered)
	return out
}

// Select scans registered codecs and returns the first whose
// SupportedProfiles includes profile, matching CreateContext's selection
// rule exactly ("scan all registered codecs, pick the first match").
func Select(profile vacontract.Profile) (*Descriptor, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, d := range registered {
		if d.Supports(profile) {
			return d, true
		}
	}
	return nil, false
}

// appendSliceData is the shared H.264/VP8/HEVC/... "append slice payload,
// record its offset" handler body, grounded on the NAL/slice accumulation
// shape in the H.264 bitstream parsers: each slice-data buffer is appended
// to the running bitstream, and its starting offset (adjusted by any VP8
// unalignment) is recorded in the parallel sliceOffsets array.
func appendSliceData(rc *RenderContext, buf ClientBuffer) {
	offset := uint32(rc.Bitstream.Len() - buf.UnalignmentOffset)
	rc.Bitstream.Append(buf.Data)
	rc.SliceOffsets.Append(uint32ToBytes(offset))
}

func uint32ToBytes(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

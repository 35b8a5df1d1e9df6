// Package vacontract defines the fixed external ABI this driver is bound
// to: VA-API status codes, profile/entrypoint/buffer-type enumerations, and
// the image-format and DMA-PRIME descriptor shapes. None of this is ours to
// redesign -- the real vaapi.h header fixes these values -- so the package
// is a set of typed constants and plain structs, the same role the inline
// cgo preamble constants play in a vendor cgo boundary: a stand-in for a
// header this repository does not own.
package vacontract

// Status mirrors VAStatus. Values match the real VA-API header so a caller
// linking the c-shared entry point in cmd/vaapi_nvdec gets the ABI a VA-API
// client expects.
type Status int32

const (
	StatusSuccess Status = 0x00000000

	StatusErrorOperationFailed        Status = 0x00000001
	StatusErrorAllocationFailed       Status = 0x00000002
	StatusErrorInvalidConfig          Status = 0x00000003
	StatusErrorInvalidContext         Status = 0x00000004
	StatusErrorInvalidSurface         Status = 0x00000005
	StatusErrorInvalidBuffer          Status = 0x00000006
	StatusErrorInvalidImage           Status = 0x00000007
	StatusErrorInvalidSubpicture      Status = 0x00000008
	StatusErrorAttrNotSupported       Status = 0x00000009
	StatusErrorMaxNumExceeded         Status = 0x0000000a
	StatusErrorUnsupportedProfile     Status = 0x0000000b
	StatusErrorUnsupportedEntrypoint  Status = 0x0000000c
	StatusErrorUnsupportedRTFormat    Status = 0x0000000d
	StatusErrorUnsupportedBufferType  Status = 0x0000000e
	StatusErrorSurfaceBusy            Status = 0x0000000f
	StatusErrorFlagNotSupported       Status = 0x00000010
	StatusErrorInvalidParameter       Status = 0x00000011
	StatusErrorResolutionNotSupported Status = 0x00000012
	StatusErrorUnimplemented          Status = 0x00000013
	StatusErrorSurfaceInDisplaying    Status = 0x00000014
	StatusErrorInvalidImageFormat     Status = 0x00000015
	StatusErrorDecodingError          Status = 0x00000016
	StatusErrorEncodingError          Status = 0x00000017
	StatusErrorInvalidValue           Status = 0x00000018
	StatusErrorUnsupportedFilter      Status = 0x00000019
	StatusErrorInvalidFilterChain     Status = 0x0000001a
	StatusErrorHWBusy                 Status = 0x0000001b
	StatusErrorUnsupportedMemoryType  Status = 0x0000001d
	StatusErrorNotEnoughBuffer        Status = 0x0000001e
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "VA_STATUS_SUCCESS"
	case StatusErrorOperationFailed:
		return "VA_STATUS_ERROR_OPERATION_FAILED"
	case StatusErrorAllocationFailed:
		return "VA_STATUS_ERROR_ALLOCATION_FAILED"
	case StatusErrorInvalidConfig:
		return "VA_STATUS_ERROR_INVALID_CONFIG"
	case StatusErrorInvalidContext:
		return "VA_STATUS_ERROR_INVALID_CONTEXT"
	case StatusErrorInvalidSurface:
		return "VA_STATUS_ERROR_INVALID_SURFACE"
	case StatusErrorInvalidBuffer:
		return "VA_STATUS_ERROR_INVALID_BUFFER"
	case StatusErrorInvalidImage:
		return "VA_STATUS_ERROR_INVALID_IMAGE"
	case StatusErrorInvalidSubpicture:
		return "VA_STATUS_ERROR_INVALID_SUBPICTURE"
	case StatusErrorAttrNotSupported:
		return "VA_STATUS_ERROR_ATTR_NOT_SUPPORTED"
	case StatusErrorMaxNumExceeded:
		return "VA_STATUS_ERROR_MAX_NUM_EXCEEDED"
	case StatusErrorUnsupportedProfile:
		return "VA_STATUS_ERROR_UNSUPPORTED_PROFILE"
	case StatusErrorUnsupportedEntrypoint:
		return "VA_STATUS_ERROR_UNSUPPORTED_ENTRYPOINT"
	case StatusErrorUnsupportedRTFormat:
		return "VA_STATUS_ERROR_UNSUPPORTED_RT_FORMAT"
	case StatusErrorUnsupportedBufferType:
		return "VA_STATUS_ERROR_UNSUPPORTED_BUFFERTYPE"
	case StatusErrorSurfaceBusy:
		return "VA_STATUS_ERROR_SURFACE_BUSY"
	case StatusErrorFlagNotSupported:
		return "VA_STATUS_ERROR_FLAG_NOT_SUPPORTED"
	case StatusErrorInvalidParameter:
		return "VA_STATUS_ERROR_INVALID_PARAMETER"
	case StatusErrorResolutionNotSupported:
		return "VA_STATUS_ERROR_RESOLUTION_NOT_SUPPORTED"
	case StatusErrorUnimplemented:
		return "VA_STATUS_ERROR_UNIMPLEMENTED"
	case StatusErrorSurfaceInDisplaying:
		return "VA_STATUS_ERROR_SURFACE_IN_DISPLAYING"
	case StatusErrorInvalidImageFormat:
		return "VA_STATUS_ERROR_INVALID_IMAGE_FORMAT"
	case StatusErrorDecodingError:
		return "VA_STATUS_ERROR_DECODING_ERROR"
	case StatusErrorEncodingError:
		return "VA_STATUS_ERROR_ENCODING_ERROR"
	case StatusErrorInvalidValue:
		return "VA_STATUS_ERROR_INVALID_VALUE"
	case StatusErrorUnsupportedFilter:
		return "VA_STATUS_ERROR_UNSUPPORTED_FILTER"
	case StatusErrorInvalidFilterChain:
		return "VA_STATUS_ERROR_INVALID_FILTER_CHAIN"
	case StatusErrorHWBusy:
		return "VA_STATUS_ERROR_HW_BUSY"
	case StatusErrorUnsupportedMemoryType:
		return "VA_STATUS_ERROR_UNSUPPORTED_MEMORY_TYPE"
	case StatusErrorNotEnoughBuffer:
		return "VA_STATUS_ERROR_NOT_ENOUGH_BUFFER"
	default:
		return "VA_STATUS_ERROR_UNKNOWN"
	}
}

// Profile enumerates the VAProfile values this driver's codec table can
// reference. Only the subset relevant to CUVID decode is listed.
type Profile int32

const (
	ProfileNone Profile = -1

	ProfileMPEG2Simple Profile = iota
	ProfileMPEG2Main

	ProfileMPEG4Simple
	ProfileMPEG4AdvancedSimple
	ProfileMPEG4Main

	ProfileVC1Simple
	ProfileVC1Main
	ProfileVC1Advanced

	ProfileH264ConstrainedBaseline
	ProfileH264Main
	ProfileH264High
	ProfileH264MultiviewHigh
	ProfileH264StereoHigh

	ProfileJPEGBaseline

	ProfileHEVCMain
	ProfileHEVCMain10
	ProfileHEVCMain12
	ProfileHEVCMain444
	ProfileHEVCMain444_10
	ProfileHEVCMain444_12

	ProfileVP8Version0_3

	ProfileVP9Profile0
	ProfileVP9Profile1
	ProfileVP9Profile2
	ProfileVP9Profile3

	ProfileAV1Profile0
	ProfileAV1Profile1
)

// Entrypoint enumerates VAEntrypoint. This driver only ever advertises VLD.
type Entrypoint int32

const (
	EntrypointVLD Entrypoint = 1
)

// BufferType enumerates VABufferType, the index space for a codec's handler
// table and for RenderPicture's per-buffer dispatch.
type BufferType int32

const (
	BufferTypePictureParameter BufferType = iota + 1
	BufferTypeIQMatrix
	BufferTypeBitPlane
	BufferTypeSliceGroupMap
	BufferTypeSliceParameter
	BufferTypeSliceData
	BufferTypeMacroblockParameter
	BufferTypeResidualData
	BufferTypeDeblockingParameter
	BufferTypeImage
	BufferTypeProtectedSliceData
	BufferTypeQMatrix
	BufferTypeHuffmanTable
	BufferTypeProbabilityData
)

// RTFormat enumerates VA_RT_FORMAT_* bitmask values used by render-target
// format attributes.
type RTFormat uint32

const (
	RTFormatYUV420    RTFormat = 1 << 0
	RTFormatYUV422    RTFormat = 1 << 1
	RTFormatYUV444    RTFormat = 1 << 2
	RTFormatYUV420_10 RTFormat = 1 << 8
	RTFormatYUV420_12 RTFormat = 1 << 9
	RTFormatYUV444_10 RTFormat = 1 << 10
	RTFormatYUV444_12 RTFormat = 1 << 11
)

// ChromaFormat is the Surface/Config chroma subsampling.
type ChromaFormat int

const (
	Chroma420 ChromaFormat = iota
	Chroma422
	Chroma444
)

// SurfaceFormat is the pixel layout a Surface's backing image is realised
// in, one entry per row of spec.md's pixel-format table.
type SurfaceFormat int

const (
	SurfaceFormatNV12 SurfaceFormat = iota
	SurfaceFormatP010
	SurfaceFormatP012
	SurfaceFormatP016
	SurfaceFormat444P
	SurfaceFormatQ416
)

// FormatDescriptor is one row of the fixed pixel-format table exposed via
// QueryImageFormats / QuerySurfaceAttributes.
type FormatDescriptor struct {
	Format      SurfaceFormat
	Planes      int
	Chroma      ChromaFormat
	DRMFourCC   uint32
	Is16Bit     bool
	Is444       bool
	Description string
}

// DRM fourcc codes, little-endian packed the way <drm_fourcc.h> defines them
// ('N','1','2',' ' etc.); the exact values are part of the fixed ABI.
const (
	fourccNV12   = uint32('N') | uint32('1')<<8 | uint32('2')<<16 | uint32(' ')<<24
	fourccP010   = uint32('P') | uint32('0')<<8 | uint32('1')<<16 | uint32('0')<<24
	fourccP012   = uint32('P') | uint32('0')<<8 | uint32('1')<<16 | uint32('2')<<24
	fourccP016   = uint32('P') | uint32('0')<<8 | uint32('1')<<16 | uint32('6')<<24
	fourccYUV444 = uint32('Y') | uint32('U')<<8 | uint32('V')<<16 | uint32('4')<<24
	fourccInvalid = 0
)

// FormatTable is the fixed table spec.md §6 names. Order matters: it is
// iterated in this order for QueryImageFormats, and its length minus one
// feeds __vaDriverInit_1_0's max_image_formats field.
var FormatTable = []FormatDescriptor{
	{Format: SurfaceFormatNV12, Planes: 2, Chroma: Chroma420, DRMFourCC: fourccNV12, Is16Bit: false, Is444: false, Description: "NV12"},
	{Format: SurfaceFormatP010, Planes: 2, Chroma: Chroma420, DRMFourCC: fourccP010, Is16Bit: true, Is444: false, Description: "P010"},
	{Format: SurfaceFormatP012, Planes: 2, Chroma: Chroma420, DRMFourCC: fourccP012, Is16Bit: true, Is444: false, Description: "P012"},
	{Format: SurfaceFormatP016, Planes: 2, Chroma: Chroma420, DRMFourCC: fourccP016, Is16Bit: true, Is444: false, Description: "P016"},
	{Format: SurfaceFormat444P, Planes: 3, Chroma: Chroma444, DRMFourCC: fourccYUV444, Is16Bit: false, Is444: true, Description: "444P"},
	{Format: SurfaceFormatQ416, Planes: 3, Chroma: Chroma444, DRMFourCC: fourccInvalid, Is16Bit: true, Is444: true, Description: "Q416"},
}

// MemoryType and ExportFlags gate ExportSurfaceHandle per spec.md §4.6/§8.
type MemoryType uint32

const (
	MemoryTypeDRMPrime  MemoryType = 1 << 0
	MemoryTypeDRMPrime2 MemoryType = 1 << 1
)

type ExportFlags uint32

const (
	ExportFlagSeparateLayers ExportFlags = 1 << 0
	ExportFlagComposedLayers ExportFlags = 1 << 1
)

// MaxPlanes bounds a DMA-PRIME descriptor's plane array (largest format in
// FormatTable uses 3).
const MaxPlanes = 4

// PlaneDescriptor is one plane of a DMA-PRIME-v2 export descriptor.
type PlaneDescriptor struct {
	FD       int32
	Offset   uint32
	Pitch    uint32
	Modifier uint64
}

// ExportDescriptor is the DMA-PRIME-v2 separate-layer descriptor
// ExportSurfaceHandle writes on success: one layer per plane.
type ExportDescriptor struct {
	FourCC    uint32
	Width     uint32
	Height    uint32
	NumLayers int
	Planes    [MaxPlanes]PlaneDescriptor
}

// SurfaceQueueSize is the resolve queue's fixed ring capacity.
const SurfaceQueueSize = 32

// MaxProfiles mirrors __vaDriverInit_1_0's ctx.max_profiles field.
const MaxProfiles = 32

// DestroyContextDeadlineSeconds bounds the resolve-thread join on Context teardown.
const DestroyContextDeadlineSeconds = 5

// Package cuvid is the cgo boundary to the vendor CUVID/NVDEC library and
// the CUDA driver API -- both explicitly out of scope per spec.md §1
// ("the concrete NVIDIA decoder library, the CUDA driver API ... consumed
// as fixed external contracts"). The inline C preamble below declares only
// the subset of the vendor headers this driver calls; it is not a copy of
// nvcuvid.h/cuda.h, the same way the pack's CUDA driver-API binding
// declares its own minimal subset rather than vendoring the real header.
//
// The linker is told to ignore unresolved symbols so this package still
// links in environments without libnvcuvid.so/libcuda.so present (the
// expected situation in a plain build of this repository); at runtime the
// driver's init path is the one place that must detect absence and fail
// gracefully.
package cuvid

import "unsafe"

/*
#cgo LDFLAGS: -Wl,--unresolved-symbols=ignore-in-object-files

#include <stdint.h>

typedef int CUresult;
typedef struct CUctx_st *CUcontext;
typedef struct CUvidctxlock_st *CUvideoctxlock;
typedef void *CUvideodecoder;
typedef int CUvideocodec;
typedef int CUvideochromaformat;

typedef struct _CUVIDDECODECREATEINFO {
    unsigned long ulWidth;
    unsigned long ulHeight;
    unsigned long ulNumDecodeSurfaces;
    CUvideocodec CodecType;
    CUvideochromaformat ChromaFormat;
    unsigned long ulCreationFlags;
    unsigned long bitDepthMinus8;
    unsigned long ulIntraDecodeOnly;
    unsigned long ulMaxWidth;
    unsigned long ulMaxHeight;
    unsigned long Reserved1;
    struct {
        short left, top, right, bottom;
    } display_area;
    int OutputFormat;
    int DeinterlaceMode;
    unsigned long ulTargetWidth;
    unsigned long ulTargetHeight;
    unsigned long ulNumOutputSurfaces;
    CUvideoctxlock vidLock;
} CUVIDDECODECREATEINFO;

typedef struct _CUVIDPROCPARAMS {
    int progressive_frame;
    int second_field;
    int top_field_first;
    int unpaired_field;
} CUVIDPROCPARAMS;

CUresult cuInit(unsigned int Flags);
CUresult cuCtxPushCurrent(CUcontext ctx);
CUresult cuCtxPopCurrent(CUcontext *ctx);

CUresult cuvidCtxLockCreate(CUvideoctxlock *lck, CUcontext ctx);
CUresult cuvidCtxLockDestroy(CUvideoctxlock lck);

CUresult cuvidCreateDecoder(CUvideodecoder *decoder, CUVIDDECODECREATEINFO *info);
CUresult cuvidDestroyDecoder(CUvideodecoder decoder);
CUresult cuvidDecodePicture(CUvideodecoder decoder, void *picParams);
CUresult cuvidMapVideoFrame64(CUvideodecoder decoder, int picIdx, unsigned long long *devPtr,
                               unsigned int *pitch, CUVIDPROCPARAMS *procParams);
CUresult cuvidUnmapVideoFrame64(CUvideodecoder decoder, unsigned long long devPtr);
*/
import "C"

// Result mirrors CUresult/CUVIDresult: 0 is success, anything else an error.
type Result int32

const ResultSuccess Result = 0

func (r Result) Err() error {
	if r == ResultSuccess {
		return nil
	}
	return &resultError{code: r}
}

type resultError struct{ code Result }

func (e *resultError) Error() string {
	return "cuvid: vendor call failed with code " + itoa(int(e.code))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// CreateInfo mirrors the subset of CUVIDDECODECREATEINFO the Decode
// Pipeline fills in at CreateContext time (§4.6 S3 step 5).
type CreateInfo struct {
	Width, Height             int
	TargetWidth, TargetHeight int
	NumDecodeSurfaces         int
	NumOutputSurfaces         int
	Codec                     int
	ChromaFormat              int
	OutputFormat              int
	BitDepthMinus8            int
	WeaveDeinterlace          bool
}

// FrameInfo is what MapVideoFrame returns: a device pointer and pitch into
// the vendor decoder's internal picture pool for one resolved picture.
type FrameInfo struct {
	DevicePtr uintptr
	Pitch     uint32
}

// ProcParams carries the per-picture deinterlace hints EndPicture records
// on the Surface (§4.6 S4 step 4) through to MapVideoFrame.
type ProcParams struct {
	ProgressiveFrame bool
	TopFieldFirst    bool
	SecondField      bool
}

// Decoder is the vendor decode handle abstraction internal/driver depends
// on, so its tests can substitute a fake rather than link real CUVID.
type Decoder interface {
	DecodePicture(picParams unsafe.Pointer) error
	MapVideoFrame(pictureIdx int, proc ProcParams) (FrameInfo, error)
	UnmapVideoFrame(devicePtr uintptr) error
	Destroy() error
}

// ContextLock is the per-Context codec-context lock CreateContext creates
// alongside the decoder (§4.6 S3 step 5: "a freshly created codec-context
// lock").
type ContextLock struct {
	handle C.CUvideoctxlock
}

// NewContextLock creates a vendor context lock bound to the current device
// context.
func NewContextLock() (*ContextLock, error) {
	l := &ContextLock{}
	res := Result(C.cuvidCtxLockCreate(&l.handle, nil))
	if err := res.Err(); err != nil {
		return nil, err
	}
	return l, nil
}

// Destroy releases the context lock.
func (l *ContextLock) Destroy() error {
	return Result(C.cuvidCtxLockDestroy(l.handle)).Err()
}

// decoder is the cgo-backed Decoder implementation.
type decoder struct {
	handle C.CUvideodecoder
}

// NewDecoder creates a vendor decoder per CreateInfo, matching
// cuvidCreateDecoder's role in §4.6 S3 step 5.
func NewDecoder(info CreateInfo) (Decoder, error) {
	var cInfo C.CUVIDDECODECREATEINFO
	cInfo.ulWidth = C.ulong(info.Width)
	cInfo.ulHeight = C.ulong(info.Height)
	cInfo.ulNumDecodeSurfaces = C.ulong(info.NumDecodeSurfaces)
	cInfo.CodecType = C.CUvideocodec(info.Codec)
	cInfo.ChromaFormat = C.CUvideochromaformat(info.ChromaFormat)
	cInfo.bitDepthMinus8 = C.ulong(info.BitDepthMinus8)
	cInfo.OutputFormat = C.int(info.OutputFormat)
	cInfo.ulTargetWidth = C.ulong(info.TargetWidth)
	cInfo.ulTargetHeight = C.ulong(info.TargetHeight)
	cInfo.ulNumOutputSurfaces = C.ulong(info.NumOutputSurfaces)
	if info.WeaveDeinterlace {
		cInfo.DeinterlaceMode = 0 // cudaVideoDeinterlaceMode_Weave
	}

	d := &decoder{}
	res := Result(C.cuvidCreateDecoder(&d.handle, &cInfo))
	if err := res.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *decoder) DecodePicture(picParams unsafe.Pointer) error {
	return Result(C.cuvidDecodePicture(d.handle, picParams)).Err()
}

func (d *decoder) MapVideoFrame(pictureIdx int, proc ProcParams) (FrameInfo, error) {
	var devPtr C.ulonglong
	var pitch C.uint
	cProc := C.CUVIDPROCPARAMS{
		progressive_frame: boolToInt(proc.ProgressiveFrame),
		top_field_first:   boolToInt(proc.TopFieldFirst),
		second_field:      boolToInt(proc.SecondField),
	}
	res := Result(C.cuvidMapVideoFrame64(d.handle, C.int(pictureIdx), &devPtr, &pitch, &cProc))
	if err := res.Err(); err != nil {
		return FrameInfo{}, err
	}
	return FrameInfo{DevicePtr: uintptr(devPtr), Pitch: uint32(pitch)}, nil
}

func (d *decoder) UnmapVideoFrame(devicePtr uintptr) error {
	return Result(C.cuvidUnmapVideoFrame64(d.handle, C.ulonglong(devicePtr))).Err()
}

func (d *decoder) Destroy() error {
	return Result(C.cuvidDestroyDecoder(d.handle)).Err()
}

func boolToInt(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

// PushContext and PopContext wrap every entry into vendor code per design
// note "Device-context push/pop": push on entry, pop on return, even on
// error. ctx is an opaque device-context token owned by the caller
// (internal/driver's Instance).
func PushContext(ctx unsafe.Pointer) error {
	return Result(C.cuCtxPushCurrent((C.CUcontext)(ctx))).Err()
}

func PopContext() error {
	var out C.CUcontext
	return Result(C.cuCtxPopCurrent(&out)).Err()
}

package cuvid

import "unsafe"

// FakeDecoder is an in-memory Decoder used by internal/driver's tests so
// the decode pipeline's state machine can be exercised without linking the
// real vendor library.
type FakeDecoder struct {
	DecodeErr error
	MapErr    error
	UnmapErr  error
	DestroyErr error

	DecodedPictures []unsafe.Pointer
	Mapped          []int
	Unmapped        []uintptr
	Destroyed       bool

	// NextFrame is returned by MapVideoFrame; defaults to a distinct
	// non-zero value so tests can assert it round-trips.
	NextFrame FrameInfo
}

func NewFakeDecoder() *FakeDecoder {
	return &FakeDecoder{NextFrame: FrameInfo{DevicePtr: 0x1000, Pitch: 4096}}
}

func (f *FakeDecoder) DecodePicture(picParams unsafe.Pointer) error {
	f.DecodedPictures = append(f.DecodedPictures, picParams)
	return f.DecodeErr
}

func (f *FakeDecoder) MapVideoFrame(pictureIdx int, proc ProcParams) (FrameInfo, error) {
	f.Mapped = append(f.Mapped, pictureIdx)
	if f.MapErr != nil {
		return FrameInfo{}, f.MapErr
	}
	return f.NextFrame, nil
}

func (f *FakeDecoder) UnmapVideoFrame(devicePtr uintptr) error {
	f.Unmapped = append(f.Unmapped, devicePtr)
	return f.UnmapErr
}

func (f *FakeDecoder) Destroy() error {
	f.Destroyed = true
	return f.DestroyErr
}

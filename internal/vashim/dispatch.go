package vashim

import "github.com/nvcuvid/vaapi-driver/internal/vacontract"

// Table is the driver's dispatch table: one bound method value per VA-API
// entry point. cmd/vaapi_nvdec builds one of these from a Shim during
// __vaDriverInit_1_0, but it defines no C trampolines over it, so the
// Table is not written into ctx.vtable; this package stops at the
// Go-native function-value table.
//
// Every VA-API entry point this driver's object model and §4.8's stub list
// cover has a field here -- fifty, counting both the functional
// decode-pipeline calls and the unsupported-operation stubs.
type Table struct {
	Terminate func() vacontract.Status

	CreateConfig           func(vacontract.Profile, vacontract.Entrypoint, vacontract.RTFormat) (uint32, vacontract.Status)
	DestroyConfig          func(uint32) vacontract.Status
	GetConfigAttributes    func(uint32) (vacontract.RTFormat, vacontract.Status)
	QueryConfigAttributes  func(vacontract.Profile, vacontract.Entrypoint) (vacontract.RTFormat, vacontract.Status)
	QueryConfigProfiles    func() ([]vacontract.Profile, vacontract.Status)
	QueryConfigEntrypoints func() ([]vacontract.Entrypoint, vacontract.Status)

	QueryImageFormats      func() ([]vacontract.FormatDescriptor, vacontract.Status)
	QuerySurfaceAttributes func(uint32) (any, vacontract.Status)

	CreateSurfaces  func(vacontract.SurfaceFormat, int, int, int) ([]uint32, vacontract.Status)
	DestroySurfaces func([]uint32) vacontract.Status

	CreateContext  func(uint32, int, int, []uint32) (uint32, vacontract.Status)
	DestroyContext func(uint32) vacontract.Status

	BeginPicture  func(uint32, uint32) vacontract.Status
	RenderPicture func(uint32, []uint32) vacontract.Status
	EndPicture    func(uint32) vacontract.Status

	SyncSurface         func(uint32) vacontract.Status
	ExportSurfaceHandle func(uint32, vacontract.MemoryType, vacontract.ExportFlags) (vacontract.ExportDescriptor, vacontract.Status)

	CreateBuffer  func(vacontract.BufferType, int, []byte) (uint32, vacontract.Status)
	MapBuffer     func(uint32, []byte) vacontract.Status
	DestroyBuffer func(uint32) vacontract.Status

	CreateImage  func(vacontract.SurfaceFormat, int, int) (uint32, vacontract.Status)
	DestroyImage func(uint32) vacontract.Status

	// §4.8 stubs.
	CreateSubpicture         func(vacontract.SurfaceFormat) (uint32, vacontract.Status)
	DestroySubpicture        func(uint32) vacontract.Status
	SetSubpicturePalette     func(uint32, []byte) vacontract.Status
	SetSubpictureChromakey   func(uint32, uint32, uint32) vacontract.Status
	SetSubpictureGlobalAlpha func(uint32, float32) vacontract.Status
	AssociateSubpicture      func(uint32, []uint32) vacontract.Status
	DeassociateSubpicture    func(uint32, []uint32) vacontract.Status
	QuerySubpictureFormats   func() ([]vacontract.SurfaceFormat, vacontract.Status)

	QueryDisplayAttributes func() (int, vacontract.Status)
	GetDisplayAttributes   func() vacontract.Status
	SetDisplayAttributes   func() vacontract.Status

	QuerySurfaceStatus func(uint32) vacontract.Status
	QuerySurfaceError  func(uint32) vacontract.Status

	BufferInfo          func(uint32) vacontract.Status
	AcquireBufferHandle func(uint32) vacontract.Status
	ReleaseBufferHandle func(uint32) vacontract.Status

	LockSurface   func(uint32) vacontract.Status
	UnlockSurface func(uint32) vacontract.Status

	CreateMFContext   func() (uint32, vacontract.Status)
	MFAddContext      func(uint32, uint32) vacontract.Status
	MFReleaseContext  func(uint32, uint32) vacontract.Status
	MFSubmit          func(uint32, []uint32) vacontract.Status
	CreateBuffer2     func(vacontract.BufferType, int, int) (uint32, int, vacontract.Status)
	QueryProcessingRate func() (uint32, vacontract.Status)
	DeriveImage         func(uint32) (uint32, vacontract.Status)
	PutImage            func(uint32, uint32) vacontract.Status
	PutSurface          func(uint32) vacontract.Status
}

// BuildTable binds every VA-API entry point to its Shim implementation.
// QuerySurfaceAttributes is wrapped to erase driver.SurfaceAttributes into
// `any` so this package's public surface never has to import internal/driver
// beyond what Shim already does.
func BuildTable(s *Shim) *Table {
	return &Table{
		Terminate: s.Terminate,

		CreateConfig:           s.CreateConfig,
		DestroyConfig:          s.DestroyConfig,
		GetConfigAttributes:    s.GetConfigAttributes,
		QueryConfigAttributes:  s.QueryConfigAttributes,
		QueryConfigProfiles:    s.QueryConfigProfiles,
		QueryConfigEntrypoints: s.QueryConfigEntrypoints,

		QueryImageFormats: s.QueryImageFormats,
		QuerySurfaceAttributes: func(id uint32) (any, vacontract.Status) {
			return s.QuerySurfaceAttributes(id)
		},

		CreateSurfaces:  s.CreateSurfaces,
		DestroySurfaces: s.DestroySurfaces,

		CreateContext:  s.CreateContext,
		DestroyContext: s.DestroyContext,

		BeginPicture:  s.BeginPicture,
		RenderPicture: s.RenderPicture,
		EndPicture:    s.EndPicture,

		SyncSurface:         s.SyncSurface,
		ExportSurfaceHandle: s.ExportSurfaceHandle,

		CreateBuffer:  s.CreateBuffer,
		MapBuffer:     s.MapBuffer,
		DestroyBuffer: s.DestroyBuffer,

		CreateImage:  s.CreateImage,
		DestroyImage: s.DestroyImage,

		CreateSubpicture:         s.CreateSubpicture,
		DestroySubpicture:        s.DestroySubpicture,
		SetSubpicturePalette:     s.SetSubpicturePalette,
		SetSubpictureChromakey:   s.SetSubpictureChromakey,
		SetSubpictureGlobalAlpha: s.SetSubpictureGlobalAlpha,
		AssociateSubpicture:      s.AssociateSubpicture,
		DeassociateSubpicture:    s.DeassociateSubpicture,
		QuerySubpictureFormats:   s.QuerySubpictureFormats,

		QueryDisplayAttributes: s.QueryDisplayAttributes,
		GetDisplayAttributes:   s.GetDisplayAttributes,
		SetDisplayAttributes:   s.SetDisplayAttributes,

		QuerySurfaceStatus: s.QuerySurfaceStatus,
		QuerySurfaceError:  s.QuerySurfaceError,

		BufferInfo:          s.BufferInfo,
		AcquireBufferHandle: s.AcquireBufferHandle,
		ReleaseBufferHandle: s.ReleaseBufferHandle,

		LockSurface:   s.LockSurface,
		UnlockSurface: s.UnlockSurface,

		CreateMFContext:     s.CreateMFContext,
		MFAddContext:        s.MFAddContext,
		MFReleaseContext:    s.MFReleaseContext,
		MFSubmit:            s.MFSubmit,
		CreateBuffer2:       s.CreateBuffer2,
		QueryProcessingRate: s.QueryProcessingRate,
		DeriveImage:         s.DeriveImage,
		PutImage:            s.PutImage,
		PutSurface:          s.PutSurface,
	}
}

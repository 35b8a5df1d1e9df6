package vashim

import (
	"github.com/nvcuvid/vaapi-driver/internal/driver"
	"github.com/nvcuvid/vaapi-driver/internal/nvdconfig"
	"github.com/nvcuvid/vaapi-driver/internal/vacontract"
)

// Shim wraps one driver.Instance and exposes the VA-API entry-point shape:
// every call takes plain ids/values and returns a VAStatus, the contract
// cmd/vaapi_nvdec's cgo entry point needs to fill in the client's out
// parameters and return a VAStatus rather than a Go error.
type Shim struct {
	inst *driver.Instance
}

// NewShim constructs the Instance and wraps it, returning the failure's
// VAStatus (never a panic) if construction itself fails -- HW_BUSY at the
// instance cap, ALLOCATION_FAILED when the export backend cannot start. The
// shim's surface is "always returns a VAStatus", even for initialization.
func NewShim(cfg *nvdconfig.Config, override *nvdconfig.CapabilityOverride) (*Shim, vacontract.Status) {
	inst, err := driver.New(cfg, override)
	if err != nil {
		return nil, StatusFromError(err)
	}
	return &Shim{inst: inst}, vacontract.StatusSuccess
}

// Terminate releases the wrapped Instance.
func (s *Shim) Terminate() vacontract.Status {
	return StatusFromError(s.inst.Terminate())
}

// CreateConfig implements vaCreateConfig.
func (s *Shim) CreateConfig(profile vacontract.Profile, entrypoint vacontract.Entrypoint, rtFormat vacontract.RTFormat) (uint32, vacontract.Status) {
	cfg, err := s.inst.CreateConfig(profile, entrypoint, rtFormat)
	if err != nil {
		return 0, StatusFromError(err)
	}
	return cfg.ID, vacontract.StatusSuccess
}

// DestroyConfig implements vaDestroyConfig.
func (s *Shim) DestroyConfig(id uint32) vacontract.Status {
	return StatusFromError(s.inst.DestroyConfig(id))
}

// GetConfigAttributes implements vaGetConfigAttributes.
func (s *Shim) GetConfigAttributes(id uint32) (vacontract.RTFormat, vacontract.Status) {
	rt, err := s.inst.GetConfigAttributes(id)
	return rt, StatusFromError(err)
}

// QueryConfigAttributes implements vaQueryConfigAttributes (the
// pre-creation, profile+entrypoint-only form).
func (s *Shim) QueryConfigAttributes(profile vacontract.Profile, entrypoint vacontract.Entrypoint) (vacontract.RTFormat, vacontract.Status) {
	rt, err := s.inst.QueryConfigAttributes(profile, entrypoint)
	return rt, StatusFromError(err)
}

// QueryConfigProfiles implements vaQueryConfigProfiles. Always SUCCESS: an
// empty slice is itself a meaningful, complete answer.
func (s *Shim) QueryConfigProfiles() ([]vacontract.Profile, vacontract.Status) {
	return s.inst.QueryConfigProfiles(), vacontract.StatusSuccess
}

// QueryConfigEntrypoints implements vaQueryConfigEntrypoints.
func (s *Shim) QueryConfigEntrypoints() ([]vacontract.Entrypoint, vacontract.Status) {
	return s.inst.QueryConfigEntrypoints(), vacontract.StatusSuccess
}

// QueryImageFormats implements vaQueryImageFormats.
func (s *Shim) QueryImageFormats() ([]vacontract.FormatDescriptor, vacontract.Status) {
	return s.inst.QueryImageFormats(), vacontract.StatusSuccess
}

// QuerySurfaceAttributes implements vaQuerySurfaceAttributes.
func (s *Shim) QuerySurfaceAttributes(configID uint32) (driver.SurfaceAttributes, vacontract.Status) {
	attrs, err := s.inst.QuerySurfaceAttributes(configID)
	return attrs, StatusFromError(err)
}

// CreateSurfaces implements vaCreateSurfaces2.
func (s *Shim) CreateSurfaces(format vacontract.SurfaceFormat, w, h, n int) ([]uint32, vacontract.Status) {
	surfaces, err := s.inst.CreateSurfaces2(format, w, h, n)
	if err != nil {
		return nil, StatusFromError(err)
	}
	ids := make([]uint32, len(surfaces))
	for i, surf := range surfaces {
		ids[i] = surf.ID
	}
	return ids, vacontract.StatusSuccess
}

// DestroySurfaces implements vaDestroySurfaces.
func (s *Shim) DestroySurfaces(ids []uint32) vacontract.Status {
	return StatusFromError(s.inst.DestroySurfaces(ids))
}

// CreateContext implements vaCreateContext. renderTargetIDs are resolved
// to *driver.Surface internally; an id that does not name a live Surface
// fails the whole call with INVALID_SURFACE rather than silently dropping
// it from the render-target list.
func (s *Shim) CreateContext(configID uint32, w, h int, renderTargetIDs []uint32) (uint32, vacontract.Status) {
	cfg, err := s.inst.LookupConfigForShim(configID)
	if err != nil {
		return 0, StatusFromError(err)
	}
	targets, err := s.inst.LookupSurfacesForShim(renderTargetIDs)
	if err != nil {
		return 0, StatusFromError(err)
	}
	ctx, err := s.inst.CreateContext(cfg, w, h, targets)
	if err != nil {
		return 0, StatusFromError(err)
	}
	return ctx.ID, vacontract.StatusSuccess
}

// DestroyContext implements vaDestroyContext.
func (s *Shim) DestroyContext(id uint32) vacontract.Status {
	return StatusFromError(s.inst.DestroyContext(id))
}

// BeginPicture implements vaBeginPicture.
func (s *Shim) BeginPicture(contextID, renderTargetID uint32) vacontract.Status {
	return StatusFromError(s.inst.BeginPicture(contextID, renderTargetID))
}

// RenderPicture implements vaRenderPicture.
func (s *Shim) RenderPicture(contextID uint32, bufferIDs []uint32) vacontract.Status {
	return StatusFromError(s.inst.RenderPicture(contextID, bufferIDs))
}

// EndPicture implements vaEndPicture.
func (s *Shim) EndPicture(contextID uint32) vacontract.Status {
	return StatusFromError(s.inst.EndPicture(contextID))
}

// SyncSurface implements vaSyncSurface.
func (s *Shim) SyncSurface(surfaceID uint32) vacontract.Status {
	return StatusFromError(s.inst.SyncSurface(surfaceID))
}

// ExportSurfaceHandle implements vaExportSurfaceHandle.
func (s *Shim) ExportSurfaceHandle(surfaceID uint32, memType vacontract.MemoryType, flags vacontract.ExportFlags) (vacontract.ExportDescriptor, vacontract.Status) {
	desc, err := s.inst.ExportSurfaceHandle(surfaceID, memType, flags)
	return desc, StatusFromError(err)
}

// CreateBuffer implements vaCreateBuffer.
func (s *Shim) CreateBuffer(bufType vacontract.BufferType, elementCount int, data []byte) (uint32, vacontract.Status) {
	buf, err := s.inst.CreateBuffer(bufType, elementCount, data)
	if err != nil {
		return 0, StatusFromError(err)
	}
	return buf.ID, vacontract.StatusSuccess
}

// MapBuffer implements vaMapBuffer's write-back half.
func (s *Shim) MapBuffer(id uint32, data []byte) vacontract.Status {
	return StatusFromError(s.inst.MapBuffer(id, data))
}

// DestroyBuffer implements vaDestroyBuffer.
func (s *Shim) DestroyBuffer(id uint32) vacontract.Status {
	return StatusFromError(s.inst.DestroyBuffer(id))
}

// CreateImage implements vaCreateImage.
func (s *Shim) CreateImage(format vacontract.SurfaceFormat, w, h int) (uint32, vacontract.Status) {
	img, err := s.inst.CreateImage(format, w, h)
	if err != nil {
		return 0, StatusFromError(err)
	}
	return img.ID, vacontract.StatusSuccess
}

// DestroyImage implements vaDestroyImage.
func (s *Shim) DestroyImage(id uint32) vacontract.Status {
	return StatusFromError(s.inst.DestroyImage(id))
}

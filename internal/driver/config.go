package driver

import (
	"github.com/nvcuvid/vaapi-driver/internal/caps"
	"github.com/nvcuvid/vaapi-driver/internal/codec"
	"github.com/nvcuvid/vaapi-driver/internal/registry"
	"github.com/nvcuvid/vaapi-driver/internal/vacontract"
)

// Config is the negotiated codec configuration S1 (CreateConfig) produces:
// immutable once created, consumed by CreateContext to pick a codec entry
// and decide surface/format defaults.
type Config struct {
	ID         uint32
	Profile    vacontract.Profile
	Entrypoint vacontract.Entrypoint
	Chroma     vacontract.ChromaFormat
	Format     vacontract.SurfaceFormat
	BitDepth   int
}

// CreateConfig implements §4.6 S1. rtFormat is the first RT-format
// attribute value the caller (internal/vashim, parsing the client's
// VAConfigAttrib array) found, or 0 if none was given.
func (inst *Instance) CreateConfig(profile vacontract.Profile, entrypoint vacontract.Entrypoint, rtFormat vacontract.RTFormat) (*Config, error) {
	if _, ok := codec.Select(profile); !ok {
		return nil, newError(StatusUnsupportedProfile, "driver: no codec translates profile %d", profile)
	}
	if entrypoint != vacontract.EntrypointVLD {
		return nil, newError(StatusUnsupportedEntrypoint, "driver: entrypoint %d is not VLD", entrypoint)
	}

	cfg := &Config{
		Profile:    profile,
		Entrypoint: entrypoint,
		Chroma:     vacontract.Chroma420,
		Format:     vacontract.SurfaceFormatNV12,
		BitDepth:   8,
	}
	applyProfileOverride(cfg, rtFormat, inst.probe)

	obj := inst.reg.Allocate(registry.TypeConfig, cfg)
	cfg.ID = obj.ID
	return cfg, nil
}

// DestroyConfig frees a previously created Config.
func (inst *Instance) DestroyConfig(id uint32) error {
	if _, err := inst.reg.LookupTyped(id, registry.TypeConfig); err != nil {
		return newError(StatusInvalidConfig, "%v", err)
	}
	inst.reg.Delete(id)
	return nil
}

// LookupConfigForShim resolves a registry id to a *Config for
// internal/vashim's CreateContext translation, which needs the Config
// object itself (not just its id) to call driver.CreateContext.
func (inst *Instance) LookupConfigForShim(id uint32) (*Config, error) {
	return inst.lookupConfig(id)
}

// lookupConfig resolves a registry id to a *Config, failing with
// INVALID_CONFIG on a missing or wrong-typed entry.
func (inst *Instance) lookupConfig(id uint32) (*Config, error) {
	obj, err := inst.reg.LookupTyped(id, registry.TypeConfig)
	if err != nil {
		return nil, newError(StatusInvalidConfig, "%v", err)
	}
	return obj.Inner.(*Config), nil
}

// applyProfileOverride implements §4.6 S1 step 4's override table: the
// combination of profile, the caller's first RT-format attribute, and the
// Instance's caps flags can widen the Config's defaults beyond NV12/8-bit/
// 4:2:0. Unsatisfiable combinations (requesting a bit depth or chroma the
// caps flags disable) are left at the defaults; CreateContext and the
// capability-gated queries are what ultimately reject them downstream.
func applyProfileOverride(cfg *Config, rt vacontract.RTFormat, probe *caps.Probe) {
	if probe.Supports16BitSurface {
		switch {
		case (cfg.Profile == vacontract.ProfileHEVCMain10 || cfg.Profile == vacontract.ProfileVP9Profile2 || cfg.Profile == vacontract.ProfileAV1Profile0) && rt == vacontract.RTFormatYUV420_10:
			cfg.Format, cfg.BitDepth = vacontract.SurfaceFormatP016, 10
		case (cfg.Profile == vacontract.ProfileHEVCMain12 || cfg.Profile == vacontract.ProfileVP9Profile2) && rt == vacontract.RTFormatYUV420_12:
			cfg.Format, cfg.BitDepth = vacontract.SurfaceFormatP016, 12
		}
	}

	switch cfg.Profile {
	case vacontract.ProfileHEVCMain444, vacontract.ProfileVP9Profile1, vacontract.ProfileAV1Profile1:
		if rt == vacontract.RTFormatYUV444 && probe.Supports444Surface {
			cfg.Format, cfg.Chroma = vacontract.SurfaceFormat444P, vacontract.Chroma444
		}
	case vacontract.ProfileHEVCMain444_10, vacontract.ProfileVP9Profile3:
		if rt == vacontract.RTFormatYUV444_10 && probe.Supports444Surface && probe.Supports16BitSurface {
			cfg.Format, cfg.Chroma, cfg.BitDepth = vacontract.SurfaceFormatQ416, vacontract.Chroma444, 10
		}
	case vacontract.ProfileHEVCMain444_12:
		if rt == vacontract.RTFormatYUV444_12 && probe.Supports444Surface && probe.Supports16BitSurface {
			cfg.Format, cfg.Chroma, cfg.BitDepth = vacontract.SurfaceFormatQ416, vacontract.Chroma444, 12
		}
	}
}

// rtFormatAttributeFor computes the advertised RT-format bitmask for a
// profile, ANDing away bits the caps flags disable. GetConfigAttributes and
// QueryConfigAttributes both mirror this table (§4.6 S1's closing
// sentence), the open question in spec.md §9 about whether the original's
// fallthrough-without-break is intentional resolved here as "yes, cumulate
// every compatible bit a profile supports rather than picking one".
func rtFormatAttributeFor(profile vacontract.Profile, probe *caps.Probe) vacontract.RTFormat {
	var bits vacontract.RTFormat
	switch profile {
	case vacontract.ProfileHEVCMain, vacontract.ProfileVP9Profile0, vacontract.ProfileAV1Profile0:
		bits |= vacontract.RTFormatYUV420
	case vacontract.ProfileHEVCMain10, vacontract.ProfileVP9Profile2:
		bits |= vacontract.RTFormatYUV420
		if probe.Supports16BitSurface {
			bits |= vacontract.RTFormatYUV420_10 | vacontract.RTFormatYUV420_12
		}
	case vacontract.ProfileHEVCMain12:
		bits |= vacontract.RTFormatYUV420
		if probe.Supports16BitSurface {
			bits |= vacontract.RTFormatYUV420_12
		}
	case vacontract.ProfileHEVCMain444, vacontract.ProfileVP9Profile1, vacontract.ProfileAV1Profile1:
		bits |= vacontract.RTFormatYUV420
		if probe.Supports444Surface {
			bits |= vacontract.RTFormatYUV444
		}
	case vacontract.ProfileHEVCMain444_10, vacontract.ProfileVP9Profile3:
		bits |= vacontract.RTFormatYUV420
		if probe.Supports444Surface && probe.Supports16BitSurface {
			bits |= vacontract.RTFormatYUV444_10 | vacontract.RTFormatYUV444_12
		}
	case vacontract.ProfileHEVCMain444_12:
		bits |= vacontract.RTFormatYUV420
		if probe.Supports444Surface && probe.Supports16BitSurface {
			bits |= vacontract.RTFormatYUV444_12
		}
	default:
		bits = vacontract.RTFormatYUV420
	}
	return bits
}

// GetConfigAttributes returns the RT-format bitmask this Config's profile
// advertises, gated by the Instance's caps flags.
func (inst *Instance) GetConfigAttributes(id uint32) (vacontract.RTFormat, error) {
	cfg, err := inst.lookupConfig(id)
	if err != nil {
		return 0, err
	}
	return rtFormatAttributeFor(cfg.Profile, inst.probe), nil
}

// QueryConfigAttributes is GetConfigAttributes' pre-creation counterpart:
// it answers the same question for a (profile, entrypoint) pair that has
// not been turned into a Config yet.
func (inst *Instance) QueryConfigAttributes(profile vacontract.Profile, entrypoint vacontract.Entrypoint) (vacontract.RTFormat, error) {
	if entrypoint != vacontract.EntrypointVLD {
		return 0, newError(StatusUnsupportedEntrypoint, "driver: entrypoint %d is not VLD", entrypoint)
	}
	return rtFormatAttributeFor(profile, inst.probe), nil
}

package driver

import (
	"github.com/nvcuvid/vaapi-driver/internal/caps"
	"github.com/nvcuvid/vaapi-driver/internal/codec"
	"github.com/nvcuvid/vaapi-driver/internal/vacontract"
)

// profileDims gives the (bitDepth, chroma) pair a profile's capability
// lookup is keyed on: the bit depth and chroma format that set the profile
// apart from the 8-bit 4:2:0 base profiles. QueryConfigProfiles uses it to
// hide a profile whose pair needs a caps flag the Instance lacks;
// CreateConfig does not consult it and accepts any profile a codec
// translates.
func profileDims(p vacontract.Profile) (bitDepth int, chroma vacontract.ChromaFormat) {
	switch p {
	case vacontract.ProfileHEVCMain10, vacontract.ProfileVP9Profile2:
		return 10, vacontract.Chroma420
	case vacontract.ProfileHEVCMain12:
		return 12, vacontract.Chroma420
	case vacontract.ProfileHEVCMain444, vacontract.ProfileVP9Profile1, vacontract.ProfileAV1Profile1:
		return 8, vacontract.Chroma444
	case vacontract.ProfileHEVCMain444_10, vacontract.ProfileVP9Profile3:
		return 10, vacontract.Chroma444
	case vacontract.ProfileHEVCMain444_12:
		return 12, vacontract.Chroma444
	default:
		return 8, vacontract.Chroma420
	}
}

// QueryConfigProfiles implements §4.7: intersect registered codec profiles
// with device-supported (codec, bitDepth, chroma) triples, gated by caps
// flags, then drop anything the codec entry itself cannot translate to a
// vendor codec id.
func (inst *Instance) QueryConfigProfiles() []vacontract.Profile {
	var candidates []caps.ProfileCapability
	descByProfile := make(map[vacontract.Profile]*codec.Descriptor)

	for _, d := range codec.All() {
		for _, profile := range d.SupportedProfiles {
			bitDepth, chroma := profileDims(profile)
			candidates = append(candidates, caps.ProfileCapability{
				Profile: profile, Codec: d.Name, BitDepth: bitDepth, Chroma: chroma,
			})
			descByProfile[profile] = d
		}
	}

	filtered := inst.probe.FilterProfiles(candidates)
	out := make([]vacontract.Profile, 0, len(filtered))
	for _, p := range filtered {
		if d := descByProfile[p]; d != nil && d.ComputeCudaCodec(p) != codec.CudaCodecNone {
			out = append(out, p)
		}
	}
	return out
}

// QueryConfigEntrypoints always returns exactly VLD: this driver's only
// decode entrypoint.
func (inst *Instance) QueryConfigEntrypoints() []vacontract.Entrypoint {
	return []vacontract.Entrypoint{vacontract.EntrypointVLD}
}

// QueryImageFormats filters the static pixel-format table by the
// Instance's caps flags.
func (inst *Instance) QueryImageFormats() []vacontract.FormatDescriptor {
	out := make([]vacontract.FormatDescriptor, 0, len(vacontract.FormatTable))
	for _, f := range vacontract.FormatTable {
		if f.Is16Bit && !inst.probe.Supports16BitSurface {
			continue
		}
		if f.Is444 && !inst.probe.Supports444Surface {
			continue
		}
		out = append(out, f)
	}
	return out
}

// SurfaceAttributes is QuerySurfaceAttributes' result: the probe's picture
// size bounds plus the pixel formats valid for the Config's chroma.
type SurfaceAttributes struct {
	MinWidth, MinHeight int
	MaxWidth, MaxHeight int
	Formats             []vacontract.SurfaceFormat
}

const (
	minSurfaceWidth  = 16
	minSurfaceHeight = 16
)

// QuerySurfaceAttributes implements §4.7's min/max width/height plus
// pixel-format attribute list, keyed by the Config's chroma and the
// Instance's caps flags.
func (inst *Instance) QuerySurfaceAttributes(configID uint32) (SurfaceAttributes, error) {
	cfg, err := inst.lookupConfig(configID)
	if err != nil {
		return SurfaceAttributes{}, err
	}

	desc, ok := codec.Select(cfg.Profile)
	codecName := ""
	if ok {
		codecName = desc.Name
	}
	_, maxW, maxH := inst.probe.Supports(codecName, cfg.BitDepth, cfg.Chroma)
	if maxW == 0 {
		maxW, maxH = 8192, 8192
	}

	attrs := SurfaceAttributes{MinWidth: minSurfaceWidth, MinHeight: minSurfaceHeight, MaxWidth: maxW, MaxHeight: maxH}
	for _, f := range vacontract.FormatTable {
		if f.Chroma != cfg.Chroma {
			continue
		}
		if f.Is16Bit && !inst.probe.Supports16BitSurface {
			continue
		}
		if f.Is444 && !inst.probe.Supports444Surface {
			continue
		}
		attrs.Formats = append(attrs.Formats, f.Format)
	}
	return attrs, nil
}

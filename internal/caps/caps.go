// Package caps implements the Capability Probe: given (codec, bitDepth,
// chromaFormat) it reports whether the device supports it and, optionally,
// a maximum picture size. It also filters the advertised profile list by
// the Driver Instance's supports16BitSurface/supports444Surface flags.
//
// Grounded on the teacher's AdaptiveBitrate -- a lookup/threshold table
// consulted to decide what's currently permitted -- generalized from a
// dynamically-adjusted bitrate ladder into a static support table that an
// operator can override with a YAML file (internal/nvdconfig's
// CapabilityOverride) the same way AdaptiveConfig's bounds override the
// teacher's built-in defaults.
package caps

import (
	"github.com/nvcuvid/vaapi-driver/internal/nvdconfig"
	"github.com/nvcuvid/vaapi-driver/internal/vacontract"
)

// Entry describes one supported (codec, bitDepth, chroma) triple.
type Entry struct {
	Codec     string
	BitDepth  int
	Chroma    vacontract.ChromaFormat
	MaxWidth  int
	MaxHeight int
}

const (
	defaultMaxWidth  = 8192
	defaultMaxHeight = 8192
)

// defaultTable is the built-in device capability set: every codec this
// driver's dispatch table can translate at 8-bit 4:2:0, plus the 10/12-bit
// and 4:4:4 triples HEVC, VP9 and AV1 support. Those wider entries are
// still gated by the caps flags at query time; the table itself carries
// no flag.
var defaultTable = []Entry{
	{Codec: "mpeg2", BitDepth: 8, Chroma: vacontract.Chroma420, MaxWidth: defaultMaxWidth, MaxHeight: defaultMaxHeight},
	{Codec: "mpeg4", BitDepth: 8, Chroma: vacontract.Chroma420, MaxWidth: defaultMaxWidth, MaxHeight: defaultMaxHeight},
	{Codec: "vc1", BitDepth: 8, Chroma: vacontract.Chroma420, MaxWidth: defaultMaxWidth, MaxHeight: defaultMaxHeight},
	{Codec: "h264", BitDepth: 8, Chroma: vacontract.Chroma420, MaxWidth: defaultMaxWidth, MaxHeight: defaultMaxHeight},
	{Codec: "jpeg", BitDepth: 8, Chroma: vacontract.Chroma420, MaxWidth: defaultMaxWidth, MaxHeight: defaultMaxHeight},
	{Codec: "hevc", BitDepth: 8, Chroma: vacontract.Chroma420, MaxWidth: 8192, MaxHeight: 8192},
	{Codec: "hevc", BitDepth: 10, Chroma: vacontract.Chroma420, MaxWidth: 8192, MaxHeight: 8192},
	{Codec: "hevc", BitDepth: 12, Chroma: vacontract.Chroma420, MaxWidth: 8192, MaxHeight: 8192},
	{Codec: "hevc", BitDepth: 8, Chroma: vacontract.Chroma444, MaxWidth: 8192, MaxHeight: 8192},
	{Codec: "hevc", BitDepth: 10, Chroma: vacontract.Chroma444, MaxWidth: 8192, MaxHeight: 8192},
	{Codec: "hevc", BitDepth: 12, Chroma: vacontract.Chroma444, MaxWidth: 8192, MaxHeight: 8192},
	{Codec: "vp8", BitDepth: 8, Chroma: vacontract.Chroma420, MaxWidth: 4096, MaxHeight: 4096},
	{Codec: "vp9", BitDepth: 8, Chroma: vacontract.Chroma420, MaxWidth: 8192, MaxHeight: 8192},
	{Codec: "vp9", BitDepth: 10, Chroma: vacontract.Chroma420, MaxWidth: 8192, MaxHeight: 8192},
	{Codec: "vp9", BitDepth: 12, Chroma: vacontract.Chroma420, MaxWidth: 8192, MaxHeight: 8192},
	{Codec: "vp9", BitDepth: 8, Chroma: vacontract.Chroma444, MaxWidth: 8192, MaxHeight: 8192},
	{Codec: "vp9", BitDepth: 10, Chroma: vacontract.Chroma444, MaxWidth: 8192, MaxHeight: 8192},
	{Codec: "av1", BitDepth: 8, Chroma: vacontract.Chroma420, MaxWidth: 8192, MaxHeight: 8192},
	{Codec: "av1", BitDepth: 10, Chroma: vacontract.Chroma420, MaxWidth: 8192, MaxHeight: 8192},
	{Codec: "av1", BitDepth: 8, Chroma: vacontract.Chroma444, MaxWidth: 8192, MaxHeight: 8192},
}

// Probe answers capability questions for one Driver Instance. Its caps
// flags gate which higher-bit-depth/444 entries of the table are visible.
type Probe struct {
	Supports16BitSurface bool
	Supports444Surface   bool
	table                []Entry
}

// New builds a Probe from the built-in table, applying an optional
// override loaded from NVD_CAPS_FILE (nil means "use built-in defaults").
func New(override *nvdconfig.CapabilityOverride) *Probe {
	p := &Probe{table: defaultTable}
	if override == nil {
		return p
	}

	p.Supports16BitSurface = override.Supports16BitSurface
	p.Supports444Surface = override.Supports444Surface
	if len(override.Entries) > 0 {
		entries := make([]Entry, 0, len(override.Entries))
		for _, e := range override.Entries {
			entries = append(entries, Entry{
				Codec:     e.Codec,
				BitDepth:  e.BitDepth,
				Chroma:    chromaFromString(e.Chroma),
				MaxWidth:  nonZero(e.MaxWidth, defaultMaxWidth),
				MaxHeight: nonZero(e.MaxHeight, defaultMaxHeight),
			})
		}
		p.table = entries
	}
	return p
}

func nonZero(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func chromaFromString(s string) vacontract.ChromaFormat {
	switch s {
	case "422":
		return vacontract.Chroma422
	case "444":
		return vacontract.Chroma444
	default:
		return vacontract.Chroma420
	}
}

// Supports reports whether the device supports (codec, bitDepth, chroma),
// gating bit depths above 8 on Supports16BitSurface and 4:4:4 chroma on
// Supports444Surface regardless of what the table itself lists, and the
// maximum picture size for that triple if supported.
func (p *Probe) Supports(codec string, bitDepth int, chroma vacontract.ChromaFormat) (ok bool, maxWidth, maxHeight int) {
	if bitDepth > 8 && !p.Supports16BitSurface {
		return false, 0, 0
	}
	if chroma == vacontract.Chroma444 && !p.Supports444Surface {
		return false, 0, 0
	}
	for _, e := range p.table {
		if e.Codec == codec && e.BitDepth == bitDepth && e.Chroma == chroma {
			return true, e.MaxWidth, e.MaxHeight
		}
	}
	return false, 0, 0
}

// FilterProfiles returns the subset of candidates this Probe's device
// supports, given each candidate's (codec, bitDepth, chroma) mapping.
// Mirrors §4.7's QueryConfigProfiles rule: base 8-bit 4:2:0 profiles pass
// automatically, higher-bit-depth and 4:4:4 extensions are gated further.
func (p *Probe) FilterProfiles(candidates []ProfileCapability) []vacontract.Profile {
	out := make([]vacontract.Profile, 0, len(candidates))
	for _, c := range candidates {
		if ok, _, _ := p.Supports(c.Codec, c.BitDepth, c.Chroma); ok {
			out = append(out, c.Profile)
		}
	}
	return out
}

// ProfileCapability pairs a VA profile with the (codec, bitDepth, chroma)
// triple the capability table is keyed on.
type ProfileCapability struct {
	Profile  vacontract.Profile
	Codec    string
	BitDepth int
	Chroma   vacontract.ChromaFormat
}

package caps

import (
	"testing"

	"github.com/nvcuvid/vaapi-driver/internal/nvdconfig"
	"github.com/nvcuvid/vaapi-driver/internal/vacontract"
)

func TestDefaultTableSupports8Bit420ForAllCodecs(t *testing.T) {
	p := New(nil)
	for _, codec := range []string{"mpeg2", "mpeg4", "vc1", "h264", "jpeg", "hevc", "vp8", "vp9", "av1"} {
		if ok, _, _ := p.Supports(codec, 8, vacontract.Chroma420); !ok {
			t.Fatalf("expected %s 8-bit 4:2:0 to be supported", codec)
		}
	}
}

func TestHigherBitDepthGatedBySupports16BitSurface(t *testing.T) {
	p := New(nil)
	if ok, _, _ := p.Supports("hevc", 10, vacontract.Chroma420); ok {
		t.Fatal("10-bit HEVC should be rejected when Supports16BitSurface is false")
	}

	p.Supports16BitSurface = true
	if ok, _, _ := p.Supports("hevc", 10, vacontract.Chroma420); !ok {
		t.Fatal("10-bit HEVC should be accepted once Supports16BitSurface is true")
	}
}

func TestChroma444GatedBySupports444Surface(t *testing.T) {
	p := New(nil)
	if ok, _, _ := p.Supports("hevc", 8, vacontract.Chroma444); ok {
		t.Fatal("4:4:4 HEVC should be rejected when Supports444Surface is false")
	}

	p.Supports444Surface = true
	if ok, _, _ := p.Supports("hevc", 8, vacontract.Chroma444); !ok {
		t.Fatal("4:4:4 HEVC should be accepted once Supports444Surface is true")
	}
}

func TestUnknownCodecUnsupported(t *testing.T) {
	p := New(nil)
	if ok, _, _ := p.Supports("theora", 8, vacontract.Chroma420); ok {
		t.Fatal("unregistered codec must report unsupported")
	}
}

func TestFilterProfilesScenarioFromSpec(t *testing.T) {
	candidates := []ProfileCapability{
		{Profile: vacontract.ProfileHEVCMain, Codec: "hevc", BitDepth: 8, Chroma: vacontract.Chroma420},
		{Profile: vacontract.ProfileHEVCMain10, Codec: "hevc", BitDepth: 10, Chroma: vacontract.Chroma420},
		{Profile: vacontract.ProfileHEVCMain12, Codec: "hevc", BitDepth: 12, Chroma: vacontract.Chroma420},
		{Profile: vacontract.ProfileHEVCMain444, Codec: "hevc", BitDepth: 8, Chroma: vacontract.Chroma444},
		{Profile: vacontract.ProfileVP9Profile1, Codec: "vp9", BitDepth: 8, Chroma: vacontract.Chroma444},
		{Profile: vacontract.ProfileVP9Profile2, Codec: "vp9", BitDepth: 10, Chroma: vacontract.Chroma420},
		{Profile: vacontract.ProfileAV1Profile1, Codec: "av1", BitDepth: 8, Chroma: vacontract.Chroma444},
	}

	p := New(nil)
	got := p.FilterProfiles(candidates)
	if len(got) != 1 || got[0] != vacontract.ProfileHEVCMain {
		t.Fatalf("with both caps flags false, expected only HEVCMain, got %v", got)
	}

	p.Supports16BitSurface = true
	p.Supports444Surface = true
	got = p.FilterProfiles(candidates)
	if len(got) != len(candidates) {
		t.Fatalf("with both caps flags true, expected all %d profiles, got %d: %v", len(candidates), len(got), got)
	}
}

func TestOverrideReplacesBuiltinTable(t *testing.T) {
	override := &nvdconfig.CapabilityOverride{
		Supports16BitSurface: true,
		Entries: []nvdconfig.CapabilityEntry{
			{Codec: "h264", BitDepth: 8, Chroma: "420", MaxWidth: 1920, MaxHeight: 1080},
		},
	}
	p := New(override)

	if ok, w, h := p.Supports("h264", 8, vacontract.Chroma420); !ok || w != 1920 || h != 1080 {
		t.Fatalf("override entry not applied: ok=%v w=%d h=%d", ok, w, h)
	}
	if ok, _, _ := p.Supports("hevc", 8, vacontract.Chroma420); ok {
		t.Fatal("override should replace the built-in table, not extend it")
	}
}

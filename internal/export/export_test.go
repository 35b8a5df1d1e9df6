package export

import (
	"testing"

	"github.com/nvcuvid/vaapi-driver/internal/nvdconfig"
	"github.com/nvcuvid/vaapi-driver/internal/vacontract"
)

func TestSelectDirectAndEGL(t *testing.T) {
	if _, err := Select(nvdconfig.BackendDirect); err != nil {
		t.Fatalf("Select(direct): %v", err)
	}
	if _, err := Select(nvdconfig.BackendEGL); err != nil {
		t.Fatalf("Select(egl): %v", err)
	}
	if _, err := Select(""); err != nil {
		t.Fatalf("Select(\"\") should default to direct: %v", err)
	}
	if _, err := Select("bogus"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func testBothBackends(t *testing.T, run func(t *testing.T, b Backend)) {
	t.Helper()
	for _, name := range []nvdconfig.Backend{nvdconfig.BackendDirect, nvdconfig.BackendEGL} {
		name := name
		t.Run(string(name), func(t *testing.T) {
			b, err := Select(name)
			if err != nil {
				t.Fatalf("Select(%s): %v", name, err)
			}
			if err := b.InitExporter(); err != nil {
				t.Fatalf("InitExporter: %v", err)
			}
			run(t, b)
		})
	}
}

func TestRealiseSurfaceIsIdempotent(t *testing.T) {
	testBothBackends(t, func(t *testing.T, b Backend) {
		var img *Handle
		desc := SurfaceDescriptor{Width: 1920, Height: 1080, Format: vacontract.SurfaceFormatNV12}

		if err := b.RealiseSurface(&img, desc); err != nil {
			t.Fatalf("first RealiseSurface: %v", err)
		}
		first := img
		if err := b.RealiseSurface(&img, desc); err != nil {
			t.Fatalf("second RealiseSurface: %v", err)
		}
		if img != first {
			t.Fatal("RealiseSurface should be a no-op when already realised")
		}
	})
}

func TestFillExportDescriptorRequiresDRMPrime2AndSeparateLayers(t *testing.T) {
	testBothBackends(t, func(t *testing.T, b Backend) {
		var img *Handle
		desc := SurfaceDescriptor{Width: 1920, Height: 1080, Format: vacontract.SurfaceFormatNV12}
		if err := b.RealiseSurface(&img, desc); err != nil {
			t.Fatalf("RealiseSurface: %v", err)
		}

		if _, err := b.FillExportDescriptor(img, vacontract.MemoryTypeDRMPrime, vacontract.ExportFlagSeparateLayers); !IsUnsupportedMemoryType(err) {
			t.Fatalf("expected unsupported-memory-type error, got %v", err)
		}
		if _, err := b.FillExportDescriptor(img, vacontract.MemoryTypeDRMPrime2, vacontract.ExportFlagComposedLayers); !IsInvalidSurface(err) {
			t.Fatalf("expected invalid-surface error for missing SEPARATE_LAYERS, got %v", err)
		}

		out, err := b.FillExportDescriptor(img, vacontract.MemoryTypeDRMPrime2, vacontract.ExportFlagSeparateLayers)
		if err != nil {
			t.Fatalf("FillExportDescriptor with valid flags: %v", err)
		}
		if out.NumLayers != 2 { // NV12 has 2 planes
			t.Fatalf("NumLayers = %d, want 2", out.NumLayers)
		}
	})
}

func TestDetachBackingImageAllowsRerealise(t *testing.T) {
	testBothBackends(t, func(t *testing.T, b Backend) {
		var img *Handle
		desc := SurfaceDescriptor{Width: 640, Height: 480, Format: vacontract.SurfaceFormatNV12}
		if err := b.RealiseSurface(&img, desc); err != nil {
			t.Fatalf("RealiseSurface: %v", err)
		}

		if err := b.DetachBackingImage(&img); err != nil {
			t.Fatalf("DetachBackingImage: %v", err)
		}
		if img != nil {
			t.Fatal("DetachBackingImage should null out the handle")
		}

		if err := b.RealiseSurface(&img, desc); err != nil {
			t.Fatalf("re-RealiseSurface after detach: %v", err)
		}
		if img == nil {
			t.Fatal("expected a fresh handle after re-realise")
		}
	})
}

func TestDestroyAllBackingImagesClearsEverything(t *testing.T) {
	testBothBackends(t, func(t *testing.T, b Backend) {
		var img1, img2 *Handle
		desc := SurfaceDescriptor{Width: 320, Height: 240, Format: vacontract.SurfaceFormatNV12}
		b.RealiseSurface(&img1, desc)
		b.RealiseSurface(&img2, desc)

		if err := b.DestroyAllBackingImages(); err != nil {
			t.Fatalf("DestroyAllBackingImages: %v", err)
		}
		if err := b.ReleaseExporter(); err != nil {
			t.Fatalf("ReleaseExporter: %v", err)
		}
	})
}

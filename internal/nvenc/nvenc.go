//go:build nvenc

// Package nvenc is the NVENC side-branch spec.md §1 calls out: "the NVENC
// encoder path, treated as a side-branch with the same configuration shape
// but no decode-quality contract." It is built only under the "nvenc" tag,
// never imported by the decode pipeline, and mirrors the teacher's
// encoder_nvenc.go config-validation shape without reproducing its known
// zero-device-pointer bug -- there is no Encode method here, since this
// driver makes no promise about NVENC output quality or even presence.
package nvenc

import (
	"fmt"
	"sync"

	"github.com/nvcuvid/vaapi-driver/internal/codec"
	"github.com/nvcuvid/vaapi-driver/internal/vacontract"
)

// Config is the NVENC-side encoder configuration: a profile, as the decode
// Config carries on the VAAPI side, plus bitrate and fps, which the decode
// Config does not have.
type Config struct {
	Profile vacontract.Profile
	BitRate int
	FPS     int
}

// Encoder validates and holds an NVENC configuration. It has no Encode
// method: wiring an actual encode call requires the vendor NVENC SDK, which
// is out of scope the same way the vendor CUVID library is.
type Encoder struct {
	mu  sync.Mutex
	cfg Config
}

// New validates cfg against the same codec dispatch table the decode path
// uses (a profile NVENC can't translate is rejected the same way
// CreateConfig rejects it) and against positive bitrate/fps.
func New(cfg Config) (*Encoder, error) {
	if _, ok := codec.Select(cfg.Profile); !ok {
		return nil, fmt.Errorf("nvenc: no codec translates profile %d", cfg.Profile)
	}
	if cfg.BitRate <= 0 {
		return nil, fmt.Errorf("nvenc: bitrate must be positive, got %d", cfg.BitRate)
	}
	if cfg.FPS <= 0 {
		return nil, fmt.Errorf("nvenc: fps must be positive, got %d", cfg.FPS)
	}
	return &Encoder{cfg: cfg}, nil
}

func (e *Encoder) SetBitRate(bitrate int) error {
	if bitrate <= 0 {
		return fmt.Errorf("nvenc: bitrate must be positive, got %d", bitrate)
	}
	e.mu.Lock()
	e.cfg.BitRate = bitrate
	e.mu.Unlock()
	return nil
}

func (e *Encoder) SetFPS(fps int) error {
	if fps <= 0 {
		return fmt.Errorf("nvenc: fps must be positive, got %d", fps)
	}
	e.mu.Lock()
	e.cfg.FPS = fps
	e.mu.Unlock()
	return nil
}

func (e *Encoder) Close() error {
	return nil
}

func (e *Encoder) Name() string {
	return "nvenc"
}

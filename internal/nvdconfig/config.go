// Package nvdconfig loads the driver's process-wide configuration from the
// fixed environment-variable table in spec.md §6. Unlike the teacher's
// config package, there is no config file: the driver is loaded as a shared
// object by a VA-API client, not run as a standalone process, so viper is
// bound purely to the environment.
package nvdconfig

import (
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Backend selects the surface export backend implementation.
type Backend string

const (
	BackendDirect Backend = "direct"
	BackendEGL    Backend = "egl"
)

// Config mirrors spec.md §6's environment variable table.
type Config struct {
	Log          string  `mapstructure:"log"`
	GPU          int     `mapstructure:"gpu"`
	MaxInstances int     `mapstructure:"max_instances"`
	Backend      Backend `mapstructure:"backend"`
	ForceInit    bool    `mapstructure:"force_init"`
	CapsOverride string  `mapstructure:"caps_file"`
}

// Default returns the configuration spec.md's env-var table specifies when
// every variable is unset.
func Default() *Config {
	return &Config{
		GPU:          -1,
		MaxInstances: 0,
		Backend:      BackendDirect,
		ForceInit:    false,
	}
}

// Load reads NVD_* environment variables into a Config, applying the
// defaults spec.md §6 gives for each unset variable.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NVD")
	v.AutomaticEnv()
	v.SetDefault("gpu", -1)
	v.SetDefault("max_instances", 0)
	v.SetDefault("backend", string(BackendDirect))
	v.SetDefault("force_init", false)

	// viper's AutomaticEnv only binds keys it has been told about via
	// SetDefault/BindEnv, so every field needs an explicit bind the way the
	// teacher's config does for env-overridable fields.
	for _, key := range []string{"log", "gpu", "max_instances", "backend", "force_init", "caps_file"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	cfg := Default()
	cfg.Log = v.GetString("log")
	cfg.GPU = v.GetInt("gpu")
	cfg.MaxInstances = v.GetInt("max_instances")
	cfg.Backend = Backend(strings.ToLower(v.GetString("backend")))
	cfg.ForceInit = v.GetBool("force_init")
	cfg.CapsOverride = v.GetString("caps_file")

	result := cfg.ValidateTiered()
	if result.HasFatals() {
		cfg.normalizeFatals()
	}

	return cfg, nil
}

// normalizeFatals clamps fields that failed validation to safe defaults so
// driver init can still proceed (matching spec.md's never-panic posture:
// unsatisfiable combinations fall back to defaults rather than crashing).
func (c *Config) normalizeFatals() {
	if c.Backend != BackendDirect && c.Backend != BackendEGL {
		c.Backend = BackendDirect
	}
	if c.MaxInstances < 0 {
		c.MaxInstances = 0
	}
}

// CapabilityOverride describes a device capability matrix loaded from
// NVD_CAPS_FILE, letting tests and operators simulate a device without real
// hardware. Consumed by internal/caps.
type CapabilityOverride struct {
	Supports16BitSurface bool              `yaml:"supports_16bit_surface"`
	Supports444Surface   bool              `yaml:"supports_444_surface"`
	Entries              []CapabilityEntry `yaml:"entries"`
}

// CapabilityEntry describes one supported (codec, bitDepth, chroma) triple
// and an optional max picture size, mirroring spec.md §4.1's probe contract.
type CapabilityEntry struct {
	Codec     string `yaml:"codec"`
	BitDepth  int    `yaml:"bit_depth"`
	Chroma    string `yaml:"chroma"`
	MaxWidth  int    `yaml:"max_width"`
	MaxHeight int    `yaml:"max_height"`
}

// LoadCapabilityOverride reads and parses the YAML file named by
// NVD_CAPS_FILE. Returns (nil, nil) if path is empty.
func LoadCapabilityOverride(path string) (*CapabilityOverride, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out CapabilityOverride
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spf13/cobra"

	"github.com/nvcuvid/vaapi-driver/internal/driver"
	"github.com/nvcuvid/vaapi-driver/internal/nvdconfig"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Construct a driver Instance in-process and print its capability matrix",
	Run: func(cmd *cobra.Command, args []string) {
		runProbe()
	},
}

// runProbe mirrors the teacher's checkStatus: load config, report what it
// finds, exit cleanly even when the underlying hardware isn't there (the
// direct backend degrades to a /dev/null fallback without real DRM).
func runProbe() {
	cfg, err := nvdconfig.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	printHostInfo()

	var override *nvdconfig.CapabilityOverride
	if cfg.CapsOverride != "" {
		override, err = nvdconfig.LoadCapabilityOverride(cfg.CapsOverride)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load caps override %s: %v\n", cfg.CapsOverride, err)
			os.Exit(1)
		}
	}

	inst, err := driver.New(cfg, override)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to construct driver instance: %v\n", err)
		os.Exit(1)
	}
	defer inst.Terminate()

	fmt.Printf("backend: %s\n", cfg.Backend)
	fmt.Printf("max instances: %d (live: %d)\n", cfg.MaxInstances, driver.LiveInstances())

	profiles := inst.QueryConfigProfiles()
	fmt.Printf("supported profiles (%d):\n", len(profiles))
	for _, p := range profiles {
		fmt.Printf("  %d\n", p)
	}

	entrypoints := inst.QueryConfigEntrypoints()
	fmt.Printf("supported entrypoints: %v\n", entrypoints)

	formats := inst.QueryImageFormats()
	fmt.Printf("image formats (%d):\n", len(formats))
	for _, f := range formats {
		fmt.Printf("  %-6s planes=%d chroma=%v 16bit=%v 444=%v\n", f.Description, f.Planes, f.Chroma, f.Is16Bit, f.Is444)
	}

	snap := inst.Stats()
	fmt.Printf("stats: picturesBegun=%d picturesResolved=%d decodeFailures=%d\n",
		snap.PicturesBegun, snap.PicturesResolved, snap.DecodeFailures)
}

// printHostInfo reports the host facts alongside driver capability output,
// the same pairing the teacher's enrollment flow does with
// collectors.HardwareCollector, but sourced directly from gopsutil since
// this CLI has no agent config/enrollment concept to collect into.
func printHostInfo() {
	hostInfo, err := host.Info()
	if err != nil {
		fmt.Fprintf(os.Stderr, "host info unavailable: %v\n", err)
	} else {
		fmt.Printf("host: %s %s (%s)\n", hostInfo.Platform, hostInfo.PlatformVersion, hostInfo.KernelArch)
	}

	counts, err := cpu.Counts(true)
	if err != nil {
		counts = runtime.NumCPU()
	}
	fmt.Printf("cpu threads: %d\n", counts)

	if vmem, err := mem.VirtualMemory(); err == nil {
		fmt.Printf("memory: %d MB total\n", vmem.Total/(1024*1024))
	}
}

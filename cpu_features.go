package matprod

import (
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// HostInfo describes the machine a sample was taken on.
type HostInfo struct {
	GOOS     string `json:"goos"`
	GOARCH   string `json:"goarch"`
	NumCPU   int    `json:"num_cpu"`
	Features string `json:"features"`
}

// DetectHost returns the current host description.
func DetectHost() HostInfo {
	return HostInfo{
		GOOS:     runtime.GOOS,
		GOARCH:   runtime.GOARCH,
		NumCPU:   runtime.NumCPU(),
		Features: GetCPUInfo(),
	}
}

// GetCPUInfo returns a string describing the SIMD extensions the Go
// compiler may use for the kernels' inner loops
func GetCPUInfo() string {
	features := []string{}

	switch runtime.GOARCH {
	case "amd64", "386":
		if cpu.X86.HasSSE41 || cpu.X86.HasSSE42 {
			features = append(features, "SSE4")
		}
		if cpu.X86.HasAVX {
			features = append(features, "AVX")
		}
		if cpu.X86.HasAVX2 {
			features = append(features, "AVX2")
		}
		if cpu.X86.HasFMA {
			features = append(features, "FMA")
		}
		if cpu.X86.HasAVX512F {
			features = append(features, "AVX512F")
		}
	case "arm64":
		if cpu.ARM64.HasASIMD {
			features = append(features, "NEON")
		}
		if cpu.ARM64.HasFP {
			features = append(features, "FP")
		}
		if cpu.ARM64.HasSVE {
			features = append(features, "SVE")
		}
	}

	if len(features) == 0 {
		return "scalar"
	}
	return strings.Join(features, " ")
}

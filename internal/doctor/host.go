package doctor

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// HostInfo describes the machine moai runs on. Fields that cannot be read
// are left zero.
type HostInfo struct {
	OS              string  `json:"os"`
	Platform        string  `json:"platform,omitempty"`
	PlatformVersion string  `json:"platform_version,omitempty"`
	Arch            string  `json:"arch"`
	GoVersion       string  `json:"go_version"`
	CPUs            int     `json:"cpus"`
	MemoryTotal     uint64  `json:"memory_total"`
	MemoryUsed      float64 `json:"memory_used_percent"`
	DiskFree        uint64  `json:"disk_free"`
}

func collectHost(ctx context.Context, root string) HostInfo {
	h := HostInfo{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		GoVersion: runtime.Version(),
	}
	if info, err := host.InfoWithContext(ctx); err == nil {
		h.Platform = info.Platform
		h.PlatformVersion = info.PlatformVersion
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		h.CPUs = n
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		h.MemoryTotal = vm.Total
		h.MemoryUsed = vm.UsedPercent
	}
	if du, err := disk.UsageWithContext(ctx, root); err == nil {
		h.DiskFree = du.Free
	}
	return h
}

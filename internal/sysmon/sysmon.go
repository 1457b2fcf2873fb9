// Package sysmon samples system-wide CPU and memory usage and describes the
// host the integrators run on.
package sysmon

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
}

// Sample collects a single system-wide CPU and memory snapshot.
// CPU uses interval=0 (delta since last call). Returns zero values on error.
func Sample() Stats {
	var s Stats
	cpuPcts, err := cpu.Percent(0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemory()
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	return s
}

// PerCore returns per-logical-CPU utilization since the previous call, or
// nil when the platform does not report it.
func PerCore() []float64 {
	pcts, err := cpu.Percent(0, true)
	if err != nil {
		return nil
	}
	return pcts
}

// Host describes the machine. Unknown fields stay zero.
type Host struct {
	ModelName     string
	LogicalCores  int
	PhysicalCores int
	TotalMemory   uint64
}

// DescribeHost queries the CPU model, core counts and installed memory.
// Logical cores fall back to runtime.NumCPU when gopsutil cannot count them.
func DescribeHost() Host {
	h := Host{LogicalCores: runtime.NumCPU()}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		h.LogicalCores = n
	}
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		h.PhysicalCores = n
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		h.ModelName = infos[0].ModelName
	}
	if vmem, err := mem.VirtualMemory(); err == nil && vmem != nil {
		h.TotalMemory = vmem.Total
	}
	return h
}

// String renders the host for log lines and the verbose report.
func (h Host) String() string {
	model := h.ModelName
	if model == "" {
		model = "unknown CPU"
	}
	cores := fmt.Sprintf("%d logical", h.LogicalCores)
	if h.PhysicalCores > 0 {
		cores = fmt.Sprintf("%d physical / %d logical", h.PhysicalCores, h.LogicalCores)
	}
	if h.TotalMemory == 0 {
		return fmt.Sprintf("%s, %s cores", model, cores)
	}
	return fmt.Sprintf("%s, %s cores, %.1f GiB RAM", model, cores, float64(h.TotalMemory)/(1<<30))
}

package diagnostics

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostInfo - сведения о машине для отчетов самопроверки
type HostInfo struct {
	OS          string  `yaml:"os"`
	Arch        string  `yaml:"arch"`
	LogicalCPUs int     `yaml:"logical_cpus"`
	TotalMemMB  uint64  `yaml:"total_mem_mb"`
	UsedMemPct  float64 `yaml:"used_mem_pct"`
}

func (h HostInfo) String() string {
	return fmt.Sprintf("%s/%s, CPU: %d, RAM: %d MB (занято %.1f%%)", h.OS, h.Arch, h.LogicalCPUs, h.TotalMemMB, h.UsedMemPct)
}

// Host собирает сведения о машине. Недоступные значения остаются нулевыми.
func Host() (HostInfo, error) {
	info := HostInfo{OS: runtime.GOOS, Arch: runtime.GOARCH}

	n, err := cpu.Counts(true)
	if err != nil {
		return info, fmt.Errorf("cpu counts: %w", err)
	}
	info.LogicalCPUs = n

	vm, err := mem.VirtualMemory()
	if err != nil {
		return info, fmt.Errorf("virtual memory: %w", err)
	}
	info.TotalMemMB = vm.Total / 1024 / 1024
	info.UsedMemPct = vm.UsedPercent
	return info, nil
}

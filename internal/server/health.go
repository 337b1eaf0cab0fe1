package server

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// HealthReport is the /healthz payload.
type HealthReport struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	Goroutines    int     `json:"goroutines"`
	CPUPercent    float64 `json:"cpu_percent,omitempty"`
	MemRSSBytes   uint64  `json:"memory_rss_bytes,omitempty"`
	MemUsedPct    float64 `json:"memory_used_percent,omitempty"`
}

func (h *HTTP) handleHealth(c echo.Context) error {
	report := HealthReport{
		Status:        "ok",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
	}
	// Process and host readings are informative only; they can fail in
	// restricted sandboxes.
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if cpu, err := proc.CPUPercent(); err == nil {
			report.CPUPercent = cpu
		}
		if mi, err := proc.MemoryInfo(); err == nil && mi != nil {
			report.MemRSSBytes = mi.RSS
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		report.MemUsedPct = vm.UsedPercent
	}
	return c.JSON(http.StatusOK, report)
}

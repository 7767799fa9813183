package server

import (
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers serves process and host resource diagnostics.
type SystemHandlers struct {
	log       zerolog.Logger
	startedAt time.Time
}

// NewSystemHandlers creates system monitoring handlers.
func NewSystemHandlers(log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("component", "system").Logger(),
		startedAt: time.Now(),
	}
}

// SystemStatus is the response payload for GET /api/system/status.
type SystemStatus struct {
	Hostname      string  `json:"hostname"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
	CPUPercent    float64 `json:"cpuPercent"`
	RAMPercent    int     `json:"ramPercent"`
	RAMUsedMB     float64 `json:"ramUsedMb"`
	RAMTotalMB    float64 `json:"ramTotalMb"`
	Goroutines    int     `json:"goroutines"`
	NumCPU        int     `json:"numCpu"`
	GoVersion     string  `json:"goVersion"`
}

// HandleSystemStatus returns host and process resource usage.
// GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	status := SystemStatus{
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
		Goroutines:    runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		GoVersion:     runtime.Version(),
	}

	if hostname, err := os.Hostname(); err == nil {
		status.Hostname = hostname
	}

	cpuAvg, ramPercent, usedMB, totalMB := h.getSystemStats()
	status.CPUPercent = cpuAvg
	status.RAMPercent = int(ramPercent)
	status.RAMUsedMB = usedMB
	status.RAMTotalMB = totalMB

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode system status")
	}
}

// getSystemStats calculates CPU and RAM usage percentages.
// Uses a short interval (100ms) so the endpoint stays responsive while
// still giving an accurate CPU reading.
func (h *SystemHandlers) getSystemStats() (float64, float64, float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return cpuAvg, 0, 0, 0
	}

	usedMB := float64(memStat.Used) / 1024 / 1024
	totalMB := float64(memStat.Total) / 1024 / 1024

	return cpuAvg, memStat.UsedPercent, usedMB, totalMB
}

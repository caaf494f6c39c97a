package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	hoststat "github.com/likexian/host-stat-go"

	"github.com/kiosk404/scrivener/internal/pkg/core"
	execservice "github.com/kiosk404/scrivener/internal/scriptorium/service/exec/domain/service"
	llmservice "github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/service"
	"github.com/kiosk404/scrivener/pkg/errorx"
	"github.com/kiosk404/scrivener/pkg/logger"
	"github.com/kiosk404/scrivener/pkg/version"
)

// SystemHandler reports server health and host/provider status.
type SystemHandler struct {
	gateway llmservice.Gateway
	monitor execservice.Monitor
	started time.Time
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(gateway llmservice.Gateway, monitor execservice.Monitor) *SystemHandler {
	return &SystemHandler{
		gateway: gateway,
		monitor: monitor,
		started: time.Now(),
	}
}

// Version handles GET /version.
func (h *SystemHandler) Version(c *gin.Context) {
	core.WriteResponse(c, nil, version.Get())
}

// Status handles GET /api/system/status.
func (h *SystemHandler) Status(c *gin.Context) {
	status := gin.H{
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"version":   version.Get().GitVersion,
		"providers": h.gateway.Statuses(),
		"llm":       gin.H{"available": h.gateway.Available()},
	}

	if stats, err := h.monitor.Statistics(); err == nil {
		status["tasks"] = stats
	} else {
		logger.Warn("[System] task statistics: %v", err)
	}

	host := gin.H{}
	if info, err := hoststat.GetHostInfo(); err == nil {
		host["hostname"] = info.HostName
		host["os"] = info.Release + " " + info.OSBit
	}
	if cpu, err := hoststat.GetCPUStat(); err == nil {
		host["cpuIdlePercent"] = cpu.IdleRate
	}
	if mem, err := hoststat.GetMemStat(); err == nil {
		host["memTotalMB"] = mem.MemTotal
		host["memFreeMB"] = mem.MemFree
	}
	if disk, err := hoststat.GetDiskStat(); err == nil && len(disk) > 0 {
		host["diskTotalMB"] = disk[0].Total
		host["diskFreeMB"] = disk[0].Free
	}
	if len(host) == 0 {
		core.WriteResponse(c, errorx.WithCode(ErrSystemStatus, "host statistics unavailable"), nil)
		return
	}
	status["host"] = host

	core.WriteResponse(c, nil, status)
}

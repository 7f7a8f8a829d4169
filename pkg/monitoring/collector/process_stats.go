package collector

import (
	"context"
	"os"
	"runtime"
	"sync"

	"monicore/pkg/monitoring/models"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// ProcessStatsProvider 采集本进程的 CPU、内存、goroutine 以及数据目录所在磁盘的使用率
type ProcessStatsProvider struct {
	diskPath string
	logger   *zap.Logger

	once    sync.Once
	proc    *process.Process
	procErr error
}

// NewProcessStatsProvider diskPath 为空时使用当前目录
func NewProcessStatsProvider(diskPath string, logger *zap.Logger) *ProcessStatsProvider {
	if diskPath == "" {
		diskPath = "."
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessStatsProvider{diskPath: diskPath, logger: logger}
}

var _ SystemStatsProvider = (*ProcessStatsProvider)(nil)

// Sample 单项失败只记录日志，该项保持 0
func (p *ProcessStatsProvider) Sample(ctx context.Context) (*models.SystemStats, error) {
	stats := &models.SystemStats{
		Goroutines: float64(runtime.NumGoroutine()),
	}

	p.once.Do(func() {
		p.proc, p.procErr = process.NewProcessWithContext(ctx, int32(os.Getpid()))
	})
	if p.procErr != nil {
		return nil, p.procErr
	}

	if cpu, err := p.proc.PercentWithContext(ctx, 0); err == nil {
		stats.CPUPercent = cpu
	} else {
		p.logger.Warn("获取进程CPU使用率失败", zap.Error(err))
	}

	if mem, err := p.proc.MemoryInfoWithContext(ctx); err == nil {
		stats.MemoryBytes = float64(mem.RSS)
	} else {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		stats.MemoryBytes = float64(ms.Sys)
	}

	if pct, err := p.proc.MemoryPercentWithContext(ctx); err == nil {
		stats.MemoryPercent = float64(pct)
	}

	if usage, err := disk.UsageWithContext(ctx, p.diskPath); err == nil {
		stats.DiskPercent = usage.UsedPercent
	} else {
		p.logger.Warn("获取磁盘使用情况失败", zap.String("path", p.diskPath), zap.Error(err))
	}

	return stats, nil
}

package models

// SystemStats 一次系统采样。取不到的项保持 0
type SystemStats struct {
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryBytes   float64 `json:"memoryBytes"`
	MemoryPercent float64 `json:"memoryPercent"`
	DiskPercent   float64 `json:"diskPercent"`
	Goroutines    float64 `json:"goroutines"`

	ActiveDBConnections float64 `json:"activeDbConnections"`
	IdleDBConnections   float64 `json:"idleDbConnections"`
	OpenDBConnections   float64 `json:"openDbConnections"`
	DBWaitCount         float64 `json:"dbWaitCount"`

	CacheHitRate          float64 `json:"cacheHitRate"`
	CacheMissRate         float64 `json:"cacheMissRate"`
	CacheTotalConnections float64 `json:"cacheTotalConnections"`
	CacheIdleConnections  float64 `json:"cacheIdleConnections"`
}

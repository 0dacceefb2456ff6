package models

// DiskUsage describes the volume holding the assets directory
type DiskUsage struct {
	Path        string  `json:"path"`
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

// ServerInfoResponse represents the server info response
type ServerInfoResponse struct {
	Uptime      float64    `json:"uptime"`
	AssetsDir   string     `json:"assets_dir"`
	MountPrefix string     `json:"mount_prefix"`
	CPUCount    int        `json:"cpu_count"`
	MemoryRSS   uint64     `json:"memory_rss"`
	Disk        *DiskUsage `json:"disk,omitempty"`
}

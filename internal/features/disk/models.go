package disk

type DiskUsage struct {
	Path            string  `json:"path"`
	TotalSpaceBytes uint64  `json:"totalSpaceBytes"`
	UsedSpaceBytes  uint64  `json:"usedSpaceBytes"`
	FreeSpaceBytes  uint64  `json:"freeSpaceBytes"`
	UsedPercent     float64 `json:"usedPercent"`
}

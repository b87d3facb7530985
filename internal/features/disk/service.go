package disk

import (
	"fmt"

	gopsutil_disk "github.com/shirou/gopsutil/v4/disk"
)

// DiskService reports usage of the volume that holds uploaded files.
type DiskService struct {
	storagePath string
}

func (s *DiskService) GetDiskUsage() (*DiskUsage, error) {
	usage, err := gopsutil_disk.Usage(s.storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk usage of %s: %w", s.storagePath, err)
	}

	return &DiskUsage{
		Path:            s.storagePath,
		TotalSpaceBytes: usage.Total,
		UsedSpaceBytes:  usage.Used,
		FreeSpaceBytes:  usage.Free,
		UsedPercent:     usage.UsedPercent,
	}, nil
}

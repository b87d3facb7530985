package system_healthcheck

import (
	"errors"
	"fmt"

	"crmm/internal/features/disk"
	"crmm/internal/storage"
)

const minFreeSpacePercent = 5.0

type HealthcheckService struct {
	diskService *disk.DiskService
}

// IsHealthy checks what this instance needs to serve writes: the database
// and room on the file storage volume.
func (s *HealthcheckService) IsHealthy() error {
	if err := storage.GetDb().Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database check failed: %w", err)
	}

	usage, err := s.diskService.GetDiskUsage()
	if err != nil {
		return fmt.Errorf("disk check failed: %w", err)
	}

	if 100-usage.UsedPercent < minFreeSpacePercent {
		return errors.New("file storage is running out of space")
	}

	return nil
}

package disk

import (
	"crmm/internal/config"
)

var diskService = &DiskService{
	config.GetEnv().StoragePath,
}

var diskController = &DiskController{
	diskService,
}

func GetDiskService() *DiskService {
	return diskService
}

func GetDiskController() *DiskController {
	return diskController
}

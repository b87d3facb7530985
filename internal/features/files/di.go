package files

import (
	"crmm/internal/config"
	"crmm/internal/util/logger"
)

var fileRepository = &FileRepository{}
var fileService = &FileService{
	fileRepository: fileRepository,
	storagePath:    config.GetEnv().StoragePath,
	logger:         logger.GetLogger(),
}
var fileController = &FileController{
	fileService: fileService,
}

func GetFileService() *FileService {
	return fileService
}

func GetFileController() *FileController {
	return fileController
}

package files

import (
	"time"

	"github.com/google/uuid"
)

type StorageService string

const (
	StorageServiceLocal StorageService = "local"
)

type File struct {
	ID             uuid.UUID      `json:"id"             gorm:"column:id"`
	Name           string         `json:"name"           gorm:"column:name"`
	Size           int64          `json:"size"           gorm:"column:size"`
	MimeType       string         `json:"mimeType"       gorm:"column:mime_type"`
	URL            string         `json:"url"            gorm:"column:url"`
	StorageService StorageService `json:"storageService" gorm:"column:storage_service"`
	CreatedAt      time.Time      `json:"createdAt"      gorm:"column:created_at"`
}

func (File) TableName() string {
	return "files"
}

package organisations_models

import (
	"time"

	"crmm/internal/util/slug"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Organisation struct {
	ID          uuid.UUID  `json:"id"          gorm:"column:id"`
	Name        string     `json:"name"        gorm:"column:name"`
	Slug        string     `json:"slug"        gorm:"column:slug"`
	Description string     `json:"description" gorm:"column:description"`
	IconFileID  *uuid.UUID `json:"iconFileId"  gorm:"column:icon_file_id"`
	TeamID      uuid.UUID  `json:"teamId"      gorm:"column:team_id"`
	CreatedAt   time.Time  `json:"createdAt"   gorm:"column:created_at"`
}

func (Organisation) TableName() string {
	return "organisations"
}

func (o *Organisation) BeforeSave(tx *gorm.DB) error {
	o.Slug = slug.Normalize(o.Slug)
	return nil
}

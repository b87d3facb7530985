package projects_models

import (
	"time"

	projects_enums "crmm/internal/features/projects/enums"
	"crmm/internal/util/slug"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Project struct {
	ID             uuid.UUID                        `json:"id"             gorm:"column:id"`
	Name           string                           `json:"name"           gorm:"column:name"`
	Slug           string                           `json:"slug"           gorm:"column:slug"`
	Summary        string                           `json:"summary"        gorm:"column:summary"`
	Visibility     projects_enums.ProjectVisibility `json:"visibility"     gorm:"column:visibility"`
	Status         projects_enums.ProjectStatus     `json:"status"         gorm:"column:status"`
	TeamID         uuid.UUID                        `json:"teamId"         gorm:"column:team_id"`
	OrganisationID *uuid.UUID                       `json:"organisationId" gorm:"column:organisation_id"`
	IconFileID     *uuid.UUID                       `json:"iconFileId"     gorm:"column:icon_file_id"`
	CreatedAt      time.Time                        `json:"createdAt"      gorm:"column:created_at"`
	UpdatedAt      time.Time                        `json:"updatedAt"      gorm:"column:updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

func (p *Project) BeforeSave(tx *gorm.DB) error {
	p.Slug = slug.Normalize(p.Slug)
	p.UpdatedAt = time.Now().UTC()

	return nil
}

func (p *Project) IsPrivate() bool {
	return p.Visibility == projects_enums.ProjectVisibilityPrivate
}

func (p *Project) IsSearchable() bool {
	return projects_enums.IsSearchable(p.Visibility, p.Status)
}

package projects_repositories

import (
	"errors"
	"time"

	projects_models "crmm/internal/features/projects/models"
	"crmm/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepository struct{}

func (r *ProjectRepository) CreateProject(tx *gorm.DB, project *projects_models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}

	return storage.Tx(tx).Create(project).Error
}

// GetProjectByID returns nil without an error when the project does not exist.
func (r *ProjectRepository) GetProjectByID(tx *gorm.DB, projectID uuid.UUID) (*projects_models.Project, error) {
	return r.first(storage.Tx(tx).Where("id = ?", projectID))
}

// GetProjectForUpdate locks the project row until tx ends.
func (r *ProjectRepository) GetProjectForUpdate(tx *gorm.DB, projectID uuid.UUID) (*projects_models.Project, error) {
	return r.first(tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", projectID))
}

func (r *ProjectRepository) GetProjectBySlug(slug string) (*projects_models.Project, error) {
	return r.first(storage.GetDb().Where("slug = ?", slug))
}

func (r *ProjectRepository) GetProjectsByIDs(projectIDs []uuid.UUID) ([]*projects_models.Project, error) {
	var projects []*projects_models.Project
	if len(projectIDs) == 0 {
		return projects, nil
	}

	err := storage.GetDb().Where("id IN ?", projectIDs).Find(&projects).Error

	return projects, err
}

func (r *ProjectRepository) GetOrganisationProjects(tx *gorm.DB, organisationID uuid.UUID) ([]*projects_models.Project, error) {
	var projects []*projects_models.Project

	err := storage.Tx(tx).
		Where("organisation_id = ?", organisationID).
		Order("created_at DESC").
		Find(&projects).Error

	return projects, err
}

// GetProjectsOfTeams returns projects governed by one of the teams, directly
// or through their organisation.
func (r *ProjectRepository) GetProjectsOfTeams(teamIDs []uuid.UUID) ([]*projects_models.Project, error) {
	var projects []*projects_models.Project
	if len(teamIDs) == 0 {
		return projects, nil
	}

	err := storage.GetDb().
		Where("team_id IN ?", teamIDs).
		Or("organisation_id IN (?)", storage.GetDb().Table("organisations").Select("id").Where("team_id IN ?", teamIDs)).
		Order("created_at DESC").
		Find(&projects).Error

	return projects, err
}

func (r *ProjectRepository) UpdateProject(tx *gorm.DB, project *projects_models.Project) error {
	return storage.Tx(tx).Save(project).Error
}

func (r *ProjectRepository) SetOrganisation(tx *gorm.DB, projectID uuid.UUID, organisationID *uuid.UUID) error {
	return storage.Tx(tx).
		Model(&projects_models.Project{}).
		Where("id = ?", projectID).
		Updates(map[string]any{"organisation_id": organisationID, "updated_at": time.Now().UTC()}).Error
}

func (r *ProjectRepository) DeleteProject(tx *gorm.DB, projectID uuid.UUID) error {
	return storage.Tx(tx).Delete(&projects_models.Project{}, "id = ?", projectID).Error
}

func (r *ProjectRepository) GetAllProjectIDs() ([]uuid.UUID, error) {
	var projectIDs []uuid.UUID

	err := storage.GetDb().Model(&projects_models.Project{}).Pluck("id", &projectIDs).Error

	return projectIDs, err
}

func (r *ProjectRepository) first(query *gorm.DB) (*projects_models.Project, error) {
	var project projects_models.Project

	err := query.First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &project, nil
}

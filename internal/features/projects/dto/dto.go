package projects_dto

import (
	"time"

	projects_enums "crmm/internal/features/projects/enums"
	projects_models "crmm/internal/features/projects/models"
	teams_dto "crmm/internal/features/teams/dto"

	"github.com/google/uuid"
)

type CreateProjectRequestDTO struct {
	Name       string                           `json:"name"       binding:"required,min=2,max=64"`
	Slug       string                           `json:"slug"       binding:"required,min=2,max=64"`
	Summary    string                           `json:"summary"    binding:"max=320"`
	Visibility projects_enums.ProjectVisibility `json:"visibility" binding:"required"`
}

type UpdateProjectRequestDTO struct {
	Name       string                           `json:"name"       binding:"required,min=2,max=64"`
	Slug       string                           `json:"slug"       binding:"required,min=2,max=64"`
	Summary    string                           `json:"summary"    binding:"max=320"`
	Visibility projects_enums.ProjectVisibility `json:"visibility" binding:"required"`
}

type UpdateProjectStatusRequestDTO struct {
	Status projects_enums.ProjectStatus `json:"status" binding:"required"`
}

type ProjectResponseDTO struct {
	ID             uuid.UUID                        `json:"id"`
	Name           string                           `json:"name"`
	Slug           string                           `json:"slug"`
	Summary        string                           `json:"summary"`
	Visibility     projects_enums.ProjectVisibility `json:"visibility"`
	Status         projects_enums.ProjectStatus     `json:"status"`
	TeamID         uuid.UUID                        `json:"teamId"`
	OrganisationID *uuid.UUID                       `json:"organisationId"`
	IconFileID     *uuid.UUID                       `json:"iconFileId"`
	CreatedAt      time.Time                        `json:"createdAt"`
	UpdatedAt      time.Time                        `json:"updatedAt"`

	// caller's effective membership, populated when fetching for a specific user
	CurrentMember *teams_dto.TeamMemberResponseDTO `json:"currentMember,omitempty"`
}

type ListProjectsResponseDTO struct {
	Projects []*ProjectResponseDTO `json:"projects"`
}

func ToProjectResponse(project *projects_models.Project) *ProjectResponseDTO {
	return &ProjectResponseDTO{
		ID:             project.ID,
		Name:           project.Name,
		Slug:           project.Slug,
		Summary:        project.Summary,
		Visibility:     project.Visibility,
		Status:         project.Status,
		TeamID:         project.TeamID,
		OrganisationID: project.OrganisationID,
		IconFileID:     project.IconFileID,
		CreatedAt:      project.CreatedAt,
		UpdatedAt:      project.UpdatedAt,
	}
}

func ToProjectResponses(projects []*projects_models.Project) []*ProjectResponseDTO {
	responses := make([]*ProjectResponseDTO, 0, len(projects))
	for _, project := range projects {
		responses = append(responses, ToProjectResponse(project))
	}

	return responses
}

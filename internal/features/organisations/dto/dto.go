package organisations_dto

import (
	"time"

	organisations_models "crmm/internal/features/organisations/models"
	teams_dto "crmm/internal/features/teams/dto"

	"github.com/google/uuid"
)

type CreateOrganisationRequestDTO struct {
	Name        string `json:"name"        binding:"required,min=2,max=64"`
	Slug        string `json:"slug"        binding:"required,min=2,max=64"`
	Description string `json:"description" binding:"max=320"`
}

type UpdateOrganisationRequestDTO struct {
	Name        string `json:"name"        binding:"required,min=2,max=64"`
	Slug        string `json:"slug"        binding:"required,min=2,max=64"`
	Description string `json:"description" binding:"max=320"`
}

type AddProjectRequestDTO struct {
	ProjectID uuid.UUID `json:"projectId" binding:"required"`
}

type OrganisationResponseDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	IconFileID  *uuid.UUID `json:"iconFileId"`
	IconURL     *string    `json:"iconUrl"`
	TeamID      uuid.UUID  `json:"teamId"`
	CreatedAt   time.Time  `json:"createdAt"`

	Members       []*teams_dto.TeamMemberResponseDTO `json:"members,omitempty"`
	CurrentMember *teams_dto.TeamMemberResponseDTO   `json:"currentMember,omitempty"`
}

type ListOrganisationsResponseDTO struct {
	Organisations []*OrganisationResponseDTO `json:"organisations"`
}

func ToOrganisationResponse(organisation *organisations_models.Organisation) *OrganisationResponseDTO {
	response := &OrganisationResponseDTO{
		ID:          organisation.ID,
		Name:        organisation.Name,
		Slug:        organisation.Slug,
		Description: organisation.Description,
		IconFileID:  organisation.IconFileID,
		TeamID:      organisation.TeamID,
		CreatedAt:   organisation.CreatedAt,
	}

	if organisation.IconFileID != nil {
		iconURL := "/api/v1/files/" + organisation.IconFileID.String()
		response.IconURL = &iconURL
	}

	return response
}

func ToOrganisationResponses(organisations []*organisations_models.Organisation) []*OrganisationResponseDTO {
	responses := make([]*OrganisationResponseDTO, 0, len(organisations))
	for _, organisation := range organisations {
		responses = append(responses, ToOrganisationResponse(organisation))
	}

	return responses
}

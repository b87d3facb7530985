package teams_dto

import (
	"time"

	"crmm/internal/features/permissions"
	teams_models "crmm/internal/features/teams/models"

	"github.com/google/uuid"
)

type InviteMemberRequestDTO struct {
	UserSlug string `json:"userSlug" binding:"required,max=64"`
}

// EditMemberRequestDTO carries permission names; unknown names are rejected.
type EditMemberRequestDTO struct {
	Role                    string   `json:"role"                    binding:"required,min=1,max=32"`
	Permissions             []string `json:"permissions"`
	OrganisationPermissions []string `json:"organisationPermissions"`
}

type OverrideOrgMemberRequestDTO struct {
	UserID      uuid.UUID `json:"userId"      binding:"required"`
	Role        string    `json:"role"        binding:"required,min=1,max=32"`
	Permissions []string  `json:"permissions"`
}

type TransferOwnershipRequestDTO struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
}

type TeamMemberResponseDTO struct {
	ID                      uuid.UUID                           `json:"id"`
	TeamID                  uuid.UUID                           `json:"teamId"`
	UserID                  uuid.UUID                           `json:"userId"`
	Username                string                              `json:"username"`
	Role                    string                              `json:"role"`
	IsOwner                 bool                                `json:"isOwner"`
	Permissions             permissions.ProjectPermissions      `json:"permissions"`
	OrganisationPermissions permissions.OrganisationPermissions `json:"organisationPermissions"`
	Accepted                bool                                `json:"accepted"`
	DateAccepted            *time.Time                          `json:"dateAccepted"`
}

type GetMembersResponseDTO struct {
	TeamID              uuid.UUID                `json:"teamId"`
	Members             []*TeamMemberResponseDTO `json:"members"`
	OrganisationMembers []*TeamMemberResponseDTO `json:"organisationMembers,omitempty"`
}

func ToMemberResponse(member *teams_models.TeamMember) *TeamMemberResponseDTO {
	response := &TeamMemberResponseDTO{
		ID:                      member.ID,
		TeamID:                  member.TeamID,
		UserID:                  member.UserID,
		Role:                    member.Role,
		IsOwner:                 member.IsOwner,
		Permissions:             member.Permissions,
		OrganisationPermissions: member.OrganisationPermissions,
		Accepted:                member.Accepted,
		DateAccepted:            member.DateAccepted,
	}

	if member.User != nil {
		response.Username = member.User.Username
	}

	return response
}

// ToMemberResponses drops pending members unless includePending is set.
func ToMemberResponses(members []*teams_models.TeamMember, includePending bool) []*TeamMemberResponseDTO {
	responses := make([]*TeamMemberResponseDTO, 0, len(members))

	for _, member := range members {
		if !member.Accepted && !includePending {
			continue
		}

		responses = append(responses, ToMemberResponse(member))
	}

	return responses
}

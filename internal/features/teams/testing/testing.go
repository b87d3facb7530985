package teams_testing

import (
	"net/http"
	"testing"

	teams_dto "crmm/internal/features/teams/dto"
	teams_models "crmm/internal/features/teams/models"
	teams_services "crmm/internal/features/teams/services"
	users_dto "crmm/internal/features/users/dto"
	test_utils "crmm/internal/util/testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func InviteMember(
	t *testing.T,
	router *gin.Engine,
	teamID uuid.UUID,
	inviter *users_dto.SignInResponseDTO,
	invitee *users_dto.SignInResponseDTO,
) *teams_dto.TeamMemberResponseDTO {
	var member teams_dto.TeamMemberResponseDTO
	test_utils.MakePostRequestAndUnmarshal(
		t,
		router,
		"/api/v1/teams/"+teamID.String()+"/invite",
		"Bearer "+inviter.Token,
		teams_dto.InviteMemberRequestDTO{UserSlug: invitee.Username},
		http.StatusOK,
		&member,
	)

	return &member
}

// AddAcceptedMember invites invitee and accepts on their behalf.
func AddAcceptedMember(
	t *testing.T,
	router *gin.Engine,
	teamID uuid.UUID,
	inviter *users_dto.SignInResponseDTO,
	invitee *users_dto.SignInResponseDTO,
) *teams_dto.TeamMemberResponseDTO {
	member := InviteMember(t, router, teamID, inviter, invitee)
	if !member.Accepted {
		test_utils.MakePatchRequest(t, router, "/api/v1/teams/"+teamID.String()+"/invite", "Bearer "+invitee.Token, nil, http.StatusOK)
	}

	return member
}

func EditMember(
	t *testing.T,
	router *gin.Engine,
	teamID uuid.UUID,
	memberID uuid.UUID,
	editor *users_dto.SignInResponseDTO,
	request teams_dto.EditMemberRequestDTO,
	expectedStatus int,
) *test_utils.TestResponse {
	return test_utils.MakePatchRequest(
		t,
		router,
		"/api/v1/teams/"+teamID.String()+"/members/"+memberID.String(),
		"Bearer "+editor.Token,
		request,
		expectedStatus,
	)
}

func GetMembers(
	t *testing.T,
	router *gin.Engine,
	teamID uuid.UUID,
	requester *users_dto.SignInResponseDTO,
) *teams_dto.GetMembersResponseDTO {
	var response teams_dto.GetMembersResponseDTO
	test_utils.MakeGetRequestAndUnmarshal(
		t,
		router,
		"/api/v1/teams/"+teamID.String()+"/members",
		"Bearer "+requester.Token,
		http.StatusOK,
		&response,
	)

	return &response
}

// GetStoredMembers reads the team straight from the database, pending members
// included.
func GetStoredMembers(t *testing.T, teamID uuid.UUID) []*teams_models.TeamMember {
	members, err := teams_services.GetTeamService().GetTeamMembers(nil, teamID)
	require.NoError(t, err)

	return members
}

func CountOwners(members []*teams_models.TeamMember) int {
	owners := 0
	for _, member := range members {
		if member.IsOwner {
			owners++
		}
	}

	return owners
}

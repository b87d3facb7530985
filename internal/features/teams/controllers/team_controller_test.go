package teams_controllers

import (
	"errors"
	"net/http"
	"testing"

	"crmm/internal/features/notifications"
	organisations_controllers "crmm/internal/features/organisations/controllers"
	organisations_testing "crmm/internal/features/organisations/testing"
	"crmm/internal/features/permissions"
	projects_controllers "crmm/internal/features/projects/controllers"
	projects_dto "crmm/internal/features/projects/dto"
	projects_enums "crmm/internal/features/projects/enums"
	projects_testing "crmm/internal/features/projects/testing"
	teams_dto "crmm/internal/features/teams/dto"
	teams_enums "crmm/internal/features/teams/enums"
	teams_models "crmm/internal/features/teams/models"
	teams_testing "crmm/internal/features/teams/testing"
	users_enums "crmm/internal/features/users/enums"
	users_testing "crmm/internal/features/users/testing"
	"crmm/internal/storage"
	test_utils "crmm/internal/util/testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_InviteMember_CreatesPendingMemberAndNotification(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	invitee := users_testing.CreateTestUser(users_enums.UserRoleUser)
	outsider := users_testing.CreateTestUser(users_enums.UserRoleUser)

	project := projects_testing.CreateTestProject("Invites", owner, router)

	member := teams_testing.InviteMember(t, router, project.TeamID, owner, invitee)
	assert.False(t, member.Accepted)
	assert.False(t, member.IsOwner)
	assert.Equal(t, teams_enums.MemberRoleMember, member.Role)
	assert.Equal(t, invitee.UserID, member.UserID)

	ownerView := teams_testing.GetMembers(t, router, project.TeamID, owner)
	assert.Len(t, ownerView.Members, 2)

	outsiderView := teams_testing.GetMembers(t, router, project.TeamID, outsider)
	require.Len(t, outsiderView.Members, 1)
	assert.Equal(t, owner.UserID, outsiderView.Members[0].UserID)

	var inbox notifications.GetNotificationsResponseDTO
	test_utils.MakeGetRequestAndUnmarshal(t, router, "/api/v1/notifications", "Bearer "+invitee.Token, http.StatusOK, &inbox)
	require.Len(t, inbox.Notifications, 1)
	assert.Equal(t, notifications.NotificationTypeTeamInvite, inbox.Notifications[0].Type)
	assert.Equal(t, project.TeamID, inbox.Notifications[0].Body.Data().TeamID)
	assert.Equal(t, owner.UserID, inbox.Notifications[0].Body.Data().InvitedBy)
}

func Test_InviteMember_RejectsDuplicatesUnknownUsersAndOutsiders(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	invitee := users_testing.CreateTestUser(users_enums.UserRoleUser)
	outsider := users_testing.CreateTestUser(users_enums.UserRoleUser)

	project := projects_testing.CreateTestProject("Guarded invites", owner, router)
	url := "/api/v1/teams/" + project.TeamID.String() + "/invite"

	teams_testing.InviteMember(t, router, project.TeamID, owner, invitee)

	resp := test_utils.MakePostRequest(t, router, url, "Bearer "+owner.Token,
		teams_dto.InviteMemberRequestDTO{UserSlug: invitee.Username}, http.StatusBadRequest)
	assert.Contains(t, string(resp.Body), "has already been invited to this team")

	test_utils.MakePostRequest(t, router, url, "Bearer "+owner.Token,
		teams_dto.InviteMemberRequestDTO{UserSlug: projects_testing.UniqueSlug("ghost")}, http.StatusNotFound)

	resp = test_utils.MakePostRequest(t, router, url, "Bearer "+outsider.Token,
		teams_dto.InviteMemberRequestDTO{UserSlug: outsider.Username}, http.StatusForbidden)
	assert.Contains(t, string(resp.Body), "You don't have access to manage member invites")

	test_utils.MakePostRequest(t, router, "/api/v1/teams/"+uuid.New().String()+"/invite", "Bearer "+owner.Token,
		teams_dto.InviteMemberRequestDTO{UserSlug: invitee.Username}, http.StatusNotFound)
}

func Test_AcceptInvite_MemberBecomesAccepted(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	invitee := users_testing.CreateTestUser(users_enums.UserRoleUser)

	project := projects_testing.CreateTestProject("Accept", owner, router)
	url := "/api/v1/teams/" + project.TeamID.String() + "/invite"

	// no invite yet
	test_utils.MakePatchRequest(t, router, url, "Bearer "+invitee.Token, nil, http.StatusBadRequest)

	teams_testing.InviteMember(t, router, project.TeamID, owner, invitee)
	test_utils.MakePatchRequest(t, router, url, "Bearer "+invitee.Token, nil, http.StatusOK)

	member := teams_models.FindMember(invitee.UserID, teams_testing.GetStoredMembers(t, project.TeamID))
	require.NotNil(t, member)
	assert.True(t, member.Accepted)
	assert.NotNil(t, member.DateAccepted)

	// accepting twice is an invalid attempt
	test_utils.MakePatchRequest(t, router, url, "Bearer "+invitee.Token, nil, http.StatusBadRequest)

	var inbox notifications.GetNotificationsResponseDTO
	test_utils.MakeGetRequestAndUnmarshal(t, router, "/api/v1/notifications", "Bearer "+invitee.Token, http.StatusOK, &inbox)
	assert.Equal(t, 0, inbox.UnreadCount)
}

func Test_DeclineInvite_SecondDeclineReturnsNotFound(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	invitee := users_testing.CreateTestUser(users_enums.UserRoleUser)

	project := projects_testing.CreateTestProject("Decline", owner, router)
	url := "/api/v1/teams/" + project.TeamID.String() + "/invite"

	teams_testing.InviteMember(t, router, project.TeamID, owner, invitee)

	test_utils.MakeDeleteRequest(t, router, url, "Bearer "+invitee.Token, http.StatusOK)
	assert.Nil(t, teams_models.FindMember(invitee.UserID, teams_testing.GetStoredMembers(t, project.TeamID)))

	resp := test_utils.MakeDeleteRequest(t, router, url, "Bearer "+invitee.Token, http.StatusNotFound)
	assert.Contains(t, string(resp.Body), "Invite not found")

	// the invite can be sent again after a decline
	teams_testing.InviteMember(t, router, project.TeamID, owner, invitee)
}

func Test_DeclineInvite_WhenAlreadyAccepted_ReturnsNotFound(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	member := users_testing.CreateTestUser(users_enums.UserRoleUser)

	project := projects_testing.CreateTestProject("Decline accepted", owner, router)
	teams_testing.AddAcceptedMember(t, router, project.TeamID, owner, member)

	test_utils.MakeDeleteRequest(t, router, "/api/v1/teams/"+project.TeamID.String()+"/invite", "Bearer "+member.Token, http.StatusNotFound)
	assert.NotNil(t, teams_models.FindMember(member.UserID, teams_testing.GetStoredMembers(t, project.TeamID)))
}

func Test_EditMember_WhenGrantingUnheldPermission_ReturnsForbidden(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	editor := users_testing.CreateTestUser(users_enums.UserRoleUser)
	target := users_testing.CreateTestUser(users_enums.UserRoleUser)

	project := projects_testing.CreateTestProject("Escalation", owner, router)
	editorMembership := teams_testing.AddAcceptedMember(t, router, project.TeamID, owner, editor)
	targetMembership := teams_testing.AddAcceptedMember(t, router, project.TeamID, owner, target)

	teams_testing.EditMember(t, router, project.TeamID, editorMembership.ID, owner, teams_dto.EditMemberRequestDTO{
		Role:        "Maintainer",
		Permissions: (permissions.ProjectEditMember | permissions.ProjectEditDetails).Names(),
	}, http.StatusOK)

	resp := teams_testing.EditMember(t, router, project.TeamID, targetMembership.ID, editor, teams_dto.EditMemberRequestDTO{
		Role:        "Helper",
		Permissions: (permissions.ProjectEditDetails | permissions.ProjectDeleteProject).Names(),
	}, http.StatusForbidden)
	assert.Contains(t, string(resp.Body), "You don't have access to add permissions to the member")

	stored := teams_models.FindMember(target.UserID, teams_testing.GetStoredMembers(t, project.TeamID))
	require.NotNil(t, stored)
	assert.Equal(t, permissions.ProjectPermissions(0), stored.Permissions)

	teams_testing.EditMember(t, router, project.TeamID, targetMembership.ID, editor, teams_dto.EditMemberRequestDTO{
		Role:        "Helper",
		Permissions: permissions.ProjectEditDetails.Names(),
	}, http.StatusOK)

	stored = teams_models.FindMember(target.UserID, teams_testing.GetStoredMembers(t, project.TeamID))
	require.NotNil(t, stored)
	assert.Equal(t, permissions.ProjectEditDetails, stored.Permissions)
	assert.Equal(t, "Helper", stored.Role)
}

func Test_EditMember_RemovingUnheldPermission_Allowed(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	editor := users_testing.CreateTestUser(users_enums.UserRoleUser)
	target := users_testing.CreateTestUser(users_enums.UserRoleUser)

	project := projects_testing.CreateTestProject("Downgrade", owner, router)
	editorMembership := teams_testing.AddAcceptedMember(t, router, project.TeamID, owner, editor)
	targetMembership := teams_testing.AddAcceptedMember(t, router, project.TeamID, owner, target)

	teams_testing.EditMember(t, router, project.TeamID, editorMembership.ID, owner, teams_dto.EditMemberRequestDTO{
		Role:        "Maintainer",
		Permissions: permissions.ProjectEditMember.Names(),
	}, http.StatusOK)
	teams_testing.EditMember(t, router, project.TeamID, targetMembership.ID, owner, teams_dto.EditMemberRequestDTO{
		Role:        "Publisher",
		Permissions: (permissions.ProjectUploadVersion | permissions.ProjectDeleteVersion).Names(),
	}, http.StatusOK)

	// only permissions being added are checked
	teams_testing.EditMember(t, router, project.TeamID, targetMembership.ID, editor, teams_dto.EditMemberRequestDTO{
		Role:        "Publisher",
		Permissions: permissions.ProjectUploadVersion.Names(),
	}, http.StatusOK)

	stored := teams_models.FindMember(target.UserID, teams_testing.GetStoredMembers(t, project.TeamID))
	require.NotNil(t, stored)
	assert.Equal(t, permissions.ProjectUploadVersion, stored.Permissions)
}

func Test_EditMember_WithDefaultPermissionsCapability_GrantsProjectPermissions(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	manager := users_testing.CreateTestUser(users_enums.UserRoleUser)
	target := users_testing.CreateTestUser(users_enums.UserRoleUser)

	organisation := organisations_testing.CreateTestOrganisation(t, router, "Defaults", owner)
	managerMembership := teams_testing.AddAcceptedMember(t, router, organisation.TeamID, owner, manager)
	targetMembership := teams_testing.AddAcceptedMember(t, router, organisation.TeamID, owner, target)

	teams_testing.EditMember(t, router, organisation.TeamID, managerMembership.ID, owner, teams_dto.EditMemberRequestDTO{
		Role:                    "Manager",
		OrganisationPermissions: (permissions.OrgEditMember | permissions.OrgEditMemberDefaultPermissions).Names(),
	}, http.StatusOK)

	teams_testing.EditMember(t, router, organisation.TeamID, targetMembership.ID, manager, teams_dto.EditMemberRequestDTO{
		Role:        "Release manager",
		Permissions: (permissions.ProjectUploadVersion | permissions.ProjectDeleteProject).Names(),
	}, http.StatusOK)

	stored := teams_models.FindMember(target.UserID, teams_testing.GetStoredMembers(t, organisation.TeamID))
	require.NotNil(t, stored)
	assert.Equal(t, permissions.ProjectUploadVersion|permissions.ProjectDeleteProject, stored.Permissions)

	// organisation permissions stay guarded
	resp := teams_testing.EditMember(t, router, organisation.TeamID, targetMembership.ID, manager, teams_dto.EditMemberRequestDTO{
		Role:                    "Release manager",
		Permissions:             (permissions.ProjectUploadVersion | permissions.ProjectDeleteProject).Names(),
		OrganisationPermissions: permissions.OrgDeleteOrganisation.Names(),
	}, http.StatusForbidden)
	assert.Contains(t, string(resp.Body), "You don't have access to add permissions to the member")
}

func Test_EditMember_WithoutDefaultPermissionsCapability_ProjectPermissionsGuarded(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	manager := users_testing.CreateTestUser(users_enums.UserRoleUser)
	target := users_testing.CreateTestUser(users_enums.UserRoleUser)

	organisation := organisations_testing.CreateTestOrganisation(t, router, "No defaults", owner)
	managerMembership := teams_testing.AddAcceptedMember(t, router, organisation.TeamID, owner, manager)
	targetMembership := teams_testing.AddAcceptedMember(t, router, organisation.TeamID, owner, target)

	teams_testing.EditMember(t, router, organisation.TeamID, managerMembership.ID, owner, teams_dto.EditMemberRequestDTO{
		Role:                    "Manager",
		OrganisationPermissions: permissions.OrgEditMember.Names(),
	}, http.StatusOK)

	teams_testing.EditMember(t, router, organisation.TeamID, targetMembership.ID, manager, teams_dto.EditMemberRequestDTO{
		Role:        "Release manager",
		Permissions: permissions.ProjectDeleteProject.Names(),
	}, http.StatusForbidden)
}

func Test_EditMember_WithUnknownPermissionOrWithoutAccess_Rejected(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	member := users_testing.CreateTestUser(users_enums.UserRoleUser)

	project := projects_testing.CreateTestProject("Validation", owner, router)
	membership := teams_testing.AddAcceptedMember(t, router, project.TeamID, owner, member)

	teams_testing.EditMember(t, router, project.TeamID, membership.ID, owner, teams_dto.EditMemberRequestDTO{
		Role:        "Member",
		Permissions: []string{"launch_rockets"},
	}, http.StatusBadRequest)

	resp := teams_testing.EditMember(t, router, project.TeamID, membership.ID, member, teams_dto.EditMemberRequestDTO{
		Role: "Member",
	}, http.StatusForbidden)
	assert.Contains(t, string(resp.Body), "You don't have access to edit members")

	teams_testing.EditMember(t, router, project.TeamID, uuid.New(), owner, teams_dto.EditMemberRequestDTO{
		Role: "Member",
	}, http.StatusNotFound)
}

func Test_TransferOwnership_LeavesExactlyOneOwner(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	newOwner := users_testing.CreateTestUser(users_enums.UserRoleUser)

	project := projects_testing.CreateTestProject("Transfer", owner, router)
	teams_testing.AddAcceptedMember(t, router, project.TeamID, owner, newOwner)

	transferOwnership(t, router, project.TeamID, owner.Token, newOwner.UserID, http.StatusOK)

	members := teams_testing.GetStoredMembers(t, project.TeamID)
	assert.Equal(t, 1, teams_testing.CountOwners(members))

	promoted := teams_models.FindMember(newOwner.UserID, members)
	require.NotNil(t, promoted)
	assert.True(t, promoted.IsOwner)
	assert.Equal(t, teams_enums.MemberRoleOwner, promoted.Role)

	demoted := teams_models.FindMember(owner.UserID, members)
	require.NotNil(t, demoted)
	assert.False(t, demoted.IsOwner)
	assert.Equal(t, teams_enums.MemberRoleMember, demoted.Role)
	assert.Equal(t, permissions.ProjectPermissions(0), demoted.Permissions)

	// the former owner lost root access
	transferOwnership(t, router, project.TeamID, owner.Token, owner.UserID, http.StatusForbidden)
	test_utils.MakeDeleteRequest(t, router, "/api/v1/projects/"+project.ID.String(), "Bearer "+owner.Token, http.StatusForbidden)
}

func Test_TransferOwnership_RejectsPendingAndUnknownTargets(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	pending := users_testing.CreateTestUser(users_enums.UserRoleUser)

	project := projects_testing.CreateTestProject("Transfer guard", owner, router)
	teams_testing.InviteMember(t, router, project.TeamID, owner, pending)

	transferOwnership(t, router, project.TeamID, owner.Token, pending.UserID, http.StatusNotFound)
	transferOwnership(t, router, project.TeamID, owner.Token, uuid.New(), http.StatusNotFound)
	transferOwnership(t, router, project.TeamID, owner.Token, owner.UserID, http.StatusBadRequest)

	assert.Equal(t, 1, teams_testing.CountOwners(teams_testing.GetStoredMembers(t, project.TeamID)))
}

func Test_TransferOwnership_WhenActorIsAdmin_Allowed(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	member := users_testing.CreateTestUser(users_enums.UserRoleUser)
	admin := users_testing.CreateTestUser(users_enums.UserRoleAdmin)
	moderator := users_testing.CreateTestUser(users_enums.UserRoleModerator)

	project := projects_testing.CreateTestProject("Admin transfer", owner, router)
	teams_testing.AddAcceptedMember(t, router, project.TeamID, owner, member)

	transferOwnership(t, router, project.TeamID, moderator.Token, member.UserID, http.StatusForbidden)
	transferOwnership(t, router, project.TeamID, admin.Token, member.UserID, http.StatusOK)

	members := teams_testing.GetStoredMembers(t, project.TeamID)
	assert.Equal(t, 1, teams_testing.CountOwners(members))
	assert.Equal(t, member.UserID, teams_models.FindOwner(members).UserID)
}

func Test_TransferOwnership_WhenPromotionFails_OriginalOwnerKept(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	member := users_testing.CreateTestUser(users_enums.UserRoleUser)

	project := projects_testing.CreateTestProject("Failed transfer", owner, router)
	teams_testing.AddAcceptedMember(t, router, project.TeamID, owner, member)

	// the demotion goes through, the promotion that follows it is rejected
	callbacks := storage.GetDb().Callback().Update()
	require.NoError(t, callbacks.Before("gorm:update").Register("reject_owner_promotion", func(db *gorm.DB) {
		promoted, ok := db.Statement.Dest.(*teams_models.TeamMember)
		if ok && promoted.TeamID == project.TeamID && promoted.IsOwner {
			_ = db.AddError(errors.New("owner promotion rejected"))
		}
	}))
	t.Cleanup(func() {
		_ = callbacks.Remove("reject_owner_promotion")
	})

	transferOwnership(t, router, project.TeamID, owner.Token, member.UserID, http.StatusInternalServerError)

	members := teams_testing.GetStoredMembers(t, project.TeamID)
	assert.Equal(t, 1, teams_testing.CountOwners(members))

	currentOwner := teams_models.FindOwner(members)
	require.NotNil(t, currentOwner)
	assert.Equal(t, owner.UserID, currentOwner.UserID)
	assert.Equal(t, teams_enums.MemberRoleOwner, currentOwner.Role)

	notPromoted := teams_models.FindMember(member.UserID, members)
	require.NotNil(t, notPromoted)
	assert.False(t, notPromoted.IsOwner)
}

func Test_TransferOwnership_OnOrganisationProjectTeam_ReturnsBadRequest(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	member := users_testing.CreateTestUser(users_enums.UserRoleUser)

	organisation := organisations_testing.CreateTestOrganisation(t, router, "Owned upstream", owner)
	teams_testing.AddAcceptedMember(t, router, organisation.TeamID, owner, member)

	project := projects_testing.CreateTestProject("Owned upstream project", owner, router)
	organisations_testing.AddProjectToOrganisation(t, router, organisation.ID, project.ID, owner)
	overrideMember(t, router, project.TeamID, owner.Token, member.UserID, nil, http.StatusOK)

	resp := transferOwnership(t, router, project.TeamID, owner.Token, member.UserID, http.StatusBadRequest)
	assert.Contains(t, string(resp.Body), "The owner of this team was not found")

	assert.Equal(t, 0, teams_testing.CountOwners(teams_testing.GetStoredMembers(t, project.TeamID)))
}

func Test_LeaveTeam_OwnerCannotLeaveMemberCan(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	member := users_testing.CreateTestUser(users_enums.UserRoleUser)
	outsider := users_testing.CreateTestUser(users_enums.UserRoleUser)

	project := projects_testing.CreateTestProject("Leave", owner, router)
	teams_testing.AddAcceptedMember(t, router, project.TeamID, owner, member)

	url := "/api/v1/teams/" + project.TeamID.String() + "/leave"

	resp := test_utils.MakePostRequest(t, router, url, "Bearer "+owner.Token, nil, http.StatusBadRequest)
	assert.Contains(t, string(resp.Body), "You can't leave the team while you're the owner")

	test_utils.MakePostRequest(t, router, url, "Bearer "+outsider.Token, nil, http.StatusBadRequest)

	test_utils.MakePostRequest(t, router, url, "Bearer "+member.Token, nil, http.StatusOK)

	members := teams_testing.GetStoredMembers(t, project.TeamID)
	assert.Len(t, members, 1)
	assert.Equal(t, 1, teams_testing.CountOwners(members))
}

func Test_LeaveOrganisation_RemovesMemberFromOrganisationProjects(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	member := users_testing.CreateTestUser(users_enums.UserRoleUser)

	organisation := organisations_testing.CreateTestOrganisation(t, router, "Leaving", owner)
	teams_testing.AddAcceptedMember(t, router, organisation.TeamID, owner, member)

	project := projects_testing.CreateTestProject("Leaving project", owner, router)
	organisations_testing.AddProjectToOrganisation(t, router, organisation.ID, project.ID, owner)
	overrideMember(t, router, project.TeamID, owner.Token, member.UserID, nil, http.StatusOK)

	// project teams of an organisation are left through the organisation
	resp := test_utils.MakePostRequest(t, router, "/api/v1/teams/"+project.TeamID.String()+"/leave", "Bearer "+member.Token, nil, http.StatusBadRequest)
	assert.Contains(t, string(resp.Body), "please leave the parent organization")

	test_utils.MakePostRequest(t, router, "/api/v1/teams/"+organisation.TeamID.String()+"/leave", "Bearer "+member.Token, nil, http.StatusOK)

	assert.Nil(t, teams_models.FindMember(member.UserID, teams_testing.GetStoredMembers(t, organisation.TeamID)))
	assert.Nil(t, teams_models.FindMember(member.UserID, teams_testing.GetStoredMembers(t, project.TeamID)))
}

func Test_RemoveMember_FromOrganisation_CascadesToProjectTeams(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	member := users_testing.CreateTestUser(users_enums.UserRoleUser)
	bystander := users_testing.CreateTestUser(users_enums.UserRoleUser)

	organisation := organisations_testing.CreateTestOrganisation(t, router, "Removal", owner)
	membership := teams_testing.AddAcceptedMember(t, router, organisation.TeamID, owner, member)
	teams_testing.AddAcceptedMember(t, router, organisation.TeamID, owner, bystander)

	firstProject := projects_testing.CreateTestProject("Removal 1", owner, router)
	secondProject := projects_testing.CreateTestProject("Removal 2", owner, router)
	organisations_testing.AddProjectToOrganisation(t, router, organisation.ID, firstProject.ID, owner)
	organisations_testing.AddProjectToOrganisation(t, router, organisation.ID, secondProject.ID, owner)

	overrideMember(t, router, firstProject.TeamID, owner.Token, member.UserID, permissions.ProjectEditDetails.Names(), http.StatusOK)
	overrideMember(t, router, secondProject.TeamID, owner.Token, member.UserID, nil, http.StatusOK)
	overrideMember(t, router, secondProject.TeamID, owner.Token, bystander.UserID, nil, http.StatusOK)

	test_utils.MakeDeleteRequest(
		t,
		router,
		"/api/v1/teams/"+organisation.TeamID.String()+"/members/"+membership.ID.String(),
		"Bearer "+owner.Token,
		http.StatusOK,
	)

	assert.Nil(t, teams_models.FindMember(member.UserID, teams_testing.GetStoredMembers(t, organisation.TeamID)))
	assert.Empty(t, teams_testing.GetStoredMembers(t, firstProject.TeamID))

	remaining := teams_testing.GetStoredMembers(t, secondProject.TeamID)
	require.Len(t, remaining, 1)
	assert.Equal(t, bystander.UserID, remaining[0].UserID)

	test_utils.MakeGetRequest(t, router, "/api/v1/projects/"+firstProject.ID.String(), "Bearer "+member.Token, http.StatusOK)
	test_utils.MakePutRequest(t, router, "/api/v1/projects/"+firstProject.ID.String(), "Bearer "+member.Token,
		projects_dto.UpdateProjectRequestDTO{
			Name:       "Hijacked",
			Slug:       firstProject.Slug,
			Visibility: projects_enums.ProjectVisibilityListed,
		}, http.StatusForbidden)
}

func Test_RemovePendingOrganisationMember_KeepsTheirProjectTeamRows(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	revoked := users_testing.CreateTestUser(users_enums.UserRoleUser)
	declining := users_testing.CreateTestUser(users_enums.UserRoleUser)

	organisation := organisations_testing.CreateTestOrganisation(t, router, "Pending removal", owner)
	revokedInvite := teams_testing.InviteMember(t, router, organisation.TeamID, owner, revoked)
	teams_testing.InviteMember(t, router, organisation.TeamID, owner, declining)

	project := projects_testing.CreateTestProject("Pending removal project", owner, router)
	organisations_testing.AddProjectToOrganisation(t, router, organisation.ID, project.ID, owner)

	// pending organisation members join the project team through its own invite
	revokedRow := teams_testing.AddAcceptedMember(t, router, project.TeamID, owner, revoked)
	decliningRow := teams_testing.AddAcceptedMember(t, router, project.TeamID, owner, declining)
	assert.False(t, revokedRow.Accepted)
	assert.False(t, decliningRow.Accepted)

	test_utils.MakeDeleteRequest(
		t,
		router,
		"/api/v1/teams/"+organisation.TeamID.String()+"/members/"+revokedInvite.ID.String(),
		"Bearer "+owner.Token,
		http.StatusOK,
	)
	test_utils.MakeDeleteRequest(
		t, router, "/api/v1/teams/"+organisation.TeamID.String()+"/invite", "Bearer "+declining.Token, http.StatusOK,
	)

	organisationMembers := teams_testing.GetStoredMembers(t, organisation.TeamID)
	assert.Nil(t, teams_models.FindMember(revoked.UserID, organisationMembers))
	assert.Nil(t, teams_models.FindMember(declining.UserID, organisationMembers))

	projectMembers := teams_testing.GetStoredMembers(t, project.TeamID)
	for _, userID := range []uuid.UUID{revoked.UserID, declining.UserID} {
		kept := teams_models.FindMember(userID, projectMembers)
		require.NotNil(t, kept)
		assert.True(t, kept.Accepted)
	}
}

func Test_RemoveMember_RejectsOwnerAndUnprivilegedActors(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	member := users_testing.CreateTestUser(users_enums.UserRoleUser)
	other := users_testing.CreateTestUser(users_enums.UserRoleUser)

	project := projects_testing.CreateTestProject("Removal guard", owner, router)
	teams_testing.AddAcceptedMember(t, router, project.TeamID, owner, member)
	otherMembership := teams_testing.AddAcceptedMember(t, router, project.TeamID, owner, other)

	ownerMember := teams_models.FindOwner(teams_testing.GetStoredMembers(t, project.TeamID))
	require.NotNil(t, ownerMember)

	membersURL := "/api/v1/teams/" + project.TeamID.String() + "/members/"

	resp := test_utils.MakeDeleteRequest(t, router, membersURL+ownerMember.ID.String(), "Bearer "+owner.Token, http.StatusBadRequest)
	assert.Contains(t, string(resp.Body), "You can't remove the owner of the team")

	resp = test_utils.MakeDeleteRequest(t, router, membersURL+otherMembership.ID.String(), "Bearer "+member.Token, http.StatusForbidden)
	assert.Contains(t, string(resp.Body), "You don't have access to remove members")

	test_utils.MakeDeleteRequest(t, router, membersURL+otherMembership.ID.String(), "Bearer "+owner.Token, http.StatusOK)
	test_utils.MakeDeleteRequest(t, router, membersURL+otherMembership.ID.String(), "Bearer "+owner.Token, http.StatusBadRequest)

	assert.Len(t, teams_testing.GetStoredMembers(t, project.TeamID), 2)
}

func Test_RemoveMember_PendingInvite_ClosesNotification(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	invitee := users_testing.CreateTestUser(users_enums.UserRoleUser)

	project := projects_testing.CreateTestProject("Revoke", owner, router)
	invite := teams_testing.InviteMember(t, router, project.TeamID, owner, invitee)

	test_utils.MakeDeleteRequest(
		t,
		router,
		"/api/v1/teams/"+project.TeamID.String()+"/members/"+invite.ID.String(),
		"Bearer "+owner.Token,
		http.StatusOK,
	)

	var inbox notifications.GetNotificationsResponseDTO
	test_utils.MakeGetRequestAndUnmarshal(t, router, "/api/v1/notifications", "Bearer "+invitee.Token, http.StatusOK, &inbox)
	assert.Equal(t, 0, inbox.UnreadCount)

	test_utils.MakeDeleteRequest(t, router, "/api/v1/teams/"+project.TeamID.String()+"/invite", "Bearer "+invitee.Token, http.StatusNotFound)
}

func Test_OverrideOrganisationMember_CreatesProjectLevelRow(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	member := users_testing.CreateTestUser(users_enums.UserRoleUser)
	pending := users_testing.CreateTestUser(users_enums.UserRoleUser)
	outsider := users_testing.CreateTestUser(users_enums.UserRoleUser)

	organisation := organisations_testing.CreateTestOrganisation(t, router, "Overrides", owner)
	teams_testing.AddAcceptedMember(t, router, organisation.TeamID, owner, member)
	teams_testing.InviteMember(t, router, organisation.TeamID, owner, pending)

	project := projects_testing.CreateTestProject("Overridden", owner, router)
	organisations_testing.AddProjectToOrganisation(t, router, organisation.ID, project.ID, owner)

	// without an override the organisation member has no project permissions
	update := projects_dto.UpdateProjectRequestDTO{
		Name:       "Renamed by member",
		Slug:       project.Slug,
		Visibility: projects_enums.ProjectVisibilityListed,
	}
	test_utils.MakePutRequest(t, router, "/api/v1/projects/"+project.ID.String(), "Bearer "+member.Token, update, http.StatusForbidden)

	var override teams_dto.TeamMemberResponseDTO
	test_utils.MakePostRequestAndUnmarshal(
		t,
		router,
		"/api/v1/teams/"+project.TeamID.String()+"/members",
		"Bearer "+owner.Token,
		teams_dto.OverrideOrgMemberRequestDTO{
			UserID:      member.UserID,
			Role:        "Project editor",
			Permissions: permissions.ProjectEditDetails.Names(),
		},
		http.StatusOK,
		&override,
	)
	assert.True(t, override.Accepted)
	assert.False(t, override.IsOwner)
	assert.Equal(t, permissions.ProjectEditDetails, override.Permissions)

	test_utils.MakePutRequest(t, router, "/api/v1/projects/"+project.ID.String(), "Bearer "+member.Token, update, http.StatusOK)

	// a second override, a pending member and an outsider are all rejected
	overrideMember(t, router, project.TeamID, owner.Token, member.UserID, nil, http.StatusBadRequest)
	overrideMember(t, router, project.TeamID, owner.Token, pending.UserID, nil, http.StatusBadRequest)
	overrideMember(t, router, project.TeamID, owner.Token, outsider.UserID, nil, http.StatusNotFound)
}

func Test_OverrideOrganisationMember_WhenProjectHasNoOrganisation_ReturnsBadRequest(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	other := users_testing.CreateTestUser(users_enums.UserRoleUser)

	project := projects_testing.CreateTestProject("Standalone", owner, router)

	resp := overrideMember(t, router, project.TeamID, owner.Token, other.UserID, nil, http.StatusBadRequest)
	assert.Contains(t, string(resp.Body), "This project is not part of an organisation")
}

func Test_OverrideOrganisationMember_NonRootActorCannotGrantPermissions(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	manager := users_testing.CreateTestUser(users_enums.UserRoleUser)
	member := users_testing.CreateTestUser(users_enums.UserRoleUser)

	organisation := organisations_testing.CreateTestOrganisation(t, router, "Delegated", owner)
	managerMembership := teams_testing.AddAcceptedMember(t, router, organisation.TeamID, owner, manager)
	teams_testing.AddAcceptedMember(t, router, organisation.TeamID, owner, member)
	teams_testing.EditMember(t, router, organisation.TeamID, managerMembership.ID, owner, teams_dto.EditMemberRequestDTO{
		Role:        "Manager",
		Permissions: permissions.ProjectEditMember.Names(),
	}, http.StatusOK)

	project := projects_testing.CreateTestProject("Delegated project", owner, router)
	organisations_testing.AddProjectToOrganisation(t, router, organisation.ID, project.ID, owner)

	overrideMember(t, router, project.TeamID, manager.Token, member.UserID, permissions.ProjectEditDetails.Names(), http.StatusForbidden)
	overrideMember(t, router, project.TeamID, manager.Token, member.UserID, nil, http.StatusOK)
}

func Test_OrganisationMemberInvitedToProject_JoinsWithoutInvite(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	member := users_testing.CreateTestUser(users_enums.UserRoleUser)

	organisation := organisations_testing.CreateTestOrganisation(t, router, "Direct join", owner)
	teams_testing.AddAcceptedMember(t, router, organisation.TeamID, owner, member)

	project := projects_testing.CreateTestProject("Direct join project", owner, router)
	organisations_testing.AddProjectToOrganisation(t, router, organisation.ID, project.ID, owner)

	joined := teams_testing.InviteMember(t, router, project.TeamID, owner, member)
	assert.True(t, joined.Accepted)

	// the organisation owner cannot be overridden through an invite
	test_utils.MakePostRequest(t, router, "/api/v1/teams/"+project.TeamID.String()+"/invite", "Bearer "+owner.Token,
		teams_dto.InviteMemberRequestDTO{UserSlug: owner.Username}, http.StatusBadRequest)
}

func Test_GetMembers_PrivateProjectHiddenFromOutsiders(t *testing.T) {
	router := createRouter()
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	outsider := users_testing.CreateTestUser(users_enums.UserRoleUser)
	admin := users_testing.CreateTestUser(users_enums.UserRoleAdmin)

	project := projects_testing.CreateTestProjectWithVisibility("Hidden team", projects_enums.ProjectVisibilityPrivate, owner, router)
	url := "/api/v1/teams/" + project.TeamID.String() + "/members"

	test_utils.MakeGetRequest(t, router, url, "Bearer "+outsider.Token, http.StatusNotFound)
	test_utils.MakeGetRequest(t, router, url, "Bearer "+admin.Token, http.StatusOK)
	test_utils.MakeGetRequest(t, router, "/api/v1/teams/not-a-uuid/members", "Bearer "+owner.Token, http.StatusBadRequest)
}

func createRouter() *gin.Engine {
	return projects_testing.CreateTestRouter(
		GetTeamController(),
		projects_controllers.GetProjectController(),
		organisations_controllers.GetOrganisationController(),
		notifications.GetNotificationController(),
	)
}

func transferOwnership(
	t *testing.T,
	router *gin.Engine,
	teamID uuid.UUID,
	token string,
	userID uuid.UUID,
	expectedStatus int,
) *test_utils.TestResponse {
	return test_utils.MakePatchRequest(
		t,
		router,
		"/api/v1/teams/"+teamID.String()+"/owner",
		"Bearer "+token,
		teams_dto.TransferOwnershipRequestDTO{UserID: userID},
		expectedStatus,
	)
}

func overrideMember(
	t *testing.T,
	router *gin.Engine,
	teamID uuid.UUID,
	token string,
	userID uuid.UUID,
	projectPermissions []string,
	expectedStatus int,
) *test_utils.TestResponse {
	return test_utils.MakePostRequest(
		t,
		router,
		"/api/v1/teams/"+teamID.String()+"/members",
		"Bearer "+token,
		teams_dto.OverrideOrgMemberRequestDTO{
			UserID:      userID,
			Role:        "Contributor",
			Permissions: projectPermissions,
		},
		expectedStatus,
	)
}

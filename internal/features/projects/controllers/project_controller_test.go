package projects_controllers

import (
	"net/http"
	"testing"

	audit_logs "crmm/internal/features/audit_logs"
	projects_dto "crmm/internal/features/projects/dto"
	projects_enums "crmm/internal/features/projects/enums"
	projects_services "crmm/internal/features/projects/services"
	projects_testing "crmm/internal/features/projects/testing"
	teams_enums "crmm/internal/features/teams/enums"
	users_dto "crmm/internal/features/users/dto"
	users_enums "crmm/internal/features/users/enums"
	users_models "crmm/internal/features/users/models"
	users_services "crmm/internal/features/users/services"
	users_testing "crmm/internal/features/users/testing"
	test_utils "crmm/internal/util/testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func Test_CreateProject_WhenMemberProjectsEnabled_ProjectCreatedWithOwnerTeam(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	users_testing.EnableMemberProjectCreation()
	defer users_testing.ResetSettingsToDefaults()

	user := users_testing.CreateTestUser(users_enums.UserRoleUser)
	projectSlug := projects_testing.UniqueSlug("Create")

	request := projects_dto.CreateProjectRequestDTO{
		Name:       "Test Project",
		Slug:       projectSlug,
		Visibility: projects_enums.ProjectVisibilityListed,
	}

	var response projects_dto.ProjectResponseDTO
	test_utils.MakePostRequestAndUnmarshal(
		t,
		router,
		"/api/v1/projects",
		"Bearer "+user.Token,
		request,
		http.StatusOK,
		&response,
	)

	assert.Equal(t, "Test Project", response.Name)
	assert.NotEqual(t, uuid.Nil, response.ID)
	assert.NotEqual(t, uuid.Nil, response.TeamID)
	assert.Equal(t, projects_enums.ProjectStatusDraft, response.Status)

	// slugs are stored lower-case
	assert.NotEqual(t, projectSlug, response.Slug)
	assert.Equal(t, "create-", response.Slug[:7])

	fetched := projects_testing.GetProject(response.ID, user.Token, router)
	if assert.NotNil(t, fetched.CurrentMember) {
		assert.True(t, fetched.CurrentMember.IsOwner)
		assert.True(t, fetched.CurrentMember.Accepted)
		assert.Equal(t, teams_enums.MemberRoleOwner, fetched.CurrentMember.Role)
	}
}

func Test_CreateProject_WhenMemberProjectsDisabled_ReturnsForbidden(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	users_testing.DisableMemberProjectCreation()
	defer users_testing.ResetSettingsToDefaults()

	user := users_testing.CreateTestUser(users_enums.UserRoleUser)

	request := projects_dto.CreateProjectRequestDTO{
		Name:       "Forbidden Project",
		Slug:       projects_testing.UniqueSlug("forbidden"),
		Visibility: projects_enums.ProjectVisibilityListed,
	}

	resp := test_utils.MakePostRequest(t, router, "/api/v1/projects", "Bearer "+user.Token, request, http.StatusForbidden)
	assert.Contains(t, string(resp.Body), "insufficient permissions to create projects")
}

func Test_CreateProject_WhenAdminAndMemberProjectsDisabled_ProjectCreated(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	users_testing.DisableMemberProjectCreation()
	defer users_testing.ResetSettingsToDefaults()

	admin := users_testing.CreateTestUser(users_enums.UserRoleAdmin)

	request := projects_dto.CreateProjectRequestDTO{
		Name:       "Admin Project",
		Slug:       projects_testing.UniqueSlug("admin"),
		Visibility: projects_enums.ProjectVisibilityListed,
	}

	var response projects_dto.ProjectResponseDTO
	test_utils.MakePostRequestAndUnmarshal(t, router, "/api/v1/projects", "Bearer "+admin.Token, request, http.StatusOK, &response)
	assert.Equal(t, "Admin Project", response.Name)
}

func Test_CreateProject_WithTakenSlug_ReturnsBadRequest(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	user := users_testing.CreateTestUser(users_enums.UserRoleUser)

	project := projects_testing.CreateTestProject("First", user, router)

	request := projects_dto.CreateProjectRequestDTO{
		Name:       "Second",
		Slug:       project.Slug,
		Visibility: projects_enums.ProjectVisibilityListed,
	}

	resp := test_utils.MakePostRequest(t, router, "/api/v1/projects", "Bearer "+user.Token, request, http.StatusBadRequest)
	assert.Contains(t, string(resp.Body), "Slug already taken")
}

func Test_CreateProject_WithInvalidSlugOrVisibility_ReturnsBadRequest(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	user := users_testing.CreateTestUser(users_enums.UserRoleUser)

	test_utils.MakePostRequest(t, router, "/api/v1/projects", "Bearer "+user.Token, projects_dto.CreateProjectRequestDTO{
		Name:       "Bad slug",
		Slug:       "has spaces!",
		Visibility: projects_enums.ProjectVisibilityListed,
	}, http.StatusBadRequest)

	test_utils.MakePostRequest(t, router, "/api/v1/projects", "Bearer "+user.Token, projects_dto.CreateProjectRequestDTO{
		Name:       "Bad visibility",
		Slug:       projects_testing.UniqueSlug("visibility"),
		Visibility: "secret",
	}, http.StatusBadRequest)
}

func Test_CreateProject_WithInvalidJSON_ReturnsBadRequest(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	user := users_testing.CreateTestUser(users_enums.UserRoleUser)

	resp := test_utils.MakeRequest(t, router, test_utils.RequestOptions{
		Method:         http.MethodPost,
		URL:            "/api/v1/projects",
		Body:           "invalid json",
		AuthToken:      "Bearer " + user.Token,
		ExpectedStatus: http.StatusBadRequest,
	})
	assert.Contains(t, string(resp.Body), "Invalid request format")
}

func Test_CreateProject_WithoutAuthToken_ReturnsUnauthorized(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())

	request := projects_dto.CreateProjectRequestDTO{Name: "Test Project"}
	test_utils.MakePostRequest(t, router, "/api/v1/projects", "", request, http.StatusUnauthorized)
}

func Test_GetUserProjects_WhenUserHasProjects_ReturnsOnlyOwnProjects(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	user := users_testing.CreateTestUser(users_enums.UserRoleUser)
	otherUser := users_testing.CreateTestUser(users_enums.UserRoleUser)

	project1 := projects_testing.CreateTestProject("Project 1", user, router)
	project2 := projects_testing.CreateTestProject("Project 2", user, router)
	foreignProject := projects_testing.CreateTestProject("Foreign", otherUser, router)

	var response projects_dto.ListProjectsResponseDTO
	test_utils.MakeGetRequestAndUnmarshal(t, router, "/api/v1/projects", "Bearer "+user.Token, http.StatusOK, &response)

	projectIDs := make([]uuid.UUID, 0, len(response.Projects))
	for _, p := range response.Projects {
		projectIDs = append(projectIDs, p.ID)
	}

	assert.Len(t, projectIDs, 2)
	assert.Contains(t, projectIDs, project1.ID)
	assert.Contains(t, projectIDs, project2.ID)
	assert.NotContains(t, projectIDs, foreignProject.ID)
}

func Test_GetUserProjects_WithoutAuthToken_ReturnsUnauthorized(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	test_utils.MakeGetRequest(t, router, "/api/v1/projects", "", http.StatusUnauthorized)
}

func Test_GetProject_BySlugOrID_ReturnsSameProject(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	project := projects_testing.CreateTestProject("Lookup", owner, router)

	var byID projects_dto.ProjectResponseDTO
	test_utils.MakeGetRequestAndUnmarshal(t, router, "/api/v1/projects/"+project.ID.String(), "Bearer "+owner.Token, http.StatusOK, &byID)

	var bySlug projects_dto.ProjectResponseDTO
	test_utils.MakeGetRequestAndUnmarshal(t, router, "/api/v1/projects/"+project.Slug, "Bearer "+owner.Token, http.StatusOK, &bySlug)

	assert.Equal(t, project.ID, byID.ID)
	assert.Equal(t, project.ID, bySlug.ID)
}

func Test_GetProject_WhenListedAndUserIsNotMember_ReturnsProjectWithoutMembership(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	stranger := users_testing.CreateTestUser(users_enums.UserRoleUser)

	project := projects_testing.CreateTestProject("Public", owner, router)

	var response projects_dto.ProjectResponseDTO
	test_utils.MakeGetRequestAndUnmarshal(t, router, "/api/v1/projects/"+project.ID.String(), "Bearer "+stranger.Token, http.StatusOK, &response)

	assert.Equal(t, project.ID, response.ID)
	assert.Nil(t, response.CurrentMember)
}

func Test_GetProject_WhenPrivateAndUserIsNotMember_ReturnsNotFound(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	stranger := users_testing.CreateTestUser(users_enums.UserRoleUser)
	admin := users_testing.CreateTestUser(users_enums.UserRoleAdmin)

	project := projects_testing.CreateTestProjectWithVisibility("Hidden", projects_enums.ProjectVisibilityPrivate, owner, router)

	test_utils.MakeGetRequest(t, router, "/api/v1/projects/"+project.ID.String(), "Bearer "+stranger.Token, http.StatusNotFound)
	test_utils.MakeGetRequest(t, router, "/api/v1/projects/"+project.Slug, "Bearer "+stranger.Token, http.StatusNotFound)

	test_utils.MakeGetRequest(t, router, "/api/v1/projects/"+project.ID.String(), "Bearer "+owner.Token, http.StatusOK)
	test_utils.MakeGetRequest(t, router, "/api/v1/projects/"+project.ID.String(), "Bearer "+admin.Token, http.StatusOK)
}

func Test_GetProject_WithUnknownSlug_ReturnsNotFound(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	user := users_testing.CreateTestUser(users_enums.UserRoleUser)

	resp := test_utils.MakeGetRequest(t, router, "/api/v1/projects/"+projects_testing.UniqueSlug("missing"), "Bearer "+user.Token, http.StatusNotFound)
	assert.Contains(t, string(resp.Body), "Project not found")
}

func Test_UpdateProject_WhenUserIsOwner_ProjectUpdated(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	project := projects_testing.CreateTestProject("Before", owner, router)

	request := projects_dto.UpdateProjectRequestDTO{
		Name:       "After",
		Slug:       projects_testing.UniqueSlug("after"),
		Summary:    "Updated summary",
		Visibility: projects_enums.ProjectVisibilityUnlisted,
	}

	var response projects_dto.ProjectResponseDTO
	test_utils.MakePutRequestAndUnmarshal(t, router, "/api/v1/projects/"+project.ID.String(), "Bearer "+owner.Token, request, http.StatusOK, &response)

	assert.Equal(t, "After", response.Name)
	assert.Equal(t, request.Slug, response.Slug)
	assert.Equal(t, "Updated summary", response.Summary)
	assert.Equal(t, projects_enums.ProjectVisibilityUnlisted, response.Visibility)

	// served from cache after invalidation
	fetched := projects_testing.GetProject(project.ID, owner.Token, router)
	assert.Equal(t, "After", fetched.Name)
}

func Test_UpdateProject_WhenUserIsNotMember_ReturnsForbidden(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	stranger := users_testing.CreateTestUser(users_enums.UserRoleUser)
	project := projects_testing.CreateTestProject("Owned", owner, router)

	request := projects_dto.UpdateProjectRequestDTO{
		Name:       "Hijacked",
		Slug:       projects_testing.UniqueSlug("hijacked"),
		Visibility: projects_enums.ProjectVisibilityListed,
	}

	resp := test_utils.MakePutRequest(t, router, "/api/v1/projects/"+project.ID.String(), "Bearer "+stranger.Token, request, http.StatusForbidden)
	assert.Contains(t, string(resp.Body), "insufficient permissions to update project")
}

func Test_UpdateProject_WhenUserIsModerator_ProjectUpdated(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	moderator := users_testing.CreateTestUser(users_enums.UserRoleModerator)
	project := projects_testing.CreateTestProject("Moderated", owner, router)

	request := projects_dto.UpdateProjectRequestDTO{
		Name:       "Renamed by moderator",
		Slug:       project.Slug,
		Visibility: project.Visibility,
	}

	test_utils.MakePutRequest(t, router, "/api/v1/projects/"+project.ID.String(), "Bearer "+moderator.Token, request, http.StatusOK)
}

func Test_UpdateProjectStatus_OnlyModeratorsAndAdmins_CanChangeStatus(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	moderator := users_testing.CreateTestUser(users_enums.UserRoleModerator)
	project := projects_testing.CreateTestProject("Status", owner, router)

	url := "/api/v1/projects/" + project.ID.String() + "/status"
	request := projects_dto.UpdateProjectStatusRequestDTO{Status: projects_enums.ProjectStatusApproved}

	resp := test_utils.MakePutRequest(t, router, url, "Bearer "+owner.Token, request, http.StatusForbidden)
	assert.Contains(t, string(resp.Body), "only moderators can change the project status")

	var response projects_dto.ProjectResponseDTO
	test_utils.MakePutRequestAndUnmarshal(t, router, url, "Bearer "+moderator.Token, request, http.StatusOK, &response)
	assert.Equal(t, projects_enums.ProjectStatusApproved, response.Status)

	test_utils.MakePutRequest(t, router, url, "Bearer "+moderator.Token,
		projects_dto.UpdateProjectStatusRequestDTO{Status: "published"}, http.StatusBadRequest)
}

func Test_DeleteProject_WhenUserIsOwner_ProjectDeleted(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	project := projects_testing.CreateTestProject("Doomed", owner, router)

	test_utils.MakeDeleteRequest(t, router, "/api/v1/projects/"+project.ID.String(), "Bearer "+owner.Token, http.StatusOK)
	test_utils.MakeGetRequest(t, router, "/api/v1/projects/"+project.ID.String(), "Bearer "+owner.Token, http.StatusNotFound)
}

func Test_DeleteProject_WhenUserIsGlobalAdmin_ProjectDeleted(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	admin := users_testing.CreateTestUser(users_enums.UserRoleAdmin)
	project := projects_testing.CreateTestProject("Admin deletes", owner, router)

	test_utils.MakeDeleteRequest(t, router, "/api/v1/projects/"+project.ID.String(), "Bearer "+admin.Token, http.StatusOK)
}

func Test_DeleteProject_WhenUserIsModerator_ReturnsForbidden(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	moderator := users_testing.CreateTestUser(users_enums.UserRoleModerator)
	project := projects_testing.CreateTestProject("Survives", owner, router)

	resp := test_utils.MakeDeleteRequest(t, router, "/api/v1/projects/"+project.ID.String(), "Bearer "+moderator.Token, http.StatusForbidden)
	assert.Contains(t, string(resp.Body), "insufficient permissions to delete project")
}

func Test_DeleteProject_WithInvalidProjectID_ReturnsBadRequest(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	user := users_testing.CreateTestUser(users_enums.UserRoleUser)

	resp := test_utils.MakeDeleteRequest(t, router, "/api/v1/projects/invalid-uuid", "Bearer "+user.Token, http.StatusBadRequest)
	assert.Contains(t, string(resp.Body), "Invalid project ID")
}

func Test_GetProjectAuditLogs_WithMultipleProjects_ReturnsOnlyProjectSpecificLogs(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)

	project1 := projects_testing.CreateTestProject("Audit One", owner, router)
	project2 := projects_testing.CreateTestProject("Audit Two", owner, router)

	var response audit_logs.GetAuditLogsResponse
	test_utils.MakeGetRequestAndUnmarshal(
		t,
		router,
		"/api/v1/projects/"+project1.ID.String()+"/audit-logs?limit=50",
		"Bearer "+owner.Token,
		http.StatusOK,
		&response,
	)

	messages := extractAuditLogMessages(response.AuditLogs)
	assert.Contains(t, messages, "Project created: Audit One")
	assert.NotContains(t, messages, "Project created: Audit Two")

	for _, log := range response.AuditLogs {
		if assert.NotNil(t, log.ProjectID) {
			assert.Equal(t, project1.ID, *log.ProjectID)
			assert.NotEqual(t, project2.ID, *log.ProjectID)
		}
	}
}

func Test_GetProjectAuditLogs_WithDifferentUserRoles_EnforcesPermissionsCorrectly(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	stranger := users_testing.CreateTestUser(users_enums.UserRoleUser)
	admin := users_testing.CreateTestUser(users_enums.UserRoleAdmin)

	project := projects_testing.CreateTestProject("Audit Roles", owner, router)
	url := "/api/v1/projects/" + project.ID.String() + "/audit-logs"

	test_utils.MakeGetRequest(t, router, url, "Bearer "+owner.Token, http.StatusOK)
	test_utils.MakeGetRequest(t, router, url, "Bearer "+admin.Token, http.StatusOK)

	resp := test_utils.MakeGetRequest(t, router, url, "Bearer "+stranger.Token, http.StatusForbidden)
	assert.Contains(t, string(resp.Body), "insufficient permissions to view project audit logs")
}

func Test_GetProjectAuditLogs_WithoutAuthToken_ReturnsUnauthorized(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	owner := users_testing.CreateTestUser(users_enums.UserRoleUser)
	project := projects_testing.CreateTestProject("Audit Anonymous", owner, router)

	test_utils.MakeGetRequest(t, router, "/api/v1/projects/"+project.ID.String()+"/audit-logs", "", http.StatusUnauthorized)
}

func Test_GetProjectByID_WhenProjectCached_ReturnsFreshCopyAfterUpdate(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	ownerResponse := users_testing.CreateTestUser(users_enums.UserRoleUser)
	owner := getUserFromSignInResponse(ownerResponse)
	project := projects_testing.CreateTestProject("Cache Test", ownerResponse, router)
	projectService := projects_services.GetProjectService()

	cached, err := projectService.GetProjectByID(project.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Cache Test", cached.Name)

	_, err = projectService.UpdateProject(project.ID, &projects_dto.UpdateProjectRequestDTO{
		Name:       "Cache Test Updated",
		Slug:       project.Slug,
		Visibility: project.Visibility,
	}, owner)
	assert.NoError(t, err)

	cached, err = projectService.GetProjectByID(project.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Cache Test Updated", cached.Name)
}

func Test_GetProjectByID_WhenProjectDeleted_ReturnsNotFound(t *testing.T) {
	router := projects_testing.CreateTestRouter(GetProjectController())
	ownerResponse := users_testing.CreateTestUser(users_enums.UserRoleUser)
	owner := getUserFromSignInResponse(ownerResponse)
	project := projects_testing.CreateTestProject("Delete Cache Test", ownerResponse, router)
	projectService := projects_services.GetProjectService()

	_, err := projectService.GetProjectByID(project.ID)
	assert.NoError(t, err)

	assert.NoError(t, projectService.DeleteProject(project.ID, owner))

	_, err = projectService.GetProjectByID(project.ID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Project not found")
}

func extractAuditLogMessages(logs []*audit_logs.AuditLogDTO) []string {
	messages := make([]string, len(logs))
	for i, log := range logs {
		messages[i] = log.Message
	}
	return messages
}

func getUserFromSignInResponse(response *users_dto.SignInResponseDTO) *users_models.User {
	userService := users_services.GetUserService()
	user, err := userService.GetUserByID(response.UserID)
	if err != nil {
		panic(err)
	}
	return user
}

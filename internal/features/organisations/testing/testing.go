package organisations_testing

import (
	"net/http"
	"testing"

	organisations_dto "crmm/internal/features/organisations/dto"
	projects_testing "crmm/internal/features/projects/testing"
	users_dto "crmm/internal/features/users/dto"
	test_utils "crmm/internal/util/testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func CreateTestOrganisation(
	t *testing.T,
	router *gin.Engine,
	name string,
	owner *users_dto.SignInResponseDTO,
) *organisations_dto.OrganisationResponseDTO {
	var response organisations_dto.OrganisationResponseDTO
	test_utils.MakePostRequestAndUnmarshal(
		t,
		router,
		"/api/v1/organisations",
		"Bearer "+owner.Token,
		organisations_dto.CreateOrganisationRequestDTO{
			Name:        name,
			Slug:        projects_testing.UniqueSlug("org"),
			Description: "Test organisation " + name,
		},
		http.StatusOK,
		&response,
	)

	return &response
}

func AddProjectToOrganisation(
	t *testing.T,
	router *gin.Engine,
	organisationID uuid.UUID,
	projectID uuid.UUID,
	actor *users_dto.SignInResponseDTO,
) {
	test_utils.MakePostRequest(
		t,
		router,
		"/api/v1/organisations/"+organisationID.String()+"/projects",
		"Bearer "+actor.Token,
		organisations_dto.AddProjectRequestDTO{ProjectID: projectID},
		http.StatusOK,
	)
}

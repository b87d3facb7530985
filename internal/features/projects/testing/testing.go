package projects_testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	"crmm/internal/features/audit_logs"
	projects_dto "crmm/internal/features/projects/dto"
	projects_enums "crmm/internal/features/projects/enums"
	users_dto "crmm/internal/features/users/dto"
	users_middleware "crmm/internal/features/users/middleware"
	users_services "crmm/internal/features/users/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RoutesRegistrar interface {
	RegisterRoutes(router *gin.RouterGroup)
}

func CreateTestRouter(controllers ...RoutesRegistrar) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	v1 := router.Group("/api/v1")
	protected := v1.Group("").Use(users_middleware.AuthMiddleware(users_services.GetUserService()))

	for _, controller := range controllers {
		if routerGroup, ok := protected.(*gin.RouterGroup); ok {
			controller.RegisterRoutes(routerGroup)
		}
	}

	audit_logs.SetupDependencies()

	return router
}

// UniqueSlug returns a slug that does not collide between test runs.
func UniqueSlug(prefix string) string {
	return prefix + "-" + uuid.New().String()[:8]
}

// CreateTestProject creates a listed project owned by owner through the API.
func CreateTestProject(name string, owner *users_dto.SignInResponseDTO, router *gin.Engine) *projects_dto.ProjectResponseDTO {
	return CreateTestProjectWithVisibility(name, projects_enums.ProjectVisibilityListed, owner, router)
}

func CreateTestProjectWithVisibility(
	name string,
	visibility projects_enums.ProjectVisibility,
	owner *users_dto.SignInResponseDTO,
	router *gin.Engine,
) *projects_dto.ProjectResponseDTO {
	request := projects_dto.CreateProjectRequestDTO{
		Name:       name,
		Slug:       UniqueSlug("project"),
		Summary:    "Test project " + name,
		Visibility: visibility,
	}

	w := MakeAPIRequest(router, http.MethodPost, "/api/v1/projects", "Bearer "+owner.Token, request)
	if w.Code != http.StatusOK {
		panic(fmt.Sprintf("Failed to create project. Status: %d, Body: %s", w.Code, w.Body.String()))
	}

	var response projects_dto.ProjectResponseDTO
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		panic(err)
	}

	return &response
}

func GetProject(projectID uuid.UUID, token string, router *gin.Engine) *projects_dto.ProjectResponseDTO {
	w := MakeAPIRequest(router, http.MethodGet, "/api/v1/projects/"+projectID.String(), "Bearer "+token, nil)
	if w.Code != http.StatusOK {
		panic("Failed to get project via API: " + w.Body.String())
	}

	var response projects_dto.ProjectResponseDTO
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		panic(err)
	}

	return &response
}

func DeleteProject(projectID uuid.UUID, token string, router *gin.Engine) {
	w := MakeAPIRequest(router, http.MethodDelete, "/api/v1/projects/"+projectID.String(), "Bearer "+token, nil)
	if w.Code != http.StatusOK {
		panic("Failed to delete project via API: " + w.Body.String())
	}
}

func MakeAPIRequest(router *gin.Engine, method, url, authToken string, body any) *httptest.ResponseRecorder {
	var requestBody *bytes.Buffer
	if body != nil {
		bodyJSON, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		requestBody = bytes.NewBuffer(bodyJSON)
	} else {
		requestBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, requestBody)
	if err != nil {
		panic(err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authToken != "" {
		req.Header.Set("Authorization", authToken)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

package organisations_controllers

import (
	"io"
	"net/http"

	"crmm/internal/features/audit_logs"
	"crmm/internal/features/files"
	organisations_dto "crmm/internal/features/organisations/dto"
	organisations_services "crmm/internal/features/organisations/services"
	users_middleware "crmm/internal/features/users/middleware"
	errors_utils "crmm/internal/util/errors"
	"crmm/internal/util/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrganisationController struct {
	organisationService *organisations_services.OrganisationService
}

func (c *OrganisationController) RegisterRoutes(router *gin.RouterGroup) {
	organisationRoutes := router.Group("/organisations")

	organisationRoutes.POST("", c.CreateOrganisation)
	organisationRoutes.GET("", c.GetUserOrganisations)
	organisationRoutes.GET("/users/:userSlug", c.GetOrganisationsOfUser)
	organisationRoutes.GET("/:orgId", c.GetOrganisation)
	organisationRoutes.GET("/:orgId/projects", c.GetOrganisationProjects)
	organisationRoutes.GET("/:orgId/audit-logs", c.GetOrganisationAuditLogs)
	organisationRoutes.PATCH("/:orgId", c.UpdateOrganisation)
	organisationRoutes.DELETE("/:orgId", c.DeleteOrganisation)
	organisationRoutes.PATCH("/:orgId/icon", c.UpdateIcon)
	organisationRoutes.DELETE("/:orgId/icon", c.DeleteIcon)
	organisationRoutes.POST("/:orgId/projects", c.AddProject)
	organisationRoutes.DELETE("/:orgId/projects/:projectId", c.RemoveProject)
}

// CreateOrganisation
// @Summary Create a new organisation
// @Description Creates the organisation and its team with the caller as owner
// @Tags organisations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body organisations_dto.CreateOrganisationRequestDTO true "Organisation data"
// @Success 200 {object} organisations_dto.OrganisationResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /organisations [post]
func (c *OrganisationController) CreateOrganisation(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var request organisations_dto.CreateOrganisationRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	response, err := c.organisationService.CreateOrganisation(&request, user)
	if err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetUserOrganisations
// @Summary List the caller's organisations
// @Tags organisations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} organisations_dto.ListOrganisationsResponseDTO
// @Router /organisations [get]
func (c *OrganisationController) GetUserOrganisations(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	response, err := c.organisationService.GetUserOrganisations(user)
	if err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetOrganisationsOfUser
// @Summary List organisations a user belongs to
// @Tags organisations
// @Produce json
// @Security BearerAuth
// @Param userSlug path string true "Username or user ID"
// @Success 200 {object} organisations_dto.ListOrganisationsResponseDTO
// @Failure 404 {object} map[string]string
// @Router /organisations/users/{userSlug} [get]
func (c *OrganisationController) GetOrganisationsOfUser(ctx *gin.Context) {
	response, err := c.organisationService.GetOrganisationsOfUser(ctx.Param("userSlug"))
	if err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetOrganisation
// @Summary Get organisation details
// @Description Accepts a slug or an id. Pending members are only listed for members.
// @Tags organisations
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organisation slug or ID"
// @Success 200 {object} organisations_dto.OrganisationResponseDTO
// @Failure 404 {object} map[string]string
// @Router /organisations/{orgId} [get]
func (c *OrganisationController) GetOrganisation(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	response, err := c.organisationService.GetOrganisation(ctx.Param("orgId"), user)
	if err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetOrganisationProjects
// @Summary List organisation projects
// @Tags organisations
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organisation slug or ID"
// @Success 200 {object} projects_dto.ListProjectsResponseDTO
// @Failure 404 {object} map[string]string
// @Router /organisations/{orgId}/projects [get]
func (c *OrganisationController) GetOrganisationProjects(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	response, err := c.organisationService.GetOrganisationProjects(ctx.Param("orgId"), user)
	if err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetOrganisationAuditLogs
// @Summary Get organisation audit logs
// @Tags organisations
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organisation ID"
// @Param limit query int false "Limit number of results" default(100)
// @Param offset query int false "Offset for pagination" default(0)
// @Param beforeDate query string false "Filter logs created before this date (RFC3339 format)" format(date-time)
// @Success 200 {object} audit_logs.GetAuditLogsResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /organisations/{orgId}/audit-logs [get]
func (c *OrganisationController) GetOrganisationAuditLogs(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	organisationID, ok := parseOrganisationID(ctx)
	if !ok {
		return
	}

	request := &audit_logs.GetAuditLogsRequest{}
	if err := ctx.ShouldBindQuery(request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	response, err := c.organisationService.GetOrganisationAuditLogs(organisationID, user, request)
	if err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// UpdateOrganisation
// @Summary Update organisation details
// @Tags organisations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organisation ID"
// @Param request body organisations_dto.UpdateOrganisationRequestDTO true "Organisation data"
// @Success 200 {object} organisations_dto.OrganisationResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /organisations/{orgId} [patch]
func (c *OrganisationController) UpdateOrganisation(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	organisationID, ok := parseOrganisationID(ctx)
	if !ok {
		return
	}

	var request organisations_dto.UpdateOrganisationRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	response, err := c.organisationService.UpdateOrganisation(organisationID, &request, user)
	if err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// DeleteOrganisation
// @Summary Delete organisation
// @Description Projects are handed back to the organisation owner
// @Tags organisations
// @Security BearerAuth
// @Param orgId path string true "Organisation ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /organisations/{orgId} [delete]
func (c *OrganisationController) DeleteOrganisation(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	organisationID, ok := parseOrganisationID(ctx)
	if !ok {
		return
	}

	if err := c.organisationService.DeleteOrganisation(organisationID, user); err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Organization deleted successfully"})
}

// UpdateIcon
// @Summary Upload organisation icon
// @Tags organisations
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organisation ID"
// @Param icon formData file true "Icon image"
// @Success 200 {object} organisations_dto.OrganisationResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /organisations/{orgId}/icon [patch]
func (c *OrganisationController) UpdateIcon(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	organisationID, ok := parseOrganisationID(ctx)
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("icon")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Icon file is required"})
		return
	}

	if fileHeader.Size > files.MaxImageSizeBytes {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "File is too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read icon"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, files.MaxImageSizeBytes+1))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read icon"})
		return
	}

	response, err := c.organisationService.UpdateIcon(organisationID, fileHeader.Filename, data, user)
	if err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// DeleteIcon
// @Summary Remove organisation icon
// @Tags organisations
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organisation ID"
// @Success 200 {object} organisations_dto.OrganisationResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /organisations/{orgId}/icon [delete]
func (c *OrganisationController) DeleteIcon(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	organisationID, ok := parseOrganisationID(ctx)
	if !ok {
		return
	}

	response, err := c.organisationService.DeleteIcon(organisationID, user)
	if err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// AddProject
// @Summary Add a project to the organisation
// @Description Requires add_project in the organisation and ownership of the project
// @Tags organisations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organisation ID"
// @Param request body organisations_dto.AddProjectRequestDTO true "Project to add"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /organisations/{orgId}/projects [post]
func (c *OrganisationController) AddProject(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	organisationID, ok := parseOrganisationID(ctx)
	if !ok {
		return
	}

	var request organisations_dto.AddProjectRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := c.organisationService.AddProject(organisationID, request.ProjectID, user); err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Project added successfully"})
}

// RemoveProject
// @Summary Remove a project from the organisation
// @Description The caller becomes the project's inherited owner
// @Tags organisations
// @Security BearerAuth
// @Param orgId path string true "Organisation ID"
// @Param projectId path string true "Project ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /organisations/{orgId}/projects/{projectId} [delete]
func (c *OrganisationController) RemoveProject(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	organisationID, ok := parseOrganisationID(ctx)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(ctx.Param("projectId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	if err := c.organisationService.RemoveProject(organisationID, projectID, user); err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Project removed successfully"})
}

func parseOrganisationID(ctx *gin.Context) (uuid.UUID, bool) {
	organisationID, err := uuid.Parse(ctx.Param("orgId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organisation ID"})
		return uuid.Nil, false
	}

	return organisationID, true
}

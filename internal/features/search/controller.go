package search

import (
	"net/http"

	errors_utils "crmm/internal/util/errors"
	"crmm/internal/util/logger"

	"github.com/gin-gonic/gin"
)

type SearchController struct {
	searchSyncService *SearchSyncService
}

func (c *SearchController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/search/projects", c.SearchProjects)
}

// SearchProjects
// @Summary Search projects
// @Description Only listed and archived approved projects are indexed
// @Tags search
// @Produce json
// @Param query query string false "Search text"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} SearchProjectsResponseDTO
// @Failure 400 {object} map[string]string
// @Router /search/projects [get]
func (c *SearchController) SearchProjects(ctx *gin.Context) {
	var request SearchProjectsRequestDTO
	if err := ctx.ShouldBindQuery(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	response, err := c.searchSyncService.SearchProjects(&request)
	if err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

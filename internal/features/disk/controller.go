package disk

import (
	"net/http"

	users_enums "crmm/internal/features/users/enums"
	users_middleware "crmm/internal/features/users/middleware"

	"github.com/gin-gonic/gin"
)

type DiskController struct {
	diskService *DiskService
}

func (c *DiskController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/disk/usage", c.GetDiskUsage)
}

// GetDiskUsage
// @Summary Get file storage disk usage
// @Description Admin only
// @Tags system
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DiskUsage
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /disk/usage [get]
func (c *DiskController) GetDiskUsage(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if user.Role != users_enums.UserRoleAdmin {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only administrators can view disk usage"})
		return
	}

	usage, err := c.diskService.GetDiskUsage()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, usage)
}

package notifications

import (
	"net/http"

	users_middleware "crmm/internal/features/users/middleware"
	errors_utils "crmm/internal/util/errors"
	"crmm/internal/util/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotificationController struct {
	notificationService *NotificationService
}

func (c *NotificationController) RegisterRoutes(router *gin.RouterGroup) {
	notificationRoutes := router.Group("/notifications")

	notificationRoutes.GET("", c.GetNotifications)
	notificationRoutes.PATCH("/read", c.MarkAsRead)
	notificationRoutes.DELETE("", c.DeleteNotifications)
}

// GetNotifications
// @Summary Get own notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} GetNotificationsResponseDTO
// @Failure 401 {object} map[string]string
// @Router /notifications [get]
func (c *NotificationController) GetNotifications(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	response, err := c.notificationService.GetUserNotifications(user)
	if err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// MarkAsRead
// @Summary Mark notifications as read
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body NotificationIDsRequestDTO true "Notification ids"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /notifications/read [patch]
func (c *NotificationController) MarkAsRead(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var request NotificationIDsRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := c.notificationService.MarkAsRead(user, request.IDs); err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Notifications marked as read"})
}

// DeleteNotifications
// @Summary Delete notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param ids query []string true "Notification ids" collectionFormat(multi)
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /notifications [delete]
func (c *NotificationController) DeleteNotifications(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	rawIDs := ctx.QueryArray("ids")
	if len(rawIDs) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "At least one notification id is required"})
		return
	}

	ids := make([]uuid.UUID, 0, len(rawIDs))
	for _, rawID := range rawIDs {
		id, err := uuid.Parse(rawID)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
			return
		}

		ids = append(ids, id)
	}

	if err := c.notificationService.DeleteNotifications(user, ids); err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Notifications deleted"})
}

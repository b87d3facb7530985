package notifications

import "crmm/internal/util/logger"

var notificationRepository = &NotificationRepository{}
var notificationService = &NotificationService{
	notificationRepository: notificationRepository,
	logger:                 logger.GetLogger(),
}
var notificationController = &NotificationController{
	notificationService: notificationService,
}

func GetNotificationService() *NotificationService {
	return notificationService
}

func GetNotificationController() *NotificationController {
	return notificationController
}

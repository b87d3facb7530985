package notifications

import (
	"fmt"
	"log/slog"

	users_models "crmm/internal/features/users/models"
	errors_utils "crmm/internal/util/errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationService struct {
	notificationRepository *NotificationRepository
	logger                 *slog.Logger
}

// CreateTeamInviteNotification persists the invite inside tx, so the
// notification only exists when the pending member row does.
func (s *NotificationService) CreateTeamInviteNotification(tx *gorm.DB, invite *TeamInvite) error {
	notificationType := NotificationTypeTeamInvite
	if invite.OrganisationID != nil {
		notificationType = NotificationTypeOrganisationInvite
	}

	notification := &Notification{
		UserID: invite.UserID,
		Type:   notificationType,
		Body: datatypes.NewJSONType(NotificationBody{
			TeamID:         invite.TeamID,
			ProjectID:      invite.ProjectID,
			OrganisationID: invite.OrganisationID,
			InvitedBy:      invite.InvitedBy,
			Role:           invite.Role,
		}),
	}

	if err := s.notificationRepository.Create(tx, notification); err != nil {
		return fmt.Errorf("failed to create invite notification: %w", err)
	}

	return nil
}

func (s *NotificationService) MarkTeamInvitesRead(tx *gorm.DB, userID, teamID uuid.UUID) error {
	if err := s.notificationRepository.MarkTeamInvitesRead(tx, userID, teamID); err != nil {
		return fmt.Errorf("failed to mark invite notifications as read: %w", err)
	}

	return nil
}

func (s *NotificationService) GetUserNotifications(
	user *users_models.User,
) (*GetNotificationsResponseDTO, error) {
	notifications, err := s.notificationRepository.GetByUser(user.ID)
	if err != nil {
		return nil, errors_utils.Server("failed to get notifications", err)
	}

	unreadCount := 0
	for _, notification := range notifications {
		if !notification.Read {
			unreadCount++
		}
	}

	return &GetNotificationsResponseDTO{
		Notifications: notifications,
		UnreadCount:   unreadCount,
	}, nil
}

func (s *NotificationService) MarkAsRead(user *users_models.User, ids []uuid.UUID) error {
	updated, err := s.notificationRepository.MarkRead(user.ID, ids)
	if err != nil {
		return errors_utils.Server("failed to mark notifications as read", err)
	}

	if updated == 0 {
		return errors_utils.NotFound("Notification not found")
	}

	return nil
}

func (s *NotificationService) DeleteNotifications(user *users_models.User, ids []uuid.UUID) error {
	deleted, err := s.notificationRepository.Delete(user.ID, ids)
	if err != nil {
		return errors_utils.Server("failed to delete notifications", err)
	}

	if deleted == 0 {
		return errors_utils.NotFound("Notification not found")
	}

	s.logger.Info("notifications deleted", "userId", user.ID, "count", deleted)

	return nil
}

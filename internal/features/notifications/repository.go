package notifications

import (
	"time"

	"crmm/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository struct{}

func (r *NotificationRepository) Create(tx *gorm.DB, notification *Notification) error {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}

	return storage.Tx(tx).Create(notification).Error
}

func (r *NotificationRepository) GetByUser(userID uuid.UUID) ([]*Notification, error) {
	var notifications []*Notification

	err := storage.GetDb().
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error

	return notifications, err
}

// MarkRead returns the number of the user's notifications that were updated.
func (r *NotificationRepository) MarkRead(userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	result := storage.GetDb().
		Model(&Notification{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Updates(map[string]any{"read": true, "date_read": time.Now().UTC()})

	return result.RowsAffected, result.Error
}

func (r *NotificationRepository) Delete(userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	result := storage.GetDb().
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&Notification{})

	return result.RowsAffected, result.Error
}

// MarkTeamInvitesRead marks the user's invite notifications of a team as read
// once the invite is answered.
func (r *NotificationRepository) MarkTeamInvitesRead(tx *gorm.DB, userID, teamID uuid.UUID) error {
	return storage.Tx(tx).
		Model(&Notification{}).
		Where("user_id = ? AND NOT read AND type IN ? AND body->>'teamId' = ?",
			userID,
			[]NotificationType{NotificationTypeTeamInvite, NotificationTypeOrganisationInvite},
			teamID.String(),
		).
		Updates(map[string]any{"read": true, "date_read": time.Now().UTC()}).Error
}

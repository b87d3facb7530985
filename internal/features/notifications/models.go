package notifications

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationTypeTeamInvite         NotificationType = "team_invite"
	NotificationTypeOrganisationInvite NotificationType = "organisation_invite"
)

// NotificationBody is stored as JSONB; which ids are set depends on the type.
type NotificationBody struct {
	TeamID         uuid.UUID  `json:"teamId"`
	ProjectID      *uuid.UUID `json:"projectId,omitempty"`
	OrganisationID *uuid.UUID `json:"organisationId,omitempty"`
	InvitedBy      uuid.UUID  `json:"invitedBy"`
	Role           string     `json:"role"`
}

type Notification struct {
	ID        uuid.UUID                            `json:"id"        gorm:"column:id"`
	UserID    uuid.UUID                            `json:"userId"    gorm:"column:user_id"`
	Type      NotificationType                     `json:"type"      gorm:"column:type"`
	Body      datatypes.JSONType[NotificationBody] `json:"body"      gorm:"column:body"`
	Read      bool                                 `json:"read"      gorm:"column:read"`
	DateRead  *time.Time                           `json:"dateRead"  gorm:"column:date_read"`
	CreatedAt time.Time                            `json:"createdAt" gorm:"column:created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

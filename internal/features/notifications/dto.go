package notifications

import "github.com/google/uuid"

// TeamInvite describes an invite that is persisted together with the pending
// team member row.
type TeamInvite struct {
	UserID         uuid.UUID
	TeamID         uuid.UUID
	ProjectID      *uuid.UUID
	OrganisationID *uuid.UUID
	InvitedBy      uuid.UUID
	Role           string
}

type NotificationIDsRequestDTO struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

type GetNotificationsResponseDTO struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unreadCount"`
}

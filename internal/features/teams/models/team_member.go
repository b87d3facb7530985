package teams_models

import (
	"time"

	"crmm/internal/features/permissions"
	users_models "crmm/internal/features/users/models"

	"github.com/google/uuid"
)

type TeamMember struct {
	ID                      uuid.UUID                           `json:"id"                      gorm:"column:id"`
	TeamID                  uuid.UUID                           `json:"teamId"                  gorm:"column:team_id"`
	UserID                  uuid.UUID                           `json:"userId"                  gorm:"column:user_id"`
	User                    *users_models.User                  `json:"-"                       gorm:"foreignKey:UserID"`
	Role                    string                              `json:"role"                    gorm:"column:role"`
	IsOwner                 bool                                `json:"isOwner"                 gorm:"column:is_owner"`
	Permissions             permissions.ProjectPermissions      `json:"permissions"             gorm:"column:permissions;type:text[]"`
	OrganisationPermissions permissions.OrganisationPermissions `json:"organisationPermissions" gorm:"column:organisation_permissions;type:text[]"`
	Accepted                bool                                `json:"accepted"                gorm:"column:accepted"`
	DateAccepted            *time.Time                          `json:"dateAccepted"            gorm:"column:date_accepted"`
	CreatedAt               time.Time                           `json:"createdAt"               gorm:"column:created_at"`
}

func (TeamMember) TableName() string {
	return "team_members"
}

// IsActiveOwner is false for nil and pending members.
func (m *TeamMember) IsActiveOwner() bool {
	return m != nil && m.Accepted && m.IsOwner
}

func (m *TeamMember) IsAcceptedMember() bool {
	return m != nil && m.Accepted
}

func (m *TeamMember) IsPendingMember() bool {
	return m != nil && !m.Accepted
}

// EffectivePermissions is what the evaluator sees: pending members hold
// nothing until they accept.
func (m *TeamMember) EffectivePermissions() permissions.ProjectPermissions {
	if !m.IsAcceptedMember() {
		return 0
	}

	return m.Permissions
}

func (m *TeamMember) EffectiveOrganisationPermissions() permissions.OrganisationPermissions {
	if !m.IsAcceptedMember() {
		return 0
	}

	return m.OrganisationPermissions
}

func FindMember(userID uuid.UUID, members []*TeamMember) *TeamMember {
	for _, member := range members {
		if member.UserID == userID {
			return member
		}
	}

	return nil
}

func FindOwner(members []*TeamMember) *TeamMember {
	for _, member := range members {
		if member.IsOwner {
			return member
		}
	}

	return nil
}

// ResolveMembership returns the user's effective membership for a team. The
// team's own row wins over the parent organisation's row, but the
// organisation owner stays an owner in every organisation project. Returns
// nil when the user is in neither list. The returned value is a copy.
func ResolveMembership(userID uuid.UUID, teamMembers, organisationMembers []*TeamMember) *TeamMember {
	teamMember := FindMember(userID, teamMembers)
	organisationMember := FindMember(userID, organisationMembers)

	switch {
	case teamMember != nil:
		resolved := *teamMember
		if organisationMember != nil && organisationMember.IsOwner {
			resolved.IsOwner = true
		}

		return &resolved
	case organisationMember != nil:
		resolved := *organisationMember
		return &resolved
	default:
		return nil
	}
}

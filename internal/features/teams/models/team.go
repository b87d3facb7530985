package teams_models

import (
	"time"

	projects_enums "crmm/internal/features/projects/enums"
	teams_enums "crmm/internal/features/teams/enums"

	"github.com/google/uuid"
)

type Team struct {
	ID        uuid.UUID `json:"id"        gorm:"column:id"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
}

func (Team) TableName() string {
	return "teams"
}

// TeamScope is what a team governs: exactly one project or one organisation.
// For a project team under an organisation the parent fields are set too.
type TeamScope struct {
	TeamID uuid.UUID `gorm:"column:id"`

	ProjectID                *uuid.UUID                        `gorm:"column:project_id"`
	ProjectName              *string                           `gorm:"column:project_name"`
	ProjectVisibility        *projects_enums.ProjectVisibility `gorm:"column:project_visibility"`
	ParentOrganisationID     *uuid.UUID                        `gorm:"column:parent_organisation_id"`
	ParentOrganisationTeamID *uuid.UUID                        `gorm:"column:parent_organisation_team_id"`

	OrganisationID   *uuid.UUID `gorm:"column:organisation_id"`
	OrganisationName *string    `gorm:"column:organisation_name"`
}

func (s *TeamScope) Kind() teams_enums.TeamKind {
	if s.OrganisationID != nil {
		return teams_enums.TeamKindOrganisation
	}

	return teams_enums.TeamKindProject
}

func (s *TeamScope) IsOrganisationTeam() bool {
	return s.Kind() == teams_enums.TeamKindOrganisation
}

func (s *TeamScope) IsOrganisationProject() bool {
	return s.ProjectID != nil && s.ParentOrganisationTeamID != nil
}

func (s *TeamScope) IsPrivateProject() bool {
	return s.ProjectVisibility != nil && *s.ProjectVisibility == projects_enums.ProjectVisibilityPrivate
}

func (s *TeamScope) Name() string {
	if s.OrganisationName != nil {
		return *s.OrganisationName
	}

	if s.ProjectName != nil {
		return *s.ProjectName
	}

	return s.TeamID.String()
}


package teams_repositories

import (
	"errors"

	teams_models "crmm/internal/features/teams/models"
	"crmm/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeamRepository struct{}

const selectTeamScopeSQL = `
	SELECT t.id,
	       p.id              AS project_id,
	       p.name            AS project_name,
	       p.visibility      AS project_visibility,
	       p.organisation_id AS parent_organisation_id,
	       po.team_id        AS parent_organisation_team_id,
	       o.id              AS organisation_id,
	       o.name            AS organisation_name
	FROM teams t
	LEFT JOIN projects p ON p.team_id = t.id
	LEFT JOIN organisations po ON po.id = p.organisation_id
	LEFT JOIN organisations o ON o.team_id = t.id
	WHERE t.id = ?`

func (r *TeamRepository) CreateTeam(tx *gorm.DB, team *teams_models.Team) error {
	return storage.Tx(tx).Create(team).Error
}

// GetScope returns nil when the team does not exist. With lock set the team
// row stays locked until tx ends, serialising concurrent membership changes.
func (r *TeamRepository) GetScope(tx *gorm.DB, teamID uuid.UUID, lock bool) (*teams_models.TeamScope, error) {
	query := selectTeamScopeSQL
	if lock {
		query += " FOR UPDATE OF t"
	}

	var scope teams_models.TeamScope

	result := storage.Tx(tx).Raw(query, teamID).Scan(&scope)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, nil
	}

	return &scope, nil
}

func (r *TeamRepository) DeleteTeam(tx *gorm.DB, teamID uuid.UUID) error {
	err := storage.Tx(tx).Delete(&teams_models.Team{}, "id = ?", teamID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}

	return err
}

// GetOrganisationProjectIDs lists the projects governed by an organisation.
func (r *TeamRepository) GetOrganisationProjectIDs(tx *gorm.DB, organisationID uuid.UUID) ([]uuid.UUID, error) {
	var projectIDs []uuid.UUID

	err := storage.Tx(tx).
		Table("projects").
		Where("organisation_id = ?", organisationID).
		Pluck("id", &projectIDs).Error

	return projectIDs, err
}

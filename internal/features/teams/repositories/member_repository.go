package teams_repositories

import (
	"errors"

	teams_models "crmm/internal/features/teams/models"
	"crmm/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MemberRepository struct{}

func (r *MemberRepository) CreateMember(tx *gorm.DB, member *teams_models.TeamMember) error {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}

	return storage.Tx(tx).Omit(clause.Associations).Create(member).Error
}

// GetTeamMembers returns the members of a team with their users, owner first.
func (r *MemberRepository) GetTeamMembers(tx *gorm.DB, teamID uuid.UUID) ([]*teams_models.TeamMember, error) {
	var members []*teams_models.TeamMember

	err := storage.Tx(tx).
		Preload("User").
		Where("team_id = ?", teamID).
		Order("is_owner DESC, created_at ASC").
		Find(&members).Error

	return members, err
}

func (r *MemberRepository) GetMember(tx *gorm.DB, teamID, userID uuid.UUID) (*teams_models.TeamMember, error) {
	var member teams_models.TeamMember

	err := storage.Tx(tx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *MemberRepository) UpdateMember(tx *gorm.DB, member *teams_models.TeamMember) error {
	return storage.Tx(tx).Omit(clause.Associations).Save(member).Error
}

func (r *MemberRepository) DeleteMember(tx *gorm.DB, memberID uuid.UUID) error {
	return storage.Tx(tx).Delete(&teams_models.TeamMember{}, "id = ?", memberID).Error
}

func (r *MemberRepository) DeleteTeamMembers(tx *gorm.DB, teamID uuid.UUID) error {
	return storage.Tx(tx).Delete(&teams_models.TeamMember{}, "team_id = ?", teamID).Error
}

// DeleteFromOrganisationProjects strips the user from every project team of
// the organisation and returns the affected project ids.
func (r *MemberRepository) DeleteFromOrganisationProjects(
	tx *gorm.DB,
	userID uuid.UUID,
	organisationID uuid.UUID,
) ([]uuid.UUID, error) {
	var projectIDs []uuid.UUID

	err := storage.Tx(tx).
		Table("projects").
		Joins("JOIN team_members tm ON tm.team_id = projects.team_id").
		Where("projects.organisation_id = ? AND tm.user_id = ?", organisationID, userID).
		Pluck("projects.id", &projectIDs).Error
	if err != nil {
		return nil, err
	}

	if len(projectIDs) == 0 {
		return nil, nil
	}

	err = storage.Tx(tx).
		Where("user_id = ? AND team_id IN (?)",
			userID,
			storage.Tx(tx).Table("projects").Select("team_id").Where("organisation_id = ?", organisationID),
		).
		Delete(&teams_models.TeamMember{}).Error

	return projectIDs, err
}

// GetUserTeamIDs lists the teams in which the user is an accepted member.
func (r *MemberRepository) GetUserTeamIDs(tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var teamIDs []uuid.UUID

	err := storage.Tx(tx).
		Model(&teams_models.TeamMember{}).
		Where("user_id = ? AND accepted", userID).
		Pluck("team_id", &teamIDs).Error

	return teamIDs, err
}

package teams_services

import (
	"fmt"
	"log/slog"
	"time"

	"crmm/internal/features/audit_logs"
	teams_dto "crmm/internal/features/teams/dto"
	teams_enums "crmm/internal/features/teams/enums"
	teams_interfaces "crmm/internal/features/teams/interfaces"
	teams_models "crmm/internal/features/teams/models"
	teams_repositories "crmm/internal/features/teams/repositories"
	users_models "crmm/internal/features/users/models"
	"crmm/internal/metrics"
	"crmm/internal/storage"
	errors_utils "crmm/internal/util/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeamService struct {
	teamRepository           *teams_repositories.TeamRepository
	memberRepository         *teams_repositories.MemberRepository
	auditLogService          *audit_logs.AuditLogService
	logger                   *slog.Logger
	projectsChangedListeners []teams_interfaces.ProjectsChangedListener
}

func (s *TeamService) AddProjectsChangedListener(listener teams_interfaces.ProjectsChangedListener) {
	s.projectsChangedListeners = append(s.projectsChangedListeners, listener)
}

// CreateTeamWithOwner creates a team whose only member is the accepted owner.
func (s *TeamService) CreateTeamWithOwner(tx *gorm.DB, ownerID uuid.UUID) (*teams_models.Team, error) {
	team := &teams_models.Team{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.teamRepository.CreateTeam(tx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	if err := s.addOwner(tx, team.ID, ownerID, teams_enums.MemberRoleOwner); err != nil {
		return nil, err
	}

	return team, nil
}

// ResetTeamToOwner wipes the team and leaves the user as its only member,
// an accepted owner with the given role.
func (s *TeamService) ResetTeamToOwner(tx *gorm.DB, teamID, ownerID uuid.UUID, role string) error {
	if err := s.memberRepository.DeleteTeamMembers(tx, teamID); err != nil {
		return fmt.Errorf("failed to clear team members: %w", err)
	}

	return s.addOwner(tx, teamID, ownerID, role)
}

func (s *TeamService) DeleteTeamMembers(tx *gorm.DB, teamID uuid.UUID) error {
	if err := s.memberRepository.DeleteTeamMembers(tx, teamID); err != nil {
		return fmt.Errorf("failed to clear team members: %w", err)
	}

	return nil
}

func (s *TeamService) DeleteTeam(tx *gorm.DB, teamID uuid.UUID) error {
	if err := s.memberRepository.DeleteTeamMembers(tx, teamID); err != nil {
		return fmt.Errorf("failed to clear team members: %w", err)
	}

	if err := s.teamRepository.DeleteTeam(tx, teamID); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	return nil
}

func (s *TeamService) GetTeamMembers(tx *gorm.DB, teamID uuid.UUID) ([]*teams_models.TeamMember, error) {
	members, err := s.memberRepository.GetTeamMembers(tx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team members: %w", err)
	}

	return members, nil
}

func (s *TeamService) GetUserTeamIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	teamIDs, err := s.memberRepository.GetUserTeamIDs(nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user teams: %w", err)
	}

	return teamIDs, nil
}

func (s *TeamService) GetOrganisationProjectIDs(organisationID uuid.UUID) ([]uuid.UUID, error) {
	projectIDs, err := s.teamRepository.GetOrganisationProjectIDs(nil, organisationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get organisation projects: %w", err)
	}

	return projectIDs, nil
}

// LoadAccess resolves the user's position in a team. With lock set the team
// stays locked until tx ends.
func (s *TeamService) LoadAccess(
	tx *gorm.DB,
	teamID uuid.UUID,
	user *users_models.User,
	lock bool,
) (*teams_models.TeamAccess, error) {
	scope, err := s.teamRepository.GetScope(tx, teamID, lock)
	if err != nil {
		return nil, errors_utils.Server("failed to get team", err)
	}

	if scope == nil || (scope.ProjectID == nil && scope.OrganisationID == nil) {
		return nil, errors_utils.NotFound("Team not found")
	}

	members, err := s.memberRepository.GetTeamMembers(tx, teamID)
	if err != nil {
		return nil, errors_utils.Server("failed to get team members", err)
	}

	var organisationMembers []*teams_models.TeamMember
	if scope.ParentOrganisationTeamID != nil {
		organisationMembers, err = s.memberRepository.GetTeamMembers(tx, *scope.ParentOrganisationTeamID)
		if err != nil {
			return nil, errors_utils.Server("failed to get organisation members", err)
		}
	}

	return teams_models.NewTeamAccess(scope, members, organisationMembers, user), nil
}

// GetMembers lists a team. Outsiders only see accepted members, and private
// projects are hidden from them entirely.
func (s *TeamService) GetMembers(teamID uuid.UUID, user *users_models.User) (*teams_dto.GetMembersResponseDTO, error) {
	access, err := s.LoadAccess(nil, teamID, user, false)
	if err != nil {
		return nil, err
	}

	isInsider := access.IsVisibleMember() || access.HasRootAccess()
	if access.Scope.IsPrivateProject() && !isInsider {
		return nil, errors_utils.NotFound("Team not found")
	}

	response := &teams_dto.GetMembersResponseDTO{
		TeamID:  teamID,
		Members: teams_dto.ToMemberResponses(access.Members, isInsider),
	}

	if access.Scope.IsOrganisationProject() {
		response.OrganisationMembers = teams_dto.ToMemberResponses(access.OrganisationMembers, isInsider)
	}

	return response, nil
}

func (s *TeamService) NotifyProjectsChanged(projectIDs []uuid.UUID) {
	if len(projectIDs) == 0 {
		return
	}

	for _, listener := range s.projectsChangedListeners {
		listener.OnProjectsChanged(projectIDs)
	}
}

// recordMutation runs the side effects of a committed team mutation.
func (s *TeamService) recordMutation(
	operation string,
	scope *teams_models.TeamScope,
	actorID uuid.UUID,
	message string,
	changedProjectIDs []uuid.UUID,
) {
	metrics.TeamMutationsTotal.WithLabelValues(operation).Inc()

	switch {
	case scope.OrganisationID != nil:
		s.auditLogService.WriteOrganisationAuditLog(message, &actorID, *scope.OrganisationID)
	case scope.ProjectID != nil:
		s.auditLogService.WriteProjectAuditLog(message, &actorID, *scope.ProjectID)
	}

	s.logger.Info("team mutation committed",
		"operation", operation,
		"teamId", scope.TeamID,
		"actorId", actorID)

	s.NotifyProjectsChanged(changedProjectIDs)
}

func (s *TeamService) addOwner(tx *gorm.DB, teamID, userID uuid.UUID, role string) error {
	now := time.Now().UTC()

	owner := &teams_models.TeamMember{
		ID:           uuid.New(),
		TeamID:       teamID,
		UserID:       userID,
		Role:         role,
		IsOwner:      true,
		Accepted:     true,
		DateAccepted: &now,
		CreatedAt:    now,
	}

	if err := s.memberRepository.CreateMember(tx, owner); err != nil {
		return fmt.Errorf("failed to create team owner: %w", err)
	}

	return nil
}

func transaction(fn func(tx *gorm.DB) error) error {
	return storage.GetDb().Transaction(fn)
}

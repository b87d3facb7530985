package projects_services

import (
	"errors"
	"fmt"
	"time"

	"crmm/internal/features/audit_logs"
	"crmm/internal/features/permissions"
	projects_dto "crmm/internal/features/projects/dto"
	projects_enums "crmm/internal/features/projects/enums"
	projects_models "crmm/internal/features/projects/models"
	projects_repositories "crmm/internal/features/projects/repositories"
	teams_dto "crmm/internal/features/teams/dto"
	teams_models "crmm/internal/features/teams/models"
	teams_services "crmm/internal/features/teams/services"
	users_enums "crmm/internal/features/users/enums"
	users_models "crmm/internal/features/users/models"
	users_services "crmm/internal/features/users/services"
	"crmm/internal/storage"
	cache_utils "crmm/internal/util/cache"
	errors_utils "crmm/internal/util/errors"
	"crmm/internal/util/slug"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectService struct {
	projectRepository *projects_repositories.ProjectRepository
	teamService       *teams_services.TeamService
	auditLogService   *audit_logs.AuditLogService
	settingsService   *users_services.SettingsService

	projectCacheUtil *cache_utils.CacheUtil[projects_models.Project]
}

// CreateProject creates the project together with its team, whose only
// member is the creator as accepted owner.
func (s *ProjectService) CreateProject(
	request *projects_dto.CreateProjectRequestDTO,
	creator *users_models.User,
) (*projects_dto.ProjectResponseDTO, error) {
	settings, err := s.settingsService.GetSettings()
	if err != nil {
		return nil, errors_utils.Server("failed to get settings", err)
	}

	if !creator.CanCreateProjects(settings) {
		return nil, errors_utils.Unauthorized("insufficient permissions to create projects")
	}

	project := &projects_models.Project{
		ID:         uuid.New(),
		Name:       request.Name,
		Slug:       slug.Normalize(request.Slug),
		Summary:    request.Summary,
		Visibility: request.Visibility,
		Status:     projects_enums.ProjectStatusDraft,
		CreatedAt:  time.Now().UTC(),
	}

	if err := validateProjectDetails(project); err != nil {
		return nil, err
	}

	err = storage.GetDb().Transaction(func(tx *gorm.DB) error {
		team, err := s.teamService.CreateTeamWithOwner(tx, creator.ID)
		if err != nil {
			return errors_utils.Server("failed to create project team", err)
		}

		project.TeamID = team.ID

		return s.createOrUpdate(tx, project, true)
	})
	if err != nil {
		return nil, err
	}

	s.projectCacheUtil.Set(project.ID.String(), project)

	s.auditLogService.WriteProjectAuditLog(
		fmt.Sprintf("Project created: %s", project.Name),
		&creator.ID,
		project.ID,
	)

	return projects_dto.ToProjectResponse(project), nil
}

// GetProject resolves a slug or an id. Private projects are reported as
// missing to everyone but their members and administrators.
func (s *ProjectService) GetProject(slugOrID string, user *users_models.User) (*projects_dto.ProjectResponseDTO, error) {
	project, err := s.getProjectBySlugOrID(slugOrID)
	if err != nil {
		return nil, err
	}

	access, err := s.teamService.LoadAccess(nil, project.TeamID, user, false)
	if err != nil {
		return nil, err
	}

	if project.IsPrivate() && !access.IsVisibleMember() && !access.HasRootAccess() {
		return nil, errors_utils.NotFound("Project not found")
	}

	response := projects_dto.ToProjectResponse(project)
	if access.Member != nil {
		response.CurrentMember = teams_dto.ToMemberResponse(access.Member)
	}

	return response, nil
}

func (s *ProjectService) GetUserProjects(user *users_models.User) (*projects_dto.ListProjectsResponseDTO, error) {
	teamIDs, err := s.teamService.GetUserTeamIDs(user.ID)
	if err != nil {
		return nil, errors_utils.Server("failed to get user teams", err)
	}

	projects, err := s.projectRepository.GetProjectsOfTeams(teamIDs)
	if err != nil {
		return nil, errors_utils.Server("failed to get user projects", err)
	}

	return &projects_dto.ListProjectsResponseDTO{
		Projects: projects_dto.ToProjectResponses(projects),
	}, nil
}

func (s *ProjectService) UpdateProject(
	projectID uuid.UUID,
	request *projects_dto.UpdateProjectRequestDTO,
	user *users_models.User,
) (*projects_dto.ProjectResponseDTO, error) {
	var project *projects_models.Project

	err := storage.GetDb().Transaction(func(tx *gorm.DB) error {
		var err error

		project, err = s.loadProjectForUpdate(tx, projectID)
		if err != nil {
			return err
		}

		access, err := s.teamService.LoadAccess(tx, project.TeamID, user, false)
		if err != nil {
			return err
		}

		if !access.CanAccessProject(permissions.ProjectEditDetails) {
			return errors_utils.Unauthorized("insufficient permissions to update project")
		}

		project.Name = request.Name
		project.Slug = slug.Normalize(request.Slug)
		project.Summary = request.Summary
		project.Visibility = request.Visibility

		if err := validateProjectDetails(project); err != nil {
			return err
		}

		return s.createOrUpdate(tx, project, false)
	})
	if err != nil {
		return nil, err
	}

	s.afterProjectsChanged(project.ID)

	s.auditLogService.WriteProjectAuditLog(
		fmt.Sprintf("Project updated: %s", project.Name),
		&user.ID,
		project.ID,
	)

	return projects_dto.ToProjectResponse(project), nil
}

// UpdateProjectStatus is the moderation step that decides whether a project
// may show up in search.
func (s *ProjectService) UpdateProjectStatus(
	projectID uuid.UUID,
	status projects_enums.ProjectStatus,
	user *users_models.User,
) (*projects_dto.ProjectResponseDTO, error) {
	if user.Role != users_enums.UserRoleAdmin && user.Role != users_enums.UserRoleModerator {
		return nil, errors_utils.Unauthorized("only moderators can change the project status")
	}

	if !status.IsValid() {
		return nil, errors_utils.InvalidRequest("Invalid project status")
	}

	var project *projects_models.Project

	err := storage.GetDb().Transaction(func(tx *gorm.DB) error {
		var err error

		project, err = s.loadProjectForUpdate(tx, projectID)
		if err != nil {
			return err
		}

		project.Status = status

		return s.createOrUpdate(tx, project, false)
	})
	if err != nil {
		return nil, err
	}

	s.afterProjectsChanged(project.ID)

	s.auditLogService.WriteProjectAuditLog(
		fmt.Sprintf("Project status changed to %s", status),
		&user.ID,
		project.ID,
	)

	return projects_dto.ToProjectResponse(project), nil
}

func (s *ProjectService) DeleteProject(projectID uuid.UUID, user *users_models.User) error {
	var project *projects_models.Project

	err := storage.GetDb().Transaction(func(tx *gorm.DB) error {
		var err error

		project, err = s.loadProjectForUpdate(tx, projectID)
		if err != nil {
			return err
		}

		access, err := s.teamService.LoadAccess(tx, project.TeamID, user, true)
		if err != nil {
			return err
		}

		if !access.CanAccessProject(permissions.ProjectDeleteProject) {
			return errors_utils.Unauthorized("insufficient permissions to delete project")
		}

		if err := s.projectRepository.DeleteProject(tx, projectID); err != nil {
			return errors_utils.Server("failed to delete project", err)
		}

		if err := s.teamService.DeleteTeam(tx, project.TeamID); err != nil {
			return errors_utils.Server("failed to delete project team", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.afterProjectsChanged(projectID)

	s.auditLogService.WriteProjectAuditLog(
		fmt.Sprintf("Project deleted: %s", project.Name),
		&user.ID,
		projectID,
	)

	return nil
}

func (s *ProjectService) GetProjectAuditLogs(
	projectID uuid.UUID,
	user *users_models.User,
	request *audit_logs.GetAuditLogsRequest,
) (*audit_logs.GetAuditLogsResponse, error) {
	project, err := s.GetProjectByID(projectID)
	if err != nil {
		return nil, err
	}

	access, err := s.teamService.LoadAccess(nil, project.TeamID, user, false)
	if err != nil {
		return nil, err
	}

	if !access.IsVisibleMember() && !access.HasRootAccess() {
		return nil, errors_utils.Unauthorized("insufficient permissions to view project audit logs")
	}

	return s.auditLogService.GetProjectAuditLogs(projectID, request)
}

// GetProjectByID serves from cache; a missing project is NotFound.
func (s *ProjectService) GetProjectByID(projectID uuid.UUID) (*projects_models.Project, error) {
	project, err := s.projectCacheUtil.GetOrLoad(projectID.String(), func() (*projects_models.Project, error) {
		return s.projectRepository.GetProjectByID(nil, projectID)
	})
	if err != nil {
		return nil, errors_utils.Server("failed to get project", err)
	}

	if project == nil {
		return nil, errors_utils.NotFound("Project not found")
	}

	return project, nil
}

// GetProjectForUpdate locks the project for the rest of tx and bypasses the
// cache.
func (s *ProjectService) GetProjectForUpdate(tx *gorm.DB, projectID uuid.UUID) (*projects_models.Project, error) {
	return s.loadProjectForUpdate(tx, projectID)
}

func (s *ProjectService) GetProjectsByIDs(projectIDs []uuid.UUID) ([]*projects_models.Project, error) {
	return s.projectRepository.GetProjectsByIDs(projectIDs)
}

func (s *ProjectService) GetOrganisationProjects(
	tx *gorm.DB,
	organisationID uuid.UUID,
) ([]*projects_models.Project, error) {
	projects, err := s.projectRepository.GetOrganisationProjects(tx, organisationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get organisation projects: %w", err)
	}

	return projects, nil
}

func (s *ProjectService) SetOrganisation(tx *gorm.DB, projectID uuid.UUID, organisationID *uuid.UUID) error {
	if err := s.projectRepository.SetOrganisation(tx, projectID, organisationID); err != nil {
		return fmt.Errorf("failed to update project organisation: %w", err)
	}

	return nil
}

func (s *ProjectService) GetAllProjectIDs() ([]uuid.UUID, error) {
	return s.projectRepository.GetAllProjectIDs()
}

// InvalidateProjects drops cached copies after a change made outside this
// service, e.g. by an organisation cascade.
func (s *ProjectService) InvalidateProjects(projectIDs ...uuid.UUID) {
	keys := make([]string, 0, len(projectIDs))
	for _, projectID := range projectIDs {
		keys = append(keys, projectID.String())
	}

	s.projectCacheUtil.Invalidate(keys...)
}

// LoadProjectAccess loads the caller's position in the project's team.
func (s *ProjectService) LoadProjectAccess(
	tx *gorm.DB,
	project *projects_models.Project,
	user *users_models.User,
) (*teams_models.TeamAccess, error) {
	return s.teamService.LoadAccess(tx, project.TeamID, user, false)
}

func (s *ProjectService) afterProjectsChanged(projectIDs ...uuid.UUID) {
	s.InvalidateProjects(projectIDs...)
	s.teamService.NotifyProjectsChanged(projectIDs)
}

func (s *ProjectService) getProjectBySlugOrID(slugOrID string) (*projects_models.Project, error) {
	if projectID, err := uuid.Parse(slugOrID); err == nil {
		return s.GetProjectByID(projectID)
	}

	project, err := s.projectRepository.GetProjectBySlug(slug.Normalize(slugOrID))
	if err != nil {
		return nil, errors_utils.Server("failed to get project", err)
	}

	if project == nil {
		return nil, errors_utils.NotFound("Project not found")
	}

	return project, nil
}

func (s *ProjectService) loadProjectForUpdate(tx *gorm.DB, projectID uuid.UUID) (*projects_models.Project, error) {
	project, err := s.projectRepository.GetProjectForUpdate(tx, projectID)
	if err != nil {
		return nil, errors_utils.Server("failed to get project", err)
	}

	if project == nil {
		return nil, errors_utils.NotFound("Project not found")
	}

	return project, nil
}

func (s *ProjectService) createOrUpdate(tx *gorm.DB, project *projects_models.Project, isNew bool) error {
	var err error
	if isNew {
		err = s.projectRepository.CreateProject(tx, project)
	} else {
		err = s.projectRepository.UpdateProject(tx, project)
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors_utils.InvalidRequest("Slug already taken")
	}

	if err != nil {
		return errors_utils.Server("failed to save project", err)
	}

	return nil
}

func validateProjectDetails(project *projects_models.Project) error {
	if !slug.IsValid(project.Slug) {
		return errors_utils.InvalidRequest("slug may only contain lowercase letters, digits, '-' and '_'")
	}

	if !project.Visibility.IsValid() {
		return errors_utils.InvalidRequest("Invalid project visibility")
	}

	return nil
}

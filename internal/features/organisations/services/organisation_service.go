package organisations_services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"crmm/internal/features/audit_logs"
	"crmm/internal/features/files"
	organisations_dto "crmm/internal/features/organisations/dto"
	organisations_models "crmm/internal/features/organisations/models"
	organisations_repositories "crmm/internal/features/organisations/repositories"
	"crmm/internal/features/permissions"
	projects_dto "crmm/internal/features/projects/dto"
	projects_models "crmm/internal/features/projects/models"
	projects_services "crmm/internal/features/projects/services"
	teams_dto "crmm/internal/features/teams/dto"
	teams_enums "crmm/internal/features/teams/enums"
	teams_models "crmm/internal/features/teams/models"
	teams_services "crmm/internal/features/teams/services"
	users_models "crmm/internal/features/users/models"
	users_services "crmm/internal/features/users/services"
	"crmm/internal/metrics"
	"crmm/internal/storage"
	cache_utils "crmm/internal/util/cache"
	errors_utils "crmm/internal/util/errors"
	"crmm/internal/util/slug"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrganisationService struct {
	organisationRepository *organisations_repositories.OrganisationRepository
	teamService            *teams_services.TeamService
	projectService         *projects_services.ProjectService
	fileService            *files.FileService
	userService            *users_services.UserService
	settingsService        *users_services.SettingsService
	auditLogService        *audit_logs.AuditLogService
	logger                 *slog.Logger

	organisationCacheUtil *cache_utils.CacheUtil[organisations_models.Organisation]
}

// CreateOrganisation creates the organisation and its team with the creator
// as the accepted owner.
func (s *OrganisationService) CreateOrganisation(
	request *organisations_dto.CreateOrganisationRequestDTO,
	creator *users_models.User,
) (*organisations_dto.OrganisationResponseDTO, error) {
	settings, err := s.settingsService.GetSettings()
	if err != nil {
		return nil, errors_utils.Server("failed to get settings", err)
	}

	if !creator.CanCreateOrganisations(settings) {
		return nil, errors_utils.Unauthorized("insufficient permissions to create organisations")
	}

	organisation := &organisations_models.Organisation{
		ID:          uuid.New(),
		Name:        request.Name,
		Slug:        slug.Normalize(request.Slug),
		Description: request.Description,
		CreatedAt:   time.Now().UTC(),
	}

	if !slug.IsValid(organisation.Slug) {
		return nil, errors_utils.InvalidRequest("slug may only contain lowercase letters, digits, '-' and '_'")
	}

	err = storage.GetDb().Transaction(func(tx *gorm.DB) error {
		team, err := s.teamService.CreateTeamWithOwner(tx, creator.ID)
		if err != nil {
			return errors_utils.Server("failed to create organisation team", err)
		}

		organisation.TeamID = team.ID

		return s.save(tx, organisation, true)
	})
	if err != nil {
		return nil, err
	}

	s.organisationCacheUtil.Set(organisation.ID.String(), organisation)
	s.recordMutation("create_organisation", organisation, creator.ID, fmt.Sprintf("Organisation created: %s", organisation.Name))

	return organisations_dto.ToOrganisationResponse(organisation), nil
}

// GetOrganisation resolves a slug or an id. Outsiders only see accepted
// members.
func (s *OrganisationService) GetOrganisation(
	slugOrID string,
	user *users_models.User,
) (*organisations_dto.OrganisationResponseDTO, error) {
	organisation, err := s.getOrganisationBySlugOrID(slugOrID)
	if err != nil {
		return nil, err
	}

	access, err := s.teamService.LoadAccess(nil, organisation.TeamID, user, false)
	if err != nil {
		return nil, err
	}

	response := organisations_dto.ToOrganisationResponse(organisation)
	response.Members = teams_dto.ToMemberResponses(access.Members, isInsider(access))

	if access.Member != nil {
		response.CurrentMember = teams_dto.ToMemberResponse(access.Member)
	}

	return response, nil
}

func (s *OrganisationService) GetUserOrganisations(
	user *users_models.User,
) (*organisations_dto.ListOrganisationsResponseDTO, error) {
	return s.getOrganisationsOfUser(user.ID)
}

// GetOrganisationsOfUser lists the organisations someone is an accepted
// member of.
func (s *OrganisationService) GetOrganisationsOfUser(
	userSlug string,
) (*organisations_dto.ListOrganisationsResponseDTO, error) {
	user, err := s.userService.GetUserBySlug(userSlug)
	if err != nil {
		return nil, errors_utils.Server("failed to get user", err)
	}

	if user == nil {
		return nil, errors_utils.NotFound("User not found")
	}

	return s.getOrganisationsOfUser(user.ID)
}

// GetOrganisationProjects lists the organisation's projects. Private projects
// are only listed for accepted organisation members.
func (s *OrganisationService) GetOrganisationProjects(
	slugOrID string,
	user *users_models.User,
) (*projects_dto.ListProjectsResponseDTO, error) {
	organisation, err := s.getOrganisationBySlugOrID(slugOrID)
	if err != nil {
		return nil, err
	}

	access, err := s.teamService.LoadAccess(nil, organisation.TeamID, user, false)
	if err != nil {
		return nil, err
	}

	projects, err := s.projectService.GetOrganisationProjects(nil, organisation.ID)
	if err != nil {
		return nil, errors_utils.Server("failed to get organisation projects", err)
	}

	visible := make([]*projects_models.Project, 0, len(projects))
	for _, project := range projects {
		if project.IsPrivate() && !isInsider(access) {
			continue
		}

		visible = append(visible, project)
	}

	return &projects_dto.ListProjectsResponseDTO{
		Projects: projects_dto.ToProjectResponses(visible),
	}, nil
}

func (s *OrganisationService) UpdateOrganisation(
	organisationID uuid.UUID,
	request *organisations_dto.UpdateOrganisationRequestDTO,
	user *users_models.User,
) (*organisations_dto.OrganisationResponseDTO, error) {
	var organisation *organisations_models.Organisation

	err := storage.GetDb().Transaction(func(tx *gorm.DB) error {
		var err error

		organisation, _, err = s.loadForUpdate(tx, organisationID, user, permissions.OrgEditDetails,
			"You don't have access to edit the organisation details")
		if err != nil {
			return err
		}

		organisation.Name = request.Name
		organisation.Slug = slug.Normalize(request.Slug)
		organisation.Description = request.Description

		if !slug.IsValid(organisation.Slug) {
			return errors_utils.InvalidRequest("slug may only contain lowercase letters, digits, '-' and '_'")
		}

		return s.save(tx, organisation, false)
	})
	if err != nil {
		return nil, err
	}

	s.organisationCacheUtil.Invalidate(organisation.ID.String())
	s.recordMutation("update_organisation", organisation, user.ID, fmt.Sprintf("Organisation updated: %s", organisation.Name))

	// indexed projects carry the organisation name
	if projectIDs, err := s.teamService.GetOrganisationProjectIDs(organisation.ID); err != nil {
		s.logger.Error("failed to get organisation projects", "organisationId", organisation.ID, "error", err)
	} else {
		s.teamService.NotifyProjectsChanged(projectIDs)
	}

	return organisations_dto.ToOrganisationResponse(organisation), nil
}

// UpdateIcon stores a new icon and drops the previous one. Stored content is
// only removed once the database agrees.
func (s *OrganisationService) UpdateIcon(
	organisationID uuid.UUID,
	fileName string,
	data []byte,
	user *users_models.User,
) (*organisations_dto.OrganisationResponseDTO, error) {
	var (
		organisation *organisations_models.Organisation
		newIcon      *files.File
		oldIcon      *files.File
	)

	err := storage.GetDb().Transaction(func(tx *gorm.DB) error {
		var err error

		organisation, _, err = s.loadForUpdate(tx, organisationID, user, permissions.OrgEditDetails,
			"You don't have access to edit the organisation details")
		if err != nil {
			return err
		}

		newIcon, err = s.fileService.SaveImage(tx, fileName, data)
		if err != nil {
			return err
		}

		previousIconID := organisation.IconFileID
		organisation.IconFileID = &newIcon.ID

		if err := s.save(tx, organisation, false); err != nil {
			return err
		}

		if previousIconID != nil {
			oldIcon, err = s.fileService.DeleteFile(tx, *previousIconID)
			if err != nil {
				return errors_utils.Server("failed to delete previous icon", err)
			}
		}

		return nil
	})
	if err != nil {
		s.fileService.RemoveContent(newIcon)
		return nil, err
	}

	s.fileService.RemoveContent(oldIcon)
	s.organisationCacheUtil.Invalidate(organisation.ID.String())
	s.recordMutation("update_organisation_icon", organisation, user.ID, "Organisation icon updated")

	return organisations_dto.ToOrganisationResponse(organisation), nil
}

func (s *OrganisationService) DeleteIcon(
	organisationID uuid.UUID,
	user *users_models.User,
) (*organisations_dto.OrganisationResponseDTO, error) {
	var (
		organisation *organisations_models.Organisation
		oldIcon      *files.File
	)

	err := storage.GetDb().Transaction(func(tx *gorm.DB) error {
		var err error

		organisation, _, err = s.loadForUpdate(tx, organisationID, user, permissions.OrgEditDetails,
			"You don't have access to edit the organisation details")
		if err != nil {
			return err
		}

		if organisation.IconFileID == nil {
			return errors_utils.InvalidRequest("Organisation does not have an icon")
		}

		iconID := *organisation.IconFileID
		organisation.IconFileID = nil

		if err := s.save(tx, organisation, false); err != nil {
			return err
		}

		oldIcon, err = s.fileService.DeleteFile(tx, iconID)
		if err != nil {
			return errors_utils.Server("failed to delete icon", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.fileService.RemoveContent(oldIcon)
	s.organisationCacheUtil.Invalidate(organisation.ID.String())
	s.recordMutation("delete_organisation_icon", organisation, user.ID, "Organisation icon deleted")

	return organisations_dto.ToOrganisationResponse(organisation), nil
}

// DeleteOrganisation hands every organisation project back to the
// organisation owner as their only member, then removes the organisation and
// its team. Everything happens in one transaction.
func (s *OrganisationService) DeleteOrganisation(organisationID uuid.UUID, user *users_models.User) error {
	var (
		organisation *organisations_models.Organisation
		projectIDs   []uuid.UUID
		icon         *files.File
	)

	err := storage.GetDb().Transaction(func(tx *gorm.DB) error {
		var (
			access *teams_models.TeamAccess
			err    error
		)

		organisation, access, err = s.loadForUpdate(tx, organisationID, user, permissions.OrgDeleteOrganisation,
			"You don't have access to delete the organisation")
		if err != nil {
			return err
		}

		owner := teams_models.FindOwner(access.Members)
		if owner == nil {
			return errors_utils.Server("organisation has no owner", fmt.Errorf("organisation %s", organisation.ID))
		}

		projects, err := s.projectService.GetOrganisationProjects(tx, organisation.ID)
		if err != nil {
			return errors_utils.Server("failed to get organisation projects", err)
		}

		for _, project := range projects {
			if err := s.projectService.SetOrganisation(tx, project.ID, nil); err != nil {
				return errors_utils.Server("failed to detach project", err)
			}

			if err := s.teamService.ResetTeamToOwner(
				tx,
				project.TeamID,
				owner.UserID,
				teams_enums.MemberRoleInheritedOwner,
			); err != nil {
				return errors_utils.Server("failed to hand over project", err)
			}

			projectIDs = append(projectIDs, project.ID)
		}

		if err := s.organisationRepository.DeleteOrganisation(tx, organisation.ID); err != nil {
			return errors_utils.Server("failed to delete organisation", err)
		}

		if err := s.teamService.DeleteTeam(tx, organisation.TeamID); err != nil {
			return errors_utils.Server("failed to delete organisation team", err)
		}

		if organisation.IconFileID != nil {
			icon, err = s.fileService.DeleteFile(tx, *organisation.IconFileID)
			if err != nil {
				return errors_utils.Server("failed to delete icon", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.fileService.RemoveContent(icon)
	s.organisationCacheUtil.Invalidate(organisation.ID.String())
	s.projectService.InvalidateProjects(projectIDs...)
	s.teamService.NotifyProjectsChanged(projectIDs)
	s.recordMutation("delete_organisation", organisation, user.ID, fmt.Sprintf("Organisation deleted: %s", organisation.Name))

	return nil
}

// AddProject moves a project into the organisation. The caller needs
// add_project in the organisation and root access on the project; the
// project team is emptied since access is inherited from the organisation
// from now on.
func (s *OrganisationService) AddProject(
	organisationID uuid.UUID,
	projectID uuid.UUID,
	user *users_models.User,
) error {
	var (
		organisation *organisations_models.Organisation
		project      *projects_models.Project
	)

	err := storage.GetDb().Transaction(func(tx *gorm.DB) error {
		var err error

		organisation, _, err = s.loadForUpdate(tx, organisationID, user, permissions.OrgAddProject,
			"You don't have access to add projects to the organisation")
		if err != nil {
			return err
		}

		project, err = s.projectService.GetProjectForUpdate(tx, projectID)
		if err != nil {
			return err
		}

		projectAccess, err := s.teamService.LoadAccess(tx, project.TeamID, user, true)
		if err != nil {
			return err
		}

		if !projectAccess.HasRootAccess() {
			return errors_utils.Unauthorized("Only the project owner can add the project to an organisation")
		}

		if project.OrganisationID != nil {
			return errors_utils.InvalidRequest("Project is already part of an organisation")
		}

		if err := s.teamService.DeleteTeamMembers(tx, project.TeamID); err != nil {
			return errors_utils.Server("failed to clear project team", err)
		}

		if err := s.projectService.SetOrganisation(tx, project.ID, &organisation.ID); err != nil {
			return errors_utils.Server("failed to attach project", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.projectService.InvalidateProjects(project.ID)
	s.teamService.NotifyProjectsChanged([]uuid.UUID{project.ID})
	s.recordMutation("add_project", organisation, user.ID,
		fmt.Sprintf("Project %s added to organisation %s", project.Name, organisation.Name))

	return nil
}

// RemoveProject detaches a project; the caller becomes its only member as
// inherited owner.
func (s *OrganisationService) RemoveProject(
	organisationID uuid.UUID,
	projectID uuid.UUID,
	user *users_models.User,
) error {
	var (
		organisation *organisations_models.Organisation
		project      *projects_models.Project
	)

	err := storage.GetDb().Transaction(func(tx *gorm.DB) error {
		var err error

		organisation, _, err = s.loadForUpdate(tx, organisationID, user, permissions.OrgRemoveProject,
			"You don't have access to remove projects from the organisation")
		if err != nil {
			return err
		}

		project, err = s.projectService.GetProjectForUpdate(tx, projectID)
		if err != nil {
			return err
		}

		if project.OrganisationID == nil || *project.OrganisationID != organisation.ID {
			return errors_utils.NotFound("Project is not part of this organisation")
		}

		if err := s.projectService.SetOrganisation(tx, project.ID, nil); err != nil {
			return errors_utils.Server("failed to detach project", err)
		}

		if err := s.teamService.ResetTeamToOwner(
			tx,
			project.TeamID,
			user.ID,
			teams_enums.MemberRoleInheritedOwner,
		); err != nil {
			return errors_utils.Server("failed to hand over project", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.projectService.InvalidateProjects(project.ID)
	s.teamService.NotifyProjectsChanged([]uuid.UUID{project.ID})
	s.recordMutation("remove_project", organisation, user.ID,
		fmt.Sprintf("Project %s removed from organisation %s", project.Name, organisation.Name))

	return nil
}

func (s *OrganisationService) GetOrganisationAuditLogs(
	organisationID uuid.UUID,
	user *users_models.User,
	request *audit_logs.GetAuditLogsRequest,
) (*audit_logs.GetAuditLogsResponse, error) {
	organisation, err := s.GetOrganisationByID(organisationID)
	if err != nil {
		return nil, err
	}

	access, err := s.teamService.LoadAccess(nil, organisation.TeamID, user, false)
	if err != nil {
		return nil, err
	}

	if !isInsider(access) {
		return nil, errors_utils.Unauthorized("insufficient permissions to view organisation audit logs")
	}

	return s.auditLogService.GetOrganisationAuditLogs(organisationID, request)
}

// GetOrganisationByID serves from cache; members are never cached.
func (s *OrganisationService) GetOrganisationByID(organisationID uuid.UUID) (*organisations_models.Organisation, error) {
	organisation, err := s.organisationCacheUtil.GetOrLoad(
		organisationID.String(),
		func() (*organisations_models.Organisation, error) {
			return s.organisationRepository.GetOrganisationByID(nil, organisationID)
		},
	)
	if err != nil {
		return nil, errors_utils.Server("failed to get organisation", err)
	}

	if organisation == nil {
		return nil, errors_utils.NotFound("Organization not found")
	}

	return organisation, nil
}

func (s *OrganisationService) getOrganisationBySlugOrID(slugOrID string) (*organisations_models.Organisation, error) {
	if organisationID, err := uuid.Parse(slugOrID); err == nil {
		return s.GetOrganisationByID(organisationID)
	}

	organisation, err := s.organisationRepository.GetOrganisationBySlug(slug.Normalize(slugOrID))
	if err != nil {
		return nil, errors_utils.Server("failed to get organisation", err)
	}

	if organisation == nil {
		return nil, errors_utils.NotFound("Organization not found")
	}

	return organisation, nil
}

func (s *OrganisationService) getOrganisationsOfUser(
	userID uuid.UUID,
) (*organisations_dto.ListOrganisationsResponseDTO, error) {
	teamIDs, err := s.teamService.GetUserTeamIDs(userID)
	if err != nil {
		return nil, errors_utils.Server("failed to get user teams", err)
	}

	organisations, err := s.organisationRepository.GetOrganisationsOfTeams(teamIDs)
	if err != nil {
		return nil, errors_utils.Server("failed to get organisations", err)
	}

	return &organisations_dto.ListOrganisationsResponseDTO{
		Organisations: organisations_dto.ToOrganisationResponses(organisations),
	}, nil
}

// loadForUpdate locks the organisation and its team, then checks required.
func (s *OrganisationService) loadForUpdate(
	tx *gorm.DB,
	organisationID uuid.UUID,
	user *users_models.User,
	required permissions.OrganisationPermissions,
	deniedMessage string,
) (*organisations_models.Organisation, *teams_models.TeamAccess, error) {
	organisation, err := s.organisationRepository.GetOrganisationForUpdate(tx, organisationID)
	if err != nil {
		return nil, nil, errors_utils.Server("failed to get organisation", err)
	}

	if organisation == nil {
		return nil, nil, errors_utils.NotFound("Organization not found")
	}

	access, err := s.teamService.LoadAccess(tx, organisation.TeamID, user, true)
	if err != nil {
		return nil, nil, err
	}

	if !access.CanAccessOrganisation(required) {
		return nil, nil, errors_utils.Unauthorized(deniedMessage)
	}

	return organisation, access, nil
}

func (s *OrganisationService) save(tx *gorm.DB, organisation *organisations_models.Organisation, isNew bool) error {
	var err error
	if isNew {
		err = s.organisationRepository.CreateOrganisation(tx, organisation)
	} else {
		err = s.organisationRepository.UpdateOrganisation(tx, organisation)
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors_utils.InvalidRequest("Slug already taken")
	}

	if err != nil {
		return errors_utils.Server("failed to save organisation", err)
	}

	return nil
}

func (s *OrganisationService) recordMutation(
	operation string,
	organisation *organisations_models.Organisation,
	actorID uuid.UUID,
	message string,
) {
	metrics.TeamMutationsTotal.WithLabelValues(operation).Inc()
	s.auditLogService.WriteOrganisationAuditLog(message, &actorID, organisation.ID)

	s.logger.Info("organisation mutation committed",
		"operation", operation,
		"organisationId", organisation.ID,
		"actorId", actorID)
}

func isInsider(access *teams_models.TeamAccess) bool {
	return access.IsVisibleMember() || access.HasRootAccess()
}

package organisations_services

import (
	"crmm/internal/cache"
	"crmm/internal/features/audit_logs"
	"crmm/internal/features/files"
	organisations_models "crmm/internal/features/organisations/models"
	organisations_repositories "crmm/internal/features/organisations/repositories"
	projects_services "crmm/internal/features/projects/services"
	teams_services "crmm/internal/features/teams/services"
	users_services "crmm/internal/features/users/services"
	cache_utils "crmm/internal/util/cache"
	"crmm/internal/util/logger"
)

var organisationRepository = &organisations_repositories.OrganisationRepository{}

var organisationService = &OrganisationService{
	organisationRepository,
	teams_services.GetTeamService(),
	projects_services.GetProjectService(),
	files.GetFileService(),
	users_services.GetUserService(),
	users_services.GetSettingsService(),
	audit_logs.GetAuditLogService(),
	logger.GetLogger(),
	cache_utils.NewCacheUtil[organisations_models.Organisation](cache.GetCache(), "crmm_organisation:"),
}

func GetOrganisationService() *OrganisationService {
	return organisationService
}

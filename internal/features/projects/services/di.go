package projects_services

import (
	"crmm/internal/cache"
	"crmm/internal/features/audit_logs"
	projects_models "crmm/internal/features/projects/models"
	projects_repositories "crmm/internal/features/projects/repositories"
	teams_services "crmm/internal/features/teams/services"
	users_services "crmm/internal/features/users/services"
	cache_utils "crmm/internal/util/cache"
)

var projectRepository = &projects_repositories.ProjectRepository{}

var projectService = &ProjectService{
	projectRepository,
	teams_services.GetTeamService(),
	audit_logs.GetAuditLogService(),
	users_services.GetSettingsService(),
	cache_utils.NewCacheUtil[projects_models.Project](cache.GetCache(), "crmm_project:"),
}

func GetProjectService() *ProjectService {
	return projectService
}

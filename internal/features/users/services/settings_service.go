package users_services

import (
	"fmt"

	users_interfaces "crmm/internal/features/users/interfaces"
	users_models "crmm/internal/features/users/models"
	users_repositories "crmm/internal/features/users/repositories"
	errors_utils "crmm/internal/util/errors"
)

type SettingsService struct {
	userSettingsRepository *users_repositories.UsersSettingsRepository
	auditLogWriter         users_interfaces.AuditLogWriter
}

func (s *SettingsService) SetAuditLogWriter(writer users_interfaces.AuditLogWriter) {
	s.auditLogWriter = writer
}

func (s *SettingsService) GetSettings() (*users_models.UsersSettings, error) {
	return s.userSettingsRepository.GetSettings()
}

func (s *SettingsService) UpdateSettings(
	request users_models.UsersSettings,
	updatedBy *users_models.User,
) (*users_models.UsersSettings, error) {
	if !updatedBy.CanUpdateSettings() {
		return nil, errors_utils.Unauthorized("insufficient permissions to update settings")
	}

	existingSettings, err := s.userSettingsRepository.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get current settings: %w", err)
	}

	changes := []string{}

	if request.IsAllowExternalRegistrations != existingSettings.IsAllowExternalRegistrations {
		changes = append(changes, fmt.Sprintf(
			"isAllowExternalRegistrations: %t -> %t",
			existingSettings.IsAllowExternalRegistrations,
			request.IsAllowExternalRegistrations,
		))
		existingSettings.IsAllowExternalRegistrations = request.IsAllowExternalRegistrations
	}

	if request.IsMemberAllowedToCreateProjects != existingSettings.IsMemberAllowedToCreateProjects {
		changes = append(changes, fmt.Sprintf(
			"isMemberAllowedToCreateProjects: %t -> %t",
			existingSettings.IsMemberAllowedToCreateProjects,
			request.IsMemberAllowedToCreateProjects,
		))
		existingSettings.IsMemberAllowedToCreateProjects = request.IsMemberAllowedToCreateProjects
	}

	if request.IsMemberAllowedToCreateOrganisations != existingSettings.IsMemberAllowedToCreateOrganisations {
		changes = append(changes, fmt.Sprintf(
			"isMemberAllowedToCreateOrganisations: %t -> %t",
			existingSettings.IsMemberAllowedToCreateOrganisations,
			request.IsMemberAllowedToCreateOrganisations,
		))
		existingSettings.IsMemberAllowedToCreateOrganisations = request.IsMemberAllowedToCreateOrganisations
	}

	if err := s.userSettingsRepository.UpdateSettings(existingSettings); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	for _, change := range changes {
		s.auditLogWriter.WriteUserAuditLog("Settings changed, "+change, updatedBy.ID)
	}

	return existingSettings, nil
}

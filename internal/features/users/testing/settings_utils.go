package users_testing

import (
	users_models "crmm/internal/features/users/models"
	users_repositories "crmm/internal/features/users/repositories"
)

func EnableExternalRegistrations() {
	updateUsersSettings(func(settings *users_models.UsersSettings) {
		settings.IsAllowExternalRegistrations = true
	})
}

func DisableExternalRegistrations() {
	updateUsersSettings(func(settings *users_models.UsersSettings) {
		settings.IsAllowExternalRegistrations = false
	})
}

func EnableMemberProjectCreation() {
	updateUsersSettings(func(settings *users_models.UsersSettings) {
		settings.IsMemberAllowedToCreateProjects = true
	})
}

func DisableMemberProjectCreation() {
	updateUsersSettings(func(settings *users_models.UsersSettings) {
		settings.IsMemberAllowedToCreateProjects = false
	})
}

func EnableMemberOrganisationCreation() {
	updateUsersSettings(func(settings *users_models.UsersSettings) {
		settings.IsMemberAllowedToCreateOrganisations = true
	})
}

func DisableMemberOrganisationCreation() {
	updateUsersSettings(func(settings *users_models.UsersSettings) {
		settings.IsMemberAllowedToCreateOrganisations = false
	})
}

func ResetSettingsToDefaults() {
	updateUsersSettings(func(settings *users_models.UsersSettings) {
		settings.IsAllowExternalRegistrations = true
		settings.IsMemberAllowedToCreateProjects = true
		settings.IsMemberAllowedToCreateOrganisations = true
	})
}

func updateUsersSettings(change func(settings *users_models.UsersSettings)) {
	repository := &users_repositories.UsersSettingsRepository{}
	settings, err := repository.GetSettings()
	if err != nil {
		panic(err)
	}

	change(settings)

	if err := repository.UpdateSettings(settings); err != nil {
		panic(err)
	}
}

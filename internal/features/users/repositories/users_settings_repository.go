package users_repositories

import (
	"errors"

	user_models "crmm/internal/features/users/models"
	"crmm/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UsersSettingsRepository struct{}

func (r *UsersSettingsRepository) GetSettings() (*user_models.UsersSettings, error) {
	var settings user_models.UsersSettings

	err := storage.GetDb().First(&settings).Error
	if err == nil {
		return &settings, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	defaultSettings := &user_models.UsersSettings{
		ID:                                   uuid.New(),
		IsAllowExternalRegistrations:         true,
		IsMemberAllowedToCreateProjects:      true,
		IsMemberAllowedToCreateOrganisations: true,
	}

	if err := storage.GetDb().Create(defaultSettings).Error; err != nil {
		return nil, err
	}

	return defaultSettings, nil
}

func (r *UsersSettingsRepository) UpdateSettings(settings *user_models.UsersSettings) error {
	existingSettings, err := r.GetSettings()
	if err != nil {
		return err
	}

	settings.ID = existingSettings.ID

	return storage.GetDb().Save(settings).Error
}

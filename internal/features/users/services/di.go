package users_services

import (
	user_repositories "crmm/internal/features/users/repositories"
)

var secretKeyRepository = &user_repositories.SecretKeyRepository{}
var userRepository = &user_repositories.UserRepository{}
var usersSettingsRepository = &user_repositories.UsersSettingsRepository{}

var settingsService = &SettingsService{
	userSettingsRepository: usersSettingsRepository,
}
var userService = &UserService{
	userRepository:      userRepository,
	secretKeyRepository: secretKeyRepository,
	settingsService:     settingsService,
}
var managementService = &UserManagementService{
	userRepository: userRepository,
}

func GetUserService() *UserService {
	return userService
}

func GetSettingsService() *SettingsService {
	return settingsService
}

func GetManagementService() *UserManagementService {
	return managementService
}

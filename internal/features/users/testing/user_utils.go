package users_testing

import (
	"time"

	users_dto "crmm/internal/features/users/dto"
	users_enums "crmm/internal/features/users/enums"
	users_models "crmm/internal/features/users/models"
	users_repositories "crmm/internal/features/users/repositories"
	users_services "crmm/internal/features/users/services"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const TestUserPassword = "testpassword123"

var testPasswordHash = mustHash(TestUserPassword)

func CreateTestUser(role users_enums.UserRole) *users_dto.SignInResponseDTO {
	userID := uuid.New()
	username := string(role) + "-" + userID.String()[:8]

	hashedPassword := testPasswordHash
	user := &users_models.User{
		ID:                   userID,
		Username:             username,
		Email:                username + "@test.com",
		HashedPassword:       &hashedPassword,
		PasswordCreationTime: time.Now().UTC(),
		CreatedAt:            time.Now().UTC(),
		Role:                 role,
		Status:               users_enums.UserStatusActive,
	}

	userRepository := &users_repositories.UserRepository{}
	if err := userRepository.CreateUser(user); err != nil {
		panic(err)
	}

	response, err := users_services.GetUserService().GenerateAccessToken(user)
	if err != nil {
		panic(err)
	}

	return response
}

func ReacreateInitAdminAndGetAccess() *users_dto.SignInResponseDTO {
	RecreateInitialAdmin()

	userRepository := &users_repositories.UserRepository{}
	user, err := userRepository.GetUserByEmail(users_repositories.InitialAdminEmail)
	if err != nil {
		panic(err)
	}

	response, err := users_services.GetUserService().GenerateAccessToken(user)
	if err != nil {
		panic(err)
	}

	return response
}

func RecreateInitialAdmin() {
	userRepository := &users_repositories.UserRepository{}
	err := userRepository.RenameUserEmailForTests(
		users_repositories.InitialAdminEmail,
		"admin-"+uuid.New().String(),
	)
	if err != nil {
		panic(err)
	}

	if err := users_services.GetUserService().CreateInitialAdmin(); err != nil {
		panic(err)
	}
}

func mustHash(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	return string(hash)
}

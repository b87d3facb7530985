package users_controllers

import (
	"net/http"
	"testing"

	users_dto "crmm/internal/features/users/dto"
	users_enums "crmm/internal/features/users/enums"
	users_middleware "crmm/internal/features/users/middleware"
	users_services "crmm/internal/features/users/services"
	users_testing "crmm/internal/features/users/testing"
	test_utils "crmm/internal/util/testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func Test_AdminLifecycleE2E_CompletesSuccessfully(t *testing.T) {
	router := createE2ETestRouter()

	users_testing.RecreateInitialAdmin()
	users_testing.ResetSettingsToDefaults()

	// 1. Set initial admin password
	adminPasswordRequest := users_dto.SetAdminPasswordRequestDTO{
		Password: "adminpassword123",
	}
	test_utils.MakePostRequest(t, router, "/api/v1/users/admin/set-password", "", adminPasswordRequest, http.StatusOK)

	// 2. Admin signs in
	var adminSigninResponse users_dto.SignInResponseDTO
	test_utils.MakePostRequestAndUnmarshal(
		t,
		router,
		"/api/v1/users/signin",
		"",
		users_dto.SignInRequestDTO{Email: "admin", Password: "adminpassword123"},
		http.StatusOK,
		&adminSigninResponse,
	)

	// 3. A user registers
	username := "e2e-" + uuid.New().String()[:8]
	userSignupRequest := users_dto.SignUpRequestDTO{
		Username: username,
		Email:    username + "@example.com",
		Password: "userpassword123",
	}
	test_utils.MakePostRequest(t, router, "/api/v1/users/signup", "", userSignupRequest, http.StatusOK)

	// 4. Admin lists users and sees the new user
	var listUsersResponse users_dto.ListUsersResponseDTO
	test_utils.MakeGetRequestAndUnmarshal(
		t,
		router,
		"/api/v1/users/management",
		"Bearer "+adminSigninResponse.Token,
		http.StatusOK,
		&listUsersResponse,
	)
	assert.GreaterOrEqual(t, len(listUsersResponse.Users), 2)

	// 5. Root admin makes the user a moderator
	var signinResponse users_dto.SignInResponseDTO
	test_utils.MakePostRequestAndUnmarshal(
		t,
		router,
		"/api/v1/users/signin",
		"",
		users_dto.SignInRequestDTO{Email: userSignupRequest.Email, Password: userSignupRequest.Password},
		http.StatusOK,
		&signinResponse,
	)

	test_utils.MakePutRequest(
		t,
		router,
		"/api/v1/users/management/"+signinResponse.UserID.String()+"/role",
		"Bearer "+adminSigninResponse.Token,
		users_dto.ChangeUserRoleRequestDTO{Role: users_enums.UserRoleModerator},
		http.StatusOK,
	)

	var profileResponse users_dto.UserProfileResponseDTO
	test_utils.MakeGetRequestAndUnmarshal(
		t,
		router,
		"/api/v1/users/me",
		"Bearer "+signinResponse.Token,
		http.StatusOK,
		&profileResponse,
	)
	assert.Equal(t, users_enums.UserRoleModerator, profileResponse.Role)
}

func Test_UserLifecycleE2E_CompletesSuccessfully(t *testing.T) {
	router := createE2ETestRouter()
	users_testing.ResetSettingsToDefaults()

	// 1. User registers
	username := "Lifecycle_" + uuid.New().String()[:8]
	userEmail := "TestUser" + uuid.New().String() + "@example.com"
	userSignupRequest := users_dto.SignUpRequestDTO{
		Username: username,
		Email:    userEmail,
		Password: "userpassword123",
	}
	test_utils.MakePostRequest(t, router, "/api/v1/users/signup", "", userSignupRequest, http.StatusOK)

	// 2. User signs in with a differently cased email
	var signinResponse users_dto.SignInResponseDTO
	test_utils.MakePostRequestAndUnmarshal(
		t,
		router,
		"/api/v1/users/signin",
		"",
		users_dto.SignInRequestDTO{Email: userEmail, Password: "userpassword123"},
		http.StatusOK,
		&signinResponse,
	)
	assert.NotEmpty(t, signinResponse.Token)
	assert.NotEqual(t, uuid.Nil, signinResponse.UserID)
	assert.Equal(t, username, signinResponse.Username)

	// 3. User gets own profile
	var profileResponse users_dto.UserProfileResponseDTO
	test_utils.MakeGetRequestAndUnmarshal(
		t,
		router,
		"/api/v1/users/management/"+signinResponse.UserID.String(),
		"Bearer "+signinResponse.Token,
		http.StatusOK,
		&profileResponse,
	)
	assert.Equal(t, signinResponse.UserID, profileResponse.ID)
	assert.Equal(t, username, profileResponse.Username)
	assert.Equal(t, users_enums.UserRoleUser, profileResponse.Role)
	assert.True(t, profileResponse.IsActive)
}

func createUserTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	v1 := router.Group("/api/v1")

	GetUserController().RegisterRoutes(v1)

	protected := v1.Group("").Use(users_middleware.AuthMiddleware(users_services.GetUserService()))
	GetUserController().RegisterProtectedRoutes(protected.(*gin.RouterGroup))
	GetUserController().SetSignInLimiter(rate.NewLimiter(rate.Limit(100), 100))

	setupAuditLogStubs()

	return router
}

func createSettingsTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	v1 := router.Group("/api/v1")

	protected := v1.Group("").Use(users_middleware.AuthMiddleware(users_services.GetUserService()))
	GetSettingsController().RegisterRoutes(protected.(*gin.RouterGroup))

	setupAuditLogStubs()

	return router
}

func createManagementTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	v1 := router.Group("/api/v1")

	protected := v1.Group("").Use(users_middleware.AuthMiddleware(users_services.GetUserService()))
	GetManagementController().RegisterRoutes(protected.(*gin.RouterGroup))

	setupAuditLogStubs()

	return router
}

func createE2ETestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	v1 := router.Group("/api/v1")

	GetUserController().RegisterRoutes(v1)
	GetUserController().SetSignInLimiter(rate.NewLimiter(rate.Limit(100), 100))

	protected := v1.Group("").Use(users_middleware.AuthMiddleware(users_services.GetUserService()))
	GetUserController().RegisterProtectedRoutes(protected.(*gin.RouterGroup))
	GetSettingsController().RegisterRoutes(protected.(*gin.RouterGroup))
	GetManagementController().RegisterRoutes(protected.(*gin.RouterGroup))

	setupAuditLogStubs()

	return router
}

func setupAuditLogStubs() {
	users_services.GetUserService().SetAuditLogWriter(&AuditLogWriterStub{})
	users_services.GetSettingsService().SetAuditLogWriter(&AuditLogWriterStub{})
	users_services.GetManagementService().SetAuditLogWriter(&AuditLogWriterStub{})
}

type AuditLogWriterStub struct{}

func (a *AuditLogWriterStub) WriteUserAuditLog(message string, userID uuid.UUID) {
	// do nothing
}

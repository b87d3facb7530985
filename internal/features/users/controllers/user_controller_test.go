package users_controllers

import (
	"net/http"
	"strings"
	"testing"

	users_dto "crmm/internal/features/users/dto"
	users_enums "crmm/internal/features/users/enums"
	users_testing "crmm/internal/features/users/testing"
	test_utils "crmm/internal/util/testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func Test_SignUpUser_RejectsInvalidAccounts(t *testing.T) {
	router := createUserTestRouter()
	users_testing.ResetSettingsToDefaults()

	taken := newSignUpRequest("Taken_")
	test_utils.MakePostRequest(t, router, "/api/v1/users/signup", "", taken, http.StatusOK)

	cases := []struct {
		name     string
		request  users_dto.SignUpRequestDTO
		contains string
	}{
		{"missing email", users_dto.SignUpRequestDTO{Username: "valid-name", Password: "testpassword123"}, ""},
		{"missing password", users_dto.SignUpRequestDTO{Username: "valid-name", Email: "x@example.com"}, ""},
		{"short password", users_dto.SignUpRequestDTO{Username: "valid-name", Email: "x@example.com", Password: "short"}, ""},
		{"missing username", users_dto.SignUpRequestDTO{Email: "x@example.com", Password: "testpassword123"}, ""},
		{"malformed email", users_dto.SignUpRequestDTO{Username: "valid-name", Email: "nope", Password: "testpassword123"}, ""},
		{
			"forbidden characters",
			users_dto.SignUpRequestDTO{Username: "bad name!", Email: uniqueEmail(), Password: "testpassword123"},
			"username may only contain",
		},
		{
			"duplicate email",
			users_dto.SignUpRequestDTO{Username: "other-" + uuid.NewString()[:8], Email: taken.Email, Password: "testpassword123"},
			"already exists",
		},
		{
			"username taken in another case",
			users_dto.SignUpRequestDTO{Username: strings.ToLower(taken.Username), Email: uniqueEmail(), Password: "testpassword123"},
			"username is already taken",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp := test_utils.MakePostRequest(t, router, "/api/v1/users/signup", "", c.request, http.StatusBadRequest)
			if c.contains != "" {
				assert.Contains(t, string(resp.Body), c.contains)
			}
		})
	}
}

func Test_SignUpUser_WhenExternalRegistrationsDisabled_ReturnsBadRequest(t *testing.T) {
	router := createUserTestRouter()
	users_testing.DisableExternalRegistrations()
	defer users_testing.ResetSettingsToDefaults()

	resp := test_utils.MakePostRequest(
		t, router, "/api/v1/users/signup", "", newSignUpRequest("closed-"), http.StatusBadRequest,
	)
	assert.Contains(t, string(resp.Body), "external registration is disabled")
}

func Test_SignInUser_ChecksCredentials(t *testing.T) {
	router := createUserTestRouter()
	users_testing.ResetSettingsToDefaults()

	request := newSignUpRequest("signin-")
	test_utils.MakePostRequest(t, router, "/api/v1/users/signup", "", request, http.StatusOK)

	var response users_dto.SignInResponseDTO
	test_utils.MakePostRequestAndUnmarshal(
		t,
		router,
		"/api/v1/users/signin",
		"",
		users_dto.SignInRequestDTO{Email: request.Email, Password: request.Password},
		http.StatusOK,
		&response,
	)
	assert.NotEmpty(t, response.Token)
	assert.NotEqual(t, uuid.Nil, response.UserID)

	resp := test_utils.MakePostRequest(
		t, router, "/api/v1/users/signin", "",
		users_dto.SignInRequestDTO{Email: request.Email, Password: "wrongpassword"},
		http.StatusBadRequest,
	)
	assert.Contains(t, string(resp.Body), "password is incorrect")

	resp = test_utils.MakePostRequest(
		t, router, "/api/v1/users/signin", "",
		users_dto.SignInRequestDTO{Email: uniqueEmail(), Password: "testpassword123"},
		http.StatusBadRequest,
	)
	assert.Contains(t, string(resp.Body), "does not exist")
}

func Test_Endpoints_WithInvalidJSON_ReturnBadRequest(t *testing.T) {
	router := createUserTestRouter()
	testUser := users_testing.CreateTestUser(users_enums.UserRoleUser)

	cases := []struct {
		method string
		url    string
		token  string
	}{
		{http.MethodPost, "/api/v1/users/signup", ""},
		{http.MethodPost, "/api/v1/users/signin", ""},
		{http.MethodPost, "/api/v1/users/admin/set-password", ""},
		{http.MethodPut, "/api/v1/users/change-password", "Bearer " + testUser.Token},
	}

	for _, c := range cases {
		t.Run(c.url, func(t *testing.T) {
			resp := test_utils.MakeRequest(t, router, test_utils.RequestOptions{
				Method:         c.method,
				URL:            c.url,
				Body:           "invalid json",
				AuthToken:      c.token,
				ExpectedStatus: http.StatusBadRequest,
			})
			assert.Contains(t, string(resp.Body), "Invalid request format")
		})
	}
}

func Test_SetAdminPassword_FirstLaunchFlow(t *testing.T) {
	router := createUserTestRouter()
	users_testing.RecreateInitialAdmin()

	var hasPassword users_dto.IsAdminHasPasswordResponseDTO
	test_utils.MakeGetRequestAndUnmarshal(t, router, "/api/v1/users/admin/has-password", "", http.StatusOK, &hasPassword)
	assert.False(t, hasPassword.HasPassword)

	for _, password := range []string{"", "short"} {
		test_utils.MakePostRequest(
			t, router, "/api/v1/users/admin/set-password", "",
			users_dto.SetAdminPasswordRequestDTO{Password: password},
			http.StatusBadRequest,
		)
	}

	test_utils.MakePostRequest(
		t, router, "/api/v1/users/admin/set-password", "",
		users_dto.SetAdminPasswordRequestDTO{Password: "adminpassword123"},
		http.StatusOK,
	)

	test_utils.MakeGetRequestAndUnmarshal(t, router, "/api/v1/users/admin/has-password", "", http.StatusOK, &hasPassword)
	assert.True(t, hasPassword.HasPassword)
}

func Test_ChangeUserPassword_ReplacesOldPassword(t *testing.T) {
	router := createUserTestRouter()
	users_testing.ResetSettingsToDefaults()

	request := newSignUpRequest("changepass-")
	session := signUpAndSignIn(t, router, request)

	test_utils.MakePutRequest(t, router, "/api/v1/users/change-password", "", users_dto.ChangePasswordRequestDTO{
		NewPassword: "newpassword123",
	}, http.StatusUnauthorized)

	for _, invalid := range []users_dto.ChangePasswordRequestDTO{{}, {NewPassword: "short"}} {
		test_utils.MakePutRequest(
			t, router, "/api/v1/users/change-password", "Bearer "+session.Token, invalid, http.StatusBadRequest,
		)
	}

	test_utils.MakePutRequest(t, router, "/api/v1/users/change-password", "Bearer "+session.Token, users_dto.ChangePasswordRequestDTO{
		NewPassword: "newpassword123",
	}, http.StatusOK)

	test_utils.MakePostRequest(t, router, "/api/v1/users/signin", "", users_dto.SignInRequestDTO{
		Email:    request.Email,
		Password: request.Password,
	}, http.StatusBadRequest)
	test_utils.MakePostRequest(t, router, "/api/v1/users/signin", "", users_dto.SignInRequestDTO{
		Email:    request.Email,
		Password: "newpassword123",
	}, http.StatusOK)
}

func Test_GetCurrentUser_WithValidToken_ReturnsProfile(t *testing.T) {
	router := createUserTestRouter()
	testUser := users_testing.CreateTestUser(users_enums.UserRoleModerator)

	var profile users_dto.UserProfileResponseDTO
	test_utils.MakeGetRequestAndUnmarshal(t, router, "/api/v1/users/me", "Bearer "+testUser.Token, http.StatusOK, &profile)

	assert.Equal(t, testUser.UserID, profile.ID)
	assert.Equal(t, testUser.Username, profile.Username)
	assert.Equal(t, users_enums.UserRoleModerator, profile.Role)

	test_utils.MakeGetRequest(t, router, "/api/v1/users/me", "Bearer not-a-token", http.StatusUnauthorized)
}

func newSignUpRequest(usernamePrefix string) users_dto.SignUpRequestDTO {
	return users_dto.SignUpRequestDTO{
		Username: usernamePrefix + uuid.NewString()[:8],
		Email:    uniqueEmail(),
		Password: "testpassword123",
	}
}

func uniqueEmail() string {
	return "user" + uuid.NewString() + "@example.com"
}

func signUpAndSignIn(t *testing.T, router *gin.Engine, request users_dto.SignUpRequestDTO) users_dto.SignInResponseDTO {
	test_utils.MakePostRequest(t, router, "/api/v1/users/signup", "", request, http.StatusOK)

	var session users_dto.SignInResponseDTO
	test_utils.MakePostRequestAndUnmarshal(
		t,
		router,
		"/api/v1/users/signin",
		"",
		users_dto.SignInRequestDTO{Email: request.Email, Password: request.Password},
		http.StatusOK,
		&session,
	)

	return session
}

package audit_logs

import (
	"net/http"
	"testing"
	"time"

	user_enums "crmm/internal/features/users/enums"
	users_middleware "crmm/internal/features/users/middleware"
	users_services "crmm/internal/features/users/services"
	users_testing "crmm/internal/features/users/testing"
	test_utils "crmm/internal/util/testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func Test_GetGlobalAuditLogs_AdminsOnly(t *testing.T) {
	router := createRouter()
	service := GetAuditLogService()
	marker := uuid.NewString()
	projectID := uuid.New()

	admin := users_testing.CreateTestUser(user_enums.UserRoleAdmin)
	createAuditLog(service, "member change "+marker, &admin.UserID, nil)
	createAuditLog(service, "project change "+marker, nil, &projectID)

	var response GetAuditLogsResponse
	test_utils.MakeGetRequestAndUnmarshal(
		t, router, "/api/v1/audit-logs/global?limit=100", "Bearer "+admin.Token, http.StatusOK, &response,
	)
	messages := extractMessages(response.AuditLogs)
	assert.Contains(t, messages, "member change "+marker)
	assert.Contains(t, messages, "project change "+marker)

	for _, role := range []user_enums.UserRole{user_enums.UserRoleModerator, user_enums.UserRoleUser} {
		caller := users_testing.CreateTestUser(role)
		resp := test_utils.MakeGetRequest(
			t, router, "/api/v1/audit-logs/global", "Bearer "+caller.Token, http.StatusForbidden,
		)
		assert.Contains(t, string(resp.Body), "only administrators can view global audit logs")
	}
}

func Test_GetUserAuditLogs_OwnLogsOrAdmin(t *testing.T) {
	router := createRouter()
	service := GetAuditLogService()
	admin := users_testing.CreateTestUser(user_enums.UserRoleAdmin)
	owner := users_testing.CreateTestUser(user_enums.UserRoleUser)
	stranger := users_testing.CreateTestUser(user_enums.UserRoleUser)

	createAuditLog(service, "transferred ownership", &owner.UserID, nil)
	createAuditLog(service, "left team", &owner.UserID, nil)
	createAuditLog(service, "joined team", &stranger.UserID, nil)

	url := "/api/v1/audit-logs/users/" + owner.UserID.String() + "?limit=100"

	for _, caller := range []string{owner.Token, admin.Token} {
		var response GetAuditLogsResponse
		test_utils.MakeGetRequestAndUnmarshal(t, router, url, "Bearer "+caller, http.StatusOK, &response)
		assert.ElementsMatch(t, []string{"transferred ownership", "left team"}, extractMessages(response.AuditLogs))
	}

	resp := test_utils.MakeGetRequest(t, router, url, "Bearer "+stranger.Token, http.StatusForbidden)
	assert.Contains(t, string(resp.Body), "insufficient permissions")
}

func Test_GetGlobalAuditLogs_WithBeforeDate_ReturnsOlderLogsOnly(t *testing.T) {
	router := createRouter()
	admin := users_testing.CreateTestUser(user_enums.UserRoleAdmin)
	before := time.Now().UTC().Add(-30 * time.Minute)

	var response GetAuditLogsResponse
	test_utils.MakeGetRequestAndUnmarshal(
		t,
		router,
		"/api/v1/audit-logs/global?limit=1000&beforeDate="+before.Format(time.RFC3339),
		"Bearer "+admin.Token,
		http.StatusOK,
		&response,
	)

	for _, log := range response.AuditLogs {
		assert.True(t, log.CreatedAt.Before(before))
	}
}

func createRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupDependencies()

	v1 := router.Group("/api/v1")
	protected := v1.Group("").Use(users_middleware.AuthMiddleware(users_services.GetUserService()))
	GetAuditLogController().RegisterRoutes(protected.(*gin.RouterGroup))

	return router
}

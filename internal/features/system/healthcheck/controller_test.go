package system_healthcheck

import (
	"net/http"
	"testing"

	test_utils "crmm/internal/util/testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func Test_CheckHealth_WhenDatabaseAndDiskAreFine_ReturnsHealthy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	GetHealthcheckController().RegisterRoutes(router.Group("/api/v1"))

	var response map[string]string
	test_utils.MakeGetRequestAndUnmarshal(t, router, "/api/v1/system/health", "", http.StatusOK, &response)

	assert.Equal(t, "healthy", response["status"])
}

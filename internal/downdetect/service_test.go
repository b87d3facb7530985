package downdetect

import (
	"net/http"
	"testing"

	"crmm/internal/features/search"
	test_utils "crmm/internal/util/testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func Test_IsAvailable_WhenEverythingIsUp_ReturnsOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	GetDowndetectController().RegisterRoutes(router.Group("/api/v1"))

	test_utils.MakeGetRequest(t, router, "/api/v1/downdetect/is-available", "", http.StatusOK)
}

func Test_IsAvailable_WhenOpenSearchIsDown_ReturnsError(t *testing.T) {
	service := &DowndetectService{search.GetUnavailableSearchRepository()}

	err := service.IsAvailable()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "OpenSearch check failed")
	}
}

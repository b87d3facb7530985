package search

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"crmm/internal/config"
	organisations_services "crmm/internal/features/organisations/services"
	projects_services "crmm/internal/features/projects/services"
	teams_services "crmm/internal/features/teams/services"
	cache_utils "crmm/internal/util/cache"
	"crmm/internal/util/logger"
)

var env = config.GetEnv()

var searchRepository = &SearchRepository{
	client: &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	},
	baseURL: strings.TrimRight(fmt.Sprintf("%s:%s", env.OpenSearchURL, env.OpenSearchAPIPort), "/"),
	index:   env.OpenSearchProjectsIndex,
	logger:  logger.GetLogger(),
}

var searchSyncService = &SearchSyncService{
	searchRepository,
	cache_utils.NewValkeyQueueService(),
	projects_services.GetProjectService(),
	teams_services.GetTeamService(),
	organisations_services.GetOrganisationService(),
	logger.GetLogger(),
}

var searchBackgroundService = &SearchBackgroundService{
	searchSyncService: searchSyncService,
	logger:            logger.GetLogger(),
}

var searchController = &SearchController{
	searchSyncService,
}

var setupOnce sync.Once

func GetSearchRepository() *SearchRepository {
	return searchRepository
}

// GetUnavailableSearchRepository points at a port nothing listens on.
func GetUnavailableSearchRepository() *SearchRepository {
	return &SearchRepository{
		client:  &http.Client{Timeout: 2 * time.Second},
		baseURL: "http://localhost:1",
		index:   env.OpenSearchProjectsIndex,
		logger:  logger.GetLogger(),
	}
}

func GetSearchSyncService() *SearchSyncService {
	return searchSyncService
}

func GetSearchBackgroundService() *SearchBackgroundService {
	return searchBackgroundService
}

func GetSearchController() *SearchController {
	return searchController
}

func SetupDependencies() {
	setupOnce.Do(func() {
		teams_services.GetTeamService().AddProjectsChangedListener(searchSyncService)
	})
}

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	organisations_services "crmm/internal/features/organisations/services"
	projects_models "crmm/internal/features/projects/models"
	projects_services "crmm/internal/features/projects/services"
	teams_models "crmm/internal/features/teams/models"
	teams_services "crmm/internal/features/teams/services"
	"crmm/internal/metrics"
	cache_utils "crmm/internal/util/cache"
	errors_utils "crmm/internal/util/errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	projectsQueueKey = "crmm:search:projects:queue"

	queueBatchSize        = 500
	documentWorkersCount  = 4
	defaultSearchPageSize = 20
)

// SearchSyncService keeps the projects index in line with the database. Changed
// project ids go through a Valkey queue so that any instance can report a
// change while a single worker writes to OpenSearch.
type SearchSyncService struct {
	searchRepository    *SearchRepository
	queueService        *cache_utils.ValkeyQueueService
	projectService      *projects_services.ProjectService
	teamService         *teams_services.TeamService
	organisationService *organisations_services.OrganisationService
	logger              *slog.Logger
}

func (s *SearchSyncService) OnProjectsChanged(projectIDs []uuid.UUID) {
	if err := s.QueueProjects(projectIDs); err != nil {
		s.logger.Error("failed to queue projects for search sync",
			"projects", len(projectIDs),
			"error", err)
	}
}

func (s *SearchSyncService) QueueProjects(projectIDs []uuid.UUID) error {
	if len(projectIDs) == 0 {
		return nil
	}

	items := make([][]byte, 0, len(projectIDs))
	for _, projectID := range projectIDs {
		data, err := json.Marshal(projectID)
		if err != nil {
			return fmt.Errorf("failed to marshal project id: %w", err)
		}

		items = append(items, data)
	}

	return s.queueService.EnqueueBatch(projectsQueueKey, items)
}

// ProcessQueue syncs one batch of queued projects and reports how many ids it
// took off the queue.
func (s *SearchSyncService) ProcessQueue(ctx context.Context) (int, error) {
	items, err := s.queueService.DequeueBatch(projectsQueueKey, queueBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to dequeue projects: %w", err)
	}

	if length, err := s.queueService.QueueLength(projectsQueueKey); err == nil {
		metrics.SearchQueueLength.Set(float64(length))
	}

	if len(items) == 0 {
		return 0, nil
	}

	projectIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		var projectID uuid.UUID
		if err := json.Unmarshal(item, &projectID); err != nil {
			s.logger.Error("skipping malformed search queue item", "error", err)
			continue
		}

		if !slices.Contains(projectIDs, projectID) {
			projectIDs = append(projectIDs, projectID)
		}
	}

	if err := s.SyncProjects(ctx, projectIDs, time.Now().UTC()); err != nil {
		// put them back for the next run
		if queueErr := s.QueueProjects(projectIDs); queueErr != nil {
			s.logger.Error("failed to requeue projects", "projects", len(projectIDs), "error", queueErr)
		}

		return len(items), err
	}

	return len(items), nil
}

// SyncProjects indexes the searchable projects among projectIDs and removes
// the rest, including ids that no longer exist.
func (s *SearchSyncService) SyncProjects(ctx context.Context, projectIDs []uuid.UUID, syncedAt time.Time) error {
	if len(projectIDs) == 0 {
		return nil
	}

	projects, err := s.projectService.GetProjectsByIDs(projectIDs)
	if err != nil {
		return fmt.Errorf("failed to load projects: %w", err)
	}

	searchable := make([]*projects_models.Project, 0, len(projects))
	removed := make([]uuid.UUID, 0)

	found := make(map[uuid.UUID]bool, len(projects))
	for _, project := range projects {
		found[project.ID] = true

		if project.IsSearchable() {
			searchable = append(searchable, project)
		} else {
			removed = append(removed, project.ID)
		}
	}

	for _, projectID := range projectIDs {
		if !found[projectID] {
			removed = append(removed, projectID)
		}
	}

	documents, err := s.buildDocuments(ctx, searchable, syncedAt)
	if err != nil {
		metrics.SearchSyncedProjectsTotal.WithLabelValues("failed").Add(float64(len(projectIDs)))
		return err
	}

	if err := s.searchRepository.IndexProjects(documents); err != nil {
		metrics.SearchSyncedProjectsTotal.WithLabelValues("failed").Add(float64(len(projectIDs)))
		return fmt.Errorf("failed to index projects: %w", err)
	}

	if err := s.searchRepository.DeleteProjects(removed); err != nil {
		metrics.SearchSyncedProjectsTotal.WithLabelValues("failed").Add(float64(len(removed)))
		return fmt.Errorf("failed to remove projects from index: %w", err)
	}

	metrics.SearchSyncedProjectsTotal.WithLabelValues("indexed").Add(float64(len(documents)))
	metrics.SearchSyncedProjectsTotal.WithLabelValues("removed").Add(float64(len(removed)))

	s.logger.Debug("search sync batch done",
		"indexed", len(documents),
		"removed", len(removed))

	return nil
}

// ResyncAll rebuilds the index from the database and drops documents of
// projects that are gone.
func (s *SearchSyncService) ResyncAll(ctx context.Context) error {
	startedAt := time.Now().UTC()

	if err := s.searchRepository.EnsureIndex(); err != nil {
		return err
	}

	projectIDs, err := s.projectService.GetAllProjectIDs()
	if err != nil {
		return fmt.Errorf("failed to get project ids: %w", err)
	}

	for start := 0; start < len(projectIDs); start += queueBatchSize {
		end := min(start+queueBatchSize, len(projectIDs))
		chunk := projectIDs[start:end:end]

		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.SyncProjects(ctx, chunk, startedAt); err != nil {
			return err
		}
	}

	if err := s.searchRepository.DeleteStaleProjects(startedAt); err != nil {
		return err
	}

	s.logger.Info("search index resynced",
		"projects", len(projectIDs),
		"duration", time.Since(startedAt))

	return nil
}

func (s *SearchSyncService) SearchProjects(request *SearchProjectsRequestDTO) (*SearchProjectsResponseDTO, error) {
	limit := request.Limit
	if limit <= 0 {
		limit = defaultSearchPageSize
	}

	response, err := s.searchRepository.SearchProjects(request.Query, limit, request.Offset)
	if err != nil {
		return nil, errors_utils.Server("failed to search projects", err)
	}

	return response, nil
}

func (s *SearchSyncService) buildDocuments(
	ctx context.Context,
	projects []*projects_models.Project,
	syncedAt time.Time,
) ([]*ProjectDocument, error) {
	documents := make([]*ProjectDocument, len(projects))

	group, _ := errgroup.WithContext(ctx)
	group.SetLimit(documentWorkersCount)

	for i, project := range projects {
		i, project := i, project
		group.Go(func() error {
			document, err := s.buildDocument(project, syncedAt)
			if err != nil {
				return fmt.Errorf("failed to build document for project %s: %w", project.ID, err)
			}

			documents[i] = document
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return documents, nil
}

// buildDocument credits organisation projects to the organisation and every
// other project to its owner.
func (s *SearchSyncService) buildDocument(
	project *projects_models.Project,
	syncedAt time.Time,
) (*ProjectDocument, error) {
	document := &ProjectDocument{
		ID:             project.ID,
		Name:           project.Name,
		Slug:           project.Slug,
		Summary:        project.Summary,
		Visibility:     project.Visibility,
		Status:         project.Status,
		OrganisationID: project.OrganisationID,
		DateCreated:    project.CreatedAt,
		DateUpdated:    project.UpdatedAt,
		SyncedAt:       syncedAt,
	}

	if project.OrganisationID != nil {
		organisation, err := s.organisationService.GetOrganisationByID(*project.OrganisationID)
		if err != nil {
			return nil, err
		}

		document.Author = organisation.Name
		return document, nil
	}

	members, err := s.teamService.GetTeamMembers(nil, project.TeamID)
	if err != nil {
		return nil, err
	}

	if owner := teams_models.FindOwner(members); owner != nil && owner.User != nil {
		document.Author = owner.User.Username
	}

	return document, nil
}

package search

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SearchRepository speaks to the OpenSearch REST API directly.
type SearchRepository struct {
	client  *http.Client
	baseURL string
	index   string
	logger  *slog.Logger
}

var projectsIndexMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":             map[string]any{"type": "keyword"},
			"name":           map[string]any{"type": "text", "fields": map[string]any{"keyword": map[string]any{"type": "keyword"}}},
			"slug":           map[string]any{"type": "keyword"},
			"summary":        map[string]any{"type": "text"},
			"author":         map[string]any{"type": "text", "fields": map[string]any{"keyword": map[string]any{"type": "keyword"}}},
			"visibility":     map[string]any{"type": "keyword"},
			"status":         map[string]any{"type": "keyword"},
			"organisationId": map[string]any{"type": "keyword"},
			"dateCreated":    map[string]any{"type": "date"},
			"dateUpdated":    map[string]any{"type": "date"},
			"syncedAt":       map[string]any{"type": "date"},
		},
	},
}

// EnsureIndex creates the projects index with its mapping when it is missing.
func (r *SearchRepository) EnsureIndex() error {
	status, _, err := r.do(http.MethodHead, "/"+r.index, nil, "")
	if err != nil {
		return fmt.Errorf("failed to check projects index: %w", err)
	}

	if status == http.StatusOK {
		return nil
	}

	payload, err := json.Marshal(projectsIndexMapping)
	if err != nil {
		return fmt.Errorf("failed to marshal index mapping: %w", err)
	}

	status, body, err := r.do(http.MethodPut, "/"+r.index, payload, "application/json")
	if err != nil {
		return fmt.Errorf("failed to create projects index: %w", err)
	}

	// another instance may have created it in the meantime
	if status == http.StatusBadRequest && strings.Contains(string(body), "resource_already_exists_exception") {
		return nil
	}

	if status < 200 || status >= 300 {
		return fmt.Errorf("OpenSearch index creation returned status %d: %s", status, string(body))
	}

	return nil
}

func (r *SearchRepository) IndexProjects(documents []*ProjectDocument) error {
	if len(documents) == 0 {
		return nil
	}

	var bulkRequestBuilder strings.Builder

	for _, document := range documents {
		metadata := map[string]any{
			"index": map[string]any{
				"_index": r.index,
				"_id":    document.ID.String(),
			},
		}

		if err := writeNDJSONLine(&bulkRequestBuilder, metadata); err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}

		if err := writeNDJSONLine(&bulkRequestBuilder, document); err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}
	}

	return r.bulk(bulkRequestBuilder.String())
}

func (r *SearchRepository) DeleteProjects(projectIDs []uuid.UUID) error {
	if len(projectIDs) == 0 {
		return nil
	}

	var bulkRequestBuilder strings.Builder

	for _, projectID := range projectIDs {
		metadata := map[string]any{
			"delete": map[string]any{
				"_index": r.index,
				"_id":    projectID.String(),
			},
		}

		if err := writeNDJSONLine(&bulkRequestBuilder, metadata); err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	return r.bulk(bulkRequestBuilder.String())
}

// DeleteStaleProjects removes documents that a full resync started at before
// did not touch, i.e. projects that no longer exist.
func (r *SearchRepository) DeleteStaleProjects(before time.Time) error {
	deleteQuery := map[string]any{
		"query": map[string]any{
			"range": map[string]any{
				"syncedAt": map[string]any{"lt": before.UTC().Format(time.RFC3339Nano)},
			},
		},
	}

	payload, err := json.Marshal(deleteQuery)
	if err != nil {
		return fmt.Errorf("failed to marshal delete query: %w", err)
	}

	status, body, err := r.do(
		http.MethodPost,
		"/"+r.index+"/_delete_by_query?conflicts=proceed",
		payload,
		"application/json",
	)
	if err != nil {
		return fmt.Errorf("failed to execute delete_by_query: %w", err)
	}

	if status < 200 || status >= 300 {
		return fmt.Errorf("OpenSearch delete_by_query returned status %d: %s", status, string(body))
	}

	return nil
}

func (r *SearchRepository) SearchProjects(query string, limit, offset int) (*SearchProjectsResponseDTO, error) {
	var match map[string]any
	if strings.TrimSpace(query) == "" {
		match = map[string]any{"match_all": map[string]any{}}
	} else {
		match = map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^3", "slug^2", "author", "summary"},
				"fuzziness": "AUTO",
			},
		}
	}

	searchBody := map[string]any{
		"query": match,
		"from":  offset,
		"size":  limit,
		"sort": []any{
			"_score",
			map[string]any{"dateUpdated": map[string]any{"order": "desc"}},
		},
		"track_total_hits": true,
	}

	payload, err := json.Marshal(searchBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search body: %w", err)
	}

	status, body, err := r.do(http.MethodPost, "/"+r.index+"/_search", payload, "application/json")
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}

	if status != http.StatusOK {
		return nil, fmt.Errorf("OpenSearch search returned status %d: %s", status, string(body))
	}

	var searchResponse openSearchSearchResponse
	if err := json.Unmarshal(body, &searchResponse); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	hits := make([]*ProjectDocument, 0, len(searchResponse.Hits.Hits))
	for _, hit := range searchResponse.Hits.Hits {
		document := hit.Source
		hits = append(hits, &document)
	}

	return &SearchProjectsResponseDTO{
		Hits:   hits,
		Total:  searchResponse.Hits.Total.Value,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// GetProject returns nil when the project is not indexed.
func (r *SearchRepository) GetProject(projectID uuid.UUID) (*ProjectDocument, error) {
	status, body, err := r.do(http.MethodGet, "/"+r.index+"/_doc/"+projectID.String(), nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	if status == http.StatusNotFound {
		return nil, nil
	}

	if status != http.StatusOK {
		return nil, fmt.Errorf("OpenSearch get returned status %d: %s", status, string(body))
	}

	var response struct {
		Source ProjectDocument `json:"_source"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	return &response.Source, nil
}

// ForceRefresh makes recent writes visible to searches.
func (r *SearchRepository) ForceRefresh() error {
	status, body, err := r.do(http.MethodPost, "/"+r.index+"/_refresh", nil, "")
	if err != nil {
		return fmt.Errorf("failed to execute refresh: %w", err)
	}

	if status != http.StatusOK {
		return fmt.Errorf("OpenSearch refresh returned status %d: %s", status, string(body))
	}

	return nil
}

func (r *SearchRepository) TestOpenSearchConnection() error {
	status, body, err := r.do(http.MethodGet, "/_cluster/health", nil, "")
	if err != nil {
		return fmt.Errorf("failed to connect to OpenSearch: %w", err)
	}

	if status < 200 || status >= 300 {
		return fmt.Errorf("OpenSearch health check returned status %d: %s", status, string(body))
	}

	return nil
}

func (r *SearchRepository) bulk(payload string) error {
	status, body, err := r.do(http.MethodPost, "/_bulk", []byte(payload), "application/x-ndjson")
	if err != nil {
		return fmt.Errorf("failed to send bulk request: %w", err)
	}

	if status < 200 || status >= 300 {
		return fmt.Errorf("OpenSearch bulk returned status %d: %s", status, string(body))
	}

	var bulkResponse openSearchBulkResponse
	if err := json.Unmarshal(body, &bulkResponse); err != nil {
		return fmt.Errorf("failed to unmarshal bulk response: %w", err)
	}

	if !bulkResponse.Errors {
		return nil
	}

	for _, item := range bulkResponse.Items {
		for action, result := range item {
			// deleting a document that was never indexed is fine
			if action == "delete" && result.Status == http.StatusNotFound {
				continue
			}

			if result.Status >= 300 {
				return fmt.Errorf("OpenSearch bulk %s failed with status %d: %v", action, result.Status, result.Error)
			}
		}
	}

	return nil
}

func (r *SearchRepository) do(method, path string, payload []byte, contentType string) (int, []byte, error) {
	var requestBody io.Reader
	if payload != nil {
		requestBody = bytes.NewReader(payload)
	}

	request, err := http.NewRequest(method, r.baseURL+path, requestBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}

	response, err := r.client.Do(request)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		if closeErr := response.Body.Close(); closeErr != nil {
			r.logger.Error("failed to close OpenSearch response body", "error", closeErr)
		}
	}()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return response.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return response.StatusCode, responseBody, nil
}

func writeNDJSONLine(builder *strings.Builder, value any) error {
	line, err := json.Marshal(value)
	if err != nil {
		return err
	}

	builder.Write(line)
	builder.WriteByte('\n')

	return nil
}

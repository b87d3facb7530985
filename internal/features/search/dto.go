package search

type SearchProjectsRequestDTO struct {
	Query  string `form:"query"  binding:"max=256"`
	Limit  int    `form:"limit"  binding:"omitempty,min=1,max=100"`
	Offset int    `form:"offset" binding:"omitempty,min=0,max=9900"`
}

type SearchProjectsResponseDTO struct {
	Hits   []*ProjectDocument `json:"hits"`
	Total  int64              `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

type openSearchSearchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string          `json:"_id"`
			Source ProjectDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type openSearchBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  any `json:"error,omitempty"`
	} `json:"items"`
}

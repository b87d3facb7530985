package search

import (
	"time"

	projects_enums "crmm/internal/features/projects/enums"

	"github.com/google/uuid"
)

// ProjectDocument is what the projects index stores for one searchable
// project.
type ProjectDocument struct {
	ID             uuid.UUID                        `json:"id"`
	Name           string                           `json:"name"`
	Slug           string                           `json:"slug"`
	Summary        string                           `json:"summary"`
	Author         string                           `json:"author"`
	Visibility     projects_enums.ProjectVisibility `json:"visibility"`
	Status         projects_enums.ProjectStatus     `json:"status"`
	OrganisationID *uuid.UUID                       `json:"organisationId,omitempty"`
	DateCreated    time.Time                        `json:"dateCreated"`
	DateUpdated    time.Time                        `json:"dateUpdated"`
	SyncedAt       time.Time                        `json:"syncedAt"`
}

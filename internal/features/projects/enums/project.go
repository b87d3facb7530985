package projects_enums

type ProjectVisibility string

const (
	ProjectVisibilityListed   ProjectVisibility = "listed"
	ProjectVisibilityArchived ProjectVisibility = "archived"
	ProjectVisibilityUnlisted ProjectVisibility = "unlisted"
	ProjectVisibilityPrivate  ProjectVisibility = "private"
)

func (v ProjectVisibility) IsValid() bool {
	switch v {
	case ProjectVisibilityListed, ProjectVisibilityArchived, ProjectVisibilityUnlisted, ProjectVisibilityPrivate:
		return true
	default:
		return false
	}
}

type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "draft"
	ProjectStatusScheduled ProjectStatus = "scheduled"
	ProjectStatusApproved  ProjectStatus = "approved"
	ProjectStatusWithheld  ProjectStatus = "withheld"
	ProjectStatusRejected  ProjectStatus = "rejected"
)

func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusScheduled, ProjectStatusApproved, ProjectStatusWithheld, ProjectStatusRejected:
		return true
	default:
		return false
	}
}

// IsSearchable reports whether a project with this visibility and status
// belongs in the public search index.
func IsSearchable(visibility ProjectVisibility, status ProjectStatus) bool {
	if status != ProjectStatusApproved {
		return false
	}

	return visibility == ProjectVisibilityListed || visibility == ProjectVisibilityArchived
}

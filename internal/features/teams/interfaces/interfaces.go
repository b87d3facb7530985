package teams_interfaces

import "github.com/google/uuid"

// ProjectsChangedListener is told about projects whose indexed data changed
// after a team mutation committed.
type ProjectsChangedListener interface {
	OnProjectsChanged(projectIDs []uuid.UUID)
}

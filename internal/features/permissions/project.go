package permissions

import (
	"database/sql/driver"
)

// ProjectPermissions is a set of project-scoped capabilities.
type ProjectPermissions uint32

const (
	ProjectUploadVersion ProjectPermissions = 1 << iota
	ProjectDeleteVersion
	ProjectEditDetails
	ProjectEditDescription
	ProjectManageInvites
	ProjectRemoveMember
	ProjectEditMember
	ProjectDeleteProject
	ProjectViewAnalytics
	ProjectViewRevenue
)

var projectPermissionNames = []string{
	"upload_version",
	"delete_version",
	"edit_details",
	"edit_description",
	"manage_invites",
	"remove_member",
	"edit_member",
	"delete_project",
	"view_analytics",
	"view_revenue",
}

const AllProjectPermissions = ProjectPermissions(1<<10 - 1)

func ParseProjectPermissions(values []string) (ProjectPermissions, error) {
	bits, err := bitsOf(values, projectPermissionNames, true)
	return ProjectPermissions(bits), err
}

func (s ProjectPermissions) Has(required ProjectPermissions) bool {
	return required != 0 && s&required == required
}

// Missing returns the members of requested that s does not hold.
func (s ProjectPermissions) Missing(requested ProjectPermissions) ProjectPermissions {
	return requested &^ s
}

func (s ProjectPermissions) Names() []string {
	return namesOf(uint32(s), projectPermissionNames)
}

func (s ProjectPermissions) MarshalJSON() ([]byte, error) {
	return marshalBits(uint32(s), projectPermissionNames)
}

func (s *ProjectPermissions) UnmarshalJSON(data []byte) error {
	bits, err := unmarshalBits(data, projectPermissionNames)
	if err != nil {
		return err
	}

	*s = ProjectPermissions(bits)
	return nil
}

func (s ProjectPermissions) Value() (driver.Value, error) {
	return valueOf(uint32(s), projectPermissionNames)
}

func (s *ProjectPermissions) Scan(src any) error {
	bits, err := scanBits(src, projectPermissionNames)
	if err != nil {
		return err
	}

	*s = ProjectPermissions(bits)
	return nil
}

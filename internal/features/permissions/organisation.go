package permissions

import (
	"database/sql/driver"
)

// OrganisationPermissions is a set of organisation-scoped capabilities.
type OrganisationPermissions uint32

const (
	OrgEditDetails OrganisationPermissions = 1 << iota
	OrgManageInvites
	OrgRemoveMember
	OrgEditMember
	OrgAddProject
	OrgRemoveProject
	OrgDeleteOrganisation
	OrgEditMemberDefaultPermissions
)

var organisationPermissionNames = []string{
	"edit_details",
	"manage_invites",
	"remove_member",
	"edit_member",
	"add_project",
	"remove_project",
	"delete_organization",
	"edit_member_default_permissions",
}

const AllOrganisationPermissions = OrganisationPermissions(1<<8 - 1)

func ParseOrganisationPermissions(values []string) (OrganisationPermissions, error) {
	bits, err := bitsOf(values, organisationPermissionNames, true)
	return OrganisationPermissions(bits), err
}

func (s OrganisationPermissions) Has(required OrganisationPermissions) bool {
	return required != 0 && s&required == required
}

func (s OrganisationPermissions) Missing(requested OrganisationPermissions) OrganisationPermissions {
	return requested &^ s
}

func (s OrganisationPermissions) Names() []string {
	return namesOf(uint32(s), organisationPermissionNames)
}

func (s OrganisationPermissions) MarshalJSON() ([]byte, error) {
	return marshalBits(uint32(s), organisationPermissionNames)
}

func (s *OrganisationPermissions) UnmarshalJSON(data []byte) error {
	bits, err := unmarshalBits(data, organisationPermissionNames)
	if err != nil {
		return err
	}

	*s = OrganisationPermissions(bits)
	return nil
}

func (s OrganisationPermissions) Value() (driver.Value, error) {
	return valueOf(uint32(s), organisationPermissionNames)
}

func (s *OrganisationPermissions) Scan(src any) error {
	bits, err := scanBits(src, organisationPermissionNames)
	if err != nil {
		return err
	}

	*s = OrganisationPermissions(bits)
	return nil
}

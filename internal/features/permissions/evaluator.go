package permissions

import (
	users_enums "crmm/internal/features/users/enums"
)

type rolePermissions struct {
	project      ProjectPermissions
	organisation OrganisationPermissions
}

var siteRolePermissions = map[users_enums.UserRole]rolePermissions{
	users_enums.UserRoleAdmin: {
		project:      AllProjectPermissions,
		organisation: AllOrganisationPermissions,
	},
	users_enums.UserRoleModerator: {
		project:      ProjectEditDetails | ProjectEditDescription | ProjectViewAnalytics,
		organisation: OrgEditDetails,
	},
}

// RolePermissions returns what a site role grants in every team regardless
// of membership.
func RolePermissions(role users_enums.UserRole) (ProjectPermissions, OrganisationPermissions) {
	granted := siteRolePermissions[role]
	return granted.project, granted.organisation
}

// HasRootAccess reports whether the caller bypasses team level restrictions,
// either as the team owner or as a site administrator.
func HasRootAccess(isOwner bool, role users_enums.UserRole) bool {
	return isOwner || role == users_enums.UserRoleAdmin
}

func DoesMemberHaveAccess(
	required ProjectPermissions,
	memberPermissions ProjectPermissions,
	isOwner bool,
	role users_enums.UserRole,
) bool {
	if required == 0 {
		return false
	}

	if isOwner {
		return true
	}

	projectPermissions, _ := RolePermissions(role)
	if projectPermissions.Has(required) {
		return true
	}

	return memberPermissions.Has(required)
}

func DoesOrgMemberHaveAccess(
	required OrganisationPermissions,
	memberPermissions OrganisationPermissions,
	isOwner bool,
	role users_enums.UserRole,
) bool {
	if required == 0 {
		return false
	}

	if isOwner {
		return true
	}

	_, organisationPermissions := RolePermissions(role)
	if organisationPermissions.Has(required) {
		return true
	}

	return memberPermissions.Has(required)
}

// CanGrantProjectPermissions guards member edits against privilege escalation:
// every permission being added to the target must already be held by the
// actor. Root actors and, on organisation teams, holders of
// OrgEditMemberDefaultPermissions are exempt.
func CanGrantProjectPermissions(
	isRoot bool,
	canEditDefaults bool,
	actor ProjectPermissions,
	target ProjectPermissions,
	requested ProjectPermissions,
) bool {
	if isRoot || canEditDefaults {
		return true
	}

	added := target.Missing(requested)
	return actor.Missing(added) == 0
}

func CanGrantOrganisationPermissions(
	isRoot bool,
	actor OrganisationPermissions,
	target OrganisationPermissions,
	requested OrganisationPermissions,
) bool {
	if isRoot {
		return true
	}

	added := target.Missing(requested)
	return actor.Missing(added) == 0
}

package teams_models

import (
	"crmm/internal/features/permissions"
	users_models "crmm/internal/features/users/models"

	"github.com/google/uuid"
)

// TeamAccess is a caller's resolved position within one team.
type TeamAccess struct {
	Scope               *TeamScope
	Members             []*TeamMember
	OrganisationMembers []*TeamMember

	// nil when the caller is in neither member list
	Member *TeamMember
	User   *users_models.User
}

func NewTeamAccess(
	scope *TeamScope,
	members []*TeamMember,
	organisationMembers []*TeamMember,
	user *users_models.User,
) *TeamAccess {
	return &TeamAccess{
		Scope:               scope,
		Members:             members,
		OrganisationMembers: organisationMembers,
		Member:              ResolveMembership(user.ID, members, organisationMembers),
		User:                user,
	}
}

func (a *TeamAccess) HasRootAccess() bool {
	return permissions.HasRootAccess(a.Member.IsActiveOwner(), a.User.Role)
}

func (a *TeamAccess) CanAccessProject(required permissions.ProjectPermissions) bool {
	return permissions.DoesMemberHaveAccess(
		required,
		a.Member.EffectivePermissions(),
		a.Member.IsActiveOwner(),
		a.User.Role,
	)
}

func (a *TeamAccess) CanAccessOrganisation(required permissions.OrganisationPermissions) bool {
	return permissions.DoesOrgMemberHaveAccess(
		required,
		a.Member.EffectiveOrganisationPermissions(),
		a.Member.IsActiveOwner(),
		a.User.Role,
	)
}

// CanAccess checks the organisation namespace on organisation teams and the
// project namespace everywhere else.
func (a *TeamAccess) CanAccess(
	projectRequired permissions.ProjectPermissions,
	organisationRequired permissions.OrganisationPermissions,
) bool {
	if a.Scope.IsOrganisationTeam() {
		return a.CanAccessOrganisation(organisationRequired)
	}

	return a.CanAccessProject(projectRequired)
}

// IsVisibleMember reports whether the caller is an accepted member of the
// team or of the parent organisation.
func (a *TeamAccess) IsVisibleMember() bool {
	return a.Member.IsAcceptedMember()
}

// HeldProjectPermissions is everything the caller may grant to others in the
// project namespace: their membership plus their site role.
func (a *TeamAccess) HeldProjectPermissions() permissions.ProjectPermissions {
	rolePermissions, _ := permissions.RolePermissions(a.User.Role)
	return a.Member.EffectivePermissions() | rolePermissions
}

func (a *TeamAccess) HeldOrganisationPermissions() permissions.OrganisationPermissions {
	_, rolePermissions := permissions.RolePermissions(a.User.Role)
	return a.Member.EffectiveOrganisationPermissions() | rolePermissions
}

func (a *TeamAccess) FindMemberByID(memberID uuid.UUID) *TeamMember {
	for _, member := range a.Members {
		if member.ID == memberID {
			return member
		}
	}

	return nil
}

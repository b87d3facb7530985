package teams_enums

// Role labels are free text chosen by the team; these are the ones the
// system assigns itself.
const (
	MemberRoleOwner          = "Owner"
	MemberRoleMember         = "Member"
	MemberRoleInheritedOwner = "Inherited Owner"
)

// TeamKind tells which entity a team governs.
type TeamKind string

const (
	TeamKindProject      TeamKind = "project"
	TeamKindOrganisation TeamKind = "organisation"
)

package teams_services

import (
	"errors"
	"fmt"
	"time"

	"crmm/internal/features/notifications"
	"crmm/internal/features/permissions"
	teams_dto "crmm/internal/features/teams/dto"
	teams_enums "crmm/internal/features/teams/enums"
	teams_models "crmm/internal/features/teams/models"
	teams_repositories "crmm/internal/features/teams/repositories"
	users_models "crmm/internal/features/users/models"
	errors_utils "crmm/internal/util/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberService struct {
	teamService         *TeamService
	memberRepository    *teams_repositories.MemberRepository
	notificationService *notifications.NotificationService
}

func (s *MemberService) EditMember(
	teamID uuid.UUID,
	memberID uuid.UUID,
	request *teams_dto.EditMemberRequestDTO,
	actor *users_models.User,
) (*teams_dto.TeamMemberResponseDTO, error) {
	requestedPermissions, err := permissions.ParseProjectPermissions(request.Permissions)
	if err != nil {
		return nil, errors_utils.InvalidRequest(err.Error())
	}

	requestedOrganisationPermissions, err := permissions.ParseOrganisationPermissions(request.OrganisationPermissions)
	if err != nil {
		return nil, errors_utils.InvalidRequest(err.Error())
	}

	var (
		scope  *teams_models.TeamScope
		target *teams_models.TeamMember
	)

	err = transaction(func(tx *gorm.DB) error {
		access, err := s.teamService.LoadAccess(tx, teamID, actor, true)
		if err != nil {
			return err
		}
		scope = access.Scope

		if !access.CanAccess(permissions.ProjectEditMember, permissions.OrgEditMember) {
			return errors_utils.Unauthorized("You don't have access to edit members")
		}

		target = access.FindMemberByID(memberID)
		if target == nil {
			return errors_utils.NotFound("Member not found")
		}

		if !target.IsOwner {
			isRoot := access.HasRootAccess()
			canEditDefaults := scope.IsOrganisationTeam() &&
				access.CanAccessOrganisation(permissions.OrgEditMemberDefaultPermissions)

			canGrant := permissions.CanGrantProjectPermissions(
				isRoot,
				canEditDefaults,
				access.HeldProjectPermissions(),
				target.Permissions,
				requestedPermissions,
			)

			if scope.IsOrganisationTeam() {
				canGrant = canGrant && permissions.CanGrantOrganisationPermissions(
					isRoot,
					access.HeldOrganisationPermissions(),
					target.OrganisationPermissions,
					requestedOrganisationPermissions,
				)
			}

			if !canGrant {
				return errors_utils.Unauthorized("You don't have access to add permissions to the member")
			}

			target.Permissions = requestedPermissions
			if scope.IsOrganisationTeam() {
				target.OrganisationPermissions = requestedOrganisationPermissions
			}
		}

		target.Role = request.Role

		if err := s.memberRepository.UpdateMember(tx, target); err != nil {
			return errors_utils.Server("failed to update member", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.teamService.recordMutation(
		"edit_member",
		scope,
		actor.ID,
		fmt.Sprintf("Member %s updated in %s", target.UserID, scope.Name()),
		nil,
	)

	return teams_dto.ToMemberResponse(target), nil
}

// OverrideOrganisationMember gives an accepted organisation member a row of
// their own in one of the organisation's project teams.
func (s *MemberService) OverrideOrganisationMember(
	teamID uuid.UUID,
	request *teams_dto.OverrideOrgMemberRequestDTO,
	actor *users_models.User,
) (*teams_dto.TeamMemberResponseDTO, error) {
	requestedPermissions, err := permissions.ParseProjectPermissions(request.Permissions)
	if err != nil {
		return nil, errors_utils.InvalidRequest(err.Error())
	}

	var (
		scope  *teams_models.TeamScope
		member *teams_models.TeamMember
	)

	err = transaction(func(tx *gorm.DB) error {
		access, err := s.teamService.LoadAccess(tx, teamID, actor, true)
		if err != nil {
			return err
		}
		scope = access.Scope

		if !scope.IsOrganisationProject() {
			return errors_utils.InvalidRequest("This project is not part of an organisation")
		}

		if !access.CanAccessProject(permissions.ProjectEditMember) {
			return errors_utils.Unauthorized("You don't have access to override members")
		}

		if !access.HasRootAccess() && requestedPermissions != 0 {
			return errors_utils.Unauthorized("You don't have access to add permissions to a member")
		}

		organisationMember := teams_models.FindMember(request.UserID, access.OrganisationMembers)
		if organisationMember == nil {
			return errors_utils.NotFound("User is not a part of this project's organisation")
		}

		if !organisationMember.Accepted {
			return errors_utils.InvalidRequest("User is still a pending member of the organization")
		}

		if teams_models.FindMember(request.UserID, access.Members) != nil {
			return errors_utils.InvalidRequest("User is already a member of this project's team")
		}

		if organisationMember.IsOwner {
			requestedPermissions = 0
		}

		now := time.Now().UTC()
		member = &teams_models.TeamMember{
			ID:           uuid.New(),
			TeamID:       teamID,
			UserID:       request.UserID,
			Role:         request.Role,
			Permissions:  requestedPermissions,
			Accepted:     true,
			DateAccepted: &now,
			CreatedAt:    now,
		}

		if err := s.memberRepository.CreateMember(tx, member); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errors_utils.InvalidRequest("User is already a member of this project's team")
			}

			return errors_utils.Server("failed to create member", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.teamService.recordMutation(
		"override_member",
		scope,
		actor.ID,
		fmt.Sprintf("Organisation member %s overridden in %s", member.UserID, scope.Name()),
		nil,
	)

	return teams_dto.ToMemberResponse(member), nil
}

func (s *MemberService) RemoveMember(teamID, memberID uuid.UUID, actor *users_models.User) error {
	var (
		scope             *teams_models.TeamScope
		target            *teams_models.TeamMember
		changedProjectIDs []uuid.UUID
	)

	err := transaction(func(tx *gorm.DB) error {
		access, err := s.teamService.LoadAccess(tx, teamID, actor, true)
		if err != nil {
			return err
		}
		scope = access.Scope

		if !access.CanAccess(permissions.ProjectRemoveMember, permissions.OrgRemoveMember) {
			return errors_utils.Unauthorized("You don't have access to remove members")
		}

		target = access.FindMemberByID(memberID)
		if target == nil {
			return errors_utils.InvalidAttempt("Member not found")
		}

		if target.IsOwner {
			return errors_utils.InvalidRequest("You can't remove the owner of the team")
		}

		changedProjectIDs, err = s.deleteMember(tx, scope, target)
		return err
	})
	if err != nil {
		return err
	}

	s.teamService.recordMutation(
		"remove_member",
		scope,
		actor.ID,
		fmt.Sprintf("Member %s removed from %s", target.UserID, scope.Name()),
		changedProjectIDs,
	)

	return nil
}

func (s *MemberService) LeaveTeam(teamID uuid.UUID, actor *users_models.User) error {
	var (
		scope             *teams_models.TeamScope
		changedProjectIDs []uuid.UUID
	)

	err := transaction(func(tx *gorm.DB) error {
		access, err := s.teamService.LoadAccess(tx, teamID, actor, true)
		if err != nil {
			return err
		}
		scope = access.Scope

		member := teams_models.FindMember(actor.ID, access.Members)
		if member == nil {
			return errors_utils.InvalidAttempt("You're not a member of this team")
		}

		if member.IsOwner {
			return errors_utils.InvalidRequest("You can't leave the team while you're the owner")
		}

		if scope.IsOrganisationProject() &&
			teams_models.FindMember(actor.ID, access.OrganisationMembers).IsAcceptedMember() {
			return errors_utils.InvalidRequest(
				"You can't leave the project team directly, please leave the parent organization in order to be removed from this project team",
			)
		}

		changedProjectIDs, err = s.deleteMember(tx, scope, member)
		return err
	})
	if err != nil {
		return err
	}

	s.teamService.recordMutation(
		"leave_team",
		scope,
		actor.ID,
		fmt.Sprintf("User %s left %s", actor.Username, scope.Name()),
		changedProjectIDs,
	)

	return nil
}

// TransferOwnership swaps the owner flag inside one transaction. The old
// owner is demoted first so the single owner index never sees two owners.
func (s *MemberService) TransferOwnership(
	teamID uuid.UUID,
	request *teams_dto.TransferOwnershipRequestDTO,
	actor *users_models.User,
) error {
	var (
		scope             *teams_models.TeamScope
		changedProjectIDs []uuid.UUID
	)

	err := transaction(func(tx *gorm.DB) error {
		access, err := s.teamService.LoadAccess(tx, teamID, actor, true)
		if err != nil {
			return err
		}
		scope = access.Scope

		target := teams_models.FindMember(request.UserID, access.Members)
		if !target.IsAcceptedMember() {
			return errors_utils.NotFound("Member not found")
		}

		// organisation project teams are owned through the organisation
		currentOwner := teams_models.FindOwner(access.Members)
		if currentOwner == nil && scope.IsOrganisationProject() {
			return errors_utils.InvalidRequest("The owner of this team was not found")
		}

		if currentOwner == nil {
			return errors_utils.Server("team has no owner", fmt.Errorf("team %s", teamID))
		}

		if !access.HasRootAccess() {
			return errors_utils.Unauthorized("You don't have access to change the team owner")
		}

		if target.IsOwner {
			return errors_utils.InvalidRequest("The target member is already the owner of the team")
		}

		currentOwner.IsOwner = false
		currentOwner.Role = teams_enums.MemberRoleMember
		currentOwner.Permissions = 0
		currentOwner.OrganisationPermissions = 0

		if err := s.memberRepository.UpdateMember(tx, currentOwner); err != nil {
			return errors_utils.Server("failed to demote current owner", err)
		}

		target.IsOwner = true
		target.Role = teams_enums.MemberRoleOwner
		target.Permissions = 0
		target.OrganisationPermissions = 0

		if err := s.memberRepository.UpdateMember(tx, target); err != nil {
			return errors_utils.Server("failed to promote new owner", err)
		}

		if scope.ProjectID != nil {
			changedProjectIDs = []uuid.UUID{*scope.ProjectID}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.teamService.recordMutation(
		"transfer_ownership",
		scope,
		actor.ID,
		fmt.Sprintf("Ownership of %s transferred to %s", scope.Name(), request.UserID),
		changedProjectIDs,
	)

	return nil
}

// deleteMember removes the row and, for accepted organisation members, their
// rows in every project team of the organisation.
func (s *MemberService) deleteMember(
	tx *gorm.DB,
	scope *teams_models.TeamScope,
	member *teams_models.TeamMember,
) ([]uuid.UUID, error) {
	if err := s.memberRepository.DeleteMember(tx, member.ID); err != nil {
		return nil, errors_utils.Server("failed to delete member", err)
	}

	if !member.Accepted {
		if err := s.notificationService.MarkTeamInvitesRead(tx, member.UserID, member.TeamID); err != nil {
			return nil, errors_utils.Server("failed to close invite", err)
		}

		return nil, nil
	}

	if !scope.IsOrganisationTeam() {
		return nil, nil
	}

	projectIDs, err := s.memberRepository.DeleteFromOrganisationProjects(tx, member.UserID, *scope.OrganisationID)
	if err != nil {
		return nil, errors_utils.Server("failed to remove member from organisation projects", err)
	}

	return projectIDs, nil
}

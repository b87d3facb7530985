package teams_services

import (
	"errors"
	"fmt"
	"time"

	"crmm/internal/features/notifications"
	"crmm/internal/features/permissions"
	teams_enums "crmm/internal/features/teams/enums"
	teams_models "crmm/internal/features/teams/models"
	teams_repositories "crmm/internal/features/teams/repositories"
	users_models "crmm/internal/features/users/models"
	users_services "crmm/internal/features/users/services"
	errors_utils "crmm/internal/util/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InviteService struct {
	teamService         *TeamService
	teamRepository      *teams_repositories.TeamRepository
	memberRepository    *teams_repositories.MemberRepository
	userService         *users_services.UserService
	notificationService *notifications.NotificationService
}

// InviteMember adds a pending member plus an invite notification. Accepted
// members of the parent organisation join a project team right away.
func (s *InviteService) InviteMember(
	teamID uuid.UUID,
	userSlug string,
	actor *users_models.User,
) (*teams_models.TeamMember, error) {
	var (
		scope  *teams_models.TeamScope
		member *teams_models.TeamMember
	)

	err := transaction(func(tx *gorm.DB) error {
		access, err := s.teamService.LoadAccess(tx, teamID, actor, true)
		if err != nil {
			return err
		}
		scope = access.Scope

		if !access.CanAccess(permissions.ProjectManageInvites, permissions.OrgManageInvites) {
			return errors_utils.Unauthorized("You don't have access to manage member invites")
		}

		target, err := s.userService.GetUserBySlug(userSlug)
		if err != nil {
			return errors_utils.Server("failed to get user", err)
		}

		if target == nil {
			return errors_utils.NotFound("User not found")
		}

		if existing := teams_models.FindMember(target.ID, access.Members); existing != nil {
			if !existing.Accepted {
				return errors_utils.InvalidRequest(
					fmt.Sprintf("%q has already been invited to this team", target.Username),
				)
			}

			return errors_utils.InvalidRequest(fmt.Sprintf("%q is already a member of this team", target.Username))
		}

		organisationMember := teams_models.FindMember(target.ID, access.OrganisationMembers)
		if organisationMember != nil && organisationMember.IsOwner {
			return errors_utils.InvalidRequest(
				"You cannot override the permissions of organization's owner in a project team",
			)
		}

		now := time.Now().UTC()
		member = &teams_models.TeamMember{
			ID:        uuid.New(),
			TeamID:    teamID,
			UserID:    target.ID,
			User:      target,
			Role:      teams_enums.MemberRoleMember,
			CreatedAt: now,
		}

		if organisationMember.IsAcceptedMember() {
			member.Accepted = true
			member.DateAccepted = &now
		}

		if err := s.memberRepository.CreateMember(tx, member); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errors_utils.InvalidRequest(
					fmt.Sprintf("%q has already been invited to this team", target.Username),
				)
			}

			return errors_utils.Server("failed to create member", err)
		}

		if member.Accepted {
			return nil
		}

		return s.notificationService.CreateTeamInviteNotification(tx, &notifications.TeamInvite{
			UserID:         target.ID,
			TeamID:         teamID,
			ProjectID:      scope.ProjectID,
			OrganisationID: scope.OrganisationID,
			InvitedBy:      actor.ID,
			Role:           member.Role,
		})
	})
	if err != nil {
		return nil, err
	}

	s.teamService.recordMutation(
		"invite_member",
		scope,
		actor.ID,
		fmt.Sprintf("User %s invited to %s", member.User.Username, scope.Name()),
		nil,
	)

	return member, nil
}

func (s *InviteService) AcceptInvite(teamID uuid.UUID, user *users_models.User) error {
	var scope *teams_models.TeamScope

	err := transaction(func(tx *gorm.DB) error {
		var err error

		scope, err = s.teamRepository.GetScope(tx, teamID, true)
		if err != nil {
			return errors_utils.Server("failed to get team", err)
		}

		member, err := s.memberRepository.GetMember(tx, teamID, user.ID)
		if err != nil {
			return errors_utils.Server("failed to get member", err)
		}

		if scope == nil || member == nil || member.Accepted {
			return errors_utils.InvalidAttempt("You don't have a pending invite for this team")
		}

		now := time.Now().UTC()
		member.Accepted = true
		member.DateAccepted = &now

		if err := s.memberRepository.UpdateMember(tx, member); err != nil {
			return errors_utils.Server("failed to accept invite", err)
		}

		return s.notificationService.MarkTeamInvitesRead(tx, user.ID, teamID)
	})
	if err != nil {
		return err
	}

	s.teamService.recordMutation(
		"accept_invite",
		scope,
		user.ID,
		fmt.Sprintf("User %s joined %s", user.Username, scope.Name()),
		nil,
	)

	return nil
}

// DeclineInvite deletes the pending row, so a second decline is NotFound.
func (s *InviteService) DeclineInvite(teamID uuid.UUID, user *users_models.User) error {
	var scope *teams_models.TeamScope

	err := transaction(func(tx *gorm.DB) error {
		var err error

		scope, err = s.teamRepository.GetScope(tx, teamID, true)
		if err != nil {
			return errors_utils.Server("failed to get team", err)
		}

		member, err := s.memberRepository.GetMember(tx, teamID, user.ID)
		if err != nil {
			return errors_utils.Server("failed to get member", err)
		}

		if scope == nil || member == nil || member.Accepted {
			return errors_utils.NotFound("Invite not found")
		}

		if err := s.memberRepository.DeleteMember(tx, member.ID); err != nil {
			return errors_utils.Server("failed to decline invite", err)
		}

		return s.notificationService.MarkTeamInvitesRead(tx, user.ID, teamID)
	})
	if err != nil {
		return err
	}

	s.teamService.recordMutation(
		"decline_invite",
		scope,
		user.ID,
		fmt.Sprintf("User %s declined the invite to %s", user.Username, scope.Name()),
		nil,
	)

	return nil
}

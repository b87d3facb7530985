package users_services

import (
	"fmt"
	"time"

	user_enums "crmm/internal/features/users/enums"
	user_interfaces "crmm/internal/features/users/interfaces"
	user_models "crmm/internal/features/users/models"
	user_repositories "crmm/internal/features/users/repositories"
	errors_utils "crmm/internal/util/errors"

	"github.com/google/uuid"
)

// UserManagementService holds the administrator-only operations. Site roles
// are only ever changed here.
type UserManagementService struct {
	userRepository *user_repositories.UserRepository
	auditLogWriter user_interfaces.AuditLogWriter
}

func (s *UserManagementService) SetAuditLogWriter(writer user_interfaces.AuditLogWriter) {
	s.auditLogWriter = writer
}

func (s *UserManagementService) GetUsers(
	currentUser *user_models.User,
	limit, offset int,
	beforeCreatedAt *time.Time,
) ([]*user_models.User, int64, error) {
	if !currentUser.CanManageUsers() {
		return nil, 0, errors_utils.Unauthorized("insufficient permissions to list users")
	}

	return s.userRepository.GetUsers(limit, offset, beforeCreatedAt)
}

func (s *UserManagementService) GetUserProfile(
	userID uuid.UUID,
	requestedBy *user_models.User,
) (*user_models.User, error) {
	if userID != requestedBy.ID && !requestedBy.CanManageUsers() {
		return nil, errors_utils.Unauthorized("insufficient permissions to view user profile")
	}

	user, err := s.userRepository.GetUserByID(userID)
	if err != nil {
		return nil, errors_utils.NotFound("user not found")
	}

	return user, nil
}

func (s *UserManagementService) DeactivateUser(userID uuid.UUID, deactivatedBy *user_models.User) error {
	if !deactivatedBy.CanManageUsers() {
		return errors_utils.Unauthorized("insufficient permissions to deactivate users")
	}

	if userID == deactivatedBy.ID {
		return errors_utils.InvalidRequest("cannot deactivate your own account")
	}

	return s.setUserStatus(userID, user_enums.UserStatusInactive, deactivatedBy)
}

func (s *UserManagementService) ActivateUser(userID uuid.UUID, activatedBy *user_models.User) error {
	if !activatedBy.CanManageUsers() {
		return errors_utils.Unauthorized("insufficient permissions to activate users")
	}

	return s.setUserStatus(userID, user_enums.UserStatusActive, activatedBy)
}

func (s *UserManagementService) ChangeUserRole(
	userID uuid.UUID,
	newRole user_enums.UserRole,
	changedBy *user_models.User,
) error {
	if !changedBy.CanManageUsers() {
		return errors_utils.Unauthorized("insufficient permissions to change user roles")
	}

	if !newRole.IsValid() {
		return errors_utils.InvalidRequest("invalid user role")
	}

	if userID == changedBy.ID {
		return errors_utils.InvalidRequest("cannot change your own role")
	}

	user, err := s.userRepository.GetUserByID(userID)
	if err != nil {
		return errors_utils.NotFound("user not found")
	}

	// only the root admin account hands out or revokes the admin role
	if (newRole == user_enums.UserRoleAdmin || user.Role == user_enums.UserRoleAdmin) &&
		changedBy.Email != user_repositories.InitialAdminEmail {
		return errors_utils.Unauthorized("only the root admin user can promote users to admin or demote admin users")
	}

	if err := s.userRepository.UpdateUserRole(userID, newRole); err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}

	s.auditLogWriter.WriteUserAuditLog(
		fmt.Sprintf("User role changed: %s from %s to %s", user.Username, user.Role, newRole),
		changedBy.ID,
	)

	return nil
}

func (s *UserManagementService) setUserStatus(
	userID uuid.UUID,
	status user_enums.UserStatus,
	changedBy *user_models.User,
) error {
	user, err := s.userRepository.GetUserByID(userID)
	if err != nil {
		return errors_utils.NotFound("user not found")
	}

	if user.Role == user_enums.UserRoleAdmin && changedBy.Email != user_repositories.InitialAdminEmail {
		return errors_utils.Unauthorized("only the root admin user can change the status of admin accounts")
	}

	if err := s.userRepository.UpdateUserStatus(userID, status); err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	s.auditLogWriter.WriteUserAuditLog(
		fmt.Sprintf("User status changed: %s to %s", user.Username, status),
		changedBy.ID,
	)

	return nil
}

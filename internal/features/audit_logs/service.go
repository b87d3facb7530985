package audit_logs

import (
	"fmt"
	"log/slog"
	"time"

	user_models "crmm/internal/features/users/models"
	errors_utils "crmm/internal/util/errors"

	"github.com/google/uuid"
)

const (
	defaultAuditLogsLimit = 100
	maxAuditLogsLimit     = 1000
)

type AuditLogService struct {
	auditLogRepository *AuditLogRepository
	logger             *slog.Logger
}

func (s *AuditLogService) WriteUserAuditLog(message string, userID uuid.UUID) {
	s.write(&AuditLog{UserID: &userID, Message: message})
}

func (s *AuditLogService) WriteProjectAuditLog(message string, userID *uuid.UUID, projectID uuid.UUID) {
	s.write(&AuditLog{UserID: userID, ProjectID: &projectID, Message: message})
}

func (s *AuditLogService) WriteOrganisationAuditLog(message string, userID *uuid.UUID, organisationID uuid.UUID) {
	s.write(&AuditLog{UserID: userID, OrganisationID: &organisationID, Message: message})
}

func (s *AuditLogService) CreateAuditLog(auditLog *AuditLog) error {
	return s.auditLogRepository.Create(auditLog)
}

func (s *AuditLogService) GetGlobalAuditLogs(
	user *user_models.User,
	request *GetAuditLogsRequest,
) (*GetAuditLogsResponse, error) {
	if !user.IsAdmin() {
		return nil, errors_utils.Unauthorized("only administrators can view global audit logs")
	}

	limit, offset := normalizePage(request)

	auditLogs, err := s.auditLogRepository.GetGlobal(limit, offset, request.BeforeDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get global audit logs: %w", err)
	}

	total, err := s.auditLogRepository.CountGlobal(request.BeforeDate)
	if err != nil {
		return nil, fmt.Errorf("failed to count global audit logs: %w", err)
	}

	return &GetAuditLogsResponse{
		AuditLogs: auditLogs,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	}, nil
}

func (s *AuditLogService) GetUserAuditLogs(
	targetUserID uuid.UUID,
	user *user_models.User,
	request *GetAuditLogsRequest,
) (*GetAuditLogsResponse, error) {
	if !user.IsAdmin() && user.ID != targetUserID {
		return nil, errors_utils.Unauthorized("insufficient permissions to view user audit logs")
	}

	limit, offset := normalizePage(request)

	auditLogs, err := s.auditLogRepository.GetByUser(targetUserID, limit, offset, request.BeforeDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get user audit logs: %w", err)
	}

	total, err := s.auditLogRepository.CountByUser(targetUserID, request.BeforeDate)
	if err != nil {
		return nil, fmt.Errorf("failed to count user audit logs: %w", err)
	}

	return &GetAuditLogsResponse{
		AuditLogs: auditLogs,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	}, nil
}

// GetProjectAuditLogs does no access checks, callers authorize against the
// project team first.
func (s *AuditLogService) GetProjectAuditLogs(
	projectID uuid.UUID,
	request *GetAuditLogsRequest,
) (*GetAuditLogsResponse, error) {
	limit, offset := normalizePage(request)

	auditLogs, err := s.auditLogRepository.GetByProject(projectID, limit, offset, request.BeforeDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get project audit logs: %w", err)
	}

	return &GetAuditLogsResponse{
		AuditLogs: auditLogs,
		Total:     int64(len(auditLogs)),
		Limit:     limit,
		Offset:    offset,
	}, nil
}

// GetOrganisationAuditLogs does no access checks either.
func (s *AuditLogService) GetOrganisationAuditLogs(
	organisationID uuid.UUID,
	request *GetAuditLogsRequest,
) (*GetAuditLogsResponse, error) {
	limit, offset := normalizePage(request)

	auditLogs, err := s.auditLogRepository.GetByOrganisation(organisationID, limit, offset, request.BeforeDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get organisation audit logs: %w", err)
	}

	return &GetAuditLogsResponse{
		AuditLogs: auditLogs,
		Total:     int64(len(auditLogs)),
		Limit:     limit,
		Offset:    offset,
	}, nil
}

func (s *AuditLogService) write(auditLog *AuditLog) {
	auditLog.CreatedAt = time.Now().UTC()

	if err := s.auditLogRepository.Create(auditLog); err != nil {
		s.logger.Error("failed to create audit log", "error", err, "message", auditLog.Message)
	}
}

func normalizePage(request *GetAuditLogsRequest) (int, int) {
	limit := request.Limit
	if limit <= 0 || limit > maxAuditLogsLimit {
		limit = defaultAuditLogsLimit
	}

	return limit, max(request.Offset, 0)
}

package audit_logs

import (
	"crmm/internal/storage"
	"time"

	"github.com/google/uuid"
)

const selectAuditLogsSQL = `
		SELECT
			al.id,
			al.user_id,
			al.project_id,
			al.organisation_id,
			al.message,
			al.created_at,
			u.username AS username,
			p.name AS project_name,
			o.name AS organisation_name
		FROM audit_logs al
		LEFT JOIN users u ON al.user_id = u.id
		LEFT JOIN projects p ON al.project_id = p.id
		LEFT JOIN organisations o ON al.organisation_id = o.id`

type AuditLogRepository struct{}

func (r *AuditLogRepository) Create(auditLog *AuditLog) error {
	if auditLog.ID == uuid.Nil {
		auditLog.ID = uuid.New()
	}

	return storage.GetDb().Create(auditLog).Error
}

func (r *AuditLogRepository) GetGlobal(limit, offset int, beforeDate *time.Time) ([]*AuditLogDTO, error) {
	return r.query("", nil, limit, offset, beforeDate)
}

func (r *AuditLogRepository) GetByUser(
	userID uuid.UUID,
	limit, offset int,
	beforeDate *time.Time,
) ([]*AuditLogDTO, error) {
	return r.query("al.user_id = ?", userID, limit, offset, beforeDate)
}

func (r *AuditLogRepository) GetByProject(
	projectID uuid.UUID,
	limit, offset int,
	beforeDate *time.Time,
) ([]*AuditLogDTO, error) {
	return r.query("al.project_id = ?", projectID, limit, offset, beforeDate)
}

func (r *AuditLogRepository) GetByOrganisation(
	organisationID uuid.UUID,
	limit, offset int,
	beforeDate *time.Time,
) ([]*AuditLogDTO, error) {
	return r.query("al.organisation_id = ?", organisationID, limit, offset, beforeDate)
}

func (r *AuditLogRepository) CountGlobal(beforeDate *time.Time) (int64, error) {
	return r.count("", nil, beforeDate)
}

func (r *AuditLogRepository) CountByUser(userID uuid.UUID, beforeDate *time.Time) (int64, error) {
	return r.count("user_id = ?", userID, beforeDate)
}

func (r *AuditLogRepository) query(
	condition string,
	value any,
	limit, offset int,
	beforeDate *time.Time,
) ([]*AuditLogDTO, error) {
	var auditLogs = make([]*AuditLogDTO, 0)

	sql := selectAuditLogsSQL
	args := []any{}
	where := ""

	if condition != "" {
		where = " WHERE " + condition
		args = append(args, value)
	}

	if beforeDate != nil {
		if where == "" {
			where = " WHERE al.created_at < ?"
		} else {
			where += " AND al.created_at < ?"
		}
		args = append(args, *beforeDate)
	}

	sql += where + " ORDER BY al.created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	err := storage.GetDb().Raw(sql, args...).Scan(&auditLogs).Error

	return auditLogs, err
}

func (r *AuditLogRepository) count(condition string, value any, beforeDate *time.Time) (int64, error) {
	var count int64
	query := storage.GetDb().Model(&AuditLog{})

	if condition != "" {
		query = query.Where(condition, value)
	}

	if beforeDate != nil {
		query = query.Where("created_at < ?", *beforeDate)
	}

	err := query.Count(&count).Error
	return count, err
}

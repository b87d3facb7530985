package users_interfaces

import (
	"github.com/google/uuid"
)

// AuditLogWriter records account level events, which never belong to a
// project or organisation.
type AuditLogWriter interface {
	WriteUserAuditLog(message string, userID uuid.UUID)
}

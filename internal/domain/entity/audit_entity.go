package entity

import "time"

type AuditAction string

const (
	AuditRegister      AuditAction = "register"
	AuditLogin         AuditAction = "login"
	AuditLoginFailed   AuditAction = "login_failed"
	AuditLogout        AuditAction = "logout"
	AuditResetInit     AuditAction = "password_reset_init"
	AuditResetComplete AuditAction = "password_reset_complete"
	AuditDelete        AuditAction = "delete"
)

// AuditEvent is one row of the authentication audit trail.
type AuditEvent struct {
	UserID    string
	Email     string
	Action    AuditAction
	IP        string
	UserAgent string
	CreatedAt time.Time
}

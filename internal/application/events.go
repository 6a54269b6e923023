package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/template-marketplace/internal/domain/entity"
	"github.com/oksasatya/template-marketplace/pkg/mailer"
)

// queueEmail publishes a templated job. Publishing is best effort: the
// account operation has already succeeded.
func (s *Service) queueEmail(ctx context.Context, to, template string, data map[string]any) {
	if s.Emails == nil || s.Cfg == nil || !s.Cfg.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{To: to, Template: template, Data: data}
	if err := s.Emails.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"template": template, "to": to}).Warn("publish email job failed")
	}
}

// audit records an authentication event. Without an audit store the event
// goes to the log instead.
func (s *Service) audit(ctx context.Context, action entity.AuditAction, userID, email string, meta RequestMeta) {
	ev := entity.AuditEvent{
		UserID:    userID,
		Email:     email,
		Action:    action,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		CreatedAt: s.Now().UTC(),
	}
	if s.Audit == nil {
		s.Logger.WithFields(logrus.Fields{
			"action":  string(action),
			"user_id": userID,
			"ip":      meta.IP,
		}).Info("auth event")
		return
	}
	if err := s.Audit.Record(ctx, ev); err != nil {
		s.Logger.WithError(err).WithField("action", string(action)).Warn("audit record failed")
	}
}

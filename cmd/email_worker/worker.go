package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/template-marketplace/pkg/helpers"
	"github.com/oksasatya/template-marketplace/pkg/mailer"
	mailtpl "github.com/oksasatya/template-marketplace/pkg/mailer/templates"
)

type outcome int

// Send failures are retried; jobs that cannot be decoded or rendered are dropped.
const (
	ack outcome = iota
	retry
	reject
)

type worker struct {
	Sender   mailer.Sender
	Resolver mailtpl.GeoResolver
	Logger   *logrus.Logger
}

func (w *worker) handle(ctx context.Context, body []byte) outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.Logger.WithError(err).Warn("bad message")
		return reject
	}
	helpers.NormalizeJob(&job)
	if err := helpers.ValidateJob(job); err != nil {
		w.Logger.WithError(err).WithField("to", job.To).Warn("invalid email job")
		return reject
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		helpers.LocalizeTimesIfPossible(ctx, w.Resolver, job.Data)
		var err error
		subject, text, html, err = mailtpl.Render(job.Template, job.Data)
		if err != nil {
			w.Logger.WithError(err).WithField("template", job.Template).Error("render failed")
			return reject
		}
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := w.Sender.Send(c, job.To, subject, text, html); err != nil {
		w.Logger.WithError(err).WithField("to", job.To).Warn("send failed")
		return retry
	}
	helpers.LogInfo(w.Logger, "email sent", logrus.Fields{"to": job.To, "template": job.Template})
	return ack
}

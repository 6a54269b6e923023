package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/template-marketplace/pkg/mailer"
	mailtpl "github.com/oksasatya/template-marketplace/pkg/mailer/templates"
)

// NormalizeJob fills Data.Email from To and lower-cases the template name.
func NormalizeJob(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	job.Template = strings.ToLower(strings.TrimSpace(job.Template))
}

// ValidateJob reports why a job cannot be rendered, or nil.
func ValidateJob(job mailer.EmailJob) error {
	if strings.TrimSpace(job.To) == "" {
		return fmt.Errorf("missing recipient")
	}
	if job.Template != "" {
		if !mailtpl.Known(job.Template) {
			return fmt.Errorf("unknown template %q", job.Template)
		}
		return nil
	}
	if job.Subject == "" || (job.Text == "" && job.HTML == "") {
		return fmt.Errorf("raw job needs subject and text or html")
	}
	return nil
}

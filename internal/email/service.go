package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/flipcart/internal/domain"
)

// SenderFactory builds a sender for the credentials currently stored in the
// settings. Credentials can change between sends.
type SenderFactory func(cfg SMTPConfig) Sender

// Notifier mails catalog reports to the store admin configured in settings.
type Notifier struct {
	settings  domain.SettingsStore
	host      string
	port      int
	newSender SenderFactory
	logger    *slog.Logger
	now       func() time.Time
}

// NewNotifier creates a notifier that sends through host:port. A nil factory
// uses SMTPSender.
func NewNotifier(settings domain.SettingsStore, host string, port int, factory SenderFactory, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if factory == nil {
		factory = func(cfg SMTPConfig) Sender {
			return NewSMTPSender(cfg, logger)
		}
	}
	return &Notifier{
		settings:  settings,
		host:      host,
		port:      port,
		newSender: factory,
		logger:    logger,
		now:       time.Now,
	}
}

// ImportReport describes a finished CSV upload.
type ImportReport struct {
	Filename string
	Admin    string
	Result   *domain.ImportResult
}

var importTemplate = template.Must(template.New("import").Parse(`<div>
<h2>Catalog import finished</h2>
<p>File: {{.Filename}}<br>Uploaded by: {{.Admin}}<br>At: {{.At}}</p>
<p>Variants imported: {{.Result.Imported}}<br>Products created: {{.Result.Created}}<br>Rows skipped: {{len .Result.Skipped}}</p>
{{if .Result.Skipped}}<p>{{range .Result.Skipped}}Row {{.Row}}: {{.Reason}}<br>{{end}}</p>{{end}}
<p>{{.Company}}</p>
</div>`))

// SendImportReport mails report to the admin address in settings. It does
// nothing when no admin address is configured.
func (n *Notifier) SendImportReport(ctx context.Context, report ImportReport) error {
	settings, err := n.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	to := strings.TrimSpace(settings.AdminEmail)
	if to == "" {
		n.logger.Debug("import report skipped, no admin email configured")
		return nil
	}
	if report.Result == nil {
		report.Result = &domain.ImportResult{}
	}

	var buf bytes.Buffer
	err = importTemplate.Execute(&buf, struct {
		ImportReport
		At      string
		Company string
	}{report, n.now().Format(time.RFC1123), settings.CompanyName})
	if err != nil {
		return fmt.Errorf("render import report: %w", err)
	}

	sender := n.newSender(SMTPConfig{
		Host:     n.host,
		Port:     n.port,
		Username: to,
		Password: settings.AdminEmailPassword,
		From:     to,
		FromName: settings.CompanyName,
	})

	html := buf.String()
	return sender.Send(ctx, &Email{
		To:       []string{to},
		Subject:  fmt.Sprintf("Catalog import: %d variants from %s", report.Result.Imported, report.Filename),
		HTMLBody: html,
		TextBody: generatePlainText(html),
	})
}

// generatePlainText creates a simple plain text version from HTML
func generatePlainText(html string) string {
	text := html

	text = strings.ReplaceAll(text, "<br>", "\n")
	text = strings.ReplaceAll(text, "<br/>", "\n")
	text = strings.ReplaceAll(text, "<br />", "\n")
	text = strings.ReplaceAll(text, "</p>", "\n\n")
	text = strings.ReplaceAll(text, "</div>", "\n")
	text = strings.ReplaceAll(text, "</h2>", "\n\n")

	for {
		start := strings.Index(text, "<")
		if start < 0 {
			break
		}
		end := strings.Index(text[start:], ">")
		if end < 0 {
			break
		}
		text = text[:start] + text[start+end+1:]
	}

	text = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", "\"",
		"&#34;", "\"",
		"&#39;", "'",
	).Replace(text)

	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

package api

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"os"
	"strconv"
	"time"

	"scadenze/internal/deadline"
	"scadenze/internal/models"
)

// SMTPConfig holds SMTP server configuration.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// GetSMTPConfig reads SMTP configuration from environment variables. A
// missing SMTP_HOST means reminder mail is disabled.
func GetSMTPConfig() (*SMTPConfig, error) {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil, fmt.Errorf("SMTP_HOST not configured")
	}

	port := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		var err error
		port, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@scadenze.app"
	}

	return &SMTPConfig{
		Host:     host,
		Port:     port,
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASS"),
		From:     from,
	}, nil
}

var reminderTemplate = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1f2937;">
	<h2>Promemoria scadenze</h2>
	<p>Le seguenti scadenze richiedono la tua attenzione:</p>
	<ul>
	{{range .Deadlines}}
		<li><strong>{{.Title}}</strong> &mdash; {{.When}}</li>
	{{end}}
	</ul>
	<p><a href="{{.AppURL}}">Apri la dashboard</a></p>
	<p style="color: #9ca3af; font-size: 12px;">&copy; {{.Year}} Scadenze</p>
</body>
</html>`))

type reminderEntry struct {
	Title string
	When  string
}

type reminderData struct {
	Deadlines []reminderEntry
	AppURL    string
	Year      int
}

func getAppURL() string {
	if url := os.Getenv("APP_URL"); url != "" {
		return url
	}
	return "http://localhost:5173"
}

func formatDueDistance(days int) string {
	switch {
	case days < 0:
		if days == -1 {
			return "scaduta 1 giorno fa"
		}
		return fmt.Sprintf("scaduta %d giorni fa", -days)
	case days == 0:
		return "scade oggi"
	case days == 1:
		return "scade domani"
	}
	return fmt.Sprintf("scade tra %d giorni", days)
}

// GenerateReminderEmail renders the HTML digest for a batch of due-soon
// deadlines, with the day distances already computed by the caller.
func GenerateReminderEmail(entries []reminderEntry, now time.Time) (string, error) {
	data := reminderData{
		Deadlines: entries,
		AppURL:    getAppURL(),
		Year:      now.Year(),
	}
	var buf bytes.Buffer
	if err := reminderTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute reminder template: %w", err)
	}
	return buf.String(), nil
}

// SendReminderEmail sends the digest for one user's due-soon deadlines.
// Missing SMTP configuration is not an error: mail is simply skipped.
func SendReminderEmail(userEmail string, deadlines []models.Deadline, now time.Time) error {
	config, err := GetSMTPConfig()
	if err != nil {
		log.Printf("SMTP not configured, skipping reminder email: %v", err)
		return nil
	}

	entries := make([]reminderEntry, 0, len(deadlines))
	for _, d := range deadlines {
		when := ""
		if d.DueDate != nil {
			when = formatDueDistance(deadline.DaysUntil(*d.DueDate, now))
		}
		entries = append(entries, reminderEntry{Title: d.Title, When: when})
	}

	htmlBody, err := GenerateReminderEmail(entries, now)
	if err != nil {
		return err
	}

	return sendSMTPEmail(config, userEmail, "Promemoria scadenze", htmlBody)
}

func sendSMTPEmail(config *SMTPConfig, to, subject, htmlBody string) error {
	message := fmt.Sprintf("From: %s\r\n", config.From)
	message += fmt.Sprintf("To: %s\r\n", to)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "MIME-Version: 1.0\r\n"
	message += "Content-Type: text/html; charset=UTF-8\r\n"
	message += "\r\n"
	message += htmlBody

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	var auth smtp.Auth
	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	if err := smtp.SendMail(addr, auth, config.From, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	log.Printf("Reminder email sent to %s", to)
	return nil
}

// Package email delivers transactional notifications over SMTP. Sends are
// fire-and-forget: delivery failures are logged, never propagated to the
// request that triggered them.
package email

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func render(name string, ctx any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, ctx); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Send renders the named template and mails it in a background goroutine.
// With no SMTP credentials configured the message is logged and dropped,
// which keeps local development and tests offline.
func Send(recipient, subject, templateName string, ctx any) {
	body, err := render(templateName, ctx)
	if err != nil {
		log.Printf("❌ email template %s failed to render: %v", templateName, err)
		return
	}

	smtpUser := os.Getenv("SMTP_USER")
	smtpPassword := os.Getenv("SMTP_PASSWORD")
	if smtpUser == "" || smtpPassword == "" {
		log.Printf("📧 SMTP not configured, skipping %q to %s", subject, recipient)
		return
	}

	host := os.Getenv("SMTP_SERVER")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", smtpUser)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	go func() {
		dialer := gomail.NewDialer(host, port, smtpUser, smtpPassword)
		if err := dialer.DialAndSend(msg); err != nil {
			log.Printf("❌ Failed to send %q to %s: %v", subject, recipient, err)
		}
	}()
}

package config

import (
	"crypto/tls"
	"fmt"
	"html/template"
	"os"
	"strconv"
	"strings"

	mail "github.com/go-mail/mail/v2"
)

var (
	smtpHost = os.Getenv("SMTP_HOST")
	smtpPort = func() int {
		p, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
		if p == 0 {
			p = 587
		}
		return p
	}()
	smtpUser      = os.Getenv("SMTP_USER")
	smtpPass      = os.Getenv("SMTP_PASS")
	smtpFrom      = os.Getenv("SMTP_FROM") // e.g. "School Portal <no-reply@your.school>"
	skipTLSVerify = os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1"
)

func SendMail(to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}
	if smtpHost == "" || smtpFrom == "" {
		return fmt.Errorf("smtp not configured (SMTP_HOST/SMTP_FROM)")
	}

	m := mail.NewMessage()
	m.SetHeader("From", smtpFrom)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	d := mail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)

	// Mandatory STARTTLS on port 587 (Gmail/Office365 setups).
	d.StartTLSPolicy = mail.MandatoryStartTLS

	// ServerName must match the SMTP hostname; InsecureSkipVerify is for dev only.
	d.TLSConfig = &tls.Config{
		ServerName:         smtpHost,
		InsecureSkipVerify: skipTLSVerify,
	}

	return d.DialAndSend(m)
}

// FormalEmailHTML wraps a plain-text message in the simple branded layout
// used for all outgoing notification mail.
func FormalEmailHTML(subject, message string) string {
	escaped := template.HTMLEscapeString(strings.TrimSpace(message))
	escaped = strings.ReplaceAll(strings.ReplaceAll(escaped, "\r\n", "\n"), "\r", "\n")
	escaped = strings.ReplaceAll(escaped, "\n", "<br />")

	return fmt.Sprintf(`<div style="background-color:#f3f4f6;padding:32px 12px;font-family:Arial,Helvetica,sans-serif;">
<table role="presentation" cellpadding="0" cellspacing="0" width="100%%" style="max-width:560px;margin:0 auto;background-color:#ffffff;border-radius:12px;overflow:hidden;">
<tbody>
<tr><td style="background-color:#2563eb;padding:20px 28px;color:#ffffff;font-size:18px;font-weight:600;">%s</td></tr>
<tr><td style="padding:28px;color:#111827;font-size:15px;line-height:1.7;word-break:break-word;">%s</td></tr>
<tr><td style="padding:16px 28px;color:#6b7280;font-size:12px;border-top:1px solid #e5e7eb;">This is an automated message from the school portal. Please do not reply.</td></tr>
</tbody>
</table>
</div>`, template.HTMLEscapeString(subject), escaped)
}

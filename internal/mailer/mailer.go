// Package mailer delivers verification and password reset emails for
// events consumed off the broker.
package mailer

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/smtp"
	"net/url"
	"strings"
	"time"
)

const (
	dialTimeout = 8 * time.Second
	connTimeout = 15 * time.Second
)

type Mailer struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	mailFrom     string
	mailFromName string

	verifyBaseURL string
	resetBaseURL  string

	verifyTmpl *template.Template
	resetTmpl  *template.Template
}

func New(
	smtpHost, smtpPort, smtpUser, smtpPassword string,
	mailFrom, mailFromName string,
	verifyBaseURL, resetBaseURL string,
) *Mailer {
	return &Mailer{
		smtpHost:      smtpHost,
		smtpPort:      smtpPort,
		smtpUser:      smtpUser,
		smtpPassword:  smtpPassword,
		mailFrom:      mailFrom,
		mailFromName:  mailFromName,
		verifyBaseURL: verifyBaseURL,
		resetBaseURL:  resetBaseURL,
		verifyTmpl:    template.Must(template.New("verify").Parse(verifyEmailHTML)),
		resetTmpl:     template.Must(template.New("reset").Parse(resetEmailHTML)),
	}
}

func (m *Mailer) SendVerifyEmail(to, name, token string) error {
	link := fmt.Sprintf("%s?token=%s", m.verifyBaseURL, url.QueryEscape(token))

	body, err := m.render(m.verifyTmpl, name, link)
	if err != nil {
		return err
	}
	return m.send(to, "Verify your Campus Agora account", body)
}

func (m *Mailer) SendResetEmail(to, name, token string) error {
	link := fmt.Sprintf("%s?token=%s", m.resetBaseURL, url.QueryEscape(token))

	body, err := m.render(m.resetTmpl, name, link)
	if err != nil {
		return err
	}
	return m.send(to, "Reset your Campus Agora password", body)
}

func (m *Mailer) render(tmpl *template.Template, name, link string) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, map[string]string{
		"Name": name,
		"Link": link,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	fromHeader := fmt.Sprintf("%s <%s>", m.mailFromName, m.mailFrom)

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n")

	log.Printf("[MAIL] smtp sending to=%s via=%s:%s", to, m.smtpHost, m.smtpPort)

	if err := m.sendSMTPWithTimeout(to, []byte(msg)); err != nil {
		return err
	}

	log.Printf("[MAIL] sent to=%s", to)
	return nil
}

func (m *Mailer) sendSMTPWithTimeout(to string, msg []byte) error {
	addr := net.JoinHostPort(m.smtpHost, m.smtpPort)

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return err
	}
	// Deadline covers the whole session, not just the dial.
	_ = conn.SetDeadline(time.Now().Add(connTimeout))

	c, err := smtp.NewClient(conn, m.smtpHost)
	if err != nil {
		return err
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.smtpHost}); err != nil {
			return err
		}
	}

	if m.smtpUser != "" {
		auth := smtp.PlainAuth("", m.smtpUser, m.smtpPassword, m.smtpHost)
		if err := c.Auth(auth); err != nil {
			return err
		}
	}

	if err := c.Mail(m.mailFrom); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

const verifyEmailHTML = `<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; background: #f4f4f7; padding: 24px;">
    <div style="max-width: 480px; margin: auto; background: #ffffff; border-radius: 8px; padding: 32px;">
      <h2 style="color: #1a1a2e;">Welcome to Campus Agora{{if .Name}}, {{.Name}}{{end}}!</h2>
      <p>Confirm your institutional email to start buying and selling on your campus.</p>
      <p style="text-align: center; margin: 32px 0;">
        <a href="{{.Link}}" style="background: #4f46e5; color: #ffffff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Verify Email</a>
      </p>
      <p style="color: #6b7280; font-size: 13px;">This link expires in 24 hours. If you did not sign up, you can ignore this email.</p>
    </div>
  </body>
</html>`

const resetEmailHTML = `<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; background: #f4f4f7; padding: 24px;">
    <div style="max-width: 480px; margin: auto; background: #ffffff; border-radius: 8px; padding: 32px;">
      <h2 style="color: #1a1a2e;">Password reset{{if .Name}} for {{.Name}}{{end}}</h2>
      <p>We received a request to reset your Campus Agora password.</p>
      <p style="text-align: center; margin: 32px 0;">
        <a href="{{.Link}}" style="background: #4f46e5; color: #ffffff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Reset Password</a>
      </p>
      <p style="color: #6b7280; font-size: 13px;">This link expires in 1 hour. If you did not request a reset, your password is unchanged.</p>
    </div>
  </body>
</html>`

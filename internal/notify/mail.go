// Package notify sends the matrix report by email.
package notify

import (
	"bytes"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"drivermatrix/internal/config"
	"drivermatrix/internal/domain"
)

// SendFunc matches smtp.SendMail
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer emails the summary of a matrix run
type Mailer struct {
	cfg  config.MailConfig
	send SendFunc
	now  func() time.Time
}

// NewMailer creates a Mailer sending through cfg's SMTP server
func NewMailer(cfg config.MailConfig) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail, now: time.Now}
}

// Subject returns the subject line of the report email
func Subject(report *domain.MatrixReport) string {
	status := "PASSED"
	if report.Status() != 0 {
		status = "FAILED"
	}
	return fmt.Sprintf("[%s] %s CPP DRIVER MATRIX: %d/%d versions passed",
		status, strings.ToUpper(report.DriverType), report.Len()-len(report.FailedEntries()), report.Len())
}

// Body returns the plain text body: the summary of every version
func Body(report *domain.MatrixReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s CPP DRIVER MATRIX RESULTS ===\n\n", strings.ToUpper(report.DriverType))
	for _, e := range report.Entries {
		b.WriteString(domain.SummaryTitle(report.DriverType, e.Version))
		b.WriteString(domain.Summary(e.Outcome))
	}
	return b.String()
}

// Message builds the RFC 5322 message for a report
func (m *Mailer) Message(report *domain.MatrixReport) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", m.from())
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(m.cfg.To, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", Subject(report))
	fmt.Fprintf(&buf, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(strings.ReplaceAll(Body(report), "\n", "\r\n"))
	return buf.Bytes()
}

// Send emails the report. It does nothing when mail is not configured.
func (m *Mailer) Send(report *domain.MatrixReport) error {
	if !m.cfg.Enabled() {
		return nil
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := m.send(addr, auth, m.from(), m.cfg.To, m.Message(report)); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}
	return nil
}

func (m *Mailer) from() string {
	if m.cfg.From != "" {
		return m.cfg.From
	}
	return "drivermatrix@localhost"
}

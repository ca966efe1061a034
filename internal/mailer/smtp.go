// Package mailer delivers contact form messages over SMTP.
package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/prafullx/webstudio/internal/contact"
)

var ErrNotConfigured = errors.New("mailer: SMTP credentials not configured")

const DefaultTimeout = 30 * time.Second

// Config holds the SMTP account used to relay contact messages.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	To       string
	// Timeout bounds one delivery from dial to QUIT.
	Timeout time.Duration
}

type sendFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP is a contact.Sender that mails each submission to the site owner.
type SMTP struct {
	cfg      Config
	policy   *bluemonday.Policy
	sendMail sendFunc
	log      *slog.Logger
}

// NewSMTP returns a sender for cfg. Host and port fall back to Gmail's
// submission endpoint.
func NewSMTP(cfg Config, logger *slog.Logger) *SMTP {
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &SMTP{
		cfg:    cfg,
		policy: bluemonday.StrictPolicy(),
		log:    logger,
	}
	s.sendMail = s.dial
	return s
}

// Send relays f. It fails fast when credentials are missing or ctx is done,
// and gives up once ctx is cancelled or the configured timeout passes.
func (s *SMTP) Send(ctx context.Context, f contact.Form) error {
	if s.cfg.User == "" || s.cfg.Password == "" || s.cfg.To == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mailer: %w", err)
	}

	msg := s.compose(f)
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	addr := s.cfg.Host + ":" + s.cfg.Port
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	if err := s.sendMail(ctx, addr, auth, s.cfg.User, []string{s.cfg.To}, msg); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("mailer: send: %w (%w)", ctxErr, err)
		}
		return fmt.Errorf("mailer: send: %w", err)
	}
	s.log.Info("contact email sent", "from", s.clean(f.Email))
	return nil
}

// dial performs one SMTP exchange. The connection is closed as soon as ctx
// ends so a stalled relay cannot hold the caller.
func (s *SMTP) dial(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(a); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func (s *SMTP) compose(f contact.Form) []byte {
	name := s.header(f.Name)
	email := s.header(f.Email)
	subject := s.header(f.Subject)

	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Subject: %s
Message:
%s

---
Sent from your portfolio contact form
`, name, email, subject, s.clean(f.Message))

	var b strings.Builder
	b.WriteString("To: " + s.cfg.To + "\r\n")
	b.WriteString("Subject: Portfolio Contact: " + subject + "\r\n")
	b.WriteString("From: " + s.cfg.User + "\r\n")
	b.WriteString("Reply-To: " + email + "\r\n")
	b.WriteString("\r\n")
	b.WriteString(body + "\r\n")
	return []byte(b.String())
}

// clean strips markup from visitor input. The mail is plain text, so the
// entities the policy escapes are decoded again.
func (s *SMTP) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}

// header cleans v and drops line breaks so it cannot inject headers.
func (s *SMTP) header(v string) string {
	v = s.clean(v)
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

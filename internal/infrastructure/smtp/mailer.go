package smtp

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"time"

	"github.com/knadh/smtppool"
	"github.com/socialhub-api/internal/config"
)

// Mailer sends HTML emails.
type Mailer interface {
	SendHTML(to, subject string, body []byte) error
}

type mailer struct {
	from string
	pool *smtppool.Pool
}

// NewMailer opens a pooled SMTP connection set. Connections are dialled
// lazily, so an unreachable server surfaces on the first send.
func NewMailer(cfg *config.Config) (Mailer, error) {
	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}
	opt := smtppool.Opt{
		Host:            cfg.SMTPHost,
		Port:            cfg.SMTPPort,
		MaxConns:        cfg.SMTPMaxConns,
		IdleTimeout:     10 * time.Second,
		PoolWaitTimeout: 5 * time.Second,
		Auth:            auth,
	}
	// Local catchers (MailHog, Mailpit) on :1025 speak plain SMTP.
	if cfg.SMTPPort != 1025 {
		opt.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost}
		opt.SSL = cfg.SMTPPort == 465
	}
	pool, err := smtppool.New(opt)
	if err != nil {
		return nil, fmt.Errorf("smtp pool: %w", err)
	}
	return &mailer{from: cfg.SMTPFrom, pool: pool}, nil
}

func (m *mailer) SendHTML(to, subject string, body []byte) error {
	return m.pool.Send(smtppool.Email{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		HTML:    body,
	})
}

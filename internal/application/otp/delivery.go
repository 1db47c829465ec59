package otp

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/socialhub-api/internal/domain"
)

//go:embed templates/otp.html
var templateFS embed.FS

var emailTemplate = template.Must(template.ParseFS(templateFS, "templates/otp.html"))

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"

	appName      = "SocialHub"
	emailSubject = "Your SocialHub verification code"
)

type htmlMailer interface {
	SendHTML(to, subject string, body []byte) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// EmailDelivery renders the verification email and hands it to the mail pool.
type EmailDelivery struct {
	mailer htmlMailer
}

func NewEmailDelivery(m htmlMailer) *EmailDelivery { return &EmailDelivery{mailer: m} }

func (d *EmailDelivery) Channel() string { return ChannelEmail }

func (d *EmailDelivery) Deliver(_ context.Context, u *domain.User, code string, ttl time.Duration) error {
	body, err := RenderEmail(u, code, ttl)
	if err != nil {
		return err
	}
	return d.mailer.SendHTML(u.Email, emailSubject, body)
}

// RenderEmail produces the HTML body of the verification email.
func RenderEmail(u *domain.User, code string, ttl time.Duration) ([]byte, error) {
	name := strings.TrimSpace(u.FirstName)
	if name == "" {
		name = u.Username
	}
	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, struct {
		AppName   string
		Name      string
		Code      string
		ExpiresIn string
	}{appName, name, code, humanDuration(ttl)})
	if err != nil {
		return nil, fmt.Errorf("render otp email: %w", err)
	}
	return buf.Bytes(), nil
}

// SMSDelivery texts the code to the user's phone number.
type SMSDelivery struct {
	sender smsSender
}

func NewSMSDelivery(s smsSender) *SMSDelivery { return &SMSDelivery{sender: s} }

func (d *SMSDelivery) Channel() string { return ChannelSMS }

func (d *SMSDelivery) Deliver(ctx context.Context, u *domain.User, code string, ttl time.Duration) error {
	if u.Phone == nil || *u.Phone == "" {
		return fmt.Errorf("no phone number on account: %w", domain.ErrBadRequest)
	}
	msg := fmt.Sprintf("Your %s verification code is %s. It expires in %s.", appName, code, humanDuration(ttl))
	return d.sender.SendSMS(ctx, *u.Phone, msg)
}

func humanDuration(d time.Duration) string {
	if d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return d.String()
}

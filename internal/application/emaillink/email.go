package emaillink

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/socialhub-api/internal/domain"
)

//go:embed templates/verify.html
var templateFS embed.FS

var emailTemplate = template.Must(template.ParseFS(templateFS, "templates/verify.html"))

const (
	appName      = "SocialHub"
	emailSubject = "Verify your SocialHub email address"
)

type htmlMailer interface {
	SendHTML(to, subject string, body []byte) error
}

// RenderEmail produces the HTML body carrying the verification link.
func RenderEmail(u *domain.User, link string, ttl time.Duration) ([]byte, error) {
	name := strings.TrimSpace(u.FirstName)
	if name == "" {
		name = u.Username
	}
	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, struct {
		AppName   string
		Name      string
		URL       string
		ExpiresIn string
	}{appName, name, link, fmt.Sprintf("%d minutes", int(ttl/time.Minute))})
	if err != nil {
		return nil, fmt.Errorf("render verification email: %w", err)
	}
	return buf.Bytes(), nil
}

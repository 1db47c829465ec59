package http

import (
	"net/http"

	"github.com/socialhub-api/internal/application/auth"
	"github.com/socialhub-api/internal/application/comment"
	"github.com/socialhub-api/internal/application/emaillink"
	"github.com/socialhub-api/internal/application/like"
	"github.com/socialhub-api/internal/application/notification"
	"github.com/socialhub-api/internal/application/otp"
	"github.com/socialhub-api/internal/application/post"
	"github.com/socialhub-api/internal/application/profile"
	"github.com/socialhub-api/internal/application/taxonomy"
	"github.com/socialhub-api/internal/application/user"
	"github.com/socialhub-api/internal/transport/http/middleware"
)

// Deps holds everything the router wires into handlers and middleware.
type Deps struct {
	Auth          auth.Service
	OTP           otp.Service
	EmailLinks    emaillink.Service
	Users         user.Service
	Posts         post.Service
	Comments      comment.Service
	Likes         like.Service
	Profiles      profile.Service
	Tags          taxonomy.Service
	Categories    taxonomy.Service
	Notifications notification.Service

	Tokens middleware.TokenVerifier
	// Accounts backs the verified-only check.
	Accounts middleware.UserGetter
	// ResendLimiter throttles re-sends and link redemption; nil uses an
	// in-process limiter.
	ResendLimiter middleware.WindowLimiter
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

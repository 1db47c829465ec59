package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/socialhub-api/internal/config"
	"github.com/socialhub-api/internal/domain"
	"github.com/socialhub-api/internal/transport/http/handler"
	appmiddleware "github.com/socialhub-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Resend and link throttle: 6 requests per minute per user, or per IP on
// public routes.
const (
	resendLimit  = 6
	resendWindow = time.Minute
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(appmiddleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.Tokens, deps.Auth)
	verifiedMw := appmiddleware.RequireVerified(deps.Accounts)
	adminMw := appmiddleware.RequireRole(domain.RoleAdmin)

	// 5 requests/second, burst of 10, on credential endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)
	resendLimiter := deps.ResendLimiter
	if resendLimiter == nil {
		resendLimiter = appmiddleware.NewRateLimiter(rate.Every(resendWindow/resendLimit), resendLimit)
	}
	resendMw := appmiddleware.Throttle(resendLimiter, "resend")
	linkMw := appmiddleware.Throttle(resendLimiter, "verify-link")

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(deps.Auth, deps.Users)
	verifyH := handler.NewVerificationHandler(deps.OTP, deps.Auth)
	emailH := handler.NewEmailVerificationHandler(deps.EmailLinks)
	userH := handler.NewUserHandler(deps.Users)
	postH := handler.NewPostHandler(deps.Posts)
	commentH := handler.NewCommentHandler(deps.Comments)
	likeH := handler.NewLikeHandler(deps.Likes)
	profileH := handler.NewProfileHandler(deps.Profiles)
	tagH := handler.NewTermHandler(deps.Tags, "Tags")
	categoryH := handler.NewTermHandler(deps.Categories, "Categories")
	notifH := handler.NewNotificationHandler(deps.Notifications)

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		// Public
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/login", authH.Login)
		r.With(sensitiveRL.Limit).Post("/sessions/refresh", authH.Refresh)
		// Authenticated by its signature, not a bearer token.
		r.With(linkMw).Get("/email/verify/{id}/{hash}", emailH.Verify)

		// Bearer
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Post("/logout", authH.Logout)
			r.Get("/user", authH.Current)
			r.Put("/user/password", authH.ChangePassword)
			r.Post("/mobile/verify", verifyH.Verify)
			r.With(resendMw).Post("/mobile/resend", verifyH.ResendMobile)
			r.With(resendMw).Post("/email/resend", emailH.Resend)
			r.With(resendMw).Post("/email/verification-notification", emailH.Resend)
			r.Get("/notifications", notifH.ListUnread)
			r.Put("/notifications/{id}", notifH.MarkAsRead)

			// Bearer + verified email
			r.Group(func(r chi.Router) {
				r.Use(verifiedMw)

				r.With(adminMw).Get("/users", userH.List)
				r.Post("/users", userH.Create)
				r.Get("/users/{id}", userH.Get)
				r.Put("/users/{id}", userH.Update)
				r.Delete("/users/{id}", userH.Delete)

				r.Get("/posts", postH.List)
				r.Post("/posts", postH.Create)
				r.Get("/posts/{post}", postH.Get)
				r.Put("/posts/{post}", postH.Update)
				r.Delete("/posts/{post}", postH.Delete)

				r.Get("/posts/{post}/comments", commentH.List)
				r.Post("/posts/{post}/comments", commentH.Create)
				r.Get("/comments/{id}", commentH.Get)
				r.Put("/comments/{id}", commentH.Update)
				r.Delete("/comments/{id}", commentH.Delete)

				r.Post("/posts/{post}/like", likeH.Toggle)

				r.Get("/profile", profileH.Get)
				r.Post("/profile", profileH.Update)

				r.Get("/tags", tagH.List)
				r.Get("/categories", categoryH.List)
				r.With(adminMw).Post("/tags", tagH.Create)
				r.With(adminMw).Post("/categories", categoryH.Create)
			})
		})
	})

	return r
}
